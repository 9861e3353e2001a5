package models

import "gorm.io/gorm"

// MigrateTables creates/updates the engine's schema. Master-data tables for
// products, categories and manufacturers live with their own collaborator;
// only ProductBatch is owned here because the engine enforces its invariants.
func MigrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&ProductBatch{},
		&LedgerEntry{},
		&SalesInvoice{},
		&SalesInvoiceDetail{},
		&Purchase{},
		&PurchaseDetail{},
		&DocumentCounter{},
		&OutboxRecord{},
	)
}
