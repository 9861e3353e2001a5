package engine

import (
	"context"

	"github.com/saif-raza-001/pharmastream/config"
	"github.com/saif-raza-001/pharmastream/models"
	"gorm.io/gorm"
)

// VoidInvoice reverses a sale completely: every decremented batch is restored
// by the exact original quantities, every active ledger entry the invoice
// created (including later payments against it) gets a compensating entry,
// and the customer balance moves by the opposite net delta, all in one atomic unit,
// never partially. The invoice row stays, marked Void.
func (e *Engine) VoidInvoice(ctx context.Context, invoiceID int) (*models.SalesInvoice, error) {
	var voided *models.SalesInvoice
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		var invoice models.SalesInvoice
		if err := forUpdate(tx).Preload("Details").First(&invoice, invoiceID).Error; err != nil {
			if isNotFound(err) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if invoice.CurrentStatus == models.DocumentStatusVoid {
			return ErrAlreadyVoid
		}

		if _, err := lockAccountTx(tx, invoice.CustomerID, models.AccountTypeCustomer); err != nil {
			return err
		}

		for _, detail := range invoice.Details {
			if err := incrementStockTx(tx, detail.BatchID, detail.Qty+detail.FreeQty); err != nil {
				return err
			}
		}

		var entries []models.LedgerEntry
		if err := tx.
			Where("invoice_id = ? AND is_reversal = ? AND reversed_by_entry_id IS NULL", invoice.ID, false).
			Find(&entries).Error; err != nil {
			return err
		}
		if err := reverseEntriesTx(tx, invoice.CustomerID, entries); err != nil {
			return err
		}

		if err := tx.Model(&invoice).Update("CurrentStatus", models.DocumentStatusVoid).Error; err != nil {
			return err
		}
		invoice.CurrentStatus = models.DocumentStatusVoid

		if err := recordOutboxTx(tx, models.OutboxReferenceTypeInvoice, invoice.ID, models.OutboxActionVoid, invoice); err != nil {
			return err
		}

		voided = &invoice
		return nil
	})
	if err != nil {
		config.LogError(e.logger, "reversal.go", "VoidInvoice", "transaction", invoiceID, err)
		return nil, err
	}
	return voided, nil
}

// VoidPurchase reverses a supplier bill: received quantities (paid + free)
// are removed from their batches (failing with InsufficientStock when the
// goods were already sold on) and the supplier's ledger is compensated.
// The blended weighted-average cost is deliberately left as-is; a past merge
// cannot be un-blended exactly once later purchases have landed.
func (e *Engine) VoidPurchase(ctx context.Context, purchaseID int) (*models.Purchase, error) {
	var voided *models.Purchase
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		var purchase models.Purchase
		if err := forUpdate(tx).Preload("Details").First(&purchase, purchaseID).Error; err != nil {
			if isNotFound(err) {
				return ErrPurchaseNotFound
			}
			return err
		}
		if purchase.CurrentStatus == models.DocumentStatusVoid {
			return ErrAlreadyVoid
		}

		if _, err := lockAccountTx(tx, purchase.SupplierID, models.AccountTypeSupplier); err != nil {
			return err
		}

		for _, detail := range purchase.Details {
			if _, err := decrementStockTx(tx, detail.BatchID, detail.Qty+detail.FreeQty); err != nil {
				return err
			}
		}

		var entries []models.LedgerEntry
		if err := tx.
			Where("purchase_id = ? AND is_reversal = ? AND reversed_by_entry_id IS NULL", purchase.ID, false).
			Find(&entries).Error; err != nil {
			return err
		}
		if err := reverseEntriesTx(tx, purchase.SupplierID, entries); err != nil {
			return err
		}

		if err := tx.Model(&purchase).Update("CurrentStatus", models.DocumentStatusVoid).Error; err != nil {
			return err
		}
		purchase.CurrentStatus = models.DocumentStatusVoid

		if err := recordOutboxTx(tx, models.OutboxReferenceTypePurchase, purchase.ID, models.OutboxActionVoid, purchase); err != nil {
			return err
		}

		voided = &purchase
		return nil
	})
	if err != nil {
		config.LogError(e.logger, "reversal.go", "VoidPurchase", "transaction", purchaseID, err)
		return nil, err
	}
	return voided, nil
}
