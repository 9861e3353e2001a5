package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBatch is one lot of one product. BatchNo is unique per product.
//
// CurrentStock never goes negative: every decrement carries a
// `current_stock >= ?` guard in the UPDATE itself, so a lost race fails the
// statement instead of overselling.
//
// PurchaseRate is the weighted-average unit cost across merges. It keeps four
// fractional digits so repeated merges do not drift.
type ProductBatch struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ProductID    int             `gorm:"not null;index;uniqueIndex:idx_product_batch,priority:1" json:"product_id"`
	BatchNo      string          `gorm:"size:100;not null;uniqueIndex:idx_product_batch,priority:2" json:"batch_no"`
	ExpiryDate   time.Time       `gorm:"index;not null" json:"expiry_date"`
	MRP          decimal.Decimal `gorm:"column:mrp;type:decimal(20,2);not null;default:0" json:"mrp"`
	SaleRate     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sale_rate"`
	PurchaseRate decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purchase_rate"`
	CurrentStock int             `gorm:"not null;default:0" json:"current_stock"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
