package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a supplier bill header. Its lines feed the batch merge engine:
// a repeat purchase of an existing (product, batch_no) blends the stored
// weighted-average cost instead of creating a new lot.
type Purchase struct {
	ID         int       `gorm:"primary_key" json:"id"`
	PurchaseNo int64     `gorm:"uniqueIndex;not null" json:"purchase_no"`
	SupplierID int       `gorm:"not null;index" json:"supplier_id"`
	BillNo     string    `gorm:"size:100;not null" json:"bill_no"`
	BillDate   time.Time `gorm:"not null;index" json:"bill_date"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	TaxableAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"taxable_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	CgstAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"cgst_amount"`
	SgstAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sgst_amount"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`

	CurrentStatus DocumentStatus   `gorm:"size:20;not null;default:'Confirmed';index" json:"current_status"`
	Details       []PurchaseDetail `gorm:"foreignKey:PurchaseID" json:"details"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// PurchaseDetail is one received line, referencing the (possibly merged)
// batch it landed in.
type PurchaseDetail struct {
	ID         int    `gorm:"primary_key" json:"id"`
	PurchaseID int    `gorm:"not null;index" json:"purchase_id"`
	ProductID  int    `gorm:"not null;index" json:"product_id"`
	BatchID    int    `gorm:"not null;index" json:"batch_id"`
	BatchNo    string `gorm:"size:100;not null" json:"batch_no"`

	Qty          int             `gorm:"not null" json:"qty"`
	FreeQty      int             `gorm:"not null;default:0" json:"free_qty"`
	PurchaseRate decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"purchase_rate"`
	MRP          decimal.Decimal `gorm:"column:mrp;type:decimal(20,2);not null;default:0" json:"mrp"`
	SaleRate     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sale_rate"`
	ExpiryDate   time.Time       `gorm:"not null" json:"expiry_date"`
	DiscountPct  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	GstPct       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_pct"`

	TaxableAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"taxable_amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"net_amount"`
}

// NewPurchase is the validated create input.
type NewPurchase struct {
	SupplierID int               `json:"supplier_id" binding:"required"`
	BillNo     string            `json:"bill_no" binding:"required"`
	BillDate   *time.Time        `json:"bill_date"`
	Items      []NewPurchaseItem `json:"items" binding:"required,min=1,dive"`
}

type NewPurchaseItem struct {
	ProductID    int             `json:"product_id" binding:"required"`
	BatchNo      string          `json:"batch_no" binding:"required"`
	Qty          int             `json:"qty" binding:"required"`
	FreeQty      int             `json:"free_qty"`
	PurchaseRate decimal.Decimal `json:"purchase_rate" binding:"required"`
	MRP          decimal.Decimal `json:"mrp"`
	SaleRate     decimal.Decimal `json:"sale_rate"`
	ExpiryDate   time.Time       `json:"expiry_date" binding:"required"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	GstPct       decimal.Decimal `json:"gst_pct"`
}
