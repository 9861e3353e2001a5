package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoice is a sale header with computed totals. Created atomically with
// its stock decrements and ledger entries; DueAmount is mutated by later
// payments. Never hard-deleted: voiding restores stock and appends
// compensating ledger entries.
type SalesInvoice struct {
	ID          int       `gorm:"primary_key" json:"id"`
	InvoiceNo   int64     `gorm:"uniqueIndex;not null" json:"invoice_no"`
	CustomerID  int       `gorm:"not null;index" json:"customer_id"`
	InvoiceDate time.Time `gorm:"not null;index" json:"invoice_date"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	TaxableAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"taxable_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	CgstAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"cgst_amount"`
	SgstAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sgst_amount"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`

	AdvanceUsed    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"advance_used"`
	AmountReceived decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount_received"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`
	DueAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"due_amount"`
	PaymentMode    string          `gorm:"size:50" json:"payment_mode"`

	CurrentStatus DocumentStatus       `gorm:"size:20;not null;default:'Confirmed';index" json:"current_status"`
	Details       []SalesInvoiceDetail `gorm:"foreignKey:InvoiceID" json:"details"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

// SalesInvoiceDetail is one line of a sale, always tied to a concrete batch.
// FreeQty leaves stock but does not participate in the amount.
type SalesInvoiceDetail struct {
	ID        int `gorm:"primary_key" json:"id"`
	InvoiceID int `gorm:"not null;index" json:"invoice_id"`
	ProductID int `gorm:"not null;index" json:"product_id"`
	BatchID   int `gorm:"not null;index" json:"batch_id"`

	Qty         int             `gorm:"not null" json:"qty"`
	FreeQty     int             `gorm:"not null;default:0" json:"free_qty"`
	UnitRate    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_rate"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	GstPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_pct"`

	TaxableAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"taxable_amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"net_amount"`
}

// NewSalesInvoice is the validated create input. Batch selection is the
// caller's responsibility (FEFO is suggested by ListAvailableBatches, not
// enforced); the engine enforces only non-negative stock.
type NewSalesInvoice struct {
	CustomerID  int                   `json:"customer_id" binding:"required"`
	InvoiceDate *time.Time            `json:"invoice_date"`
	Items       []NewSalesInvoiceItem `json:"items" binding:"required,min=1,dive"`
	Payment     NewInvoicePayment     `json:"payment"`
}

type NewSalesInvoiceItem struct {
	BatchID     int             `json:"batch_id" binding:"required"`
	Qty         int             `json:"qty" binding:"required"`
	FreeQty     int             `json:"free_qty"`
	UnitRate    decimal.Decimal `json:"unit_rate" binding:"required"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	GstPct      decimal.Decimal `json:"gst_pct"`
}

// NewInvoicePayment captures money settled at invoicing time.
type NewInvoicePayment struct {
	AdvanceUsed    decimal.Decimal `json:"advance_used"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Mode           string          `json:"mode"`
}

// NewPaymentReceipt is the validated input for a payment against an invoice.
type NewPaymentReceipt struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Mode      string          `json:"mode" binding:"required"`
	Reference string          `json:"reference"`
	Date      *time.Time      `json:"date"`
}
