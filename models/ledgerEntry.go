package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an append-only financial fact: exactly one of Debit/Credit
// is non-zero, both are >= 0.
//
// Entries are immutable once posted. Voiding a document never deletes its
// entries; a compensating entry is appended with IsReversal set and the
// original is stamped with ReversedByEntryID. For a given document there is
// at most one active set of entries (is_reversal = false AND
// reversed_by_entry_id IS NULL).
type LedgerEntry struct {
	ID        int             `gorm:"primary_key" json:"id"`
	AccountID int             `gorm:"not null;index;index:idx_le_acct_date,priority:1" json:"account_id"`
	EntryType EntryType       `gorm:"size:20;not null" json:"entry_type"`
	Debit     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"debit"`
	Credit    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"credit"`
	EntryDate time.Time       `gorm:"not null;index;index:idx_le_acct_date,priority:2" json:"entry_date"`

	// Optional document links. VoucherNo carries the persisted-state
	// convention "INV-<invoiceNo>" / "PUR-<billNo or purchaseNo>".
	InvoiceID  *int   `gorm:"index" json:"invoice_id"`
	PurchaseID *int   `gorm:"index" json:"purchase_id"`
	VoucherNo  string `gorm:"size:100" json:"voucher_no"`
	Narration  string `gorm:"size:255" json:"narration"`
	Mode       string `gorm:"size:50" json:"mode"`
	Reference  string `gorm:"size:255" json:"reference"`

	IsReversal        bool       `gorm:"not null;default:false;index" json:"is_reversal"`
	ReversesEntryID   *int       `gorm:"index" json:"reverses_entry_id"`
	ReversedByEntryID *int       `gorm:"index" json:"reversed_by_entry_id"`
	ReversedAt        *time.Time `json:"reversed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SignedAmount is the entry's contribution to the running balance.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// NewVoucher is the validated input for standalone receipts and payments.
type NewVoucher struct {
	AccountID int             `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Mode      string          `json:"mode" binding:"required"`
	Reference string          `json:"reference"`
	Narration string          `json:"narration"`
	Date      *time.Time      `json:"date"`
}

// StatementLine is one ledger entry with its cumulative running balance.
type StatementLine struct {
	LedgerEntry
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Statement is the reconstructed ledger for an account over a window.
// When the window spans all time, ClosingBalance equals the account's
// authoritative CurrentBalance.
type Statement struct {
	AccountID      int             `json:"account_id"`
	AccountName    string          `json:"account_name"`
	AccountType    AccountType     `json:"account_type"`
	FromDate       *time.Time      `json:"from_date"`
	ToDate         *time.Time      `json:"to_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []StatementLine `json:"entries"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}
