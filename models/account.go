package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer or supplier running-balance account.
//
// Sign convention: CurrentBalance follows the ledger identity
//
//	current_balance == opening_balance + SUM(debit) - SUM(credit)
//
// over all entries, at all times. Customers accumulate positive balances
// (receivable); suppliers accumulate negative balances (payable). A balance on
// the other side of zero is an advance held.
//
// Accounts are created by the master-data collaborator; only the ledger
// poster mutates CurrentBalance. Accounts are never physically deleted, only
// deactivated.
type Account struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Type           AccountType     `gorm:"size:20;not null;index" json:"type"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"opening_balance"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"current_balance"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewAccount is the validated create input used by the seed tooling and the
// master-data collaborator.
type NewAccount struct {
	Name           string          `json:"name" binding:"required"`
	Type           AccountType     `json:"type" binding:"required,oneof=CUSTOMER SUPPLIER"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}
