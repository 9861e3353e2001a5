package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Every error below is detected before or during the posting transaction and
// aborts it completely; none are partially recovered. Callers map them to
// user-facing messages. Invalid amounts are never silently coerced.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrBatchNotFound    = errors.New("batch not found")
	ErrAlreadyPaid      = errors.New("invoice already fully paid")
	ErrAlreadyVoid      = errors.New("document already void")

	// ErrSequenceUnavailable means a document number could not be issued; the
	// enclosing transaction must abort so no number is consumed uncommitted.
	ErrSequenceUnavailable = errors.New("sequence unavailable")

	// ErrConcurrencyConflict means the transaction could not commit due to
	// contention. Safe to retry the whole operation from scratch.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// InsufficientStockError reports the first line item that exceeds available
// batch stock. The whole operation is aborted before any batch is touched.
type InsufficientStockError struct {
	BatchID   int
	BatchNo   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for batch %d (%s): requested %d, available %d",
		e.BatchID, e.BatchNo, e.Requested, e.Available)
}

// InvalidLineItemError flags a negative quantity/rate/discount/gst on a line.
type InvalidLineItemError struct {
	Field  string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item: %s %s", e.Field, e.Reason)
}

// InvalidAmountError flags a zero or negative amount where a positive one is
// required, or an amount exceeding what it settles.
type InvalidAmountError struct {
	Field  string
	Amount decimal.Decimal
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount for %s (%s): %s", e.Field, e.Amount, e.Reason)
}

// InvalidEntryError flags a ledger entry that is not exactly one-sided.
type InvalidEntryError struct {
	Reason string
}

func (e *InvalidEntryError) Error() string {
	return "invalid ledger entry: " + e.Reason
}

// AccountTypeMismatchError flags e.g. a PAYMENT posted to a CUSTOMER account.
type AccountTypeMismatchError struct {
	AccountID int
	Got       string
	Want      string
}

func (e *AccountTypeMismatchError) Error() string {
	return fmt.Sprintf("account %d is %s, operation requires %s", e.AccountID, e.Got, e.Want)
}
