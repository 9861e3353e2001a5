package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/saif-raza-001/pharmastream/config"
	"github.com/saif-raza-001/pharmastream/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceivePayment settles part or all of an invoice's due amount: updates the
// invoice's paid/due, posts a RECEIPT credit, and reduces the customer
// balance by the amount, atomically. Returns the new due amount.
func (e *Engine) ReceivePayment(ctx context.Context, invoiceID int, input *models.NewPaymentReceipt) (decimal.Decimal, error) {
	if input == nil || !input.Amount.IsPositive() {
		amount := decimal.Zero
		if input != nil {
			amount = input.Amount
		}
		return decimal.Zero, &InvalidAmountError{Field: "amount", Amount: amount, Reason: "must be positive"}
	}

	entryDate := time.Now().UTC()
	if input.Date != nil {
		entryDate = *input.Date
	}

	var newDue decimal.Decimal
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		var invoice models.SalesInvoice
		if err := forUpdate(tx).First(&invoice, invoiceID).Error; err != nil {
			if isNotFound(err) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if invoice.CurrentStatus == models.DocumentStatusVoid {
			return ErrInvoiceNotFound
		}
		if !invoice.DueAmount.IsPositive() {
			return ErrAlreadyPaid
		}
		if input.Amount.GreaterThan(invoice.DueAmount) {
			return &InvalidAmountError{Field: "amount", Amount: input.Amount, Reason: "exceeds due amount"}
		}

		if _, err := lockAccountTx(tx, invoice.CustomerID, models.AccountTypeCustomer); err != nil {
			return err
		}

		newDue = invoice.DueAmount.Sub(input.Amount)
		if err := tx.Model(&invoice).Updates(map[string]interface{}{
			"PaidAmount": invoice.PaidAmount.Add(input.Amount),
			"DueAmount":  newDue,
		}).Error; err != nil {
			return err
		}

		entries := []models.LedgerEntry{{
			EntryType: models.EntryTypeReceipt,
			Credit:    input.Amount,
			EntryDate: entryDate,
			InvoiceID: &invoice.ID,
			VoucherNo: fmt.Sprintf("INV-%d", invoice.InvoiceNo),
			Narration: "Payment Received",
			Mode:      input.Mode,
			Reference: input.Reference,
		}}
		if _, err := postEntriesTx(tx, invoice.CustomerID, entries); err != nil {
			return err
		}

		return recordOutboxTx(tx, models.OutboxReferenceTypeReceipt, invoice.ID, models.OutboxActionCreate, entries[0])
	})
	if err != nil {
		config.LogError(e.logger, "payment.go", "ReceivePayment", "transaction", invoiceID, err)
		return decimal.Zero, err
	}
	return newDue, nil
}

// CreateReceipt posts a standalone customer receipt (money in, not tied to a
// single invoice). Customer accounts only.
func (e *Engine) CreateReceipt(ctx context.Context, input *models.NewVoucher) (*models.LedgerEntry, error) {
	return e.createVoucher(ctx, input, models.AccountTypeCustomer)
}

// CreatePayment posts a standalone supplier payment (money out). Supplier
// accounts only.
func (e *Engine) CreatePayment(ctx context.Context, input *models.NewVoucher) (*models.LedgerEntry, error) {
	return e.createVoucher(ctx, input, models.AccountTypeSupplier)
}

func (e *Engine) createVoucher(ctx context.Context, input *models.NewVoucher, accountType models.AccountType) (*models.LedgerEntry, error) {
	if input == nil || !input.Amount.IsPositive() {
		amount := decimal.Zero
		if input != nil {
			amount = input.Amount
		}
		return nil, &InvalidAmountError{Field: "amount", Amount: amount, Reason: "must be positive"}
	}

	entryDate := time.Now().UTC()
	if input.Date != nil {
		entryDate = *input.Date
	}

	entry := models.LedgerEntry{
		EntryDate: entryDate,
		Mode:      input.Mode,
		Reference: input.Reference,
		Narration: input.Narration,
	}
	var counterName string
	var refType models.OutboxReferenceType
	if accountType == models.AccountTypeCustomer {
		// Receipt credits the receivable.
		entry.EntryType = models.EntryTypeReceipt
		entry.Credit = input.Amount
		counterName = models.CounterReceipt
		refType = models.OutboxReferenceTypeReceipt
		if entry.Narration == "" {
			entry.Narration = "Payment Received"
		}
	} else {
		// Payment debits the payable.
		entry.EntryType = models.EntryTypePayment
		entry.Debit = input.Amount
		counterName = models.CounterPayment
		refType = models.OutboxReferenceTypePayment
		if entry.Narration == "" {
			entry.Narration = "Payment Made"
		}
	}

	var posted models.LedgerEntry
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := lockAccountTx(tx, input.AccountID, accountType); err != nil {
			return err
		}

		voucherNo, err := nextNumberTx(tx, counterName)
		if err != nil {
			return err
		}
		if entry.EntryType == models.EntryTypeReceipt {
			entry.VoucherNo = fmt.Sprintf("RCP-%d", voucherNo)
		} else {
			entry.VoucherNo = fmt.Sprintf("PAY-%d", voucherNo)
		}

		entries, err := postEntriesTx(tx, input.AccountID, []models.LedgerEntry{entry})
		if err != nil {
			return err
		}
		posted = entries[0]

		return recordOutboxTx(tx, refType, posted.ID, models.OutboxActionCreate, posted)
	})
	if err != nil {
		config.LogError(e.logger, "payment.go", "createVoucher", string(accountType), input.AccountID, err)
		return nil, err
	}
	return &posted, nil
}
