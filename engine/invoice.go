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

// CreateInvoice sells items from concrete batches and posts the financial
// effects, all-or-nothing.
//
// Order inside the transaction:
//  1. lock the customer account and every referenced batch, then validate
//     every line's stock before mutating anything;
//  2. issue the invoice number;
//  3. compute per-line amounts and header totals;
//  4. persist header + lines;
//  5. decrement each batch (guarded UPDATE, so a concurrent depletion between
//     the pre-check and here fails the whole operation instead of overselling);
//  6. post SALES / ADJUSTMENT / RECEIPT entries and move the customer balance
//     by grandTotal - advanceUsed - amountReceived;
//  7. record the outbox event.
//
// Any failure rolls back all of it; there is no observable partial state.
func (e *Engine) CreateInvoice(ctx context.Context, input *models.NewSalesInvoice) (*models.SalesInvoice, error) {
	if input == nil || len(input.Items) == 0 {
		return nil, &InvalidLineItemError{Field: "items", Reason: "at least one item required"}
	}
	if input.Payment.AdvanceUsed.IsNegative() {
		return nil, &InvalidAmountError{Field: "advance_used", Amount: input.Payment.AdvanceUsed, Reason: "must not be negative"}
	}
	if input.Payment.AmountReceived.IsNegative() {
		return nil, &InvalidAmountError{Field: "amount_received", Amount: input.Payment.AmountReceived, Reason: "must not be negative"}
	}

	invoiceDate := time.Now().UTC()
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}

	var invoice *models.SalesInvoice
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := lockAccountTx(tx, input.CustomerID, models.AccountTypeCustomer); err != nil {
			return err
		}

		// Pre-check every line against locked rows before any mutation, so a
		// failing later line leaves earlier lines' batches untouched. Demand
		// is accumulated per batch: two lines drawing on the same batch must
		// be checked against their combined quantity, not each alone.
		batches := make([]*models.ProductBatch, len(input.Items))
		locked := make(map[int]*models.ProductBatch)
		required := make(map[int]int)
		for i, item := range input.Items {
			if item.Qty <= 0 {
				return &InvalidLineItemError{Field: "qty", Reason: "must be positive"}
			}
			if item.FreeQty < 0 {
				return &InvalidLineItemError{Field: "free_qty", Reason: "must not be negative"}
			}
			batch := locked[item.BatchID]
			if batch == nil {
				var err error
				batch, err = lockBatchTx(tx, item.BatchID)
				if err != nil {
					return err
				}
				locked[item.BatchID] = batch
			}
			required[item.BatchID] += item.Qty + item.FreeQty
			if batch.CurrentStock < required[item.BatchID] {
				return &InsufficientStockError{
					BatchID:   batch.ID,
					BatchNo:   batch.BatchNo,
					Requested: required[item.BatchID],
					Available: batch.CurrentStock,
				}
			}
			batches[i] = batch
		}

		invoiceNo, err := nextNumberTx(tx, models.CounterInvoice)
		if err != nil {
			return err
		}

		header := models.SalesInvoice{
			InvoiceNo:      invoiceNo,
			CustomerID:     input.CustomerID,
			InvoiceDate:    invoiceDate,
			AdvanceUsed:    input.Payment.AdvanceUsed,
			AmountReceived: input.Payment.AmountReceived,
			PaymentMode:    input.Payment.Mode,
			CurrentStatus:  models.DocumentStatusConfirmed,
		}

		for i, item := range input.Items {
			amounts, err := CalculateLineAmounts(item.Qty, item.UnitRate, item.DiscountPct, item.GstPct)
			if err != nil {
				return err
			}
			base := item.UnitRate.Mul(decimal.NewFromInt(int64(item.Qty)))
			header.SubTotal = header.SubTotal.Add(base)
			header.DiscountAmount = header.DiscountAmount.Add(base.Sub(amounts.Taxable))
			header.TaxableAmount = header.TaxableAmount.Add(amounts.Taxable)
			header.TaxAmount = header.TaxAmount.Add(amounts.Tax)
			header.CgstAmount = header.CgstAmount.Add(amounts.Cgst)
			header.SgstAmount = header.SgstAmount.Add(amounts.Sgst)
			header.GrandTotal = header.GrandTotal.Add(amounts.Net)

			header.Details = append(header.Details, models.SalesInvoiceDetail{
				ProductID:     batches[i].ProductID,
				BatchID:       item.BatchID,
				Qty:           item.Qty,
				FreeQty:       item.FreeQty,
				UnitRate:      item.UnitRate,
				DiscountPct:   item.DiscountPct,
				GstPct:        item.GstPct,
				TaxableAmount: amounts.Taxable,
				TaxAmount:     amounts.Tax,
				NetAmount:     amounts.Net,
			})
		}

		settled := input.Payment.AdvanceUsed.Add(input.Payment.AmountReceived)
		if settled.GreaterThan(header.GrandTotal) {
			return &InvalidAmountError{Field: "payment", Amount: settled, Reason: "exceeds grand total"}
		}
		header.PaidAmount = settled
		header.DueAmount = header.GrandTotal.Sub(settled)

		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		for _, detail := range header.Details {
			if _, err := decrementStockTx(tx, detail.BatchID, detail.Qty+detail.FreeQty); err != nil {
				return err
			}
		}

		voucherNo := fmt.Sprintf("INV-%d", header.InvoiceNo)
		entries := []models.LedgerEntry{{
			EntryType: models.EntryTypeSales,
			Debit:     header.GrandTotal,
			EntryDate: invoiceDate,
			InvoiceID: &header.ID,
			VoucherNo: voucherNo,
			Narration: fmt.Sprintf("Sales Invoice #%d", header.InvoiceNo),
		}}
		if header.AdvanceUsed.IsPositive() {
			entries = append(entries, models.LedgerEntry{
				EntryType: models.EntryTypeAdjustment,
				Credit:    header.AdvanceUsed,
				EntryDate: invoiceDate,
				InvoiceID: &header.ID,
				VoucherNo: voucherNo,
				Narration: "Advance Adjusted",
			})
		}
		if header.AmountReceived.IsPositive() {
			entries = append(entries, models.LedgerEntry{
				EntryType: models.EntryTypeReceipt,
				Credit:    header.AmountReceived,
				EntryDate: invoiceDate,
				InvoiceID: &header.ID,
				VoucherNo: voucherNo,
				Narration: "Payment Received",
				Mode:      header.PaymentMode,
			})
		}
		if _, err := postEntriesTx(tx, header.CustomerID, entries); err != nil {
			return err
		}

		if err := recordOutboxTx(tx, models.OutboxReferenceTypeInvoice, header.ID, models.OutboxActionCreate, header); err != nil {
			return err
		}

		invoice = &header
		return nil
	})
	if err != nil {
		config.LogError(e.logger, "invoice.go", "CreateInvoice", "transaction", input.CustomerID, err)
		return nil, err
	}
	return invoice, nil
}

// GetInvoice loads an invoice with its lines.
func (e *Engine) GetInvoice(ctx context.Context, id int) (*models.SalesInvoice, error) {
	var invoice models.SalesInvoice
	err := e.db.WithContext(ctx).Preload("Details").First(&invoice, id).Error
	if isNotFound(err) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
