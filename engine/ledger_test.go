package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

// For any account the reconstructed statement over all time must close at
// the authoritative stored balance.
func TestGetLedgerClosingMatchesCurrentBalance(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("150"))
	batch := seedBatch(t, eng, 1, "PARA-01", 100, "8.50", time.Now().AddDate(1, 0, 0))

	invoice, err := eng.CreateInvoice(ctx, &models.NewSalesInvoice{
		CustomerID: customer.ID,
		Items: []models.NewSalesInvoiceItem{
			{BatchID: batch.ID, Qty: 10, UnitRate: dec("100"), DiscountPct: dec("10"), GstPct: dec("12")},
		},
		Payment: models.NewInvoicePayment{AmountReceived: dec("300"), Mode: "CASH"},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if _, err := eng.ReceivePayment(ctx, invoice.ID, &models.NewPaymentReceipt{Amount: dec("208"), Mode: "UPI"}); err != nil {
		t.Fatalf("ReceivePayment: %v", err)
	}

	statement, err := eng.GetLedger(ctx, customer.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	assertDec(t, "opening", statement.OpeningBalance, "150")
	assertDec(t, "total debit", statement.TotalDebit, "1008")
	assertDec(t, "total credit", statement.TotalCredit, "508")
	assertDec(t, "closing", statement.ClosingBalance, "650")

	account := reloadAccount(t, eng, customer.ID)
	if !statement.ClosingBalance.Equal(account.CurrentBalance) {
		t.Fatalf("closing %s != stored balance %s", statement.ClosingBalance, account.CurrentBalance)
	}

	// Running balance is cumulative line by line.
	running := statement.OpeningBalance
	for i, line := range statement.Entries {
		running = running.Add(line.Debit).Sub(line.Credit)
		if !line.RunningBalance.Equal(running) {
			t.Fatalf("line %d running balance = %s, want %s", i, line.RunningBalance, running)
		}
	}
}

func TestGetLedgerWindowOpeningIncludesPriorEntries(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("100"))
	batch := seedBatch(t, eng, 1, "PARA-01", 100, "8.50", time.Now().AddDate(2, 0, 0))

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, day := range []time.Time{jan, mar} {
		d := day
		if _, err := eng.CreateInvoice(ctx, &models.NewSalesInvoice{
			CustomerID:  customer.ID,
			InvoiceDate: &d,
			Items:       []models.NewSalesInvoiceItem{{BatchID: batch.ID, Qty: 2, UnitRate: dec("50")}},
		}); err != nil {
			t.Fatalf("CreateInvoice %s: %v", day, err)
		}
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	statement, err := eng.GetLedger(ctx, customer.ID, &from, &to)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	// 100 opening + the January invoice's 100 debit.
	assertDec(t, "window opening", statement.OpeningBalance, "200")
	if len(statement.Entries) != 1 {
		t.Fatalf("window entries = %d, want 1", len(statement.Entries))
	}
	assertDec(t, "window closing", statement.ClosingBalance, "300")
}

func TestGetLedgerOrdersByDateThenInsertion(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	batch := seedBatch(t, eng, 1, "PARA-01", 100, "8.50", time.Now().AddDate(2, 0, 0))

	later := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	// Inserted out of date order on purpose.
	for _, day := range []time.Time{later, earlier} {
		d := day
		if _, err := eng.CreateInvoice(ctx, &models.NewSalesInvoice{
			CustomerID:  customer.ID,
			InvoiceDate: &d,
			Items:       []models.NewSalesInvoiceItem{{BatchID: batch.ID, Qty: 1, UnitRate: dec("10")}},
		}); err != nil {
			t.Fatalf("CreateInvoice %s: %v", day, err)
		}
	}

	statement, err := eng.GetLedger(ctx, customer.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(statement.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(statement.Entries))
	}
	if !statement.Entries[0].EntryDate.Equal(earlier) {
		t.Fatalf("first entry date = %s, want %s", statement.Entries[0].EntryDate, earlier)
	}
}

func TestGetLedgerUnknownAccount(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.GetLedger(context.Background(), 404, nil, nil)
	if !errors.Is(err, engine.ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}
