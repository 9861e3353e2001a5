package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

func invoiceForPayment(t *testing.T, eng *engine.Engine, customerID int) *models.SalesInvoice {
	t.Helper()
	batch := seedBatch(t, eng, 1, "PARA-01", 100, "8.50", time.Now().AddDate(1, 0, 0))
	invoice, err := eng.CreateInvoice(context.Background(), &models.NewSalesInvoice{
		CustomerID: customerID,
		Items: []models.NewSalesInvoiceItem{
			{BatchID: batch.ID, Qty: 10, UnitRate: dec("100"), DiscountPct: dec("10"), GstPct: dec("12")},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return invoice
}

func TestReceivePaymentSettlesDueProgressively(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	invoice := invoiceForPayment(t, eng, customer.ID)
	assertDec(t, "initial due", invoice.DueAmount, "1008")

	due, err := eng.ReceivePayment(ctx, invoice.ID, &models.NewPaymentReceipt{Amount: dec("500"), Mode: "CASH"})
	if err != nil {
		t.Fatalf("first ReceivePayment: %v", err)
	}
	assertDec(t, "due after first", due, "508")
	assertDec(t, "customer balance", reloadAccount(t, eng, customer.ID).CurrentBalance, "508")

	due, err = eng.ReceivePayment(ctx, invoice.ID, &models.NewPaymentReceipt{Amount: dec("508"), Mode: "UPI"})
	if err != nil {
		t.Fatalf("second ReceivePayment: %v", err)
	}
	assertDec(t, "due after second", due, "0")
	assertDec(t, "customer balance", reloadAccount(t, eng, customer.ID).CurrentBalance, "0")

	_, err = eng.ReceivePayment(ctx, invoice.ID, &models.NewPaymentReceipt{Amount: dec("1"), Mode: "CASH"})
	if !errors.Is(err, engine.ErrAlreadyPaid) {
		t.Fatalf("got %v, want ErrAlreadyPaid", err)
	}
}

func TestReceivePaymentRejectsOverpayment(t *testing.T) {
	eng := newTestEngine(t)
	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	invoice := invoiceForPayment(t, eng, customer.ID)

	_, err := eng.ReceivePayment(context.Background(), invoice.ID, &models.NewPaymentReceipt{Amount: dec("2000"), Mode: "CASH"})
	var amountErr *engine.InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("got %v, want InvalidAmountError", err)
	}
	assertDec(t, "due unchanged", mustGetInvoice(t, eng, invoice.ID).DueAmount, "1008")
}

func TestReceivePaymentRejectsNonPositiveAmount(t *testing.T) {
	eng := newTestEngine(t)
	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	invoice := invoiceForPayment(t, eng, customer.ID)

	for _, amount := range []string{"0", "-5"} {
		_, err := eng.ReceivePayment(context.Background(), invoice.ID, &models.NewPaymentReceipt{Amount: dec(amount), Mode: "CASH"})
		var amountErr *engine.InvalidAmountError
		if !errors.As(err, &amountErr) {
			t.Fatalf("amount %s: got %v, want InvalidAmountError", amount, err)
		}
	}
}

func TestReceivePaymentOnVoidInvoice(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	invoice := invoiceForPayment(t, eng, customer.ID)

	if _, err := eng.VoidInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("VoidInvoice: %v", err)
	}
	_, err := eng.ReceivePayment(ctx, invoice.ID, &models.NewPaymentReceipt{Amount: dec("10"), Mode: "CASH"})
	if !errors.Is(err, engine.ErrInvoiceNotFound) {
		t.Fatalf("got %v, want ErrInvoiceNotFound", err)
	}
}

func TestStandaloneReceiptCreditsCustomer(t *testing.T) {
	eng := newTestEngine(t)
	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("700"))

	entry, err := eng.CreateReceipt(context.Background(), &models.NewVoucher{
		AccountID: customer.ID,
		Amount:    dec("700"),
		Mode:      "NEFT",
		Reference: "UTR-123",
	})
	if err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}
	if entry.EntryType != models.EntryTypeReceipt {
		t.Fatalf("EntryType = %s, want RECEIPT", entry.EntryType)
	}
	if entry.VoucherNo != "RCP-1" {
		t.Fatalf("VoucherNo = %q, want RCP-1", entry.VoucherNo)
	}
	if entry.Narration != "Payment Received" {
		t.Fatalf("Narration = %q", entry.Narration)
	}
	assertDec(t, "customer balance", reloadAccount(t, eng, customer.ID).CurrentBalance, "0")
}

func TestStandalonePaymentDebitsSupplier(t *testing.T) {
	eng := newTestEngine(t)
	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("-1120"))

	entry, err := eng.CreatePayment(context.Background(), &models.NewVoucher{
		AccountID: supplier.ID,
		Amount:    dec("1120"),
		Mode:      "RTGS",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if entry.EntryType != models.EntryTypePayment {
		t.Fatalf("EntryType = %s, want PAYMENT", entry.EntryType)
	}
	if entry.VoucherNo != "PAY-1" {
		t.Fatalf("VoucherNo = %q, want PAY-1", entry.VoucherNo)
	}
	if entry.Narration != "Payment Made" {
		t.Fatalf("Narration = %q", entry.Narration)
	}
	assertDec(t, "supplier balance", reloadAccount(t, eng, supplier.ID).CurrentBalance, "0")
}

func TestStandaloneVoucherTypeChecks(t *testing.T) {
	eng := newTestEngine(t)
	customer := createAccount(t, eng, "City Care", models.AccountTypeCustomer, dec("0"))
	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("0"))

	var mismatch *engine.AccountTypeMismatchError
	_, err := eng.CreateReceipt(context.Background(), &models.NewVoucher{AccountID: supplier.ID, Amount: dec("10"), Mode: "CASH"})
	if !errors.As(err, &mismatch) {
		t.Fatalf("receipt on supplier: got %v, want AccountTypeMismatchError", err)
	}
	_, err = eng.CreatePayment(context.Background(), &models.NewVoucher{AccountID: customer.ID, Amount: dec("10"), Mode: "CASH"})
	if !errors.As(err, &mismatch) {
		t.Fatalf("payment on customer: got %v, want AccountTypeMismatchError", err)
	}
}

func mustGetInvoice(t *testing.T, eng *engine.Engine, id int) *models.SalesInvoice {
	t.Helper()
	invoice, err := eng.GetInvoice(context.Background(), id)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	return invoice
}
