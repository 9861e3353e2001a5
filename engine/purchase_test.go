package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

func TestCreatePurchaseCreatesBatchAndPostsCredit(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("0"))
	expiry := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

	purchase, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID,
		BillNo:     "BILL-77",
		Items: []models.NewPurchaseItem{
			{
				ProductID:    1,
				BatchNo:      "PARA-01",
				Qty:          100,
				FreeQty:      10,
				PurchaseRate: dec("10"),
				MRP:          dec("20"),
				SaleRate:     dec("15"),
				ExpiryDate:   expiry,
				GstPct:       dec("12"),
			},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if purchase.PurchaseNo != 1 {
		t.Fatalf("PurchaseNo = %d, want 1", purchase.PurchaseNo)
	}
	assertDec(t, "taxable", purchase.TaxableAmount, "1000")
	assertDec(t, "tax", purchase.TaxAmount, "120")
	assertDec(t, "grand total", purchase.GrandTotal, "1120")

	var batch models.ProductBatch
	if err := eng.DB().Where("product_id = ? AND batch_no = ?", 1, "PARA-01").First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if batch.CurrentStock != 110 {
		t.Fatalf("CurrentStock = %d, want 110", batch.CurrentStock)
	}
	assertDec(t, "purchase rate", batch.PurchaseRate, "10")
	assertDec(t, "mrp", batch.MRP, "20")
	if !batch.ExpiryDate.Equal(expiry) {
		t.Fatalf("ExpiryDate = %s, want %s", batch.ExpiryDate, expiry)
	}

	// The payable grows: a supplier credit moves the balance negative.
	assertDec(t, "supplier balance", reloadAccount(t, eng, supplier.ID).CurrentBalance, "-1120")

	var entry models.LedgerEntry
	if err := eng.DB().Where("purchase_id = ?", purchase.ID).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.EntryType != models.EntryTypePurchase {
		t.Fatalf("EntryType = %s, want PURCHASE", entry.EntryType)
	}
	assertDec(t, "credit", entry.Credit, "1120")
	if entry.VoucherNo != "PUR-BILL-77" {
		t.Fatalf("VoucherNo = %q, want PUR-BILL-77", entry.VoucherNo)
	}

	var outbox models.OutboxRecord
	if err := eng.DB().
		Where("reference_type = ? AND reference_id = ?", models.OutboxReferenceTypePurchase, purchase.ID).
		First(&outbox).Error; err != nil {
		t.Fatalf("load outbox: %v", err)
	}
	if outbox.PublishStatus != models.OutboxStatusPending {
		t.Fatalf("PublishStatus = %s, want PENDING", outbox.PublishStatus)
	}
}

func TestCreatePurchaseMergesExistingBatch(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("0"))
	early := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	later := time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)

	first := models.NewPurchaseItem{
		ProductID: 1, BatchNo: "AMOX-07", Qty: 100,
		PurchaseRate: dec("10"), MRP: dec("25"), SaleRate: dec("18"), ExpiryDate: early,
	}
	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-1", Items: []models.NewPurchaseItem{first},
	}); err != nil {
		t.Fatalf("first CreatePurchase: %v", err)
	}

	second := models.NewPurchaseItem{
		ProductID: 1, BatchNo: "AMOX-07", Qty: 50,
		PurchaseRate: dec("16"), ExpiryDate: later,
	}
	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-2", Items: []models.NewPurchaseItem{second},
	}); err != nil {
		t.Fatalf("second CreatePurchase: %v", err)
	}

	var batch models.ProductBatch
	if err := eng.DB().Where("product_id = ? AND batch_no = ?", 1, "AMOX-07").First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if batch.CurrentStock != 150 {
		t.Fatalf("CurrentStock = %d, want 150", batch.CurrentStock)
	}
	// (10*100 + 16*50) / 150
	assertDec(t, "weighted average rate", batch.PurchaseRate, "12")
	// Zero incoming MRP/sale rate must not clobber the stored ones.
	assertDec(t, "mrp", batch.MRP, "25")
	assertDec(t, "sale rate", batch.SaleRate, "18")
	if !batch.ExpiryDate.Equal(later) {
		t.Fatalf("ExpiryDate = %s, want %s", batch.ExpiryDate, later)
	}

	var count int64
	if err := eng.DB().Model(&models.ProductBatch{}).
		Where("product_id = ? AND batch_no = ?", 1, "AMOX-07").Count(&count).Error; err != nil {
		t.Fatalf("count batches: %v", err)
	}
	if count != 1 {
		t.Fatalf("batch rows = %d, want 1 (merge, not duplicate)", count)
	}
}

// Free units add to stock but do not dilute the weighted-average cost.
func TestCreatePurchaseMergeExcludesFreeQtyFromAverage(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("0"))
	expiry := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-1",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "CET-11", Qty: 100, PurchaseRate: dec("10"), ExpiryDate: expiry},
		},
	}); err != nil {
		t.Fatalf("first CreatePurchase: %v", err)
	}
	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-2",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "CET-11", Qty: 50, FreeQty: 25, PurchaseRate: dec("16"), ExpiryDate: expiry},
		},
	}); err != nil {
		t.Fatalf("second CreatePurchase: %v", err)
	}

	var batch models.ProductBatch
	if err := eng.DB().Where("product_id = ? AND batch_no = ?", 1, "CET-11").First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if batch.CurrentStock != 175 {
		t.Fatalf("CurrentStock = %d, want 175", batch.CurrentStock)
	}
	assertDec(t, "weighted average rate", batch.PurchaseRate, "12")
}

func TestCreatePurchaseMergeNeverMovesExpiryEarlier(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	supplier := createAccount(t, eng, "Medilink", models.AccountTypeSupplier, dec("0"))
	later := time.Date(2028, 3, 31, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)

	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-1",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "IBU-03", Qty: 10, PurchaseRate: dec("5"), ExpiryDate: later},
		},
	}); err != nil {
		t.Fatalf("first CreatePurchase: %v", err)
	}
	if _, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID, BillNo: "B-2",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "IBU-03", Qty: 10, PurchaseRate: dec("5"), ExpiryDate: earlier},
		},
	}); err != nil {
		t.Fatalf("second CreatePurchase: %v", err)
	}

	var batch models.ProductBatch
	if err := eng.DB().Where("product_id = ? AND batch_no = ?", 1, "IBU-03").First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if !batch.ExpiryDate.Equal(later) {
		t.Fatalf("ExpiryDate = %s, want %s kept", batch.ExpiryDate, later)
	}
}

func TestCreatePurchaseRejectsCustomerAccount(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	customer := createAccount(t, eng, "Not A Supplier", models.AccountTypeCustomer, dec("0"))
	_, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: customer.ID, BillNo: "B-1",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "X-1", Qty: 1, PurchaseRate: dec("1"), ExpiryDate: time.Now().AddDate(1, 0, 0)},
		},
	})
	var mismatch *engine.AccountTypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want AccountTypeMismatchError", err)
	}
}

func TestCreatePurchaseUnknownSupplier(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.CreatePurchase(context.Background(), &models.NewPurchase{
		SupplierID: 9999, BillNo: "B-1",
		Items: []models.NewPurchaseItem{
			{ProductID: 1, BatchNo: "X-1", Qty: 1, PurchaseRate: dec("1"), ExpiryDate: time.Now().AddDate(1, 0, 0)},
		},
	})
	if !errors.Is(err, engine.ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}
