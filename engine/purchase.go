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

// CreatePurchase receives a supplier bill: each line is landed in its batch
// (created or merged with weighted-average cost), a single PURCHASE credit is
// posted for the supplier, and the supplier's payable grows by the grand
// total in one transaction, no partial commit.
func (e *Engine) CreatePurchase(ctx context.Context, input *models.NewPurchase) (*models.Purchase, error) {
	if input == nil || len(input.Items) == 0 {
		return nil, &InvalidLineItemError{Field: "items", Reason: "at least one item required"}
	}

	billDate := time.Now().UTC()
	if input.BillDate != nil {
		billDate = *input.BillDate
	}

	var purchase *models.Purchase
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := lockAccountTx(tx, input.SupplierID, models.AccountTypeSupplier); err != nil {
			return err
		}

		purchaseNo, err := nextNumberTx(tx, models.CounterPurchase)
		if err != nil {
			return err
		}

		header := models.Purchase{
			PurchaseNo:    purchaseNo,
			SupplierID:    input.SupplierID,
			BillNo:        input.BillNo,
			BillDate:      billDate,
			CurrentStatus: models.DocumentStatusConfirmed,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		for _, item := range input.Items {
			if item.Qty <= 0 {
				return &InvalidLineItemError{Field: "qty", Reason: "must be positive"}
			}
			if item.FreeQty < 0 {
				return &InvalidLineItemError{Field: "free_qty", Reason: "must not be negative"}
			}
			amounts, err := CalculateLineAmounts(item.Qty, item.PurchaseRate, item.DiscountPct, item.GstPct)
			if err != nil {
				return err
			}

			batch, err := mergeOrCreateBatchTx(tx, item.ProductID, item)
			if err != nil {
				return err
			}

			detail := models.PurchaseDetail{
				PurchaseID:    header.ID,
				ProductID:     item.ProductID,
				BatchID:       batch.ID,
				BatchNo:       item.BatchNo,
				Qty:           item.Qty,
				FreeQty:       item.FreeQty,
				PurchaseRate:  item.PurchaseRate,
				MRP:           item.MRP,
				SaleRate:      item.SaleRate,
				ExpiryDate:    item.ExpiryDate,
				DiscountPct:   item.DiscountPct,
				GstPct:        item.GstPct,
				TaxableAmount: amounts.Taxable,
				TaxAmount:     amounts.Tax,
				NetAmount:     amounts.Net,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			header.Details = append(header.Details, detail)

			base := item.PurchaseRate.Mul(decimal.NewFromInt(int64(item.Qty)))
			header.SubTotal = header.SubTotal.Add(base)
			header.DiscountAmount = header.DiscountAmount.Add(base.Sub(amounts.Taxable))
			header.TaxableAmount = header.TaxableAmount.Add(amounts.Taxable)
			header.TaxAmount = header.TaxAmount.Add(amounts.Tax)
			header.CgstAmount = header.CgstAmount.Add(amounts.Cgst)
			header.SgstAmount = header.SgstAmount.Add(amounts.Sgst)
			header.GrandTotal = header.GrandTotal.Add(amounts.Net)
		}

		if err := tx.Model(&models.Purchase{}).Where("id = ?", header.ID).
			Updates(map[string]interface{}{
				"SubTotal":       header.SubTotal,
				"DiscountAmount": header.DiscountAmount,
				"TaxableAmount":  header.TaxableAmount,
				"TaxAmount":      header.TaxAmount,
				"CgstAmount":     header.CgstAmount,
				"SgstAmount":     header.SgstAmount,
				"GrandTotal":     header.GrandTotal,
			}).Error; err != nil {
			return err
		}

		voucherNo := fmt.Sprintf("PUR-%s", input.BillNo)
		if input.BillNo == "" {
			voucherNo = fmt.Sprintf("PUR-%d", purchaseNo)
		}
		entries := []models.LedgerEntry{{
			EntryType:  models.EntryTypePurchase,
			Credit:     header.GrandTotal,
			EntryDate:  billDate,
			PurchaseID: &header.ID,
			VoucherNo:  voucherNo,
			Narration:  fmt.Sprintf("Purchase Bill #%d", purchaseNo),
		}}
		if _, err := postEntriesTx(tx, header.SupplierID, entries); err != nil {
			return err
		}

		if err := recordOutboxTx(tx, models.OutboxReferenceTypePurchase, header.ID, models.OutboxActionCreate, header); err != nil {
			return err
		}

		purchase = &header
		return nil
	})
	if err != nil {
		config.LogError(e.logger, "purchase.go", "CreatePurchase", "transaction", input.SupplierID, err)
		return nil, err
	}
	return purchase, nil
}

// GetPurchase loads a purchase with its lines.
func (e *Engine) GetPurchase(ctx context.Context, id int) (*models.Purchase, error) {
	var purchase models.Purchase
	err := e.db.WithContext(ctx).Preload("Details").First(&purchase, id).Error
	if isNotFound(err) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}
