package engine

import (
	"github.com/saif-raza-001/pharmastream/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// mergeOrCreateBatchTx lands a purchase line in its batch.
//
// When the (productId, batchNo) batch already exists:
//
//	newStock        = existingStock + qty + freeQty
//	weightedAvgRate = (existingRate*existingStock + purchaseRate*qty) / (existingStock + qty)
//
// Free quantity adds to stock but never enters the weighted-average numerator
// or denominator; its cost is treated as amortized into the paid units' rate.
// MRP and sale rate are overwritten only when the incoming line provides
// non-zero values. Expiry only ever moves later, never earlier.
//
// When no batch exists, one is created at the provided rate.
func mergeOrCreateBatchTx(tx *gorm.DB, productID int, item models.NewPurchaseItem) (*models.ProductBatch, error) {
	if item.Qty < 0 || item.FreeQty < 0 {
		return nil, &InvalidLineItemError{Field: "qty", Reason: "must not be negative"}
	}
	if item.PurchaseRate.IsNegative() {
		return nil, &InvalidLineItemError{Field: "purchase_rate", Reason: "must not be negative"}
	}

	batch, err := findBatchTx(tx, productID, item.BatchNo)
	if err != nil {
		return nil, err
	}

	if batch == nil {
		batch = &models.ProductBatch{
			ProductID:    productID,
			BatchNo:      item.BatchNo,
			ExpiryDate:   item.ExpiryDate,
			MRP:          item.MRP,
			SaleRate:     item.SaleRate,
			PurchaseRate: item.PurchaseRate.Round(4),
			CurrentStock: item.Qty + item.FreeQty,
		}
		if err := tx.Create(batch).Error; err != nil {
			return nil, err
		}
		return batch, nil
	}

	newRate := weightedAverageRate(batch.PurchaseRate, batch.CurrentStock, item.PurchaseRate, item.Qty)

	updates := map[string]interface{}{
		"CurrentStock": batch.CurrentStock + item.Qty + item.FreeQty,
		"PurchaseRate": newRate,
	}
	if !item.MRP.IsZero() {
		updates["MRP"] = item.MRP
	}
	if !item.SaleRate.IsZero() {
		updates["SaleRate"] = item.SaleRate
	}
	if item.ExpiryDate.After(batch.ExpiryDate) {
		updates["ExpiryDate"] = item.ExpiryDate
	}

	if err := tx.Model(batch).Updates(updates).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// weightedAverageRate blends the stored cost with an incoming line's cost.
// The degenerate zero-denominator case falls back to the incoming rate.
func weightedAverageRate(existingRate decimal.Decimal, existingStock int, incomingRate decimal.Decimal, incomingQty int) decimal.Decimal {
	denominator := int64(existingStock) + int64(incomingQty)
	if denominator == 0 {
		return incomingRate.Round(4)
	}
	existingValue := existingRate.Mul(decimal.NewFromInt(int64(existingStock)))
	incomingValue := incomingRate.Mul(decimal.NewFromInt(int64(incomingQty)))
	return existingValue.Add(incomingValue).DivRound(decimal.NewFromInt(denominator), 4)
}
