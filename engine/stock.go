package engine

import (
	"context"

	"github.com/saif-raza-001/pharmastream/models"
	"gorm.io/gorm"
)

// findBatchTx loads a batch by (productId, batchNo) under a row lock.
// Returns (nil, nil) when no such batch exists.
func findBatchTx(tx *gorm.DB, productID int, batchNo string) (*models.ProductBatch, error) {
	var batch models.ProductBatch
	err := forUpdate(tx).
		Where("product_id = ? AND batch_no = ?", productID, batchNo).
		First(&batch).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// lockBatchTx loads a batch by id under a row lock.
func lockBatchTx(tx *gorm.DB, batchID int) (*models.ProductBatch, error) {
	var batch models.ProductBatch
	err := forUpdate(tx).First(&batch, batchID).Error
	if isNotFound(err) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// decrementStockTx subtracts qty from a batch and returns the remaining
// stock. The non-negativity check and the subtraction are one statement: the
// UPDATE only matches while current_stock >= qty, so a concurrent depletion
// between the coordinator's pre-check and this point fails the statement
// instead of overselling.
func decrementStockTx(tx *gorm.DB, batchID int, qty int) (int, error) {
	res := tx.Model(&models.ProductBatch{}).
		Where("id = ? AND current_stock >= ?", batchID, qty).
		Update("current_stock", gorm.Expr("current_stock - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	var batch models.ProductBatch
	if err := tx.First(&batch, batchID).Error; err != nil {
		if isNotFound(err) {
			return 0, ErrBatchNotFound
		}
		return 0, err
	}
	if res.RowsAffected == 0 {
		return 0, &InsufficientStockError{
			BatchID:   batch.ID,
			BatchNo:   batch.BatchNo,
			Requested: qty,
			Available: batch.CurrentStock,
		}
	}
	return batch.CurrentStock, nil
}

// incrementStockTx adds qty back to a batch. Used by reversal/restock;
// unconditional.
func incrementStockTx(tx *gorm.DB, batchID int, qty int) error {
	res := tx.Model(&models.ProductBatch{}).
		Where("id = ?", batchID).
		Update("current_stock", gorm.Expr("current_stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

// ListAvailableBatches returns a product's batches with stock on hand,
// soonest-expiring first. This is the FEFO ordering presented to sale entry;
// the engine does not auto-select a batch.
func (e *Engine) ListAvailableBatches(ctx context.Context, productID int) ([]models.ProductBatch, error) {
	var batches []models.ProductBatch
	err := e.db.WithContext(ctx).
		Where("product_id = ? AND current_stock > 0", productID).
		Order("expiry_date ASC, id ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// GetBatch loads one batch outside any transaction (reporting use).
func (e *Engine) GetBatch(ctx context.Context, batchID int) (*models.ProductBatch, error) {
	var batch models.ProductBatch
	err := e.db.WithContext(ctx).First(&batch, batchID).Error
	if isNotFound(err) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}
