package engine

import (
	"context"
	"fmt"

	"github.com/saif-raza-001/pharmastream/models"
	"gorm.io/gorm"
)

// nextNumberTx issues the next value of a named counter inside the caller's
// transaction.
//
// The increment is a single conditional UPDATE, never a read-then-write pair:
// the UPDATE takes the counter's row lock until commit, so a concurrent
// transaction blocks on its own UPDATE and reads a later value. The row is
// created lazily with value 1 on first use. Because issuance shares the
// document's transaction, a number is only ever consumed by a committed
// document.
func nextNumberTx(tx *gorm.DB, name string) (int64, error) {
	res := tx.Model(&models.DocumentCounter{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrSequenceUnavailable, res.Error)
	}

	if res.RowsAffected == 0 {
		counter := models.DocumentCounter{Name: name, Value: 1}
		if err := tx.Create(&counter).Error; err == nil {
			return 1, nil
		}
		// Lost the first-use race to a concurrent creator; increment the row
		// it just committed.
		res = tx.Model(&models.DocumentCounter{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil || res.RowsAffected == 0 {
			return 0, fmt.Errorf("%w: counter %q could not be initialized", ErrSequenceUnavailable, name)
		}
	}

	var counter models.DocumentCounter
	if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSequenceUnavailable, err)
	}
	return counter.Value, nil
}

// NextNumber issues a document number in its own transaction. Business flows
// call nextNumberTx inside their posting transaction instead, so unissued
// numbers never leak on rollback.
func (e *Engine) NextNumber(ctx context.Context, name string) (int64, error) {
	var value int64
	err := e.inTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		value, err = nextNumberTx(tx, name)
		return err
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
