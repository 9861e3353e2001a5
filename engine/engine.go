package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine is the transactional inventory-ledger core. It owns no connection
// lifecycle: the process entry point opens the database and hands the handle
// in.
type Engine struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func New(db *gorm.DB, logger *logrus.Logger) *Engine {
	return &Engine{db: db, logger: logger}
}

// DB exposes the underlying handle for reporting collaborators.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// forUpdate adds a row lock on dialects that support it. SQLite (used by the
// test suite) is single-writer, so the clause is omitted there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// translateTxError maps driver-level contention failures onto the retryable
// taxonomy error. MySQL 1213 is a deadlock victim, 1205 a lock wait timeout.
func translateTxError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "Error 1213") || strings.Contains(msg, "Error 1205") || strings.Contains(msg, "database is locked") {
		return ErrConcurrencyConflict
	}
	return err
}

// inTransaction runs fn in one all-or-nothing transaction.
func (e *Engine) inTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := e.db.WithContext(ctx).Transaction(fn)
	return translateTxError(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
