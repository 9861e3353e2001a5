package engine_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

// newTestEngine opens a per-test in-memory database. A single pooled
// connection keeps the shared-cache database alive for the test's duration
// and serializes writers.
func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return engine.New(db, logger)
}

func createAccount(t *testing.T, eng *engine.Engine, name string, accountType models.AccountType, opening decimal.Decimal) *models.Account {
	t.Helper()
	account := models.Account{
		Name:           name,
		Type:           accountType,
		OpeningBalance: opening,
		CurrentBalance: opening,
	}
	if err := eng.DB().Create(&account).Error; err != nil {
		t.Fatalf("create account %q: %v", name, err)
	}
	return &account
}

func seedBatch(t *testing.T, eng *engine.Engine, productID int, batchNo string, stock int, rate string, expiry time.Time) *models.ProductBatch {
	t.Helper()
	batch := models.ProductBatch{
		ProductID:    productID,
		BatchNo:      batchNo,
		ExpiryDate:   expiry,
		PurchaseRate: dec(rate),
		SaleRate:     dec(rate).Mul(decimal.NewFromInt(2)).Round(2),
		CurrentStock: stock,
	}
	if err := eng.DB().Create(&batch).Error; err != nil {
		t.Fatalf("seed batch %q: %v", batchNo, err)
	}
	return &batch
}

func reloadBatch(t *testing.T, eng *engine.Engine, batchID int) *models.ProductBatch {
	t.Helper()
	var batch models.ProductBatch
	if err := eng.DB().First(&batch, batchID).Error; err != nil {
		t.Fatalf("reload batch %d: %v", batchID, err)
	}
	return &batch
}

func reloadAccount(t *testing.T, eng *engine.Engine, accountID int) *models.Account {
	t.Helper()
	var account models.Account
	if err := eng.DB().First(&account, accountID).Error; err != nil {
		t.Fatalf("reload account %d: %v", accountID, err)
	}
	return &account
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}
