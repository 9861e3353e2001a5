package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/saif-raza-001/pharmastream/config"
	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

// Seeds a fresh dev database with two accounts, an opening purchase and a
// first invoice so the API is immediately exercisable.
func main() {
	reset := flag.Bool("reset", false, "Drop and recreate all tables before seeding")
	flag.Parse()

	godotenv.Load()

	logger := config.NewLogger()
	db := config.OpenDatabaseWithRetry(config.DatabaseConfigFromEnv())

	if *reset {
		if err := db.Migrator().DropTable(
			&models.OutboxRecord{}, &models.LedgerEntry{},
			&models.SalesInvoiceDetail{}, &models.SalesInvoice{},
			&models.PurchaseDetail{}, &models.Purchase{},
			&models.ProductBatch{}, &models.DocumentCounter{}, &models.Account{},
		); err != nil {
			fmt.Fprintf(os.Stderr, "drop tables: %v\n", err)
			os.Exit(1)
		}
	}
	if err := models.MigrateTables(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(db, logger)
	ctx := context.Background()

	customer := models.Account{
		Name:           "City Care Pharmacy",
		Type:           models.AccountTypeCustomer,
		OpeningBalance: decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	supplier := models.Account{
		Name:           "Medilink Distributors",
		Type:           models.AccountTypeSupplier,
		OpeningBalance: decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	for _, acct := range []*models.Account{&customer, &supplier} {
		if err := db.Where("name = ?", acct.Name).FirstOrCreate(acct).Error; err != nil {
			fmt.Fprintf(os.Stderr, "seed account %q: %v\n", acct.Name, err)
			os.Exit(1)
		}
	}

	expiry := time.Now().AddDate(2, 0, 0)
	purchase, err := eng.CreatePurchase(ctx, &models.NewPurchase{
		SupplierID: supplier.ID,
		BillNo:     "SEED-001",
		Items: []models.NewPurchaseItem{
			{
				ProductID:    1,
				BatchNo:      "PARA500-A1",
				Qty:          500,
				FreeQty:      50,
				PurchaseRate: decimal.NewFromFloat(8.50),
				MRP:          decimal.NewFromFloat(15.00),
				SaleRate:     decimal.NewFromFloat(12.00),
				ExpiryDate:   expiry,
				GstPct:       decimal.NewFromInt(12),
			},
			{
				ProductID:    2,
				BatchNo:      "AMOX250-B1",
				Qty:          200,
				PurchaseRate: decimal.NewFromFloat(22.00),
				MRP:          decimal.NewFromFloat(40.00),
				SaleRate:     decimal.NewFromFloat(32.00),
				ExpiryDate:   expiry,
				GstPct:       decimal.NewFromInt(12),
			},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed purchase: %v\n", err)
		os.Exit(1)
	}

	batches, err := eng.ListAvailableBatches(ctx, 1)
	if err != nil || len(batches) == 0 {
		fmt.Fprintf(os.Stderr, "seed batches missing: %v\n", err)
		os.Exit(1)
	}
	invoice, err := eng.CreateInvoice(ctx, &models.NewSalesInvoice{
		CustomerID: customer.ID,
		Items: []models.NewSalesInvoiceItem{
			{
				BatchID:  batches[0].ID,
				Qty:      20,
				UnitRate: decimal.NewFromFloat(12.00),
				GstPct:   decimal.NewFromInt(12),
			},
		},
		Payment: models.NewInvoicePayment{
			AmountReceived: decimal.NewFromFloat(100.00),
			Mode:           "CASH",
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed invoice: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded: customer=%d supplier=%d purchase=PUR-%d invoice=INV-%d\n",
		customer.ID, supplier.ID, purchase.PurchaseNo, invoice.InvoiceNo)
}
