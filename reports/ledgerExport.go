package reports

import (
	"fmt"
	"io"

	"github.com/saif-raza-001/pharmastream/models"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Ledger"

// WriteStatementXLSX renders an account statement as a spreadsheet: one row
// per entry with the running balance alongside, bracketed by opening and
// closing balance rows.
func WriteStatementXLSX(statement *models.Statement, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Voucher", "Type", "Narration", "Mode", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(ledgerSheet, cell, h)
	}

	row := 2
	f.SetCellValue(ledgerSheet, "D"+fmt.Sprint(row), fmt.Sprintf("Opening Balance (%s)", statement.AccountName))
	f.SetCellValue(ledgerSheet, "H"+fmt.Sprint(row), statement.OpeningBalance.StringFixed(2))
	row++

	for _, line := range statement.Entries {
		f.SetCellValue(ledgerSheet, "A"+fmt.Sprint(row), line.EntryDate.Format("2006-01-02"))
		f.SetCellValue(ledgerSheet, "B"+fmt.Sprint(row), line.VoucherNo)
		f.SetCellValue(ledgerSheet, "C"+fmt.Sprint(row), string(line.EntryType))
		f.SetCellValue(ledgerSheet, "D"+fmt.Sprint(row), line.Narration)
		f.SetCellValue(ledgerSheet, "E"+fmt.Sprint(row), line.Mode)
		if line.Debit.IsPositive() {
			f.SetCellValue(ledgerSheet, "F"+fmt.Sprint(row), line.Debit.StringFixed(2))
		}
		if line.Credit.IsPositive() {
			f.SetCellValue(ledgerSheet, "G"+fmt.Sprint(row), line.Credit.StringFixed(2))
		}
		f.SetCellValue(ledgerSheet, "H"+fmt.Sprint(row), line.RunningBalance.StringFixed(2))
		row++
	}

	f.SetCellValue(ledgerSheet, "D"+fmt.Sprint(row), "Totals")
	f.SetCellValue(ledgerSheet, "F"+fmt.Sprint(row), statement.TotalDebit.StringFixed(2))
	f.SetCellValue(ledgerSheet, "G"+fmt.Sprint(row), statement.TotalCredit.StringFixed(2))
	row++
	f.SetCellValue(ledgerSheet, "D"+fmt.Sprint(row), "Closing Balance")
	f.SetCellValue(ledgerSheet, "H"+fmt.Sprint(row), statement.ClosingBalance.StringFixed(2))

	return f.Write(w)
}
