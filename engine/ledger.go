package engine

import (
	"context"
	"time"

	"github.com/saif-raza-001/pharmastream/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lockAccountTx loads an active account under a row lock, optionally
// enforcing its type.
func lockAccountTx(tx *gorm.DB, accountID int, wantType models.AccountType) (*models.Account, error) {
	var account models.Account
	err := forUpdate(tx).First(&account, accountID).Error
	if isNotFound(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if account.IsActive != nil && !*account.IsActive {
		return nil, ErrAccountNotFound
	}
	if wantType != "" && account.Type != wantType {
		return nil, &AccountTypeMismatchError{
			AccountID: account.ID,
			Got:       string(account.Type),
			Want:      string(wantType),
		}
	}
	return &account, nil
}

// postEntriesTx appends ledger entries for one account and maintains its
// running balance in the same transaction.
//
// Each entry must have exactly one of debit/credit > 0 and the other zero.
// The balance moves by SUM(debit) - SUM(credit) atomically in the UPDATE
// itself, so the balance identity holds at every commit point.
func postEntriesTx(tx *gorm.DB, accountID int, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	delta := decimal.Zero
	for i := range entries {
		e := &entries[i]
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return nil, &InvalidEntryError{Reason: "debit and credit must not be negative"}
		}
		debitSet := e.Debit.IsPositive()
		creditSet := e.Credit.IsPositive()
		if debitSet == creditSet {
			return nil, &InvalidEntryError{Reason: "exactly one of debit/credit must be positive"}
		}
		e.AccountID = accountID
		if e.EntryDate.IsZero() {
			e.EntryDate = time.Now().UTC()
		}
		delta = delta.Add(e.SignedAmount())
	}

	for i := range entries {
		if err := tx.Create(&entries[i]).Error; err != nil {
			return nil, err
		}
	}

	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}
	return entries, nil
}

// reverseEntriesTx appends one compensating entry per active entry and stamps
// the originals as reversed. Posted entries are never deleted. The net
// balance delta of the compensating set is exactly the opposite of the
// original set's.
func reverseEntriesTx(tx *gorm.DB, accountID int, originals []models.LedgerEntry) error {
	if len(originals) == 0 {
		return nil
	}
	now := time.Now().UTC()
	compensating := make([]models.LedgerEntry, 0, len(originals))
	for _, o := range originals {
		if o.ReversedByEntryID != nil || o.IsReversal {
			continue
		}
		origID := o.ID
		compensating = append(compensating, models.LedgerEntry{
			EntryType:       o.EntryType,
			Debit:           o.Credit,
			Credit:          o.Debit,
			EntryDate:       now,
			InvoiceID:       o.InvoiceID,
			PurchaseID:      o.PurchaseID,
			VoucherNo:       o.VoucherNo,
			Narration:       "REV: " + o.Narration,
			Mode:            o.Mode,
			IsReversal:      true,
			ReversesEntryID: &origID,
		})
	}
	if len(compensating) == 0 {
		return nil
	}

	posted, err := postEntriesTx(tx, accountID, compensating)
	if err != nil {
		return err
	}
	for _, rev := range posted {
		if err := tx.Model(&models.LedgerEntry{}).
			Where("id = ?", *rev.ReversesEntryID).
			Updates(map[string]interface{}{
				"reversed_by_entry_id": rev.ID,
				"reversed_at":          &now,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetLedger reconstructs an account's statement with a running balance.
//
// The window's opening balance is the account opening balance plus the signed
// sum of all entries strictly before `from`. Entries are listed by ascending
// entry date, ties broken by insertion order. When the window spans all time
// the closing balance equals the authoritative CurrentBalance; reads run at
// default isolation, no locks.
func (e *Engine) GetLedger(ctx context.Context, accountID int, from, to *time.Time) (*models.Statement, error) {
	db := e.db.WithContext(ctx)

	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	opening := account.OpeningBalance
	if from != nil {
		type sums struct {
			Debit  decimal.Decimal
			Credit decimal.Decimal
		}
		var s sums
		err := db.Model(&models.LedgerEntry{}).
			Select("COALESCE(SUM(debit),0) AS debit, COALESCE(SUM(credit),0) AS credit").
			Where("account_id = ? AND entry_date < ?", accountID, *from).
			Scan(&s).Error
		if err != nil {
			return nil, err
		}
		opening = opening.Add(s.Debit).Sub(s.Credit)
	}

	query := db.Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("entry_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("entry_date <= ?", *to)
	}
	var entries []models.LedgerEntry
	if err := query.Order("entry_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	statement := &models.Statement{
		AccountID:      account.ID,
		AccountName:    account.Name,
		AccountType:    account.Type,
		FromDate:       from,
		ToDate:         to,
		OpeningBalance: opening,
		Entries:        make([]models.StatementLine, 0, len(entries)),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}

	running := opening
	for _, entry := range entries {
		running = running.Add(entry.SignedAmount())
		statement.TotalDebit = statement.TotalDebit.Add(entry.Debit)
		statement.TotalCredit = statement.TotalCredit.Add(entry.Credit)
		statement.Entries = append(statement.Entries, models.StatementLine{
			LedgerEntry:    entry,
			RunningBalance: running,
		})
	}
	statement.ClosingBalance = running
	return statement, nil
}
