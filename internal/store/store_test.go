package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func txn(date ledger.Date, desc string, legs ...string) *ledger.Transaction {
	t := &ledger.Transaction{Date: date, Description: desc}
	for i := 0; i < len(legs); i += 2 {
		t.Entries = append(t.Entries, ledger.JournalEntry{AccountID: legs[i], Amount: decimal.RequireFromString(legs[i+1])})
	}
	return t
}

func TestOpenSeedsDefaultChart(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart))

	c, err := chart.New(accounts)
	require.NoError(t, err, "seeded chart forms a valid tree")
	_, path, err := c.Classify("1010")
	require.NoError(t, err)
	assert.Equal(t, []string{"1000"}, path)

	cash, err := s.GetAccount(ctx, "1010")
	require.NoError(t, err)
	assert.Equal(t, "1000", cash.ParentID)
	assert.Equal(t, ledger.Asset, cash.Classification)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateAccount(context.Background(), &ledger.Account{ID: "1050", Name: "Petty Cash", Code: 1050, Classification: ledger.Asset, ParentID: "1000"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetAccount(context.Background(), "1050")
	require.NoError(t, err)
}

func TestCreateAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &ledger.Account{ID: "1050", Name: "Petty Cash", Code: 1050, Classification: ledger.Asset, ParentID: "1000"}))

	err := s.CreateAccount(ctx, &ledger.Account{ID: "1050", Name: "Again", Classification: ledger.Asset})
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	err = s.CreateAccount(ctx, &ledger.Account{ID: "1060", Name: "Orphan", Classification: ledger.Asset, ParentID: "1999"})
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)

	err = s.CreateAccount(ctx, &ledger.Account{ID: "x", Name: "Wrong side", Classification: ledger.Liability, ParentID: "1000"})
	require.ErrorIs(t, err, ledger.ErrParentClassificationMismatch)

	children, err := s.ListAccounts(ctx, AccountFilter{ParentID: "1000"})
	require.NoError(t, err)
	assert.Len(t, children, 5)

	expenses, err := s.ListAccounts(ctx, AccountFilter{Classification: ledger.Expense, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
	assert.Equal(t, "5000", expenses[0].ID)

	_, err = s.GetAccount(ctx, "nope")
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestCreateAndGetTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	date := ledger.NewDate(2024, time.January, 2)

	in := txn(date, "owner investment", "1010", "1000", "3010", "-1000")
	require.NoError(t, s.CreateTransaction(ctx, in))
	require.NotEmpty(t, in.ID)
	require.Len(t, in.Entries, 2)
	assert.Equal(t, in.ID, in.Entries[0].TransactionID)

	got, err := s.GetTransaction(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner investment", got.Description)
	assert.True(t, got.Date.Equal(date))
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "1010", got.Entries[0].AccountID)
	assert.Equal(t, "1000.00", ledger.FormatAmount(got.Entries[0].Amount))
	assert.Equal(t, "-1000.00", ledger.FormatAmount(got.Entries[1].Amount))
	assert.Equal(t, "owner investment", got.Entries[1].Description)

	_, err = s.GetTransaction(ctx, "missing")
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestCreateTransactionRejects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	date := ledger.NewDate(2024, time.January, 2)

	err := s.CreateTransaction(ctx, txn(date, "lopsided", "1010", "10", "3010", "-9"))
	require.ErrorIs(t, err, ledger.ErrUnbalancedTransaction)

	err = s.CreateTransaction(ctx, txn(date, "ghost", "1010", "10", "9999", "-10"))
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)

	err = s.CreateTransaction(ctx, txn(date, "too large", "1010", "100000000000000000", "3010", "-100000000000000000"))
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	balance, err := s.AccountBalance(ctx, "1010", ledger.Date{})
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	txns, err := s.ListTransactions(ctx, TxnFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestListTransactionsFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, d := range []int{1, 10, 20} {
		date := ledger.NewDate(2024, time.March, d)
		acct := "4010"
		if i == 2 {
			acct = "4020"
		}
		require.NoError(t, s.CreateTransaction(ctx, txn(date, "sale", "1010", "100", acct, "-100")))
	}

	all, err := s.ListTransactions(ctx, TxnFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Equal(ledger.NewDate(2024, time.March, 20)), "newest first")

	mid, err := s.ListTransactions(ctx, TxnFilter{Start: ledger.NewDate(2024, time.March, 10), End: ledger.NewDate(2024, time.March, 20)})
	require.NoError(t, err)
	assert.Len(t, mid, 2)

	services, err := s.ListTransactions(ctx, TxnFilter{AccountID: "4010"})
	require.NoError(t, err)
	assert.Len(t, services, 2)

	page, err := s.ListTransactions(ctx, TxnFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].Date.Equal(ledger.NewDate(2024, time.March, 10)))
}

func TestSnapshotAndWatermark(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.Watermark(ctx)
	require.NoError(t, err)

	require.NoError(t, s.CreateTransaction(ctx, txn(ledger.NewDate(2024, time.January, 1), "capital", "1010", "1000", "3010", "-1000")))
	require.NoError(t, s.CreateTransaction(ctx, txn(ledger.NewDate(2024, time.February, 1), "rent", "5010", "200", "1010", "-200")))

	wm, err := s.Watermark(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, empty, wm)

	snap, err := s.Snapshot(ctx, ledger.Date{}, ledger.NewDate(2024, time.January, 31))
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, wm, snap.Watermark)

	snap, err = s.Snapshot(ctx, ledger.NewDate(2024, time.February, 1), ledger.NewDate(2024, time.February, 1))
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "5010", snap.Entries[0].AccountID)

	bal, err := s.AccountBalance(ctx, "1010", ledger.Date{})
	require.NoError(t, err)
	assert.Equal(t, "800.00", ledger.FormatAmount(bal))

	bal, err = s.AccountBalance(ctx, "1010", ledger.NewDate(2024, time.January, 15))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", ledger.FormatAmount(bal))
}

func TestDeleteAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.DeleteAccount(ctx, "1000"), ledger.ErrAccountInUse)

	require.NoError(t, s.CreateTransaction(ctx, txn(ledger.NewDate(2024, time.January, 1), "capital", "1010", "1", "3010", "-1")))
	require.ErrorIs(t, s.DeleteAccount(ctx, "1010"), ledger.ErrAccountInUse)

	require.NoError(t, s.DeleteAccount(ctx, "1040"))
	_, err := s.GetAccount(ctx, "1040")
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	require.ErrorIs(t, s.DeleteAccount(ctx, "1040"), ledger.ErrAccountNotFound)
}

func TestConcurrentAccountWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateAccount(ctx, &ledger.Account{ID: "1050", Name: "Petty Cash", Code: 1050, Classification: ledger.Asset, ParentID: "1000"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, ledger.ErrDuplicateAccount)
	}
	assert.Equal(t, 1, created)

	var postErr, deleteErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		postErr = s.CreateTransaction(ctx, txn(ledger.NewDate(2024, time.January, 1), "float", "1050", "5", "3010", "-5"))
	}()
	go func() {
		defer wg.Done()
		deleteErr = s.DeleteAccount(ctx, "1050")
	}()
	wg.Wait()

	if postErr == nil {
		require.ErrorIs(t, deleteErr, ledger.ErrAccountInUse)
	} else {
		require.ErrorIs(t, postErr, ledger.ErrUnknownAccount)
		require.NoError(t, deleteErr)
	}
}
