package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/finreports/internal/ledger"
)

// CreateTransaction posts a balanced transaction. Entries are inserted
// first and the transaction is finalized last so the balance trigger sees
// the complete set.
func (s *Store) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.Must(uuid.NewV7()).String()
	}

	if err := txn.Validate(); err != nil {
		return err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range txn.Entries {
		if _, err := getAccount(ctx, tx, e.AccountID); err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return ledger.UnknownAccount(e.AccountID)
			}
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, txn_date, description) VALUES (?, ?, ?)`,
		txn.ID, txn.Date.String(), txn.Description,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	postings := txn.Postings()
	for i := range postings {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (transaction_id, account_id, entry_date, amount, description) VALUES (?, ?, ?, ?, ?)`,
			txn.ID, postings[i].AccountID, postings[i].Date.String(), ledger.ToMinor(postings[i].Amount), postings[i].Description,
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			postings[i].ID = fmt.Sprint(id)
		}
	}

	// Finalize - trigger fires to validate balance
	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET finalized = 1 WHERE id = ?`, txn.ID)
	if err != nil {
		return fmt.Errorf("finalize transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	txn.Entries = postings
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var txn ledger.Transaction
	var date string

	err := s.reader.QueryRowContext(ctx,
		`SELECT id, txn_date, description FROM transactions WHERE id = ? AND finalized = 1`, id,
	).Scan(&txn.ID, &date, &txn.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if txn.Date, err = ledger.ParseDate(date); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}

	entries, err := s.getEntriesForTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries

	return &txn, nil
}

// ListTransactions returns finalized transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter TxnFilter) ([]ledger.Transaction, error) {
	query := `SELECT DISTINCT t.id, t.txn_date, t.description FROM transactions t`
	args := []any{}

	if filter.AccountID != "" {
		query += ` JOIN entries e ON e.transaction_id = t.id WHERE e.account_id = ?`
		args = append(args, filter.AccountID)
	} else {
		query += ` WHERE 1=1`
	}
	if !filter.Start.IsZero() {
		query += ` AND t.txn_date >= ?`
		args = append(args, filter.Start.String())
	}
	if !filter.End.IsZero() {
		query += ` AND t.txn_date <= ?`
		args = append(args, filter.End.String())
	}

	query += ` AND t.finalized = 1 ORDER BY t.txn_date DESC, t.id DESC` + limitClause(filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var txns []ledger.Transaction
	for rows.Next() {
		var txn ledger.Transaction
		var date string
		if err := rows.Scan(&txn.ID, &date, &txn.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if txn.Date, err = ledger.ParseDate(date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}
		txns = append(txns, txn)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		entries, err := s.getEntriesForTransaction(ctx, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Entries = entries
	}
	return txns, nil
}

func (s *Store) getEntriesForTransaction(ctx context.Context, txnID string) ([]ledger.JournalEntry, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, transaction_id, account_id, entry_date, amount, description FROM entries WHERE transaction_id = ? ORDER BY id`,
		txnID,
	)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows rowScanner) ([]ledger.JournalEntry, error) {
	var entries []ledger.JournalEntry
	for rows.Next() {
		var e ledger.JournalEntry
		var id, minor int64
		var date string
		if err := rows.Scan(&id, &e.TransactionID, &e.AccountID, &date, &minor, &e.Description); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		d, err := ledger.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", id, err)
		}
		e.ID = fmt.Sprint(id)
		e.Date = d
		e.Amount = ledger.FromMinor(minor)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
