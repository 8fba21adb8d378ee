package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/ledger"
)

const entrySelect = `SELECT e.id, e.transaction_id, e.account_id, e.entry_date, e.amount, e.description
	FROM entries e
	JOIN transactions t ON t.id = e.transaction_id
	WHERE t.finalized = 1`

// Snapshot reads every finalized posting dated within [from, to] and the
// ledger watermark inside one read transaction, so both describe the same
// state. A zero from reads from the first posting.
func (s *Store) Snapshot(ctx context.Context, from, to ledger.Date) (*ledger.Snapshot, error) {
	tx, err := s.reader.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	query := entrySelect
	args := []any{}
	if !from.IsZero() {
		query += ` AND e.entry_date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND e.entry_date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY e.entry_date, e.id`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot entries: %w", err)
	}
	entries, err := scanEntries(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	watermark, err := watermarkOf(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &ledger.Snapshot{Entries: entries, Watermark: watermark}, nil
}

// Watermark identifies the current ledger state. It changes whenever a
// transaction is posted.
func (s *Store) Watermark(ctx context.Context) (string, error) {
	return watermarkOf(ctx, s.reader)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func watermarkOf(ctx context.Context, q queryRower) (string, error) {
	var count, last int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(e.id), 0) FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE t.finalized = 1`,
	).Scan(&count, &last)
	if err != nil {
		return "", fmt.Errorf("ledger watermark: %w", err)
	}
	return fmt.Sprintf("%d.%d", count, last), nil
}

// AccountBalance returns the raw balance (debit positive) of one account
// from all postings dated on or before asOf. A zero asOf includes everything.
func (s *Store) AccountBalance(ctx context.Context, accountID string, asOf ledger.Date) (decimal.Decimal, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT COALESCE(SUM(e.amount), 0)
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = ? AND t.finalized = 1`
	args := []any{accountID}
	if !asOf.IsZero() {
		query += ` AND e.entry_date <= ?`
		args = append(args, asOf.String())
	}

	var minor int64
	if err := s.reader.QueryRowContext(ctx, query, args...).Scan(&minor); err != nil {
		return decimal.Zero, fmt.Errorf("account balance: %w", err)
	}
	return ledger.FromMinor(minor), nil
}
