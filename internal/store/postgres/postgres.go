// Package postgres is the PostgreSQL ledger store. It mirrors the SQLite
// store's schema and behaviour for deployments that share one database
// between several service instances.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// SQLSTATE codes for the constraints a concurrent writer can trip.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func constraintCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			code           INTEGER NOT NULL DEFAULT 0,
			classification TEXT NOT NULL CHECK (classification IN ('asset','liability','equity','revenue','expense')),
			parent_id      TEXT REFERENCES accounts(id),
			description    TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			txn_date    DATE NOT NULL,
			description TEXT NOT NULL,
			posted_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id             BIGSERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL REFERENCES transactions(id),
			account_id     TEXT NOT NULL REFERENCES accounts(id),
			entry_date     DATE NOT NULL,
			amount         BIGINT NOT NULL,
			description    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_account ON entries(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_txn ON entries(transaction_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	for _, a := range ledger.DefaultChart {
		_, err := tx.Exec(ctx,
			`INSERT INTO accounts (id, name, code, classification, parent_id, description)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) ON CONFLICT (id) DO NOTHING`,
			a.ID, a.Name, a.Code, string(a.Classification), a.ParentID, a.Description)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.ID, err)
		}
	}
	return tx.Commit(ctx)
}

const accountColumns = `id, name, code, classification, COALESCE(parent_id, ''), description`

func scanAccount(row pgx.Row) (*ledger.Account, error) {
	var a ledger.Account
	var class string
	if err := row.Scan(&a.ID, &a.Name, &a.Code, &class, &a.ParentID, &a.Description); err != nil {
		return nil, err
	}
	a.Classification = ledger.Classification(class)
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *Store) Accounts(ctx context.Context) ([]ledger.Account, error) {
	return s.ListAccounts(ctx, store.AccountFilter{})
}

func (s *Store) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ($1 = '' OR classification = $1) AND ($2 = '' OR parent_id = $2) ORDER BY code, id`
	args := []any{string(filter.Classification), filter.ParentID}
	if filter.Limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	if acct.ParentID != "" {
		parent, err := s.GetAccount(ctx, acct.ParentID)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return ledger.UnknownAccount(acct.ParentID)
		}
		if err != nil {
			return err
		}
		if parent.Classification != acct.Classification {
			return fmt.Errorf("%w: parent %s is %s", ledger.ErrParentClassificationMismatch, parent.ID, parent.Classification)
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, name, code, classification, parent_id, description) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		acct.ID, acct.Name, acct.Code, string(acct.Classification), acct.ParentID, acct.Description)
	switch constraintCode(err) {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.ID)
	case foreignKeyViolation:
		return ledger.UnknownAccount(acct.ParentID)
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.GetAccount(ctx, id); err != nil {
		return err
	}
	var entries, children int
	err := s.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM entries WHERE account_id = $1), (SELECT COUNT(*) FROM accounts WHERE parent_id = $1)`, id,
	).Scan(&entries, &children)
	if err != nil {
		return fmt.Errorf("check account usage: %w", err)
	}
	if entries > 0 || children > 0 {
		return fmt.Errorf("%w: %s has %d entries and %d sub-accounts", ledger.ErrAccountInUse, id, entries, children)
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if constraintCode(err) == foreignKeyViolation {
		return fmt.Errorf("%w: %s gained entries or sub-accounts", ledger.ErrAccountInUse, id)
	}
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// CreateTransaction posts txn in one database transaction. The balance is
// checked again inside it before commit.
func (s *Store) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := txn.Validate(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, txn_date, description) VALUES ($1, $2, $3)`,
		txn.ID, txn.Date.Time(), txn.Description); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	postings := txn.Postings()
	for i := range postings {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO entries (transaction_id, account_id, entry_date, amount, description) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			txn.ID, postings[i].AccountID, postings[i].Date.Time(), ledger.ToMinor(postings[i].Amount), postings[i].Description,
		).Scan(&id)
		if constraintCode(err) == foreignKeyViolation {
			return ledger.UnknownAccount(postings[i].AccountID)
		}
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
		postings[i].ID = fmt.Sprint(id)
	}

	var sum int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM entries WHERE transaction_id = $1`, txn.ID).Scan(&sum); err != nil {
		return fmt.Errorf("check balance: %w", err)
	}
	if sum != 0 {
		return ledger.ErrUnbalancedTransaction
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	txn.Entries = postings
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var txn ledger.Transaction
	var date time.Time
	err := s.pool.QueryRow(ctx, `SELECT id, txn_date, description FROM transactions WHERE id = $1`, id).
		Scan(&txn.ID, &date, &txn.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	txn.Date = ledger.DateOf(date)

	rows, err := s.pool.Query(ctx,
		`SELECT id, transaction_id, account_id, entry_date, amount, description FROM entries WHERE transaction_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	txn.Entries, err = collectEntries(rows)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter store.TxnFilter) ([]ledger.Transaction, error) {
	query := `SELECT t.id FROM transactions t
		WHERE ($1 = '' OR EXISTS (SELECT 1 FROM entries e WHERE e.transaction_id = t.id AND e.account_id = $1))
		AND ($2::date IS NULL OR t.txn_date >= $2::date)
		AND ($3::date IS NULL OR t.txn_date <= $3::date)
		ORDER BY t.txn_date DESC, t.id DESC`
	args := []any{filter.AccountID, dateArg(filter.Start), dateArg(filter.End)}
	if filter.Limit > 0 {
		query += ` LIMIT $4 OFFSET $5`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txns := make([]ledger.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, nil
}

// Snapshot reads postings and the watermark in one repeatable-read
// transaction.
func (s *Store) Snapshot(ctx context.Context, from, to ledger.Date) (*ledger.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id, transaction_id, account_id, entry_date, amount, description FROM entries
		WHERE ($1::date IS NULL OR entry_date >= $1::date) AND entry_date <= $2::date
		ORDER BY entry_date, id`,
		dateArg(from), to.Time())
	if err != nil {
		return nil, fmt.Errorf("snapshot entries: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	watermark, err := watermarkOf(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &ledger.Snapshot{Entries: entries, Watermark: watermark}, nil
}

func (s *Store) Watermark(ctx context.Context) (string, error) {
	return watermarkOf(ctx, s.pool)
}

func (s *Store) AccountBalance(ctx context.Context, accountID string, asOf ledger.Date) (decimal.Decimal, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	var minor int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM entries WHERE account_id = $1 AND ($2::date IS NULL OR entry_date <= $2::date)`,
		accountID, dateArg(asOf)).Scan(&minor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account balance: %w", err)
	}
	return ledger.FromMinor(minor), nil
}

func watermarkOf(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}) (string, error) {
	var count, last int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*), COALESCE(MAX(id), 0) FROM entries`).Scan(&count, &last); err != nil {
		return "", fmt.Errorf("ledger watermark: %w", err)
	}
	return fmt.Sprintf("%d.%d", count, last), nil
}

func collectEntries(rows pgx.Rows) ([]ledger.JournalEntry, error) {
	defer rows.Close()
	var out []ledger.JournalEntry
	for rows.Next() {
		var e ledger.JournalEntry
		var id, minor int64
		var date time.Time
		if err := rows.Scan(&id, &e.TransactionID, &e.AccountID, &date, &minor, &e.Description); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.ID = fmt.Sprint(id)
		e.Date = ledger.DateOf(date)
		e.Amount = ledger.FromMinor(minor)
		out = append(out, e)
	}
	return out, rows.Err()
}

func dateArg(d ledger.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}
