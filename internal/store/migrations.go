package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simonvc/finreports/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			code           INTEGER NOT NULL DEFAULT 0,
			classification TEXT NOT NULL CHECK (classification IN ('asset','liability','equity','revenue','expense')),
			parent_id      TEXT REFERENCES accounts(id),
			description    TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_code ON accounts(code)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			txn_date    TEXT NOT NULL,
			description TEXT NOT NULL,
			finalized   INTEGER NOT NULL DEFAULT 0,
			posted_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(txn_date)`,

		// Amounts are integer minor units so SUM stays exact.
		`CREATE TABLE IF NOT EXISTS entries (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_id TEXT NOT NULL REFERENCES transactions(id),
			account_id     TEXT NOT NULL REFERENCES accounts(id),
			entry_date     TEXT NOT NULL,
			amount         INTEGER NOT NULL,
			description    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_txn ON entries(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_account ON entries(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date)`,

		// Trigger: prevent finalizing an unbalanced transaction
		`CREATE TRIGGER IF NOT EXISTS trg_check_balance
		BEFORE UPDATE OF finalized ON transactions
		WHEN NEW.finalized = 1
		BEGIN
			SELECT CASE
				WHEN (SELECT COALESCE(SUM(amount), 0) FROM entries WHERE transaction_id = NEW.id) != 0
				THEN RAISE(ABORT, 'transaction entries do not balance')
			END;
		END`,

		// Trigger: prevent adding entries to finalized transactions
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_insert
		BEFORE INSERT ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = NEW.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot add entries to a finalized transaction');
		END`,

		// Trigger: prevent deleting entries from finalized transactions
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_delete
		BEFORE DELETE ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = OLD.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove entries from a finalized transaction');
		END`,

		// Trigger: prevent updating entries on finalized transactions
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_update
		BEFORE UPDATE ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = OLD.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify entries of a finalized transaction');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	// Seed the default chart; parents precede their children.
	for _, a := range ledger.DefaultChart {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO accounts (id, name, code, classification, parent_id, description) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Code, string(a.Classification), nullable(a.ParentID), a.Description,
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.ID, err)
		}
	}

	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
