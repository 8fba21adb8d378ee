package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/finreports/internal/ledger"
)

const accountColumns = `id, name, code, classification, COALESCE(parent_id, ''), description`

// CreateAccount adds an account to the chart. The parent, when set, must
// exist and share the account's classification. The checks run inside the
// write transaction, so they see every committed write.
func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAccount(ctx, tx, acct.ID); err == nil {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.ID)
	} else if !errors.Is(err, ledger.ErrAccountNotFound) {
		return err
	}

	if acct.ParentID != "" {
		parent, err := getAccount(ctx, tx, acct.ParentID)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, name, code, classification, parent_id, description) VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Name, acct.Code, string(acct.Classification), nullable(acct.ParentID), acct.Description,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	return getAccount(ctx, s.reader, id)
}

func getAccount(ctx context.Context, q queryRower, id string) (*ledger.Account, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	var acct ledger.Account
	err := row.Scan(&acct.ID, &acct.Name, &acct.Code, &acct.Classification, &acct.ParentID, &acct.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &acct, nil
}

// Accounts returns the whole chart of accounts.
func (s *Store) Accounts(ctx context.Context) ([]ledger.Account, error) {
	return s.ListAccounts(ctx, AccountFilter{})
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	args := []any{}

	if filter.Classification != "" {
		query += ` AND classification = ?`
		args = append(args, string(filter.Classification))
	}
	if filter.ParentID != "" {
		query += ` AND parent_id = ?`
		args = append(args, filter.ParentID)
	}

	query += ` ORDER BY code, id` + limitClause(filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var acct ledger.Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Code, &acct.Classification, &acct.ParentID, &acct.Description); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account that has no postings and no sub-accounts.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAccount(ctx, tx, id); err != nil {
		return err
	}

	var entries, children int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM entries WHERE account_id = ?), (SELECT COUNT(*) FROM accounts WHERE parent_id = ?)`,
		id, id).Scan(&entries, &children)
	if err != nil {
		return fmt.Errorf("check account usage: %w", err)
	}
	if entries > 0 || children > 0 {
		return fmt.Errorf("%w: %s has %d entries and %d sub-accounts", ledger.ErrAccountInUse, id, entries, children)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return tx.Commit()
}
