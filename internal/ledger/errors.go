package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAccountCode           = errors.New("invalid account code")
	ErrInvalidAccountID             = errors.New("invalid account id")
	ErrInvalidClassification        = errors.New("invalid account classification")
	ErrCodeClassificationMismatch   = errors.New("account code does not match classification")
	ErrEmptyAccountName             = errors.New("account name is required")
	ErrDuplicateAccount             = errors.New("account already exists")
	ErrChartCycle                   = errors.New("chart of accounts contains a cycle")
	ErrParentClassificationMismatch = errors.New("account classification differs from its parent")
	ErrUnknownAccount               = errors.New("unknown account")
	ErrEmptyChart                   = errors.New("chart has no accounts for the requested classifications")
	ErrInvalidPeriod                = errors.New("invalid period")
	ErrInvalidAmount                = errors.New("invalid amount")
	ErrInvalidDate                  = errors.New("invalid date")
	ErrUnbalancedTransaction        = errors.New("transaction entries do not balance")
	ErrTooFewEntries                = errors.New("transaction must have at least 2 entries")
	ErrEmptyDescription             = errors.New("transaction description is required")
	ErrTransactionNotFound          = errors.New("transaction not found")
	ErrAccountNotFound              = errors.New("account not found")
	ErrAccountInUse                 = errors.New("account has postings or sub-accounts")
)

// UnknownAccountError names the account identifier that is not registered
// in the chart. It matches ErrUnknownAccount under errors.Is.
type UnknownAccountError struct {
	AccountID string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownAccount, e.AccountID)
}

func (e *UnknownAccountError) Is(target error) bool {
	return target == ErrUnknownAccount
}

// UnknownAccount returns an error for id that satisfies errors.Is(err, ErrUnknownAccount).
func UnknownAccount(id string) error {
	return &UnknownAccountError{AccountID: id}
}
