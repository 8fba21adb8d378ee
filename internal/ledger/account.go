package ledger

import (
	"fmt"
	"strings"
)

type Classification string

const (
	Asset     Classification = "asset"
	Liability Classification = "liability"
	Equity    Classification = "equity"
	Revenue   Classification = "revenue"
	Expense   Classification = "expense"
)

var AllClassifications = []Classification{
	Asset,
	Liability,
	Equity,
	Revenue,
	Expense,
}

type Account struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Code           int            `json:"code,omitempty"`
	Classification Classification `json:"classification"`
	ParentID       string         `json:"parent_id,omitempty"`
	Description    string         `json:"description,omitempty"`
}

// ClassificationForCode derives the classification from a 4-digit code.
func ClassificationForCode(code int) (Classification, error) {
	switch {
	case code >= 1000 && code < 2000:
		return Asset, nil
	case code >= 2000 && code < 3000:
		return Liability, nil
	case code >= 3000 && code < 4000:
		return Equity, nil
	case code >= 4000 && code < 5000:
		return Revenue, nil
	case code >= 5000 && code < 6000:
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %d (must be 1000-5999)", ErrInvalidAccountCode, code)
	}
}

// CodeRange returns the valid code range for a classification.
func CodeRange(c Classification) (int, int) {
	switch c {
	case Asset:
		return 1000, 1999
	case Liability:
		return 2000, 2999
	case Equity:
		return 3000, 3999
	case Revenue:
		return 4000, 4999
	case Expense:
		return 5000, 5999
	default:
		return 0, 0
	}
}

// Label returns the plural section heading used on statements.
func (c Classification) Label() string {
	switch c {
	case Asset:
		return "Assets"
	case Liability:
		return "Liabilities"
	case Equity:
		return "Equity"
	case Revenue:
		return "Revenue"
	case Expense:
		return "Expenses"
	default:
		return string(c)
	}
}

// DebitNormal reports whether increases are recorded as positive raw amounts.
// Assets and Expenses are debit-normal; Liabilities, Equity, and Revenue are credit-normal.
func (c Classification) DebitNormal() bool {
	return c == Asset || c == Expense
}

// NormalBalance returns "Debit" or "Credit" for the classification.
func (c Classification) NormalBalance() string {
	if c.DebitNormal() {
		return "Debit"
	}
	return "Credit"
}

// Valid checks if a classification string is one of the five known values.
func (c Classification) Valid() bool {
	for _, v := range AllClassifications {
		if v == c {
			return true
		}
	}
	return false
}

// ParseClassification accepts the canonical value or its plural label in any case.
func ParseClassification(s string) (Classification, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllClassifications {
		if s == string(c) || s == strings.ToLower(c.Label()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClassification, s)
}

// Validate checks the invariants of a single account. Tree invariants
// (parent existence, cycles) are checked when a chart is built.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidAccountID
	}
	if a.ParentID == a.ID {
		return fmt.Errorf("%w: %s is its own parent", ErrChartCycle, a.ID)
	}
	if !a.Classification.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidClassification, a.Classification)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyAccountName, a.ID)
	}

	// Code is optional; when present it must sit in the classification's range.
	if a.Code != 0 {
		expected, err := ClassificationForCode(a.Code)
		if err != nil {
			return err
		}
		if expected != a.Classification {
			return fmt.Errorf("%w: code %d should be %s, got %s", ErrCodeClassificationMismatch, a.Code, expected, a.Classification)
		}
	}
	return nil
}
