package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/ledger"
)

var ErrUnknownKind = errors.New("unknown report kind")

type Kind string

const (
	BalanceSheet  Kind = "balance-sheet"
	ProfitAndLoss Kind = "profit-loss"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balance-sheet", "balancesheet", "bs":
		return BalanceSheet, nil
	case "profit-loss", "profitandloss", "pl", "pnl":
		return ProfitAndLoss, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title is the statement heading.
func (k Kind) Title() string {
	switch k {
	case BalanceSheet:
		return "Balance Sheet"
	case ProfitAndLoss:
		return "Profit & Loss"
	}
	return string(k)
}

// Classifications lists the sections of the statement in display order.
func (k Kind) Classifications() []ledger.Classification {
	switch k {
	case BalanceSheet:
		return []ledger.Classification{ledger.Asset, ledger.Liability, ledger.Equity}
	case ProfitAndLoss:
		return []ledger.Classification{ledger.Revenue, ledger.Expense}
	}
	return nil
}

type LineKind string

const (
	LineSection  LineKind = "section"
	LineAccount  LineKind = "account"
	LineDirect   LineKind = "direct"
	LineEarnings LineKind = "earnings"
)

// Line is one row of a statement. Depth 0 is a section heading carrying the
// section subtotal; an account line at depth n carries the sum of the lines
// at depth n+1 directly beneath it.
type Line struct {
	AccountID string          `json:"accountId,omitempty"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Depth     int             `json:"depth"`
	Kind      LineKind        `json:"kind"`
}

type Section struct {
	Classification ledger.Classification `json:"classification"`
	Label          string                `json:"label"`
	Total          decimal.Decimal       `json:"total"`
}

type Report struct {
	Kind       Kind            `json:"kind"`
	Period     ledger.Period   `json:"period"`
	Lines      []Line          `json:"lines"`
	Sections   []Section       `json:"sections"`
	Total      decimal.Decimal `json:"total"`
	Imbalanced bool            `json:"imbalanced"`
}

// SectionTotal returns the subtotal of one classification, zero when the
// report has no such section.
func (r *Report) SectionTotal(c ledger.Classification) decimal.Decimal {
	for _, s := range r.Sections {
		if s.Classification == c {
			return s.Total
		}
	}
	return decimal.Zero
}

// NetIncome is revenue less expenses. Only meaningful for Profit & Loss.
func (r *Report) NetIncome() decimal.Decimal {
	return r.SectionTotal(ledger.Revenue).Sub(r.SectionTotal(ledger.Expense))
}
