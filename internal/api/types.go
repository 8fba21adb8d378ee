// Package api holds the JSON shapes exchanged over HTTP. Amounts are always
// fixed-point decimal strings.
package api

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
)

type Error struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	AccountID string            `json:"accountId,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type Line struct {
	AccountID string `json:"accountId,omitempty"`
	Label     string `json:"label"`
	Amount    string `json:"amount"`
	Depth     int    `json:"depth"`
	Kind      string `json:"kind"`
}

type AsOf struct {
	AsOf string `json:"asOf"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type BalanceSheetTotals struct {
	Assets               string `json:"assets"`
	Liabilities          string `json:"liabilities"`
	Equity               string `json:"equity"`
	LiabilitiesAndEquity string `json:"liabilitiesAndEquity"`
}

type BalanceSheet struct {
	Report     string             `json:"report"`
	Period     AsOf               `json:"period"`
	Lines      []Line             `json:"lines"`
	Total      BalanceSheetTotals `json:"total"`
	Imbalanced bool               `json:"imbalanced"`
}

type ProfitLossTotals struct {
	Revenue  string `json:"revenue"`
	Expenses string `json:"expenses"`
}

type ProfitLoss struct {
	Report    string           `json:"report"`
	Period    DateRange        `json:"period"`
	Lines     []Line           `json:"lines"`
	Total     ProfitLossTotals `json:"total"`
	NetIncome string           `json:"netIncome"`
}

func lines(r *report.Report) []Line {
	out := make([]Line, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = Line{
			AccountID: l.AccountID,
			Label:     l.Label,
			Amount:    ledger.FormatAmount(l.Amount),
			Depth:     l.Depth,
			Kind:      string(l.Kind),
		}
	}
	return out
}

func NewBalanceSheet(r *report.Report) BalanceSheet {
	liabilities := r.SectionTotal(ledger.Liability)
	equity := r.SectionTotal(ledger.Equity)
	return BalanceSheet{
		Report: r.Kind.Title(),
		Period: AsOf{AsOf: r.Period.End.String()},
		Lines:  lines(r),
		Total: BalanceSheetTotals{
			Assets:               ledger.FormatAmount(r.SectionTotal(ledger.Asset)),
			Liabilities:          ledger.FormatAmount(liabilities),
			Equity:               ledger.FormatAmount(equity),
			LiabilitiesAndEquity: ledger.FormatAmount(liabilities.Add(equity)),
		},
		Imbalanced: r.Imbalanced,
	}
}

func NewProfitLoss(r *report.Report) ProfitLoss {
	return ProfitLoss{
		Report: r.Kind.Title(),
		Period: DateRange{Start: r.Period.Start.String(), End: r.Period.End.String()},
		Lines:  lines(r),
		Total: ProfitLossTotals{
			Revenue:  ledger.FormatAmount(r.SectionTotal(ledger.Revenue)),
			Expenses: ledger.FormatAmount(r.SectionTotal(ledger.Expense)),
		},
		NetIncome: ledger.FormatAmount(r.NetIncome()),
	}
}

type CreateAccountRequest struct {
	ID             string `json:"id" validate:"required_without=Code,max=64"`
	Name           string `json:"name" validate:"required,max=200"`
	Code           int    `json:"code" validate:"omitempty,min=1000,max=5999"`
	Classification string `json:"classification" validate:"omitempty,max=32"`
	ParentID       string `json:"parent_id" validate:"max=64"`
	Description    string `json:"description" validate:"max=500"`
}

// EntryRequest is one posting. Either Amount (signed, debit positive) or
// Debit/Credit (both non-negative) may be given, not both.
type EntryRequest struct {
	AccountID   string           `json:"account_id" validate:"required,max=64"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Debit       *decimal.Decimal `json:"debit,omitempty"`
	Credit      *decimal.Decimal `json:"credit,omitempty"`
	Description string           `json:"description,omitempty" validate:"max=500"`
}

type PostTransactionRequest struct {
	Date        string         `json:"date" validate:"required"`
	Description string         `json:"description" validate:"required,max=500"`
	Entries     []EntryRequest `json:"entries" validate:"min=2,dive"`
}

type Entry struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Entries     []Entry `json:"entries"`
}

func NewTransaction(t ledger.Transaction) Transaction {
	out := Transaction{ID: t.ID, Date: t.Date.String(), Description: t.Description, Entries: make([]Entry, len(t.Entries))}
	for i, e := range t.Entries {
		out.Entries[i] = Entry{
			ID:          e.ID,
			AccountID:   e.AccountID,
			Date:        e.Date.String(),
			Amount:      ledger.FormatAmount(e.Amount),
			Description: e.Description,
		}
	}
	return out
}

// Account is an account with its position in the chart and its balance in
// the account's normal sign.
type Account struct {
	ledger.Account
	Path    []string `json:"path,omitempty"`
	Balance string   `json:"balance,omitempty"`
	AsOf    string   `json:"as_of,omitempty"`
}

type ChartNode struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Code           int         `json:"code,omitempty"`
	Classification string      `json:"classification"`
	Children       []ChartNode `json:"children,omitempty"`
}

type Chart struct {
	Generation uint64      `json:"generation"`
	Accounts   []ChartNode `json:"accounts"`
}
