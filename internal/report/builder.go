package report

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
)

// CurrentEarningsLabel is the Equity line holding revenue less expenses not
// yet closed into retained earnings.
const CurrentEarningsLabel = "Current Earnings"

// Build assembles balances into a statement of the given kind.
//
// A Balance Sheet is a snapshot: only period.End matters and balances must
// be cumulative from inception through that date. The report's period is
// reset to Through(End) so the ignored start date does not leak into the
// output. Revenue and expense balances feed the Current Earnings line in
// Equity, and the report is flagged Imbalanced when Assets differs from
// Liabilities plus Equity by more than ledger.BalanceEpsilon.
//
// A Profit & Loss covers [Start, End] and its Total is net income.
func Build(kind Kind, c *chart.Chart, balances Balances, period ledger.Period) (*Report, error) {
	classes := kind.Classifications()
	if classes == nil {
		return nil, ErrUnknownKind
	}
	if c == nil || c.Count(classes...) == 0 {
		return nil, ledger.ErrEmptyChart
	}

	r := &Report{Kind: kind, Period: period, Lines: []Line{}}
	if kind == BalanceSheet {
		r.Period = ledger.Through(period.End)
	}

	w := &walker{chart: c, balances: balances}
	for _, class := range classes {
		head := len(w.lines)
		w.lines = append(w.lines, Line{Label: class.Label(), Depth: 0, Kind: LineSection})

		total := decimal.Zero
		for _, root := range c.Roots(class) {
			total = total.Add(w.walk(root, 1))
		}
		if kind == BalanceSheet && class == ledger.Equity {
			earnings := currentEarnings(c, balances)
			w.lines = append(w.lines, Line{Label: CurrentEarningsLabel, Amount: earnings, Depth: 1, Kind: LineEarnings})
			total = total.Add(earnings)
		}

		w.lines[head].Amount = total
		r.Sections = append(r.Sections, Section{Classification: class, Label: class.Label(), Total: total})
	}
	r.Lines = w.lines

	switch kind {
	case BalanceSheet:
		assets := r.SectionTotal(ledger.Asset)
		claims := r.SectionTotal(ledger.Liability).Add(r.SectionTotal(ledger.Equity))
		r.Total = assets
		r.Imbalanced = assets.Sub(claims).Abs().GreaterThan(ledger.BalanceEpsilon)
	case ProfitAndLoss:
		r.Total = r.NetIncome()
	}
	return r, nil
}

type walker struct {
	chart    *chart.Chart
	balances Balances
	lines    []Line
}

// walk emits a in pre-order and returns its subtotal, computed after its
// children. Postings made directly to an account that also has children get
// their own line so the parent still equals the sum of the lines below it.
func (w *walker) walk(a ledger.Account, depth int) decimal.Decimal {
	at := len(w.lines)
	w.lines = append(w.lines, Line{AccountID: a.ID, Label: a.Name, Depth: depth, Kind: LineAccount})

	own := w.balances.Get(a.ID)
	children := w.chart.Children(a.ID)
	if len(children) == 0 {
		w.lines[at].Amount = own
		return own
	}

	sum := decimal.Zero
	if !own.IsZero() {
		w.lines = append(w.lines, Line{AccountID: a.ID, Label: a.Name + " (direct)", Amount: own, Depth: depth + 1, Kind: LineDirect})
		sum = own
	}
	for _, child := range children {
		sum = sum.Add(w.walk(child, depth+1))
	}
	w.lines[at].Amount = sum
	return sum
}

func currentEarnings(c *chart.Chart, balances Balances) decimal.Decimal {
	earnings := decimal.Zero
	for _, a := range c.Accounts() {
		switch a.Classification {
		case ledger.Revenue:
			earnings = earnings.Add(balances.Get(a.ID))
		case ledger.Expense:
			earnings = earnings.Sub(balances.Get(a.ID))
		}
	}
	return earnings
}
