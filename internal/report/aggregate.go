package report

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
)

// Balances maps account ids to their normalized net amount for a period.
type Balances map[string]decimal.Decimal

// Get returns the balance of id, zero when absent.
func (b Balances) Get(id string) decimal.Decimal {
	if v, ok := b[id]; ok {
		return v
	}
	return decimal.Zero
}

// Aggregate sums entries per account over period. Entries outside the
// period are skipped; both bounds are inclusive and a zero start is
// unbounded. Amounts are converted to each account's normal sign, so a
// credit to a liability increases it. Every account in the chart is present
// in the result, zero when it has no postings.
func Aggregate(c *chart.Chart, period ledger.Period, entries []ledger.JournalEntry) (Balances, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ledger.ErrEmptyChart
	}

	balances := make(Balances, c.Len())
	for _, a := range c.Accounts() {
		balances[a.ID] = decimal.Zero
	}

	for _, e := range entries {
		class, _, err := c.Classify(e.AccountID)
		if err != nil {
			return nil, err
		}
		if !period.Contains(e.Date) {
			continue
		}
		balances[e.AccountID] = balances[e.AccountID].Add(ledger.Normalize(class, e.Amount))
	}
	return balances, nil
}
