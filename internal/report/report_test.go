package report

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan1  = ledger.NewDate(2024, time.January, 1)
	jan15 = ledger.NewDate(2024, time.January, 15)
	jan31 = ledger.NewDate(2024, time.January, 31)
)

func flatChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.New([]ledger.Account{
		{ID: "cash", Name: "Cash", Classification: ledger.Asset},
		{ID: "loan", Name: "Loan", Classification: ledger.Liability},
		{ID: "capital", Name: "Capital", Classification: ledger.Equity},
		{ID: "sales", Name: "Sales", Classification: ledger.Revenue},
		{ID: "rent", Name: "Rent", Classification: ledger.Expense},
	})
	require.NoError(t, err)
	return c
}

func defaultChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.New(ledger.DefaultChart)
	require.NoError(t, err)
	return c
}

func post(date ledger.Date, legs ...any) []ledger.JournalEntry {
	var out []ledger.JournalEntry
	for i := 0; i < len(legs); i += 2 {
		out = append(out, ledger.JournalEntry{
			Date:      date,
			AccountID: legs[i].(string),
			Amount:    decimal.RequireFromString(legs[i+1].(string)),
		})
	}
	return out
}

func generate(t *testing.T, kind Kind, c *chart.Chart, period ledger.Period, entries []ledger.JournalEntry) *Report {
	t.Helper()
	scope := period
	if kind == BalanceSheet {
		scope = ledger.Through(period.End)
	}
	b, err := Aggregate(c, scope, entries)
	require.NoError(t, err)
	r, err := Build(kind, c, b, period)
	require.NoError(t, err)
	return r
}

func line(t *testing.T, r *Report, accountID string) Line {
	t.Helper()
	for _, l := range r.Lines {
		if l.AccountID == accountID && l.Kind == LineAccount {
			return l
		}
	}
	t.Fatalf("no line for %s", accountID)
	return Line{}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want, ledger.FormatAmount(got), msgAndArgs...)
}

// assertAdditive checks that every line with children equals the sum of the
// lines one level beneath it.
func assertAdditive(t *testing.T, lines []Line) {
	t.Helper()
	for i, l := range lines {
		sum := decimal.Zero
		children := 0
		for j := i + 1; j < len(lines) && lines[j].Depth > l.Depth; j++ {
			if lines[j].Depth == l.Depth+1 {
				sum = sum.Add(lines[j].Amount)
				children++
			}
		}
		if children > 0 {
			assert.True(t, l.Amount.Equal(sum), "line %d %q: %s != sum of children %s", i, l.Label, l.Amount, sum)
		}
	}
}

func TestAggregateBoundariesAreInclusive(t *testing.T) {
	c := flatChart(t)
	var entries []ledger.JournalEntry
	entries = append(entries, post(jan1.AddDays(-1), "cash", "1", "capital", "-1")...)
	entries = append(entries, post(jan1, "cash", "10", "capital", "-10")...)
	entries = append(entries, post(jan31, "cash", "100", "capital", "-100")...)
	entries = append(entries, post(jan31.AddDays(1), "cash", "1000", "capital", "-1000")...)

	b, err := Aggregate(c, ledger.Period{Start: jan1, End: jan31}, entries)
	require.NoError(t, err)
	assertAmount(t, "110.00", b["cash"])
	assertAmount(t, "110.00", b["capital"])
}

func TestAggregateZeroFillsChart(t *testing.T) {
	c := defaultChart(t)
	b, err := Aggregate(c, ledger.Through(jan31), nil)
	require.NoError(t, err)
	assert.Len(t, b, c.Len())
	for id, v := range b {
		assert.True(t, v.IsZero(), id)
	}
	assert.True(t, b.Get("not-there").IsZero())
}

func TestAggregateErrors(t *testing.T) {
	c := flatChart(t)

	_, err := Aggregate(c, ledger.Period{Start: jan31, End: jan1}, nil)
	require.ErrorIs(t, err, ledger.ErrInvalidPeriod)

	_, err = Aggregate(c, ledger.Through(jan31), post(jan15, "cash", "5", "ghost", "-5"))
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
	var uerr *ledger.UnknownAccountError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "ghost", uerr.AccountID)

	_, err = Aggregate(nil, ledger.Through(jan31), nil)
	require.ErrorIs(t, err, ledger.ErrEmptyChart)
}

func TestBalanceSheetCashAndCapital(t *testing.T) {
	c := flatChart(t)
	entries := post(jan15, "cash", "1000", "capital", "-1000")

	r := generate(t, BalanceSheet, c, ledger.Through(jan15), entries)
	assertAmount(t, "1000.00", line(t, r, "cash").Amount)
	assertAmount(t, "1000.00", line(t, r, "capital").Amount)
	assertAmount(t, "1000.00", r.Total)
	assertAmount(t, "1000.00", r.SectionTotal(ledger.Equity))
	assert.False(t, r.Imbalanced)
	assertAdditive(t, r.Lines)
}

func TestBalanceSheetIgnoresStartDate(t *testing.T) {
	c := flatChart(t)
	entries := post(jan1, "cash", "1000", "capital", "-1000")

	r := generate(t, BalanceSheet, c, ledger.Period{Start: jan15, End: jan31}, entries)
	assertAmount(t, "1000.00", line(t, r, "cash").Amount)
	assert.True(t, r.Period.Start.IsZero())
	assert.True(t, r.Period.End.Equal(jan31))
}

func TestProfitAndLossSalesAndRent(t *testing.T) {
	c := flatChart(t)
	var entries []ledger.JournalEntry
	entries = append(entries, post(jan1, "cash", "500", "sales", "-500")...)
	entries = append(entries, post(jan15, "rent", "200", "cash", "-200")...)

	r := generate(t, ProfitAndLoss, c, ledger.Period{Start: jan1, End: jan31}, entries)
	assertAmount(t, "500.00", line(t, r, "sales").Amount)
	assertAmount(t, "200.00", line(t, r, "rent").Amount)
	assertAmount(t, "300.00", r.Total)
	assertAmount(t, "300.00", r.NetIncome())

	for _, l := range r.Lines {
		assert.NotEqual(t, "cash", l.AccountID, "P&L carries no balance sheet accounts")
	}
	assert.Equal(t, []string{"Revenue", "Expenses"}, []string{r.Sections[0].Label, r.Sections[1].Label})
}

func TestBalanceSheetCarriesCurrentEarnings(t *testing.T) {
	c := flatChart(t)
	var entries []ledger.JournalEntry
	entries = append(entries, post(jan1, "cash", "1000", "capital", "-1000")...)
	entries = append(entries, post(jan1, "cash", "500", "sales", "-500")...)
	entries = append(entries, post(jan15, "rent", "200", "cash", "-200")...)

	r := generate(t, BalanceSheet, c, ledger.Through(jan31), entries)
	assertAmount(t, "1300.00", r.Total)

	var earnings *Line
	for i := range r.Lines {
		if r.Lines[i].Kind == LineEarnings {
			earnings = &r.Lines[i]
		}
	}
	require.NotNil(t, earnings)
	assert.Equal(t, CurrentEarningsLabel, earnings.Label)
	assertAmount(t, "300.00", earnings.Amount)
	assertAmount(t, "1300.00", r.SectionTotal(ledger.Equity))
	assert.False(t, r.Imbalanced)
	assertAdditive(t, r.Lines)
}

func TestBalanceSheetBeforeAnyPostings(t *testing.T) {
	c := defaultChart(t)
	entries := post(jan15, "1010", "1000", "3010", "-1000")

	r := generate(t, BalanceSheet, c, ledger.Through(jan1), entries)
	assert.False(t, r.Imbalanced)
	for _, l := range r.Lines {
		assert.True(t, l.Amount.IsZero(), l.Label)
	}
	for _, a := range c.Accounts() {
		if a.Classification == ledger.Revenue || a.Classification == ledger.Expense {
			continue
		}
		line(t, r, a.ID)
	}
}

func TestImbalancedLedgerIsFlagged(t *testing.T) {
	c := flatChart(t)
	entries := post(jan1, "cash", "1000", "capital", "-999")

	r := generate(t, BalanceSheet, c, ledger.Through(jan31), entries)
	assert.True(t, r.Imbalanced)
	assertAmount(t, "1000.00", r.Total)
}

func TestDirectPostingsOnParentAccount(t *testing.T) {
	c := defaultChart(t)
	var entries []ledger.JournalEntry
	entries = append(entries, post(jan1, "1000", "100", "3010", "-100")...)
	entries = append(entries, post(jan1, "1010", "50", "3010", "-50")...)

	r := generate(t, BalanceSheet, c, ledger.Through(jan31), entries)
	assertAmount(t, "150.00", line(t, r, "1000").Amount)
	assertAmount(t, "150.00", r.Total)

	var direct []Line
	for _, l := range r.Lines {
		if l.Kind == LineDirect {
			direct = append(direct, l)
		}
	}
	require.Len(t, direct, 1)
	assert.Equal(t, "1000", direct[0].AccountID)
	assert.Equal(t, "Current Assets (direct)", direct[0].Label)
	assert.Equal(t, 2, direct[0].Depth)
	assertAmount(t, "100.00", direct[0].Amount)
	assertAdditive(t, r.Lines)
}

func TestLineOrderFollowsTree(t *testing.T) {
	c := defaultChart(t)
	r := generate(t, ProfitAndLoss, c, ledger.Period{Start: jan1, End: jan31}, nil)

	var got []string
	for _, l := range r.Lines {
		got = append(got, fmt.Sprintf("%d:%s", l.Depth, l.Label))
	}
	assert.Equal(t, []string{
		"0:Revenue",
		"1:Operating Revenue",
		"2:Service Revenue",
		"2:Sales",
		"1:Other Income",
		"2:Interest Income",
		"0:Expenses",
		"1:Operating Expenses",
		"2:Rent",
		"2:Salaries and Wages",
		"2:Depreciation",
		"1:Cost of Goods Sold",
		"2:Purchases",
	}, got)
}

func TestBuildEmptyChart(t *testing.T) {
	c, err := chart.New([]ledger.Account{{ID: "cash", Name: "Cash", Classification: ledger.Asset}})
	require.NoError(t, err)

	_, err = Build(ProfitAndLoss, c, Balances{}, ledger.Period{Start: jan1, End: jan31})
	require.ErrorIs(t, err, ledger.ErrEmptyChart)

	_, err = Build(BalanceSheet, c, Balances{}, ledger.Through(jan31))
	require.NoError(t, err)

	_, err = Build(Kind("cash-flow"), c, Balances{}, ledger.Through(jan31))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestReportIsIdempotent(t *testing.T) {
	c := defaultChart(t)
	entries := randomLedger(rand.New(rand.NewSource(7)), c, 50)

	for _, kind := range []Kind{BalanceSheet, ProfitAndLoss} {
		first, err := json.Marshal(generate(t, kind, c, ledger.Period{Start: jan1, End: ledger.NewDate(2024, time.June, 30)}, entries))
		require.NoError(t, err)
		second, err := json.Marshal(generate(t, kind, c, ledger.Period{Start: jan1, End: ledger.NewDate(2024, time.June, 30)}, entries))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), kind)
	}
}

// randomLedger posts n balanced transactions dated through 2024 across every
// account in c, including header accounts.
func randomLedger(rng *rand.Rand, c *chart.Chart, n int) []ledger.JournalEntry {
	accounts := c.Accounts()
	var entries []ledger.JournalEntry
	for i := 0; i < n; i++ {
		date := jan1.AddDays(rng.Intn(366))
		legs := 2 + rng.Intn(3)
		sum := decimal.Zero
		for j := 0; j < legs-1; j++ {
			amt := decimal.New(rng.Int63n(2_000_000)-1_000_000, -ledger.AmountScale)
			sum = sum.Add(amt)
			entries = append(entries, ledger.JournalEntry{
				Date:      date,
				AccountID: accounts[rng.Intn(len(accounts))].ID,
				Amount:    amt,
			})
		}
		entries = append(entries, ledger.JournalEntry{
			Date:      date,
			AccountID: accounts[rng.Intn(len(accounts))].ID,
			Amount:    sum.Neg(),
		})
	}
	return entries
}

func TestBalancedLedgersAlwaysBalance(t *testing.T) {
	c := defaultChart(t)
	rng := rand.New(rand.NewSource(20240101))

	for round := 0; round < 25; round++ {
		entries := randomLedger(rng, c, 1+rng.Intn(80))
		asOf := jan1.AddDays(rng.Intn(400) - 20)

		bs := generate(t, BalanceSheet, c, ledger.Through(asOf), entries)
		require.False(t, bs.Imbalanced, "round %d as of %s", round, asOf)
		assert.True(t, bs.SectionTotal(ledger.Asset).Equal(
			bs.SectionTotal(ledger.Liability).Add(bs.SectionTotal(ledger.Equity))), "round %d", round)
		assertAdditive(t, bs.Lines)

		start := jan1.AddDays(rng.Intn(200))
		end := start.AddDays(rng.Intn(200))
		pl := generate(t, ProfitAndLoss, c, ledger.Period{Start: start, End: end}, entries)
		assert.True(t, pl.Total.Equal(pl.SectionTotal(ledger.Revenue).Sub(pl.SectionTotal(ledger.Expense))))
		assertAdditive(t, pl.Lines)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Balance-Sheet")
	require.NoError(t, err)
	assert.Equal(t, BalanceSheet, k)
	assert.Equal(t, "Balance Sheet", k.Title())

	k, err = ParseKind("pl")
	require.NoError(t, err)
	assert.Equal(t, ProfitAndLoss, k)
	assert.Equal(t, "Profit & Loss", k.Title())

	_, err = ParseKind("cash-flow")
	require.ErrorIs(t, err, ErrUnknownKind)
}
