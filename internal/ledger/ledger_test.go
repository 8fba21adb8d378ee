package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1000", want: "1000.00"},
		{in: "-10.5", want: "-10.50"},
		{in: "+0.01", want: "0.01"},
		{in: " 42.00 ", want: "42.00"},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "92233720368547758.07", want: "92233720368547758.07"},
		{in: "92233720368547758.08", wantErr: true},
		{in: "-100000000000000000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := decimal.NewFromInt(-1000)
	assert.True(t, Normalize(Asset, raw).Equal(raw))
	assert.True(t, Normalize(Expense, raw).Equal(raw))
	for _, c := range []Classification{Liability, Equity, Revenue} {
		assert.True(t, Normalize(c, raw).Equal(decimal.NewFromInt(1000)), c)
	}
}

func TestPeriodValidate(t *testing.T) {
	jan1 := NewDate(2024, time.January, 1)
	jan31 := NewDate(2024, time.January, 31)

	require.NoError(t, Period{Start: jan1, End: jan31}.Validate())
	require.NoError(t, Period{Start: jan1, End: jan1}.Validate())
	require.NoError(t, Through(jan31).Validate())
	require.ErrorIs(t, Period{Start: jan31, End: jan1}.Validate(), ErrInvalidPeriod)
	require.ErrorIs(t, Period{Start: jan1}.Validate(), ErrInvalidPeriod)
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	start := NewDate(2024, time.March, 1)
	end := NewDate(2024, time.March, 31)
	p := Period{Start: start, End: end}

	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(end))
	assert.True(t, p.Contains(NewDate(2024, time.March, 15)))
	assert.False(t, p.Contains(start.AddDays(-1)))
	assert.False(t, p.Contains(end.AddDays(1)))

	assert.True(t, Through(end).Contains(NewDate(1999, time.January, 1)))
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)

	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-02-29"}`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &back))
	assert.True(t, back.Equal(d))

	require.ErrorIs(t, json.Unmarshal([]byte(`"29/02/2024"`), &back), ErrInvalidDate)

	_, err = ParseDate("2023-02-29")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestTransactionValidate(t *testing.T) {
	date := NewDate(2024, time.January, 5)
	entry := func(acct, amt string) JournalEntry {
		return JournalEntry{AccountID: acct, Amount: decimal.RequireFromString(amt)}
	}

	tests := []struct {
		name string
		txn  Transaction
		want error
	}{
		{
			name: "balanced",
			txn:  Transaction{Date: date, Description: "capital", Entries: []JournalEntry{entry("1010", "1000"), entry("3010", "-1000")}},
		},
		{
			name: "unbalanced",
			txn:  Transaction{Date: date, Description: "oops", Entries: []JournalEntry{entry("1010", "1000"), entry("3010", "-999.99")}},
			want: ErrUnbalancedTransaction,
		},
		{
			name: "single entry",
			txn:  Transaction{Date: date, Description: "one", Entries: []JournalEntry{entry("1010", "0")}},
			want: ErrTooFewEntries,
		},
		{
			name: "no description",
			txn:  Transaction{Date: date, Entries: []JournalEntry{entry("1010", "1"), entry("3010", "-1")}},
			want: ErrEmptyDescription,
		},
		{
			name: "no date",
			txn:  Transaction{Description: "undated", Entries: []JournalEntry{entry("1010", "1"), entry("3010", "-1")}},
			want: ErrInvalidDate,
		},
		{
			name: "too precise",
			txn:  Transaction{Date: date, Description: "fractions", Entries: []JournalEntry{entry("1010", "0.001"), entry("3010", "-0.001")}},
			want: ErrInvalidAmount,
		},
		{
			name: "leg beyond minor unit range",
			txn:  Transaction{Date: date, Description: "huge", Entries: []JournalEntry{entry("1010", "100000000000000000"), entry("3010", "-100000000000000000")}},
			want: ErrInvalidAmount,
		},
		{
			name: "debits overflow together",
			txn: Transaction{Date: date, Description: "huge", Entries: []JournalEntry{
				entry("1010", "90000000000000000"), entry("1020", "90000000000000000"),
				entry("3010", "-90000000000000000"), entry("3020", "-90000000000000000"),
			}},
			want: ErrInvalidAmount,
		},
		{
			name: "missing account",
			txn:  Transaction{Date: date, Description: "blank", Entries: []JournalEntry{entry("", "1"), entry("3010", "-1")}},
			want: ErrInvalidAccountID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransactionPostings(t *testing.T) {
	txn := Transaction{
		ID:          "t1",
		Date:        NewDate(2024, time.June, 1),
		Description: "rent",
		Entries: []JournalEntry{
			{AccountID: "5010", Amount: decimal.NewFromInt(200)},
			{AccountID: "1010", Amount: decimal.NewFromInt(-200), Description: "bank transfer"},
		},
	}
	p := txn.Postings()
	require.Len(t, p, 2)
	assert.Equal(t, "t1", p[0].TransactionID)
	assert.True(t, p[1].Date.Equal(txn.Date))
	assert.Equal(t, "rent", p[0].Description)
	assert.Equal(t, "bank transfer", p[1].Description)
	assert.Empty(t, txn.Entries[0].TransactionID, "postings do not mutate the transaction")
}

func TestAccountValidate(t *testing.T) {
	ok := Account{ID: "1010", Name: "Cash", Code: 1010, Classification: Asset}
	require.NoError(t, ok.Validate())

	noCode := Account{ID: "petty", Name: "Petty cash", Classification: Asset}
	require.NoError(t, noCode.Validate())

	wrongRange := Account{ID: "x", Name: "X", Code: 2010, Classification: Asset}
	require.ErrorIs(t, wrongRange.Validate(), ErrCodeClassificationMismatch)

	badCode := Account{ID: "x", Name: "X", Code: 7000, Classification: Asset}
	require.ErrorIs(t, badCode.Validate(), ErrInvalidAccountCode)

	noName := Account{ID: "x", Classification: Asset}
	require.ErrorIs(t, noName.Validate(), ErrEmptyAccountName)
}

func TestParseClassification(t *testing.T) {
	c, err := ParseClassification("Liabilities")
	require.NoError(t, err)
	assert.Equal(t, Liability, c)

	c, err = ParseClassification(" expense ")
	require.NoError(t, err)
	assert.Equal(t, Expense, c)

	_, err = ParseClassification("income")
	require.ErrorIs(t, err, ErrInvalidClassification)
}

func TestDefaultChartIsValid(t *testing.T) {
	seen := map[string]Classification{}
	for _, a := range DefaultChart {
		require.NoError(t, a.Validate(), a.ID)
		seen[a.ID] = a.Classification
	}
	for _, a := range DefaultChart {
		if a.ParentID != "" {
			assert.Equal(t, a.Classification, seen[a.ParentID], a.ID)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	d := decimal.RequireFromString("-1234.56")
	assert.Equal(t, int64(-123456), ToMinor(d))
	assert.True(t, FromMinor(-123456).Equal(d))
	assert.Equal(t, "0.07", FormatAmount(FromMinor(7)))
}
