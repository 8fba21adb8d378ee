package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	r := &report.Report{
		Kind:   report.ProfitAndLoss,
		Period: ledger.Period{Start: ledger.NewDate(2024, time.January, 1), End: ledger.NewDate(2024, time.January, 31)},
		Lines: []report.Line{
			{Label: "Revenue", Amount: decimal.RequireFromString("500"), Kind: report.LineSection},
			{AccountID: "4020", Label: "Sales", Amount: decimal.RequireFromString("500"), Depth: 1, Kind: report.LineAccount},
			{Label: "Expenses", Amount: decimal.RequireFromString("200.5"), Kind: report.LineSection},
			{AccountID: "5010", Label: "Rent", Amount: decimal.RequireFromString("200.5"), Depth: 1, Kind: report.LineAccount},
		},
		Total: decimal.RequireFromString("299.5"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(axis string) string {
		v, err := f.GetCellValue(sheetName, axis)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Profit & Loss", get("A1"))
	assert.Equal(t, "2024-01-01 to 2024-01-31", get("A2"))
	assert.Equal(t, "Revenue", get("A6"))
	assert.Equal(t, "  Sales", get("A7"))
	assert.Equal(t, "4020", get("B7"))
	assert.Equal(t, "  Rent", get("A9"))
	assert.Equal(t, "Net Income", get("A11"))

	raw, err := f.GetCellValue(sheetName, "C11", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "299.5", raw)
}

func TestFilename(t *testing.T) {
	end := ledger.NewDate(2024, time.March, 31)
	assert.Equal(t, "balance-sheet_2024-03-31.xlsx", Filename(&report.Report{Kind: report.BalanceSheet, Period: ledger.Through(end)}))
	assert.Equal(t, "profit-loss_2024-03-01_2024-03-31.xlsx",
		Filename(&report.Report{Kind: report.ProfitAndLoss, Period: ledger.Period{Start: ledger.NewDate(2024, time.March, 1), End: end}}))
}
