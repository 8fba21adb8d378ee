// Package export renders statements as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename suggests a download name such as "profit-loss_2024-01-01_2024-01-31.xlsx".
func Filename(r *report.Report) string {
	if r.Period.Start.IsZero() {
		return fmt.Sprintf("%s_%s.xlsx", r.Kind, r.Period.End)
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", r.Kind, r.Period.Start, r.Period.End)
}

// WriteXLSX writes r as a single-sheet workbook: a title block, one row per
// statement line with the label indented by depth, and a closing total.
func WriteXLSX(w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", r.Kind.Title())
	f.SetCellStyle(sheetName, "A1", "A1", bold)
	f.SetCellValue(sheetName, "A2", periodLabel(r))
	if r.Imbalanced {
		f.SetCellValue(sheetName, "A3", "WARNING: assets do not equal liabilities plus equity")
	}

	f.SetCellValue(sheetName, "A5", "Account")
	f.SetCellValue(sheetName, "B5", "Code")
	f.SetCellValue(sheetName, "C5", "Amount")
	f.SetCellStyle(sheetName, "A5", "C5", bold)

	rowNo := 6
	for _, l := range r.Lines {
		a, b, c := cell("A", rowNo), cell("B", rowNo), cell("C", rowNo)
		f.SetCellValue(sheetName, a, strings.Repeat("  ", l.Depth)+l.Label)
		if l.AccountID != "" {
			f.SetCellValue(sheetName, b, l.AccountID)
		}
		f.SetCellValue(sheetName, c, l.Amount.InexactFloat64())
		if l.Kind == report.LineSection {
			f.SetCellStyle(sheetName, a, a, bold)
			f.SetCellStyle(sheetName, c, c, boldMoney)
		} else {
			f.SetCellStyle(sheetName, c, c, money)
		}
		rowNo++
	}

	rowNo++
	f.SetCellValue(sheetName, cell("A", rowNo), totalLabel(r))
	f.SetCellValue(sheetName, cell("C", rowNo), r.Total.InexactFloat64())
	f.SetCellStyle(sheetName, cell("A", rowNo), cell("A", rowNo), bold)
	f.SetCellStyle(sheetName, cell("C", rowNo), cell("C", rowNo), boldMoney)

	f.SetColWidth(sheetName, "A", "A", 40)
	f.SetColWidth(sheetName, "C", "C", 16)

	_, err = f.WriteTo(w)
	return err
}

func cell(col string, row int) string {
	return col + fmt.Sprint(row)
}

func periodLabel(r *report.Report) string {
	if r.Kind == report.BalanceSheet {
		return "As of " + r.Period.End.String()
	}
	return fmt.Sprintf("%s to %s", r.Period.Start, r.Period.End)
}

func totalLabel(r *report.Report) string {
	if r.Kind == report.ProfitAndLoss {
		return "Net Income"
	}
	return "Total " + ledger.Asset.Label()
}
