package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/report"
)

const (
	labelWidth  = 40
	amountWidth = 15
)

// formatSigned shows negative amounts in parentheses, accountant style.
func formatSigned(amount string) string {
	if strings.HasPrefix(amount, "-") {
		return "(" + amount[1:] + ")"
	}
	return amount
}

func renderLine(l api.Line) string {
	label := strings.Repeat("  ", l.Depth) + l.Label
	if l.AccountID != "" && l.Kind == string(report.LineAccount) {
		label = strings.Repeat("  ", l.Depth) + l.AccountID + " " + l.Label
	}
	if len(label) > labelWidth {
		label = label[:labelWidth-2] + ".."
	}

	amount := formatSigned(l.Amount)
	amountCell := fmt.Sprintf("%*s", amountWidth, amount)
	if strings.HasPrefix(l.Amount, "-") {
		amountCell = negativeStyle.Render(amountCell)
	}
	labelCell := fmt.Sprintf("%-*s", labelWidth, label)

	switch report.LineKind(l.Kind) {
	case report.LineSection:
		return sectionStyle.Render(labelCell) + sectionStyle.Render(amountCell)
	case report.LineDirect, report.LineEarnings:
		return dimStyle.Render(labelCell) + amountCell
	}
	return labelCell + amountCell
}

func renderTotal(label, amount string) string {
	return totalStyle.Render(fmt.Sprintf("%-*s%*s", labelWidth, label, amountWidth, formatSigned(amount)))
}

func renderLines(lines []api.Line) string {
	rows := make([]string, 0, len(lines))
	for i, l := range lines {
		if l.Kind == string(report.LineSection) && i > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, renderLine(l))
	}
	return strings.Join(rows, "\n")
}

func renderBalanceSheet(bs *api.BalanceSheet) string {
	parts := []string{
		titleStyle.Render(strings.ToUpper(bs.Report)),
		subtitleStyle.Render("As of " + bs.Period.AsOf),
		renderLines(bs.Lines),
		"",
		renderTotal("Total Assets", bs.Total.Assets),
		renderTotal("Total Liabilities + Equity", bs.Total.LiabilitiesAndEquity),
	}
	if bs.Imbalanced {
		parts = append(parts, "", errorStyle.Render("[IMBALANCED] assets do not equal liabilities plus equity"))
	} else {
		parts = append(parts, "", successStyle.Render("[BALANCED]"))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderProfitLoss(pl *api.ProfitLoss) string {
	parts := []string{
		titleStyle.Render(strings.ToUpper(pl.Report)),
		subtitleStyle.Render(pl.Period.Start + " to " + pl.Period.End),
		renderLines(pl.Lines),
		"",
		renderTotal("Net Income", pl.NetIncome),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderChart(nodes []api.ChartNode) string {
	var b strings.Builder
	var walk func(n api.ChartNode, depth int)
	walk = func(n api.ChartNode, depth int) {
		code := ""
		if n.Code != 0 {
			code = fmt.Sprintf("%d ", n.Code)
		}
		line := fmt.Sprintf("%s%s%s", strings.Repeat("  ", depth), code, n.Name)
		if depth == 0 {
			line = sectionStyle.Render(line) + " " + dimStyle.Render(n.Classification)
		}
		b.WriteString(line + "\n")
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
	return b.String()
}
