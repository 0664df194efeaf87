// Package render prints dashboard views as plain-text reports for the CLI.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/format"
	"github.com/finai-dev/finai/internal/model"
)

const barWidth = 30

// Report is a dashboard.Binder that writes each view to w as it arrives.
type Report struct {
	w        io.Writer
	currency string

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
	over  lipgloss.Style
	r     *lipgloss.Renderer
}

var _ dashboard.Binder = (*Report)(nil)

// NewReport creates a Report. Styling follows the color profile of w, so
// output to a pipe or buffer is plain text.
func NewReport(w io.Writer, currency string) *Report {
	return NewStyledReport(w, currency, lipgloss.NewRenderer(w))
}

// NewStyledReport creates a Report styled by r. The TUI passes the
// terminal's renderer while writing into an in-memory buffer.
func NewStyledReport(w io.Writer, currency string, r *lipgloss.Renderer) *Report {
	if currency == "" {
		currency = format.DefaultCurrency
	}
	return &Report{
		w:        w,
		currency: currency,
		r:        r,
		title:    r.NewStyle().Bold(true).Underline(true),
		label:    r.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		value:    r.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		over:     r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	}
}

func (p *Report) section(name string) {
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render(name))
}

func (p *Report) empty(text string) {
	fmt.Fprintln(p.w, p.muted.Render(text))
}

func (p *Report) money(d decimal.Decimal) string {
	return format.Money(p.currency, d)
}

// BindSummary prints the balance, income and spending cards.
func (p *Report) BindSummary(s model.Summary) {
	p.section("Summary")
	fmt.Fprintf(p.w, "%s %s   %s %s   %s %s\n",
		p.label.Render("Balance"), p.value.Render(p.money(s.CurrentBalance)),
		p.label.Render("Income"), p.value.Render(p.money(s.TotalIncome)),
		p.label.Render("Spending"), p.value.Render(p.money(s.TotalSpending)))
}

// BindTransactions prints the transaction table.
func (p *Report) BindTransactions(txns []model.Transaction) {
	p.section("Transactions")
	if len(txns) == 0 {
		p.empty(dashboard.EmptyTransactions)
		return
	}
	fmt.Fprintln(p.w, p.label.Render(fmt.Sprintf("%-8s  %-10s  %-7s  %-14s  %12s  %s", "ID", "DATE", "TYPE", "CATEGORY", "AMOUNT", "DESCRIPTION")))
	for _, t := range txns {
		amount := t.Amount
		if !t.IsIncome() {
			amount = amount.Neg()
		}
		fmt.Fprintf(p.w, "%-8s  %-10s  %-7s  %-14s  %12s  %s\n",
			t.ID, t.Date, t.Type, t.Category, format.Signed(p.currency, amount), t.Description)
	}
}

// BindCategories prints the server-side category totals.
func (p *Report) BindCategories(cats []model.CategoryTotal) {
	p.section("Spending by category")
	if len(cats) == 0 {
		p.empty(dashboard.EmptyCategories)
		return
	}
	for _, c := range cats {
		fmt.Fprintf(p.w, "%-14s  %12s\n", c.Category, p.money(c.Total))
	}
}

// BindBalanceSeries prints one bar per date, scaled to the largest change.
// An empty series prints nothing.
func (p *Report) BindBalanceSeries(s aggregate.DailySeries) {
	if s.Empty() {
		return
	}
	p.section("Daily net change")
	peak := decimal.Zero
	for _, v := range s.NetChanges {
		if v.Abs().GreaterThan(peak) {
			peak = v.Abs()
		}
	}
	for i, date := range s.Dates {
		v := s.NetChanges[i]
		fmt.Fprintf(p.w, "%-10s  %14s  %s\n", date, format.Signed(p.currency, v), p.bar(v, peak, ""))
	}
}

// BindCategoryChart prints the share of each category in its palette color.
func (p *Report) BindCategoryChart(c aggregate.CategorySeries) {
	if len(c.Labels) == 0 {
		return
	}
	p.section("Category breakdown")
	total := c.Total()
	for i, label := range c.Labels {
		share := decimal.Zero
		if total.IsPositive() {
			share = c.Values[i].Div(total).Mul(decimal.NewFromInt(100))
		}
		fmt.Fprintf(p.w, "%-14s  %5s  %s\n", label, format.Percent(share), p.bar(c.Values[i], total, c.Colors[i]))
	}
}

// BindGoals prints the goals table with its totals row.
func (p *Report) BindGoals(v dashboard.GoalsView) {
	p.section("Goals")
	if len(v.Rows) == 0 {
		p.empty(dashboard.EmptyGoals)
		return
	}
	for _, row := range v.Rows {
		g := row.Goal
		status := format.Percent(row.Progress.ProgressPercent)
		if row.Progress.OverLimit {
			status = p.over.Render(status + " over limit")
		}
		fmt.Fprintf(p.w, "%-16s  %-12s  %-7s  %12s / %-12s  %s\n",
			g.Name, g.Category, g.Month, p.money(g.SpentAmount), p.money(g.LimitAmount), status)
	}
	fmt.Fprintf(p.w, "%s %d goals, %s spent of %s\n",
		p.label.Render("Total:"), v.Totals.Count, p.money(v.Totals.TotalSpent), p.money(v.Totals.TotalLimit))
}

// BindInsights prints the insight card.
func (p *Report) BindInsights(v dashboard.InsightsView) {
	p.section("Insights")
	fmt.Fprintln(p.w, v.Headline)
	if v.Local {
		fmt.Fprintln(p.w, p.muted.Render("(computed locally)"))
	}
}

// BindAlerts prints the alert list with its count.
func (p *Report) BindAlerts(alerts []model.Alert) {
	p.section(fmt.Sprintf("Alerts (%d)", len(alerts)))
	if len(alerts) == 0 {
		p.empty(dashboard.EmptyAlerts)
		return
	}
	for _, a := range alerts {
		fmt.Fprintf(p.w, "%s %s\n", a.Icon(), a.Message)
	}
}

func (p *Report) bar(v, peak decimal.Decimal, color string) string {
	if !peak.IsPositive() {
		return ""
	}
	n := int(v.Abs().Div(peak).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	if n == 0 && !v.IsZero() {
		n = 1
	}
	glyph := "█"
	if v.IsNegative() {
		glyph = "░"
	}
	b := strings.Repeat(glyph, n)
	if color != "" {
		return p.r.NewStyle().Foreground(lipgloss.Color(color)).Render(b)
	}
	return b
}
