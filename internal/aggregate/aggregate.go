// Package aggregate turns fetched API snapshots into chart and widget views.
// Every function is pure: no I/O, no errors, no panics on malformed input.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/model"
)

// DefaultPalette is the chart palette used when none is configured.
var DefaultPalette = []string{
	"#3b82f6", "#22c55e", "#ef4444", "#f97316",
	"#a855f7", "#06b6d4", "#eab308", "#f472b6",
}

// DailyAggregate holds the income and expense totals for one date.
type DailyAggregate struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (d DailyAggregate) Net() decimal.Decimal {
	return d.Income.Sub(d.Expense)
}

// DailySeries is the per-date net change series. Dates and NetChanges have equal length.
type DailySeries struct {
	Dates      []string
	NetChanges []decimal.Decimal
}

// Empty reports whether there is nothing to plot.
func (s DailySeries) Empty() bool {
	return len(s.Dates) == 0
}

// GroupByDate sums transaction amounts per date. Undated transactions are skipped.
func GroupByDate(txns []model.Transaction) map[string]DailyAggregate {
	byDate := make(map[string]DailyAggregate)
	for _, t := range txns {
		if t.Date == "" {
			continue
		}
		agg := byDate[t.Date]
		if t.IsIncome() {
			agg.Income = agg.Income.Add(t.Amount)
		} else {
			agg.Expense = agg.Expense.Add(t.Amount)
		}
		byDate[t.Date] = agg
	}
	return byDate
}

// BuildDailyNetSeries returns the distinct dates in ascending order with the
// net change (income - expense) for each.
func BuildDailyNetSeries(txns []model.Transaction) DailySeries {
	byDate := GroupByDate(txns)
	if len(byDate) == 0 {
		return DailySeries{}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	nets := make([]decimal.Decimal, len(dates))
	for i, d := range dates {
		nets[i] = byDate[d].Net()
	}
	return DailySeries{Dates: dates, NetChanges: nets}
}

// BuildCategoryColorMap assigns palette[i mod len] to the category at position i.
// An empty palette falls back to DefaultPalette. When a category repeats, the
// later position wins.
func BuildCategoryColorMap(totals []model.CategoryTotal, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	colors := make(map[string]string, len(totals))
	for i, ct := range totals {
		colors[ct.Category] = palette[i%len(palette)]
	}
	return colors
}

// CategorySeries is the pie chart shape: labels, values and colors aligned by position.
type CategorySeries struct {
	Labels []string
	Values []decimal.Decimal
	Colors []string
}

// BuildCategorySeries reshapes API category totals for charting, keeping input order.
func BuildCategorySeries(totals []model.CategoryTotal, palette []string) CategorySeries {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	s := CategorySeries{
		Labels: make([]string, len(totals)),
		Values: make([]decimal.Decimal, len(totals)),
		Colors: make([]string, len(totals)),
	}
	for i, ct := range totals {
		s.Labels[i] = ct.Category
		s.Values[i] = ct.Total
		s.Colors[i] = palette[i%len(palette)]
	}
	return s
}

// Total sums the series values.
func (s CategorySeries) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range s.Values {
		sum = sum.Add(v)
	}
	return sum
}
