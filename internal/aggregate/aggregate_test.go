package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finai-dev/finai/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(date string, typ model.TransactionType, amount string) model.Transaction {
	return model.Transaction{Date: date, Type: typ, Category: "misc", Amount: dec(amount)}
}

func fixed(ds []decimal.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.StringFixed(2)
	}
	return out
}

func TestBuildDailyNetSeries_Scenario(t *testing.T) {
	txns := []model.Transaction{
		txn("2024-01-01", model.TypeIncome, "100"),
		txn("2024-01-01", model.TypeExpense, "30"),
		txn("2024-01-02", model.TypeExpense, "10"),
	}

	s := BuildDailyNetSeries(txns)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, s.Dates)
	assert.Equal(t, []string{"70.00", "-10.00"}, fixed(s.NetChanges))
}

func TestBuildDailyNetSeries_Empty(t *testing.T) {
	assert.True(t, BuildDailyNetSeries(nil).Empty())
	assert.True(t, BuildDailyNetSeries([]model.Transaction{}).Empty())

	undated := []model.Transaction{
		{Type: model.TypeIncome, Amount: dec("10")},
		{Type: model.TypeExpense, Amount: dec("5")},
	}
	s := BuildDailyNetSeries(undated)
	assert.True(t, s.Empty())
	assert.Empty(t, s.NetChanges)
}

func TestBuildDailyNetSeries_SortsDates(t *testing.T) {
	txns := []model.Transaction{
		txn("2024-02-10", model.TypeIncome, "1"),
		txn("2023-12-31", model.TypeIncome, "2"),
		txn("2024-01-15", model.TypeIncome, "3"),
	}
	s := BuildDailyNetSeries(txns)
	assert.Equal(t, []string{"2023-12-31", "2024-01-15", "2024-02-10"}, s.Dates)
	assert.Equal(t, []string{"2.00", "3.00", "1.00"}, fixed(s.NetChanges))
}

func TestBuildDailyNetSeries_UnknownTypeIsExpense(t *testing.T) {
	txns := []model.Transaction{
		txn("2024-01-01", model.TypeIncome, "50"),
		txn("2024-01-01", "transfer", "20"),
		txn("2024-01-01", "", "5"),
	}
	s := BuildDailyNetSeries(txns)
	require.Len(t, s.NetChanges, 1)
	assert.Equal(t, "25.00", s.NetChanges[0].StringFixed(2))
}

func TestBuildDailyNetSeries_SumMatchesTotals(t *testing.T) {
	txns := []model.Transaction{
		txn("2024-03-01", model.TypeIncome, "1200.50"),
		txn("2024-03-01", model.TypeExpense, "99.99"),
		txn("2024-03-04", model.TypeExpense, "15.25"),
		txn("2024-03-09", model.TypeIncome, "42"),
		txn("", model.TypeIncome, "1000"),
		txn("2024-03-09", model.TypeExpense, "0"),
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txns {
		if tx.Date == "" {
			continue
		}
		if tx.IsIncome() {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}

	sum := decimal.Zero
	for _, n := range BuildDailyNetSeries(txns).NetChanges {
		sum = sum.Add(n)
	}
	assert.True(t, sum.Equal(income.Sub(expense)), "sum %s != %s", sum, income.Sub(expense))
}

func TestBuildCategoryColorMap(t *testing.T) {
	totals := make([]model.CategoryTotal, 10)
	for i := range totals {
		totals[i] = model.CategoryTotal{Category: string(rune('a' + i)), Total: dec("1")}
	}

	colors := BuildCategoryColorMap(totals, nil)
	assert.Len(t, colors, 10)
	assert.Equal(t, "#3b82f6", colors["a"])
	assert.Equal(t, "#f472b6", colors["h"])
	assert.Equal(t, "#3b82f6", colors["i"], "palette wraps")
	assert.Equal(t, "#22c55e", colors["j"])

	custom := BuildCategoryColorMap(totals[:3], []string{"red", "blue"})
	assert.Equal(t, map[string]string{"a": "red", "b": "blue", "c": "red"}, custom)

	assert.Empty(t, BuildCategoryColorMap(nil, nil))
}

func TestBuildCategorySeries(t *testing.T) {
	totals := []model.CategoryTotal{
		{Category: "food", Total: dec("120.50")},
		{Category: "rent", Total: dec("900")},
	}
	s := BuildCategorySeries(totals, nil)
	assert.Equal(t, []string{"food", "rent"}, s.Labels)
	assert.Equal(t, []string{"120.50", "900.00"}, fixed(s.Values))
	assert.Equal(t, []string{"#3b82f6", "#22c55e"}, s.Colors)
	assert.Equal(t, "1020.50", s.Total().StringFixed(2))
}

func TestComputeGoalProgress(t *testing.T) {
	tests := []struct {
		name    string
		limit   string
		spent   string
		percent string
		over    bool
	}{
		{"zero limit", "0", "50", "0.00", true},
		{"zero limit nothing spent", "0", "0", "0.00", false},
		{"over limit clamps", "200", "250", "100.00", true},
		{"quarter", "200", "50", "25.00", false},
		{"exactly at limit", "200", "200", "100.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeGoalProgress(model.Goal{LimitAmount: dec(tt.limit), SpentAmount: dec(tt.spent)})
			assert.Equal(t, tt.percent, p.ProgressPercent.StringFixed(2))
			assert.Equal(t, tt.over, p.OverLimit)
		})
	}
}

func TestComputeGoalTotals(t *testing.T) {
	goals := []model.Goal{
		{Name: "Food", LimitAmount: dec("500"), SpentAmount: dec("120.25")},
		{Name: "Fun", LimitAmount: dec("200"), SpentAmount: dec("250")},
	}
	totals := ComputeGoalTotals(goals)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, "700.00", totals.TotalLimit.StringFixed(2))
	assert.Equal(t, "370.25", totals.TotalSpent.StringFixed(2))

	empty := ComputeGoalTotals(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalLimit.IsZero())
}

func TestBuildGoalRows(t *testing.T) {
	rows := BuildGoalRows([]model.Goal{
		{Name: "A", LimitAmount: dec("100"), SpentAmount: dec("80")},
		{Name: "B", LimitAmount: dec("100"), SpentAmount: dec("120")},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Goal.Name)
	assert.Equal(t, "80.00", rows[0].Progress.ProgressPercent.StringFixed(2))
	assert.True(t, rows[1].Progress.OverLimit)
}
