package insights

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

func tx(date string, typ model.TransactionType, cat, amount string) model.Transaction {
	return model.Transaction{Date: date, Type: typ, Category: cat, Amount: dec(amount)}
}

func TestCompute_NoData(t *testing.T) {
	in := Engine{Currency: "₹"}.Compute(nil, nil)
	assert.Equal(t, NoDataSummary, in.Summary)
	assert.Empty(t, in.Suggestions)
	assert.Empty(t, in.Alerts)
}

func TestCompute_HealthyMonth(t *testing.T) {
	txns := []model.Transaction{
		tx("2024-03-01", model.TypeIncome, "salary", "1000"),
		tx("2024-03-02", model.TypeExpense, "rent", "400"),
	}
	in := Engine{Currency: "₹"}.Compute(txns, nil)
	assert.Equal(t, "Your income exceeds expenses by ₹600 for the current period.", in.Summary)
	assert.Empty(t, in.Suggestions)
	assert.Empty(t, in.Alerts)
}

func TestCompute_Overspending(t *testing.T) {
	txns := []model.Transaction{
		tx("2024-03-01", model.TypeIncome, "salary", "1000"),
		tx("2024-03-02", model.TypeExpense, "shopping", "250"),
		tx("2024-03-03", model.TypeExpense, "food", "150"),
		tx("2024-03-04", model.TypeExpense, "rent", "800"),
	}
	in := Engine{Currency: "₹"}.Compute(txns, nil)

	assert.Equal(t, "Your expenses exceed income by ₹200. Reduce non-essential spending to avoid cash-flow stress.", in.Summary)
	require.Len(t, in.Suggestions, 2)
	assert.Contains(t, in.Suggestions[0], "about 40% of income")
	assert.Contains(t, in.Suggestions[1], "save at least 20%")
	require.Len(t, in.Alerts, 1)
	assert.Equal(t, model.AlertWarning, in.Alerts[0].Type)
}

func TestCompute_GoalAlerts(t *testing.T) {
	txns := []model.Transaction{
		tx("2024-03-01", model.TypeIncome, "salary", "10000"),
		tx("2024-03-05", model.TypeExpense, "rent", "1000"),
		tx("2024-03-06", model.TypeExpense, "travel", "85"),
		tx("2024-02-06", model.TypeExpense, "travel", "500"),
	}
	goals := []model.Goal{
		{Name: "Rent", Category: "rent", Month: "2024-03", LimitAmount: dec("900")},
		{Name: "Travel", Category: "travel", Month: "2024-03", LimitAmount: dec("100")},
		{Name: "Everything", Category: model.CategoryAll, Month: "2024-03", LimitAmount: dec("5000")},
		{Name: "No limit", Category: model.CategoryAll, Month: "2024-03"},
	}
	in := Engine{}.Compute(txns, goals)

	require.Len(t, in.Alerts, 2)
	assert.Equal(t, model.Alert{Type: model.AlertDanger, Message: "You have exceeded the limit for 'Rent' (111% of monthly limit)."}, in.Alerts[0])
	assert.Equal(t, model.Alert{Type: model.AlertWarning, Message: "'Travel' is at 85% of its monthly limit."}, in.Alerts[1])
}

func TestWithSpent(t *testing.T) {
	txns := []model.Transaction{
		tx("2024-03-05", model.TypeExpense, "food", "20"),
		tx("2024-03-09", model.TypeExpense, "food", "5.50"),
		tx("2024-03-09", model.TypeExpense, "rent", "700"),
		tx("2024-03-09", model.TypeIncome, "food", "100"),
	}
	goals := WithSpent([]model.Goal{
		{Name: "Food", Category: "food", Month: "2024-03"},
		{Name: "All", Category: "", Month: "2024-03"},
	}, txns)

	assert.Equal(t, "25.50", goals[0].SpentAmount.StringFixed(2))
	assert.Equal(t, "725.50", goals[1].SpentAmount.StringFixed(2))
}

func TestSum_DefaultsCategory(t *testing.T) {
	totals := Sum([]model.Transaction{
		tx("2024-03-05", model.TypeExpense, "", "3"),
		tx("2024-03-05", "transfer", "x", "99"),
	})
	assert.Equal(t, "3.00", totals.ByCategory["other"].StringFixed(2))
	assert.True(t, totals.Income.IsZero())
	assert.Equal(t, "3.00", totals.Expense.StringFixed(2))
}
