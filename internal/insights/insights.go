// Package insights computes the advisory card and alerts from a local snapshot
// of transactions and goals, using the same rules as the API.
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/model"
)

// NoDataSummary is the summary when there is no income and no expense.
const NoDataSummary = "No transactions yet. Add income and expenses to get insights."

var (
	hundred       = decimal.NewFromInt(100)
	flexLimit     = decimal.NewFromInt(30)
	warnRatio     = decimal.NewFromInt(80)
	savingsTarget = decimal.RequireFromString("0.2")
)

// FlexCategories are the discretionary categories checked against income.
var FlexCategories = []string{"entertainment", "shopping", "Food", "food"}

// Engine evaluates the rules. The zero value uses no currency symbol.
type Engine struct {
	Currency string
}

// Totals are the income, expense and per-category expense sums of a snapshot.
type Totals struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// Sum totals a snapshot. Types other than income and expense are ignored.
func Sum(txns []model.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}
	for _, tx := range txns {
		switch tx.Type {
		case model.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case model.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
			cat := tx.Category
			if cat == "" {
				cat = "other"
			}
			t.ByCategory[cat] = t.ByCategory[cat].Add(tx.Amount)
		}
	}
	return t
}

// SpentForGoal sums the expenses that count toward g.
func SpentForGoal(g model.Goal, txns []model.Transaction) decimal.Decimal {
	spent := decimal.Zero
	for _, tx := range txns {
		if g.Matches(tx) {
			spent = spent.Add(tx.Amount)
		}
	}
	return spent
}

// WithSpent returns copies of goals with SpentAmount computed from txns.
func WithSpent(goals []model.Goal, txns []model.Transaction) []model.Goal {
	out := make([]model.Goal, len(goals))
	for i, g := range goals {
		g.SpentAmount = SpentForGoal(g, txns)
		out[i] = g
	}
	return out
}

// Compute builds the summary, suggestions and alerts for a snapshot.
func (e Engine) Compute(txns []model.Transaction, goals []model.Goal) model.Insights {
	totals := Sum(txns)
	in := model.Insights{
		Summary:     e.summary(totals),
		Suggestions: []string{},
		Alerts:      []model.Alert{},
	}

	if totals.Income.IsPositive() {
		flex := decimal.Zero
		for _, cat := range FlexCategories {
			flex = flex.Add(totals.ByCategory[cat])
		}
		ratio := flex.Div(totals.Income).Mul(hundred)
		if ratio.GreaterThan(flexLimit) {
			in.Suggestions = append(in.Suggestions, fmt.Sprintf(
				"Entertainment and shopping are about %s%% of income. Try to keep them under 30%% and move the difference into savings.",
				ratio.StringFixed(0)))
			in.Alerts = append(in.Alerts, model.Alert{
				Type:    model.AlertWarning,
				Message: "High lifestyle spending detected (entertainment/shopping).",
			})
		}
	}

	for _, g := range goals {
		if alert, ok := goalAlert(g, SpentForGoal(g, txns)); ok {
			in.Alerts = append(in.Alerts, alert)
		}
	}

	if totals.Income.IsPositive() {
		saved := totals.Income.Sub(totals.Expense)
		if saved.LessThan(totals.Income.Mul(savingsTarget)) {
			in.Suggestions = append(in.Suggestions,
				"Aim to save at least 20% of income. Trim one or two discretionary categories next month to reach this level.")
		}
	}

	return in
}

func (e Engine) summary(t Totals) string {
	if t.Income.IsZero() && t.Expense.IsZero() {
		return NoDataSummary
	}
	delta := t.Income.Sub(t.Expense)
	if !delta.IsNegative() {
		return fmt.Sprintf("Your income exceeds expenses by %s%s for the current period.", e.Currency, delta.StringFixed(0))
	}
	return fmt.Sprintf("Your expenses exceed income by %s%s. Reduce non-essential spending to avoid cash-flow stress.",
		e.Currency, delta.Abs().StringFixed(0))
}

func goalAlert(g model.Goal, spent decimal.Decimal) (model.Alert, bool) {
	if !g.LimitAmount.IsPositive() {
		return model.Alert{}, false
	}
	ratio := spent.Div(g.LimitAmount).Mul(hundred)
	switch {
	case ratio.GreaterThanOrEqual(hundred):
		return model.Alert{
			Type:    model.AlertDanger,
			Message: fmt.Sprintf("You have exceeded the limit for '%s' (%s%% of monthly limit).", g.Name, ratio.StringFixed(0)),
		}, true
	case ratio.GreaterThanOrEqual(warnRatio):
		return model.Alert{
			Type:    model.AlertWarning,
			Message: fmt.Sprintf("'%s' is at %s%% of its monthly limit.", g.Name, ratio.StringFixed(0)),
		}, true
	default:
		return model.Alert{}, false
	}
}
