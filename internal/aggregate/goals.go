package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/model"
)

var hundred = decimal.NewFromInt(100)

// GoalProgress is the derived view of one goal.
type GoalProgress struct {
	ProgressPercent decimal.Decimal // clamped to [0, 100]
	OverLimit       bool
}

// ComputeGoalProgress returns min(100, spent/limit*100) when limit > 0, else 0.
// OverLimit is spent > limit and is independent of the clamp.
func ComputeGoalProgress(g model.Goal) GoalProgress {
	p := GoalProgress{
		ProgressPercent: decimal.Zero,
		OverLimit:       g.SpentAmount.GreaterThan(g.LimitAmount),
	}
	if !g.LimitAmount.IsPositive() {
		return p
	}
	pct := g.SpentAmount.Div(g.LimitAmount).Mul(hundred)
	switch {
	case pct.GreaterThan(hundred):
		pct = hundred
	case pct.IsNegative():
		pct = decimal.Zero
	}
	p.ProgressPercent = pct
	return p
}

// GoalTotals summarizes a goal list.
type GoalTotals struct {
	Count      int
	TotalLimit decimal.Decimal
	TotalSpent decimal.Decimal
}

// ComputeGoalTotals sums limits and spent amounts over goals.
func ComputeGoalTotals(goals []model.Goal) GoalTotals {
	totals := GoalTotals{Count: len(goals), TotalLimit: decimal.Zero, TotalSpent: decimal.Zero}
	for _, g := range goals {
		totals.TotalLimit = totals.TotalLimit.Add(g.LimitAmount)
		totals.TotalSpent = totals.TotalSpent.Add(g.SpentAmount)
	}
	return totals
}

// GoalRow pairs a goal with its progress for table rendering.
type GoalRow struct {
	Goal     model.Goal
	Progress GoalProgress
}

// BuildGoalRows computes progress for every goal, keeping input order.
func BuildGoalRows(goals []model.Goal) []GoalRow {
	rows := make([]GoalRow, len(goals))
	for i, g := range goals {
		rows[i] = GoalRow{Goal: g, Progress: ComputeGoalProgress(g)}
	}
	return rows
}
