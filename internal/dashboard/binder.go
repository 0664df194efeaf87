package dashboard

import (
	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/model"
)

// Empty-state texts shown by binders.
const (
	EmptyTransactions = "No transactions yet. Add your first transaction to get started."
	EmptyCategories   = "Add expenses to see category breakdown."
	EmptyGoals        = "No goals yet. Add your first monthly limit."
	EmptyAlerts       = "No alerts. You’re on track."
)

// GoalsView is the goals table with its totals row.
type GoalsView struct {
	Rows   []aggregate.GoalRow
	Totals aggregate.GoalTotals
}

// InsightsView is the insight card text.
type InsightsView struct {
	Headline string
	Local    bool // computed client-side because the API call failed
}

// Binder receives views as cascade stages complete. Calls are serialized by
// the Dashboard and made while it holds its lock: a Binder must not call back
// into the Dashboard.
type Binder interface {
	BindSummary(model.Summary)
	BindTransactions([]model.Transaction)
	BindCategories([]model.CategoryTotal)
	BindBalanceSeries(aggregate.DailySeries)
	BindCategoryChart(aggregate.CategorySeries)
	BindGoals(GoalsView)
	BindInsights(InsightsView)
	BindAlerts([]model.Alert)
}

// NopBinder ignores every view. Embed it to implement part of Binder.
type NopBinder struct{}

func (NopBinder) BindSummary(model.Summary)                  {}
func (NopBinder) BindTransactions([]model.Transaction)       {}
func (NopBinder) BindCategories([]model.CategoryTotal)       {}
func (NopBinder) BindBalanceSeries(aggregate.DailySeries)    {}
func (NopBinder) BindCategoryChart(aggregate.CategorySeries) {}
func (NopBinder) BindGoals(GoalsView)                        {}
func (NopBinder) BindInsights(InsightsView)                  {}
func (NopBinder) BindAlerts([]model.Alert)                   {}
