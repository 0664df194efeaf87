package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/model"
)

type summaryMsg model.Summary

type transactionsMsg []model.Transaction

type categoriesMsg []model.CategoryTotal

type seriesMsg aggregate.DailySeries

type chartMsg aggregate.CategorySeries

type goalsMsg dashboard.GoalsView

type insightsMsg dashboard.InsightsView

type alertsMsg []model.Alert

// Binder forwards dashboard views into the bubbletea event loop. The
// Dashboard calls it while holding its lock, so Update must never call the
// Dashboard directly: every dashboard call runs in a tea.Cmd.
type Binder struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ dashboard.Binder = (*Binder)(nil)

// Attach sets the message sink, normally (*tea.Program).Send. Views bound
// before Attach are dropped.
func (b *Binder) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Binder) emit(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *Binder) BindSummary(s model.Summary)                  { b.emit(summaryMsg(s)) }
func (b *Binder) BindTransactions(t []model.Transaction)       { b.emit(transactionsMsg(t)) }
func (b *Binder) BindCategories(c []model.CategoryTotal)       { b.emit(categoriesMsg(c)) }
func (b *Binder) BindBalanceSeries(s aggregate.DailySeries)    { b.emit(seriesMsg(s)) }
func (b *Binder) BindCategoryChart(c aggregate.CategorySeries) { b.emit(chartMsg(c)) }
func (b *Binder) BindGoals(g dashboard.GoalsView)              { b.emit(goalsMsg(g)) }
func (b *Binder) BindInsights(in dashboard.InsightsView)       { b.emit(insightsMsg(in)) }
func (b *Binder) BindAlerts(a []model.Alert)                   { b.emit(alertsMsg(a)) }
