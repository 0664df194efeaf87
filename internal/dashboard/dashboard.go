// Package dashboard owns the client-side view state and runs the refresh
// cascades that keep it in step with the remote API.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/insights"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/model"
)

// ErrClosed is returned by operations on a closed Dashboard.
var ErrClosed = errors.New("dashboard closed")

// Source is the API surface the dashboard reads and mutates.
type Source interface {
	Summary(ctx context.Context) (model.Summary, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)
	CategorySummary(ctx context.Context) ([]model.CategoryTotal, error)
	GoalsWithProgress(ctx context.Context) ([]model.Goal, error)
	Insights(ctx context.Context) (model.Insights, error)

	CreateTransaction(ctx context.Context, t model.Transaction) error
	UpdateTransaction(ctx context.Context, id string, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	CreateGoal(ctx context.Context, g model.GoalInput) error
}

// Notifier is told about successful mutations so other clients can refresh.
type Notifier interface {
	Notify(ctx context.Context, kind string) error
}

// Snapshot is the state last painted to the binder.
type Snapshot struct {
	Summary       model.Summary
	Transactions  []model.Transaction
	Categories    []model.CategoryTotal
	Balance       aggregate.DailySeries
	CategoryChart aggregate.CategorySeries
	Goals         GoalsView
	Insights      model.Insights
	Headline      string
	LocalInsights bool
	Alerts        []model.Alert
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithBinder sets the view consumer.
func WithBinder(b Binder) Option {
	return func(d *Dashboard) { d.binder = b }
}

// WithPalette sets the category chart palette.
func WithPalette(p []string) Option {
	return func(d *Dashboard) { d.palette = p }
}

// WithParallel runs independent stages concurrently. Insights still run last.
func WithParallel(on bool) Option {
	return func(d *Dashboard) { d.parallel = on }
}

// WithLocalInsights computes insights client-side when the API call fails.
func WithLocalInsights(e insights.Engine) Option {
	return func(d *Dashboard) { d.fallback = &e }
}

// WithNotifier announces successful mutations.
func WithNotifier(n Notifier) Option {
	return func(d *Dashboard) { d.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dashboard) { d.logger = l.WithComponent(log.ComponentDashboard) }
}

// Dashboard owns the view state. It is safe for concurrent use.
type Dashboard struct {
	src      Source
	binder   Binder
	notifier Notifier
	fallback *insights.Engine
	palette  []string
	parallel bool
	logger   *log.Logger

	gen    atomic.Uint64
	closed atomic.Bool

	mu      sync.Mutex
	snap    Snapshot
	applied [numStages]uint64
}

// New creates a Dashboard reading from src.
func New(src Source, opts ...Option) *Dashboard {
	d := &Dashboard{
		src:     src,
		binder:  NopBinder{},
		palette: aggregate.DefaultPalette,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start paints every view once.
func (d *Dashboard) Start(ctx context.Context) error {
	return d.Refresh(ctx, FullCascade)
}

// Close stops the dashboard. Results of cascades still in flight are dropped.
func (d *Dashboard) Close() {
	d.closed.Store(true)
}

// Generation returns the token of the most recently started cascade.
func (d *Dashboard) Generation() uint64 {
	return d.gen.Load()
}

// Snapshot returns a copy of the current view state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.snap
	s.Transactions = append([]model.Transaction(nil), s.Transactions...)
	s.Categories = append([]model.CategoryTotal(nil), s.Categories...)
	s.Goals.Rows = append([]aggregate.GoalRow(nil), s.Goals.Rows...)
	s.Alerts = append([]model.Alert(nil), s.Alerts...)
	return s
}

// Alerts returns the current alerts.
func (d *Dashboard) Alerts() []model.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Alert(nil), d.snap.Alerts...)
}

// AlertCount is the notification badge number.
func (d *Dashboard) AlertCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.snap.Alerts)
}

// ClearAlerts empties the alert list until the next insights stage.
func (d *Dashboard) ClearAlerts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap.Alerts = []model.Alert{}
	d.binder.BindAlerts(d.snap.Alerts)
}

// apply runs fn under the lock unless a newer cascade already applied stage.
func (d *Dashboard) apply(gen uint64, stage Stage, fn func()) bool {
	if d.closed.Load() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen < d.applied[stage] {
		d.logger.Debug("dropping stale stage result",
			log.FieldStage, stage.String(),
			log.FieldGeneration, gen)
		return false
	}
	d.applied[stage] = gen
	fn()
	return true
}
