package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/insights"
	"github.com/finai-dev/finai/internal/model"
	"github.com/finai-dev/finai/internal/render"
)

// Sections of the printed report.
const (
	secSummary      = "summary"
	secTransactions = "transactions"
	secCategories   = "categories"
	secBalance      = "balance"
	secChart        = "chart"
	secGoals        = "goals"
	secInsights     = "insights"
	secAlerts       = "alerts"
)

// sections forwards only the listed views to the report, so a partial
// cascade can fetch what it depends on without printing it.
type sections struct {
	r    *render.Report
	show map[string]bool
}

var _ dashboard.Binder = sections{}

func only(r *render.Report, names ...string) sections {
	show := make(map[string]bool, len(names))
	for _, n := range names {
		show[n] = true
	}
	return sections{r: r, show: show}
}

func (s sections) BindSummary(v model.Summary) {
	if s.show[secSummary] {
		s.r.BindSummary(v)
	}
}

func (s sections) BindTransactions(v []model.Transaction) {
	if s.show[secTransactions] {
		s.r.BindTransactions(v)
	}
}

func (s sections) BindCategories(v []model.CategoryTotal) {
	if s.show[secCategories] {
		s.r.BindCategories(v)
	}
}

func (s sections) BindBalanceSeries(v aggregate.DailySeries) {
	if s.show[secBalance] {
		s.r.BindBalanceSeries(v)
	}
}

func (s sections) BindCategoryChart(v aggregate.CategorySeries) {
	if s.show[secChart] {
		s.r.BindCategoryChart(v)
	}
}

func (s sections) BindGoals(v dashboard.GoalsView) {
	if s.show[secGoals] {
		s.r.BindGoals(v)
	}
}

func (s sections) BindInsights(v dashboard.InsightsView) {
	if s.show[secInsights] {
		s.r.BindInsights(v)
	}
}

func (s sections) BindAlerts(v []model.Alert) {
	if s.show[secAlerts] {
		s.r.BindAlerts(v)
	}
}

// showCascade runs c and prints the named sections to w.
func showCascade(ctx context.Context, opts *rootOptions, w io.Writer, c dashboard.Cascade, names ...string) error {
	e, err := setup(opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	d := e.dashboard(only(render.NewReport(w, e.cfg.Display.Currency), names...))
	defer d.Close()
	return d.Refresh(ctx, c)
}

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, income and spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageSummary}, secSummary)
		},
	}
}

func newInsightsCommand(opts *rootOptions) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show the insight card and alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return runLocalInsights(cmd.Context(), opts, cmd.OutOrStdout())
			}
			// Transactions are fetched so a failed insights call can fall back
			// to local rules.
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageTransactions, dashboard.StageGoals, dashboard.StageInsights},
				secInsights, secAlerts)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "compute insights on this machine instead of asking the API")

	return cmd
}

func runLocalInsights(ctx context.Context, opts *rootOptions, w io.Writer) error {
	e, err := setup(opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	txns, err := e.client.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}
	goals, err := e.client.Goals(ctx)
	if err != nil {
		return fmt.Errorf("fetching goals: %w", err)
	}

	in := insights.Engine{Currency: e.cfg.Display.Currency}.Compute(txns, goals)
	r := render.NewReport(w, e.cfg.Display.Currency)
	r.BindInsights(dashboard.InsightsView{Headline: in.Headline(), Local: true})
	r.BindAlerts(in.Alerts)
	return nil
}

func newAlertsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List alerts from the latest insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageTransactions, dashboard.StageGoals, dashboard.StageInsights},
				secAlerts)
		},
	}
}

func newChartCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw the balance or category chart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Daily net change per date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageTransactions, dashboard.StageBalanceSeries}, secBalance)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Share of spending per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageCategories, dashboard.StageCategoryChart}, secChart)
		},
	})

	return cmd
}
