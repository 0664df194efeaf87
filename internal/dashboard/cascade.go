package dashboard

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/model"
)

// Refresh runs the cascade stages in order, painting each view as soon as its
// stage completes. The first failing stage aborts the cascade and is returned
// as a *StageError. Results from a cascade that a newer one has overtaken are
// dropped stage by stage.
func (d *Dashboard) Refresh(ctx context.Context, c Cascade) error {
	if d.closed.Load() {
		return ErrClosed
	}
	r := &run{d: d, gen: d.gen.Add(1)}
	d.logger.DebugContext(ctx, "refresh started",
		log.FieldOperation, log.OpRefresh,
		log.FieldGeneration, r.gen,
		log.FieldCount, len(c))

	var err error
	if d.parallel {
		err = r.concurrent(ctx, c)
	} else {
		err = r.sequential(ctx, c)
	}
	if err != nil {
		d.logger.WarnContext(ctx, "refresh aborted",
			log.FieldGeneration, r.gen,
			log.FieldError, err)
		return err
	}
	return nil
}

// run holds the data fetched by one cascade so later stages reuse it.
type run struct {
	d   *Dashboard
	gen uint64

	txns     []model.Transaction
	haveTxns bool
	cats     []model.CategoryTotal
	haveCats bool
}

func (r *run) sequential(ctx context.Context, c Cascade) error {
	for _, st := range c {
		if err := r.stage(ctx, st); err != nil {
			return &StageError{Stage: st, Err: err}
		}
	}
	return nil
}

// concurrent fans out the independent chains with errgroup. A chart stage
// follows its data stage in the same chain; insights run after all others.
func (r *run) concurrent(ctx context.Context, c Cascade) error {
	var chains [][]Stage
	var last []Stage
	for _, st := range c {
		switch {
		case st == StageInsights:
			last = append(last, st)
		case st == StageBalanceSeries && slices.Contains(c, StageTransactions):
		case st == StageCategoryChart && slices.Contains(c, StageCategories):
		case st == StageTransactions && slices.Contains(c, StageBalanceSeries):
			chains = append(chains, []Stage{StageTransactions, StageBalanceSeries})
		case st == StageCategories && slices.Contains(c, StageCategoryChart):
			chains = append(chains, []Stage{StageCategories, StageCategoryChart})
		default:
			chains = append(chains, []Stage{st})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, chain := range chains {
		g.Go(func() error {
			for _, st := range chain {
				if err := r.stage(gctx, st); err != nil {
					return &StageError{Stage: st, Err: err}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return r.sequential(ctx, last)
}

func (r *run) stage(ctx context.Context, st Stage) error {
	d := r.d
	switch st {
	case StageSummary:
		s, err := d.src.Summary(ctx)
		if err != nil {
			return err
		}
		d.apply(r.gen, st, func() {
			d.snap.Summary = s
			d.binder.BindSummary(s)
		})

	case StageTransactions:
		txns, err := r.transactions(ctx)
		if err != nil {
			return err
		}
		d.apply(r.gen, st, func() {
			d.snap.Transactions = txns
			d.binder.BindTransactions(txns)
		})

	case StageCategories:
		cats, err := r.categories(ctx)
		if err != nil {
			return err
		}
		d.apply(r.gen, st, func() {
			d.snap.Categories = cats
			d.binder.BindCategories(cats)
		})

	case StageBalanceSeries:
		txns, err := r.transactions(ctx)
		if err != nil {
			return err
		}
		series := aggregate.BuildDailyNetSeries(txns)
		d.apply(r.gen, st, func() {
			d.snap.Balance = series
			d.binder.BindBalanceSeries(series)
		})

	case StageCategoryChart:
		cats, err := r.categories(ctx)
		if err != nil {
			return err
		}
		chart := aggregate.BuildCategorySeries(cats, d.palette)
		d.apply(r.gen, st, func() {
			d.snap.CategoryChart = chart
			d.binder.BindCategoryChart(chart)
		})

	case StageGoals:
		goals, err := d.src.GoalsWithProgress(ctx)
		if err != nil {
			return err
		}
		view := GoalsView{Rows: aggregate.BuildGoalRows(goals), Totals: aggregate.ComputeGoalTotals(goals)}
		d.apply(r.gen, st, func() {
			d.snap.Goals = view
			d.binder.BindGoals(view)
		})

	case StageInsights:
		return r.insights(ctx)

	default:
		return errors.New("unknown stage " + st.String())
	}
	return nil
}

func (r *run) transactions(ctx context.Context) ([]model.Transaction, error) {
	if r.haveTxns {
		return r.txns, nil
	}
	txns, err := r.d.src.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	r.txns, r.haveTxns = txns, true
	return txns, nil
}

func (r *run) categories(ctx context.Context) ([]model.CategoryTotal, error) {
	if r.haveCats {
		return r.cats, nil
	}
	cats, err := r.d.src.CategorySummary(ctx)
	if err != nil {
		return nil, err
	}
	r.cats, r.haveCats = cats, true
	return cats, nil
}

// insights fetches the advisory card. When the API fails and local insights
// are enabled, the card is computed from the painted transactions and goals.
func (r *run) insights(ctx context.Context) error {
	d := r.d
	in, err := d.src.Insights(ctx)
	local := false
	if err != nil {
		if d.fallback == nil {
			return err
		}
		d.logger.WarnContext(ctx, "insights unavailable, using local rules", log.FieldError, err)
		local = true
	}

	d.apply(r.gen, StageInsights, func() {
		if local {
			goals := make([]model.Goal, len(d.snap.Goals.Rows))
			for i, row := range d.snap.Goals.Rows {
				goals[i] = row.Goal
			}
			in = d.fallback.Compute(d.snap.Transactions, goals)
		}
		alerts := in.Alerts
		if alerts == nil {
			alerts = []model.Alert{}
		}
		d.snap.Insights = in
		d.snap.Headline = in.Headline()
		d.snap.LocalInsights = local
		d.snap.Alerts = alerts
		d.binder.BindInsights(InsightsView{Headline: d.snap.Headline, Local: local})
		d.binder.BindAlerts(alerts)
	})
	return nil
}
