package dashboard

import (
	"context"

	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/model"
)

// Mutation kinds passed to the Notifier.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindGoalCreated        = "goal.created"
)

// AddTransaction validates and creates t, then runs the full cascade.
// Invalid input is returned as model.ValidationErrors without calling the API;
// an API failure is returned as a *MutationError and nothing is refreshed.
func (d *Dashboard) AddTransaction(ctx context.Context, t model.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := d.src.CreateTransaction(ctx, t); err != nil {
		return d.mutationFailed(ctx, MsgAddTransactionFailed, log.OpCreate, err)
	}
	d.notify(ctx, KindTransactionCreated)
	return d.Refresh(ctx, FullCascade)
}

// EditTransaction replaces the transaction with the given id.
func (d *Dashboard) EditTransaction(ctx context.Context, id string, t model.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := d.src.UpdateTransaction(ctx, id, t); err != nil {
		return d.mutationFailed(ctx, MsgUpdateTransactionFailed, log.OpUpdate, err)
	}
	d.notify(ctx, KindTransactionUpdated)
	return d.Refresh(ctx, FullCascade)
}

// DeleteTransaction removes the transaction with the given id.
func (d *Dashboard) DeleteTransaction(ctx context.Context, id string) error {
	if err := d.src.DeleteTransaction(ctx, id); err != nil {
		return d.mutationFailed(ctx, MsgDeleteTransactionFailed, log.OpDelete, err)
	}
	d.notify(ctx, KindTransactionDeleted)
	return d.Refresh(ctx, FullCascade)
}

// CancelEdit repaints the views an abandoned edit may have disturbed.
func (d *Dashboard) CancelEdit(ctx context.Context) error {
	return d.Refresh(ctx, CancelEditCascade)
}

// AddGoal creates a goal, then refreshes goals and insights.
func (d *Dashboard) AddGoal(ctx context.Context, g model.GoalInput) error {
	g = g.Normalize()
	if err := g.Validate(); err != nil {
		return err
	}
	if err := d.src.CreateGoal(ctx, g); err != nil {
		return d.mutationFailed(ctx, MsgAddGoalFailed, log.OpCreate, err)
	}
	d.notify(ctx, KindGoalCreated)
	return d.Refresh(ctx, GoalCascade)
}

// Reload refreshes after a mutation made elsewhere.
func (d *Dashboard) Reload(ctx context.Context, kind string) error {
	if kind == KindGoalCreated {
		return d.Refresh(ctx, GoalCascade)
	}
	return d.Refresh(ctx, FullCascade)
}

func (d *Dashboard) mutationFailed(ctx context.Context, msg, op string, err error) error {
	d.logger.ErrorContext(ctx, msg,
		log.FieldOperation, op,
		log.FieldError, err)
	return &MutationError{Message: msg, Err: err}
}

func (d *Dashboard) notify(ctx context.Context, kind string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, kind); err != nil {
		d.logger.WarnContext(ctx, "failed to announce mutation",
			log.FieldEventKind, kind,
			log.FieldError, err)
	}
}
