package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/model"
)

func newGoalsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List and add monthly spending limits",
	}

	cmd.AddCommand(newGoalsListCommand(opts), newGoalsAddCommand(opts))

	return cmd
}

func newGoalsListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageGoals}, secGoals)
		},
	}
}

func newGoalsAddCommand(opts *rootOptions) *cobra.Command {
	var name, cat, month, limit string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a monthly limit and refresh goals and insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(limit)
			if err != nil {
				return err
			}
			g := model.GoalInput{Name: name, Category: cat, Month: month, LimitAmount: amount}.Normalize()
			return runMutation(cmd, opts, g.Category, "Goal added.", func(ctx context.Context, d *dashboard.Dashboard) error {
				return d.AddGoal(ctx, g)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "goal name (required)")
	cmd.Flags().StringVar(&cat, "category", "", "category to limit; empty limits all spending")
	cmd.Flags().StringVar(&month, "month", time.Now().Format(model.MonthLayout), "month (YYYY-MM)")
	cmd.Flags().StringVar(&limit, "limit", "", "monthly limit (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}
