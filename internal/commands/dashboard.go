package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/events"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/render"
	"github.com/finai-dev/finai/internal/tui"
)

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}
}

func runDashboard(ctx context.Context, opts *rootOptions) error {
	e, err := setup(opts, envOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	binder := &tui.Binder{}
	d := e.dashboard(binder)
	defer d.Close()

	app := tui.New(ctx, d, newSession(e.cfg), e.client, e.cfg.Display.Currency, e.logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	binder.Attach(p.Send)

	if e.bus != nil {
		go followMutations(ctx, e.bus, d, e.logger)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// followMutations reloads d whenever another client announces a change.
func followMutations(ctx context.Context, bus *events.Client, d *dashboard.Dashboard, logger *log.Logger) {
	err := bus.Consume(ctx, func(ctx context.Context, msg *events.Message) error {
		return d.Reload(ctx, msg.Kind)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stopped following mutations", log.FieldError, err)
	}
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the dashboard again whenever another client changes data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			e, err := setup(opts, envOptions{needBus: true})
			if err != nil {
				return err
			}
			defer e.Close()

			d := e.dashboard(render.NewReport(cmd.OutOrStdout(), e.cfg.Display.Currency))
			defer d.Close()
			if err := d.Start(ctx); err != nil {
				e.logger.WarnContext(ctx, "initial refresh failed", log.FieldError, err)
			}

			e.logger.InfoContext(ctx, "watching for mutations", "exchange", e.cfg.Events.Exchange)
			followMutations(ctx, e.bus, d, e.logger)
			return nil
		},
	}
}
