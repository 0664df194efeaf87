package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/finai-dev/finai/internal/api"
	"github.com/finai-dev/finai/internal/config"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/events"
	"github.com/finai-dev/finai/internal/insights"
	"github.com/finai-dev/finai/internal/log"
)

// env is what a subcommand needs to talk to the API.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	client  *api.Client
	bus     *events.Client // nil when events are disabled or unreachable
	closers []io.Closer
}

type envOptions struct {
	// quiet sends logs nowhere unless log.file is set. The TUI owns the terminal.
	quiet bool
	// needBus fails setup when the events broker cannot be reached.
	needBus bool
}

func setup(opts *rootOptions, eo envOptions) (*env, error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	logger, closer, err := newLogger(cfg.Log, opts.verbose, eo.quiet)
	if err != nil {
		return nil, err
	}
	e.logger = logger
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	e.client, err = api.NewClient(cfg.API.BaseURL, cfg.API.UID,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	if eo.needBus && cfg.Events.AMQPURL == "" {
		e.Close()
		return nil, fmt.Errorf("events.amqp_url is not configured")
	}
	if cfg.Events.AMQPURL != "" {
		bus, err := events.NewClient(cfg.Events.AMQPURL, cfg.Events.Exchange,
			events.WithQueue(cfg.Events.Queue),
			events.WithLogger(logger))
		switch {
		case err == nil:
			e.bus = bus
			e.closers = append(e.closers, bus)
		case eo.needBus:
			e.Close()
			return nil, fmt.Errorf("connecting to events broker: %w", err)
		default:
			logger.Warn("events disabled, broker unreachable", log.FieldError, err)
		}
	}
	return e, nil
}

func newLogger(cfg config.LogConfig, verbose, quiet bool) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	lc := log.Config{Level: level, Component: log.ComponentApp, Format: cfg.Format, Output: os.Stderr}
	if cfg.File == "" {
		if quiet {
			return log.Discard(), nil, nil
		}
		return log.New(lc), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	lc.Output = f
	return log.New(lc), f, nil
}

// dashboard builds a Dashboard over the API that paints into b.
func (e *env) dashboard(b dashboard.Binder) *dashboard.Dashboard {
	opts := []dashboard.Option{
		dashboard.WithBinder(b),
		dashboard.WithParallel(e.cfg.Refresh.Parallel),
		dashboard.WithLocalInsights(insights.Engine{Currency: e.cfg.Display.Currency}),
		dashboard.WithLogger(e.logger),
	}
	if len(e.cfg.Display.Palette) > 0 {
		opts = append(opts, dashboard.WithPalette(e.cfg.Display.Palette))
	}
	if e.bus != nil {
		opts = append(opts, dashboard.WithNotifier(e.bus))
	}
	return dashboard.New(e.client, opts...)
}

// Close releases the broker connection and the log file.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
	e.closers = nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
