package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/category"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/importer"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/model"
	"github.com/finai-dev/finai/internal/render"
)

func newTxCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List and change transactions",
	}

	cmd.AddCommand(
		newTxListCommand(opts),
		newTxAddCommand(opts),
		newTxEditCommand(opts),
		newTxDeleteCommand(opts),
		newTxImportCommand(opts),
	)

	return cmd
}

func newTxListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCascade(cmd.Context(), opts, cmd.OutOrStdout(),
				dashboard.Cascade{dashboard.StageTransactions}, secTransactions)
		},
	}
}

// txFlags are the fields of a transaction form.
type txFlags struct {
	date        string
	kind        string
	category    string
	amount      string
	description string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", time.Now().Format(model.DateLayout), "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.kind, "type", string(model.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, at most 2 decimal places (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "free-form note")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *txFlags) transaction() (model.Transaction, error) {
	amount, err := model.ParseAmount(f.amount)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:        f.date,
		Type:        model.TransactionType(f.kind),
		Category:    f.category,
		Description: f.description,
		Amount:      amount,
	}, nil
}

func newTxAddCommand(opts *rootOptions) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction and refresh the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := f.transaction()
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, t.Category, "Transaction added.", func(ctx context.Context, d *dashboard.Dashboard) error {
				return d.AddTransaction(ctx, t)
			})
		},
	}

	f.register(cmd)

	return cmd
}

func newTxEditCommand(opts *rootOptions) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a transaction and refresh the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := f.transaction()
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, t.Category, "Transaction updated.", func(ctx context.Context, d *dashboard.Dashboard) error {
				return d.EditTransaction(ctx, args[0], t)
			})
		},
	}

	f.register(cmd)

	return cmd
}

func newTxDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and refresh the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, opts, "", "Transaction deleted.", func(ctx context.Context, d *dashboard.Dashboard) error {
				return d.DeleteTransaction(ctx, args[0])
			})
		},
	}
}

// runMutation applies fn through a Dashboard that prints every refreshed
// view. A non-empty cat is checked against known categories first.
func runMutation(cmd *cobra.Command, opts *rootOptions, cat, done string, fn func(context.Context, *dashboard.Dashboard) error) error {
	ctx := cmd.Context()
	e, err := setup(opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if cat != "" && cat != model.CategoryAll {
		hintCategory(ctx, e, cmd.ErrOrStderr(), cat)
	}

	out := cmd.OutOrStdout()
	d := e.dashboard(render.NewReport(out, e.cfg.Display.Currency))
	defer d.Close()

	err = fn(ctx, d)
	// A failed refresh still means the change was saved.
	var stageErr *dashboard.StageError
	if err == nil || errors.As(err, &stageErr) {
		fmt.Fprintln(out, done)
	}
	return err
}

// hintCategory warns about a category that looks like a typo of a known one.
func hintCategory(ctx context.Context, e *env, w io.Writer, cat string) {
	txns, err := e.client.Transactions(ctx)
	if err != nil {
		e.logger.Debug("skipping category hint", log.FieldError, err)
		return
	}
	goals, err := e.client.Goals(ctx)
	if err != nil {
		e.logger.Debug("skipping category hint", log.FieldError, err)
		return
	}
	if s, ok := category.Suggest(cat, category.Known(txns, goals)); ok {
		fmt.Fprintf(w, "note: %q is a new category, did you mean %q?\n", cat, s)
	}
}

func newTxImportCommand(opts *rootOptions) *cobra.Command {
	var format string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [directory]",
		Short: "Import bank statement CSVs from <directory>/import",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runImport(cmd, opts, absDir, format, dryRun)
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "statement format: chase or generic")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be imported without posting")

	return cmd
}

func runImport(cmd *cobra.Command, opts *rootOptions, dir, format string, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown statement format %q", format)
	}

	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No CSV files in %s\n", filepath.Join(dir, "import"))
		return nil
	}

	e, err := setup(opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()
	logger := e.logger.WithComponent(log.ComponentImport)

	existing, err := e.client.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}
	goals, err := e.client.Goals(ctx)
	if err != nil {
		return fmt.Errorf("fetching goals: %w", err)
	}
	known := category.Known(existing, goals)

	created := 0
	for _, file := range files {
		txns, err := parseFile(file.Path, parser)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file.Name, err)
		}
		importer.Categorize(txns, known)
		keep, skipped := importer.Dedupe(txns, existing)

		added, invalid := 0, 0
		for _, t := range keep {
			// Rows go through the same checks as tx add.
			if err := t.Validate(); err != nil {
				invalid++
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s row dated %s: %v\n", file.Name, t.Date, err)
				continue
			}
			existing = append(existing, t)
			added++
			if dryRun {
				fmt.Fprintf(out, "%s  %-7s  %-14s  %s  %s\n", t.Date, t.Type, t.Category, t.Amount.StringFixed(2), t.Description)
				continue
			}
			if err := e.client.CreateTransaction(ctx, t); err != nil {
				return fmt.Errorf("posting %s row dated %s: %w", file.Name, t.Date, err)
			}
			created++
		}
		summary := fmt.Sprintf("%s: %d new, %d duplicates skipped", file.Name, added, skipped)
		if invalid > 0 {
			summary += fmt.Sprintf(", %d invalid rows skipped", invalid)
		}
		fmt.Fprintln(out, summary)
		logger.InfoContext(ctx, "imported statement",
			"file", file.Name,
			log.FieldCount, added)

		if !dryRun {
			if err := importer.MarkProcessed(dir, file.Name); err != nil {
				return err
			}
		}
	}

	if created == 0 {
		return nil
	}
	if e.bus != nil {
		if err := e.bus.Notify(ctx, dashboard.KindTransactionCreated); err != nil {
			logger.WarnContext(ctx, "failed to announce import", log.FieldError, err)
		}
	}
	d := e.dashboard(render.NewReport(out, e.cfg.Display.Currency))
	defer d.Close()
	return d.Refresh(ctx, dashboard.FullCascade)
}

func parseFile(path string, p importer.Parser) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f)
}
