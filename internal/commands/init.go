package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/config"
)

func newInitCommand() *cobra.Command {
	var baseURL string
	var uid string
	var currency string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finai workspace",
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

			cfg := config.Default()
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}
			cfg.API.UID = uid
			if currency != "" {
				cfg.Display.Currency = currency
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := runInit(absDir, cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized finai workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "finance API address (default http://127.0.0.1:5000)")
	cmd.Flags().StringVar(&uid, "uid", "", "user id sent with every request")
	cmd.Flags().StringVar(&currency, "currency", "", "currency symbol (default ₹)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing finai.yaml")

	return cmd
}

func runInit(dir string, cfg *config.Config, force bool) error {
	// Create directory structure.
	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write finai.yaml.
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}
	cfg.Chat.Transcript = filepath.Join("logs", "chat.csv")
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Write .gitignore.
	gitignore := ".env\nlogs/\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
