// Package main provides the outreach_agent CLI: discover recruiter contacts,
// draft internship emails and send them at a safe pace.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/companies"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/logging"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Internship cold-outreach automation",
	Long: "outreach_agent finds HR and recruiting contacts at target companies, drafts personalized " +
		"internship emails with Gemini and sends them through Gmail or SMTP with rate limiting.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML or JSON config file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and detailed output")
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level := loaded.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logging.Setup(level, loaded.Environment)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	cfg = loaded
	logger = l
	cmd.SetContext(logging.WithLogger(cmd.Context(), l))
	return nil
}

// loadDirectory returns the configured target list, or the built-in one.
func loadDirectory() (*companies.Directory, error) {
	if cfg.Targets.CompaniesFile == "" {
		return companies.Default(), nil
	}
	return companies.Load(cfg.Targets.CompaniesFile)
}

// outputTarget splits an --out path into directory and file name. An empty
// path selects the data directory and the store's default name.
func outputTarget(out string) (string, string) {
	if out == "" {
		return cfg.DataDir, ""
	}
	return filepath.Dir(out), filepath.Base(out)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
