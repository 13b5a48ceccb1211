package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/config"
	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/ledger"
)

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "loaderspot",
	Short: "Spotify release watcher",
	Long:  `Watches release channels for new Spotify client versions, reconciles them against the shared version ledger and reports novel releases.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// loadConfig loads the config file or exits.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	return cfg
}

// newHTTPClient builds the retryable client from the config knobs.
func newHTTPClient(cfg *config.Config) *httpx.Client {
	return httpx.NewWithConfig(httpx.RetryConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:   time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond,
		Timeout:    time.Duration(cfg.Retry.TimeoutSecs) * time.Second,
	})
}

// ledgerFieldMode parses the configured field mode or exits.
func ledgerFieldMode(cfg *config.Config) ledger.FieldMode {
	mode, err := ledger.ParseFieldMode(cfg.Ledger.Field)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	return mode
}

// dataDir returns the directory holding the submission history, next
// to the config file.
func dataDir() string {
	path, err := config.DefaultConfigPath()
	if err != nil {
		logger.Error("resolving config directory: %v", err)
		os.Exit(1)
	}
	return filepath.Dir(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
