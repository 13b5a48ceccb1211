package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/ledger"
	"github.com/LoaderSpot/LoaderSpot/internal/store"
)

var (
	storeURL   string
	storeXPath string
	storeCheck bool
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Check an app-store listing for the published version",
	Long: `Fetch a store product listing, locate the version node and extract the
release version from its text. With --check the extracted version is
also reconciled against the ledger.`,
	Run: runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeURL, "url", "", "Listing URL (required)")
	storeCmd.Flags().StringVar(&storeXPath, "xpath", "", "XPath of the version node (default built in)")
	storeCmd.Flags().BoolVar(&storeCheck, "check", false, "Reconcile the extracted version against the ledger")
	storeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()
	client := newHTTPClient(cfg)

	checker := store.NewChecker(client, storeURL, storeXPath)
	ext, err := checker.Check(ctx)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if !ext.Found {
		output.PrintWarning("listing carries no recognizable version")
		return
	}
	output.PrintSuccess("store listing version: %s", ext.Version)

	if !storeCheck {
		return
	}

	ledgerURL, err := cfg.LedgerURL()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	rec := ledger.NewReconciler(client, ledgerURL, ledgerFieldMode(cfg))
	known, err := rec.Known(ctx, ext.Version)
	if err != nil {
		logger.Error("reconciling %s: %v", ext.Version, err)
		os.Exit(1)
	}

	if known {
		output.Known.Printf("%s is already in the ledger\n", ext.Version)
	} else {
		output.PrintInfo("%s is not in the ledger yet", ext.Version)
	}
}
