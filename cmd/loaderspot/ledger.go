package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/ledger"
)

var (
	ledgerAddKey       string
	ledgerAddVersion   string
	ledgerAddEntry     string
	ledgerAddBuildType string
	ledgerSortOutput   string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and update a local ledger file",
	Long:  `Commands for working with a local copy of the versions ledger: listing entries, re-sorting keys and merging new entries.`,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "List ledger entries in descending order",
	Long:  `List the ledger keys and their versions in descending numeric-aware order. Without a file argument the configured remote ledger is fetched.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runLedgerShow,
}

var ledgerSortCmd = &cobra.Command{
	Use:   "sort <file>",
	Short: "Rewrite a ledger file with sorted keys",
	Args:  cobra.ExactArgs(1),
	Run:   runLedgerSort,
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Merge a version entry into a ledger file",
	Long: `Insert or overwrite one entry and rewrite the file with keys in
descending order. The entry defaults to the shape matching the
configured field mode; --entry overrides it with raw JSON. A build
label is spliced in as a leading buildType field unless it is empty or
"false".`,
	Args: cobra.ExactArgs(1),
	Run:  runLedgerAdd,
}

func init() {
	ledgerSortCmd.Flags().StringVarP(&ledgerSortOutput, "output", "o", "", "Write to this file instead of in place")

	ledgerAddCmd.Flags().StringVar(&ledgerAddKey, "key", "", "Channel key (defaults to the version)")
	ledgerAddCmd.Flags().StringVar(&ledgerAddVersion, "version", "", "Version to record (required)")
	ledgerAddCmd.Flags().StringVar(&ledgerAddEntry, "entry", "", "Raw JSON entry overriding the default shape")
	ledgerAddCmd.Flags().StringVar(&ledgerAddBuildType, "build-type", "", "Build label, empty or false leaves the entry unchanged")
	ledgerAddCmd.MarkFlagRequired("version")

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerSortCmd)
	ledgerCmd.AddCommand(ledgerAddCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	mode := ledgerFieldMode(cfg)

	var snapshot *ledger.Ledger
	var err error
	if len(args) == 1 {
		snapshot, err = ledger.Load(args[0], mode)
	} else {
		var url string
		url, err = cfg.LedgerURL()
		if err == nil {
			rec := ledger.NewReconciler(newHTTPClient(cfg), url, mode)
			snapshot, err = rec.Snapshot(context.Background())
		}
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	for _, key := range snapshot.Keys() {
		if v, ok := snapshot.Version(key); ok {
			fmt.Printf("%s  %s\n", output.FormatVersion(key), v)
		} else {
			fmt.Printf("%s  %s\n", output.FormatVersion(key), output.Dim.Sprint("-"))
		}
	}
}

func runLedgerSort(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	l, err := ledger.Load(args[0], ledgerFieldMode(cfg))
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	target := args[0]
	if ledgerSortOutput != "" {
		target = ledgerSortOutput
	}
	if err := l.Save(target); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	output.PrintSuccess("sorted %d entries into %s", l.Len(), target)
}

func runLedgerAdd(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	mode := ledgerFieldMode(cfg)

	l, err := ledger.Load(args[0], mode)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("%v", err)
			os.Exit(1)
		}
		// A missing file starts an empty ledger.
		l, _ = ledger.Parse([]byte("{}"), mode)
	}

	key := ledgerAddKey
	if key == "" {
		key = ledgerAddVersion
	}

	entry := json.RawMessage(ledgerAddEntry)
	if ledgerAddEntry == "" {
		if mode == ledger.FieldDirect {
			entry, err = json.Marshal(ledgerAddVersion)
		} else {
			entry, err = json.Marshal(map[string]string{"fullversion": ledgerAddVersion})
		}
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
	}

	if err := l.SetWithBuildType(key, entry, ledgerAddBuildType); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if err := l.Save(args[0]); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	output.PrintSuccess("recorded %s under %s", ledgerAddVersion, key)
}
