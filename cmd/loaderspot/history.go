package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the local submission history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded submissions, newest first",
	Run:   runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recorded submissions",
	Run:   runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) {
	hist, err := history.New(dataDir())
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	submissions := hist.List()
	if len(submissions) == 0 {
		output.PrintInfo("no submissions recorded")
		return
	}

	for _, s := range submissions {
		status := output.Success.Sprint(string(s.Status))
		if s.Status == history.StatusFailed {
			status = output.Error.Sprint(string(s.Status))
		}
		fmt.Printf("%s  %s  %s  %s\n",
			s.SubmittedAt.Format("2006-01-02 15:04"),
			output.FormatVersion(s.Version),
			s.Source,
			status)
		if s.Error != "" {
			fmt.Printf("  %s\n", output.Dim.Sprint(s.Error))
		}
	}
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	hist, err := history.New(dataDir())
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	n := hist.Len()
	if err := hist.Clear(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	output.PrintSuccess("cleared %d submissions", n)
}
