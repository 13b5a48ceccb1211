package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/history"
	"github.com/LoaderSpot/LoaderSpot/internal/ledger"
	"github.com/LoaderSpot/LoaderSpot/internal/notify"
)

var (
	checkVersion  string
	checkSource   string
	checkLabel    string
	checkNotify   bool
	checkDispatch bool
	checkForce    bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Reconcile a version against the ledger",
	Long: `Check whether a version is already recorded in the shared ledger.

The outcome is tri-state: a known version is skipped, a confirmed novel
version is reported (and optionally sent to the webhook and dispatch
sinks), and a ledger that cannot be fetched leaves the version
undecided; nothing is sent and the command exits nonzero.`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkVersion, "version", "", "Version to reconcile (required)")
	checkCmd.Flags().StringVar(&checkSource, "source", "", "Where the version was discovered (required)")
	checkCmd.Flags().StringVar(&checkLabel, "label", "", "Detected build label, empty when undetermined")
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "Send novel versions to the webhook")
	checkCmd.Flags().BoolVar(&checkDispatch, "dispatch", false, "Trigger a repository dispatch for novel versions")
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "Reconcile even if already recorded in the local history")
	checkCmd.MarkFlagRequired("version")
	checkCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	ledgerURL, err := cfg.LedgerURL()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	hist, err := history.New(dataDir())
	if err != nil {
		logger.Error("opening history: %v", err)
		os.Exit(1)
	}

	if !checkForce && hist.Has(checkVersion) {
		output.Known.Printf("%s already submitted, skipping\n", checkVersion)
		return
	}

	client := newHTTPClient(cfg)
	rec := ledger.NewReconciler(client, ledgerURL, ledgerFieldMode(cfg))

	known, err := rec.Known(ctx, checkVersion)
	if err != nil {
		// Indeterminate: the ledger could not be consulted, so the
		// version is neither skipped nor reported.
		logger.Error("reconciling %s: %v", checkVersion, err)
		os.Exit(1)
	}

	if known {
		output.Known.Printf("%s is already in the ledger\n", checkVersion)
		return
	}

	output.PrintSuccess("novel version %s (source: %s)", checkVersion, checkSource)

	status := history.StatusSubmitted
	var sinkErr string

	if checkNotify {
		webhookURL, err := cfg.WebhookURL()
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		hook := notify.NewWebhook(client, webhookURL)
		payload := notify.NewPayload(map[string]string{"version": checkVersion}, checkLabel, checkSource)
		reply, err := hook.Send(ctx, payload)
		if err != nil {
			logger.Error("webhook: %v", err)
			status = history.StatusFailed
			sinkErr = err.Error()
		} else {
			logger.Info("webhook reply: %s", reply)
		}

		if cfg.Webhook.FormURL != "" {
			form := notify.NewForm(client, cfg.Webhook.FormURL,
				cfg.Webhook.FormVersionEntry, cfg.Webhook.FormCommentEntry)
			if err := form.Submit(ctx, checkVersion, ""); err != nil {
				// The form is a secondary record; a failure does not
				// fail the run.
				logger.Warn("form submission: %v", err)
			}
		}
	}

	if checkDispatch {
		repo, token, err := cfg.DispatchTarget()
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		d := notify.NewDispatcher(client, repo, token)
		if err := d.Send(ctx, checkVersion, checkSource); err != nil {
			logger.Error("dispatch: %v", err)
			status = history.StatusFailed
			sinkErr = err.Error()
		} else {
			output.PrintSuccess("dispatched webhook-event to %s", repo)
		}
	}

	if checkNotify || checkDispatch {
		if err := hist.Add(history.Submission{
			Version: checkVersion,
			Source:  checkSource,
			Label:   checkLabel,
			Status:  status,
			Error:   sinkErr,
		}); err != nil {
			logger.Warn("recording history: %v", err)
		}
		if status == history.StatusFailed {
			os.Exit(1)
		}
	}
}
