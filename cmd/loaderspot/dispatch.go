package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/notify"
)

var (
	dispatchVersion string
	dispatchSource  string
	dispatchRepo    string
	dispatchToken   string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Trigger a repository dispatch event",
	Long: `Fire a webhook-event repository dispatch carrying the version and
source, starting the downstream workflow. Repository and token default
to the config file; the token value may reference an environment
variable as ` + "`${VAR}`" + `.`,
	Run: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchVersion, "version", "", "Version to send (required)")
	dispatchCmd.Flags().StringVar(&dispatchSource, "source", "", "Where the version was discovered (required)")
	dispatchCmd.Flags().StringVar(&dispatchRepo, "repo", "", "Target repository as owner/name (default from config)")
	dispatchCmd.Flags().StringVar(&dispatchToken, "token", "", "API token (default from config)")
	dispatchCmd.MarkFlagRequired("version")
	dispatchCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	repo, token := dispatchRepo, dispatchToken
	if repo == "" || token == "" {
		cfgRepo, cfgToken, err := cfg.DispatchTarget()
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		if repo == "" {
			repo = cfgRepo
		}
		if token == "" {
			token = cfgToken
		}
	}

	d := notify.NewDispatcher(newHTTPClient(cfg), repo, token)
	if err := d.Send(context.Background(), dispatchVersion, dispatchSource); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	output.PrintSuccess("dispatched webhook-event to %s", repo)
}
