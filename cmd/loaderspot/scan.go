package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/common/output"
	"github.com/LoaderSpot/LoaderSpot/internal/notify"
	"github.com/LoaderSpot/LoaderSpot/internal/probe"
)

var (
	scanVersion     string
	scanSource      string
	scanLabel       string
	scanOS          []string
	scanArch        []string
	scanStart       int
	scanEnd         int
	scanConnections int
	scanRPS         float64
	scanNotify      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe the installer CDN for a version",
	Long: `Sweep the installer CDN for revision-numbered download URLs of the
given version, per platform, and report the highest revision found for
each. When the first range misses some platforms the range is extended
in steps until they are found or the pass budget runs out.`,
	Run: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanVersion, "version", "", "Version to probe (required)")
	scanCmd.Flags().StringVar(&scanSource, "source", "installer", "Source label for the notification")
	scanCmd.Flags().StringVar(&scanLabel, "label", "", "Detected build label, empty when undetermined")
	scanCmd.Flags().StringSliceVar(&scanOS, "os", []string{"all"}, "Operating systems: win, mac or all")
	scanCmd.Flags().StringSliceVar(&scanArch, "arch", []string{"all"}, "Architectures: x86, x64, arm64, intel or all")
	scanCmd.Flags().IntVar(&scanStart, "start", -1, "First revision to probe (default from config)")
	scanCmd.Flags().IntVar(&scanEnd, "end", -1, "Last revision of the first pass (default from config)")
	scanCmd.Flags().IntVar(&scanConnections, "connections", 0, "Concurrent probe connections (default from config)")
	scanCmd.Flags().Float64Var(&scanRPS, "rps", 0, "Request rate limit, 0 disables (default from config)")
	scanCmd.Flags().BoolVar(&scanNotify, "notify", false, "Send the results to the webhook")
	scanCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	platforms, err := probe.Select(scanOS, scanArch)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	sweep := probe.SweepConfig{
		Start:        cfg.Probe.RangeStart,
		End:          cfg.Probe.RangeEnd,
		LadderPasses: cfg.Probe.LadderPasses,
		LadderStep:   cfg.Probe.LadderStep,
	}
	if scanStart >= 0 {
		sweep.Start = scanStart
	}
	if scanEnd >= 0 {
		sweep.End = scanEnd
	}

	connections := cfg.Probe.Connections
	if scanConnections > 0 {
		connections = scanConnections
	}
	rps := cfg.Probe.RPS
	if scanRPS > 0 {
		rps = scanRPS
	}

	client := newHTTPClient(cfg)
	prober := probe.NewProber(client, connections, rps)

	logger.Info("probing %s on %d platforms, revisions %d-%d", scanVersion, len(platforms), sweep.Start, sweep.End)

	latest, err := prober.Search(ctx, scanVersion, platforms, sweep)
	if err != nil {
		logger.Error("probe: %v", err)
		os.Exit(1)
	}

	if len(latest) == 0 {
		output.PrintWarning("no installers found for %s", scanVersion)
	}
	for _, p := range probe.All() {
		if hit, ok := latest[p]; ok {
			logger.Info("%s %s", output.FormatPlatform(p.Key()), hit.URL)
		}
	}

	if scanNotify {
		webhookURL, err := cfg.WebhookURL()
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		hook := notify.NewWebhook(client, webhookURL)
		payload := notify.NewPayload(probe.Payload(latest, scanVersion, scanSource), scanLabel, scanSource)
		reply, err := hook.Send(ctx, payload)
		if err != nil {
			logger.Error("webhook: %v", err)
			os.Exit(1)
		}
		logger.Info("webhook reply: %s", reply)
	}
}
