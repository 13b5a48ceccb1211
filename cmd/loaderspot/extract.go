package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
	"github.com/LoaderSpot/LoaderSpot/internal/version"
)

var extractGrammar string

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a version string from text",
	Long: `Scan a file (or stdin) line by line and report the first version match.

The build grammar matches build log banners like
"Release Build ... cef_1.2.3+gabc1234+chromium-100.0.1.2" and also
captures the build label. The release grammar matches bare release
tokens like "1.2.26.1187.g36b715a1".

A clean run with no match is not an error; the result reports found=false.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractGrammar, "grammar", "g", "build", "Grammar to apply: build or release")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	var grammar version.Grammar
	switch extractGrammar {
	case "build":
		grammar = version.GrammarBuildLabel
	case "release":
		grammar = version.GrammarRelease
	default:
		logger.Error("unknown grammar %q: use build or release", extractGrammar)
		os.Exit(1)
	}

	in := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	ext := version.ExtractReader(in, grammar)

	result := struct {
		Found   bool   `json:"found"`
		Version string `json:"version,omitempty"`
		Label   string `json:"label,omitempty"`
	}{
		Found:   ext.Found,
		Version: ext.Version,
		Label:   ext.Label,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
