package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <ticker>",
	Short: "Benchmark a ticker's ratios against its ICB industry peers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("fetch")
		if err != nil {
			return err
		}

		report, err := env.Reporter.Report(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}
