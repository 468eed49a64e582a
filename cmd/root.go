package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vnmarket",
	Short: "Vietnamese equity-market data aggregator",
	Long:  "Normalizes VCI and TCBS financial statements into canonical series, benchmarks companies against their ICB peer group, and serves staged dashboard fetches.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
