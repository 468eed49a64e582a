package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/richslow/vnmarket/internal/dashboard"
	"github.com/richslow/vnmarket/internal/model"
)

var (
	dashboardPeriod string
	dashboardJSON   bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <ticker>",
	Short: "Run a staged dashboard fetch and print snapshots as tiers settle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("fetch")
		if err != nil {
			return err
		}

		period := model.PeriodType(dashboardPeriod)
		if !period.Valid() {
			return eris.Errorf("invalid period %q (year or quarter)", dashboardPeriod)
		}

		snapshots := env.Orchestrator.Start(cmd.Context(), strings.ToUpper(args[0]), period)

		var last *dashboard.Snapshot
		for snap := range snapshots {
			last = &snap
			if dashboardJSON {
				continue
			}
			fmt.Fprintf(os.Stdout, "%-22s overview=%v statements=%v prices=%d news=%d benchmark=%v errors=%d\n",
				snap.State,
				snap.Overview != nil,
				snap.Statements != nil,
				len(snap.Prices),
				len(snap.News),
				snap.Benchmark != nil,
				len(snap.Errors),
			)
		}

		if last == nil {
			return eris.New("dashboard: no snapshots emitted")
		}
		if dashboardJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(last)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardPeriod, "period", "year", "reporting period: year or quarter")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "print the final snapshot as JSON instead of tier progress")
	rootCmd.AddCommand(dashboardCmd)
}
