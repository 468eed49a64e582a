package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/export"
	"github.com/richslow/vnmarket/internal/model"
)

var (
	exportPeriod string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <ticker>",
	Short: "Export normalized statements to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("export")
		if err != nil {
			return err
		}

		ticker := strings.ToUpper(args[0])
		period := model.PeriodType(exportPeriod)
		if !period.Valid() {
			return eris.Errorf("invalid period %q (year or quarter)", exportPeriod)
		}

		set, err := env.Statements.StatementSet(cmd.Context(), ticker, period)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("%s_%s.xlsx", ticker, period)
		}
		if err := export.Save(out, set, env.Tables); err != nil {
			return err
		}

		zap.L().Info("export: workbook written",
			zap.String("ticker", ticker),
			zap.String("path", out),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPeriod, "period", "year", "reporting period: year or quarter")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <ticker>_<period>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
