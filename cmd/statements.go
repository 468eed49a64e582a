package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/richslow/vnmarket/internal/model"
)

var (
	statementsPeriod string
	statementsKind   string
)

var statementsCmd = &cobra.Command{
	Use:   "statements <ticker>",
	Short: "Fetch and normalize financial statements for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("fetch")
		if err != nil {
			return err
		}

		ticker := strings.ToUpper(args[0])
		period := model.PeriodType(statementsPeriod)
		if !period.Valid() {
			return eris.Errorf("invalid period %q (year or quarter)", statementsPeriod)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if statementsKind != "" {
			kind := model.StatementKind(statementsKind)
			if !kind.Valid() {
				return eris.Errorf("invalid kind %q (income, balance, cashflow or ratio)", statementsKind)
			}
			series, err := env.Statements.Series(cmd.Context(), ticker, period, kind)
			if err != nil {
				return err
			}
			return enc.Encode(series)
		}

		set, err := env.Statements.StatementSet(cmd.Context(), ticker, period)
		if err != nil {
			return err
		}
		return enc.Encode(set)
	},
}

func init() {
	statementsCmd.Flags().StringVar(&statementsPeriod, "period", "year", "reporting period: year or quarter")
	statementsCmd.Flags().StringVar(&statementsKind, "kind", "", "single statement kind (default all four)")
	rootCmd.AddCommand(statementsCmd)
}
