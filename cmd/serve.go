package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/richslow/vnmarket/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp("serve")
		if err != nil {
			return err
		}

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		handlers := server.NewHandlers(env.Statements, env.Company, env.Reporter, env.Orchestrator)
		return server.New(serverCfg, handlers).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
