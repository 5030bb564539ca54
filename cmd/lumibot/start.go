package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/lumibot/pkg/log"
	"github.com/sandevgo/lumibot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the LumiBot relay",
	Long:  `Initializes the transcript store, connects the generation backend and serves the HTTP API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		loadDotEnv(ctx)

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting lumibot")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("lumibot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
