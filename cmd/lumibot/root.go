package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sandevgo/lumibot/internal/config"
	"github.com/sandevgo/lumibot/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "lumibot",
	Short: "LumiBot — conversational home-light relay",
	Long:  `LumiBot relays chat messages to a streaming generation backend and extracts light-control commands from its replies.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}

func loadDotEnv(ctx context.Context) {
	if err := godotenv.Load(); err != nil {
		log.FromCtx(ctx).Debug().Msg("no .env file loaded")
	}
}
