package main

import (
	"fmt"

	"github.com/sandevgo/lumibot/internal/config"
	"github.com/sandevgo/lumibot/pkg/env"
	"github.com/sandevgo/lumibot/pkg/log"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration in .env form",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		loadDotEnv(ctx)

		for _, cfg := range []any{
			config.NewAppConfig(ctx),
			config.NewOllamaConfig(ctx),
		} {
			out, err := env.MarshalEnv(cfg)
			if err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("failed to marshal config")
				return err
			}
			fmt.Print(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
