package main

import (
	"context"

	"github.com/sandevgo/lumibot/internal/config"
	"github.com/sandevgo/lumibot/internal/providers/llm"
	"github.com/sandevgo/lumibot/internal/service/relay"
	"github.com/sandevgo/lumibot/internal/service/sweeper"
	"github.com/sandevgo/lumibot/internal/storage/sqlite"
	"github.com/sandevgo/lumibot/internal/transport/httpapi"
	"github.com/sandevgo/lumibot/pkg/log"
	"github.com/sandevgo/lumibot/pkg/srv"
)

// NewServices wires the whole relay: config, store, backend provider,
// orchestrator and the HTTP surface. Dependencies are explicit so tests
// can substitute any layer.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	appCfg := config.NewAppConfig(ctx)
	ollamaCfg := config.NewOllamaConfig(ctx)

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open transcript store")
	}

	transcripts := sqlite.NewTranscripts(db, appCfg.SessionTTL)
	generator := llm.NewOllama(ollamaCfg.BaseURL, ollamaCfg.APIKey, ollamaCfg.Model, ollamaCfg.Timeout)
	orchestrator := relay.New(appCfg, transcripts, generator, ollamaCfg.Model)

	handler := httpapi.NewHandler(orchestrator, generator, ollamaCfg.Model)
	server := httpapi.NewServer(appCfg.HTTPAddr, handler)

	return []srv.Service{
		server,
		sweeper.New(transcripts, appCfg.SweepInterval),
		srv.NewCleanup(db.Close),
	}
}
