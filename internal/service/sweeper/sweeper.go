// Package sweeper reclaims expired session rows in the background. Expired
// transcripts are already invisible to reads; the sweeper only frees the
// space they occupy.
package sweeper

import (
	"context"
	"time"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/pkg/log"
)

type Sweeper struct {
	repo     core.TranscriptRepository
	interval time.Duration
}

func New(repo core.TranscriptRepository, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, interval: interval}
}

func (s *Sweeper) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.repo.DeleteExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to sweep expired sessions")
				continue
			}
			if n > 0 {
				logger.Info().Int64("count", n).Msg("swept expired sessions")
			}
		}
	}
}

func (s *Sweeper) Shutdown(ctx context.Context) error {
	return nil
}
