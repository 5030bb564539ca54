// Package relay is the session orchestrator: it composes the transcript
// store, prompt assembler, generation backend and response interpreter
// into the one public generate operation.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/lumibot/internal/config"
	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/internal/providers/llm"
	"github.com/sandevgo/lumibot/internal/service/interpret"
	"github.com/sandevgo/lumibot/internal/service/prompt"
	"github.com/sandevgo/lumibot/pkg/log"
)

// casRetries bounds how often a generate call re-reads the transcript when
// another process won the compare-and-swap. In-process callers are already
// serialized by the session lock.
const casRetries = 3

type Relay struct {
	cfg          *config.AppConfig
	repo         core.TranscriptRepository
	gen          core.Generator
	defaultModel string
	locks        *sessionLocks
}

func New(cfg *config.AppConfig, repo core.TranscriptRepository, gen core.Generator, defaultModel string) *Relay {
	return &Relay{
		cfg:          cfg,
		repo:         repo,
		gen:          gen,
		defaultModel: defaultModel,
		locks:        newSessionLocks(),
	}
}

// Generate runs one request cycle: load transcript, assemble prompt, stream
// the backend reply, interpret it, then persist the new turns as one unit.
// Backend and storage failures surface without persisting anything; every
// text-shape anomaly degrades silently to a best-effort reply.
func (r *Relay) Generate(ctx context.Context, sessionID, input, model string) (core.Reply, error) {
	logger := log.FromCtx(ctx)

	rec, err := r.repo.Load(ctx, sessionID)
	if err != nil {
		return core.Reply{}, err
	}

	// The system turn exists exactly once, synthesized only when the
	// transcript was empty at the start of this request.
	pending := make([]core.Turn, 0, 3)
	if len(rec.Turns) == 0 {
		pending = append(pending, core.NewTurn(core.AuthorSystem, prompt.SystemInstruction))
	}
	pending = append(pending, core.NewTurn(core.AuthorUser, input))

	history := make(core.Transcript, 0, len(rec.Turns)+1)
	history = append(history, rec.Turns...)
	if len(rec.Turns) == 0 {
		history = append(history, pending[0])
	}
	promptText := prompt.Assemble(history, input)
	logger.Debug().
		Str("session", sessionID).
		Int("turns", len(history)).
		Int("tokens_estimate", prompt.EstimateTokens(promptText)).
		Msg("prompt assembled")

	stream, err := r.gen.Generate(ctx, model, promptText)
	if err != nil {
		return core.Reply{}, err
	}
	defer stream.Close()

	fullText, err := llm.Aggregate(ctx, stream, r.cfg.StrictStream)
	if err != nil {
		return core.Reply{}, err
	}

	res := interpret.Interpret(fullText)
	logger.Debug().Stringer("stage", res.Stage).Str("session", sessionID).Msg("reply interpreted")

	if r.cfg.StrictCommand {
		if err := interpret.Validate(res.Command); err != nil {
			logger.Warn().Err(err).Str("session", sessionID).Msg("dropping invalid command")
			res.Command = core.Command{}
		}
	}

	// The bot turn records the raw aggregated text, not the interpreted
	// message, so the backend sees its own full output on the next cycle.
	pending = append(pending, core.NewTurn(core.AuthorBot, fullText))

	if err := r.persist(ctx, sessionID, pending); err != nil {
		return core.Reply{}, err
	}

	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = r.defaultModel
	}
	return core.Reply{
		Model:   resolvedModel,
		Message: res.Message,
		Command: res.Command,
	}, nil
}

// persist holds the session lock only around the final read-modify-write;
// backend streaming never blocks other requests for the same session.
func (r *Relay) persist(ctx context.Context, sessionID string, pending []core.Turn) error {
	unlock := r.locks.Lock(sessionID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		cur, err := r.repo.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		toAppend := pending
		if len(cur.Turns) > 0 && pending[0].Author == core.AuthorSystem {
			// A concurrent request already seeded the session; its
			// system turn stays, ours is discarded.
			toAppend = pending[1:]
		}

		err = r.repo.Append(ctx, sessionID, cur.Version, toAppend)
		if err == nil {
			return nil
		}
		if !errors.Is(err, core.ErrVersionConflict) || attempt >= casRetries {
			return err
		}
	}
}

// DumpSession exposes the stored transcript for external inspection. An
// absent or expired session reads as empty, never as an error.
func (r *Relay) DumpSession(ctx context.Context, sessionID string) (core.Transcript, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return r.repo.Dump(ctx, sessionID)
}
