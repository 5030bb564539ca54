package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/pkg/log"
)

// Transcripts persists one row per session: the JSON-encoded turn list, a
// version counter used as compare-and-swap token, and an absolute expiry
// deadline slid forward on every append.
type Transcripts struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewTranscripts(db *sql.DB, ttl time.Duration) *Transcripts {
	return &Transcripts{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock overrides the time source. Used by tests to probe expiry.
func (t *Transcripts) WithClock(now func() time.Time) *Transcripts {
	t.now = now
	return t
}

func (t *Transcripts) Load(ctx context.Context, sessionID string) (core.TranscriptRecord, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT turns, version, expires_at FROM transcripts WHERE session_id = ?`, sessionID)

	var turnsJSON string
	var version, expiresAt int64
	if err := row.Scan(&turnsJSON, &version, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.TranscriptRecord{}, nil
		}
		return core.TranscriptRecord{}, fmt.Errorf("%w: load %q: %v", core.ErrStorageUnavailable, sessionID, err)
	}

	// An expired row reads as an empty transcript but keeps its version so
	// the next append can replace it without a conflict.
	if expiresAt <= t.now().Unix() {
		return core.TranscriptRecord{Version: version}, nil
	}

	var turns core.Transcript
	if err := json.Unmarshal([]byte(turnsJSON), &turns); err != nil {
		return core.TranscriptRecord{}, fmt.Errorf("%w: decode %q: %v", core.ErrStorageUnavailable, sessionID, err)
	}
	return core.TranscriptRecord{Turns: turns, Version: version}, nil
}

func (t *Transcripts) Append(ctx context.Context, sessionID string, version int64, turns []core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", core.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	var stored core.Transcript
	var storedVersion, expiresAt int64
	var turnsJSON string

	row := tx.QueryRowContext(ctx,
		`SELECT turns, version, expires_at FROM transcripts WHERE session_id = ?`, sessionID)
	switch err := row.Scan(&turnsJSON, &storedVersion, &expiresAt); {
	case errors.Is(err, sql.ErrNoRows):
		storedVersion = 0
	case err != nil:
		return fmt.Errorf("%w: read %q: %v", core.ErrStorageUnavailable, sessionID, err)
	default:
		if expiresAt > t.now().Unix() {
			if err := json.Unmarshal([]byte(turnsJSON), &stored); err != nil {
				return fmt.Errorf("%w: decode %q: %v", core.ErrStorageUnavailable, sessionID, err)
			}
		}
	}

	if storedVersion != version {
		return fmt.Errorf("%w: session %q: have %d, want %d",
			core.ErrVersionConflict, sessionID, storedVersion, version)
	}

	merged, err := json.Marshal(append(stored, turns...))
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", core.ErrStorageUnavailable, sessionID, err)
	}
	deadline := t.now().Add(t.ttl).Unix()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transcripts (session_id, turns, version, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			turns = excluded.turns,
			version = excluded.version,
			expires_at = excluded.expires_at`,
		sessionID, string(merged), storedVersion+1, deadline)
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", core.ErrStorageUnavailable, sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %q: %v", core.ErrStorageUnavailable, sessionID, err)
	}

	log.FromCtx(ctx).Debug().
		Str("session", sessionID).
		Int("appended", len(turns)).
		Msg("transcript persisted")
	return nil
}

func (t *Transcripts) Dump(ctx context.Context, sessionID string) (core.Transcript, error) {
	rec, err := t.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return rec.Turns, nil
}

func (t *Transcripts) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM transcripts WHERE expires_at <= ?`, t.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: delete expired: %v", core.ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
