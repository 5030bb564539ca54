package core

import "context"

// TranscriptRecord is a loaded transcript plus the compare-and-swap token
// guarding the next append. Version 0 means no row exists yet; an expired
// row keeps its stored version so the next append can replace it safely.
type TranscriptRecord struct {
	Turns   Transcript
	Version int64
}

// TranscriptRepository is the TTL-bounded session store. Load never fails
// on a missing key; every successful Append slides the expiry deadline
// forward by the configured TTL.
type TranscriptRepository interface {
	Load(ctx context.Context, sessionID string) (TranscriptRecord, error)

	// Append atomically replaces the stored transcript with the stored
	// effective turns (empty when absent or expired) plus the new turns,
	// and resets the TTL. Returns ErrVersionConflict when version does
	// not match the stored row.
	Append(ctx context.Context, sessionID string, version int64, turns []Turn) error

	// Dump is the read-only accessor exposed to the HTTP layer. Empty,
	// not an error, when nothing usable is stored.
	Dump(ctx context.Context, sessionID string) (Transcript, error)

	// DeleteExpired reclaims rows whose deadline has passed.
	DeleteExpired(ctx context.Context) (int64, error)
}
