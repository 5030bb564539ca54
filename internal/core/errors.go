package core

import "errors"

var (
	// ErrBackendUnavailable covers connectivity, timeout and non-success
	// responses from the generation backend. Nothing is persisted when it
	// is returned.
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrStorageUnavailable means the transcript store could not be
	// reached or the write failed. Nothing is partially persisted.
	ErrStorageUnavailable = errors.New("transcript storage unavailable")

	// ErrVersionConflict is returned by TranscriptRepository.Append when
	// the compare-and-swap token from the paired Load is stale.
	ErrVersionConflict = errors.New("transcript version conflict")
)
