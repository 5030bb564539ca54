package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, ttl time.Duration) *Transcripts {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTranscripts(db, ttl)
}

func turn(author core.Author, content string) core.Turn {
	return core.Turn{Timestamp: "2026-08-30T10:00:00Z", Author: author, Content: content}
}

func TestLoadMissingSessionIsEmpty(t *testing.T) {
	repo := newTestRepo(t, time.Hour)

	rec, err := repo.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, rec.Turns)
	assert.Zero(t, rec.Version)
}

func TestAppendAndLoadKeepsOrder(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "s1", 0, []core.Turn{
		turn(core.AuthorSystem, "instructions"),
		turn(core.AuthorUser, "allume"),
		turn(core.AuthorBot, "fait"),
	}))

	rec, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rec.Turns, 3)
	assert.Equal(t, core.AuthorSystem, rec.Turns[0].Author)
	assert.Equal(t, core.AuthorUser, rec.Turns[1].Author)
	assert.Equal(t, core.AuthorBot, rec.Turns[2].Author)
	assert.EqualValues(t, 1, rec.Version)

	require.NoError(t, repo.Append(ctx, "s1", rec.Version, []core.Turn{
		turn(core.AuthorUser, "eteins"),
		turn(core.AuthorBot, "fait aussi"),
	}))

	rec, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rec.Turns, 5)
	assert.Equal(t, "eteins", rec.Turns[3].Content)
	assert.EqualValues(t, 2, rec.Version)
}

func TestAppendStaleVersionConflicts(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "s1", 0, []core.Turn{turn(core.AuthorUser, "a")}))

	err := repo.Append(ctx, "s1", 0, []core.Turn{turn(core.AuthorUser, "b")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrVersionConflict)

	// The conflicting write must not have touched the row.
	rec, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rec.Turns, 1)
	assert.Equal(t, "a", rec.Turns[0].Content)
}

func TestSlidingExpiry(t *testing.T) {
	repo := newTestRepo(t, 3600*time.Second)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := base
	repo.WithClock(func() time.Time { return now })

	require.NoError(t, repo.Append(ctx, "s1", 0, []core.Turn{turn(core.AuthorUser, "salut")}))

	now = base.Add(3599 * time.Second)
	rec, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, rec.Turns, 1, "record must survive until the deadline")

	now = base.Add(3601 * time.Second)
	rec, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, rec.Turns, "record must be gone past the deadline")
}

func TestAppendSlidesDeadlineForward(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := base
	repo.WithClock(func() time.Time { return now })

	require.NoError(t, repo.Append(ctx, "s1", 0, []core.Turn{turn(core.AuthorUser, "un")}))

	// Half the TTL later, a write resets the deadline.
	now = base.Add(30 * time.Minute)
	rec, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, "s1", rec.Version, []core.Turn{turn(core.AuthorBot, "deux")}))

	// 90 minutes after the first write the record is still alive.
	now = base.Add(90 * time.Minute)
	rec, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, rec.Turns, 2)
}

func TestAppendAfterExpiryReplacesTranscript(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := base
	repo.WithClock(func() time.Time { return now })

	require.NoError(t, repo.Append(ctx, "s1", 0, []core.Turn{turn(core.AuthorUser, "vieux")}))

	now = base.Add(2 * time.Hour)
	rec, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, rec.Turns)
	assert.EqualValues(t, 1, rec.Version, "expired rows keep their version for the CAS")

	require.NoError(t, repo.Append(ctx, "s1", rec.Version, []core.Turn{turn(core.AuthorUser, "neuf")}))

	rec, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rec.Turns, 1)
	assert.Equal(t, "neuf", rec.Turns[0].Content, "expired turns must not leak into the new transcript")
}

func TestDumpMissingSessionIsEmptyNotError(t *testing.T) {
	repo := newTestRepo(t, time.Hour)

	turns, err := repo.Dump(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestDeleteExpired(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := base
	repo.WithClock(func() time.Time { return now })

	require.NoError(t, repo.Append(ctx, "old", 0, []core.Turn{turn(core.AuthorUser, "a")}))

	now = base.Add(50 * time.Minute)
	require.NoError(t, repo.Append(ctx, "fresh", 0, []core.Turn{turn(core.AuthorUser, "b")}))

	now = base.Add(70 * time.Minute)
	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec, err := repo.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, rec.Turns, 1)
}
