package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	created, err := store.Create(ctx, &Session{APIName: "aspirin", Kind: "buyers"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", got.APIName)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore(0)
	_, err := store.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	created, err := store.Create(ctx, &Session{APIName: "aspirin"})
	require.NoError(t, err)

	created.Status = StatusDone
	created.Result = map[string]int{"inserted": 3}
	require.NoError(t, store.Update(ctx, created))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	created, _ := store.Create(ctx, &Session{APIName: "aspirin"})

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	got.APIName = "mutated"

	again, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", again.APIName)
}

func TestMemoryStoreAppendHistory(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	created, _ := store.Create(ctx, &Session{APIName: "aspirin"})

	require.NoError(t, store.AppendHistory(ctx, created.ID,
		ChatEntry{Role: "user", Content: "find buyers", At: time.Now()}))
	require.NoError(t, store.AppendHistory(ctx, created.ID,
		ChatEntry{Role: "assistant", Content: "| Company |", At: time.Now()}))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, "find buyers", got.History[0].Content)
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	created, _ := store.Create(ctx, &Session{})

	require.NoError(t, store.Delete(ctx, created.ID))
	require.NoError(t, store.Delete(ctx, created.ID))
	_, err := store.Get(ctx, created.ID)
	assert.Error(t, err)
}

func TestMemoryStoreTTLEvictsFinishedSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	finished, _ := store.Create(ctx, &Session{Status: StatusDone})
	running, _ := store.Create(ctx, &Session{Status: StatusRunning})

	// Advance beyond the TTL: the finished session is gone, the running one
	// stays addressable.
	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err := store.Get(ctx, finished.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))

	_, err = store.Get(ctx, running.ID)
	assert.NoError(t, err)
}
