package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/models"
	"coinflip-ladder-backend/internal/services"
)

func TestLadderStoreCreateGetDelete(t *testing.T) {
	store := services.NewLadderStore(time.Minute)

	session, err := store.Create(10, 2)
	require.NoError(t, err)
	assert.Len(t, session.ID, 32)
	assert.Equal(t, models.MaxMultiplier, session.MaxMultiplier)
	assert.WithinDuration(t, time.Now(), session.CreatedAt, time.Second)

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, session, got)

	store.Delete(session.ID)
	store.Delete(session.ID)

	_, ok = store.Get(session.ID)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestLadderStoreAdvanceIsCompareAndSet(t *testing.T) {
	store := services.NewLadderStore(time.Minute)
	session, err := store.Create(10, 2)
	require.NoError(t, err)

	updated, err := store.Advance(session.ID, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.CurrentMultiplier)

	_, err = store.Advance(session.ID, 2, 3)
	assert.ErrorIs(t, err, services.ErrSessionConflict)

	// The multiplier never moves backwards.
	updated, err = store.Advance(session.ID, 3, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.CurrentMultiplier)

	_, err = store.Advance("missing", 2, 3)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
}

func TestLadderStoreRemoveAndTake(t *testing.T) {
	store := services.NewLadderStore(time.Minute)
	session, err := store.Create(10, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Remove(session.ID, 5), services.ErrSessionConflict)
	require.NoError(t, store.Remove(session.ID, 4))
	assert.ErrorIs(t, store.Remove(session.ID, 4), services.ErrInvalidSession)

	session, err = store.Create(10, 4)
	require.NoError(t, err)

	taken, ok := store.Take(session.ID)
	require.True(t, ok)
	assert.Equal(t, 4.0, taken.CurrentMultiplier)

	_, ok = store.Take(session.ID)
	assert.False(t, ok)
}

func TestLadderStoreTakeOnlyOnceUnderContention(t *testing.T) {
	store := services.NewLadderStore(time.Minute)
	session, err := store.Create(10, 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take(session.ID); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestLadderStoreExpiry(t *testing.T) {
	store := services.NewLadderStore(40 * time.Millisecond)

	expired := make(chan models.LadderSession, 1)
	store.OnExpire(func(s models.LadderSession) { expired <- s })

	session, err := store.Create(1, 1.5)
	require.NoError(t, err)

	_, ok := store.Get(session.ID)
	require.True(t, ok)

	select {
	case s := <-expired:
		assert.Equal(t, session.ID, s.ID)
	case <-time.After(time.Second):
		t.Fatal("session was not expired by its timer")
	}

	_, ok = store.Get(session.ID)
	assert.False(t, ok)
	_, err = store.Advance(session.ID, 1.5, 2)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
	assert.Zero(t, store.Len())
}

func TestLadderStoreDeletedSessionDoesNotFireExpiry(t *testing.T) {
	store := services.NewLadderStore(30 * time.Millisecond)

	fired := make(chan struct{}, 1)
	store.OnExpire(func(models.LadderSession) { fired <- struct{}{} })

	session, err := store.Create(1, 1.5)
	require.NoError(t, err)
	store.Delete(session.ID)

	select {
	case <-fired:
		t.Fatal("expiry fired for a deleted session")
	case <-time.After(100 * time.Millisecond):
	}
}
