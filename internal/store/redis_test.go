package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 16
	const iterations = 120

	var wg sync.WaitGroup

	for worker := 0; worker < workers; worker++ {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < iterations; i++ {
				sessionID := fmt.Sprintf("session-%d-%d", worker, i)

				session := &SessionData{
					ID:        sessionID,
					GridSize:  4,
					FlipCount: i,
					UpdatedAt: time.Now(),
				}

				if err := store.SaveSession(ctx, session); err != nil {
					t.Errorf("SaveSession failed: %v", err)
					return
				}

				if _, err := store.GetSession(ctx, sessionID); err != nil {
					t.Errorf("GetSession failed: %v", err)
					return
				}

				if i%5 == 0 {
					if err := store.DeleteSession(ctx, sessionID); err != nil {
						t.Errorf("DeleteSession failed: %v", err)
						return
					}
				}
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, workers*(iterations-iterations/5), store.Len())
}

func TestMemoryStoreMissingSession(t *testing.T) {
	store := NewMemoryStore()

	session, err := store.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.NoError(t, store.DeleteSession(context.Background(), "nope"))
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-redis-url", time.Minute)
	assert.Error(t, err)
}
