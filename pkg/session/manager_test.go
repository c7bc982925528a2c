package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/towerbench/pkg/adapters/memory"
	"github.com/aretw0/towerbench/pkg/adapters/redis"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sessionID] = session.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.data[sessionID]; ok {
		return session.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_UpdateSerializesWriters(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "race-test"
	require.NoError(t, manager.Create(ctx, &domain.Session{ID: id}))

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
				next := s.Snapshot()
				next.Turn++
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, loaded.Turn, "no update may be lost")
	assert.Zero(t, manager.ActiveLocks(), "lock entries must be released")
}

func TestManager_Create(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, &domain.Session{ID: "dup"}))
	err := manager.Create(ctx, &domain.Session{ID: "dup"})
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dup"}, ids)

	require.NoError(t, manager.Delete(ctx, "dup"))
	_, err = manager.Load(ctx, "dup")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s", &domain.Session{ID: "s", Turn: 1}))

	boom := errors.New("boom")
	_, err := manager.Update(ctx, "s", func(s *domain.Session) (*domain.Session, error) {
		s.Turn = 99
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Turn)

	_, err = manager.Update(ctx, "missing", func(s *domain.Session) (*domain.Session, error) { return s, nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(time.Second),
	)

	err = manager.WithLock(context.Background(), "episode", func(ctx context.Context) error {
		assert.True(t, mr.Exists("test:lock:episode"), "lock is held while fn runs")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:episode"), "lock is released afterwards")
}
