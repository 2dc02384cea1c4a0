package cache

import (
	"context"
	"sync"
	"time"

	"github.com/curator/backend/internal/domain/shared"
)

// sweepInterval is how often expired delivery IDs are swept from the map.
const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore tracks processed webhook delivery IDs in a
// process-local map. State is not shared across replicas, so it suits
// single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expiry  map[string]time.Time
	done    chan struct{}
	sweeper sync.WaitGroup
	once    sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore creates the store and starts a background
// goroutine that sweeps expired entries.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiry: make(map[string]time.Time),
		done:   make(chan struct{}),
	}

	s.sweeper.Add(1)
	go s.sweepLoop()

	return s
}

// MarkProcessed records an event ID with a TTL. It returns true when the
// ID was newly recorded and false when a live entry already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.expiry[eventID]; ok && now.Before(deadline) {
		return false, nil
	}
	s.expiry[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether an event ID has a live entry. Expired
// entries count as not processed.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.expiry[eventID]
	return ok && time.Now().Before(deadline), nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.sweeper.Wait()
	})
	return nil
}

// Size returns the number of entries still held, live or expired.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiry)
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.sweeper.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, deadline := range s.expiry {
		if now.After(deadline) {
			delete(s.expiry, id)
		}
	}
}
