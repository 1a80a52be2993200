package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Store is an in-process TTL cache. A zero ttl keeps entries until they are
// invalidated.
//
// Every DeletePrefix bumps a generation counter. A load that started under an
// older generation still returns its value to the callers waiting on it but
// is not stored, so an invalidation issued mid-load sticks.
type Store struct {
	mu         sync.Mutex
	entries    map[string]entry
	generation uint64
	ttl        time.Duration
	now        func() time.Time
	flight     singleflight.Group
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

func (s *Store) Set(_ context.Context, key string, value any) {
	s.mu.Lock()
	s.store(key, value)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader Loader) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	s.mu.Lock()
	if value, ok := s.lookup(key); ok {
		s.mu.Unlock()
		return value, nil
	}
	s.mu.Unlock()

	value, err, _ := s.flight.Do(key, func() (any, error) {
		s.mu.Lock()
		if cached, ok := s.lookup(key); ok {
			s.mu.Unlock()
			return cached, nil
		}
		generation := s.generation
		s.mu.Unlock()

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.generation == generation {
			s.store(key, loaded)
		}
		s.mu.Unlock()
		return loaded, nil
	})
	return value, err
}

// lookup and store expect s.mu to be held.
func (s *Store) lookup(key string) (any, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *Store) store(key string, value any) {
	if key == "" {
		return
	}
	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = e
}
