package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store on a mutex-guarded map. Snapshots are stored
// by value; readers always see a consistent copy, never a partial write.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore creates an empty snapshot cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

// Put replaces the user's cached snapshot.
func (s *MemoryStore) Put(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.State.UserID] = snap
	return nil
}

// Get returns the user's cached snapshot.
func (s *MemoryStore) Get(_ context.Context, userID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[userID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// All returns every cached snapshot ordered by user id.
func (s *MemoryStore) All(_ context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].State.UserID < out[j].State.UserID
	})
	return out, nil
}

// Count returns the number of cached users.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snaps)
}
