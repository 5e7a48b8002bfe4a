package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// MemoryStore implements Store with per-user in-memory partitions. Appends
// for one user serialize on the partition lock; different users never
// contend beyond the partition lookup.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*partition

	skew time.Duration
	now  func() time.Time
}

// partition is one user's slice of the log.
type partition struct {
	mu     sync.Mutex
	events []model.Event // sorted by (occurred_at, event_id)
	byID   map[string]struct{}
	latest time.Time // max occurred_at accepted so far
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		partitions: make(map[string]*partition),
		skew:       defaultClockSkewTolerance,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendJump validates and appends one jump event.
func (s *MemoryStore) AppendJump(ctx context.Context, ev model.JumpEvent) error {
	if err := validateJump(ev, s.now(), s.skew); err != nil {
		return err
	}
	return s.append(ctx, ev)
}

// AppendWorkout validates and appends one workout event.
func (s *MemoryStore) AppendWorkout(ctx context.Context, ev model.WorkoutEvent) error {
	if err := validateWorkout(ev, s.now(), s.skew); err != nil {
		return err
	}
	return s.append(ctx, ev)
}

func (s *MemoryStore) append(_ context.Context, ev model.Event) error {
	p := s.partition(ev.User())

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, dup := p.byID[ev.ID()]; dup {
		return ErrDuplicateEvent
	}
	if len(p.events) > 0 && ev.OccurredAt().Before(p.latest.Add(-s.skew)) {
		return ErrOutOfOrderEvent
	}

	// Insert in (occurred_at, event_id) position; recent appends land at or
	// near the tail, so the search is cheap in the common case.
	i := sort.Search(len(p.events), func(i int) bool {
		return model.Before(ev, p.events[i])
	})
	p.events = append(p.events, nil)
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev

	p.byID[ev.ID()] = struct{}{}
	if ev.OccurredAt().After(p.latest) {
		p.latest = ev.OccurredAt()
	}
	return nil
}

// Replay returns a copy of the user's ordered event slice. A non-zero
// since drops events that occurred before it.
func (s *MemoryStore) Replay(_ context.Context, userID string, since time.Time) ([]model.Event, error) {
	s.mu.RLock()
	p, ok := s.partitions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	events := p.events
	if !since.IsZero() {
		i := sort.Search(len(events), func(i int) bool {
			return !events[i].OccurredAt().Before(since)
		})
		events = events[i:]
	}
	out := make([]model.Event, len(events))
	copy(out, events)
	return out, nil
}

// Users lists user ids with at least one event, ascending.
func (s *MemoryStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.partitions))
	for id := range s.partitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the total number of stored events.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.partitions {
		p.mu.Lock()
		n += len(p.events)
		p.mu.Unlock()
	}
	return n, nil
}

func (s *MemoryStore) partition(userID string) *partition {
	s.mu.RLock()
	p, ok := s.partitions[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.partitions[userID]; ok {
		return p
	}
	p = &partition{byID: make(map[string]struct{})}
	s.partitions[userID] = p
	return p
}
