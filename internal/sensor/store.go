package sensor

import (
	"sync"
	"sync/atomic"
)

// Percept is the committed (Snapshot, AgentState) pair. Seq increases with
// every committed update.
type Percept struct {
	Sensor Snapshot
	State  AgentState
	Seq    uint64
}

// Store stages incoming updates and publishes them on Commit. Readers only
// ever observe committed percepts, so a reader never sees a snapshot from
// one update paired with the state from another.
type Store struct {
	current atomic.Pointer[Percept]

	mu      sync.Mutex
	pending *Percept
}

// NewStore returns a store holding a cleared snapshot for cfg and a zero
// agent state.
func NewStore(cfg Config) *Store {
	s := new(Store)
	s.current.Store(&Percept{Sensor: NewSnapshot(cfg)})
	return s
}

// Current returns the latest committed percept.
func (s *Store) Current() Percept {
	return *s.current.Load()
}

// Stage merges an update into the pending percept. The ray patch is applied
// on top of any earlier staged patch; the state replaces the staged state.
// An invalid patch leaves the store untouched.
func (s *Store) Stage(rays []RayUpdate, state AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.pending
	if base == nil {
		base = s.current.Load()
	}
	snap, err := base.Sensor.Apply(rays)
	if err != nil {
		return err
	}
	s.pending = &Percept{
		Sensor: snap,
		State:  state.clone(),
		Seq:    base.Seq + 1,
	}
	return nil
}

// Commit publishes the pending percept, if any, and reports whether it did.
func (s *Store) Commit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	s.current.Store(s.pending)
	s.pending = nil
	return true
}
