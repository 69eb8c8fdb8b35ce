// Package breaker implements a circuit breaker for LLM and storage calls so
// a failing dependency sheds load instead of queueing retries.
package breaker

import (
	"sync"
	"time"
)

// State is the breaker's current mode.
type State string

const (
	// Closed passes calls through and counts failures.
	Closed State = "closed"
	// Open rejects calls until the recovery timeout elapses.
	Open State = "open"
	// HalfOpen admits a probe call; its outcome decides the next state.
	HalfOpen State = "half_open"
)

// Snapshot is the persisted breaker state. A pluggable store lets the
// state be shared across processes.
type Snapshot struct {
	State        State     `json:"state"`
	Failures     int       `json:"failures"`
	LastFailure  time.Time `json:"last_failure"`
	LastModified time.Time `json:"last_modified"`
}

// Store persists breaker state.
type Store interface {
	Load(name string) (Snapshot, bool)
	Save(name string, snap Snapshot)
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (s *MemoryStore) Load(name string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[name]
	return snap, ok
}

func (s *MemoryStore) Save(name string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[name] = snap
}

// Breaker is a named circuit breaker. All decisions take the lock so state
// transitions are atomic with the checks that trigger them.
type Breaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	store            Store

	mu  sync.Mutex
	now func() time.Time
}

// New creates a breaker. failureThreshold consecutive failures open the
// circuit; after recoveryTimeout a single probe is admitted.
func New(name string, failureThreshold int, recoveryTimeout time.Duration, store Store) *Breaker {
	if store == nil {
		store = NewMemoryStore()
	}
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		store:            store,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. An open breaker transitions to
// half-open once the recovery timeout has elapsed, admitting one probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, _ := b.store.Load(b.name)
	switch snap.State {
	case Open:
		if b.now().Sub(snap.LastFailure) >= b.recoveryTimeout {
			snap.State = HalfOpen
			snap.LastModified = b.now()
			b.store.Save(b.name, snap)
			return true
		}
		return false
	case HalfOpen:
		// Only one probe at a time; further calls wait for its outcome.
		return false
	default:
		return true
	}
}

// RecordSuccess closes the circuit and resets the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, _ := b.store.Load(b.name)
	snap.State = Closed
	snap.Failures = 0
	snap.LastModified = b.now()
	b.store.Save(b.name, snap)
}

// RecordFailure counts a failure. Reaching the threshold, or failing the
// half-open probe, opens the circuit.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, _ := b.store.Load(b.name)
	snap.Failures++
	snap.LastFailure = b.now()
	if snap.State == HalfOpen || snap.Failures >= b.failureThreshold {
		snap.State = Open
	}
	snap.LastModified = b.now()
	b.store.Save(b.name, snap)
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, ok := b.store.Load(b.name)
	if !ok {
		return Closed
	}
	if snap.State == "" {
		return Closed
	}
	return snap.State
}
