package flights

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the current flight set. Readers get
// an immutable snapshot pointer; reloads swap the whole set atomically so a
// running animation never sees a half-replaced list.
type Store struct {
	set atomic.Pointer[FlightSet]
	mu  sync.Mutex // serializes reload operations
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current flight set, or nil if none has been loaded.
func (s *Store) Get() *FlightSet {
	return s.set.Load()
}

// Set atomically replaces the current flight set.
func (s *Store) Set(fs *FlightSet) {
	s.set.Store(fs)
}

// Ready reports whether a flight set has been loaded.
func (s *Store) Ready() bool {
	return s.set.Load() != nil
}

// AgeSeconds returns the age of the current flight set in seconds,
// or -1 if none is loaded.
func (s *Store) AgeSeconds() float64 {
	fs := s.set.Load()
	if fs == nil {
		return -1
	}
	return time.Since(fs.FetchedAt).Seconds()
}

// Lock acquires the reload mutex so concurrent reload requests run one at
// a time. Readers never take it.
func (s *Store) Lock() {
	s.mu.Lock()
}

// Unlock releases the reload mutex.
func (s *Store) Unlock() {
	s.mu.Unlock()
}
