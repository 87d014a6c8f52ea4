package history

import (
	"errors"
	"sync"
)

var ErrInvalidCapacity = errors.New("ring capacity must be positive")

// Ring is a thread-safe fixed capacity buffer that evicts the oldest entry
// when full.
type Ring[T any] struct {
	mu      sync.RWMutex
	items   []T
	head    int // index of the oldest entry
	count   int
	pushed  uint64
	evicted uint64
}

// NewRing creates a ring holding at most capacity entries
func NewRing[T any](capacity int) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Ring[T]{items: make([]T, capacity)}, nil
}

// Push appends v and reports whether the oldest entry was evicted to make room
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pushed++
	capacity := len(r.items)
	if r.count < capacity {
		r.items[(r.head+r.count)%capacity] = v
		r.count++
		return false
	}

	r.items[r.head] = v
	r.head = (r.head + 1) % capacity
	r.evicted++
	return true
}

// Len returns the number of entries held
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns the capacity
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Latest returns the newest entry
func (r *Ring[T]) Latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.items[(r.head+r.count-1)%len(r.items)], true
}

// Snapshot copies all entries, oldest first
func (r *Ring[T]) Snapshot() []T {
	return r.Last(-1)
}

// Last copies the newest n entries, oldest first. A negative n returns all.
func (r *Ring[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 || n > r.count {
		n = r.count
	}
	out := make([]T, n)
	start := r.head + r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.items[(start+i)%len(r.items)]
	}
	return out
}

// Pushed returns the number of entries ever pushed
func (r *Ring[T]) Pushed() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pushed
}

// Evicted returns the number of entries dropped to make room
func (r *Ring[T]) Evicted() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.evicted
}

// Reset drops all entries; counters are kept
func (r *Ring[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
}
