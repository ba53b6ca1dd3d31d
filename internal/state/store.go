package state

import "sync"

// Store coordinates concurrent access to a value of type T and fans out
// changes to subscribers.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
	clone func(T) T

	subMu  sync.Mutex
	subs   map[int]chan T
	nextID int
}

// New returns a store holding initial. clone copies values in and out of the
// store so callers never share slices or maps with it; nil means values are
// copied by assignment only.
func New[T any](initial T, clone func(T) T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Store[T]{
		value: clone(initial),
		clone: clone,
		subs:  make(map[int]chan T),
	}
}

// Snapshot returns a copy of the current value.
func (s *Store[T]) Snapshot() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.value)
}

// Put replaces the stored value.
func (s *Store[T]) Put(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.clone(value)
	s.publish(s.value)
}

// Update applies fn to the stored value under the write lock.
func (s *Store[T]) Update(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.value)
	s.publish(s.value)
}

// Subscribe returns a channel that receives the value after every change.
// The channel holds only the newest value; a slow reader skips intermediate
// ones. cancel closes the channel.
func (s *Store[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish runs with mu held so subscribers see writes in order. Lock order is
// mu then subMu.
func (s *Store[T]) publish(value T) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		value := s.clone(value)
		select {
		case ch <- value:
			continue
		default:
		}
		// Drop the stale value so the newest one fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- value:
		default:
		}
	}
}
