// Package buffer provides a fixed-capacity rolling buffer that evicts its
// oldest entries first.
package buffer

import "sync"

// Rolling is a mutex-guarded ring of at most Cap() items. Safe for
// concurrent use.
type Rolling[T any] struct {
	mu    sync.RWMutex
	items []T
	start int
	size  int
}

// New returns a Rolling buffer holding at most capacity items. Capacity
// below 1 is treated as 1.
func New[T any](capacity int) *Rolling[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Rolling[T]{items: make([]T, capacity)}
}

// Append adds v as the newest item. It reports whether an older item was
// evicted to make room.
func (b *Rolling[T]) Append(v T) (evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.items)
	if b.size < capacity {
		b.items[(b.start+b.size)%capacity] = v
		b.size++
		return false
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % capacity
	return true
}

// Snapshot returns a copy of the items, oldest first.
func (b *Rolling[T]) Snapshot() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Filter returns the items for which keep returns true, oldest first.
func (b *Rolling[T]) Filter(keep func(T) bool) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []T
	for i := 0; i < b.size; i++ {
		v := b.items[(b.start+i)%len(b.items)]
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Last returns the newest item and whether the buffer holds any.
func (b *Rolling[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.start+b.size-1)%len(b.items)], true
}

func (b *Rolling[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Rolling[T]) Cap() int {
	return len(b.items)
}
