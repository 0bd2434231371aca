// File: internal/slab/slab.go
// Package slab implements a stable-index slab allocator backing the
// reactor's registration table. Indices stay valid until removed and are
// recycled through an intrusive free list.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package slab

const nilIndex = -1

type entry[T any] struct {
	value    T
	nextFree int
	occupied bool
}

// Slab allocates values with O(1) amortized insert and stable integer keys.
// It is not safe for concurrent use; the reactor confines it to one thread.
type Slab[T any] struct {
	entries  []entry[T]
	nextFree int
	length   int
}

// New returns an empty slab.
func New[T any]() *Slab[T] {
	return &Slab[T]{nextFree: nilIndex}
}

// Insert stores v and returns its index.
func (s *Slab[T]) Insert(v T) int {
	if s.nextFree != nilIndex {
		idx := s.nextFree
		s.nextFree = s.entries[idx].nextFree
		s.entries[idx] = entry[T]{value: v, nextFree: nilIndex, occupied: true}
		s.length++
		return idx
	}
	s.entries = append(s.entries, entry[T]{value: v, nextFree: nilIndex, occupied: true})
	s.length++
	return len(s.entries) - 1
}

// Get returns a pointer to the value at idx, or false if the slot is free
// or was never allocated.
func (s *Slab[T]) Get(idx int) (*T, bool) {
	if idx < 0 || idx >= len(s.entries) || !s.entries[idx].occupied {
		return nil, false
	}
	return &s.entries[idx].value, true
}

// Remove frees the slot at idx and reports whether it was occupied.
// Removing an unknown or already-freed index is a no-op; deregistration
// may race with in-flight event dispatch and must tolerate double removal.
func (s *Slab[T]) Remove(idx int) bool {
	if idx < 0 || idx >= len(s.entries) || !s.entries[idx].occupied {
		return false
	}
	var zero T
	s.entries[idx] = entry[T]{value: zero, nextFree: s.nextFree}
	s.nextFree = idx
	s.length--
	return true
}

// Len returns the number of occupied slots.
func (s *Slab[T]) Len() int { return s.length }
