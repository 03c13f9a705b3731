// Package history keeps the undo/redo checkpoints of a document.
package history

import (
	"sync"

	"github.com/ironsheep/image-edit-mcp/internal/logger"
)

// DefaultMaxDepth is used when a Stack is created without a positive limit.
const DefaultMaxDepth = 100

// Stack is an ordered list of snapshots with a cursor pointing at the current
// one. Entries after the cursor form the redo branch, which the next Push
// discards. Stored snapshots are never modified; only the cursor moves.
//
// A Stack is safe for concurrent use.
type Stack[T any] struct {
	entries  []T
	cursor   int // index of the current entry; 0 when empty
	maxDepth int
	mutex    sync.Mutex
}

// NewStack creates an empty stack retaining at most maxDepth entries.
func NewStack[T any](maxDepth int) *Stack[T] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Stack[T]{maxDepth: maxDepth}
}

// Reset replaces every entry with initial as the only, current entry.
func (s *Stack[T]) Reset(initial T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries = []T{initial}
	s.cursor = 0
	logger.Debugf("History: Reset. Count: 1")
}

// Push truncates the redo branch, appends snapshot and makes it current.
//
// When the stack grows past its depth limit the oldest entries are evicted.
func (s *Stack[T]) Push(snapshot T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Drop the redo branch
	if len(s.entries) > 0 && s.cursor < len(s.entries)-1 {
		discarded := len(s.entries) - 1 - s.cursor
		clear(s.entries[s.cursor+1:])
		s.entries = s.entries[:s.cursor+1]
		logger.Debugf("History: Discarded %d redo entries", discarded)
	}

	s.entries = append(s.entries, snapshot)

	// Limit history size (simple FIFO eviction)
	if over := len(s.entries) - s.maxDepth; over > 0 {
		clear(s.entries[:over])
		s.entries = s.entries[over:]
	}

	s.cursor = len(s.entries) - 1
	logger.Debugf("History: Pushed snapshot. Cursor: %d, Count: %d", s.cursor, len(s.entries))
}

// Undo moves the cursor back one entry and returns the new current snapshot.
// At the oldest entry it returns the current snapshot and false.
func (s *Stack[T]) Undo() (T, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) == 0 {
		var zero T
		return zero, false
	}
	if s.cursor == 0 {
		logger.Debugf("History: Nothing to undo.")
		return s.entries[0], false
	}

	s.cursor--
	logger.Debugf("History: Undo. Cursor: %d, Count: %d", s.cursor, len(s.entries))
	return s.entries[s.cursor], true
}

// Redo moves the cursor forward one entry and returns the new current
// snapshot. At the newest entry it returns the current snapshot and false.
func (s *Stack[T]) Redo() (T, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) == 0 {
		var zero T
		return zero, false
	}
	if s.cursor >= len(s.entries)-1 {
		logger.Debugf("History: Nothing to redo. cursor=%d, len(entries)=%d", s.cursor, len(s.entries))
		return s.entries[s.cursor], false
	}

	s.cursor++
	logger.Debugf("History: Redo. Cursor: %d, Count: %d", s.cursor, len(s.entries))
	return s.entries[s.cursor], true
}

// Current returns the snapshot at the cursor, or false when empty.
func (s *Stack[T]) Current() (T, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) == 0 {
		var zero T
		return zero, false
	}
	return s.entries[s.cursor], true
}

// Len returns the number of retained entries.
func (s *Stack[T]) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.entries)
}

// Cursor returns the index of the current entry.
func (s *Stack[T]) Cursor() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cursor
}

// MaxDepth returns the retention limit.
func (s *Stack[T]) MaxDepth() int {
	return s.maxDepth
}

// CanUndo returns true if there is an older entry to move to.
func (s *Stack[T]) CanUndo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cursor > 0
}

// CanRedo returns true if the redo branch is not empty.
func (s *Stack[T]) CanRedo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cursor < len(s.entries)-1
}

// Entries returns a copy of all entries, oldest first.
func (s *Stack[T]) Entries() []T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear removes every entry. Call this when the document is closed.
func (s *Stack[T]) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	clear(s.entries)
	s.entries = s.entries[:0]
	s.cursor = 0
	logger.Debugf("History: Cleared.")
}
