package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is append-only storage with 1-based indices; index 0 is the invalid
// sentinel. Nothing is ever freed: a speculative parse that fails simply
// truncates back to a recorded length, and any nodes past that point become
// unreachable garbage rather than dangling references.
type Arena[T any] struct {
	data []T
}

// NewArena returns an arena whose backing slice is preallocated to capHint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	lenData, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return lenData
}

func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// Slice exposes the underlying storage. Read-only.
func (a *Arena[T]) Slice() []T {
	return a.data
}

func (a *Arena[T]) Len() uint32 {
	lenData, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return lenData
}

// TruncateTo forgets every element allocated after the arena had length n.
// Used to discard nodes built during a failed speculative parse.
func (a *Arena[T]) TruncateTo(n uint32) {
	if int(n) < len(a.data) {
		a.data = a.data[:n]
	}
}
