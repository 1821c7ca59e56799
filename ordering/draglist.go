package ordering

import (
	"context"
	"slices"
	"sync"
)

// Reconciler persists a full ordering, first id first.
type Reconciler interface {
	Reorder(ctx context.Context, ids []string) (int64, error)
}

// DragList is an ordered list edited locally and saved in one call.
// It is safe for concurrent use.
type DragList[T any] struct {
	mu    sync.Mutex
	items []T
	id    func(T) string
	dirty bool
}

func New[T any](items []T, id func(T) string) *DragList[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &DragList[T]{items: cp, id: id}
}

// Move splices the item at from into position to. from == to changes nothing
// and leaves the dirty flag alone.
func (l *DragList[T]) Move(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := Move(l.items, from, to)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	l.items = next
	l.dirty = true
	return nil
}

// Items returns a copy of the current order.
func (l *DragList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]T, len(l.items))
	copy(cp, l.items)
	return cp
}

func (l *DragList[T]) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ids()
}

func (l *DragList[T]) ids() []string {
	ids := make([]string, len(l.items))
	for i, item := range l.items {
		ids[i] = l.id(item)
	}
	return ids
}

func (l *DragList[T]) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func (l *DragList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Remove drops the item with id, e.g. after it was deleted on the server.
// The remaining order is unchanged so the list does not become dirty.
func (l *DragList[T]) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, item := range l.items {
		if l.id(item) == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Commit sends the current order to r. The dirty flag is cleared only when
// r succeeds and no move happened while the call was in flight.
func (l *DragList[T]) Commit(ctx context.Context, r Reconciler) (int64, error) {
	l.mu.Lock()
	if !l.dirty {
		l.mu.Unlock()
		return 0, nil
	}
	ids := l.ids()
	l.mu.Unlock()

	modified, err := r.Reorder(ctx, ids)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if slices.Equal(ids, l.ids()) {
		l.dirty = false
	}
	return modified, nil
}
