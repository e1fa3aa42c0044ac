package reactive

// SliceSignal wraps Signal[[]T] with copy-on-write slice operations. Every
// operation produces a new backing array, so watchers comparing by identity
// see the change and previously read slices are never modified.
type SliceSignal[T any] struct {
	*Signal[[]T]
}

// NewSliceSignal creates a SliceSignal. A nil initial value becomes empty.
func NewSliceSignal[T any](initial []T) *SliceSignal[T] {
	if initial == nil {
		initial = []T{}
	}
	return &SliceSignal[T]{NewSignal(initial)}
}

func cloneSlice[T any](items []T, extra int) []T {
	out := make([]T, len(items), len(items)+extra)
	copy(out, items)
	return out
}

// Append adds items to the end.
func (s *SliceSignal[T]) Append(items ...T) {
	s.Update(func(current []T) []T {
		return append(cloneSlice(current, len(items)), items...)
	})
}

// Prepend adds an item at the beginning.
func (s *SliceSignal[T]) Prepend(item T) {
	s.InsertAt(0, item)
}

// InsertAt inserts item at index, clamped to the slice bounds.
func (s *SliceSignal[T]) InsertAt(index int, item T) {
	s.Update(func(items []T) []T {
		if index < 0 {
			index = 0
		}
		if index > len(items) {
			index = len(items)
		}
		result := make([]T, 0, len(items)+1)
		result = append(result, items[:index]...)
		result = append(result, item)
		return append(result, items[index:]...)
	})
}

// RemoveAt removes the item at index. Out-of-range indexes are ignored.
func (s *SliceSignal[T]) RemoveAt(index int) {
	s.Update(func(items []T) []T {
		if index < 0 || index >= len(items) {
			return items
		}
		result := make([]T, 0, len(items)-1)
		result = append(result, items[:index]...)
		return append(result, items[index+1:]...)
	})
}

// RemoveWhere removes every item matching predicate.
func (s *SliceSignal[T]) RemoveWhere(predicate func(T) bool) {
	s.Update(func(items []T) []T {
		result := make([]T, 0, len(items))
		for _, item := range items {
			if !predicate(item) {
				result = append(result, item)
			}
		}
		return result
	})
}

// SetAt replaces the item at index.
func (s *SliceSignal[T]) SetAt(index int, item T) {
	s.UpdateAt(index, func(T) T { return item })
}

// UpdateAt replaces the item at index with fn(item).
func (s *SliceSignal[T]) UpdateAt(index int, fn func(T) T) {
	s.Update(func(items []T) []T {
		if index < 0 || index >= len(items) {
			return items
		}
		result := cloneSlice(items, 0)
		result[index] = fn(result[index])
		return result
	})
}

// UpdateWhere replaces every item matching predicate with fn(item).
func (s *SliceSignal[T]) UpdateWhere(predicate func(T) bool, fn func(T) T) {
	s.Update(func(items []T) []T {
		result := cloneSlice(items, 0)
		for i, item := range result {
			if predicate(item) {
				result[i] = fn(item)
			}
		}
		return result
	})
}

// Move relocates the item at from so that it ends up at index to.
func (s *SliceSignal[T]) Move(from, to int) {
	s.Update(func(items []T) []T {
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
			return items
		}
		item := items[from]
		result := make([]T, 0, len(items))
		result = append(result, items[:from]...)
		result = append(result, items[from+1:]...)
		result = append(result[:to], append([]T{item}, result[to:]...)...)
		return result
	})
}

// Swap exchanges the items at i and j.
func (s *SliceSignal[T]) Swap(i, j int) {
	s.Update(func(items []T) []T {
		if i < 0 || j < 0 || i >= len(items) || j >= len(items) || i == j {
			return items
		}
		result := cloneSlice(items, 0)
		result[i], result[j] = result[j], result[i]
		return result
	})
}

// Clear removes all items.
func (s *SliceSignal[T]) Clear() {
	s.Set([]T{})
}

// Len returns the length and subscribes the current listener.
func (s *SliceSignal[T]) Len() int {
	return len(s.Get())
}

// MapSignal wraps Signal[map[K]V] with copy-on-write key operations.
type MapSignal[K comparable, V any] struct {
	*Signal[map[K]V]
}

// NewMapSignal creates a MapSignal. A nil initial value becomes empty.
func NewMapSignal[K comparable, V any](initial map[K]V) *MapSignal[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	return &MapSignal[K, V]{NewSignal(initial)}
}

// Key returns the value for key and subscribes the current listener.
func (s *MapSignal[K, V]) Key(key K) V {
	return s.Get()[key]
}

// Lookup returns the value for key and whether it was present.
func (s *MapSignal[K, V]) Lookup(key K) (V, bool) {
	v, ok := s.Get()[key]
	return v, ok
}

// SetKey sets a key.
func (s *MapSignal[K, V]) SetKey(key K, value V) {
	s.Update(func(m map[K]V) map[K]V {
		out := make(map[K]V, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		out[key] = value
		return out
	})
}

// RemoveKey deletes a key.
func (s *MapSignal[K, V]) RemoveKey(key K) {
	s.Update(func(m map[K]V) map[K]V {
		if _, ok := m[key]; !ok {
			return m
		}
		out := make(map[K]V, len(m))
		for k, v := range m {
			if k != key {
				out[k] = v
			}
		}
		return out
	})
}
