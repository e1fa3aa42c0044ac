package reactive

import "reflect"

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	immediate bool
	equal     func(a, b any) bool
}

// Deep compares successive values with reflect.DeepEqual instead of by
// identity.
func Deep() WatchOption {
	return func(c *watchConfig) {
		c.equal = reflect.DeepEqual
	}
}

// Immediate also calls back with the first value (prev is the zero value).
func Immediate() WatchOption {
	return func(c *watchConfig) {
		c.immediate = true
	}
}

// WithEqual sets a custom comparison. Equal values do not call back.
func WithEqual(fn func(a, b any) bool) WatchOption {
	return func(c *watchConfig) {
		c.equal = fn
	}
}

// Watch tracks the reads performed by source and calls cb with the new and
// previous value whenever a dependency changes and the value differs. cb runs
// untracked. The returned function stops the watcher.
func Watch[T any](source func() T, cb func(next, prev T), opts ...WatchOption) (stop func()) {
	cfg := watchConfig{equal: SameValue}
	for _, opt := range opts {
		opt(&cfg)
	}

	var prev T
	first := true
	e := newEffect(func() Cleanup {
		next := source()
		if first {
			first = false
			prev = next
			if cfg.immediate {
				var zero T
				Untracked(func() { cb(next, zero) })
			}
			return nil
		}
		if cfg.equal(any(prev), any(next)) {
			return nil
		}
		old := prev
		prev = next
		Untracked(func() { cb(next, old) })
		return nil
	})
	e.run()
	return e.Stop
}

// SameValue is identity comparison. Slices are the same when they share a
// backing array and length; maps, funcs, channels and pointers when they point
// to the same object; structs and arrays are compared deeply.
func SameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Struct, reflect.Array, reflect.Interface:
		return reflect.DeepEqual(a, b)
	default:
		return a == b
	}
}
