package rq

import (
	"reflect"

	"github.com/vango-dev/requery/pkg/reactive"
)

var elementType = reflect.TypeOf((*Element)(nil))

// resolve returns the current value of a directive argument. Functions are
// called (with the element when they take one), reactive references are
// unwrapped with Get, anything else is returned as is.
func resolve(e *Element, v any) any {
	switch fn := v.(type) {
	case nil:
		return nil
	case func() any:
		return fn()
	case func(*Element) any:
		return fn(e)
	case func() string:
		return fn()
	case func() bool:
		return fn()
	case func() int:
		return fn()
	case func(*Element) string:
		return fn(e)
	case func(*Element) bool:
		return fn(e)
	case reactive.Valuer[any]:
		return fn.Get()
	case reactive.Valuer[string]:
		return fn.Get()
	case reactive.Valuer[bool]:
		return fn.Get()
	case reactive.Valuer[int]:
		return fn.Get()
	}
	return resolveReflect(e, v)
}

func resolveReflect(e *Element, v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		t := rv.Type()
		if t.NumOut() != 1 || t.IsVariadic() || rv.IsNil() {
			return v
		}
		switch {
		case t.NumIn() == 0:
			return rv.Call(nil)[0].Interface()
		case t.NumIn() == 1 && t.In(0) == elementType:
			return rv.Call([]reflect.Value{reflect.ValueOf(e)})[0].Interface()
		}
		return v
	case reflect.Pointer, reflect.Interface, reflect.Struct:
		if m := rv.MethodByName("Get"); m.IsValid() && !(rv.Kind() == reflect.Pointer && rv.IsNil()) {
			if t := m.Type(); t.NumIn() == 0 && t.NumOut() == 1 {
				return m.Call(nil)[0].Interface()
			}
		}
	}
	return v
}

// disposableEffect re-runs an effect callback whenever a reactive value read
// through its getter changes, until disposed.
type disposableEffect struct {
	el        *Element
	value     any
	onCleanup func(any) any
	fn        func(get func() any)

	effect   *reactive.Effect
	handle   *cleanupEntry
	disposed bool
}

// newDisposableEffect registers the effect's teardown on el without running
// it. start runs it for the first time.
func newDisposableEffect(el *Element, value any, onCleanup func(any) any, fn func(get func() any)) *disposableEffect {
	if onCleanup == nil {
		onCleanup = func(any) any { return nil }
	}
	d := &disposableEffect{
		el:        el,
		value:     value,
		onCleanup: onCleanup,
		fn:        fn,
	}
	d.handle = el.cleanups.add(d.dispose)
	return d
}

func (d *disposableEffect) get() any {
	if d.disposed {
		return d.onCleanup(d.value)
	}
	return resolve(d.el, d.value)
}

func (d *disposableEffect) start() {
	if d.disposed {
		return
	}
	d.effect = reactive.CreateEffect(func() reactive.Cleanup {
		if !d.disposed {
			d.fn(d.get)
		}
		return nil
	})
}

// dispose stops the effect and stores onCleanup's result as the value. It is
// idempotent.
func (d *disposableEffect) dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	if d.effect != nil {
		d.effect.Stop()
	}
	d.value = d.onCleanup(d.value)
}

// createDisposableEffect runs fn now and whenever a reactive value it reads
// through get changes. The returned dispose is also registered in the
// element's cleanups.
func createDisposableEffect(el *Element, value any, onCleanup func(any) any, fn func(get func() any)) (dispose func()) {
	d := newDisposableEffect(el, value, onCleanup, fn)
	d.start()
	return d.dispose
}
