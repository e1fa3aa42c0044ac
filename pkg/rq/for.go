package rq

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
)

// Reconciliation strategies.
const (
	strategyPositional = "positional"
	strategyKeyed      = "keyed"
	strategyShuffle    = "shuffle"
)

// For keeps one clone of the node per item, reusing clones by position.
// Every pass clears each reused clone and runs setup on it again. Between
// passes, setup runs again for a single position when the item stored there
// changes value.
func For[T any](e *Element, items func() []T, setup func(*Element, T)) *Element {
	return e.bindList(typedSource(items), nil, func(el *Element, item any) { setup(el, as[T](item)) })
}

// ForKeyed keeps one clone of the node per item, identified by keyFn. Clones
// keep their node across reorders, and setup only runs again for items whose
// value changed. Keys must be unique; a pass that sees a duplicate key is
// rejected with ErrDuplicateIdentity and leaves the list as it was.
//
// Items are compared by value against the item setup last ran with. A
// pointer item changed in place still compares equal, so replace pointer
// items instead of mutating them.
func ForKeyed[T any, K comparable](e *Element, items func() []T, keyFn func(T) K, setup func(*Element, T)) *Element {
	key := func(item any) any { return keyFn(as[T](item)) }
	return e.bindList(typedSource(items), key, func(el *Element, item any) { setup(el, as[T](item)) })
}

// For is the dynamic form of ForKeyed. items is resolved like any directive
// value and must produce a slice or an array. A nil keyFn reuses clones by
// position. Keyed items are compared by value, as in ForKeyed.
func (e *Element) For(items any, keyFn func(any) any, setup func(*Element, any)) *Element {
	return e.bindList(dynamicSource(e, items), keyFn, setup)
}

// listSource reads the items of a list. all boxes every item and is used by
// passes; length and at read without copying, so the list watcher and the
// item watchers cost O(1) per change.
type listSource struct {
	all    func() ([]any, error)
	length func() int
	at     func(i int) (any, bool)
}

func typedSource[T any](items func() []T) listSource {
	return listSource{
		all:    func() ([]any, error) { return boxItems(items()), nil },
		length: func() int { return len(items()) },
		at: func(i int) (any, bool) {
			s := items()
			if i < 0 || i >= len(s) {
				return nil, false
			}
			return s[i], true
		},
	}
}

func dynamicSource(e *Element, items any) listSource {
	return listSource{
		all:    func() ([]any, error) { return toItems(e.name, resolve(e, items)) },
		length: func() int { return itemCount(resolve(e, items)) },
		at:     func(i int) (any, bool) { return itemAt(resolve(e, items), i) },
	}
}

func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

func boxItems[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func toItems(list string, v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	if rv, ok := collection(v); ok {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, invalidCollection(list, v)
}

// collection returns v as an indexable reflect value.
func collection(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Array {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

// itemCount returns the length of a collection, or -1 when v is not one.
func itemCount(v any) int {
	if items, ok := v.([]any); ok {
		return len(items)
	}
	if rv, ok := collection(v); ok {
		return rv.Len()
	}
	return -1
}

func itemAt(v any, i int) (any, bool) {
	if items, ok := v.([]any); ok {
		if i < 0 || i >= len(items) {
			return nil, false
		}
		return items[i], true
	}
	rv, ok := collection(v)
	if !ok || i < 0 || i >= rv.Len() {
		return nil, false
	}
	return rv.Index(i).Interface(), true
}

// staleItem is what an item watcher reads when the key index is out of date.
// The next pass resolves it.
type staleItem struct{}

type listBinding struct {
	el    *Element
	src   listSource
	keyFn func(any) any
	setup func(*Element, any)

	template   *dom.Node
	start, end *dom.Node

	watchers map[any]func()
	stopList func()
	job      *reactive.Job
	torn     bool
}

func (e *Element) bindList(src listSource, keyFn func(any) any, setup func(*Element, any)) *Element {
	if e.disposed {
		return e
	}
	e.valueGetter[getterFor] = func() any {
		items, _ := src.all()
		return items
	}
	if e.node == nil {
		e.reg.warnMissing(e.name)
		return e
	}

	l := &listBinding{
		el:       e,
		src:      src,
		keyFn:    keyFn,
		setup:    setup,
		template: e.node,
		watchers: make(map[any]func()),
	}
	doc := l.template.Document()
	l.start = doc.CreateComment("[for:start] " + e.name)
	l.end = doc.CreateComment("[for:end] " + e.name)
	l.template.Before(l.start)
	l.template.After(l.end)
	l.template.Remove()
	e.node = nil
	e.clones = nil
	e.keyToIndex = make(map[any]int)

	l.job = reactive.NewJob("for:"+e.name, l.pass)
	l.stopList = reactive.Watch(src.length, func(int, int) {
		l.schedule()
	}, reactive.WithEqual(func(a, b any) bool { return false }))

	e.cleanups.add(l.teardown)
	l.schedule()
	return e
}

func (l *listBinding) schedule() {
	if !l.torn {
		l.el.reg.scheduler.Queue(l.job)
	}
}

// pass reconciles the clones with the current items.
func (l *listBinding) pass() (err error) {
	if l.torn || l.end.Parent() == nil {
		return nil
	}
	reactive.Untracked(func() { err = l.reconcile() })
	return err
}

func (l *listBinding) reconcile() error {
	e := l.el
	reg := e.reg

	items, err := l.src.all()
	if err != nil {
		reg.metrics.passErrors.WithLabelValues("E103").Inc()
		reg.logger.Error("list pass skipped",
			slog.String("name", e.name),
			slog.Any("error", err),
		)
		return nil
	}

	strategy := strategyPositional
	var keys []any
	if l.keyFn != nil {
		keys, err = l.keysOf(items)
		if err != nil {
			reg.metrics.passErrors.WithLabelValues(errorCode(err)).Inc()
			if isInvalidCollection(err) {
				reg.logger.Error("list pass skipped",
					slog.String("name", e.name),
					slog.Any("error", err),
				)
				return nil
			}
			return err
		}
		strategy = strategyKeyed
		if l.isShuffle(keys) {
			strategy = strategyShuffle
		}
	}

	span := reg.startPass(e.name, strategy, len(items))
	start := time.Now()
	switch strategy {
	case strategyPositional:
		l.renderPositional(items)
	case strategyShuffle:
		l.renderShuffle(items, keys)
	default:
		l.renderKeyed(items, keys)
	}
	reg.metrics.passes.WithLabelValues(strategy).Inc()
	reg.metrics.passDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	endSpan(span, nil)
	return nil
}

// keysOf computes the key of every item and rejects duplicates.
func (l *listBinding) keysOf(items []any) ([]any, error) {
	keys := make([]any, len(items))
	seen := make(map[any]struct{}, len(items))
	for i, item := range items {
		k := l.keyFn(item)
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, invalidCollection(l.el.name, k).WithSuggestion("List keys must be comparable values.")
		}
		if _, dup := seen[k]; dup {
			return nil, duplicateKey(l.el.name, k)
		}
		seen[k] = struct{}{}
		keys[i] = k
	}
	return keys, nil
}

// isShuffle reports whether keys is a reordering of the current clones.
func (l *listBinding) isShuffle(keys []any) bool {
	e := l.el
	if len(keys) != len(e.clones) {
		return false
	}
	for i, c := range e.clones {
		if idx, ok := e.keyToIndex[c.key]; !ok || idx != i || c.node == nil {
			return false
		}
	}
	for _, k := range keys {
		if _, ok := e.keyToIndex[k]; !ok {
			return false
		}
	}
	return true
}

func (l *listBinding) renderPositional(items []any) {
	e := l.el
	e.keyToIndex = make(map[any]int, len(items))

	for len(e.clones) > len(items) {
		last := len(e.clones) - 1
		clone := e.clones[last]
		e.clones = e.clones[:last]
		l.stopWatcher(last)
		clone.Dispose()
	}

	for i, item := range items {
		e.keyToIndex[i] = i
		if i < len(e.clones) {
			l.rebuild(e.clones[i], item)
		} else {
			clone := l.newClone(i, item)
			e.clones = append(e.clones, clone)
			_ = l.end.Parent().InsertBefore(clone.node, l.end)
		}
		l.watch(i)
	}
}

func (l *listBinding) renderKeyed(items, keys []any) {
	e := l.el
	reg := e.reg
	parent := l.end.Parent()

	next := make(map[any]int, len(keys))
	for i, k := range keys {
		next[k] = i
	}

	old := e.clones
	e.clones = nil
	byKey := make(map[any]*Element, len(old))
	for _, c := range old {
		if _, keep := next[c.key]; keep && c.node != nil {
			byKey[c.key] = c
			continue
		}
		l.stopWatcher(c.key)
		c.Dispose()
	}

	e.keyToIndex = next
	clones := make([]*Element, len(items))
	var nextRef *dom.Node = l.end
	for i := len(items) - 1; i >= 0; i-- {
		item, key := items[i], keys[i]
		clone, ok := byKey[key]
		if !ok {
			clone = l.newClone(key, item)
			_ = parent.InsertBefore(clone.node, nextRef)
		} else {
			if !reflect.DeepEqual(clone.snapshot, item) {
				l.rebuild(clone, item)
			}
			if clone.node.NextSibling() != nextRef {
				_ = parent.InsertBefore(clone.node, nextRef)
				reg.metrics.clonesMoved.Inc()
			}
		}
		nextRef = clone.node
		clones[i] = clone
	}
	e.clones = clones

	for _, k := range keys {
		l.watch(k)
	}
}

// renderShuffle handles a pure reordering: only clones whose position
// changed are moved.
func (l *listBinding) renderShuffle(items, keys []any) {
	e := l.el
	prev := e.keyToIndex
	old := e.clones

	next := make(map[any]int, len(keys))
	moved := make([]bool, len(keys))
	anyMoved := false
	for i, k := range keys {
		next[k] = i
		if prev[k] != i {
			moved[i] = true
			anyMoved = true
		}
	}

	if !anyMoved {
		for i, c := range old {
			if c.node != nil && !reflect.DeepEqual(c.snapshot, items[i]) {
				l.rebuild(c, items[i])
			}
		}
		return
	}

	clones := make([]*Element, len(keys))
	for i, k := range keys {
		clones[i] = old[prev[k]]
	}
	e.keyToIndex = next
	e.clones = clones

	parent := l.end.Parent()
	var nextRef *dom.Node = l.end
	for i := len(clones) - 1; i >= 0; i-- {
		clone := clones[i]
		if clone.node == nil {
			continue
		}
		if moved[i] && clone.node.NextSibling() != nextRef {
			_ = parent.InsertBefore(clone.node, nextRef)
			e.reg.metrics.clonesMoved.Inc()
		}
		if !reflect.DeepEqual(clone.snapshot, items[i]) {
			l.rebuild(clone, items[i])
		}
		nextRef = clone.node
	}
}

func (l *listBinding) newClone(key, item any) *Element {
	e := l.el
	clone := newElement(fmt.Sprint(key), e.component, l.template.Clone(true))
	clone.parent = e
	clone.isClone = true
	clone.key = key
	clone.mount()
	e.reg.metrics.clonesCreated.Inc()
	l.setupClone(clone, item)
	return clone
}

func (l *listBinding) setupClone(clone *Element, item any) {
	key := clone.key
	clone.snapshot = item
	clone.valueGetter[getterItem] = func() any { return l.current(key) }
	l.el.reg.metrics.setupRuns.Inc()
	reactive.Untracked(func() { l.setup(clone, item) })
}

// rebuild clears the bindings of a clone and runs setup again.
func (l *listBinding) rebuild(clone *Element, item any) {
	clearBindings(clone)
	l.setupClone(clone, item)
}

// current reads the item for key through the list source. Between a change
// and the next pass the index can be stale, so keyed lists fall back to a
// scan.
func (l *listBinding) current(key any) any {
	if idx, ok := l.el.keyToIndex[key]; ok {
		if item, ok := l.src.at(idx); ok && (l.keyFn == nil || sameKey(l.keyFn(item), key)) {
			return item
		}
	}
	if l.keyFn != nil {
		items, err := l.src.all()
		if err != nil {
			return nil
		}
		for _, item := range items {
			if sameKey(l.keyFn(item), key) {
				return item
			}
		}
	}
	return nil
}

func (l *listBinding) cloneFor(key any) *Element {
	e := l.el
	if idx, ok := e.keyToIndex[key]; ok && idx < len(e.clones) && e.clones[idx].key == key {
		return e.clones[idx]
	}
	for _, c := range e.clones {
		if c.key == key {
			return c
		}
	}
	return nil
}

// watch starts the item watcher for key unless it runs already. The watcher
// rebuilds only its own clone when the item's value changes between passes.
func (l *listBinding) watch(key any) {
	if _, ok := l.watchers[key]; ok {
		return
	}
	l.watchers[key] = reactive.Watch(func() any {
		idx, ok := l.el.keyToIndex[key]
		if !ok {
			return staleItem{}
		}
		item, ok := l.src.at(idx)
		if !ok {
			return staleItem{}
		}
		if l.keyFn != nil && !sameKey(l.keyFn(item), key) {
			return staleItem{}
		}
		return item
	}, func(next, _ any) {
		if _, stale := next.(staleItem); stale || l.torn {
			return
		}
		clone := l.cloneFor(key)
		if clone == nil || clone.node == nil || reflect.DeepEqual(clone.snapshot, next) {
			return
		}
		l.rebuild(clone, next)
	}, reactive.WithEqual(func(a, b any) bool { return false }))
}

func (l *listBinding) stopWatcher(key any) {
	if stop, ok := l.watchers[key]; ok {
		stop()
		delete(l.watchers, key)
	}
}

func sameKey(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// teardown stops every watcher, disposes the clones, removes the anchors and
// puts the template back in their place.
func (l *listBinding) teardown() {
	if l.torn {
		return
	}
	l.torn = true
	e := l.el
	e.reg.scheduler.Cancel(l.job)

	for _, stop := range l.watchers {
		stop()
	}
	l.watchers = nil
	l.stopList()

	clones := e.clones
	e.clones = nil
	for _, c := range clones {
		c.Dispose()
	}
	e.keyToIndex = make(map[any]int)

	if l.start.Parent() != nil {
		l.start.Before(l.template)
		e.node = l.template
	}
	l.start.Remove()
	l.end.Remove()
}
