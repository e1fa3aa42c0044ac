package rq

import (
	"github.com/vango-dev/requery/pkg/dom"
)

// Element is the handle of one bound region of the document. It owns its
// child elements, its list clones, its listeners and the teardown of every
// directive bound to it.
type Element struct {
	name      string
	component *Component
	reg       *Registry

	// key and isClone identify list items.
	key     any
	isClone bool

	// node is nil while the region is not in the document.
	node   *dom.Node
	parent *Element

	children   []*Element
	childIndex map[string]*Element
	clones     []*Element

	valueGetter map[string]func() any
	keyToIndex  map[any]int

	cleanups         cleanupList
	eventListeners   map[string]*dom.Listener
	eventCleanups    map[string]*cleanupEntry
	mountedCallbacks []func() func()

	// snapshot is the item a clone was last set up with.
	snapshot any

	// staticClass is the class list captured by the first class binding on
	// staticClassNode.
	staticClass     string
	staticClassNode *dom.Node

	isMounted bool
	disposed  bool
}

type cleanupEntry struct {
	fn func()
}

// cleanupList keeps teardown callbacks in registration order. Entries can be
// removed by handle.
type cleanupList struct {
	entries []*cleanupEntry
}

func (l *cleanupList) add(fn func()) *cleanupEntry {
	e := &cleanupEntry{fn: fn}
	l.entries = append(l.entries, e)
	return e
}

func (l *cleanupList) remove(h *cleanupEntry) bool {
	for i, e := range l.entries {
		if e == h {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// take removes and returns every entry for which keep returns false.
func (l *cleanupList) take(keep func(*cleanupEntry) bool) []*cleanupEntry {
	var taken, kept []*cleanupEntry
	for _, e := range l.entries {
		if keep != nil && keep(e) {
			kept = append(kept, e)
		} else {
			taken = append(taken, e)
		}
	}
	l.entries = kept
	return taken
}

func (l *cleanupList) len() int {
	return len(l.entries)
}

func newElement(name string, c *Component, node *dom.Node) *Element {
	return &Element{
		name:        name,
		component:   c,
		reg:         c.reg,
		node:        node,
		childIndex:  make(map[string]*Element),
		valueGetter: make(map[string]func() any),
		keyToIndex:  make(map[any]int),
	}
}

// Name returns the binding name. Clones are named after their key.
func (e *Element) Name() string { return e.name }

// Node returns the bound node, or nil when the region is not mounted.
func (e *Element) Node() *dom.Node { return e.node }

// Parent returns the owning element, or nil for a top-level element.
func (e *Element) Parent() *Element { return e.parent }

// Component returns the component the element belongs to.
func (e *Element) Component() *Component { return e.component }

// Key returns the list key of a clone.
func (e *Element) Key() any { return e.key }

// IsClone reports whether the element is a list item.
func (e *Element) IsClone() bool { return e.isClone }

// IsMounted reports whether the element finished binding.
func (e *Element) IsMounted() bool { return e.isMounted }

// Disposed reports whether Dispose ran.
func (e *Element) Disposed() bool { return e.disposed }

// Children returns the queried child elements in binding order.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Clones returns the list items in document order.
func (e *Element) Clones() []*Element {
	return append([]*Element(nil), e.clones...)
}

// Item returns the current item of a clone, read through the list source.
// It returns nil for other elements.
func (e *Element) Item() any {
	if get, ok := e.valueGetter[getterItem]; ok {
		return get()
	}
	return nil
}

// OnMounted runs cb once the element is mounted, right away if it already
// is. A teardown returned by cb runs when the element's bindings are cleared.
func (e *Element) OnMounted(cb func() func()) *Element {
	if e.disposed {
		return e
	}
	if !e.isMounted {
		e.mountedCallbacks = append(e.mountedCallbacks, cb)
		return e
	}
	var teardown func()
	e.reg.runIsolated("mounted", e.name, func() { teardown = cb() })
	if teardown != nil {
		e.cleanups.add(teardown)
	}
	return e
}

func (e *Element) addChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
	e.childIndex[child.name] = child
}

func (e *Element) unlink(child *Element) {
	if child.isClone {
		for i, c := range e.clones {
			if c == child {
				e.clones = append(e.clones[:i], e.clones[i+1:]...)
				break
			}
		}
		return
	}
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			break
		}
	}
	if e.childIndex[child.name] == child {
		delete(e.childIndex, child.name)
	}
}

// runCleanups runs every registered cleanup in registration order, including
// cleanups registered while running.
func (e *Element) runCleanups() {
	for e.cleanups.len() > 0 {
		for _, c := range e.cleanups.take(nil) {
			e.reg.runIsolated("cleanup", e.name, c.fn)
		}
	}
}

func (e *Element) removeListeners() {
	if e.node != nil {
		for _, l := range e.eventListeners {
			e.node.RemoveEventListener(l)
		}
	}
	e.eventListeners = nil
	e.eventCleanups = nil
}

// Dispose tears the element down: clones and children first, then pending
// mounted callbacks, listeners and cleanups. It then unlinks the element
// from its owner and detaches its node. Dispose is idempotent.
func (e *Element) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	clones := e.clones
	e.clones = nil
	for _, c := range clones {
		c.Dispose()
	}

	children := e.children
	e.children = nil
	e.childIndex = make(map[string]*Element)
	for _, c := range children {
		c.Dispose()
	}

	pending := e.mountedCallbacks
	e.mountedCallbacks = nil
	for _, cb := range pending {
		e.reg.runIsolated("mounted", e.name, func() {
			if teardown := cb(); teardown != nil {
				teardown()
			}
		})
	}

	e.keyToIndex = make(map[any]int)
	e.removeListeners()
	e.runCleanups()
	e.valueGetter = make(map[string]func() any)

	if e.parent != nil {
		e.parent.unlink(e)
		e.parent = nil
	} else if e.component != nil {
		e.component.forgetElement(e)
	}

	if e.node != nil {
		e.node.Remove()
		e.node = nil
	}
	if e.isClone {
		e.reg.metrics.clonesDisposed.Inc()
	}
}

// clearBindings tears down the directives of e and its children without
// touching nodes or ownership, so the same elements can be bound again.
func clearBindings(e *Element) {
	if e == nil {
		return
	}
	for _, c := range e.Children() {
		clearBindings(c)
	}
	e.runCleanups()
	e.valueGetter = make(map[string]func() any)
}
