package rq

import "github.com/vango-dev/requery/pkg/reactive"

// If mounts a fresh clone of the node while condition is true and leaves a
// comment placeholder in its place otherwise. Each time the clone is shown,
// the element's bindings are reset and setup (if any) binds the new subtree
// from scratch. Setting the same condition again does nothing.
func (e *Element) If(condition any, setup ...func(*Element)) *Element {
	if e.disposed {
		return e
	}
	e.valueGetter[getterIf] = func() any { return resolve(e, condition) }
	if e.node == nil {
		e.reg.warnMissing(e.name)
		return e
	}

	template := e.node
	doc := template.Document()
	placeholder := doc.CreateComment(" [if] " + e.name + " ")
	template.Before(placeholder)
	template.Remove()
	e.node = nil

	var (
		rendered bool
		keep     = make(map[*cleanupEntry]bool, 2)
	)

	// reset drops everything bound to the element except the if binding.
	reset := func() {
		e.disposeChildren()
		e.removeListeners()
		for _, c := range e.cleanups.take(func(c *cleanupEntry) bool { return keep[c] }) {
			e.reg.runIsolated("cleanup", e.name, c.fn)
		}
		for name := range e.valueGetter {
			if name != getterIf {
				delete(e.valueGetter, name)
			}
		}
	}

	render := func(show bool) {
		if show == rendered {
			return
		}
		if show {
			clone := template.Clone(true)
			clone.RemoveAttribute(AttrCloak)
			if placeholder.Parent() != nil {
				placeholder.ReplaceWith(clone)
			}
			reset()
			e.node = clone
			for _, fn := range setup {
				reactive.Untracked(func() { fn(e) })
			}
		} else {
			if e.node != nil && e.node.Parent() != nil {
				e.node.ReplaceWith(placeholder)
			}
			reset()
			e.node = nil
		}
		rendered = show
	}

	// restore puts the template back so the element can be bound again.
	restore := e.cleanups.add(func() {
		e.disposeChildren()
		e.removeListeners()
		current := placeholder
		if e.node != nil && e.node.Parent() != nil {
			current = e.node
		}
		if current.Parent() != nil {
			current.ReplaceWith(template)
		}
		placeholder.Remove()
		if e.node != nil && e.node != template {
			e.node.Remove()
		}
		e.node = template
		rendered = false
	})
	keep[restore] = true

	d := newDisposableEffect(e, condition, func(any) any { return false }, func(get func() any) {
		render(truthy(get()))
	})
	keep[d.handle] = true
	d.start()
	return e
}

func (e *Element) disposeChildren() {
	children := e.children
	e.children = nil
	e.childIndex = make(map[string]*Element)
	for _, c := range children {
		c.Dispose()
	}
}
