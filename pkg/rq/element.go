package rq

import "github.com/vango-dev/requery/pkg/dom"

// Reserved attributes.
const (
	// AttrBinding names a bindable region: rq="<name>".
	AttrBinding = "rq"

	// AttrCloak hides a region until it is bound.
	AttrCloak = "rq-cloak"

	// AttrComponent marks a component host. Lookups do not descend into
	// nested hosts.
	AttrComponent = "rq-component"
)

// Value getter names.
const (
	getterIf   = "if"
	getterFor  = "for"
	getterItem = "for:item"
)

func isComponentHost(n *dom.Node) bool {
	return n.HasAttribute(AttrComponent)
}

// findBinding looks up rq="name" below scope, skipping nested components.
func findBinding(scope *dom.Node, name string) *dom.Node {
	if scope == nil {
		return nil
	}
	return scope.QueryAttr(AttrBinding, name, isComponentHost)
}

// bindElement returns the element for name. A child already bound under
// parent is returned as is. Without an explicit node the name is looked up
// below the parent's node, or below the component host for top-level
// elements. A missing node is logged; nested lookups then return the parent
// and top-level lookups an unmounted element whose directives do nothing.
func bindElement(name string, c *Component, node *dom.Node, parent *Element) *Element {
	if parent != nil {
		if existing, ok := parent.childIndex[name]; ok {
			return existing
		}
	}

	if node == nil {
		scope := c.host
		if parent != nil {
			scope = parent.node
		}
		node = findBinding(scope, name)
		if node == nil {
			c.reg.warnMissing(name)
			if parent != nil {
				return parent
			}
		}
	}

	e := newElement(name, c, node)
	if parent != nil {
		parent.addChild(e)
	}
	e.mount()
	return e
}

// mount marks e mounted, runs queued mounted callbacks and uncloaks the node.
func (e *Element) mount() {
	e.isMounted = true
	pending := e.mountedCallbacks
	e.mountedCallbacks = nil
	for _, cb := range pending {
		var teardown func()
		e.reg.runIsolated("mounted", e.name, func() { teardown = cb() })
		if teardown != nil {
			e.cleanups.add(teardown)
		}
	}
	if e.node != nil {
		e.node.RemoveAttribute(AttrCloak)
	}
}

// Query returns the child element bound to rq="name" inside e. Repeated
// queries return the same element. When no such node exists, a warning is
// logged and e itself is returned.
func (e *Element) Query(name string) *Element {
	if existing, ok := e.childIndex[name]; ok {
		return existing
	}
	if e.node == nil || e.disposed {
		e.reg.warnMissing(name)
		return e
	}
	return bindElement(name, e.component, nil, e)
}
