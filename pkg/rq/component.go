package rq

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
)

// SetupFunc binds a component. A returned function runs when the component
// is disposed.
type SetupFunc func(c *Component) func()

// Definition describes a component that MountAll can mount by name.
type Definition struct {
	// Props are the default props, overridden by prop:* attributes.
	Props map[string]any

	// Store is the initial store.
	Store map[string]any

	Setup SetupFunc
}

// Component is a mounted component instance.
type Component struct {
	reg    *Registry
	name   string
	key    string
	host   *dom.Node
	parent *Component

	elements   []*Element
	elementIdx map[string]*Element
	components []*Component
	childIdx   map[string]*Component

	cleanups cleanupList

	// Props holds values parsed from prop:* attributes of the host. They
	// follow attribute changes while the host is in the document.
	Props *reactive.MapSignal[string, any]

	// Store holds component state.
	Store *reactive.MapSignal[string, any]

	mounted  bool
	disposed bool
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Key returns the instance key: the prop:key attribute, or the name.
func (c *Component) Key() string { return c.key }

// Host returns the host node.
func (c *Component) Host() *dom.Node { return c.host }

// Parent returns the nearest mounted ancestor component.
func (c *Component) Parent() *Component { return c.parent }

// Registry returns the owning registry.
func (c *Component) Registry() *Registry { return c.reg }

// Mounted reports whether setup completed and the component is not disposed.
func (c *Component) Mounted() bool { return c.mounted }

// Child returns the nested component with the given instance key.
func (c *Component) Child(key string) *Component { return c.childIdx[key] }

// Components returns the nested components in mount order.
func (c *Component) Components() []*Component {
	return append([]*Component(nil), c.components...)
}

// Elements returns the top-level elements in query order.
func (c *Component) Elements() []*Element {
	return append([]*Element(nil), c.elements...)
}

// Query returns the top-level element bound to rq="name". Repeated queries
// return the same element.
func (c *Component) Query(name string) *Element {
	if e, ok := c.elementIdx[name]; ok {
		return e
	}
	e := bindElement(name, c, nil, nil)
	if c.disposed {
		return e
	}
	c.elements = append(c.elements, e)
	c.elementIdx[name] = e
	return e
}

func (c *Component) forgetElement(e *Element) {
	if c.elementIdx[e.name] != e {
		return
	}
	delete(c.elementIdx, e.name)
	for i, x := range c.elements {
		if x == e {
			c.elements = append(c.elements[:i], c.elements[i+1:]...)
			break
		}
	}
}

// Prop returns a prop value, tracked.
func (c *Component) Prop(name string) any {
	return c.Props.Key(name)
}

// OnCleanup registers fn to run when the component is disposed.
func (c *Component) OnCleanup(fn func()) {
	c.cleanups.add(fn)
}

// On calls fn with the detail of every event of the given type reaching the
// host, including events emitted by nested components. The listener is
// removed by the returned function or when the component is disposed.
func (c *Component) On(event string, fn func(detail any)) (unsubscribe func()) {
	l := c.host.AddEventListener(event, func(evt *dom.Event) {
		fn(evt.Detail)
	})
	h := c.cleanups.add(func() { c.host.RemoveEventListener(l) })
	return func() {
		c.host.RemoveEventListener(l)
		c.cleanups.remove(h)
	}
}

// Emit dispatches a bubbling, composed custom event from the host.
func (c *Component) Emit(event string, detail any) {
	c.host.Dispatch(dom.NewCustomEvent(event, detail))
}

// Dispose tears down nested components, elements and cleanups, then removes
// the component from the registry. The host node stays in the document.
func (c *Component) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.mounted = false

	children := c.components
	c.components = nil
	for _, child := range children {
		child.Dispose()
	}
	c.childIdx = make(map[string]*Component)

	elements := c.elements
	c.elements = nil
	c.elementIdx = make(map[string]*Element)
	for _, e := range elements {
		e.Dispose()
	}

	for c.cleanups.len() > 0 {
		for _, h := range c.cleanups.take(nil) {
			c.reg.runIsolated("component", c.name, h.fn)
		}
	}

	if c.parent != nil {
		c.parent.removeChild(c)
		c.parent = nil
	}
	c.reg.forget(c)
	c.reg.logger.Debug("component disposed",
		slog.String("component", c.name),
		slog.String("key", c.key),
	)
}

func (c *Component) removeChild(child *Component) {
	if c.childIdx[child.key] == child {
		delete(c.childIdx, child.key)
	}
	for i, x := range c.components {
		if x == child {
			c.components = append(c.components[:i], c.components[i+1:]...)
			return
		}
	}
}

// parseProps reads prop:* attributes of host over defaults.
func parseProps(host *dom.Node, defaults map[string]any) map[string]any {
	props := make(map[string]any, len(defaults))
	for k, v := range defaults {
		props[k] = v
	}
	for _, a := range host.Attrs() {
		if name, ok := strings.CutPrefix(a.Name, propPrefix); ok {
			props[kebabToCamel(name)] = parseAttributeValue(a.Value)
		}
	}
	return props
}

const (
	propPrefix = "prop:"
	propKey    = "prop:key"
)

// instanceKey returns the prop:key attribute, or the component name.
func instanceKey(name string, host *dom.Node) string {
	if key := host.GetAttribute(propKey); key != "" {
		return key
	}
	return name
}
