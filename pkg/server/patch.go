package server

import (
	"github.com/vango-dev/requery/pkg/dom"
)

// Patch operations sent to the client.
const (
	OpSetAttr    = "attr"
	OpRemoveAttr = "rmattr"
	OpSetValue   = "value"
	OpChildren   = "children"
)

// Patch is one change the client applies to its copy of the page. Elements
// are addressed by the data-rq-id attribute rendered into the page.
type Patch struct {
	Op    string `json:"op"`
	ID    uint64 `json:"id"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// patchCollector turns the mutation stream of a document into patches.
//
// Attribute and value changes on elements map to single patches. Any change
// to the child list of an element (inserts, removals, moves and text edits)
// marks the element, and the client receives its children re-rendered once
// per flush. Text and comment nodes carry no id in the page, which is why
// structural changes go through the parent.
type patchCollector struct {
	attrs []dom.Mutation
	dirty map[*dom.Node]bool
	order []*dom.Node
}

func newPatchCollector() *patchCollector {
	return &patchCollector{dirty: make(map[*dom.Node]bool)}
}

// Observe implements dom.Observer.
func (c *patchCollector) Observe(m dom.Mutation) {
	switch m.Kind {
	case dom.MutationSetAttr, dom.MutationRemoveAttr, dom.MutationSetValue:
		if m.Target.Type == dom.ElementNode {
			c.attrs = append(c.attrs, m)
		}
	case dom.MutationInsert, dom.MutationRemove:
		c.mark(m.Parent)
	case dom.MutationSetText:
		c.mark(m.Target.Parent())
	}
}

func (c *patchCollector) mark(n *dom.Node) {
	if n == nil || c.dirty[n] {
		return
	}
	c.dirty[n] = true
	c.order = append(c.order, n)
}

// forgetValue drops collected value changes of n. Values typed by the
// client are already on its page.
func (c *patchCollector) forgetValue(n *dom.Node) {
	kept := c.attrs[:0]
	for _, m := range c.attrs {
		if m.Kind == dom.MutationSetValue && m.Target == n {
			continue
		}
		kept = append(kept, m)
	}
	c.attrs = kept
}

// Pending reports whether any mutation was collected since the last Drain.
func (c *patchCollector) Pending() bool {
	return len(c.attrs) > 0 || len(c.order) > 0
}

// Drain returns the patches for everything collected and resets the
// collector. Changes inside a re-rendered element are dropped since the
// rendered children already carry them.
func (c *patchCollector) Drain() []Patch {
	defer c.reset()

	var roots []*dom.Node
	for _, n := range c.order {
		if n.Type != dom.ElementNode || !n.IsConnected() || c.insideDirty(n) {
			continue
		}
		roots = append(roots, n)
	}

	patches := make([]Patch, 0, len(c.attrs)+len(roots))
	for _, m := range c.attrs {
		if !m.Target.IsConnected() || c.insideDirty(m.Target) {
			continue
		}
		p := Patch{ID: m.Target.ID(), Name: m.Name, Value: m.Value}
		switch m.Kind {
		case dom.MutationSetAttr:
			p.Op = OpSetAttr
		case dom.MutationRemoveAttr:
			p.Op = OpRemoveAttr
		case dom.MutationSetValue:
			p.Op = OpSetValue
		}
		patches = append(patches, p)
	}
	for _, n := range roots {
		patches = append(patches, Patch{
			Op:   OpChildren,
			ID:   n.ID(),
			HTML: n.InnerHTML(dom.WithIDs()),
		})
	}
	return patches
}

// insideDirty reports whether a strict ancestor of n is marked.
func (c *patchCollector) insideDirty(n *dom.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if c.dirty[p] {
			return true
		}
	}
	return false
}

func (c *patchCollector) reset() {
	c.attrs = nil
	c.order = nil
	c.dirty = make(map[*dom.Node]bool)
}
