package dom

import (
	"errors"
	"strings"
)

// NodeType is the node kind discriminator.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	FragmentNode
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	case FragmentNode:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// ErrHierarchy is returned when an insert would put a node inside itself or
// reference a node that is not a child.
var ErrHierarchy = errors.New("dom: hierarchy request error")

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of an in-memory document.
type Node struct {
	id   uint64
	Type NodeType
	doc  *Document

	tag   string
	data  string
	attrs []Attr

	// value is the live form value; hasValue is false until it is set.
	value    string
	hasValue bool

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	listeners map[string][]*Listener
}

// ID returns the node id, unique within its document.
func (n *Node) ID() uint64 { return n.id }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Tag returns the lowercase tag name of an element.
func (n *Node) Tag() string { return n.tag }

// Data returns the text of a text or comment node.
func (n *Node) Data() string { return n.data }

// IsElement reports whether n is an element, optionally with the given tag.
func (n *Node) IsElement(tag ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tag) == 0 {
		return true
	}
	for _, t := range tag {
		if n.tag == t {
			return true
		}
	}
	return false
}

// Parent returns the parent node.
func (n *Node) Parent() *Node { return n.parent }

// FirstChild returns the first child.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child.
func (n *Node) LastChild() *Node { return n.lastChild }

// NextSibling returns the next sibling.
func (n *Node) NextSibling() *Node { return n.nextSibling }

// PrevSibling returns the previous sibling.
func (n *Node) PrevSibling() *Node { return n.prevSibling }

// Children returns the child nodes in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns only the element children.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsConnected reports whether the node is attached to its document.
func (n *Node) IsConnected() bool {
	for p := n; p != nil; p = p.parent {
		if p.Type == DocumentNode {
			return true
		}
	}
	return false
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// AppendChild appends child, moving it if it is already in a tree.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends. Inserting a
// fragment moves the fragment's children.
func (n *Node) InsertBefore(child, ref *Node) error {
	if child == nil {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrHierarchy
	}
	if child.Contains(n) {
		return ErrHierarchy
	}
	if child == ref {
		return nil
	}

	if child.Type == FragmentNode {
		for _, c := range child.Children() {
			if err := n.InsertBefore(c, ref); err != nil {
				return err
			}
		}
		return nil
	}

	moved := child.IsConnected()
	if child.parent != nil {
		child.parent.unlink(child)
	}
	n.link(child, ref)

	if n.IsConnected() {
		n.doc.emit(Mutation{Kind: MutationInsert, Target: child, Parent: n, Before: ref, Moved: moved})
	} else if moved {
		n.doc.emit(Mutation{Kind: MutationRemove, Target: child})
	}
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrHierarchy
	}
	connected := child.IsConnected()
	n.unlink(child)
	if connected {
		n.doc.emit(Mutation{Kind: MutationRemove, Target: child, Parent: n})
	}
	return nil
}

// Remove detaches n from its parent. It is a no-op for a detached node.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	_ = n.parent.RemoveChild(n)
}

// ReplaceChild puts newChild where oldChild is and detaches oldChild.
func (n *Node) ReplaceChild(newChild, oldChild *Node) error {
	if oldChild == nil || oldChild.parent != n {
		return ErrHierarchy
	}
	if newChild == oldChild {
		return nil
	}
	if err := n.InsertBefore(newChild, oldChild); err != nil {
		return err
	}
	return n.RemoveChild(oldChild)
}

// ReplaceWith puts other in place of n. It is a no-op for a detached node.
func (n *Node) ReplaceWith(other *Node) {
	if n.parent == nil {
		return
	}
	_ = n.parent.ReplaceChild(other, n)
}

// Before inserts other right before n.
func (n *Node) Before(other *Node) {
	if n.parent == nil {
		return
	}
	_ = n.parent.InsertBefore(other, n)
}

// After inserts other right after n.
func (n *Node) After(other *Node) {
	if n.parent == nil {
		return
	}
	_ = n.parent.InsertBefore(other, n.nextSibling)
}

// RemoveChildren detaches every child.
func (n *Node) RemoveChildren() {
	for n.firstChild != nil {
		_ = n.RemoveChild(n.firstChild)
	}
}

func (n *Node) link(child, ref *Node) {
	child.parent = n
	if ref == nil {
		child.prevSibling = n.lastChild
		if n.lastChild != nil {
			n.lastChild.nextSibling = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return
	}
	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	ref.prevSibling = child
}

func (n *Node) unlink(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Clone copies the node with fresh ids. Listeners are not copied.
func (n *Node) Clone(deep bool) *Node {
	c := n.doc.newNode(n.Type)
	c.tag = n.tag
	c.data = n.data
	c.value = n.value
	c.hasValue = n.hasValue
	if len(n.attrs) > 0 {
		c.attrs = append([]Attr(nil), n.attrs...)
	}
	if deep {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			c.link(child.Clone(true), nil)
		}
	}
	return c
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode, CommentNode:
		return n.data
	}
	var b strings.Builder
	var walk func(*Node)
	walk = func(p *Node) {
		for c := p.firstChild; c != nil; c = c.nextSibling {
			switch c.Type {
			case TextNode:
				b.WriteString(c.data)
			case ElementNode, FragmentNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent replaces the children with a single text node, or changes
// the data of a text or comment node.
func (n *Node) SetTextContent(text string) {
	switch n.Type {
	case TextNode, CommentNode:
		if n.data == text {
			return
		}
		n.data = text
		if n.IsConnected() {
			n.doc.emit(Mutation{Kind: MutationSetText, Target: n, Value: text})
		}
		return
	}

	if text == "" {
		n.RemoveChildren()
		return
	}
	if c := n.firstChild; c != nil && c == n.lastChild && c.Type == TextNode {
		c.SetTextContent(text)
		return
	}
	n.RemoveChildren()
	_ = n.AppendChild(n.doc.CreateText(text))
}

// Find returns the first descendant (in document order) matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if pred(c) {
			return c
		}
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching pred, in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for c := p.firstChild; c != nil; c = c.nextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// QueryAttr returns the first descendant whose attribute attr equals value.
// Descendants of nodes for which prune returns true are skipped; the pruned
// node itself can still match.
func (n *Node) QueryAttr(attr, value string, prune func(*Node) bool) *Node {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.Type != ElementNode {
			continue
		}
		if v, ok := c.Attr(attr); ok && v == value {
			return c
		}
		if prune != nil && prune(c) {
			continue
		}
		if found := c.QueryAttr(attr, value, prune); found != nil {
			return found
		}
	}
	return nil
}

func lower(s string) string {
	return strings.ToLower(s)
}
