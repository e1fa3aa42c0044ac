package dom

import "sync/atomic"

// MutationKind identifies a change reported to observers.
type MutationKind uint8

const (
	MutationInsert     MutationKind = iota + 1 // node inserted or moved
	MutationRemove                             // node detached
	MutationSetAttr                            // attribute set
	MutationRemoveAttr                         // attribute removed
	MutationSetText                            // text or comment data changed
	MutationSetValue                           // form control value changed
)

// String returns the name of the mutation kind.
func (k MutationKind) String() string {
	switch k {
	case MutationInsert:
		return "insert"
	case MutationRemove:
		return "remove"
	case MutationSetAttr:
		return "set-attr"
	case MutationRemoveAttr:
		return "remove-attr"
	case MutationSetText:
		return "set-text"
	case MutationSetValue:
		return "set-value"
	default:
		return "unknown"
	}
}

// Mutation describes one change to the connected tree.
type Mutation struct {
	Kind   MutationKind
	Target *Node

	// Parent and Before locate an insert. Before is nil for an append.
	Parent *Node
	Before *Node

	// Moved is set for inserts of a node that was already connected.
	Moved bool

	// Name and Value carry attribute names and values, text data or form
	// values.
	Name  string
	Value string
}

// Observer receives mutations of connected nodes.
type Observer interface {
	Observe(m Mutation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(m Mutation)

// Observe implements Observer.
func (f ObserverFunc) Observe(m Mutation) { f(m) }

// Document owns a tree of nodes and hands out node ids.
type Document struct {
	root      *Node
	nextID    atomic.Uint64
	observers []*observerEntry
}

type observerEntry struct {
	o       Observer
	removed bool
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.newNode(DocumentNode)
	return d
}

func (d *Document) newNode(t NodeType) *Node {
	return &Node{
		id:   d.nextID.Add(1),
		Type: t,
		doc:  d,
	}
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return d.root
}

// Body returns the <body> element, or the document node when there is none.
func (d *Document) Body() *Node {
	if body := d.root.Find(func(n *Node) bool { return n.IsElement("body") }); body != nil {
		return body
	}
	return d.root
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode)
	n.tag = lower(tag)
	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(data string) *Node {
	n := d.newNode(TextNode)
	n.data = data
	return n
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(data string) *Node {
	n := d.newNode(CommentNode)
	n.data = data
	return n
}

// CreateFragment creates a detached fragment. Inserting a fragment moves its
// children instead of the fragment itself.
func (d *Document) CreateFragment() *Node {
	return d.newNode(FragmentNode)
}

// NodeByID finds a connected node by id.
func (d *Document) NodeByID(id uint64) *Node {
	if d.root.id == id {
		return d.root
	}
	return d.root.Find(func(n *Node) bool { return n.id == id })
}

// Observe registers an observer and returns a function that removes it.
func (d *Document) Observe(o Observer) (cancel func()) {
	entry := &observerEntry{o: o}
	d.observers = append(d.observers, entry)
	return func() {
		if entry.removed {
			return
		}
		entry.removed = true
		for i, e := range d.observers {
			if e == entry {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) emit(m Mutation) {
	if len(d.observers) == 0 {
		return
	}
	observers := make([]*observerEntry, len(d.observers))
	copy(observers, d.observers)
	for _, e := range observers {
		if !e.removed {
			e.o.Observe(m)
		}
	}
}
