package dom

// Event is dispatched to a node and, when it bubbles, to its ancestors.
type Event struct {
	Type string

	Target        *Node
	CurrentTarget *Node

	// Detail carries the payload of custom events.
	Detail any

	// Value carries the form value reported by a client for input events.
	Value string

	// Key carries the key name of keyboard events.
	Key string

	Bubbles  bool
	Composed bool

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event. UI events such as click and input bubble.
func NewEvent(typ string, bubbles bool) *Event {
	return &Event{Type: typ, Bubbles: bubbles}
}

// NewCustomEvent creates a bubbling, composed event with a detail payload.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Detail: detail, Bubbles: true, Composed: true}
}

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener is a registered event handler. It is the handle used to remove it.
type Listener struct {
	typ     string
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of type typ.
func (n *Node) AddEventListener(typ string, fn func(*Event)) *Listener {
	l := &Listener{typ: typ, fn: fn}
	if n.listeners == nil {
		n.listeners = make(map[string][]*Listener)
	}
	n.listeners[typ] = append(n.listeners[typ], l)
	return l
}

// RemoveEventListener unregisters a listener. A listener removed while an
// event is being dispatched is not called afterwards.
func (n *Node) RemoveEventListener(l *Listener) {
	if l == nil {
		return
	}
	l.removed = true
	list := n.listeners[l.typ]
	for i, existing := range list {
		if existing == l {
			n.listeners[l.typ] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(n.listeners[l.typ]) == 0 {
		delete(n.listeners, l.typ)
	}
}

// ListenerCount returns the number of listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch delivers evt to n and, if it bubbles, to each ancestor. It returns
// false when a handler called PreventDefault.
func (n *Node) Dispatch(evt *Event) bool {
	evt.Target = n
	for cur := n; cur != nil; cur = cur.parent {
		if cur != n && !evt.Bubbles {
			break
		}
		list := cur.listeners[evt.Type]
		if len(list) > 0 {
			evt.CurrentTarget = cur
			snapshot := make([]*Listener, len(list))
			copy(snapshot, list)
			for _, l := range snapshot {
				if !l.removed {
					l.fn(evt)
				}
			}
		}
		if evt.stopped {
			break
		}
	}
	evt.CurrentTarget = nil
	return !evt.defaultPrevented
}
