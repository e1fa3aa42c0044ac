package rq

import "github.com/vango-dev/requery/pkg/dom"

// On registers handler for events of the given type on the node. A second
// On for the same event replaces the first handler.
func (e *Element) On(event string, handler func(*Element, *dom.Event)) *Element {
	if e.disposed {
		return e
	}
	if e.node == nil {
		e.reg.warnMissing(e.name)
		return e
	}

	if existing, ok := e.eventListeners[event]; ok {
		e.node.RemoveEventListener(existing)
		if h := e.eventCleanups[event]; h != nil {
			e.cleanups.remove(h)
		}
	}

	node := e.node
	l := node.AddEventListener(event, func(evt *dom.Event) {
		handler(e, evt)
	})
	if e.eventListeners == nil {
		e.eventListeners = make(map[string]*dom.Listener)
		e.eventCleanups = make(map[string]*cleanupEntry)
	}
	e.eventListeners[event] = l
	e.eventCleanups[event] = e.cleanups.add(func() {
		node.RemoveEventListener(l)
		if e.eventListeners[event] == l {
			delete(e.eventListeners, event)
			delete(e.eventCleanups, event)
		}
	})
	return e
}
