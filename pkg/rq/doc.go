// Package rq binds reactive state to named regions of a document.
//
// A component host carries descendants marked with rq="<name>". Querying a
// name returns an *Element, and directives on the element keep one aspect of
// its node in sync with reactive values:
//
//	reg := rq.NewRegistry()
//	count := reactive.NewSignal(0)
//
//	c, err := reg.Mount("counter", host, func(c *rq.Component) func() {
//	    c.Query("display").Text(count)
//	    c.Query("inc").On("click", func(*rq.Element, *dom.Event) {
//	        count.Update(func(n int) int { return n + 1 })
//	    })
//	    return nil
//	})
//
// Directive values are constants, accessors (func() T or func(*Element) T) or
// reactive references (anything with Get() T, such as *reactive.Signal[T]).
// Accessors are re-evaluated whenever a signal they read changes.
//
// # Structure
//
// If mounts a cloned template while a condition holds and rebuilds the
// subtree from scratch each time it is shown. For keeps one clone of a
// template per item of a slice. Keyed lists (ForKeyed, or Element.For with a
// key function) preserve clone identity across reorders and only re-run the
// item setup for items whose value changed. List passes are queued on the
// registry's scheduler and run by Registry.Flush, so a burst of changes
// results in a single pass.
//
// # Lifecycle
//
// Every element owns its children, its list clones, its event listeners and
// the teardown of every directive bound to it. Element.Dispose releases all
// of them depth-first and detaches the node; it is safe to call twice.
// Failures inside cleanups are recovered, logged and counted so that
// disposal always runs to completion.
//
// A registry is not safe for concurrent use. Hosts that serve several
// documents give each one its own registry.
package rq
