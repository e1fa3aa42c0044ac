// Package rqtest provides testing helpers for rq components.
//
// A Harness parses markup into a document, wires a registry with a captured
// logger and a private metrics registry, and records every mutation of the
// document so tests can assert on what changed, not only on the result.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := rqtest.New(t, `<div rq-component="counter">
//	        <span rq="display"></span><button rq="inc"></button>
//	    </div>`)
//
//	    count := reactive.NewSignal(0)
//	    h.Mount("counter", func(c *rq.Component) func() {
//	        c.Query("display").Text(count)
//	        c.Query("inc").On("click", func(*rq.Element, *dom.Event) {
//	            count.Update(func(n int) int { return n + 1 })
//	        })
//	        return nil
//	    })
//
//	    h.Click(h.Find("inc"))
//	    h.ExpectText("display", "1")
//	}
//
// # Mutations
//
// The recorder counts document mutations by kind. Reset it before the
// operation under test:
//
//	h.Mutations.Reset()
//	items.Move(0, 2)
//	h.Flush()
//	if got := h.Mutations.Moves(); got != 1 {
//	    t.Fatalf("moves = %d, want 1", got)
//	}
//
// # Logs and Metrics
//
// Warnings such as a missing binding node are logged, not returned. Use
// LogContains to assert on them, and Counter to read an engine metric by its
// full name:
//
//	if h.Counter("requery_engine_missing_nodes_total") != 1 { ... }
package rqtest
