package rq_test

import (
	"testing"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
	"github.com/vango-dev/requery/pkg/rq"
	"github.com/vango-dev/requery/pkg/rqtest"
)

func TestDispose_NoHandlersOrEffectsAfterwards(t *testing.T) {
	h := rqtest.New(t, formMarkup)
	count := reactive.NewSignal(0)
	clicks, renders := 0, 0
	c := h.Mount("form", func(c *rq.Component) func() {
		c.Query("title").Text(func() int {
			renders++
			return count.Get()
		})
		c.Query("save").On("click", func(*rq.Element, *dom.Event) { clicks++ })
		return nil
	})
	save := h.Find("save")

	c.Dispose()

	save.Dispatch(dom.NewEvent("click", true))
	count.Set(5)
	if clicks != 0 {
		t.Errorf("clicks = %d after dispose", clicks)
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if save.ListenerCount("click") != 0 {
		t.Error("listener left on the node")
	}
}

func TestDispose_IsIdempotent(t *testing.T) {
	h := rqtest.New(t, formMarkup)
	teardowns := 0
	var title *rq.Element
	h.Mount("form", func(c *rq.Component) func() {
		title = c.Query("title").OnMounted(func() func() {
			return func() { teardowns++ }
		})
		return nil
	})

	title.Dispose()
	title.Dispose()
	if teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", teardowns)
	}
	if !title.Disposed() || title.Node() != nil {
		t.Error("disposed element should drop its node")
	}
	// Directives on a disposed element do nothing.
	title.Text("late").Bind("class", "x").Show(false)
}

func TestDispose_ToleratesExternallyRemovedNode(t *testing.T) {
	h := rqtest.New(t, formMarkup)
	var title *rq.Element
	h.Mount("form", func(c *rq.Component) func() {
		title = c.Query("title").Text("x")
		return nil
	})
	h.Find("title").Remove()
	title.Dispose()
	if !title.Disposed() {
		t.Error("dispose should complete")
	}
}

func TestCleanupFailureIsIsolated(t *testing.T) {
	h := rqtest.New(t, formMarkup)
	ran := []string{}
	var title *rq.Element
	h.Mount("form", func(c *rq.Component) func() {
		title = c.Query("title").
			OnMounted(func() func() {
				return func() { panic("teardown exploded") }
			}).
			OnMounted(func() func() {
				return func() { ran = append(ran, "second") }
			})
		c.Query("save").OnMounted(func() func() {
			panic("mounted exploded")
		})
		return nil
	})

	title.Dispose()

	if len(ran) != 1 {
		t.Errorf("remaining cleanups did not run: %v", ran)
	}
	if !h.LogContains("cleanup failed") || !h.LogContains("E104") || !h.LogContains("teardown exploded") {
		t.Errorf("expected a cleanup failure log, logs:\n%s", h.Logs())
	}
	if got := h.Counter("requery_engine_cleanup_failures_total"); got != 2 {
		t.Errorf("cleanup failures = %v, want 2", got)
	}
}

func TestHandlerCanDisposeItsComponent(t *testing.T) {
	h := rqtest.New(t, formMarkup)
	var comp *rq.Component
	comp = h.Mount("form", func(c *rq.Component) func() {
		c.Query("save").On("click", func(*rq.Element, *dom.Event) { comp.Dispose() })
		return nil
	})
	save := h.Find("save")
	h.Click(save)
	if comp.Mounted() {
		t.Error("component should be disposed")
	}
	h.Click(save)
}

func TestListItemTeardownRunsOnRebuild(t *testing.T) {
	h := rqtest.New(t, listMarkup)
	items := reactive.NewSliceSignal([]todo{{1, false}, {2, false}})
	active := map[int]int{}
	h.Mount("todos", func(c *rq.Component) func() {
		rq.ForKeyed(c.Query("item"), items.Get, func(td todo) int { return td.ID }, func(el *rq.Element, td todo) {
			el.OnMounted(func() func() {
				active[td.ID]++
				return func() { active[td.ID]-- }
			})
		})
		return nil
	})
	if active[1] != 1 || active[2] != 1 {
		t.Fatalf("active = %v", active)
	}

	items.UpdateAt(1, func(td todo) todo { td.Done = true; return td })
	h.Flush()
	if active[2] != 1 {
		t.Errorf("rebuild should tear down the old binding first, active = %v", active)
	}

	items.RemoveAt(0)
	h.Flush()
	if active[1] != 0 || active[2] != 1 {
		t.Errorf("active = %v", active)
	}

	h.Registry.Close()
	if active[2] != 0 {
		t.Errorf("close should tear down every item, active = %v", active)
	}
}
