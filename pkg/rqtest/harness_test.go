package rqtest_test

import (
	"testing"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
	"github.com/vango-dev/requery/pkg/rq"
	"github.com/vango-dev/requery/pkg/rqtest"
)

const counterMarkup = `<div rq-component="counter"><span rq="display"></span><button rq="inc">+</button><input rq="name"></div>`

func TestHarness_MountAndClick(t *testing.T) {
	h := rqtest.New(t, counterMarkup)
	count := reactive.NewSignal(0)

	c := h.Mount("counter", func(c *rq.Component) func() {
		c.Query("display").Text(count)
		c.Query("inc").On("click", func(*rq.Element, *dom.Event) {
			count.Update(func(n int) int { return n + 1 })
		})
		return nil
	})
	if !c.Mounted() {
		t.Fatal("expected mounted component")
	}

	h.ExpectText("display", "0")
	h.Click(h.Find("inc"))
	h.Click(h.Find("inc"))
	h.ExpectText("display", "2")
}

func TestHarness_Input(t *testing.T) {
	h := rqtest.New(t, counterMarkup)
	name := reactive.NewSignal("")

	h.Mount("counter", func(c *rq.Component) func() {
		c.Query("name").On("input", func(_ *rq.Element, evt *dom.Event) {
			name.Set(evt.Value)
		})
		c.Query("display").Text(name)
		return nil
	})

	h.Input(h.Find("name"), "ada")
	h.ExpectText("display", "ada")
	if got := h.Find("name").Value(); got != "ada" {
		t.Errorf("value = %q, want ada", got)
	}
}

func TestRecorder(t *testing.T) {
	h := rqtest.New(t, counterMarkup)
	h.Mount("counter", func(c *rq.Component) func() { return nil })
	h.Mutations.Reset()

	display := h.Find("display")
	display.SetAttribute("title", "x")
	display.Parent().AppendChild(display)

	if got := h.Mutations.Count(dom.MutationSetAttr); got != 1 {
		t.Errorf("set-attr count = %d, want 1", got)
	}
	if got := h.Mutations.Moves(); got != 1 {
		t.Errorf("moves = %d, want 1", got)
	}
	if got := h.Mutations.Len(); got != 2 {
		t.Errorf("len = %d, want 2", got)
	}
}

func TestHarness_LogsAndCounters(t *testing.T) {
	h := rqtest.New(t, counterMarkup)
	h.Mount("counter", func(c *rq.Component) func() {
		c.Query("missing").Text("x")
		return nil
	})

	if !h.LogContains("element not found") {
		t.Errorf("expected a missing node warning, logs:\n%s", h.Logs())
	}
	if got := h.Counter("requery_engine_missing_nodes_total"); got != 1 {
		t.Errorf("missing_nodes_total = %v, want 1", got)
	}
}
