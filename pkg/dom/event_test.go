package dom

import (
	"strings"
	"testing"
)

func TestDispatchBubbles(t *testing.T) {
	d := NewDocument()
	outer := d.CreateElement("div")
	inner := d.CreateElement("button")
	_ = outer.AppendChild(inner)

	var order []string
	outer.AddEventListener("click", func(e *Event) {
		if e.Target != inner || e.CurrentTarget != outer {
			t.Errorf("target = %v current = %v", e.Target, e.CurrentTarget)
		}
		order = append(order, "outer")
	})
	inner.AddEventListener("click", func(*Event) { order = append(order, "inner") })

	inner.Dispatch(NewEvent("click", true))
	if strings.Join(order, ",") != "inner,outer" {
		t.Errorf("order = %v", order)
	}

	order = nil
	inner.Dispatch(NewEvent("click", false))
	if strings.Join(order, ",") != "inner" {
		t.Errorf("non-bubbling order = %v", order)
	}
}

func TestStopPropagationAndPreventDefault(t *testing.T) {
	d := NewDocument()
	outer := d.CreateElement("form")
	inner := d.CreateElement("button")
	_ = outer.AppendChild(inner)

	reached := false
	outer.AddEventListener("submit", func(*Event) { reached = true })
	inner.AddEventListener("submit", func(e *Event) {
		e.PreventDefault()
		e.StopPropagation()
	})

	if inner.Dispatch(NewEvent("submit", true)) {
		t.Error("Dispatch should report a prevented default")
	}
	if reached {
		t.Error("propagation was not stopped")
	}
}

func TestRemoveListenerDuringDispatch(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div")
	calls := 0
	var second *Listener
	n.AddEventListener("x", func(*Event) {
		calls++
		n.RemoveEventListener(second)
	})
	second = n.AddEventListener("x", func(*Event) { calls += 10 })

	n.Dispatch(NewEvent("x", false))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n.ListenerCount("x") != 1 {
		t.Errorf("ListenerCount = %d", n.ListenerCount("x"))
	}
}

func TestCustomEventDetail(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div")
	var detail any
	n.AddEventListener("saved", func(e *Event) { detail = e.Detail })
	evt := NewCustomEvent("saved", 42)
	if !evt.Bubbles || !evt.Composed {
		t.Error("custom events bubble and are composed")
	}
	n.Dispatch(evt)
	if detail != 42 {
		t.Errorf("detail = %v", detail)
	}
}
