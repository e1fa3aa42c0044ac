package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
	"github.com/vango-dev/requery/pkg/rq"
)

type todo struct {
	ID    int
	Title string
	Done  bool
}

const (
	filterAll    = "all"
	filterActive = "active"
	filterDone   = "done"
)

func defineTodos(r *rq.Registry) {
	r.Define("todos", rq.Definition{
		Store: map[string]any{"filter": filterAll},
		Setup: setupTodos,
	})
}

func setupTodos(c *rq.Component) func() {
	var nextID int
	newTodo := func(title string) todo {
		nextID++
		return todo{ID: nextID, Title: title}
	}

	var seed []todo
	if titles, ok := c.Prop("seed").([]any); ok {
		for _, t := range titles {
			if s, ok := t.(string); ok {
				seed = append(seed, newTodo(s))
			}
		}
	}
	todos := reactive.NewSliceSignal(seed)
	draft := reactive.NewSignal("")
	filter := func() string {
		f, _ := c.Store.Key("filter").(string)
		return f
	}

	visible := reactive.NewMemo(func() []todo {
		f := filter()
		var out []todo
		for _, t := range todos.Get() {
			if f == filterAll || (f == filterDone) == t.Done {
				out = append(out, t)
			}
		}
		return out
	})

	add := func() {
		title := strings.TrimSpace(draft.Peek())
		if title == "" {
			return
		}
		reactive.Batch(func() {
			todos.Append(newTodo(title))
			draft.Set("")
		})
	}

	c.Query("draft").
		Bind("value", draft).
		On("input", func(_ *rq.Element, evt *dom.Event) { draft.Set(evt.Value) }).
		On("keydown", func(_ *rq.Element, evt *dom.Event) {
			if evt.Key == "Enter" {
				add()
			}
		})
	c.Query("add").
		Bind("disabled", func() bool { return strings.TrimSpace(draft.Get()) == "" }).
		On("click", func(*rq.Element, *dom.Event) { add() })

	byID := func(id int) func(todo) bool {
		return func(t todo) bool { return t.ID == id }
	}

	rq.ForKeyed(c.Query("item"), visible.Get, func(t todo) int { return t.ID }, func(el *rq.Element, t todo) {
		el.Bind("class.done", t.Done)
		el.Query("title").Text(t.Title)
		el.Query("done").
			Bind("checked", t.Done).
			On("click", func(*rq.Element, *dom.Event) {
				todos.UpdateWhere(byID(t.ID), func(t todo) todo {
					t.Done = !t.Done
					return t
				})
			})
		el.Query("remove").On("click", func(*rq.Element, *dom.Event) {
			todos.RemoveWhere(byID(t.ID))
		})
	})

	c.Query("empty").If(func() bool { return len(visible.Get()) == 0 })

	c.Query("remaining").Text(func() string {
		n := 0
		for _, t := range todos.Get() {
			if !t.Done {
				n++
			}
		}
		if n == 1 {
			return "1 item left"
		}
		return fmt.Sprintf("%d items left", n)
	})

	for _, f := range []string{filterAll, filterActive, filterDone} {
		c.Query("filter-"+f).
			Bind("class.selected", func() bool { return filter() == f }).
			On("click", func(*rq.Element, *dom.Event) { c.Store.SetKey("filter", f) })
	}

	c.Query("clear").
		Show(func() bool {
			for _, t := range todos.Get() {
				if t.Done {
					return true
				}
			}
			return false
		}).
		On("click", func(*rq.Element, *dom.Event) {
			todos.RemoveWhere(func(t todo) bool { return t.Done })
		})

	return nil
}
