package rq_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/requery/pkg/rq"
	"github.com/vango-dev/requery/pkg/rqtest"
)

func TestComponent_PropsFromAttributes(t *testing.T) {
	h := rqtest.New(t, `<div rq-component="card" prop:title="Hello" prop:initial-count="3" prop:open="true" prop:tags='["a","b"]'><h2 rq="title"></h2><span rq="count"></span></div>`)
	c := h.Mount("card", func(c *rq.Component) func() {
		c.Query("title").Text(func() any { return c.Prop("title") })
		c.Query("count").Text(func() any { return c.Prop("initialCount") })
		return nil
	})

	if got := c.Prop("initialCount"); got != float64(3) {
		t.Errorf("initialCount = %#v, want 3", got)
	}
	if got := c.Prop("open"); got != true {
		t.Errorf("open = %#v, want true", got)
	}
	if got := c.Prop("tags"); !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Errorf("tags = %#v", got)
	}
	h.ExpectText("title", "Hello")

	c.Host().SetAttribute("prop:initial-count", "5")
	h.ExpectText("count", "5")
	c.Host().SetAttribute("prop:title", "Bye")
	h.ExpectText("title", "Bye")
	c.Host().RemoveAttribute("prop:title")
	h.ExpectText("title", "")
}

func TestComponent_DefinitionDefaultsAndStore(t *testing.T) {
	h := rqtest.New(t, `<div rq-component="counter" prop:step="2"><span rq="n"></span></div>`)
	h.Registry.Define("counter", rq.Definition{
		Props: map[string]any{"step": 1, "label": "n"},
		Store: map[string]any{"count": 10},
		Setup: func(c *rq.Component) func() {
			c.Query("n").Text(func() any { return c.Store.Key("count") })
			return nil
		},
	})
	mounted, err := h.Registry.MountAll(h.Doc.Root())
	if err != nil || len(mounted) != 1 {
		t.Fatalf("MountAll() = %v, %v", mounted, err)
	}
	c := mounted[0]
	if c.Prop("step") != float64(2) || c.Prop("label") != "n" {
		t.Errorf("props = %v", c.Props.Get())
	}
	h.ExpectText("n", "10")
	c.Store.SetKey("count", 11)
	h.ExpectText("n", "11")
}

const nestedMarkup = `<div rq-component="board">` +
	`<div rq-component="column" prop:key="todo"><p rq="title"></p></div>` +
	`<div rq-component="column" prop:key="done"><p rq="title"></p></div>` +
	`</div>`

func TestMountAll_NestedInDocumentOrder(t *testing.T) {
	h := rqtest.New(t, nestedMarkup)
	var order []string
	h.Registry.Define("board", rq.Definition{Setup: func(c *rq.Component) func() {
		order = append(order, c.Key())
		return nil
	}})
	h.Registry.Define("column", rq.Definition{Setup: func(c *rq.Component) func() {
		order = append(order, c.Key())
		c.Query("title").Text(c.Key())
		return nil
	}})

	mounted, err := h.Registry.MountAll(h.Doc.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(mounted) != 3 || !reflect.DeepEqual(order, []string{"board", "todo", "done"}) {
		t.Fatalf("order = %v", order)
	}
	board := mounted[0]
	if board.Child("todo") == nil || board.Child("todo").Parent() != board {
		t.Error("columns should nest under the board")
	}
	if len(h.Registry.Roots()) != 1 {
		t.Errorf("roots = %d, want 1", len(h.Registry.Roots()))
	}
	h.ExpectTexts("title", "todo", "done")

	done, err := h.Registry.Lookup("column", "done")
	if err != nil || done != board.Child("done") {
		t.Errorf("Lookup(column, done) = %v, %v", done, err)
	}
	if _, err := h.Registry.Lookup("column", "archived"); !errors.Is(err, rq.ErrComponentNotFound) {
		t.Errorf("Lookup error = %v, want ErrComponentNotFound", err)
	}
	if h.Registry.ComponentAt(done.Host()) != done {
		t.Error("ComponentAt should find the column")
	}

	again, err := h.Registry.MountAll(h.Doc.Root())
	if err != nil || len(again) != 0 {
		t.Errorf("second MountAll = %v, %v; want nothing new", again, err)
	}
}

func TestMount_DuplicateInstanceKey(t *testing.T) {
	h := rqtest.New(t, `<div rq-component="list"><div class="a" rq-component="item"></div><div class="b" rq-component="item"></div></div>`)
	list := h.Mount("list", nil)

	items := list.Host().ElementChildren()
	if _, err := h.Registry.Mount("item", items[0], nil); err != nil {
		t.Fatal(err)
	}
	_, err := h.Registry.Mount("item", items[1], nil)
	if !errors.Is(err, rq.ErrDuplicateIdentity) {
		t.Fatalf("second Mount error = %v, want ErrDuplicateIdentity", err)
	}
	if len(list.Components()) != 1 {
		t.Errorf("children = %d, want 1", len(list.Components()))
	}

	if _, err := h.Registry.Mount("item", items[0], nil); !errors.Is(err, rq.ErrDuplicateIdentity) {
		t.Errorf("remount error = %v, want ErrDuplicateIdentity", err)
	}

	items[1].SetAttribute("prop:key", "second")
	if _, err := h.Registry.Mount("item", items[1], nil); err != nil {
		t.Errorf("mount with a distinct key: %v", err)
	}
}

func TestComponent_EmitBubblesToParent(t *testing.T) {
	h := rqtest.New(t, nestedMarkup)
	board := h.Mount("board", nil)
	column, err := h.Registry.Mount("column", board.Host().ElementChildren()[0], nil)
	if err != nil {
		t.Fatal(err)
	}

	var got []any
	unsubscribe := board.On("moved", func(detail any) { got = append(got, detail) })
	column.Emit("moved", map[string]any{"id": 7})
	if len(got) != 1 || !reflect.DeepEqual(got[0], map[string]any{"id": 7}) {
		t.Fatalf("details = %v", got)
	}

	unsubscribe()
	column.Emit("moved", 8)
	if len(got) != 1 {
		t.Error("listener should be removed")
	}
}

func TestComponent_DisposeCascades(t *testing.T) {
	h := rqtest.New(t, nestedMarkup)
	var cleaned []string
	board := h.Mount("board", func(c *rq.Component) func() {
		c.On("moved", func(any) { cleaned = append(cleaned, "listener ran") })
		return func() { cleaned = append(cleaned, "board") }
	})
	column, err := h.Registry.Mount("column", board.Host().ElementChildren()[0], func(c *rq.Component) func() {
		c.OnCleanup(func() { cleaned = append(cleaned, "column") })
		c.Query("title").Text("todo")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	title := column.Elements()[0]

	board.Dispose()
	board.Dispose()

	if !reflect.DeepEqual(cleaned, []string{"column", "board"}) {
		t.Errorf("cleanups = %v", cleaned)
	}
	if !title.Disposed() || column.Mounted() || board.Mounted() {
		t.Error("everything below the board should be disposed")
	}
	if _, err := h.Registry.Lookup("column", "todo"); err == nil {
		t.Error("disposed column is still registered")
	}
	if len(h.Registry.Roots()) != 0 {
		t.Error("board is still a root")
	}
	if board.Host().Parent() == nil {
		t.Error("host should stay in the document")
	}

	column.Emit("moved", nil)
	if len(cleaned) != 2 {
		t.Error("listener ran after dispose")
	}
}

func TestMount_SetupPanic(t *testing.T) {
	h := rqtest.New(t, nestedMarkup)
	_, err := h.Registry.Mount("board", h.Host("board"), func(c *rq.Component) func() {
		panic("broken setup")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, err := h.Registry.Lookup("board", ""); err == nil {
		t.Error("failed component should not be registered")
	}
	if _, err := h.Registry.Mount("board", h.Host("board"), nil); err != nil {
		t.Errorf("host should be reusable after a failed mount: %v", err)
	}
}

func TestRegistry_Close(t *testing.T) {
	h := rqtest.New(t, nestedMarkup)
	closed := 0
	c := h.Mount("board", func(c *rq.Component) func() {
		return func() { closed++ }
	})

	h.Registry.Close()
	h.Registry.Close()
	if closed != 1 {
		t.Errorf("cleanup ran %d times, want 1", closed)
	}
	c.Host().SetAttribute("prop:title", "x")
	if _, ok := c.Props.Lookup("title"); ok {
		t.Error("props should not follow attributes after Close")
	}
}
