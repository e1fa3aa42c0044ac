package dom

import (
	"errors"
	"strings"
	"testing"
)

func tags(nodes []*Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n.Type {
		case ElementNode:
			parts = append(parts, n.Tag())
		default:
			parts = append(parts, "#"+n.Data())
		}
	}
	return strings.Join(parts, ",")
}

func TestInsertAndMove(t *testing.T) {
	d := NewDocument()
	ul := d.CreateElement("ul")
	a, b, c := d.CreateElement("a"), d.CreateElement("b"), d.CreateElement("c")
	for _, n := range []*Node{a, b, c} {
		if err := ul.AppendChild(n); err != nil {
			t.Fatal(err)
		}
	}
	if got := tags(ul.Children()); got != "a,b,c" {
		t.Fatalf("children = %s", got)
	}

	if err := ul.InsertBefore(c, a); err != nil {
		t.Fatal(err)
	}
	if got := tags(ul.Children()); got != "c,a,b" {
		t.Errorf("after move = %s", got)
	}
	if ul.FirstChild() != c || ul.LastChild() != b {
		t.Error("first/last pointers not updated")
	}
	if a.PrevSibling() != c || a.NextSibling() != b {
		t.Error("sibling pointers not updated")
	}
}

func TestInsertBeforeRejectsForeignRef(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("div")
	other := d.CreateElement("div")
	ref := d.CreateElement("span")
	_ = other.AppendChild(ref)

	err := p.InsertBefore(d.CreateElement("i"), ref)
	if !errors.Is(err, ErrHierarchy) {
		t.Errorf("err = %v, want ErrHierarchy", err)
	}
	if err := p.AppendChild(p); !errors.Is(err, ErrHierarchy) {
		t.Errorf("appending self: err = %v", err)
	}
}

func TestFragmentInsertMovesChildren(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("div")
	frag := d.CreateFragment()
	_ = frag.AppendChild(d.CreateElement("a"))
	_ = frag.AppendChild(d.CreateElement("b"))

	_ = p.AppendChild(frag)
	if got := tags(p.Children()); got != "a,b" {
		t.Errorf("children = %s", got)
	}
	if frag.FirstChild() != nil {
		t.Error("fragment should be empty after insert")
	}
}

func TestRemoveAndReplace(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("div")
	a, b := d.CreateElement("a"), d.CreateElement("b")
	_ = p.AppendChild(a)
	_ = p.AppendChild(b)

	marker := d.CreateComment("if")
	a.ReplaceWith(marker)
	if got := tags(p.Children()); got != "#if,b" {
		t.Errorf("after replace = %s", got)
	}
	if a.Parent() != nil {
		t.Error("replaced node should be detached")
	}

	b.Remove()
	b.Remove()
	if got := tags(p.Children()); got != "#if" {
		t.Errorf("after remove = %s", got)
	}
	marker.After(a)
	marker.Before(b)
	if got := tags(p.Children()); got != "b,#if,a" {
		t.Errorf("after before/after = %s", got)
	}
}

func TestCloneCopiesSubtreeWithFreshIDs(t *testing.T) {
	d := NewDocument()
	li := d.CreateElement("li")
	li.SetAttribute("class", "item")
	_ = li.AppendChild(d.CreateText("hello"))
	li.AddEventListener("click", func(*Event) {})

	c := li.Clone(true)
	if c.ID() == li.ID() {
		t.Error("clone must get a fresh id")
	}
	if c.GetAttribute("class") != "item" || c.TextContent() != "hello" {
		t.Errorf("clone = %q %q", c.GetAttribute("class"), c.TextContent())
	}
	if c.ListenerCount("click") != 0 {
		t.Error("listeners must not be cloned")
	}
	c.SetAttribute("class", "other")
	if li.GetAttribute("class") != "item" {
		t.Error("clone attrs share storage with the source")
	}

	shallow := li.Clone(false)
	if shallow.FirstChild() != nil {
		t.Error("shallow clone has children")
	}
}

func TestTextContent(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("p")
	_ = p.AppendChild(d.CreateText("a"))
	b := d.CreateElement("b")
	_ = b.AppendChild(d.CreateText("b"))
	_ = p.AppendChild(b)
	_ = p.AppendChild(d.CreateComment("ignored"))

	if got := p.TextContent(); got != "ab" {
		t.Errorf("TextContent = %q", got)
	}

	p.SetTextContent("x")
	if got := tags(p.Children()); got != "#x" {
		t.Errorf("children after SetTextContent = %s", got)
	}
	only := p.FirstChild()
	p.SetTextContent("y")
	if p.FirstChild() != only {
		t.Error("single text child should be updated in place")
	}
	p.SetTextContent("")
	if p.FirstChild() != nil {
		t.Error("empty text should leave no children")
	}
}

func TestQueryAttrPrunes(t *testing.T) {
	d := NewDocument()
	root := d.CreateElement("div")
	inner := d.CreateElement("section")
	inner.SetAttribute("rq-component", "child")
	hidden := d.CreateElement("span")
	hidden.SetAttribute("ref", "name")
	_ = inner.AppendChild(hidden)
	_ = root.AppendChild(inner)

	prune := func(n *Node) bool { return n.HasAttribute("rq-component") }
	if got := root.QueryAttr("ref", "name", prune); got != nil {
		t.Error("query should not descend into pruned subtree")
	}
	if got := root.QueryAttr("ref", "name", nil); got != hidden {
		t.Error("query without prune should find the node")
	}
	if got := root.QueryAttr("rq-component", "child", prune); got != inner {
		t.Error("pruned node itself should still match")
	}
}

func TestMutationsOnlyForConnectedNodes(t *testing.T) {
	d := NewDocument()
	var got []string
	cancel := d.Observe(ObserverFunc(func(m Mutation) {
		got = append(got, m.Kind.String())
	}))

	div := d.CreateElement("div")
	div.SetAttribute("id", "x")
	_ = div.AppendChild(d.CreateText("t"))
	if len(got) != 0 {
		t.Fatalf("detached changes emitted %v", got)
	}

	_ = d.Root().AppendChild(div)
	div.SetAttribute("id", "y")
	div.SetAttribute("id", "y")
	div.RemoveAttribute("id")
	div.FirstChild().SetTextContent("u")
	div.Remove()

	want := "insert,set-attr,remove-attr,set-text,remove"
	if strings.Join(got, ",") != want {
		t.Errorf("mutations = %v, want %s", got, want)
	}

	cancel()
	cancel()
	_ = d.Root().AppendChild(div)
	if len(got) != 5 {
		t.Error("cancelled observer still notified")
	}
}

func TestMoveReportsMoved(t *testing.T) {
	d := NewDocument()
	body := d.CreateElement("body")
	_ = d.Root().AppendChild(body)
	a, b := d.CreateElement("a"), d.CreateElement("b")
	_ = body.AppendChild(a)
	_ = body.AppendChild(b)

	var last Mutation
	d.Observe(ObserverFunc(func(m Mutation) { last = m }))
	_ = body.InsertBefore(b, a)
	if last.Kind != MutationInsert || !last.Moved || last.Before != a {
		t.Errorf("mutation = %+v", last)
	}
}

func TestNodeByID(t *testing.T) {
	d := NewDocument()
	div := d.CreateElement("div")
	if d.NodeByID(div.ID()) != nil {
		t.Error("detached nodes are not indexed")
	}
	_ = d.Root().AppendChild(div)
	if d.NodeByID(div.ID()) != div {
		t.Error("NodeByID did not find connected node")
	}
	if d.Body() != d.Root() {
		t.Error("Body without <body> should fall back to root")
	}
}
