package dom

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IDAttr is the attribute that carries node ids when rendering with ids.
const IDAttr = "data-rq-id"

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := NewDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := d.importNode(c); n != nil {
			d.root.link(n, nil)
		}
	}
	return d, nil
}

// ParseString reads a full HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup in the context of parent and returns detached
// nodes owned by d. A nil parent parses in a <body> context.
func (d *Document) ParseFragment(markup string, parent *Node) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if parent != nil && parent.Type == ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: parent.tag, DataAtom: atom.Lookup([]byte(parent.tag))}
	}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := d.importNode(p); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// SetInnerHTML replaces the children of n with parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := n.doc.ParseFragment(markup, n)
	if err != nil {
		return err
	}
	n.RemoveChildren()
	frag := n.doc.CreateFragment()
	for _, c := range nodes {
		frag.link(c, nil)
	}
	return n.AppendChild(frag)
}

func (d *Document) importNode(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.ElementNode:
		n = d.CreateElement(h.Data)
		for _, a := range h.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attr{Name: name, Value: a.Val})
		}
	case html.TextNode:
		n = d.CreateText(h.Data)
	case html.CommentNode:
		n = d.CreateComment(h.Data)
	default:
		return nil
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := d.importNode(c); child != nil {
			n.link(child, nil)
		}
	}
	return n
}

// RenderOption configures rendering.
type RenderOption func(*renderConfig)

type renderConfig struct {
	ids bool
}

// WithIDs adds the IDAttr attribute to every element.
func WithIDs() RenderOption {
	return func(c *renderConfig) { c.ids = true }
}

// Render writes n as HTML. The document node renders its children with a
// doctype.
func Render(w io.Writer, n *Node, opts ...RenderOption) error {
	cfg := renderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if n.Type == DocumentNode {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
	}
	if n.Type == DocumentNode || n.Type == FragmentNode {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			if err := html.Render(w, exportNode(c, &cfg)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, exportNode(n, &cfg))
}

// OuterHTML renders n and its subtree.
func (n *Node) OuterHTML(opts ...RenderOption) string {
	var buf bytes.Buffer
	_ = Render(&buf, n, opts...)
	return buf.String()
}

// InnerHTML renders the children of n.
func (n *Node) InnerHTML(opts ...RenderOption) string {
	cfg := renderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	var buf bytes.Buffer
	for c := n.firstChild; c != nil; c = c.nextSibling {
		_ = html.Render(&buf, exportNode(c, &cfg))
	}
	return buf.String()
}

func exportNode(n *Node, cfg *renderConfig) *html.Node {
	h := &html.Node{}
	switch n.Type {
	case ElementNode:
		h.Type = html.ElementNode
		h.Data = n.tag
		h.DataAtom = atom.Lookup([]byte(n.tag))
		for _, a := range n.attrs {
			if a.Name == "value" && n.hasValue && n.IsElement("input") {
				continue
			}
			h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
		if n.hasValue && n.IsElement("input") {
			h.Attr = append(h.Attr, html.Attribute{Key: "value", Val: n.value})
		}
		if cfg.ids {
			h.Attr = append(h.Attr, html.Attribute{Key: IDAttr, Val: strconv.FormatUint(n.id, 10)})
		}
	case TextNode:
		h.Type = html.TextNode
		h.Data = n.data
	case CommentNode:
		h.Type = html.CommentNode
		h.Data = n.data
	case FragmentNode, DocumentNode:
		h.Type = html.DocumentNode
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		h.AppendChild(exportNode(c, cfg))
	}
	return h
}
