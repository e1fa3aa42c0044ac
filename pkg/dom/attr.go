package dom

import (
	"sort"
	"strings"
)

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttribute returns the attribute value, or "" when absent.
func (n *Node) GetAttribute(name string) string {
	v, _ := n.Attr(name)
	return v
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// Attrs returns a copy of the attributes in document order.
func (n *Node) Attrs() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// SetAttribute sets an attribute. Setting the current value is a no-op.
func (n *Node) SetAttribute(name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			if a.Value == value {
				return
			}
			n.attrs[i].Value = value
			n.emitAttr(name, value)
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.emitAttr(name, value)
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			if n.IsConnected() {
				n.doc.emit(Mutation{Kind: MutationRemoveAttr, Target: n, Name: name})
			}
			return
		}
	}
}

func (n *Node) emitAttr(name, value string) {
	if n.IsConnected() {
		n.doc.emit(Mutation{Kind: MutationSetAttr, Target: n, Name: name, Value: value})
	}
}

// Classes returns the class list.
func (n *Node) Classes() []string {
	return strings.Fields(n.GetAttribute("class"))
}

// HasClass reports whether the class list contains name.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// ToggleClass adds or removes a single class.
func (n *Node) ToggleClass(name string, on bool) {
	classes := n.Classes()
	out := classes[:0]
	found := false
	for _, c := range classes {
		if c == name {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if on == found {
		return
	}
	if on {
		out = append(out, name)
	}
	if len(out) == 0 {
		n.RemoveAttribute("class")
		return
	}
	n.SetAttribute("class", strings.Join(out, " "))
}

type styleDecl struct {
	name  string
	value string
}

func parseStyle(css string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(css, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}
		decls = append(decls, styleDecl{name: name, value: value})
	}
	return decls
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.name+": "+d.value+";")
	}
	return strings.Join(parts, " ")
}

// StyleProperty returns an inline style property.
func (n *Node) StyleProperty(name string) string {
	for _, d := range parseStyle(n.GetAttribute("style")) {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

// Style returns the inline style as a map.
func (n *Node) Style() map[string]string {
	out := make(map[string]string)
	for _, d := range parseStyle(n.GetAttribute("style")) {
		out[d.name] = d.value
	}
	return out
}

// SetStyleProperty sets an inline style property. An empty value removes it;
// the style attribute is dropped when no property remains.
func (n *Node) SetStyleProperty(name, value string) {
	decls := parseStyle(n.GetAttribute("style"))
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.name == name {
			if value == "" {
				continue
			}
			d.value = value
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced && value != "" {
		out = append(out, styleDecl{name: name, value: value})
	}
	n.setStyleDecls(out)
}

// SetCSSText replaces the whole inline style.
func (n *Node) SetCSSText(css string) {
	n.setStyleDecls(parseStyle(css))
}

func (n *Node) setStyleDecls(decls []styleDecl) {
	if len(decls) == 0 {
		n.RemoveAttribute("style")
		return
	}
	n.SetAttribute("style", formatStyle(decls))
}

// IsFormControl reports whether n carries a live value property.
func (n *Node) IsFormControl() bool {
	return n.IsElement("input", "textarea", "select")
}

// Value returns the live value of a form control. Before it is set, the
// value attribute (input, select) or the text content (textarea) is used.
func (n *Node) Value() string {
	if n.hasValue {
		return n.value
	}
	if n.IsElement("textarea") {
		return n.TextContent()
	}
	return n.GetAttribute("value")
}

// SetValue sets the live value of a form control without touching the value
// attribute.
func (n *Node) SetValue(v string) {
	if n.hasValue && n.value == v {
		return
	}
	n.value = v
	n.hasValue = true
	if n.IsConnected() {
		n.doc.emit(Mutation{Kind: MutationSetValue, Target: n, Value: v})
	}
}

// SortedAttrNames returns attribute names sorted, for stable output.
func (n *Node) SortedAttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for _, a := range n.attrs {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}
