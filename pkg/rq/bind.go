package rq

import (
	"strings"

	"github.com/vango-dev/requery/pkg/dom"
)

// Bind keeps one property of the node in sync with value.
//
//   - "class" sets the class list, merged with the classes the node had when
//     it was first bound; value may be a string, a slice or a map of class
//     name to condition.
//   - "class.<name>" toggles a single class.
//   - "style" takes a CSS string or a map of property to value. Map keys may
//     be camelCase; properties missing from a new map are cleared.
//   - "value" sets the live value of input, textarea and select elements.
//   - "textContent" replaces the text of the node.
//   - any other key sets an attribute, removed when the value is nil or
//     false.
func (e *Element) Bind(property string, value any) *Element {
	if e.disposed {
		return e
	}
	if e.node != nil && property == "class" && e.staticClassNode != e.node {
		e.staticClassNode = e.node
		e.staticClass = e.node.GetAttribute("class")
	}

	var prev any
	createDisposableEffect(e, value, nil, func(get func() any) {
		next := get()
		if e.node == nil {
			return
		}
		setProp(e.node, property, next, prev, e.staticClass)
		prev = next
	})
	return e
}

func setProp(n *dom.Node, key string, value, prev any, staticClass string) {
	switch {
	case key == "textContent":
		n.SetTextContent(toDisplayString(value))

	case key == "class":
		n.SetAttribute("class", normalizeClass([]any{staticClass, value}))

	case strings.HasPrefix(key, "class."):
		n.ToggleClass(strings.TrimPrefix(key, "class."), truthy(value))

	case key == "style":
		setStyle(n, value, prev)

	case key == "value":
		if n.IsFormControl() {
			n.SetValue(toString(value))
		}

	default:
		if value == nil || value == false {
			n.RemoveAttribute(key)
			return
		}
		if value == true {
			n.SetAttribute(key, "")
			return
		}
		n.SetAttribute(key, toString(value))
	}
}

func setStyle(n *dom.Node, value, prev any) {
	css, props, isString := normalizeStyle(value)
	switch {
	case isString:
		if css == "" {
			n.RemoveAttribute("style")
			return
		}
		if prevCSS, _, prevIsString := normalizeStyle(prev); !prevIsString || prevCSS != css {
			n.SetCSSText(css)
		}
	case props == nil:
		n.RemoveAttribute("style")
	default:
		for _, k := range sortedKeys(props) {
			n.SetStyleProperty(k, props[k])
		}
		if _, prevProps, prevIsString := normalizeStyle(prev); !prevIsString {
			for k := range prevProps {
				if _, ok := props[k]; !ok {
					n.SetStyleProperty(k, "")
				}
			}
		}
	}
}
