package rq

import "log/slog"

// Text sets the text content of the node. nil renders as empty text and
// maps, slices and structs as indented JSON.
func (e *Element) Text(value any) *Element {
	if e.disposed {
		return e
	}
	createDisposableEffect(e, value, func(any) any { return "" }, func(get func() any) {
		text := toDisplayString(get())
		if e.node == nil {
			return
		}
		e.node.SetTextContent(text)
	})
	return e
}

// HTML replaces the children of the node with parsed markup.
func (e *Element) HTML(value any) *Element {
	if e.disposed {
		return e
	}
	createDisposableEffect(e, value, func(any) any { return "" }, func(get func() any) {
		markup := toString(get())
		if e.node == nil {
			return
		}
		if err := e.node.SetInnerHTML(markup); err != nil {
			e.reg.logger.Error("html binding failed",
				slog.String("name", e.name),
				slog.Any("error", err),
			)
		}
	})
	return e
}

// Show hides the node with display: none while value is false. The display
// value the node had when Show was called is restored when it is shown.
func (e *Element) Show(value any) *Element {
	if e.disposed {
		return e
	}
	initial := ""
	if e.node != nil {
		initial = e.node.StyleProperty("display")
	}
	createDisposableEffect(e, value, func(any) any { return false }, func(get func() any) {
		visible := truthy(get())
		if e.node == nil {
			return
		}
		if visible {
			e.node.SetStyleProperty("display", initial)
		} else {
			e.node.SetStyleProperty("display", "none")
		}
	})
	return e
}
