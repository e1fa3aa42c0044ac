package dom

import "testing"

func TestClassToggle(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("li")

	n.ToggleClass("done", true)
	n.ToggleClass("active", true)
	n.ToggleClass("done", true)
	if got := n.GetAttribute("class"); got != "done active" {
		t.Errorf("class = %q", got)
	}
	n.ToggleClass("done", false)
	if !n.HasClass("active") || n.HasClass("done") {
		t.Errorf("class = %q", n.GetAttribute("class"))
	}
	n.ToggleClass("active", false)
	if n.HasAttribute("class") {
		t.Error("empty class list should drop the attribute")
	}
}

func TestStyleProperty(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div")
	n.SetAttribute("style", "color: red; margin:0")

	n.SetStyleProperty("display", "none")
	if got := n.StyleProperty("display"); got != "none" {
		t.Errorf("display = %q", got)
	}
	if got := n.StyleProperty("color"); got != "red" {
		t.Errorf("color = %q", got)
	}

	n.SetStyleProperty("display", "")
	if _, ok := n.Style()["display"]; ok {
		t.Error("display should be removed")
	}
	n.SetCSSText("")
	if n.HasAttribute("style") {
		t.Error("empty style should drop the attribute")
	}
}

func TestValue(t *testing.T) {
	d := NewDocument()
	in := d.CreateElement("input")
	in.SetAttribute("value", "initial")
	if in.Value() != "initial" {
		t.Errorf("Value = %q", in.Value())
	}
	in.SetValue("typed")
	if in.Value() != "typed" || in.GetAttribute("value") != "initial" {
		t.Errorf("Value = %q attr = %q", in.Value(), in.GetAttribute("value"))
	}

	ta := d.CreateElement("textarea")
	_ = ta.AppendChild(d.CreateText("body"))
	if ta.Value() != "body" {
		t.Errorf("textarea Value = %q", ta.Value())
	}
	if !ta.IsFormControl() || d.CreateElement("div").IsFormControl() {
		t.Error("IsFormControl mismatch")
	}
}
