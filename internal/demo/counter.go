package demo

import (
	"strconv"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
	"github.com/vango-dev/requery/pkg/rq"
)

func defineCounter(r *rq.Registry) {
	r.Define("counter", rq.Definition{
		Props: map[string]any{"start": 0, "step": 1},
		Setup: setupCounter,
	})
}

func setupCounter(c *rq.Component) func() {
	start := toInt(c.Prop("start"))
	count := reactive.NewSignal(start)
	step := reactive.NewSignal(toInt(c.Prop("step")))

	c.Query("count").
		Text(count).
		Bind("class.negative", func() bool { return count.Get() < 0 })

	c.Query("parity").Text(func() string {
		if count.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	})

	c.Query("inc").On("click", func(*rq.Element, *dom.Event) {
		count.Update(func(n int) int { return n + step.Get() })
	})
	c.Query("dec").On("click", func(*rq.Element, *dom.Event) {
		count.Update(func(n int) int { return n - step.Get() })
	})
	c.Query("reset").On("click", func(*rq.Element, *dom.Event) {
		count.Set(start)
	})

	c.Query("step").
		Bind("value", step).
		On("input", func(_ *rq.Element, evt *dom.Event) {
			if n, err := strconv.Atoi(evt.Value); err == nil {
				step.Set(n)
			}
		})

	c.Query("negative").Show(func() bool { return count.Get() < 0 })
	return nil
}

// toInt converts a parsed prop to an int. Props parsed from attributes are
// float64.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
