package reactive

import "testing"

func TestWatchCallsBackOnChange(t *testing.T) {
	s := NewSignal(1)
	var calls [][2]int
	stop := Watch(s.Get, func(next, prev int) {
		calls = append(calls, [2]int{next, prev})
	})
	defer stop()

	if len(calls) != 0 {
		t.Fatalf("watch called back before any change")
	}
	s.Set(2)
	s.Set(3)
	if len(calls) != 2 || calls[0] != [2]int{2, 1} || calls[1] != [2]int{3, 2} {
		t.Errorf("calls = %v", calls)
	}
}

func TestWatchImmediate(t *testing.T) {
	s := NewSignal("a")
	var got []string
	stop := Watch(s.Get, func(next, _ string) { got = append(got, next) }, Immediate())
	defer stop()

	if len(got) != 1 || got[0] != "a" {
		t.Errorf("got %v, want [a]", got)
	}
}

func TestWatchIdentityVersusDeep(t *testing.T) {
	type item struct{ ID int }
	list := NewSignal([]item{{1}})

	identity, deep := 0, 0
	stopA := Watch(func() []item { return list.Get() }, func(_, _ []item) { identity++ })
	stopB := Watch(func() []item { return list.Get() }, func(_, _ []item) { deep++ }, Deep())
	defer stopA()
	defer stopB()

	// Same contents, new backing array.
	list.Mutate(func(v *[]item) { *v = []item{{1}} })
	if identity != 1 {
		t.Errorf("identity watcher should fire for a new slice, fired %d", identity)
	}
	if deep != 0 {
		t.Errorf("deep watcher should not fire for equal contents, fired %d", deep)
	}
}

func TestWatchCallbackIsUntracked(t *testing.T) {
	src := NewSignal(0)
	other := NewSignal(0)
	calls := 0
	stop := Watch(src.Get, func(_, _ int) {
		calls++
		_ = other.Get()
	})
	defer stop()

	src.Set(1)
	other.Set(1)
	if calls != 1 {
		t.Errorf("callback read subscribed the watcher: %d calls", calls)
	}
}

func TestWatchStop(t *testing.T) {
	s := NewSignal(0)
	calls := 0
	stop := Watch(s.Get, func(_, _ int) { calls++ })
	stop()
	s.Set(1)
	if calls != 0 {
		t.Errorf("stopped watcher called back")
	}
}

func TestSameValue(t *testing.T) {
	a := []int{1, 2}
	m := map[string]int{}
	p := &struct{}{}
	tests := []struct {
		name string
		x, y any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"same slice", a, a, true},
		{"resliced", a, a[:1], false},
		{"copied slice", a, append([]int(nil), a...), false},
		{"same map", m, m, true},
		{"same pointer", p, p, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"different types", 1, int64(1), false},
		{"structs", struct{ A []int }{a}, struct{ A []int }{[]int{1, 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.x, tt.y); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
