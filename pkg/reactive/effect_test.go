package reactive

import "testing"

func TestEffectRunsOnCreate(t *testing.T) {
	ran := false
	e := CreateEffect(func() Cleanup {
		ran = true
		return nil
	})
	defer e.Stop()

	if !ran {
		t.Error("effect should run immediately on creation")
	}
}

func TestEffectRerunsSynchronously(t *testing.T) {
	count := NewSignal(0)
	var seen []int
	e := CreateEffect(func() Cleanup {
		seen = append(seen, count.Get())
		return nil
	})
	defer e.Stop()

	count.Set(1)
	count.Set(2)
	if len(seen) != 3 || seen[2] != 2 {
		t.Errorf("seen = %v, want [0 1 2]", seen)
	}
}

func TestEffectCleanupBeforeRerunAndOnStop(t *testing.T) {
	count := NewSignal(0)
	cleanups := 0
	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		return func() { cleanups++ }
	})

	count.Set(1)
	if cleanups != 1 {
		t.Errorf("expected 1 cleanup before re-run, got %d", cleanups)
	}
	e.Stop()
	if cleanups != 2 {
		t.Errorf("expected cleanup on stop, got %d", cleanups)
	}
	e.Stop()
	if cleanups != 2 {
		t.Errorf("Stop should be idempotent, got %d cleanups", cleanups)
	}
}

func TestEffectStopUnsubscribes(t *testing.T) {
	count := NewSignal(0)
	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})
	e.Stop()

	count.Set(1)
	if runs != 1 {
		t.Errorf("stopped effect re-ran: %d runs", runs)
	}
	if n := count.base.subscriberCount(); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestEffectDynamicDependencies(t *testing.T) {
	flag := NewSignal(true)
	a := NewSignal(1)
	b := NewSignal(2)
	runs := 0

	e := CreateEffect(func() Cleanup {
		runs++
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		return nil
	})
	defer e.Stop()

	flag.Set(false)
	a.Set(10)
	if runs != 2 {
		t.Errorf("effect should no longer depend on a: %d runs", runs)
	}
	b.Set(20)
	if runs != 3 {
		t.Errorf("effect should depend on b: %d runs", runs)
	}
}

func TestEffectIgnoresSelfTrigger(t *testing.T) {
	count := NewSignal(0)
	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		count.Set(count.Get() + 1)
		return nil
	})
	defer e.Stop()

	if runs != 1 {
		t.Errorf("effect re-triggered itself: %d runs", runs)
	}
}

func TestEffectStoppedByOwnBody(t *testing.T) {
	count := NewSignal(0)
	var e *Effect
	cleanups := 0
	e = CreateEffect(func() Cleanup {
		if count.Get() > 0 {
			e.Stop()
		}
		return func() { cleanups++ }
	})

	count.Set(1)
	if !e.Stopped() {
		t.Fatal("effect should be stopped")
	}
	// One cleanup before the re-run, one for the run that stopped itself.
	if cleanups != 2 {
		t.Errorf("expected 2 cleanups, got %d", cleanups)
	}
	if n := count.base.subscriberCount(); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestNestedEffectsTrackIndependently(t *testing.T) {
	outer := NewSignal(0)
	inner := NewSignal(0)
	outerRuns, innerRuns := 0, 0
	var child *Effect

	e := CreateEffect(func() Cleanup {
		outerRuns++
		_ = outer.Get()
		if child == nil {
			child = CreateEffect(func() Cleanup {
				innerRuns++
				_ = inner.Get()
				return nil
			})
		}
		return nil
	})
	defer e.Stop()
	defer child.Stop()

	inner.Set(1)
	if outerRuns != 1 || innerRuns != 2 {
		t.Errorf("outer=%d inner=%d, want 1 and 2", outerRuns, innerRuns)
	}
}

func TestBatchDeduplicates(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = a.Get() + b.Get()
		runs++
		return nil
	})
	defer e.Stop()

	Batch(func() {
		a.Set(1)
		b.Set(1)
		Batch(func() { a.Set(2) })
		if runs != 1 {
			t.Errorf("nested batch flushed early: %d runs", runs)
		}
	})
	if runs != 2 {
		t.Errorf("expected one notification after batch, got %d runs", runs)
	}
}

func TestUntracked(t *testing.T) {
	s := NewSignal(0)
	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		Untracked(func() { _ = s.Get() })
		if IsTracking() != true {
			t.Error("tracking should be restored after Untracked")
		}
		return nil
	})
	defer e.Stop()

	s.Set(1)
	if runs != 1 {
		t.Errorf("untracked read subscribed: %d runs", runs)
	}
	if got := UntrackedValue(s.Get); got != 1 {
		t.Errorf("UntrackedValue = %d, want 1", got)
	}
}
