package reactive

import "testing"

func TestReleaseGoroutine(t *testing.T) {
	before := TrackedGoroutines()
	done := make(chan int)
	go func() {
		s := NewSignal(0)
		s.Set(1)
		tracked := TrackedGoroutines()
		ReleaseGoroutine()
		done <- tracked
	}()
	if tracked := <-done; tracked != before+1 {
		t.Errorf("tracked while running = %d, want %d", tracked, before+1)
	}
	if got := TrackedGoroutines(); got != before {
		t.Errorf("tracked after release = %d, want %d", got, before)
	}
}
