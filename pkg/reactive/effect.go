package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a reactive side effect. It runs once on creation and re-runs
// synchronously whenever a signal or memo it read changes. The Cleanup
// returned by the previous run is called before each re-run and on Stop.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	// running suppresses self-triggering while the body executes.
	running bool

	disposed atomic.Bool
}

// CreateEffect creates and immediately runs an effect.
func CreateEffect(fn func() Cleanup) *Effect {
	e := newEffect(fn)
	e.run()
	return e
}

func newEffect(fn func() Cleanup) *Effect {
	return &Effect{
		id: nextID(),
		fn: fn,
	}
}

// MarkDirty re-runs the effect. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() || e.running {
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool {
	return e.disposed.Load()
}

func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}

	e.unsubscribeAll()

	e.running = true
	old := setCurrentListener(e)
	defer func() {
		setCurrentListener(old)
		e.running = false
	}()

	cleanup := e.fn()

	// The body may have stopped its own effect.
	if e.disposed.Load() {
		e.unsubscribeAll()
		if cleanup != nil {
			cleanup()
		}
		return
	}
	e.cleanup = cleanup
}

func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) unsubscribeAll() {
	e.sourcesMu.Lock()
	sources := e.sources
	e.sources = nil
	e.sourcesMu.Unlock()

	for _, source := range sources {
		source.unsubscribe(e)
	}
}

// Stop disposes the effect: the last cleanup runs and all subscriptions are
// dropped. Stop is idempotent.
func (e *Effect) Stop() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}
	e.unsubscribeAll()
}

// Batch groups signal writes. Listeners are deduplicated and notified once
// when the outermost batch returns.
func Batch(fn func()) {
	incrementBatchDepth()
	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()
	fn()
}

func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}

// Untracked runs fn without collecting dependencies.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedValue evaluates fn without collecting dependencies.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() { v = fn() })
	return v
}
