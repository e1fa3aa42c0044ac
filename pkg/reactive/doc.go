// Package reactive provides the observable/effect capability used by the
// binding engine.
//
// Dependencies are tracked automatically at runtime. Reading a signal while an
// effect, memo or watcher is running subscribes that listener to the signal:
//
//	count := reactive.NewSignal(0)
//	reactive.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//	count.Set(1) // the effect re-runs synchronously
//
// Effects run synchronously on the goroutine that performed the write. Batch
// defers notifications until the outermost batch returns, and Watch compares
// successive values of a selector before calling back.
//
// Structural work that should not run on every write, such as list
// reconciliation, is queued on a Scheduler and executed by Flush.
//
// # Thread Safety
//
// Signal values are guarded by mutexes, but the dependency graph is meant to
// be driven from one goroutine at a time. The tracking context is
// per-goroutine.
package reactive
