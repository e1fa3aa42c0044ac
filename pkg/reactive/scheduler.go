package reactive

import (
	"errors"
	"fmt"
	"sync"
)

// Job is a unit of deferred work. A job is queued at most once until it runs,
// so repeated Queue calls before a flush coalesce into a single run that
// observes the latest state.
type Job struct {
	id     uint64
	name   string
	fn     func() error
	queued bool
}

// NewJob creates a job. name is used in error messages.
func NewJob(name string, fn func() error) *Job {
	return &Job{
		id:   nextID(),
		name: name,
		fn:   fn,
	}
}

// Name returns the job name.
func (j *Job) Name() string {
	return j.name
}

// Scheduler is a single-consumer FIFO job queue. The host drives it by calling
// Flush, typically once per turn of its event loop.
type Scheduler struct {
	mu       sync.Mutex
	queue    []*Job
	flushing bool

	// onQueue is invoked (outside the lock) when the queue goes from empty to
	// non-empty.
	onQueue func()
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// OnQueue registers a hook called when work becomes pending.
func (s *Scheduler) OnQueue(fn func()) {
	s.mu.Lock()
	s.onQueue = fn
	s.mu.Unlock()
}

// Queue appends j unless it is already waiting.
func (s *Scheduler) Queue(j *Job) {
	if j == nil {
		return
	}

	s.mu.Lock()
	if j.queued {
		s.mu.Unlock()
		return
	}
	j.queued = true
	wasEmpty := len(s.queue) == 0
	s.queue = append(s.queue, j)
	hook := s.onQueue
	s.mu.Unlock()

	if wasEmpty && hook != nil {
		hook()
	}
}

// Cancel removes j from the queue if it has not run yet.
func (s *Scheduler) Cancel(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !j.queued {
		return
	}
	j.queued = false
	for i, q := range s.queue {
		if q == j {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush runs queued jobs in enqueue order until the queue is empty, including
// jobs queued by the jobs themselves. A nested Flush from inside a job returns
// immediately; the outer flush drains the queue. Errors and recovered panics
// are joined into the result.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return nil
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	var errs []error
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}
		j := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		j.queued = false
		s.mu.Unlock()

		if err := runJob(j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runJob(j *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v", j.name, r)
		}
	}()
	return j.fn()
}
