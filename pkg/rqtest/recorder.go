package rqtest

import (
	"sync"

	"github.com/vango-dev/requery/pkg/dom"
)

// Recorder collects document mutations.
type Recorder struct {
	mu        sync.Mutex
	mutations []dom.Mutation
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe implements dom.Observer.
func (r *Recorder) Observe(m dom.Mutation) {
	r.mu.Lock()
	r.mutations = append(r.mutations, m)
	r.mu.Unlock()
}

// All returns the recorded mutations in order.
func (r *Recorder) All() []dom.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dom.Mutation(nil), r.mutations...)
}

// Count returns the number of recorded mutations of the given kind.
func (r *Recorder) Count(kind dom.MutationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.mutations {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// Moves returns the number of inserts of nodes that were already connected.
func (r *Recorder) Moves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.mutations {
		if m.Kind == dom.MutationInsert && m.Moved {
			n++
		}
	}
	return n
}

// Len returns the number of recorded mutations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mutations)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.mutations = nil
	r.mu.Unlock()
}
