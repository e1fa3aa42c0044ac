// Package errors provides structured, coded errors for requery.
//
// Every error carries a code (e.g. "E102") that maps to a registered
// template with a short message, a longer explanation and a category.
//
// # Error Categories
//
//   - binding: a named region could not be resolved or bound
//   - reconcile: a list or conditional pass was rejected
//   - lifecycle: a cleanup or mounted callback failed
//   - component: component registration and lookup
//   - config: rq.json / rq.yaml problems
//   - protocol: live server wire protocol problems
//
// # Matching
//
// Two RqErrors match under errors.Is when their codes are equal, so a
// package can export a template error as a sentinel:
//
//	var ErrDuplicateIdentity = errors.New("E102")
//
//	err := errors.New("E102").WithDetailf("key %v appears twice", key)
//	stderrors.Is(err, ErrDuplicateIdentity) // true
package errors
