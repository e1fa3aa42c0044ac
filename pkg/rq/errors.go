package rq

import (
	"errors"
	"fmt"
	"log/slog"

	rqerrors "github.com/vango-dev/requery/internal/errors"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrMissingNode       = rqerrors.New("E101")
	ErrDuplicateIdentity = rqerrors.New("E102")
	ErrInvalidCollection = rqerrors.New("E103")
	ErrCleanupFailure    = rqerrors.New("E104")
	ErrComponentNotFound = rqerrors.New("E105")
)

func missingNode(name string) *rqerrors.RqError {
	return rqerrors.New("E101").WithDetailf("no node with %s=%q", AttrBinding, name)
}

func duplicateKey(list string, key any) *rqerrors.RqError {
	return rqerrors.New("E102").WithDetailf("list %q: key %v is used by more than one item", list, key)
}

func duplicateInstance(component, key string) *rqerrors.RqError {
	return rqerrors.New("E102").WithDetailf("component %q: instance key %q is already mounted", component, key)
}

func invalidCollection(list string, v any) *rqerrors.RqError {
	return rqerrors.New("E103").WithDetailf("list %q: got %T", list, v)
}

func componentNotFound(name, key string) *rqerrors.RqError {
	if key == "" {
		return rqerrors.New("E105").WithDetailf("no instance of %q", name)
	}
	return rqerrors.New("E105").WithDetailf("no instance of %q with key %q", name, key)
}

func errorCode(err error) string {
	var re *rqerrors.RqError
	if errors.As(err, &re) && re.Code != "" {
		return re.Code
	}
	return "unknown"
}

func isInvalidCollection(err error) bool {
	return errors.Is(err, ErrInvalidCollection)
}

// safeCall runs fn, turning a panic into an E104 error that names owner.
func safeCall(owner string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = rqerrors.New("E104").WithDetailf("in %q", owner).Wrap(cause)
		}
	}()
	fn()
	return nil
}

// runIsolated runs a teardown callback. A failure is logged and counted and
// never stops the caller.
func (r *Registry) runIsolated(kind, owner string, fn func()) {
	if err := safeCall(owner, fn); err != nil {
		r.metrics.cleanupFailures.Inc()
		r.logger.Error("cleanup failed",
			slog.String("kind", kind),
			slog.String("name", owner),
			slog.Any("error", err),
		)
	}
}

func (r *Registry) warnMissing(name string) {
	r.metrics.missingNodes.Inc()
	r.logger.Warn("element not found",
		slog.String("name", name),
		slog.Any("error", missingNode(name)),
	)
}
