// Package deferred resolves asynchronous data for views that render a
// fallback until the data arrives.
//
// A [Task] runs a fetch on its own goroutine and exposes its progress as a
// [State]: pending, ready with a value, or failed with a reason. Views never
// block on a Task; they render the current State and re-render when Done is
// closed. Cancelling a Task (for example when the view is torn down) discards
// any late result.
//
//	task := deferred.Go(ctx, func(ctx context.Context) ([]storefront.Product, error) {
//	    return client.RecommendedProducts(ctx, false)
//	})
//	defer task.Cancel()
//
//	<-task.Done()
//	out := deferred.Render(task.State(),
//	    func() string { return "Loading..." },
//	    func(ps []storefront.Product) string { return list(ps) },
//	    func(err error) string { return "failed: " + err.Error() },
//	)
package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCanceled is the failure reason of a task cancelled before it settled.
var ErrCanceled = errors.New("deferred: canceled")

// Status is the load state of a deferred value.
type Status int

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is a tagged snapshot of a deferred value. Value is meaningful only when
// Status is Ready, Err only when Status is Failed.
type State[T any] struct {
	Status Status
	Value  T
	Err    error
}

// PendingState returns a pending state.
func PendingState[T any]() State[T] { return State[T]{Status: Pending} }

// ReadyState returns a state resolved to v.
func ReadyState[T any](v T) State[T] { return State[T]{Status: Ready, Value: v} }

// FailedState returns a state rejected with err.
func FailedState[T any](err error) State[T] { return State[T]{Status: Failed, Err: err} }

func (s State[T]) IsPending() bool { return s.Status == Pending }
func (s State[T]) IsReady() bool   { return s.Status == Ready }
func (s State[T]) IsFailed() bool  { return s.Status == Failed }

// Settled reports whether the state will no longer change.
func (s State[T]) Settled() bool { return s.Status != Pending }

// Render selects exactly one of the three branches for s. A ready state never
// renders the fallback. A nil failed branch falls back to fallback.
func Render[T, R any](s State[T], fallback func() R, ready func(T) R, failed func(error) R) R {
	switch s.Status {
	case Ready:
		return ready(s.Value)
	case Failed:
		if failed != nil {
			return failed(s.Err)
		}
	}
	return fallback()
}

// Task is an in-flight fetch of a value of type T.
// All methods are safe for concurrent use.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State[T]
}

// Go starts fetch on a new goroutine and returns its Task. The fetch receives a
// context derived from ctx that is cancelled by Task.Cancel or when ctx ends.
func Go[T any](ctx context.Context, fetch func(context.Context) (T, error)) *Task[T] {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
		state:  PendingState[T](),
	}

	go func() {
		defer cancel()
		v, err := fetch(taskCtx)
		switch {
		case taskCtx.Err() != nil:
			t.settle(FailedState[T](ErrCanceled))
		case err != nil:
			t.settle(FailedState[T](err))
		default:
			t.settle(ReadyState(v))
		}
	}()

	go func() {
		<-taskCtx.Done()
		t.settle(FailedState[T](ErrCanceled))
	}()

	return t
}

// Resolved returns a task that is already ready with v.
func Resolved[T any](v T) *Task[T] {
	t := &Task[T]{cancel: func() {}, done: make(chan struct{}), state: ReadyState(v)}
	close(t.done)
	return t
}

// Rejected returns a task that has already failed with err.
func Rejected[T any](err error) *Task[T] {
	t := &Task[T]{cancel: func() {}, done: make(chan struct{}), state: FailedState[T](err)}
	close(t.done)
	return t
}

// settle records s if the task is still pending. The first settlement wins, so
// a result that arrives after cancellation is dropped.
func (t *Task[T]) settle(s State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Settled() {
		return
	}
	t.state = s
	close(t.done)
}

// State returns the current state of the task.
func (t *Task[T]) State() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel closed once the task has settled.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx ends and returns the state at that
// point, which is pending only if ctx ended first.
func (t *Task[T]) Wait(ctx context.Context) State[T] {
	select {
	case <-t.done:
	case <-ctx.Done():
	}
	return t.State()
}

// Cancel stops the task. A pending task settles as failed with ErrCanceled and
// its eventual result is discarded. Cancel is idempotent and does nothing to a
// task that has already settled.
func (t *Task[T]) Cancel() {
	t.cancel()
}
