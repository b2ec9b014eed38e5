// Package fetch implements the one async-retrieval state machine every view
// mounts: idle -> loading -> success|error. Each view owns its own Fetcher
// instance; instances share nothing. The machine converts any operation
// failure into one fixed user-facing message — raw error text stays in the
// logs — and drops settlements that arrive after the view went away or was
// superseded by a newer Start.
package fetch

import (
	"context"
	"sync"

	"simuorg/internal/logging"
)

// Phase is the render state of a view's data.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// FailureMessage is the only error text a view ever renders.
const FailureMessage = "Something went wrong. Please try again."

// State is one snapshot of the machine. Data is meaningful only in
// PhaseSuccess, ErrorMessage only in PhaseError.
type State[T any] struct {
	Phase        Phase
	Data         T
	ErrorMessage string
}

// Fetcher drives a single asynchronous retrieval for one view.
type Fetcher[T any] struct {
	mu          sync.Mutex
	state       State[T]
	gen         uint64
	closed      bool
	log         logging.Logger
	subscribers []func(State[T])
}

// New constructs an idle Fetcher.
func New[T any](log logging.Logger) *Fetcher[T] {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Fetcher[T]{state: State[T]{Phase: PhaseIdle}, log: log}
}

// Start runs op exactly once. The phase flips to loading before op is
// dispatched and to exactly one of success/error once it settles. A Start
// from a terminal phase is a refetch: previous data or error is discarded.
//
// Each Start bumps a generation counter; a settlement whose generation is
// no longer current (a newer Start happened, or the view closed) is thrown
// away without touching state, so a stale call can never overwrite a fresh
// one.
func (f *Fetcher[T]) Start(ctx context.Context, op func(context.Context) (T, error)) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.gen++
	gen := f.gen
	f.state = State[T]{Phase: PhaseLoading}
	snap := f.state
	f.mu.Unlock()
	f.notify(snap)

	data, err := op(ctx)

	f.mu.Lock()
	if f.closed || gen != f.gen {
		// Superseded or unmounted: this settlement no longer owns the state.
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.log.Error(ctx, "fetch failed", "error", err)
		f.state = State[T]{Phase: PhaseError, ErrorMessage: FailureMessage}
	} else {
		f.state = State[T]{Phase: PhaseSuccess, Data: data}
	}
	snap = f.state
	f.mu.Unlock()
	f.notify(snap)
}

// State returns the current snapshot.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Data returns the fetched value, reporting ok only in PhaseSuccess.
func (f *Fetcher[T]) Data() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Phase != PhaseSuccess {
		var zero T
		return zero, false
	}
	return f.state.Data, true
}

// Subscribe registers fn to be called after every transition.
func (f *Fetcher[T]) Subscribe(fn func(State[T])) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// Close marks the view unmounted. Pending settlements are dropped and
// further Start calls are no-ops.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.gen++
}

func (f *Fetcher[T]) notify(snap State[T]) {
	f.mu.Lock()
	subs := make([]func(State[T]), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
