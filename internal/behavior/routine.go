package behavior

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// asyncState is the state of a routine-backed leaf.
type asyncState int

const (
	stateIdle asyncState = iota
	stateRunning
	stateCompleted
)

// RunFunc is the body of a routine-backed leaf. It reports whether the goal
// was achieved. It must return promptly once ctx is cancelled.
type RunFunc func(ctx context.Context) (bool, error)

// RoutineOption configures NewRoutine.
type RoutineOption func(*routine)

// WithContext sets the parent context of every activation. Cancelling it
// cancels the running routine without producing a verdict.
func WithContext(ctx context.Context) RoutineOption {
	return func(r *routine) { r.parent = ctx }
}

// WithNeverFail reports Success in place of Failure. The node then only ever
// yields Running or Success.
func WithNeverFail() RoutineOption {
	return func(r *routine) { r.neverFail = true }
}

// WithLogger sets the logger used for routine errors and panics.
func WithLogger(l *slog.Logger) RoutineOption {
	return func(r *routine) { r.logger = l }
}

// routine runs a RunFunc on its own goroutine per activation.
//
// Every activation bumps generation; a completion carrying an older
// generation is discarded, so a routine that finishes after being stopped
// can never leak its verdict into the next activation.
type routine struct {
	name      string
	run       RunFunc
	parent    context.Context
	neverFail bool
	logger    *slog.Logger

	mu         sync.Mutex
	state      asyncState
	generation uint64
	result     Status
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewRoutine returns a leaf that runs run asynchronously. The leaf reports
// Running until run returns, then Success or Failure. Errors and panics are
// logged and reported as Failure. A run that ends because its context was
// cancelled reports nothing; the node is being torn down.
func NewRoutine(name string, run RunFunc, opts ...RoutineOption) *Node {
	r := &routine{
		name:   name,
		run:    run,
		parent: context.Background(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return NewNode(name, r)
}

func (r *routine) OnStart() {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})
	r.state = stateRunning
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ok, err := r.safeRun(ctx)
		r.finalize(ctx, gen, ok, err)
	}()
}

func (r *routine) OnUpdate() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateCompleted {
		r.state = stateIdle
		return r.result
	}
	return Running
}

// OnStop cancels the in-flight run, if any, and waits for it to return.
func (r *routine) OnStop(Status) {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.generation++
	r.state = stateIdle
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (r *routine) safeRun(ctx context.Context) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			ok, err = false, fmt.Errorf("routine %q panicked: %v", r.name, v)
		}
	}()
	return r.run(ctx)
}

func (r *routine) finalize(ctx context.Context, gen uint64, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return
	}
	if ctx.Err() != nil {
		// cancelled from the parent context: no verdict
		return
	}
	switch {
	case err != nil:
		r.logger.Error("routine failed", "node", r.name, "error", err)
		r.result = Failure
	case ok:
		r.result = Success
	default:
		r.result = Failure
	}
	if r.neverFail && r.result == Failure {
		r.result = Success
	}
	r.state = stateCompleted
}
