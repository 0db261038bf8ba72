package lazy

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle of a Value.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "uninitialized"
}

var ErrClosed = errors.New("lazy: value closed")

// Value memoizes a single initialization. The first Get runs init; concurrent
// callers wait for it. A failure is remembered and returned to every later caller.
type Value[T any] struct {
	init  func(ctx context.Context) (T, error)
	close func(T) error

	mu     sync.Mutex
	state  State
	closed bool
	done   chan struct{}
	v      T
	err    error
}

// New returns a Value built by init. closeFn may be nil.
func New[T any](init func(ctx context.Context) (T, error), closeFn func(T) error) *Value[T] {
	return &Value[T]{init: init, close: closeFn}
}

// Get returns the initialized value, running init on first use.
func (l *Value[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	switch l.state {
	case Ready, Failed:
		v, err := l.v, l.err
		l.mu.Unlock()
		return v, err
	case Loading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
			l.mu.Lock()
			defer l.mu.Unlock()
			return l.v, l.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	l.state = Loading
	l.done = make(chan struct{})
	l.mu.Unlock()

	// init runs detached from the first caller's cancellation.
	v, err := l.init(context.WithoutCancel(ctx))

	l.mu.Lock()
	defer l.mu.Unlock()
	defer close(l.done)

	if l.closed {
		// Close ran while loading; release what init produced.
		if err == nil && l.close != nil {
			_ = l.close(v)
		}
		var zero T
		l.v, l.err, l.state = zero, ErrClosed, Failed
		return zero, ErrClosed
	}
	l.v, l.err = v, err
	if err != nil {
		l.state = Failed
	} else {
		l.state = Ready
	}
	return v, err
}

// State reports the current lifecycle state.
func (l *Value[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close releases a ready value. Later Gets return ErrClosed. A value still
// loading is released once its init returns.
func (l *Value[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.state == Loading {
		return nil
	}
	var err error
	if l.state == Ready && l.close != nil {
		err = l.close(l.v)
	}
	var zero T
	l.v, l.err, l.state = zero, ErrClosed, Failed
	return err
}
