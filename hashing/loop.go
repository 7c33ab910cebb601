package hashing

import (
	"context"
	"sync"
	"sync/atomic"
)

// Loop is the caller's execution context. Workers post completions to it and
// the goroutine that drives it, through [Loop.Run] or [Loop.Drain], invokes
// them one at a time. A host that owns a single scheduling goroutine runs
// exactly one Loop on it, so callbacks never race with each other or with
// the host's own state.
//
// Posting never blocks a worker: pending completions are kept in an
// unbounded slice and the driving goroutine is woken through a channel.
//
// Run and Drain must only be called from one goroutine at a time, and never
// from inside a completion. Overlapping calls panic.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	driving atomic.Bool

	wake      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewLoop returns an empty Loop.
func NewLoop() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// post queues fn for execution on the loop goroutine. Safe for concurrent use.
func (l *Loop) post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of completions waiting to be run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain runs every completion pending at the time of the call on the calling
// goroutine and returns how many ran. It never blocks waiting for new work.
//
// Completions are taken off the queue one at a time, so if one panics the
// rest stay pending for the next Drain or Run.
func (l *Loop) Drain() int {
	l.acquire()
	defer l.release()
	return l.drain()
}

func (l *Loop) drain() int {
	l.mu.Lock()
	n := len(l.pending)
	l.mu.Unlock()

	ran := 0
	for ran < n {
		fn := l.next()
		if fn == nil {
			break
		}
		ran++
		fn()
	}
	return ran
}

// next pops the oldest pending completion, or returns nil.
func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn
}

func (l *Loop) acquire() {
	if !l.driving.CompareAndSwap(false, true) {
		panic("hashing: Loop driven by more than one caller at a time")
	}
}

func (l *Loop) release() { l.driving.Store(false) }

// Run executes completions on the calling goroutine as they arrive. It
// returns ctx.Err() when ctx is cancelled, or nil after [Loop.Close] once the
// remaining completions have been run.
func (l *Loop) Run(ctx context.Context) error {
	l.acquire()
	defer l.release()
	for {
		l.drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closed:
			l.drain()
			return nil
		case <-l.wake:
		}
	}
}

// Close makes Run return after its final drain. Completions posted later are
// kept and can still be collected with Drain.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
}
