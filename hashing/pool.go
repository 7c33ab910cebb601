package hashing

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultQueueSize is the default capacity of the pool's task channel.
	DefaultQueueSize = 64
)

// PoolOptions configures a [Pool].
type PoolOptions struct {
	// Workers is the number of worker goroutines.
	// Minimum: 1.  Default: runtime.NumCPU().
	Workers int

	// QueueSize is the capacity of the task channel. Submissions beyond it
	// are parked rather than blocking the caller.
	// Minimum: 0.  Default: [DefaultQueueSize].
	QueueSize int

	// Params is handed to the pool's [Invoker].  Default: [DefaultParams].
	Params Params

	// Logger receives structured pool events.  Default: nil, which logs
	// nothing.
	Logger *zap.Logger
}

// DefaultPoolOptions returns PoolOptions with the recommended defaults.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		Workers:   runtime.NumCPU(),
		QueueSize: DefaultQueueSize,
		Params:    DefaultParams(),
	}
}

func validatePoolOptions(opts PoolOptions) error {
	if opts.Workers < 1 {
		return errors.Wrapf(ErrInvalidOption, "pool workers must be ≥ 1, got %d", opts.Workers)
	}
	if opts.QueueSize < 0 {
		return errors.Wrapf(ErrInvalidOption, "pool queue size must be ≥ 0, got %d", opts.QueueSize)
	}
	return nil
}

// Pool runs hashing tasks on a fixed set of worker goroutines and delivers
// each outcome on the [Loop] it was created with.
//
// Submission never blocks: [Pool.Hash] returns as soon as the task is queued.
// Each queued task is received by exactly one worker. Completions of
// different tasks may arrive in any order.
//
// # Thread safety
//
// All Pool methods are safe for concurrent use by multiple goroutines.
type Pool struct {
	loop    *Loop
	invoker *Invoker
	log     *zap.Logger
	queue   chan *Task

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	overflow  sync.WaitGroup
	workers   sync.WaitGroup
}

// NewPool validates opts and starts the workers.
//
// It returns [ErrInvalidOption] for out-of-range options and a
// [*ConfigurationError] when the encoded capacity cannot hold a hash made
// with opts.Params.
func NewPool(loop *Loop, opts PoolOptions) (*Pool, error) {
	if loop == nil {
		return nil, errors.Wrap(ErrInvalidOption, "loop must not be nil")
	}
	if err := validatePoolOptions(opts); err != nil {
		return nil, err
	}
	inv, err := NewInvoker(opts.Params)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{
		loop:    loop,
		invoker: inv,
		log:     log,
		queue:   make(chan *Task, opts.QueueSize),
	}
	p.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go p.work()
	}

	params := inv.Params()
	log.Info("argon2 pool started",
		zap.Int("workers", opts.Workers),
		zap.Int("queue_size", opts.QueueSize),
		zap.String("variant", string(params.Variant)),
		zap.Uint32("time_cost", params.TimeCost),
		zap.Stringer("memory", params.MemoryBytes()),
		zap.Uint8("parallelism", params.Parallelism),
	)
	return p, nil
}

// Params returns the parameter set the pool hashes with.
func (p *Pool) Params() Params { return p.invoker.Params() }

// Hash queues plaintext and salt for hashing and returns immediately.
// onComplete is called exactly once, on the pool's [Loop], with either the
// encoded hash or a [*ComputationError].
//
// Both byte slices are copied before Hash returns. A nil onComplete is a
// [*ValidationError]; after [Pool.Close] Hash returns [ErrPoolClosed]. In
// both cases nothing is queued and onComplete is never called.
func (p *Pool) Hash(plaintext, salt []byte, onComplete Callback) error {
	if onComplete == nil {
		return &ValidationError{Arg: 2, Reason: "callback must not be nil"}
	}
	_, err := p.submit(plaintext, salt, onComplete)
	return err
}

// Submit is the future form of [Pool.Hash]. The returned task's Done channel
// closes once its outcome has been delivered on the pool's [Loop], so the
// loop must be running (or drained) for Done to fire.
func (p *Pool) Submit(plaintext, salt []byte) (*Task, error) {
	return p.submit(plaintext, salt, nil)
}

func (p *Pool) submit(plaintext, salt []byte, onComplete Callback) (*Task, error) {
	t := newTask(p.loop, plaintext, salt, onComplete)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	t.setState(StateQueued)
	select {
	case p.queue <- t:
	default:
		// Queue full: park the handoff so the caller is not blocked.
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.queue <- t
		}()
	}

	p.log.Debug("argon2 task queued",
		zap.Stringer("task_id", t.ID()),
		zap.Int("plaintext_len", len(t.plaintext)),
		zap.Int("salt_len", len(t.salt)),
	)
	return t, nil
}

func (p *Pool) work() {
	defer p.workers.Done()
	for t := range p.queue {
		p.execute(t)
	}
}

func (p *Pool) execute(t *Task) {
	out := t.run(p.invoker)

	if out.Err != nil {
		fields := []zap.Field{zap.Stringer("task_id", t.ID()), zap.Error(out.Err)}
		var ce *ComputationError
		if errors.As(out.Err, &ce) {
			fields = append(fields, zap.Stringer("status", ce.Status))
		}
		p.log.Warn("argon2 hash failed", fields...)
	} else {
		p.log.Debug("argon2 task completed", zap.Stringer("task_id", t.ID()))
	}

	t.loop.post(t.deliver)
}

// Close stops accepting new tasks and waits for every queued task to finish
// computing. Their completions are still delivered through the Loop; Close
// does not run the Loop itself. Close is idempotent, and concurrent callers
// all return only after the workers have stopped.
func (p *Pool) Close() {
	p.closeOnce.Do(p.shutdown)
}

func (p *Pool) shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.overflow.Wait()
	close(p.queue)
	p.workers.Wait()
	p.log.Info("argon2 pool stopped")
}
