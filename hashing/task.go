package hashing

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is a [Task]'s position in its lifecycle. It only moves forward:
//
//	StateCreated → StateQueued → StateRunning → StateCompleted
type State int32

const (
	StateCreated State = iota
	StateQueued
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Callback receives the result of [Pool.Hash]. Exactly one of err and encoded
// is meaningful: on failure encoded is "".
type Callback func(err error, encoded string)

// Outcome is the result of one task: an encoded hash or an error, never both
// and never neither.
type Outcome struct {
	Encoded string
	Err     error
}

// Task is one hashing request. It owns private copies of the plaintext and
// salt taken at submission time. Tasks are single-use.
type Task struct {
	id         uuid.UUID
	plaintext  []byte
	salt       []byte
	loop       *Loop
	onComplete Callback

	state   atomic.Int32
	outcome Outcome
	done    chan struct{}
}

func newTask(loop *Loop, plaintext, salt []byte, onComplete Callback) *Task {
	return &Task{
		id:         uuid.New(),
		plaintext:  bytes.Clone(plaintext),
		salt:       bytes.Clone(salt),
		loop:       loop,
		onComplete: onComplete,
		done:       make(chan struct{}),
	}
}

// ID identifies the task in logs.
func (t *Task) ID() uuid.UUID { return t.id }

// State reports the current lifecycle state. Safe for concurrent use.
func (t *Task) State() State { return State(t.state.Load()) }

// Done is closed once the outcome has been delivered on the task's [Loop].
func (t *Task) Done() <-chan struct{} { return t.done }

// Outcome returns the task's result. It is only meaningful after Done is
// closed.
func (t *Task) Outcome() Outcome { return t.outcome }

func (t *Task) setState(s State) { t.state.Store(int32(s)) }

// run normalises the salt and invokes inv on the current goroutine, then
// records the outcome.
func (t *Task) run(inv *Invoker) Outcome {
	t.setState(StateRunning)

	encoded, err := inv.HashEncoded(t.plaintext, NormalizeSalt(t.salt))
	t.outcome = Outcome{Encoded: encoded, Err: err}

	t.setState(StateCompleted)
	return t.outcome
}

// deliver hands the outcome to the callback. It runs on the loop goroutine and
// is posted exactly once, by the worker that ran the task.
func (t *Task) deliver() {
	close(t.done)
	if t.onComplete != nil {
		t.onComplete(t.outcome.Err, t.outcome.Encoded)
	}
}
