// Package executor is a single-threaded cooperative task runner.
//
// Registered tasks are polled one at a time on the goroutine that called
// Run. A task runs until it registers a suspension point (a Future) and
// returns from Poll; it is polled again only after that future completes.
// Event sources such as timers, pin interrupts and bus engines never run
// task code, they only mark futures ready and wake the executor.
//
// Tasks run forever. There is no isolation between them: a task that
// panics, or that returns from Poll without suspending, stops the executor
// and Run reports a *TaskError that the caller treats as fatal.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/BeatGlow/gpios/logging"
)

// Errors
var (
	ErrRunning       = errors.New("executor: already running")
	ErrNoTasks       = errors.New("executor: no tasks registered")
	ErrNilTask       = errors.New("executor: nil task")
	ErrTaskExited    = errors.New("executor: task returned without suspending")
	ErrDoubleSuspend = errors.New("executor: task suspended twice in one poll")
)

// Task is a never-ending unit of work. Each call to Poll advances the task
// to its next suspension point, which must be registered on ctx before
// returning.
type Task interface {
	Poll(ctx *Context)
}

// TaskFunc adapts a function to a Task.
type TaskFunc func(*Context)

// Poll calls f(ctx).
func (f TaskFunc) Poll(ctx *Context) { f(ctx) }

// State of the executor.
type State uint8

// Executor states. Running is terminal.
const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// TaskError reports a task that stopped the executor.
type TaskError struct {
	Task  string
	Err   error
	Stack []byte
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("executor: task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// polling holds the goroutines currently inside a task poll, with a depth
// count per goroutine.
var polling = struct {
	sync.Mutex
	g map[uint64]int
}{g: map[uint64]int{}}

// InTask reports whether the calling goroutine is inside a task poll. Code
// on other goroutines is never considered in a task, even while an executor
// polls.
func InTask() bool {
	id := goid()
	polling.Lock()
	defer polling.Unlock()
	return polling.g[id] > 0
}

func enterPoll(id uint64) {
	polling.Lock()
	polling.g[id]++
	polling.Unlock()
}

func leavePoll(id uint64) {
	polling.Lock()
	if polling.g[id]--; polling.g[id] <= 0 {
		delete(polling.g, id)
	}
	polling.Unlock()
}

// goid returns the id of the calling goroutine, parsed from the
// "goroutine N [" header of its stack trace.
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

type entry struct {
	name    string
	task    Task
	pending Future
	result  error
	woken   atomic.Bool
	wake    func()
}

// Executor polls registered tasks round robin.
type Executor struct {
	clock  clockwork.Clock
	log    *logging.Logger
	notify chan struct{}

	mu    sync.Mutex
	state State
	tasks []*entry
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the clock used for sleeps.
func WithClock(clock clockwork.Clock) Option {
	return func(x *Executor) { x.clock = clock }
}

// WithLogger sets the logger for scheduler diagnostics.
func WithLogger(log *logging.Logger) Option {
	return func(x *Executor) { x.log = log }
}

// New returns an idle executor.
func New(opts ...Option) *Executor {
	x := &Executor{
		notify: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.clock == nil {
		x.clock = clockwork.NewRealClock()
	}
	if x.log == nil {
		x.log = logging.New(logging.Discard, x.clock)
	}
	return x
}

// State returns the executor state.
func (x *Executor) State() State {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

// Register adds a task. Tasks can only be registered before Run.
func (x *Executor) Register(name string, t Task) error {
	if t == nil {
		return ErrNilTask
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state == Running {
		return ErrRunning
	}
	e := &entry{name: name, task: t}
	e.wake = func() {
		e.woken.Store(true)
		select {
		case x.notify <- struct{}{}:
		default:
		}
	}
	e.woken.Store(true)
	x.tasks = append(x.tasks, e)
	x.log.Debugf("registered task %s", name)
	return nil
}

// Run polls the registered tasks until ctx is done or a task faults. On
// firmware ctx is never cancelled, so Run only returns on a fault.
func (x *Executor) Run(ctx context.Context) error {
	x.mu.Lock()
	if x.state == Running {
		x.mu.Unlock()
		return ErrRunning
	}
	if len(x.tasks) == 0 {
		x.mu.Unlock()
		return ErrNoTasks
	}
	x.state = Running
	tasks := x.tasks
	x.mu.Unlock()

	x.log.Debugf("running %d tasks", len(tasks))
	gid := goid()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var ran bool
		for _, e := range tasks {
			if !e.woken.Swap(false) {
				continue
			}
			if e.pending != nil {
				done, err := e.pending.Poll(e.wake)
				if !done {
					continue
				}
				e.pending, e.result = nil, err
			}
			if err := x.poll(ctx, gid, e); err != nil {
				x.log.Errorf("%v", err)
				return err
			}
			ran = true
		}
		if ran {
			continue
		}

		select {
		case <-x.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (x *Executor) poll(ctx context.Context, gid uint64, e *entry) (err error) {
	c := &Context{
		ctx:    ctx,
		clock:  x.clock,
		name:   e.name,
		result: e.result,
	}
	e.result = nil

	enterPoll(gid)
	defer func() {
		leavePoll(gid)
		if v := recover(); v != nil {
			err = &TaskError{Task: e.name, Err: panicError(v), Stack: debug.Stack()}
		}
	}()

	e.task.Poll(c)
	if c.pending == nil {
		return &TaskError{Task: e.name, Err: ErrTaskExited}
	}
	e.pending = c.pending
	e.woken.Store(true)
	return nil
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
