package executor

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Context is handed to a task for the duration of one poll.
type Context struct {
	ctx     context.Context
	clock   clockwork.Clock
	name    string
	result  error
	pending Future
}

// Name returns the name the task was registered with.
func (c *Context) Name() string { return c.name }

// Now returns the executor clock time.
func (c *Context) Now() time.Time { return c.clock.Now() }

// Done is closed when the executor is stopped by its caller.
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Result returns the error of the future that resumed this poll.
func (c *Context) Result() error { return c.result }

// Await suspends the task until f completes.
func (c *Context) Await(f Future) {
	if c.pending != nil {
		panic(ErrDoubleSuspend)
	}
	c.pending = f
}

// Sleep suspends the task for at least d.
func (c *Context) Sleep(d time.Duration) {
	c.Await(After(c.clock, d))
}

// Yield suspends the task until the next pass of the executor.
func (c *Context) Yield() {
	c.Await(Ready(nil))
}
