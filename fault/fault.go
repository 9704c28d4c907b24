// Package fault handles unrecoverable errors.
//
// A fault is reported once on the diagnostic stream, then the halt handler
// runs and the faulting goroutine parks forever.
package fault

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/BeatGlow/gpios/logging"
)

// Fault is a whole-process failure raised at a boot stage.
type Fault struct {
	Stage string
	Err   error
}

// New wraps err as a fault of stage, recording the call stack.
func New(stage string, err error) *Fault {
	return &Fault{Stage: stage, Err: errors.WithStack(err)}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault: %s: %v", f.Stage, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Format prints the stack of the wrapped error with %+v.
func (f *Fault) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "fault: %s: %+v", f.Stage, f.Err)
		return
	}
	fmt.Fprint(s, f.Error())
}

var (
	halting atomic.Bool
	once    = new(sync.Once)
	mu      sync.Mutex
	handler atomic.Value // func(error)
)

func init() {
	SetHandler(func(error) { os.Exit(1) })
}

// SetHandler installs the process-wide halt handler and re-arms it. The
// handler runs at most once per arming.
func SetHandler(fn func(error)) {
	mu.Lock()
	defer mu.Unlock()
	handler.Store(fn)
	once = new(sync.Once)
	halting.Store(false)
}

// Halting reports whether a fault is being handled.
func Halting() bool {
	return halting.Load()
}

// Halt reports err as an error record, runs the halt handler and never
// returns.
func Halt(log *logging.Logger, err error) {
	log.With("fault").Errorf("%+v", err)

	mu.Lock()
	o := once
	mu.Unlock()
	o.Do(func() {
		halting.Store(true)
		if fn, ok := handler.Load().(func(error)); ok && fn != nil {
			fn(err)
		}
	})

	select {}
}
