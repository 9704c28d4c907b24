package executor

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Future is a suspension point. Poll reports whether the awaited condition
// is satisfied; if not, wake is called once when it may be.
type Future interface {
	Poll(wake func()) (done bool, err error)
}

// FutureFunc adapts a function to a Future.
type FutureFunc func(wake func()) (bool, error)

// Poll calls f(wake).
func (f FutureFunc) Poll(wake func()) (bool, error) { return f(wake) }

// Ready returns a future that is already complete with err.
func Ready(err error) Future {
	return FutureFunc(func(func()) (bool, error) { return true, err })
}

type sleep struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	deadline time.Time
	timer    clockwork.Timer
	fired    bool
	wake     func()
}

// After returns a future that completes once d has elapsed on clock.
func After(clock clockwork.Clock, d time.Duration) Future {
	return &sleep{
		clock:    clock,
		deadline: clock.Now().Add(d),
	}
}

func (s *sleep) Poll(wake func()) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return true, nil
	}
	s.wake = wake
	if s.timer == nil {
		s.timer = s.clock.AfterFunc(s.deadline.Sub(s.clock.Now()), s.fire)
	}
	return false, nil
}

func (s *sleep) fire() {
	s.mu.Lock()
	s.fired = true
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Signal is a counting event. Each Notify completes exactly one Poll, so an
// occurrence is never lost and never delivered twice.
type Signal struct {
	mu    sync.Mutex
	count int
	wake  func()
}

// NewSignal returns a signal with no pending occurrences.
func NewSignal() *Signal {
	return new(Signal)
}

// Notify records one occurrence. It is safe to call from any goroutine.
func (s *Signal) Notify() {
	s.mu.Lock()
	s.count++
	wake := s.wake
	s.wake = nil
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Pending returns the number of undelivered occurrences.
func (s *Signal) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Poll consumes one occurrence if there is one.
func (s *Signal) Poll(wake func()) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true, nil
	}
	s.wake = wake
	return false, nil
}

// BlockOn drives f to completion on the calling goroutine and returns its
// error. It does not cooperate with any executor: when called from the
// executor goroutine nothing else makes progress until f completes.
func BlockOn(f Future) error {
	ready := make(chan struct{}, 1)
	wake := func() {
		select {
		case ready <- struct{}{}:
		default:
		}
	}
	for {
		done, err := f.Poll(wake)
		if done {
			return err
		}
		<-ready
	}
}
