package bus

import "sync"

type transferState uint8

const (
	pending transferState = iota
	submitted
	completed
)

// Transfer is one bus transaction. It implements executor.Future: the first
// Poll submits it to the engine and completion wakes the last registered
// waker exactly once.
type Transfer struct {
	m    *Master
	op   string
	addr uint16
	w, r []byte

	mu    sync.Mutex
	state transferState
	err   error
	wake  func()
}

// Poll reports whether the transfer completed, and its error.
func (t *Transfer) Poll(wake func()) (bool, error) {
	t.mu.Lock()
	switch t.state {
	case completed:
		err := t.err
		t.mu.Unlock()
		return true, err
	case submitted:
		t.wake = wake
		t.mu.Unlock()
		return false, nil
	}

	t.wake = wake
	if err := t.m.submit(t); err != nil {
		berr := &Error{Op: t.op, Addr: t.addr, Kind: KindOther, Err: err}
		t.state, t.err, t.wake = completed, berr, nil
		t.mu.Unlock()
		return true, berr
	}
	t.state = submitted
	t.mu.Unlock()
	return false, nil
}

func (t *Transfer) complete(err error) {
	t.mu.Lock()
	t.state = completed
	t.err = err
	wake := t.wake
	t.wake = nil
	t.mu.Unlock()
	if wake != nil {
		wake()
	}
}
