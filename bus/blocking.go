package bus

import (
	"sync/atomic"

	"tinygo.org/x/drivers"

	"github.com/BeatGlow/gpios/executor"
)

var _ drivers.I2C = (*Blocking)(nil)

// Blocking gives a driver that expects blocking bus access exclusive use of
// a Master. Every call runs one transfer to completion on the calling
// goroutine, so it must not be used while the executor is running tasks.
type Blocking struct {
	m        *Master
	released atomic.Bool
}

// Borrow takes exclusive blocking access to m until Release.
func Borrow(m *Master) (*Blocking, error) {
	if executor.InTask() {
		return nil, ErrInTask
	}
	if !m.borrowed.CompareAndSwap(false, true) {
		return nil, ErrBorrowed
	}
	return &Blocking{m: m}, nil
}

// Tx writes w then reads into r. Errors are the transfer's *Error as is.
func (b *Blocking) Tx(addr uint16, w, r []byte) error {
	if b.released.Load() {
		return ErrReleased
	}
	return executor.BlockOn(b.m.Tx(addr, w, r))
}

// Write writes p to the device at addr and returns once every byte was
// accepted.
func (b *Blocking) Write(addr uint16, p []byte) error {
	if b.released.Load() {
		return ErrReleased
	}
	return executor.BlockOn(b.m.Write(addr, p))
}

// Release returns the master. Later calls on b fail with ErrReleased.
func (b *Blocking) Release() {
	if b.released.CompareAndSwap(false, true) {
		b.m.borrowed.Store(false)
	}
}
