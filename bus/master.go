// Package bus provides the I²C bus master in two shapes.
//
// Master is suspend based: every transaction is a Transfer future that an
// executor task awaits. A single engine goroutine stands in for the
// interrupt-driven peripheral and completes transfers one at a time.
//
// Blocking adapts a borrowed Master to the blocking I²C contract expected by
// display drivers, by running each transfer to completion on the caller.
package bus

import (
	"sync"
	"sync/atomic"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/logging"
)

// Master owns an I²C bus and executes transfers on it.
type Master struct {
	hw   i2c.Bus
	log  *logging.Logger
	reqs chan *Transfer
	done chan struct{}

	busy     atomic.Bool
	borrowed atomic.Bool
	close    sync.Once

	mu     sync.Mutex // orders submissions against Close
	closed bool
}

// MasterOption configures a Master.
type MasterOption func(*Master)

// WithLogger sets the logger for failed transactions.
func WithLogger(log *logging.Logger) MasterOption {
	return func(m *Master) { m.log = log }
}

// NewMaster starts the transfer engine for hw.
func NewMaster(hw i2c.Bus, opts ...MasterOption) *Master {
	m := &Master{
		hw:   hw,
		reqs: make(chan *Transfer, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.engine()
	return m
}

func (m *Master) String() string {
	return m.hw.String()
}

// Write returns a transfer that writes p to the device at addr.
func (m *Master) Write(addr uint16, p []byte) *Transfer {
	return &Transfer{m: m, op: "write", addr: addr, w: p}
}

// Tx returns a transfer that writes w then reads into r.
func (m *Master) Tx(addr uint16, w, r []byte) *Transfer {
	return &Transfer{m: m, op: "tx", addr: addr, w: w, r: r}
}

// SetSpeed sets the bus clock. It fails while a transfer is in flight.
func (m *Master) SetSpeed(f physic.Frequency) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer m.busy.Store(false)
	return m.hw.SetSpeed(f)
}

// Close stops the engine and closes the underlying bus if it can be closed.
func (m *Master) Close() (err error) {
	m.close.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.done)
		m.mu.Unlock()
		if c, ok := m.hw.(i2c.BusCloser); ok {
			err = c.Close()
		}
	})
	return
}

func (m *Master) engine() {
	for {
		select {
		case t := <-m.reqs:
			err := wrap(t.op, t.addr, m.hw.Tx(t.addr, t.w, t.r))
			if err != nil {
				m.log.Debugf("%v", err)
			}
			m.busy.Store(false)
			t.complete(err)
		case <-m.done:
			m.drain()
			return
		}
	}
}

// drain fails a transfer that was queued before Close but never picked up.
func (m *Master) drain() {
	select {
	case t := <-m.reqs:
		m.busy.Store(false)
		t.complete(&Error{Op: t.op, Addr: t.addr, Kind: KindOther, Err: ErrClosed})
	default:
	}
}

func (m *Master) submit(t *Transfer) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.busy.Store(false)
		return ErrClosed
	}
	// never blocks: busy admits one transfer and the engine has taken the
	// previous one
	m.reqs <- t
	return nil
}
