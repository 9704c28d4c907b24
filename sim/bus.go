package sim

import (
	"sync"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/bus"
	"github.com/BeatGlow/gpios/pixel"
)

// Bus records every transaction. A failure can be injected at a given
// write.
type Bus struct {
	rec  i2ctest.Record
	name string

	mu     sync.Mutex
	speed  physic.Frequency
	writes int
	failAt int
	err    error
}

// NewBus returns an empty recording bus.
func NewBus(name string) *Bus {
	if name == "" {
		name = "SIM_I2C"
	}
	return &Bus{name: name}
}

func (b *Bus) String() string {
	return b.name
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	b.writes++
	fail := b.failAt > 0 && b.writes == b.failAt
	err := b.err
	b.mu.Unlock()
	if fail {
		return err
	}
	return b.rec.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = f
	return nil
}

// Speed returns the last bus speed set.
func (b *Bus) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

// Close implements i2c.BusCloser.
func (b *Bus) Close() error {
	return nil
}

// FailAt makes the n-th transaction, counting from 1, fail with err. A nil
// err is a NACK.
func (b *Bus) FailAt(n int, err error) {
	if err == nil {
		err = bus.ErrNack
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAt = n
	b.err = err
}

// Ops returns a copy of the recorded transactions.
func (b *Bus) Ops() []i2ctest.IO {
	b.rec.Lock()
	defer b.rec.Unlock()
	ops := make([]i2ctest.IO, len(b.rec.Ops))
	copy(ops, b.rec.Ops)
	return ops
}

// Screen replays the page writes sent to addr into a frame buffer of the
// given size, as the display RAM would hold them.
func (b *Bus) Screen(addr uint16, w, h int) *pixel.MonoVerticalLSBImage {
	img := pixel.NewMonoVerticalLSBImage(w, h)
	page := -1
	for _, op := range b.Ops() {
		if op.Addr != addr || len(op.W) < 2 {
			continue
		}
		switch op.W[0] {
		case 0x00:
			if cmd := op.W[1]; cmd&0xf0 == 0xb0 {
				page = int(cmd & 0x0f)
			}
		case 0x40:
			if page >= 0 && page < img.Pages() {
				copy(img.Page(page), op.W[1:])
			}
		}
	}
	return img
}
