// Package sim is a simulated board: periph test pins for the LED and the
// button, and a recording I²C bus with a model of the OLED display RAM.
package sim

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/logging"
)

// Bench is a simulated board.
type Bench struct {
	Config board.Config
	LED    *gpiotest.Pin
	Button *gpiotest.Pin
	Bus    *Bus
}

// New returns a bench wired like cfg.
func New(cfg board.Config) *Bench {
	return &Bench{
		Config: cfg,
		LED:    &gpiotest.Pin{N: cfg.LED.Pin, Num: -1, Fn: "Out"},
		Button: &gpiotest.Pin{N: cfg.Button.Pin, Num: -1, Fn: "In", EdgesChan: make(chan gpio.Level, 16)},
		Bus:    NewBus(cfg.I2C.Bus),
	}
}

// Peripherals binds the bench to a handle set, bypassing the registries.
func (b *Bench) Peripherals(log *logging.Logger) (*board.Peripherals, error) {
	return board.Bind(b.Config, board.Pins{
		LED:    b.LED,
		Button: b.Button,
		Bus:    b.Bus,
	}, log)
}

// Register publishes the bench pins and bus in the periph registries, so
// board.Init finds them by their configured names.
func (b *Bench) Register() error {
	if err := gpioreg.Register(b.LED); err != nil {
		return errors.Wrap(err, "sim: LED")
	}
	if err := gpioreg.Register(b.Button); err != nil {
		return errors.Wrap(err, "sim: button")
	}
	opener := func() (i2c.BusCloser, error) { return b.Bus, nil }
	if err := i2creg.Register(b.Bus.String(), nil, -1, opener); err != nil {
		return errors.Wrap(err, "sim: I²C bus")
	}
	return nil
}

// Press drives the button low, as a pressed pull-up button reads.
func (b *Bench) Press() {
	b.Button.EdgesChan <- gpio.Low
}

// Release lets the button float back high.
func (b *Bench) Release() {
	b.Button.EdgesChan <- gpio.High
}
