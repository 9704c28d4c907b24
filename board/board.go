// Package board acquires the typed peripheral handles of a board.
//
// Bindings come from an embedded board table. Each handle can be taken
// exactly once, which transfers ownership of the underlying peripheral to
// the taker.
package board

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/gpios/conn"
	"github.com/BeatGlow/gpios/logging"
)

// Errors
var (
	ErrAcquired = errors.New("board: peripherals already acquired")
	ErrBusLines = errors.New("board: I²C lines differ from the board table")
)

var acquired atomic.Bool

// Peripherals is the handle set of a board.
type Peripherals struct {
	Name   string
	LED    *Output
	Button *Input
	I2C    *Bus
}

// Pins are the raw peripherals a handle set is bound to.
type Pins struct {
	LED    gpio.PinOut
	Button gpio.PinIn
	Bus    i2c.Bus
}

// Init initializes the host drivers and acquires the peripherals named by
// cfg. It succeeds at most once per process.
func Init(cfg Config, log *logging.Logger) (*Peripherals, error) {
	if !acquired.CompareAndSwap(false, true) {
		return nil, ErrAcquired
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "board: host init failed")
	}

	led, err := conn.Pin(cfg.LED.Pin)
	if err != nil {
		return nil, errors.Wrap(err, "board: LED")
	}
	button, err := conn.Pin(cfg.Button.Pin)
	if err != nil {
		return nil, errors.Wrap(err, "board: button")
	}
	bus, err := conn.OpenI2C(cfg.I2C.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "board: failed to open I²C bus %q", cfg.I2C.Bus)
	}
	return Bind(cfg, Pins{LED: led, Button: button, Bus: bus}, log)
}

// Bind wraps already opened peripherals in a handle set.
func Bind(cfg Config, pins Pins, log *logging.Logger) (*Peripherals, error) {
	speed, err := cfg.I2C.Frequency()
	if err != nil {
		return nil, err
	}
	if p, ok := pins.Bus.(i2c.Pins); ok {
		if err = checkLines(cfg.I2C, p); err != nil {
			return nil, err
		}
		log.Debugf("%s on SCL=%s SDA=%s", pins.Bus, p.SCL(), p.SDA())
	}
	name := cfg.Button.Name
	if name == "" {
		name = cfg.Button.Pin
	}
	return &Peripherals{
		Name: cfg.Name,
		LED: &Output{
			pin:     pins.LED,
			initial: cfg.LED.InitialLevel(),
		},
		Button: &Input{
			pin:  pins.Button,
			name: name,
		},
		I2C: &Bus{
			hw:    pins.Bus,
			speed: speed,
			log:   log.With("i2c"),
		},
	}, nil
}

// checkLines compares the clock and data lines a bus reports with the board
// table. Lines the table leaves empty, or the bus does not expose, are not
// checked. A table name may be an alias of the reported pin.
func checkLines(cfg I2C, p i2c.Pins) error {
	for _, l := range []struct {
		line, want string
		got        gpio.PinIO
	}{
		{"SCL", cfg.SCL, p.SCL()},
		{"SDA", cfg.SDA, p.SDA()},
	} {
		if l.want == "" || l.got == nil || l.got == gpio.INVALID {
			continue
		}
		if !samePin(l.got, l.want) {
			return errors.Wrapf(ErrBusLines, "%s is %s, want %s", l.line, l.got, l.want)
		}
	}
	return nil
}

func samePin(p gpio.PinIO, name string) bool {
	if p.Name() == name {
		return true
	}
	q := gpioreg.ByName(name)
	return q != nil && realName(q) == realName(p)
}

func realName(p gpio.PinIO) string {
	if r, ok := p.(gpio.RealPin); ok {
		return r.Real().Name()
	}
	return p.Name()
}
