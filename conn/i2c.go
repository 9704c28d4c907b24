// Package conn opens host peripherals from the periph.io registries.
package conn

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// I2C is an opened I²C bus.
type I2C struct {
	bus i2c.BusCloser
}

// OpenI2C opens the I²C bus by name, alias or number. An empty name or a
// negative number opens the first available bus.
func OpenI2C(name string) (*I2C, error) {
	if n, err := strconv.Atoi(name); err == nil && n < 0 {
		name = ""
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &I2C{bus: bus}, nil
}

func (c *I2C) String() string {
	return fmt.Sprintf("I²C bus %s", c.bus)
}

// Tx implements i2c.Bus.
func (c *I2C) Tx(addr uint16, w, r []byte) error {
	return c.bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
func (c *I2C) SetSpeed(f physic.Frequency) error {
	return c.bus.SetSpeed(f)
}

func (c *I2C) Close() error {
	return c.bus.Close()
}

// SCL implements i2c.Pins. It is gpio.INVALID when the bus does not expose
// its lines.
func (c *I2C) SCL() gpio.PinIO {
	if p, ok := c.bus.(i2c.Pins); ok {
		return p.SCL()
	}
	return gpio.INVALID
}

// SDA implements i2c.Pins.
func (c *I2C) SDA() gpio.PinIO {
	if p, ok := c.bus.(i2c.Pins); ok {
		return p.SDA()
	}
	return gpio.INVALID
}

// Pin looks up a GPIO pin by name, number or alias.
func Pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil || p == gpio.INVALID {
		return nil, fmt.Errorf("conn: unknown GPIO pin %q", name)
	}
	return p, nil
}
