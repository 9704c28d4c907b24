package display

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// I²C control bytes.
const (
	controlCommand = 0x00
	controlData    = 0x40
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

// DefaultAddr is the usual 7-bit address of I²C OLED modules.
const DefaultAddr = 0x3c

type i2cConn struct {
	bus  drivers.I2C
	addr uint16
	buf  []byte
}

// NewI2CConn returns a Conn on a blocking I²C bus. Every Command and Data
// call is one bus write, prefixed with its control byte.
func NewI2CConn(bus drivers.I2C, addr uint16) Conn {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &i2cConn{
		bus:  bus,
		addr: addr,
	}
}

func (c *i2cConn) String() string {
	return fmt.Sprintf("I²C device %#02x", c.addr)
}

func (c *i2cConn) Close() error {
	return nil
}

func (c *i2cConn) Command(cmnd byte, args ...byte) error {
	c.buf = append(append(append(c.buf[:0], controlCommand), cmnd), args...)
	return c.bus.Tx(c.addr, c.buf, nil)
}

func (c *i2cConn) Data(data ...byte) error {
	c.buf = append(append(c.buf[:0], controlData), data...)
	return c.bus.Tx(c.addr, c.buf, nil)
}
