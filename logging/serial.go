package logging

import (
	"fmt"

	"github.com/tarm/serial"
)

// SerialSink writes records to a serial debug port.
type SerialSink struct {
	Sink
	port *serial.Port
}

// OpenSerial opens the serial port name at baud and returns a sink on it.
func OpenSerial(name string, baud int) (*SerialSink, error) {
	if baud <= 0 {
		baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{
		Name: name,
		Baud: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: failed to open serial port %s: %w", name, err)
	}
	return &SerialSink{
		Sink: NewWriterSink(port),
		port: port,
	}, nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	return s.port.Close()
}
