// Package display contains drivers for page oriented monochrome OLED
// controllers.
//
// Drivers keep a frame buffer in memory. Drawing only touches the buffer;
// Refresh transmits it to the controller.
package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BeatGlow/gpios/draw"
	"github.com/BeatGlow/gpios/pixel"
)

// Errors
var (
	ErrRotation   = errors.New("display: unsupported rotation")
	ErrController = errors.New("display: unknown controller")
)

// InitError is returned when the controller bring-up fails.
type InitError struct {
	Controller string
	Err        error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("display: %s init failed: %v", e.Controller, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

// RotationFromDegrees converts 0, 90, 180 or 270.
func RotationFromDegrees(deg int) (Rotation, error) {
	switch deg {
	case 0:
		return NoRotation, nil
	case 90:
		return Rotate90, nil
	case 180:
		return Rotate180, nil
	case 270:
		return Rotate270, nil
	default:
		return NoRotation, fmt.Errorf("display: invalid rotation %d°", deg)
	}
}

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// Display is an OLED display.
type Display interface {
	draw.Image

	// Close turns the display off and closes the connection.
	Close() error

	// Clear the display buffer.
	Clear()

	// Framebuffer is the in-memory pixel buffer.
	Framebuffer() *pixel.MonoVerticalLSBImage

	// Show toggles the display on or off.
	Show(bool) error

	// SetContrast adjusts the contrast level.
	SetContrast(level uint8) error

	// SetRotation adjusts the pixel rotation.
	SetRotation(Rotation) error

	// Refresh transmits the display buffer.
	Refresh() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// Rotation of the display.
	Rotation Rotation

	// Contrast level, zero selects the controller default.
	Contrast uint8
}

// Open binds the named controller driver to conn and initializes it.
func Open(controller string, conn Conn, config *Config) (Display, error) {
	switch strings.ToLower(controller) {
	case "sh1106":
		return SH1106(conn, config)
	case "ssd1306":
		return SSD1306(conn, config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrController, controller)
	}
}

type baseDisplay struct {
	pixel.Image
	c        Conn
	width    int
	height   int
	rotation Rotation
}

func (d *baseDisplay) data(data ...byte) error {
	return d.c.Data(data...)
}

func (d *baseDisplay) command(command byte, data ...byte) error {
	return d.c.Command(command, data...)
}
