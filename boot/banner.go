package boot

import (
	"image"

	"github.com/pkg/errors"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/bus"
	"github.com/BeatGlow/gpios/display"
	"github.com/BeatGlow/gpios/draw"
	"github.com/BeatGlow/gpios/logging"
	"github.com/BeatGlow/gpios/pixel"
)

// Compose clears dst and draws the configured text line.
func Compose(dst pixel.Image, cfg board.Display) error {
	face, err := draw.LookupFace(cfg.Font)
	if err != nil {
		return err
	}
	dst.Clear()
	face.Text(dst, image.Pt(cfg.Origin.X, cfg.Origin.Y), cfg.Text, pixel.On)
	return nil
}

// ShowBanner brings up the display on m and shows the configured text. It
// borrows the bus master for blocking access, so it must run before the
// executor starts polling tasks.
func ShowBanner(m *bus.Master, cfg board.Display, log *logging.Logger) error {
	rotation, err := display.RotationFromDegrees(cfg.Rotation)
	if err != nil {
		return err
	}
	if _, err = draw.LookupFace(cfg.Font); err != nil {
		return err
	}

	adapter, err := bus.Borrow(m)
	if err != nil {
		return errors.Wrap(err, "display: failed to borrow the bus")
	}
	defer adapter.Release()

	d, err := display.Open(cfg.Controller, display.NewI2CConn(adapter, cfg.Address), &display.Config{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Rotation: rotation,
	})
	if err != nil {
		return errors.Wrap(err, "display: bring-up failed")
	}
	log.Debugf("%s ready", d)

	fb := d.Framebuffer()
	if err = Compose(fb, cfg); err != nil {
		return err
	}
	log.Debugf("%d pixels lit", fb.Lit())

	if err = d.Refresh(); err != nil {
		return errors.Wrap(err, "display: flush failed")
	}
	return nil
}
