package display

import (
	"github.com/BeatGlow/gpios/pixel"
)

type monoDisplay struct {
	baseDisplay
	halted bool
}

func (d *monoDisplay) init(config *Config) error {
	d.Image = pixel.NewMonoVerticalLSBImage(config.Width, config.Height)
	d.width = config.Width
	d.height = config.Height
	d.rotation = config.Rotation
	return nil
}

func (d *monoDisplay) Framebuffer() *pixel.MonoVerticalLSBImage {
	return d.Image.(*pixel.MonoVerticalLSBImage)
}

func (d *monoDisplay) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *monoDisplay) Show(show bool) error {
	if show {
		return d.command(setDisplayOn)
	}
	return d.command(setDisplayOff)
}

func (d *monoDisplay) SetContrast(level uint8) error {
	return d.command(setContrast, level)
}

// SetRotation flips the panel with segment remap and COM scan direction.
// Only 0° and 180° can be done in hardware.
func (d *monoDisplay) SetRotation(rotation Rotation) error {
	var remap, scan byte
	switch rotation {
	case NoRotation:
		remap, scan = setSegmentRemap, setComScanDec
	case Rotate180:
		remap, scan = setRemap, setComScanInc
	default:
		return ErrRotation
	}
	if err := d.command(remap); err != nil {
		return err
	}
	if err := d.command(scan); err != nil {
		return err
	}
	d.rotation = rotation
	return nil
}
