package display

import (
	"fmt"
)

const (
	sh1106DefaultWidth  = 128
	sh1106DefaultHeight = 64
	sh1106SetPumpMode   = 0xAD
	sh1106PumpOn        = 0x8B
	sh1106ColumnOffset  = 2 // 128 visible columns centered in 132 of RAM
)

type sh1106 struct {
	monoDisplay
	pageSize int
}

// SH1106 is a driver for the Sino Wealth SH1106 OLED display.
func SH1106(conn Conn, config *Config) (Display, error) {
	d := &sh1106{
		monoDisplay: monoDisplay{
			baseDisplay: baseDisplay{
				c: conn,
			},
		},
	}

	if config == nil {
		config = new(Config)
	}
	if config.Width == 0 {
		config.Width = sh1106DefaultWidth
	}
	if config.Height == 0 {
		config.Height = sh1106DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, &InitError{Controller: "SH1106", Err: err}
	}

	return d, nil
}

func (d *sh1106) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SH1106 OLED %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *sh1106) init(config *Config) (err error) {
	var (
		multiplexRatio byte
		displayOffset  byte
	)
	switch {
	case config.Width == 128 && config.Height == 32:
		multiplexRatio, displayOffset = 0x1f, 0x00
	case config.Width == 128 && config.Height == 64:
		multiplexRatio, displayOffset = 0x3f, 0x00
	case config.Width == 128 && config.Height == 128:
		multiplexRatio, displayOffset = 0x7f, 0x02
	default:
		return fmt.Errorf("display: SH1106 unsupported size %dx%d", config.Width, config.Height)
	}

	d.pageSize = config.Height >> 3

	// init base
	if err = d.monoDisplay.init(config); err != nil {
		return
	}

	// init display
	if err = d.command(
		setDisplayOff,
		setDisplayClockDiv, 0x80,
		setMultiplexRatio, multiplexRatio,
		setDisplayOffset, displayOffset,
		setStartLine|0x00,
		sh1106SetPumpMode, sh1106PumpOn,
		setComPins, 0x12,
		setPrecharge, 0x1F,
		setVComDetect, 0x40,
		setDisplayAllOnResume,
		setNormalDisplay,
	); err != nil {
		return
	}

	if err = d.SetRotation(config.Rotation); err != nil {
		return
	}
	contrast := config.Contrast
	if contrast == 0 {
		contrast = 0x80
	}
	if err = d.SetContrast(contrast); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

// Refresh sends every page: one command write to address the page, one
// data write with its columns.
func (d *sh1106) Refresh() (err error) {
	fb := d.Framebuffer()
	for page := 0; page < d.pageSize; page++ {
		if err = d.command(
			setPageStart|byte(page&0xf),
			setLowColumn|sh1106ColumnOffset,
			setHighColumn|0x0, //nolint:staticcheck
		); err != nil {
			return
		}
		if err = d.data(fb.Page(page)...); err != nil {
			return
		}
	}
	return nil
}
