package display

import (
	"fmt"
)

const (
	ssd1306DefaultWidth  = 128
	ssd1306DefaultHeight = 64
)

type ssd1306 struct {
	monoDisplay
	pageSize int
	colStart byte
	colEnd   byte
}

// SSD1306 is a driver for the Solomon Systech SSD1306 OLED display.
func SSD1306(conn Conn, config *Config) (Display, error) {
	d := &ssd1306{
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
		config.Width = ssd1306DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1306DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, &InitError{Controller: "SSD1306", Err: err}
	}

	return d, nil
}

func (d *ssd1306) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SSD1306 OLED %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ssd1306) init(config *Config) (err error) {
	var (
		multiplexRatio  = byte(config.Height - 1)
		displayClockDiv byte
		comPins         byte
		colStart        byte
	)
	switch {
	case config.Width == 64 && config.Height == 32:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 32
	case config.Width == 64 && config.Height == 48:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 32
	case config.Width == 96 && config.Height == 16:
		displayClockDiv, comPins, colStart = 0x60, 0x02, 0
	case config.Width == 128 && config.Height == 32:
		displayClockDiv, comPins, colStart = 0x80, 0x02, 0
	case config.Width == 128 && config.Height == 64:
		displayClockDiv, comPins, colStart = 0x80, 0x12, 0
	default:
		return fmt.Errorf("display: SSD1306 unsupported size %dx%d", config.Width, config.Height)
	}

	// init paging
	d.pageSize = config.Height >> 3
	d.colStart = colStart
	d.colEnd = colStart + byte(config.Width)

	// init base
	if err = d.monoDisplay.init(config); err != nil {
		return
	}

	// init display
	if err = d.command(
		setDisplayOff,
		setDisplayClockDiv, displayClockDiv,
		setMultiplexRatio, multiplexRatio,
		setDisplayOffset, 0x00,
		setStartLine,
		setChargePump, 0x14,
		setMemoryMode, 0x00,
		setComPins, comPins,
		setPrecharge, 0xF1,
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
		contrast = 0xCF
	}
	if err = d.SetContrast(contrast); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

func (d *ssd1306) Refresh() (err error) {
	fb := d.Framebuffer()
	for page := 0; page < d.pageSize; page++ {
		if err = d.command(
			setColumnAddr, d.colStart, d.colEnd-1,
			setPageAddr, byte(page), byte(page),
		); err != nil {
			return
		}
		if err = d.data(fb.Page(page)...); err != nil {
			return
		}
	}
	return nil
}
