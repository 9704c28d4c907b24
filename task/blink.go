// Package task holds the standing tasks of the firmware.
package task

import (
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/executor"
	"github.com/BeatGlow/gpios/logging"
)

// DefaultBlinkInterval is the time the LED holds each level.
const DefaultBlinkInterval = 500 * time.Millisecond

// Blink toggles an output forever, starting high.
type Blink struct {
	pin      gpio.PinOut
	interval time.Duration
	log      *logging.Logger
	level    gpio.Level
}

// NewBlink takes the output handle. A non-positive interval uses
// DefaultBlinkInterval.
func NewBlink(h *board.Output, interval time.Duration, log *logging.Logger) (*Blink, error) {
	pin, err := h.Take()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultBlinkInterval
	}
	return &Blink{
		pin:      pin,
		interval: interval,
		log:      log,
		level:    gpio.High,
	}, nil
}

// Interval returns the time each level is held.
func (b *Blink) Interval() time.Duration {
	return b.interval
}

// Poll drives the next level, reports it and sleeps for the interval.
func (b *Blink) Poll(ctx *executor.Context) {
	if err := b.pin.Out(b.level); err != nil {
		panic(errors.Wrapf(err, "blink: failed to drive %s", b.pin))
	}
	if b.level == gpio.High {
		b.log.With(ctx.Name()).Infof("On")
	} else {
		b.log.With(ctx.Name()).Infof("Off")
	}
	b.level = !b.level
	ctx.Sleep(b.interval)
}
