// Package boot brings the firmware up and runs the standing tasks.
package boot

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/executor"
	"github.com/BeatGlow/gpios/fault"
	"github.com/BeatGlow/gpios/logging"
	"github.com/BeatGlow/gpios/task"
)

// Boot stages reported in faults.
const (
	StagePeripherals = "peripherals"
	StageDisplay     = "display"
	StageExecutor    = "executor"
)

// Task names.
const (
	BlinkTask  = "blink"
	ButtonTask = "button"
)

// Run constructs the standing tasks, shows the banner and runs the tasks
// until ctx is done. It always returns a *fault.Fault: the display is
// brought up before any task is registered, so a display failure stops the
// boot without a single task record. On return the button watcher is
// stopped and the bus master closed.
func Run(ctx context.Context, p *board.Peripherals, cfg board.Config, log *logging.Logger, opts ...executor.Option) error {
	log.Infof("Starting %s", p.Name)

	interval, err := cfg.BlinkInterval()
	if err != nil {
		return fault.New(StagePeripherals, err)
	}
	blink, err := task.NewBlink(p.LED, interval, log)
	if err != nil {
		return fault.New(StagePeripherals, err)
	}
	button, err := task.NewButton(p.Button, cfg.Button.Name, log)
	if err != nil {
		return fault.New(StagePeripherals, err)
	}
	defer button.Halt()
	m, err := p.I2C.Take()
	if err != nil {
		return fault.New(StagePeripherals, err)
	}
	defer m.Close()

	if err = ShowBanner(m, cfg.Display, log.With(StageDisplay)); err != nil {
		return fault.New(StageDisplay, err)
	}
	log.Infof("Display updated.")

	x := executor.New(append([]executor.Option{executor.WithLogger(log.With(StageExecutor))}, opts...)...)
	if err = x.Register(BlinkTask, blink); err != nil {
		return fault.New(StageExecutor, err)
	}
	if err = x.Register(ButtonTask, button); err != nil {
		return fault.New(StageExecutor, err)
	}
	return fault.New(StageExecutor, x.Run(ctx))
}

// Logger builds the diagnostic logger of a board: standard output plus the
// serial debug port when one is configured. A port that cannot be opened is
// reported as a warning and left out. The returned function closes the
// serial port.
func Logger(cfg board.Config, clock clockwork.Clock) (*logging.Logger, func() error, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	sink := logging.Filter(level, logging.Stdout())
	closer := func() error { return nil }
	if cfg.Serial.Port == "" {
		return logging.New(sink, clock), closer, nil
	}
	port, err := logging.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		log := logging.New(sink, clock)
		log.Warnf("serial debug port disabled: %v", err)
		return log, closer, nil
	}
	return logging.New(logging.Filter(level, logging.Multi(logging.Stdout(), port)), clock), port.Close, nil
}
