package board

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/bus"
	"github.com/BeatGlow/gpios/executor"
	"github.com/BeatGlow/gpios/logging"
)

// ErrConsumed is returned when a handle is taken a second time.
var ErrConsumed = errors.New("board: handle already taken")

// Output is the handle of a digital output.
type Output struct {
	pin     gpio.PinOut
	initial gpio.Level
	taken   atomic.Bool
}

// Take drives the output to its initial level and hands it over.
func (o *Output) Take() (gpio.PinOut, error) {
	if !o.taken.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}
	if err := o.pin.Out(o.initial); err != nil {
		return nil, errors.Wrapf(err, "board: failed to configure output %s", o.pin)
	}
	return o.pin, nil
}

func (o *Output) String() string {
	return o.pin.String()
}

// Input is the handle of a digital input with edge detection.
type Input struct {
	pin   gpio.PinIn
	name  string
	taken atomic.Bool
}

// Name returns the label of the input from the board table.
func (i *Input) Name() string {
	return i.name
}

func (i *Input) String() string {
	return i.pin.String()
}

// Take configures the input with pull-up and both-edge detection, starts
// watching it and hands it over.
func (i *Input) Take() (*EdgePin, error) {
	if !i.taken.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}
	if err := i.pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, errors.Wrapf(err, "board: failed to configure input %s", i.pin)
	}
	e := &EdgePin{
		pin:     i.pin,
		edges:   executor.NewSignal(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go e.watch()
	return e, nil
}

// EdgePin is a taken input. Every detected edge is one occurrence on the
// Edges signal.
type EdgePin struct {
	pin     gpio.PinIn
	edges   *executor.Signal
	done    chan struct{}
	stopped chan struct{}
	halt    sync.Once
}

// Read samples the current level.
func (e *EdgePin) Read() gpio.Level {
	return e.pin.Read()
}

// Edges returns the edge event. Awaiting it resumes once per edge.
func (e *EdgePin) Edges() *executor.Signal {
	return e.edges
}

func (e *EdgePin) String() string {
	return e.pin.String()
}

// Halt stops edge detection and waits for the watcher to exit. Edges after
// Halt are not reported.
func (e *EdgePin) Halt() error {
	var err error
	e.halt.Do(func() {
		close(e.done)
		err = e.pin.Halt()
		<-e.stopped
	})
	return err
}

// edgeWait bounds each wait so the watcher notices Halt on pins whose
// WaitForEdge ignores it.
const edgeWait = 100 * time.Millisecond

func (e *EdgePin) watch() {
	defer close(e.stopped)
	for {
		select {
		case <-e.done:
			return
		default:
		}
		if e.pin.WaitForEdge(edgeWait) {
			select {
			case <-e.done:
				return
			default:
			}
			e.edges.Notify()
		}
	}
}

// Bus is the handle of the I²C bus master.
type Bus struct {
	hw    i2c.Bus
	speed physic.Frequency
	log   *logging.Logger
	taken atomic.Bool
}

func (b *Bus) String() string {
	return b.hw.String()
}

// Take applies the configured bus speed and starts the bus master.
func (b *Bus) Take() (*bus.Master, error) {
	if !b.taken.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}
	m := bus.NewMaster(b.hw, bus.WithLogger(b.log))
	if b.speed > 0 {
		if err := m.SetSpeed(b.speed); err != nil {
			m.Close()
			return nil, errors.Wrapf(err, "board: failed to set %s speed to %s", b.hw, b.speed)
		}
	}
	return m, nil
}
