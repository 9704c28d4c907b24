package task

import (
	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/executor"
	"github.com/BeatGlow/gpios/logging"
)

// Button reports the level of an input after every edge.
//
// Rising and falling edges are not told apart and there is no debouncing:
// each edge yields one record with the level sampled on resumption.
type Button struct {
	pin   *board.EdgePin
	name  string
	log   *logging.Logger
	armed bool
}

// NewButton takes the input handle. An empty name uses the board label.
func NewButton(h *board.Input, name string, log *logging.Logger) (*Button, error) {
	pin, err := h.Take()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = h.Name()
	}
	return &Button{
		pin:  pin,
		name: name,
		log:  log,
	}, nil
}

// Name returns the label used in records.
func (b *Button) Name() string {
	return b.name
}

// Poll reports the sampled level when resumed by an edge, then waits for
// the next one.
func (b *Button) Poll(ctx *executor.Context) {
	if b.armed {
		level := "low"
		if b.pin.Read() {
			level = "high"
		}
		b.log.With(ctx.Name()).Infof("%s changed: %s", b.name, level)
	}
	b.armed = true
	ctx.Await(b.pin.Edges())
}

// Halt stops edge detection on the input. The task must not be polled
// afterwards.
func (b *Button) Halt() error {
	return b.pin.Halt()
}
