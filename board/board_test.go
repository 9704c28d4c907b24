package board

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/executor"
	"github.com/BeatGlow/gpios/logging"
)

type speedBus struct {
	i2ctest.Record
	speed physic.Frequency
}

func (b *speedBus) SetSpeed(f physic.Frequency) error {
	b.speed = f
	return nil
}

func testPins() (*gpiotest.Pin, *gpiotest.Pin, *speedBus) {
	led := &gpiotest.Pin{N: "LED", Num: 5}
	button := &gpiotest.Pin{N: "B1", Num: 13, EdgesChan: make(chan gpio.Level)}
	return led, button, new(speedBus)
}

func TestLoad(t *testing.T) {
	if len(Boards()) == 0 {
		t.Fatal("empty board table")
	}

	cfg, err := Load("stm32-gpios")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LED.Pin != "PA5" || cfg.Button.Pin != "PC13" || cfg.Button.Name != "B1" {
		t.Errorf("unexpected pins %+v %+v", cfg.LED, cfg.Button)
	}
	if cfg.Display.Address != 0x3c || cfg.Display.Width != 128 || cfg.Display.Height != 64 {
		t.Errorf("unexpected display %+v", cfg.Display)
	}
	if cfg.Display.Origin != (Point{X: 0, Y: 10}) {
		t.Errorf("unexpected origin %+v", cfg.Display.Origin)
	}
	if !cfg.LED.InitialLevel() {
		t.Error("LED should start high")
	}

	d, err := cfg.BlinkInterval()
	if err != nil || d != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s (%v)", d, err)
	}
	f, err := cfg.I2C.Frequency()
	if err != nil || f != 100*physic.KiloHertz {
		t.Errorf("expected 100kHz, got %s (%v)", f, err)
	}

	if _, err = Load("nope"); err == nil {
		t.Error("expected unknown board to fail")
	}
}

func TestConfigErrors(t *testing.T) {
	cfg := Config{Blink: "soon", I2C: I2C{Speed: "fast"}, LogLevel: "loud"}
	if _, err := cfg.BlinkInterval(); err == nil {
		t.Error("expected blink interval error")
	}
	if _, err := cfg.I2C.Frequency(); err == nil {
		t.Error("expected speed error")
	}
	if _, err := cfg.Level(); err == nil {
		t.Error("expected level error")
	}
	if _, err := Bind(cfg, Pins{}, nil); err == nil {
		t.Error("expected bind to reject the speed")
	}
}

func TestHandlesAreTakenOnce(t *testing.T) {
	cfg, _ := Load("sim")
	led, button, hw := testPins()
	p, err := Bind(cfg, Pins{LED: led, Button: button, Bus: hw}, logging.New(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "sim" || p.Button.Name() != "B1" {
		t.Errorf("unexpected peripherals %q %q", p.Name, p.Button.Name())
	}

	t.Run("output", func(t *testing.T) {
		out, err := p.LED.Take()
		if err != nil {
			t.Fatal(err)
		}
		if out.Name() != "LED" || led.Read() != gpio.High {
			t.Error("output not driven to its initial level")
		}
		if _, err = p.LED.Take(); !errors.Is(err, ErrConsumed) {
			t.Errorf("expected ErrConsumed, got %v", err)
		}
	})

	t.Run("input", func(t *testing.T) {
		in, err := p.Button.Take()
		if err != nil {
			t.Fatal(err)
		}
		if button.P != gpio.PullUp {
			t.Errorf("expected pull-up, got %s", button.P)
		}
		if in.Read() != gpio.High {
			t.Error("idle input should read high")
		}
		if _, err = p.Button.Take(); !errors.Is(err, ErrConsumed) {
			t.Errorf("expected ErrConsumed, got %v", err)
		}

		button.EdgesChan <- gpio.Low
		if err = executor.BlockOn(in.Edges()); err != nil {
			t.Fatal(err)
		}
		if in.Read() != gpio.Low {
			t.Error("expected low after the edge")
		}
	})

	t.Run("bus", func(t *testing.T) {
		m, err := p.I2C.Take()
		if err != nil {
			t.Fatal(err)
		}
		defer m.Close()
		if hw.speed != 400*physic.KiloHertz {
			t.Errorf("expected 400kHz, got %s", hw.speed)
		}
		if _, err = p.I2C.Take(); !errors.Is(err, ErrConsumed) {
			t.Errorf("expected ErrConsumed, got %v", err)
		}
	})
}

func TestInputWithoutEdges(t *testing.T) {
	cfg, _ := Load("sim")
	led, _, hw := testPins()
	p, err := Bind(cfg, Pins{LED: led, Button: &gpiotest.Pin{N: "B1"}, Bus: hw}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = p.Button.Take(); err == nil {
		t.Fatal("expected edge configuration to fail")
	}
}

func TestInitOnce(t *testing.T) {
	cfg, _ := Load("sim")
	Init(cfg, nil)
	if _, err := Init(cfg, nil); !errors.Is(err, ErrAcquired) {
		t.Fatalf("expected ErrAcquired, got %v", err)
	}
}

func TestEdgePinHalt(t *testing.T) {
	cfg, _ := Load("sim")
	led, button, hw := testPins()
	button.EdgesChan = make(chan gpio.Level, 4)
	p, err := Bind(cfg, Pins{LED: led, Button: button, Bus: hw}, nil)
	if err != nil {
		t.Fatal(err)
	}
	in, err := p.Button.Take()
	if err != nil {
		t.Fatal(err)
	}

	button.EdgesChan <- gpio.Low
	deadline := time.Now().Add(2 * time.Second)
	for in.Edges().Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := in.Edges().Pending(); n != 1 {
		t.Fatalf("expected one edge before halting, got %d", n)
	}

	halted := make(chan error, 1)
	go func() { halted <- in.Halt() }()
	select {
	case err = <-halted:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Halt did not stop the watcher")
	}

	button.EdgesChan <- gpio.High
	time.Sleep(3 * edgeWait)
	if n := len(button.EdgesChan); n != 1 {
		t.Errorf("expected the edge after Halt to stay unread, %d queued", n)
	}
	if n := in.Edges().Pending(); n != 1 {
		t.Errorf("expected no edge after Halt, got %d", n)
	}
	if err = in.Halt(); err != nil {
		t.Errorf("second Halt: %v", err)
	}
}

type pinnedBus struct {
	speedBus
	scl, sda gpio.PinIO
}

func (b *pinnedBus) SCL() gpio.PinIO { return b.scl }
func (b *pinnedBus) SDA() gpio.PinIO { return b.sda }

func TestBusLines(t *testing.T) {
	cfg, _ := Load("raspberrypi")
	scl := &gpiotest.Pin{N: "GPIO3", Num: 3}
	sda := &gpiotest.Pin{N: "GPIO2", Num: 2}

	t.Run("match", func(t *testing.T) {
		led, button, _ := testPins()
		hw := &pinnedBus{scl: scl, sda: sda}
		if _, err := Bind(cfg, Pins{LED: led, Button: button, Bus: hw}, nil); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("swapped", func(t *testing.T) {
		led, button, _ := testPins()
		hw := &pinnedBus{scl: sda, sda: scl}
		if _, err := Bind(cfg, Pins{LED: led, Button: button, Bus: hw}, nil); !errors.Is(err, ErrBusLines) {
			t.Fatalf("expected ErrBusLines, got %v", err)
		}
	})

	t.Run("unexposed", func(t *testing.T) {
		led, button, _ := testPins()
		hw := &pinnedBus{scl: gpio.INVALID, sda: gpio.INVALID}
		if _, err := Bind(cfg, Pins{LED: led, Button: button, Bus: hw}, nil); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("unset", func(t *testing.T) {
		led, button, _ := testPins()
		hw := &pinnedBus{scl: sda, sda: scl}
		c := cfg
		c.I2C.SCL, c.I2C.SDA = "", ""
		if _, err := Bind(c, Pins{LED: led, Button: button, Bus: hw}, nil); err != nil {
			t.Fatal(err)
		}
	})
}
