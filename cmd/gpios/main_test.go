package main

import (
	"strings"
	"testing"

	"github.com/BeatGlow/gpios/board"
)

func TestDefaultBoard(t *testing.T) {
	cfg, err := board.Load(boardName)
	if err != nil {
		t.Fatal(err)
	}
	// periph host drivers name Raspberry Pi header pins GPIOn and buses by
	// number
	for _, pin := range []string{cfg.LED.Pin, cfg.Button.Pin, cfg.I2C.SCL, cfg.I2C.SDA} {
		if !strings.HasPrefix(pin, "GPIO") {
			t.Errorf("pin %q has no host driver name", pin)
		}
	}
	if cfg.I2C.Bus != "1" {
		t.Errorf("expected I²C bus 1, got %q", cfg.I2C.Bus)
	}
}
