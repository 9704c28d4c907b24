// Command gpios is the board firmware: it blinks the LED, reports button
// edges and shows a banner on the OLED display.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/boot"
	"github.com/BeatGlow/gpios/fault"
	"github.com/BeatGlow/gpios/logging"
)

// boardName selects the board description. The default binds through the
// periph host drivers; other tables, such as stm32-gpios whose pins no host
// driver registers, are selected with -ldflags "-X main.boardName=<name>".
var boardName = "raspberrypi"

func main() {
	log := logging.New(logging.Stdout(), nil)

	cfg, err := board.Load(boardName)
	if err != nil {
		fault.Halt(log, fault.New(boot.StagePeripherals, err))
	}

	log, closeLog, err := boot.Logger(cfg, nil)
	if err != nil {
		fault.Halt(logging.New(logging.Stdout(), nil), fault.New(boot.StagePeripherals, err))
	}
	fault.SetHandler(func(error) {
		closeLog()
		os.Exit(1)
	})

	p, err := board.Init(cfg, log.With("board"))
	if err != nil {
		fault.Halt(log, fault.New(boot.StagePeripherals, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fault.Halt(log, boot.Run(ctx, p, cfg, log))
}
