// Command gpios-sim runs the firmware against a simulated board.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/BeatGlow/gpios/board"
	"github.com/BeatGlow/gpios/boot"
	"github.com/BeatGlow/gpios/sim"
)

var (
	boardName string
	duration  time.Duration
	presses   []time.Duration
	nackAt    int
	show      bool
	logLevel  string

	rootCmd = &cobra.Command{
		Use:          "gpios-sim",
		Short:        "Run the firmware on a simulated board",
		Long:         "Run the blink and button tasks and the display banner against simulated pins and a recording I²C bus.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&boardName, "board", "b", "sim", "board description")
	rootCmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long (default: until interrupted)")
	rootCmd.Flags().DurationSliceVarP(&presses, "press", "p", nil, "toggle the button at these offsets, press first")
	rootCmd.Flags().IntVar(&nackAt, "nack-at", 0, "NACK the n-th I²C write")
	rootCmd.Flags().BoolVar(&show, "show", false, "render the display contents on exit")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override the board log level")
	rootCmd.AddCommand(boardsCmd)
}

func run(ctx context.Context) error {
	cfg, err := board.Load(boardName)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, closeLog, err := boot.Logger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	bench := sim.New(cfg)
	if err = bench.Register(); err != nil {
		return err
	}
	if nackAt > 0 {
		bench.Bus.FailAt(nackAt, nil)
	}

	p, err := board.Init(cfg, log.With("board"))
	if err != nil {
		return err
	}

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	for i, at := range presses {
		toggle := bench.Release
		if i%2 == 0 {
			toggle = bench.Press
		}
		t := time.AfterFunc(at, toggle)
		defer t.Stop()
	}

	err = boot.Run(ctx, p, cfg, log)
	if show {
		if rerr := sim.Render(os.Stdout, bench.Bus.Screen(cfg.Display.Address, cfg.Display.Width, cfg.Display.Height)); rerr != nil {
			return rerr
		}
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	log.With("fault").Errorf("%+v", err)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
