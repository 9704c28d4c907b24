package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BeatGlow/gpios/board"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the known boards",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, b := range board.Boards() {
			fmt.Fprintf(w, "%-12s led=%s button=%s(%s) i2c=%s display=%s@%#02x\n",
				b.Name, b.LED.Pin, b.Button.Pin, b.Button.Name, b.I2C.Bus,
				b.Display.Controller, b.Display.Address)
		}
	},
}
