package sim

import (
	"bufio"
	"io"

	"github.com/BeatGlow/gpios/pixel"
)

// Render draws img as text, two rows per line using half blocks.
func Render(w io.Writer, img *pixel.MonoVerticalLSBImage) error {
	out := bufio.NewWriter(w)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.At(x, y) == pixel.On
			bottom := img.At(x, y+1) == pixel.On
			switch {
			case top && bottom:
				out.WriteRune('█')
			case top:
				out.WriteRune('▀')
			case bottom:
				out.WriteRune('▄')
			default:
				out.WriteRune(' ')
			}
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}
