package draw_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/BeatGlow/gpios/draw"
	"github.com/BeatGlow/gpios/pixel"
)

func TestFaces(t *testing.T) {
	for _, name := range draw.Faces() {
		t.Run(name, func(it *testing.T) {
			f, err := draw.LookupFace(name)
			if err != nil {
				it.Fatal(err)
			}
			if f.Name() != name {
				it.Errorf("expected face %q, got %q", name, f.Name())
			}

			img := pixel.NewMonoVerticalLSBImage(128, 64)
			origin := image.Pt(0, 20)
			dirty := f.Text(img, origin, "Hello", color.White)
			if img.Lit() == 0 {
				it.Fatal("nothing was drawn")
			}
			if dirty.Empty() {
				it.Fatal("empty dirty rectangle")
			}

			b := img.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					if img.At(x, y) == pixel.On && !(image.Point{X: x, Y: y}).In(dirty) {
						it.Fatalf("pixel (%d,%d) drawn outside of %s", x, y, dirty)
					}
				}
			}
		})
	}
}

func TestLookupFace(t *testing.T) {
	f, err := draw.LookupFace("")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != draw.DefaultFace {
		t.Errorf("expected default face %q, got %q", draw.DefaultFace, f.Name())
	}
	again, _ := draw.LookupFace(draw.DefaultFace)
	if again != f {
		t.Error("faces are not cached")
	}
	if _, err = draw.LookupFace("comic-sans"); err == nil {
		t.Error("expected unknown face to fail")
	}
}

func TestTextIsDeterministic(t *testing.T) {
	a := pixel.NewMonoVerticalLSBImage(128, 64)
	b := pixel.NewMonoVerticalLSBImage(128, 64)
	for _, img := range []*pixel.MonoVerticalLSBImage{a, b} {
		if _, err := draw.Text(img, image.Pt(0, 10), "Hello from Embassy!", "", color.White); err != nil {
			t.Fatal(err)
		}
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs: %#x != %#x", i, a.Pix[i], b.Pix[i])
		}
	}
}
