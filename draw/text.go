package draw

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Face names.
const (
	FaceBasic       = "basic7x13"
	FaceInconsolata = "inconsolata8x16"
	FaceGoMono      = "gomono"
	FaceProggy      = "proggy"
)

// DefaultFace is used when no face is named.
const DefaultFace = FaceBasic

// Face renders a single line of text. The origin of a line is the left end
// of its baseline.
type Face interface {
	// Name of the face.
	Name() string

	// Text draws s onto dst and returns the dirty rectangle.
	Text(dst Image, origin image.Point, s string, c color.Color) image.Rectangle

	// Measure returns the rectangle s would cover when drawn at the origin.
	Measure(s string) image.Rectangle
}

var (
	facesMu sync.Mutex
	faces   = map[string]func() (Face, error){
		FaceBasic: func() (Face, error) {
			return &xFace{name: FaceBasic, face: basicfont.Face7x13}, nil
		},
		FaceInconsolata: func() (Face, error) {
			return &xFace{name: FaceInconsolata, face: inconsolata.Regular8x16}, nil
		},
		FaceGoMono: newGoMono,
		FaceProggy: func() (Face, error) {
			return &tinyFace{name: FaceProggy, font: &proggy.TinySZ8pt7b}, nil
		},
	}
	loaded = map[string]Face{}
)

// Faces lists the known face names.
func Faces() []string {
	facesMu.Lock()
	defer facesMu.Unlock()
	names := make([]string, 0, len(faces))
	for name := range faces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFace returns the named face. An empty name returns DefaultFace.
func LookupFace(name string) (Face, error) {
	if name == "" {
		name = DefaultFace
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := loaded[name]; ok {
		return f, nil
	}
	open, ok := faces[name]
	if !ok {
		return nil, fmt.Errorf("draw: unknown font face %q", name)
	}
	f, err := open()
	if err != nil {
		return nil, err
	}
	loaded[name] = f
	return f, nil
}

// Text draws s with the named face. It is shorthand for LookupFace followed
// by Face.Text.
func Text(dst Image, origin image.Point, s, face string, c color.Color) (image.Rectangle, error) {
	f, err := LookupFace(face)
	if err != nil {
		return image.Rectangle{}, err
	}
	return f.Text(dst, origin, s, c), nil
}

// xFace draws with a golang.org/x/image font.Face.
type xFace struct {
	name string
	face font.Face
}

func (f *xFace) Name() string { return f.name }

func (f *xFace) Text(dst Image, origin image.Point, s string, c color.Color) image.Rectangle {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(s)
	return f.Measure(s).Add(origin).Intersect(dst.Bounds())
}

func (f *xFace) Measure(s string) image.Rectangle {
	b, _ := font.BoundString(f.face, s)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

func newGoMono() (Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("draw: parse Go Mono: %w", err)
	}
	return &xFace{
		name: FaceGoMono,
		face: truetype.NewFace(ttf, &truetype.Options{
			Size:    10,
			DPI:     72,
			Hinting: font.HintingFull,
		}),
	}, nil
}

// tinyFace draws with a tinyfont bitmap font.
type tinyFace struct {
	name string
	font tinyfont.Fonter
}

func (f *tinyFace) Name() string { return f.name }

func (f *tinyFace) Text(dst Image, origin image.Point, s string, c color.Color) image.Rectangle {
	r, g, b, a := c.RGBA()
	tinyfont.WriteLine(&displayer{dst: dst}, f.font, int16(origin.X), int16(origin.Y), s, color.RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	})
	return f.Measure(s).Add(origin).Intersect(dst.Bounds())
}

func (f *tinyFace) Measure(s string) image.Rectangle {
	_, w := tinyfont.LineWidth(f.font, s)
	h := int(f.font.GetYAdvance())
	return image.Rect(0, -h, int(w), h/4)
}

// displayer exposes an Image as a tinygo drivers.Displayer.
type displayer struct {
	dst Image
}

func (d *displayer) Size() (x, y int16) {
	b := d.dst.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d *displayer) SetPixel(x, y int16, c color.RGBA) {
	d.dst.Set(int(x), int(y), c)
}

func (d *displayer) Display() error {
	return nil
}
