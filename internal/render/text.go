package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"StudyBoard/internal/geom"
)

// maxFaces bounds the face cache. Live resizing walks through many sizes.
const maxFaces = 64

// Fonts lays out and draws text in a single sans face at any size.
type Fonts struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewFonts parses the bundled Go Regular face.
func NewFonts() (*Fonts, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Fonts{font: f, faces: make(map[float64]font.Face)}, nil
}

func (f *Fonts) face(size float64) font.Face {
	size = math.Round(math.Max(size, 1)*4) / 4
	f.mu.Lock()
	defer f.mu.Unlock()
	if fc, ok := f.faces[size]; ok {
		return fc
	}
	if len(f.faces) >= maxFaces {
		for k, fc := range f.faces {
			fc.Close()
			delete(f.faces, k)
		}
	}
	fc, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only reachable for invalid sizes, which face already clamps.
		panic(err)
	}
	f.faces[size] = fc
	return fc
}

// Measure returns the width of the widest line of text and the height
// of the block at size, with lines advancing by geom.LineHeight.
func (f *Fonts) Measure(text string, size float64) (w, h float64) {
	fc := f.face(size)
	for _, line := range strings.Split(text, "\n") {
		adv := font.MeasureString(fc, line)
		w = math.Max(w, float64(adv)/64)
	}
	return w, geom.TextBlockHeight(text, size)
}

// Draw renders text with its top-left corner at (x, y).
func (f *Fonts) Draw(dst draw.Image, text string, x, y, size float64, c color.Color) {
	fc := f.face(size)
	ascent := float64(fc.Metrics().Ascent) / 64
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: fc}
	for i, line := range strings.Split(text, "\n") {
		base := y + float64(i)*size*geom.LineHeight + ascent
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(base * 64)}
		d.DrawString(line)
	}
}
