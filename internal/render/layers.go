package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/state"
)

func (p *Pipeline) drawBackground(dst *image.RGBA, t Theme, nt NoteType) {
	pal := PaletteFor(t)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(pal.Background), image.Point{}, draw.Src)
	if nt != NoteLined {
		return
	}
	w := dst.Bounds().Dx()
	for y := RulePitch; y < dst.Bounds().Dy(); y += RulePitch {
		draw.Draw(dst, image.Rect(0, y, w, y+1), image.NewUniform(pal.Rule), image.Point{}, draw.Src)
	}
}

// drawStrokes brings the committed-stroke cache up to date and puts the
// live stroke on top of a copy of it.
func (p *Pipeline) drawStrokes(sc Scene) {
	lines := sc.Doc.Lines
	committed := len(lines)
	if sc.LiveStroke >= 0 && sc.LiveStroke < len(lines) {
		committed = sc.LiveStroke
	}
	if committed < p.cached {
		clearRGBA(p.cache)
		p.cached = 0
	}
	for _, s := range lines[p.cached:committed] {
		drawStroke(p.cache, s)
	}
	p.cached = committed

	dst := p.layers[LayerStrokes]
	copy(dst.Pix, p.cache.Pix)
	for _, s := range lines[committed:] {
		drawStroke(dst, s)
	}
}

func (p *Pipeline) drawObjects(dst *image.RGBA, sc Scene) {
	w, h := p.Size()
	canvas := geom.Rect{Width: float64(w), Height: float64(h)}
	for _, o := range sc.Doc.Objects() {
		if sc.HiddenID != "" && o.ID() == sc.HiddenID {
			continue
		}
		if !o.Bounds().Overlaps(canvas) {
			continue
		}
		p.drawObject(dst, o, sc)
	}
}

func (p *Pipeline) drawObject(dst *image.RGBA, o state.Object, sc Scene) {
	switch o.Kind {
	case state.KindImage:
		if sc.Bitmap == nil {
			return
		}
		bmp := sc.Bitmap(o.Image.ID)
		if bmp == nil {
			return
		}
		xdraw.ApproxBiLinear.Scale(dst, pixelRect(o.Bounds()), bmp, bmp.Bounds(), xdraw.Over, nil)
	case state.KindText:
		t := o.Text
		c := t.Color
		if c == "" {
			c = PaletteFor(sc.Theme).Ink
		}
		p.fonts.Draw(dst, t.Text, t.X, t.Y, t.FontSize, ParseColor(c))
	}
}

func (p *Pipeline) drawInteraction(dst *image.RGBA, sc Scene) {
	if sc.Preview != nil && !sc.Preview.IsZero() {
		p.drawObject(dst, *sc.Preview, sc)
		drawSelection(dst, *sc.Preview)
	} else if sc.Selected != nil && !sc.Selected.IsZero() {
		drawSelection(dst, *sc.Selected)
	}
	if sc.DeleteFor != nil && !sc.DeleteFor.IsZero() {
		drawDeleteIcon(dst, geom.DeleteIcon(sc.DeleteFor.Bounds()))
	}
}

func drawSelection(dst *image.RGBA, o state.Object) {
	r := pixelRect(o.Bounds())
	c := image.NewUniform(selectionColor)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge, c, image.Point{}, draw.Over)
	}
	half := geom.HandleSize / 2.0
	for _, h := range o.Handles() {
		hp := geom.HandlePos(o.Bounds(), h)
		box := pixelRect(geom.Rect{X: hp.X - half, Y: hp.Y - half, Width: geom.HandleSize, Height: geom.HandleSize})
		draw.Draw(dst, box, c, image.Point{}, draw.Over)
	}
}

// drawDeleteIcon paints a translucent square with a trash can.
func drawDeleteIcon(dst *image.RGBA, icon geom.Rect) {
	draw.Draw(dst, pixelRect(icon), image.NewUniform(affordanceBG), image.Point{}, draw.Over)

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	x, y := icon.X, icon.Y
	paths := [][]geom.Point{
		// lid
		{{X: x + 6, Y: y + 7}, {X: x + 18, Y: y + 7}},
		{{X: x + 10, Y: y + 7}, {X: x + 10, Y: y + 5}, {X: x + 14, Y: y + 5}, {X: x + 14, Y: y + 7}},
		// can
		{{X: x + 7.5, Y: y + 9}, {X: x + 8.5, Y: y + 19}, {X: x + 15.5, Y: y + 19}, {X: x + 16.5, Y: y + 9}},
		{{X: x + 12, Y: y + 11}, {X: x + 12, Y: y + 17}},
	}
	for _, pts := range paths {
		m, mr := strokeMask(pts, 1.5, dst.Bounds())
		if m != nil {
			compositeMask(dst, mr, m, white, 1, blendOver)
		}
	}
}

// pixelRect snaps a float box to whole pixels.
func pixelRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}
