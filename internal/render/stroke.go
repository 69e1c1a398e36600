package render

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/state"
)

// highlighterOpacity keeps highlighter ink translucent over page content.
const highlighterOpacity = 0.5

// strokeMask rasterizes the path of pts at width into a coverage mask,
// with round caps and joins. It returns the mask and the destination
// rectangle it covers, clipped to clip. A nil mask means nothing to draw.
func strokeMask(pts []geom.Point, width float64, clip image.Rectangle) (*image.Alpha, image.Rectangle) {
	pts = dedupe(pts)
	if len(pts) == 0 {
		return nil, image.Rectangle{}
	}
	if len(pts) == 1 {
		// A zero-length path still leaves a round dot, as on a canvas.
		pts = append(pts, geom.Pt(pts[0].X+0.01, pts[0].Y))
	}
	if width <= 0 {
		width = 1
	}
	b := geom.Bounds(pts).Inset(width/2 + 2)
	r := image.Rect(
		int(math.Floor(b.X)), int(math.Floor(b.Y)),
		int(math.Ceil(b.Right())), int(math.Ceil(b.Bottom())),
	).Intersect(clip)
	if r.Empty() {
		return nil, image.Rectangle{}
	}

	w, h := r.Dx(), r.Dy()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, mask, mask.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetStroke(fixed.Int26_6(width*64), fixed.I(4), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	dasher.SetColor(color.Opaque)

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	dasher.Start(rasterx.ToFixedP(pts[0].X-ox, pts[0].Y-oy))
	for _, p := range pts[1:] {
		dasher.Line(rasterx.ToFixedP(p.X-ox, p.Y-oy))
	}
	dasher.Stop(false)
	dasher.Draw()
	return mask, r
}

func dedupe(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == pts[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// drawStroke composites one stroke onto dst using its tool's blend.
// Strokes with fewer than two points draw nothing.
func drawStroke(dst *image.RGBA, s state.Stroke) {
	if len(s.Points) < 2 {
		return
	}
	mask, r := strokeMask(s.Points, s.StrokeWidth, dst.Bounds())
	if mask == nil {
		return
	}
	switch s.Tool {
	case state.ToolEraser:
		compositeMask(dst, r, mask, color.NRGBA{A: 255}, 1, blendErase)
	case state.ToolHighlighter:
		compositeMask(dst, r, mask, ParseColor(s.Color), highlighterOpacity, blendMultiply)
	default:
		compositeMask(dst, r, mask, ParseColor(s.Color), 1, blendOver)
	}
}
