package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContainsEdgesInclusive(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Pt(15, 15), true},
		{"top-left corner", Pt(10, 10), true},
		{"bottom-right corner", Pt(30, 20), true},
		{"left of box", Pt(9.9, 15), false},
		{"below box", Pt(15, 20.1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, a.Overlaps(Rect{X: 5, Y: 5, Width: 10, Height: 10}))
	assert.True(t, a.Overlaps(Rect{X: 10, Y: 10, Width: 1, Height: 1}))
	assert.False(t, a.Overlaps(Rect{X: 11, Y: 0, Width: 5, Height: 5}))
}

func TestBounds(t *testing.T) {
	assert.Equal(t, Rect{}, Bounds(nil))
	got := Bounds([]Point{{5, 7}, {1, 9}, {3, 2}})
	assert.Equal(t, Rect{X: 1, Y: 2, Width: 4, Height: 7}, got)
}

func TestHandleAt(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 50, Height: 40}

	assert.Equal(t, TopLeft, HandleAt(r, ImageHandles, Pt(95, 104)))
	assert.Equal(t, BottomRight, HandleAt(r, ImageHandles, Pt(158, 140)))
	assert.Equal(t, MiddleRight, HandleAt(r, ImageHandles, Pt(150, 120)))
	assert.Equal(t, HandleNone, HandleAt(r, ImageHandles, Pt(125, 120)))

	// Text boxes have no corner handles.
	assert.Equal(t, HandleNone, HandleAt(r, TextHandles, Pt(100, 100)))
	assert.Equal(t, MiddleLeft, HandleAt(r, TextHandles, Pt(101, 121)))
}

func TestResize(t *testing.T) {
	start := Rect{X: 100, Y: 100, Width: 80, Height: 60}
	tests := []struct {
		name      string
		h         Handle
		dx, dy    float64
		widthOnly bool
		min       Size
		want      Rect
	}{
		{"bottom-right grows", BottomRight, 20, 10, false, MinImageSize, Rect{100, 100, 100, 70}},
		{"top-left keeps opposite corner", TopLeft, 30, 20, false, MinImageSize, Rect{130, 120, 50, 40}},
		{"top-left past opposite edge clamps", TopLeft, 500, 500, false, MinImageSize, Rect{160, 140, 20, 20}},
		{"right past left edge clamps", MiddleRight, -500, 0, false, MinImageSize, Rect{100, 100, 20, 60}},
		{"width only ignores dy", BottomRight, 10, 50, true, MinTextSize, Rect{100, 100, 90, 60}},
		{"text left clamps at 50", MiddleLeft, 70, 0, true, MinTextSize, Rect{130, 100, 50, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(start, tt.h, tt.dx, tt.dy, tt.widthOnly, tt.min)
			assert.InDeltaMapValues(t, rectMap(tt.want), rectMap(got), 1e-9)
			assert.GreaterOrEqual(t, got.Width, tt.min.Width)
			assert.GreaterOrEqual(t, got.Height, tt.min.Height)
		})
	}
}

func rectMap(r Rect) map[string]float64 {
	return map[string]float64{"x": r.X, "y": r.Y, "w": r.Width, "h": r.Height}
}

func TestCursorFor(t *testing.T) {
	assert.Equal(t, CursorResizeNWSE, CursorFor(TopLeft, true))
	assert.Equal(t, CursorResizeNESW, CursorFor(BottomLeft, true))
	assert.Equal(t, CursorResizeEW, CursorFor(MiddleRight, true))
	assert.Equal(t, CursorMove, CursorFor(HandleNone, true))
	assert.Equal(t, CursorDefault, CursorFor(HandleNone, false))
}

func TestFitFontSize(t *testing.T) {
	assert.InDelta(t, 12, FitFontSize(24, 100, 50), 1e-9)
	assert.InDelta(t, 48, FitFontSize(24, 100, 200), 1e-9)
	assert.Equal(t, float64(MinFontSize), FitFontSize(24, 100, 1))
	assert.Equal(t, 24.0, FitFontSize(24, 0, 50))
}

func TestEstimateFontSize(t *testing.T) {
	assert.Equal(t, float64(DefaultFontSize), EstimateFontSize("", 100, 100))
	// 10 runes at 0.6em in 120px → 20px; one line in 48px → 40px.
	assert.InDelta(t, 20, EstimateFontSize("abcdefghij", 120, 48), 1e-9)
	// Height bound wins for many lines.
	assert.InDelta(t, 10, EstimateFontSize("a\nb\nc", 1000, 36), 1e-9)
}

func TestTextBlockHeight(t *testing.T) {
	assert.InDelta(t, 28.8, TextBlockHeight("one", 24), 1e-9)
	assert.InDelta(t, 57.6, TextBlockHeight("one\ntwo", 24), 1e-9)
}
