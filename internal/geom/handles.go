package geom

import "math"

// HandleSize is the drawn size of a resize handle. The hotspot extends
// HandleSize in every direction from the handle centre.
const HandleSize = 8

// Handle identifies a resize hotspot on an object's bounding box.
type Handle int

const (
	HandleNone Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	MiddleLeft
	MiddleRight
)

var handleNames = [...]string{"none", "tl", "tr", "bl", "br", "ml", "mr"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

func (h Handle) left() bool   { return h == TopLeft || h == BottomLeft || h == MiddleLeft }
func (h Handle) right() bool  { return h == TopRight || h == BottomRight || h == MiddleRight }
func (h Handle) top() bool    { return h == TopLeft || h == TopRight }
func (h Handle) bottom() bool { return h == BottomLeft || h == BottomRight }

// Handle sets exposed by object kind. Text boxes only resize horizontally.
var (
	ImageHandles = []Handle{TopLeft, TopRight, BottomLeft, BottomRight, MiddleLeft, MiddleRight}
	TextHandles  = []Handle{MiddleLeft, MiddleRight}
)

// Minimum box sizes per object kind.
var (
	MinImageSize = Size{Width: 20, Height: 20}
	MinTextSize  = Size{Width: 50, Height: 20}
)

// HandlePos returns the centre of handle h on r.
func HandlePos(r Rect, h Handle) Point {
	switch h {
	case TopLeft:
		return Point{r.X, r.Y}
	case TopRight:
		return Point{r.Right(), r.Y}
	case BottomLeft:
		return Point{r.X, r.Bottom()}
	case BottomRight:
		return Point{r.Right(), r.Bottom()}
	case MiddleLeft:
		return Point{r.X, r.Y + r.Height/2}
	case MiddleRight:
		return Point{r.Right(), r.Y + r.Height/2}
	}
	return Point{}
}

// HandleAt returns the first handle of set whose hotspot contains p.
func HandleAt(r Rect, set []Handle, p Point) Handle {
	for _, h := range set {
		c := HandlePos(r, h)
		if math.Abs(p.X-c.X) <= HandleSize && math.Abs(p.Y-c.Y) <= HandleSize {
			return h
		}
	}
	return HandleNone
}

// Resize applies a drag of (dx, dy) on handle h to the box start.
// Left and top handles move the origin so the opposite edge stays put,
// also when the result is clamped to min. With widthOnly the vertical
// component is ignored.
func Resize(start Rect, h Handle, dx, dy float64, widthOnly bool, min Size) Rect {
	r := start
	switch {
	case h.left():
		r.Width = math.Max(start.Width-dx, min.Width)
		r.X = start.Right() - r.Width
	case h.right():
		r.Width = math.Max(start.Width+dx, min.Width)
	}
	if !widthOnly {
		switch {
		case h.top():
			r.Height = math.Max(start.Height-dy, min.Height)
			r.Y = start.Bottom() - r.Height
		case h.bottom():
			r.Height = math.Max(start.Height+dy, min.Height)
		}
	}
	r.Width = math.Max(r.Width, min.Width)
	r.Height = math.Max(r.Height, min.Height)
	return r
}

// Cursor is the pointer shape a host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResizeNWSE
	CursorResizeNESW
	CursorResizeEW
	CursorCrosshair
	CursorText
	CursorPointer
)

// CursorFor maps a hover target to a cursor.
func CursorFor(h Handle, overObject bool) Cursor {
	switch h {
	case TopLeft, BottomRight:
		return CursorResizeNWSE
	case TopRight, BottomLeft:
		return CursorResizeNESW
	case MiddleLeft, MiddleRight:
		return CursorResizeEW
	}
	if overObject {
		return CursorMove
	}
	return CursorDefault
}

// Delete affordance geometry: an icon centred below the object.
const (
	DeleteIconSize    = 24
	deleteIconGap     = 10
	deleteIconHotSlop = 5
)

// DeleteIcon returns where the delete icon is drawn for an object at r.
func DeleteIcon(r Rect) Rect {
	return Rect{
		X:      r.X + r.Width/2 - DeleteIconSize/2,
		Y:      r.Bottom() + deleteIconGap,
		Width:  DeleteIconSize,
		Height: DeleteIconSize,
	}
}

// DeleteHotspot is DeleteIcon padded by the hit tolerance.
func DeleteHotspot(r Rect) Rect {
	return DeleteIcon(r).Inset(deleteIconHotSlop)
}
