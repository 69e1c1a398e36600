package state

import (
	"StudyBoard/internal/geom"
)

// Tool is the ink kind a stroke was drawn with.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolEraser      Tool = "eraser"
)

// Stroke is one continuous freehand path. Once committed it only grows
// during its own drag gesture and is otherwise removed whole.
type Stroke struct {
	Tool        Tool         `json:"tool"`
	Color       string       `json:"color"`
	StrokeWidth float64      `json:"strokeWidth"`
	Points      []geom.Point `json:"points"`
}

func (s Stroke) clone() Stroke {
	s.Points = append([]geom.Point(nil), s.Points...)
	return s
}

// ImageObject is a placed bitmap. Src is an opaque decodable reference,
// usually a data URL.
type ImageObject struct {
	ID     string  `json:"id"`
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the object's bounding box.
func (o *ImageObject) Bounds() geom.Rect {
	return geom.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// TextObject is a multi-line text box.
type TextObject struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color"`
}

// Bounds returns the object's bounding box.
func (o *TextObject) Bounds() geom.Rect {
	return geom.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// Kind discriminates the Object variant.
type Kind int

const (
	KindImage Kind = iota + 1
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Object is either an image or a text box. Exactly one of Image and Text
// is set, matching Kind.
type Object struct {
	Kind  Kind
	Image *ImageObject
	Text  *TextObject
}

// ImageOf wraps an image in an Object.
func ImageOf(img *ImageObject) Object { return Object{Kind: KindImage, Image: img} }

// TextOf wraps a text box in an Object.
func TextOf(txt *TextObject) Object { return Object{Kind: KindText, Text: txt} }

// IsZero reports whether o holds nothing.
func (o Object) IsZero() bool { return o.Kind == 0 }

// ID returns the object id.
func (o Object) ID() string {
	switch o.Kind {
	case KindImage:
		return o.Image.ID
	case KindText:
		return o.Text.ID
	}
	return ""
}

// Bounds returns the object's bounding box.
func (o Object) Bounds() geom.Rect {
	switch o.Kind {
	case KindImage:
		return o.Image.Bounds()
	case KindText:
		return o.Text.Bounds()
	}
	return geom.Rect{}
}

// SetBounds moves and sizes the object in place.
func (o Object) SetBounds(r geom.Rect) {
	switch o.Kind {
	case KindImage:
		o.Image.X, o.Image.Y, o.Image.Width, o.Image.Height = r.X, r.Y, r.Width, r.Height
	case KindText:
		o.Text.X, o.Text.Y, o.Text.Width, o.Text.Height = r.X, r.Y, r.Width, r.Height
	}
}

// Handles returns the resize handles this kind exposes.
func (o Object) Handles() []geom.Handle {
	if o.Kind == KindText {
		return geom.TextHandles
	}
	return geom.ImageHandles
}

// MinSize returns the resize floor for this kind.
func (o Object) MinSize() geom.Size {
	if o.Kind == KindText {
		return geom.MinTextSize
	}
	return geom.MinImageSize
}

// Clone returns an Object backed by copies of the underlying value.
func (o Object) Clone() Object {
	switch o.Kind {
	case KindImage:
		img := *o.Image
		return ImageOf(&img)
	case KindText:
		txt := *o.Text
		return TextOf(&txt)
	}
	return Object{}
}

// Patch carries a partial property update. Nil fields are left alone;
// fields that do not exist on the target kind are ignored.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Text     *string  `json:"text,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Src      *string  `json:"src,omitempty"`
}

// Float returns a pointer to v, for building a Patch.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for building a Patch.
func String(v string) *string { return &v }

// Apply writes the set fields of p onto o.
func (p Patch) Apply(o Object) {
	setf := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	sets := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	switch o.Kind {
	case KindImage:
		setf(&o.Image.X, p.X)
		setf(&o.Image.Y, p.Y)
		setf(&o.Image.Width, p.Width)
		setf(&o.Image.Height, p.Height)
		sets(&o.Image.Src, p.Src)
	case KindText:
		setf(&o.Text.X, p.X)
		setf(&o.Text.Y, p.Y)
		setf(&o.Text.Width, p.Width)
		setf(&o.Text.Height, p.Height)
		setf(&o.Text.FontSize, p.FontSize)
		sets(&o.Text.Text, p.Text)
		sets(&o.Text.Color, p.Color)
	}
}
