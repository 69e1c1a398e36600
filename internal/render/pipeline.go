// Package render projects a document plus transient interaction state
// onto pixels. It keeps four layer buffers with independent dirty bits
// and composites them into one frame on demand.
package render

import (
	"image"
	"image/draw"
	"log/slog"

	"StudyBoard/internal/state"
)

// Layer is one of the stacked render buffers, bottom to top.
type Layer int

const (
	LayerBackground Layer = iota
	LayerStrokes
	LayerObjects
	LayerInteraction
	layerCount
)

var layerNames = [...]string{"background", "strokes", "objects", "interaction"}

func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return "unknown"
	}
	return layerNames[l]
}

// Scene is everything a frame depends on. The pipeline never mutates it.
type Scene struct {
	Doc      *state.Document
	Theme    Theme
	NoteType NoteType
	// Overlay leaves the background transparent so the surface can sit
	// over other content.
	Overlay bool
	// LiveStroke is the index in Doc.Lines of the stroke being drawn,
	// or -1.
	LiveStroke int
	// HiddenID is left out of the object layer, typically because the
	// interaction layer draws a preview of it.
	HiddenID string
	// Preview is the ghost of an object being moved or resized.
	Preview *state.Object
	// Selected gets a selection box and handles.
	Selected *state.Object
	// DeleteFor is the object showing the delete affordance.
	DeleteFor *state.Object
	// Bitmap returns the decoded bitmap for an image id, or nil while
	// it is not available.
	Bitmap func(id string) image.Image
}

// Pipeline owns the layer buffers of one surface.
type Pipeline struct {
	width, height int

	layers [layerCount]*image.RGBA
	dirty  [layerCount]bool
	out    *image.RGBA

	// cache holds Doc.Lines[:cached] rasterized on a transparent buffer.
	cache  *image.RGBA
	cached int

	scene        func() Scene
	requestFrame func()
	pending      bool

	fonts  *Fonts
	logger *slog.Logger
}

// NewPipeline creates a pipeline of w×h pixels. scene is read on every
// frame; requestFrame asks the host to call Frame soon.
func NewPipeline(w, h int, fonts *Fonts, scene func() Scene, requestFrame func(), logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if requestFrame == nil {
		requestFrame = func() {}
	}
	p := &Pipeline{
		fonts:        fonts,
		scene:        scene,
		requestFrame: requestFrame,
		logger:       logger.With("component", "render"),
	}
	p.Resize(w, h)
	return p
}

// Size returns the surface size in pixels.
func (p *Pipeline) Size() (int, int) { return p.width, p.height }

// Fonts returns the text renderer used for measuring and drawing.
func (p *Pipeline) Fonts() *Fonts { return p.fonts }

// Resize reallocates every buffer and marks all layers dirty.
func (p *Pipeline) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	p.width, p.height = w, h
	r := image.Rect(0, 0, w, h)
	for i := range p.layers {
		p.layers[i] = image.NewRGBA(r)
	}
	p.out = image.NewRGBA(r)
	p.cache = image.NewRGBA(r)
	p.cached = 0
	p.Invalidate()
}

// Invalidate marks layers for redraw and requests a frame. With no
// arguments every layer is marked.
func (p *Pipeline) Invalidate(layers ...Layer) {
	if len(layers) == 0 {
		for i := range p.dirty {
			p.dirty[i] = true
		}
	}
	for _, l := range layers {
		if l >= 0 && l < layerCount {
			p.dirty[l] = true
		}
	}
	p.request()
}

// ResetStrokeCache drops the committed-stroke cache. Call it whenever
// strokes are removed or replaced rather than appended.
func (p *Pipeline) ResetStrokeCache() {
	clearRGBA(p.cache)
	p.cached = 0
	p.Invalidate(LayerStrokes)
}

func (p *Pipeline) request() {
	if p.pending {
		return
	}
	p.pending = true
	p.requestFrame()
}

// Dirty reports whether l will be redrawn on the next frame.
func (p *Pipeline) Dirty(l Layer) bool { return p.dirty[l] }

// Layer returns the buffer of l as of the last frame.
func (p *Pipeline) Layer(l Layer) *image.RGBA { return p.layers[l] }

// Frame redraws the dirty layers and returns the composited image. The
// returned buffer is reused by later frames.
func (p *Pipeline) Frame() *image.RGBA {
	p.pending = false
	sc := p.scene()
	if sc.Doc == nil {
		sc.Doc = state.NewDocument()
	}
	if p.dirty[LayerBackground] {
		clearRGBA(p.layers[LayerBackground])
		if !sc.Overlay {
			p.drawBackground(p.layers[LayerBackground], sc.Theme, sc.NoteType)
		}
	}
	if p.dirty[LayerStrokes] {
		p.drawStrokes(sc)
	}
	if p.dirty[LayerObjects] {
		clearRGBA(p.layers[LayerObjects])
		p.drawObjects(p.layers[LayerObjects], sc)
	}
	if p.dirty[LayerInteraction] {
		clearRGBA(p.layers[LayerInteraction])
		p.drawInteraction(p.layers[LayerInteraction], sc)
	}
	p.dirty = [layerCount]bool{}

	clearRGBA(p.out)
	for _, l := range p.layers {
		draw.Draw(p.out, p.out.Bounds(), l, image.Point{}, draw.Over)
	}
	return p.out
}

// Thumbnail renders background, committed strokes and objects into a
// fresh buffer and encodes it as JPEG. The theme background is filled
// even in overlay mode. Pending persistence is not involved.
func (p *Pipeline) Thumbnail() ([]byte, error) {
	sc := p.scene()
	if sc.Doc == nil {
		sc.Doc = state.NewDocument()
	}
	img := p.Snapshot(sc, true)
	return encodeJPEG(img)
}

// Snapshot renders sc without interaction state into a new image. With
// opaque the theme background is filled even in overlay mode.
func (p *Pipeline) Snapshot(sc Scene, opaque bool) *image.RGBA {
	r := image.Rect(0, 0, p.width, p.height)
	img := image.NewRGBA(r)
	if opaque || !sc.Overlay {
		bg := sc.NoteType
		if sc.Overlay {
			bg = NoteBlank
		}
		p.drawBackground(img, sc.Theme, bg)
	}
	ink := image.NewRGBA(r)
	for i, s := range sc.Doc.Lines {
		if i == sc.LiveStroke {
			continue
		}
		drawStroke(ink, s)
	}
	draw.Draw(img, r, ink, image.Point{}, draw.Over)

	objs := image.NewRGBA(r)
	sc.HiddenID = ""
	p.drawObjects(objs, sc)
	draw.Draw(img, r, objs, image.Point{}, draw.Over)
	return img
}

func clearRGBA(img *image.RGBA) {
	clear(img.Pix)
}
