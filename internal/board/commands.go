package board

import (
	"image"
	"math"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// DefaultText is used by AddText when no initial text is given.
const DefaultText = "New text"

// imageOrigin is where AddImage places new images.
var imageOrigin = geom.Pt(20, 20)

// textOrigin is where AddText places new boxes.
var textOrigin = geom.Pt(50, 50)

// AddImage decodes src in the background and, once decoded, inserts it
// at the top-left, scaled down to at most half the surface width. A
// source that fails to decode is dropped. Nothing is inserted before
// decoding finishes.
func (b *Board) AddImage(src string) {
	if b.closed {
		return
	}
	gen := b.gen
	go func() {
		img, err := render.DecodeSource(src)
		b.sched.Post(func() {
			if b.closed || gen != b.gen {
				return
			}
			if err != nil {
				b.logger.Debug("image dropped", "error", err)
				return
			}
			iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
			if iw == 0 || ih == 0 {
				return
			}
			cw, _ := b.pipe.Size()
			scale := math.Min(1, float64(cw)/2/float64(iw))
			obj := &state.ImageObject{
				ID:     state.NewImageID(),
				Src:    src,
				X:      imageOrigin.X,
				Y:      imageOrigin.Y,
				Width:  float64(iw) * scale,
				Height: float64(ih) * scale,
			}
			if err := b.doc.InsertImage(obj); err != nil {
				b.logger.Warn("insert image", "error", err)
				return
			}
			b.bitmaps[obj.ID] = img
			b.markDirty()
			b.pipe.Invalidate(render.LayerObjects)
			b.logger.Debug("image added", "id", obj.ID, "width", obj.Width, "height", obj.Height)
		})
	}()
}

// decode loads the bitmap of an existing image object. The result is
// discarded if the document was replaced, the object deleted or its
// source changed meanwhile.
func (b *Board) decode(id, src string) {
	gen := b.gen
	go func() {
		img, err := render.DecodeSource(src)
		b.sched.Post(func() {
			if b.closed || gen != b.gen {
				return
			}
			if err != nil {
				b.logger.Debug("image not decodable", "id", id, "error", err)
				return
			}
			o, ok := b.doc.FindObjectByID(id)
			if !ok || o.Kind != state.KindImage || o.Image.Src != src {
				return
			}
			b.bitmaps[id] = img
			b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
		})
	}()
}

// AddText inserts a box with initial text (DefaultText if empty) and
// opens the editor on it. It returns the new id.
func (b *Board) AddText(initial string) string {
	if b.closed {
		return ""
	}
	if initial == "" {
		initial = DefaultText
	}
	b.finishGesture()
	return b.insertText(initial, textOrigin)
}

// Undo removes the most recent stroke. Objects are not affected.
func (b *Board) Undo() bool {
	if b.closed {
		return false
	}
	if b.g.action == ActionDrawing {
		b.finishGesture()
	}
	if _, ok := b.doc.PopLastStroke(); !ok {
		return false
	}
	b.pipe.ResetStrokeCache()
	b.markDirty()
	return true
}

// DeleteSelectedObject removes the selected object, whatever its kind.
func (b *Board) DeleteSelectedObject() bool {
	if b.closed || b.selected == "" {
		return false
	}
	b.finishGesture()
	b.deleteObject(b.selected)
	return true
}

// UpdateSelectedObject applies p to the selected object. Setting a text
// box's width or height without a font size re-estimates the font size
// for the new box; setting only the font size refits the box around the
// text.
func (b *Board) UpdateSelectedObject(p state.Patch) bool {
	if b.closed || b.selected == "" {
		return false
	}
	o, ok := b.doc.FindObjectByID(b.selected)
	if !ok {
		return false
	}
	b.finishGesture()
	if o.Kind == state.KindText && p.FontSize != nil && p.Width == nil && p.Height == nil {
		text := o.Text.Text
		if p.Text != nil {
			text = *p.Text
		}
		w, _ := b.fonts.Measure(text, *p.FontSize)
		p.Width = state.Float(math.Max(w+textPadX, geom.MinTextSize.Width))
		p.Height = state.Float(textBoxHeight(text, *p.FontSize))
	}
	if o.Kind == state.KindText && p.FontSize == nil && (p.Width != nil || p.Height != nil) {
		w, h := o.Text.Width, o.Text.Height
		if p.Width != nil {
			w = *p.Width
		}
		if p.Height != nil {
			h = *p.Height
		}
		text := o.Text.Text
		if p.Text != nil {
			text = *p.Text
		}
		p.FontSize = state.Float(geom.EstimateFontSize(text, w, h))
	}
	oldSrc := ""
	if o.Kind == state.KindImage {
		oldSrc = o.Image.Src
	}
	if err := b.doc.MutateObject(o.ID(), p); err != nil {
		b.logger.Warn("update object", "id", o.ID(), "error", err)
		return false
	}
	if o.Kind == state.KindImage && o.Image.Src != oldSrc {
		delete(b.bitmaps, o.ID())
		b.decode(o.ID(), o.Image.Src)
	}
	b.markDirty()
	b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
	return true
}

// deleteObject removes id with all state attached to it.
func (b *Board) deleteObject(id string) {
	if b.editID == id {
		b.editID, b.draft = "", ""
		if b.opts.OnEditEnd != nil {
			b.opts.OnEditEnd()
		}
	}
	b.removeObject(id)
}

func (b *Board) removeObject(id string) {
	if !b.doc.RemoveObject(id) {
		return
	}
	delete(b.bitmaps, id)
	if b.deleteFor == id {
		b.deleteFor = ""
	}
	if b.selected == id {
		b.deselect()
	}
	b.markDirty()
	b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
}

// Thumbnail renders the visible content as a small JPEG. It does not wait
// for or affect pending saves.
func (b *Board) Thumbnail() ([]byte, error) {
	return b.pipe.Thumbnail()
}

// Load replaces the document with serialized content. Malformed or
// empty data yields an empty document.
func (b *Board) Load(data []byte) {
	b.LoadDocument(state.ParseOrEmpty(data, b.logger))
}

// LoadDocument replaces the document. Unsaved edits of the previous
// document are emitted first. Decodes still in flight for the previous
// document are ignored when they land.
func (b *Board) LoadDocument(d *state.Document) {
	if b.closed {
		return
	}
	b.finishGesture()
	if b.editID != "" {
		b.CommitText(b.draft)
	}
	b.cancelLongPress()
	b.bridge.Flush()

	if d == nil {
		d = state.NewDocument()
	}
	b.gen++
	b.doc = d
	b.bitmaps = make(map[string]image.Image)
	b.deleteFor = ""
	b.deselect()
	for _, img := range d.Images() {
		b.decode(img.ID, img.Src)
	}
	b.pipe.ResetStrokeCache()
	b.pipe.Invalidate()
}
