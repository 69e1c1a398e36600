package board

import (
	"math"
	"strings"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// Padding added around measured text when a box is sized to its content.
const (
	textPadX = 20
	textPadY = 10
)

func textBoxHeight(text string, fontSize float64) float64 {
	return math.Max(geom.TextBlockHeight(text, fontSize)+textPadY, geom.MinTextSize.Height)
}

func (b *Board) beginEdit(t *state.TextObject) {
	if b.editID == t.ID {
		return
	}
	if b.editID != "" {
		b.CommitText(b.draft)
	}
	b.editID = t.ID
	b.draft = t.Text
	b.selectObject(state.TextOf(t))
	b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
	if b.opts.OnEditText != nil {
		b.opts.OnEditText(EditRequest{
			ID:       t.ID,
			Text:     t.Text,
			Bounds:   t.Bounds(),
			FontSize: t.FontSize,
			Color:    t.Color,
		})
	}
}

// SetEditText records the editor's current contents. They are committed
// by CommitText or by a press outside the box.
func (b *Board) SetEditText(s string) {
	if b.editID != "" {
		b.draft = s
	}
}

// CommitText ends editing with s as the final text, normally when the
// editor loses focus. Whitespace-only text deletes the box; otherwise
// the box is resized to fit the text at its current font size. Gesture
// state is untouched, so a blur during a drag is harmless.
func (b *Board) CommitText(s string) {
	if b.editID == "" {
		return
	}
	id := b.editID
	b.editID, b.draft = "", ""
	defer func() {
		if b.opts.OnEditEnd != nil {
			b.opts.OnEditEnd()
		}
	}()

	o, ok := b.doc.FindObjectByID(id)
	if !ok || o.Kind != state.KindText {
		b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
		return
	}
	if strings.TrimSpace(s) == "" {
		b.removeObject(id)
		return
	}

	w, _ := b.fonts.Measure(s, o.Text.FontSize)
	err := b.doc.MutateObject(id, state.Patch{
		Text:   state.String(s),
		Width:  state.Float(math.Max(w+textPadX, geom.MinTextSize.Width)),
		Height: state.Float(textBoxHeight(s, o.Text.FontSize)),
	})
	if err != nil {
		b.logger.Warn("commit text", "id", id, "error", err)
		return
	}
	if b.selected == id {
		b.deselect()
	}
	b.markDirty()
	b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
}

// insertText adds a default-styled box at p and opens the editor on it.
func (b *Board) insertText(text string, p geom.Point) string {
	const fontSize = 24
	w, _ := b.fonts.Measure(text, fontSize)
	t := &state.TextObject{
		ID:       state.NewTextID(),
		Text:     text,
		X:        p.X,
		Y:        p.Y,
		Width:    math.Max(w+textPadX, geom.MinTextSize.Width),
		Height:   textBoxHeight(text, fontSize),
		FontSize: fontSize,
		Color:    render.PaletteFor(b.theme).Ink,
	}
	if err := b.doc.InsertText(t); err != nil {
		b.logger.Warn("insert text", "error", err)
		return ""
	}
	b.markDirty()
	b.pipe.Invalidate(render.LayerObjects)
	b.beginEdit(t)
	return t.ID
}
