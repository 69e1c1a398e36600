package board

import (
	"StudyBoard/internal/geom"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// PointerDown starts a gesture at p. Mouse and touch input both arrive
// here in surface coordinates.
func (b *Board) PointerDown(p geom.Point) {
	if b.closed {
		return
	}
	b.cancelLongPress()
	if b.down {
		b.finishGesture()
	}

	wasEditing := b.editID != ""
	if wasEditing {
		if o, ok := b.doc.FindObjectByID(b.editID); ok && o.Bounds().Contains(p) {
			// The editor overlay owns presses inside the box.
			return
		}
		b.CommitText(b.draft)
	}

	if b.deleteFor != "" {
		if o, ok := b.doc.FindObjectByID(b.deleteFor); ok && geom.DeleteHotspot(o.Bounds()).Contains(p) {
			b.logger.Debug("delete affordance used", "id", o.ID())
			b.deleteObject(o.ID())
			return
		}
		b.hideDeleteAffordance()
	}

	b.down = true
	b.g = gesture{start: p, last: p, live: -1}
	switch {
	case b.tool.Inks():
		b.beginStroke(p)
	case b.tool == ToolPointer && !wasEditing:
		b.pick(p)
	case b.tool == ToolText && !wasEditing:
		if o, ok := b.doc.FindObjectAt(p); ok && o.Kind == state.KindText {
			b.beginEdit(o.Text)
			return
		}
		b.insertText("", p)
	}
}

// PointerMove continues the gesture, or updates the hover cursor when
// no button is down.
func (b *Board) PointerMove(p geom.Point) {
	if b.closed {
		return
	}
	if !b.down {
		b.hover(p)
		return
	}
	if p.Dist(b.g.start) > LongPressSlop {
		b.cancelLongPress()
		if b.g.action != ActionIdle {
			b.hideDeleteAffordance()
		}
	}

	dx, dy := p.X-b.g.start.X, p.Y-b.g.start.Y
	switch b.g.action {
	case ActionDrawing:
		b.extendStroke(p)
	case ActionMoving:
		r := b.g.startRect
		r.X += dx
		r.Y += dy
		b.g.preview.SetBounds(r)
		b.pipe.Invalidate(render.LayerInteraction)
	case ActionResizing:
		o := b.g.preview
		r := geom.Resize(b.g.startRect, b.g.handle, dx, dy, o.Kind == state.KindText, o.MinSize())
		if o.Kind == state.KindText {
			o.Text.FontSize = geom.FitFontSize(b.g.startFont, b.g.startRect.Width, r.Width)
			r.Height = textBoxHeight(o.Text.Text, o.Text.FontSize)
			b.notifyText(o.Text)
		}
		o.SetBounds(r)
		b.pipe.Invalidate(render.LayerInteraction)
	}
	b.g.last = p
}

// PointerUp ends the gesture.
func (b *Board) PointerUp(p geom.Point) {
	if b.closed || !b.down {
		return
	}
	if p != b.g.last {
		b.PointerMove(p)
	}
	b.finishGesture()
}

// PointerLeave ends any gesture as if the pointer were released where it
// was last seen.
func (b *Board) PointerLeave() {
	if b.closed {
		return
	}
	b.cancelLongPress()
	b.finishGesture()
	b.setCursor(geom.CursorDefault)
}

// FocusLost abandons a pending long-press.
func (b *Board) FocusLost() {
	b.cancelLongPress()
}

// DoubleClick opens the editor on a text box under p (pointer tool only).
func (b *Board) DoubleClick(p geom.Point) {
	if b.closed || b.tool != ToolPointer {
		return
	}
	b.finishGesture()
	o, ok := b.doc.FindObjectAt(p)
	if !ok || o.Kind != state.KindText {
		return
	}
	b.beginEdit(o.Text)
}

// finishGesture commits whatever the current gesture produced and
// returns to idle.
func (b *Board) finishGesture() {
	if !b.down {
		return
	}
	b.down = false
	b.cancelLongPress()
	switch b.g.action {
	case ActionDrawing:
		if b.g.live >= 0 {
			b.markDirty()
		}
		b.g = gesture{live: -1}
		b.bridge.Release()
		b.pipe.Invalidate(render.LayerStrokes)
		return
	case ActionMoving, ActionResizing:
		b.commitPreview()
	}
	b.g = gesture{live: -1}
	b.bridge.Release()
}

func (b *Board) beginStroke(p geom.Point) {
	c := b.penColor
	if b.tool == ToolEraser {
		c = "#000000"
	}
	b.g.action = ActionDrawing
	b.g.pending = state.Stroke{
		Tool:        state.Tool(b.tool),
		Color:       c,
		StrokeWidth: b.penWidth,
		Points:      []geom.Point{p},
	}
}

// extendStroke appends p to the stroke being drawn. The stroke enters the
// document with its second distinct point, so a tap never leaves a dot.
func (b *Board) extendStroke(p geom.Point) {
	if p == b.g.last {
		return
	}
	if b.g.live < 0 {
		b.g.pending.Points = append(b.g.pending.Points, p)
		idx, err := b.doc.CommitStroke(b.g.pending)
		if err != nil {
			b.logger.Warn("stroke rejected", "error", err)
			return
		}
		b.g.live = idx
	} else {
		b.doc.AppendPoint(b.g.live, p)
	}
	b.pipe.Invalidate(render.LayerStrokes)
}

// pick resolves a pointer-tool press: handles of the selection first,
// then object bodies topmost first, else empty canvas.
func (b *Board) pick(p geom.Point) {
	if sel, ok := b.Selected(); ok {
		if h := geom.HandleAt(sel.Bounds(), sel.Handles(), p); h != geom.HandleNone {
			b.beginManipulation(sel, ActionResizing, h)
			b.startLongPress(sel.ID())
			return
		}
	}
	if o, ok := b.doc.FindObjectAt(p); ok {
		b.beginManipulation(o, ActionMoving, geom.HandleNone)
		b.startLongPress(o.ID())
		return
	}
	b.deselect()
}

func (b *Board) beginManipulation(o state.Object, a Action, h geom.Handle) {
	b.selectObject(o)
	b.g.action = a
	b.g.target = o.ID()
	b.g.handle = h
	b.g.startRect = o.Bounds()
	if o.Kind == state.KindText {
		b.g.startFont = o.Text.FontSize
	}
	b.g.preview = o.Clone()
	b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
}

// commitPreview writes the preview geometry back into the document. An
// unchanged box is not a mutation.
func (b *Board) commitPreview() {
	defer b.pipe.Invalidate(render.LayerObjects, render.LayerInteraction)
	o, ok := b.doc.FindObjectByID(b.g.target)
	if !ok {
		return
	}
	r := b.g.preview.Bounds()
	patch := state.Patch{}
	changed := r != o.Bounds()
	if changed {
		patch.X, patch.Y = state.Float(r.X), state.Float(r.Y)
		patch.Width, patch.Height = state.Float(r.Width), state.Float(r.Height)
	}
	if o.Kind == state.KindText && b.g.preview.Text.FontSize != o.Text.FontSize {
		patch.FontSize = state.Float(b.g.preview.Text.FontSize)
		changed = true
	}
	if !changed {
		return
	}
	if err := b.doc.MutateObject(o.ID(), patch); err != nil {
		b.logger.Warn("commit gesture", "id", o.ID(), "error", err)
		return
	}
	if o.Kind == state.KindText {
		b.notifyText(o.Text)
	}
	b.markDirty()
}

func (b *Board) startLongPress(id string) {
	b.cancelLongPress()
	seq := b.pressSeq
	b.pressTimer = b.sched.AfterFunc(b.opts.LongPress, func() {
		if b.closed || seq != b.pressSeq {
			return
		}
		b.pressTimer = nil
		if _, ok := b.doc.FindObjectByID(id); !ok {
			return
		}
		b.deleteFor = id
		b.pipe.Invalidate(render.LayerInteraction)
	})
}

func (b *Board) cancelLongPress() {
	b.pressSeq++
	if b.pressTimer != nil {
		b.pressTimer.Stop()
		b.pressTimer = nil
	}
}

func (b *Board) hideDeleteAffordance() {
	if b.deleteFor == "" {
		return
	}
	b.deleteFor = ""
	b.pipe.Invalidate(render.LayerInteraction)
}

func (b *Board) selectObject(o state.Object) {
	b.selected = o.ID()
	if b.opts.OnImageSelect != nil {
		b.opts.OnImageSelect(o.Kind == state.KindImage)
	}
	if o.Kind == state.KindText {
		b.notifyText(o.Text)
	} else {
		b.notifyText(nil)
	}
}

// deselect clears the selection and tells the host, if anything was
// selected.
func (b *Board) deselect() {
	if b.selected == "" {
		return
	}
	b.selected = ""
	if b.opts.OnImageSelect != nil {
		b.opts.OnImageSelect(false)
	}
	b.notifyText(nil)
	b.pipe.Invalidate(render.LayerInteraction)
}

func (b *Board) notifyText(t *state.TextObject) {
	if b.opts.OnTextObjectSelect == nil {
		return
	}
	if t == nil {
		b.opts.OnTextObjectSelect(nil)
		return
	}
	cp := *t
	b.opts.OnTextObjectSelect(&cp)
}

func (b *Board) hover(p geom.Point) {
	c := geom.CursorDefault
	switch {
	case b.tool.Inks():
		c = geom.CursorCrosshair
	case b.tool == ToolText:
		c = geom.CursorText
	default:
		if o, ok := b.doc.FindObjectByID(b.deleteFor); ok && geom.DeleteHotspot(o.Bounds()).Contains(p) {
			c = geom.CursorPointer
			break
		}
		if sel, ok := b.Selected(); ok {
			if h := geom.HandleAt(sel.Bounds(), sel.Handles(), p); h != geom.HandleNone {
				c = geom.CursorFor(h, true)
				break
			}
		}
		_, over := b.doc.FindObjectAt(p)
		c = geom.CursorFor(geom.HandleNone, over)
	}
	b.setCursor(c)
}

func (b *Board) setCursor(c geom.Cursor) {
	if c == b.cursor {
		return
	}
	b.cursor = c
	if b.opts.OnCursor != nil {
		b.opts.OnCursor(c)
	}
}

// Cursor returns the last hover cursor.
func (b *Board) Cursor() geom.Cursor { return b.cursor }
