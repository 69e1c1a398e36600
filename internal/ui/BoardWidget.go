package ui

import (
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"StudyBoard/internal/board"
	"StudyBoard/internal/geom"
)

// BoardWidget shows a board and feeds it mouse and touch input. Board
// pixels map 1:1 onto widget units.
type BoardWidget struct {
	widget.BaseWidget
	Board *board.Board

	// Interactive reports whether input should reach the board. Nil
	// means always. Non-interactive widgets let presses fall through.
	Interactive func() bool

	raster  *canvas.Raster
	editor  *textEditor
	editing *board.EditRequest
	pressed bool
	last    geom.Point
	// focusOnRelease defers focusing the editor until the press that
	// opened it is over, so the press does not blur it straight away.
	focusOnRelease bool
	// placeholder is the size reported before a board is attached.
	placeholder fyne.Size
	logger      *slog.Logger
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.DoubleTappable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ desktop.Cursorable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

// NewBoardWidget creates a board from opts and wraps it. The widget takes
// over OnFrame, OnEditText and OnEditEnd, chaining any hooks already set.
func NewBoardWidget(opts board.Options, logger *slog.Logger) (*BoardWidget, error) {
	w := newBoardWidget(logger)
	w.hook(&opts)
	b, err := board.New(opts)
	if err != nil {
		return nil, err
	}
	w.attach(b)
	return w, nil
}

func newBoardWidget(logger *slog.Logger) *BoardWidget {
	if logger == nil {
		logger = slog.Default()
	}
	w := &BoardWidget{logger: logger.With("component", "ui")}
	w.raster = canvas.NewRaster(w.frame)
	w.editor = newTextEditor()
	w.editor.Hide()
	w.editor.OnChanged = func(s string) {
		if w.Board != nil && w.editing != nil {
			w.Board.SetEditText(s)
		}
	}
	w.editor.onBlur = w.commitEditor
	w.ExtendBaseWidget(w)
	return w
}

// hook routes the board's host callbacks through the widget.
func (w *BoardWidget) hook(o *board.Options) {
	onFrame, onEdit, onEnd := o.OnFrame, o.OnEditText, o.OnEditEnd
	o.OnFrame = func() {
		w.raster.Refresh()
		if onFrame != nil {
			onFrame()
		}
	}
	o.OnEditText = func(req board.EditRequest) {
		w.showEditor(req)
		if onEdit != nil {
			onEdit(req)
		}
	}
	o.OnEditEnd = func() {
		w.hideEditor()
		if onEnd != nil {
			onEnd()
		}
	}
}

func (w *BoardWidget) attach(b *board.Board) {
	w.Board = b
	w.Refresh()
}

var emptyFrame = image.NewRGBA(image.Rect(0, 0, 1, 1))

func (w *BoardWidget) frame(int, int) image.Image {
	if w.Board == nil {
		return emptyFrame
	}
	return w.Board.Frame()
}

func (w *BoardWidget) interactive() bool {
	return w.Board != nil && (w.Interactive == nil || w.Interactive())
}

func toPoint(p fyne.Position) geom.Point {
	return geom.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (w *BoardWidget) press(p geom.Point) {
	if !w.interactive() {
		return
	}
	w.pressed = true
	w.last = p
	w.Board.PointerDown(p)
}

func (w *BoardWidget) release(p geom.Point) {
	if !w.pressed {
		return
	}
	w.pressed = false
	w.Board.PointerUp(p)
	if w.focusOnRelease {
		w.focusOnRelease = false
		w.focusEditor()
	}
}

// MouseDown implements desktop.Mouseable.
func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.press(toPoint(e.Position))
	}
}

// MouseUp implements desktop.Mouseable.
func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.release(toPoint(e.Position))
	}
}

// Dragged implements fyne.Draggable. Touch moves arrive here too.
func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !w.pressed {
		return
	}
	w.last = toPoint(e.Position)
	w.Board.PointerMove(w.last)
}

// DragEnd implements fyne.Draggable.
func (w *BoardWidget) DragEnd() {
	w.release(w.last)
}

// MouseIn implements desktop.Hoverable.
func (w *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	w.MouseMoved(e)
}

// MouseMoved implements desktop.Hoverable.
func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if w.pressed || !w.interactive() {
		return
	}
	w.Board.PointerMove(toPoint(e.Position))
}

// MouseOut implements desktop.Hoverable.
func (w *BoardWidget) MouseOut() {
	w.abandon()
}

// abandon ends the gesture without a release position.
func (w *BoardWidget) abandon() {
	if w.Board == nil {
		return
	}
	w.pressed = false
	w.Board.PointerLeave()
	if w.focusOnRelease {
		w.focusOnRelease = false
		w.focusEditor()
	}
}

// TouchDown implements mobile.Touchable.
func (w *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	w.press(toPoint(e.Position))
}

// TouchUp implements mobile.Touchable.
func (w *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	w.release(toPoint(e.Position))
}

// TouchCancel implements mobile.Touchable.
func (w *BoardWidget) TouchCancel(*mobile.TouchEvent) {
	w.abandon()
}

// DoubleTapped implements fyne.DoubleTappable.
func (w *BoardWidget) DoubleTapped(e *fyne.PointEvent) {
	if w.interactive() {
		w.Board.DoubleClick(toPoint(e.Position))
	}
}

// Cursor implements desktop.Cursorable.
func (w *BoardWidget) Cursor() desktop.Cursor {
	if !w.interactive() {
		return desktop.DefaultCursor
	}
	switch w.Board.Cursor() {
	case geom.CursorMove, geom.CursorPointer:
		return desktop.PointerCursor
	case geom.CursorResizeEW:
		return desktop.HResizeCursor
	case geom.CursorResizeNWSE, geom.CursorResizeNESW, geom.CursorCrosshair:
		return desktop.CrosshairCursor
	case geom.CursorText:
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

func (w *BoardWidget) showEditor(req board.EditRequest) {
	w.editing = &req
	w.editor.SetText(req.Text)
	w.editor.Show()
	w.Refresh()
	if w.pressed {
		w.focusOnRelease = true
		return
	}
	w.focusEditor()
}

func (w *BoardWidget) focusEditor() {
	if w.editing == nil {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w.editor)
	}
}

func (w *BoardWidget) hideEditor() {
	w.editing = nil
	w.focusOnRelease = false
	w.editor.Hide()
	w.Refresh()
}

// commitEditor runs when the editor loses focus. The board may already
// have ended the edit from a press elsewhere; then there is nothing to do.
func (w *BoardWidget) commitEditor() {
	if w.editing == nil || w.Board == nil || w.focusOnRelease {
		return
	}
	if id, ok := w.Board.Editing(); !ok || id != w.editing.ID {
		return
	}
	w.logger.Debug("editor blurred", "id", w.editing.ID)
	w.Board.FocusLost()
	w.Board.CommitText(w.editor.Text)
}

// MinSize is the board size.
func (w *BoardWidget) MinSize() fyne.Size {
	if w.Board == nil {
		return w.placeholder.Max(fyne.NewSize(1, 1))
	}
	bw, bh := w.Board.Size()
	return fyne.NewSize(float32(bw), float32(bh))
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{w: w}
}

type boardWidgetRenderer struct {
	w *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.w.raster, r.w.editor}
}

func (r *boardWidgetRenderer) Layout(fyne.Size) {
	r.w.raster.Move(fyne.NewPos(0, 0))
	r.w.raster.Resize(r.w.MinSize())
	if e := r.w.editing; e != nil {
		r.w.editor.Move(fyne.NewPos(float32(e.Bounds.X), float32(e.Bounds.Y)))
		r.w.editor.Resize(fyne.NewSize(float32(e.Bounds.Width), float32(e.Bounds.Height)).Max(r.w.editor.MinSize()))
	}
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return r.w.MinSize() }

func (r *boardWidgetRenderer) Refresh() {
	r.Layout(r.w.Size())
	r.w.raster.Refresh()
	r.w.editor.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {}

// textEditor is the multi-line entry laid over a text box while it is
// being edited. Losing focus commits.
type textEditor struct {
	widget.Entry
	onBlur func()
}

func newTextEditor() *textEditor {
	e := &textEditor{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapOff
	e.ExtendBaseWidget(e)
	return e
}

func (e *textEditor) FocusLost() {
	e.Entry.FocusLost()
	if e.onBlur != nil {
		e.onBlur()
	}
}

// TypedKey commits on Escape by dropping focus.
func (e *textEditor) TypedKey(k *fyne.KeyEvent) {
	if k.Name == fyne.KeyEscape {
		if c := fyne.CurrentApp().Driver().CanvasForObject(e); c != nil {
			c.Unfocus()
		}
		return
	}
	e.Entry.TypedKey(k)
}
