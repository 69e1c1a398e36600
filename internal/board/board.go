// Package board is the controller of one drawing surface. It owns the
// document, turns pointer events into document mutations through an
// explicit interaction state machine, and projects both onto a render
// pipeline. All methods must be called from the host's UI loop.
package board

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/persist"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// Tool is the host-selected input mode.
type Tool string

const (
	ToolPointer     Tool = "pointer"
	ToolPen         Tool = Tool(state.ToolPen)
	ToolHighlighter Tool = Tool(state.ToolHighlighter)
	ToolEraser      Tool = Tool(state.ToolEraser)
	// ToolText places a new text box wherever the canvas is tapped.
	ToolText Tool = "text"
)

// Inks reports whether t draws strokes.
func (t Tool) Inks() bool {
	return t == ToolPen || t == ToolHighlighter || t == ToolEraser
}

// Action is the state of the pointer gesture in progress.
type Action int

const (
	ActionIdle Action = iota
	ActionDrawing
	ActionMoving
	ActionResizing
)

func (a Action) String() string {
	switch a {
	case ActionDrawing:
		return "drawing"
	case ActionMoving:
		return "moving"
	case ActionResizing:
		return "resizing"
	}
	return "idle"
}

// Defaults applied by New for zero Options fields.
const (
	DefaultWidth     = 1200
	DefaultHeight    = 1600
	DefaultPenColor  = "#D50000"
	DefaultPenWidth  = 3
	DefaultLongPress = 500 * time.Millisecond
	// LongPressSlop is how far the pointer may wander before a pending
	// long-press is abandoned.
	LongPressSlop = 3
)

// EditRequest describes the editor a host should overlay on a text box.
type EditRequest struct {
	ID       string
	Text     string
	Bounds   geom.Rect
	FontSize float64
	Color    string
}

// Options configures a Board. Scheduler is required.
type Options struct {
	Width, Height int
	Theme         render.Theme
	NoteType      render.NoteType
	// Overlay leaves the background transparent, for annotating
	// content drawn underneath the surface.
	Overlay bool

	Tool      Tool
	PenColor  string
	PenWidth  float64
	SaveDelay time.Duration
	LongPress time.Duration

	Scheduler loop.Scheduler
	Fonts     *render.Fonts
	Logger    *slog.Logger

	// OnContentChange receives a deep copy once edits settle.
	OnContentChange func(*state.Document)
	// OnImageSelect reports whether the selection is an image.
	OnImageSelect func(bool)
	// OnTextObjectSelect receives a copy of the selected text box, or
	// nil when no text box is selected. It fires live during resizes.
	OnTextObjectSelect func(*state.TextObject)
	// OnEditText asks the host to show a text editor.
	OnEditText func(EditRequest)
	// OnEditEnd asks the host to hide the text editor.
	OnEditEnd func()
	// OnCursor fires when the hover cursor changes.
	OnCursor func(geom.Cursor)
	// OnFrame asks the host to call Frame soon. Requests coalesce until
	// the next Frame.
	OnFrame func()
}

// ErrNoScheduler is returned by New without Options.Scheduler.
var ErrNoScheduler = errors.New("board: scheduler required")

// gesture is the transient state of one pointer-down..pointer-up run.
type gesture struct {
	action Action
	start  geom.Point
	last   geom.Point

	// drawing
	pending state.Stroke
	live    int

	// moving and resizing
	target    string
	handle    geom.Handle
	startRect geom.Rect
	startFont float64
	preview   state.Object
}

// Board is one interactive surface.
type Board struct {
	opts   Options
	sched  loop.Scheduler
	logger *slog.Logger

	doc     *state.Document
	gen     int
	bitmaps map[string]image.Image

	pipe   *render.Pipeline
	fonts  *render.Fonts
	bridge *persist.Bridge

	tool     Tool
	penColor string
	penWidth float64
	theme    render.Theme
	noteType render.NoteType

	down bool
	g    gesture

	selected  string
	deleteFor string

	pressTimer loop.Timer
	pressSeq   int

	editID string
	draft  string

	cursor geom.Cursor
	closed bool
}

// New creates a board holding an empty document.
func New(opts Options) (*Board, error) {
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Theme == "" {
		opts.Theme = render.ThemeLight
	}
	if opts.NoteType == "" {
		opts.NoteType = render.NoteBlank
	}
	if opts.Tool == "" {
		opts.Tool = ToolPen
	}
	if opts.PenColor == "" {
		opts.PenColor = DefaultPenColor
	}
	if opts.PenWidth <= 0 {
		opts.PenWidth = DefaultPenWidth
	}
	if opts.LongPress <= 0 {
		opts.LongPress = DefaultLongPress
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	fonts := opts.Fonts
	if fonts == nil {
		var err error
		if fonts, err = render.NewFonts(); err != nil {
			return nil, err
		}
	}

	b := &Board{
		opts:     opts,
		sched:    opts.Scheduler,
		logger:   opts.Logger.With("component", "board"),
		doc:      state.NewDocument(),
		bitmaps:  make(map[string]image.Image),
		fonts:    fonts,
		tool:     opts.Tool,
		penColor: opts.PenColor,
		penWidth: opts.PenWidth,
		theme:    opts.Theme,
		noteType: opts.NoteType,
		g:        gesture{live: -1},
	}
	b.pipe = render.NewPipeline(opts.Width, opts.Height, fonts, b.scene, opts.OnFrame, opts.Logger)
	b.bridge = persist.NewBridge(b.sched, opts.SaveDelay, b.Document, opts.OnContentChange, b.logger)
	b.bridge.Hold = func() bool { return b.down }
	return b, nil
}

// scene projects the document and the transient state for the pipeline.
func (b *Board) scene() render.Scene {
	sc := render.Scene{
		Doc:        b.doc,
		Theme:      b.theme,
		NoteType:   b.noteType,
		Overlay:    b.opts.Overlay,
		LiveStroke: -1,
		HiddenID:   b.editID,
		Bitmap:     b.bitmap,
	}
	switch b.g.action {
	case ActionDrawing:
		sc.LiveStroke = b.g.live
	case ActionMoving, ActionResizing:
		sc.HiddenID = b.g.target
		preview := b.g.preview
		sc.Preview = &preview
	}
	if sc.Preview == nil && b.selected != "" && b.selected != b.editID {
		if o, ok := b.doc.FindObjectByID(b.selected); ok {
			sc.Selected = &o
		}
	}
	if b.deleteFor != "" {
		if o, ok := b.doc.FindObjectByID(b.deleteFor); ok {
			sc.DeleteFor = &o
		}
	}
	return sc
}

func (b *Board) bitmap(id string) image.Image { return b.bitmaps[id] }

// Frame renders pending changes and returns the composited surface.
func (b *Board) Frame() *image.RGBA { return b.pipe.Frame() }

// Pipeline exposes the render pipeline, mainly for inspection.
func (b *Board) Pipeline() *render.Pipeline { return b.pipe }

// Document returns the live document. Callers must not mutate it.
func (b *Board) Document() *state.Document { return b.doc }

// Size returns the surface size in pixels.
func (b *Board) Size() (int, int) { return b.pipe.Size() }

// Action returns the gesture state.
func (b *Board) Action() Action { return b.g.action }

// Tool returns the current tool.
func (b *Board) Tool() Tool { return b.tool }

// Selected returns the selected object, if any.
func (b *Board) Selected() (state.Object, bool) {
	if b.selected == "" {
		return state.Object{}, false
	}
	return b.doc.FindObjectByID(b.selected)
}

// Editing returns the id of the text box being edited.
func (b *Board) Editing() (string, bool) { return b.editID, b.editID != "" }

// DeleteAffordance returns the id of the object showing its delete icon.
func (b *Board) DeleteAffordance() (string, bool) { return b.deleteFor, b.deleteFor != "" }

// Dirty reports whether there are edits not yet handed to OnContentChange.
func (b *Board) Dirty() bool { return b.bridge.Dirty() }

// Bitmap returns the decoded bitmap of image id, or nil.
func (b *Board) Bitmap(id string) image.Image { return b.bitmaps[id] }

// SetTool changes the tool for the next gesture. A gesture in progress
// finishes first. Leaving the pointer tool clears the selection.
func (b *Board) SetTool(t Tool) {
	if t == b.tool {
		return
	}
	b.finishGesture()
	b.tool = t
	if t != ToolPointer {
		b.hideDeleteAffordance()
		b.deselect()
	}
	b.logger.Debug("tool changed", "tool", string(t))
}

// SetPenColor sets the ink color for new strokes.
func (b *Board) SetPenColor(c string) { b.penColor = c }

// SetPenWidth sets the stroke width for new strokes.
func (b *Board) SetPenWidth(w float64) {
	if w > 0 {
		b.penWidth = w
	}
}

// PenColor returns the ink color for new strokes.
func (b *Board) PenColor() string { return b.penColor }

// PenWidth returns the stroke width for new strokes.
func (b *Board) PenWidth() float64 { return b.penWidth }

// SetTheme switches the palette.
func (b *Board) SetTheme(t render.Theme) {
	if t == b.theme {
		return
	}
	b.theme = t
	b.pipe.Invalidate(render.LayerBackground, render.LayerObjects)
}

// SetNoteType switches the background ruling.
func (b *Board) SetNoteType(nt render.NoteType) {
	if nt == b.noteType {
		return
	}
	b.noteType = nt
	b.pipe.Invalidate(render.LayerBackground)
}

// Resize changes the surface size. Content keeps its coordinates.
func (b *Board) Resize(w, h int) {
	if cw, ch := b.pipe.Size(); cw == w && ch == h {
		return
	}
	b.pipe.Resize(w, h)
}

// Close flushes unsaved content and stops reacting to timers and
// decodes. The board must not be used afterwards.
func (b *Board) Close() {
	if b.closed {
		return
	}
	b.finishGesture()
	if b.editID != "" {
		b.CommitText(b.draft)
	}
	b.cancelLongPress()
	b.bridge.Close()
	b.closed = true
}

func (b *Board) markDirty() { b.bridge.MarkDirty() }

// FlushContent emits unsaved content now instead of waiting for the
// quiet period. A gesture in progress is committed first.
func (b *Board) FlushContent() {
	if b.closed {
		return
	}
	b.finishGesture()
	b.bridge.Flush()
}

// DiscardContent drops unsaved content without emitting it, for a note
// that is being deleted.
func (b *Board) DiscardContent() {
	if b.closed {
		return
	}
	b.bridge.Discard()
}
