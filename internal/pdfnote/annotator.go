// Package pdfnote keeps one transparent drawing board per page of a
// paginated document and collects their contents into a per-page
// annotation list.
package pdfnote

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"StudyBoard/internal/board"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/persist"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// Reference page size in points (A4) and the save quiet period.
const (
	PageWidth        = 595
	PageHeight       = 842
	DefaultSaveDelay = 2 * time.Second

	DefaultHighlighterWidth = 15
)

// Palette is the ink palette offered for page annotation.
var Palette = []string{"#D50000", "#FFC400", "#00BFA5", "#2962FF", "#AA00FF", "#000000"}

// ErrPageRange is returned for page indexes outside the document.
var ErrPageRange = errors.New("page out of range")

// FitScale returns the page scale that fits a page into containerWidth
// with a small margin.
func FitScale(containerWidth float64) float64 {
	return containerWidth * 0.95 / PageWidth
}

// Options configures an Annotator. Scheduler is required.
type Options struct {
	FileID string
	// Annotations is the stored per-page content, possibly shorter than
	// the page count.
	Annotations []*state.Document
	Scale       float64
	Theme       render.Theme

	PenColor         string
	PenWidth         float64
	HighlighterWidth float64
	SaveDelay        time.Duration
	PageSaveDelay    time.Duration
	LongPress        time.Duration

	Scheduler loop.Scheduler
	Fonts     *render.Fonts
	Logger    *slog.Logger

	// OnSave receives the full annotation list once page edits settle.
	OnSave func(fileID string, pages []*state.Document)
	// OnFrame asks the host to redraw page i.
	OnFrame func(page int)
	// PageOptions, if set, may adjust the options of page i before its
	// board is created. Hosts use it to install editor and cursor hooks.
	PageOptions func(page int, o *board.Options)
}

// Annotator owns the page boards of one file.
type Annotator struct {
	opts   Options
	logger *slog.Logger

	pages       []*board.Board
	annotations []*state.Document

	tool             board.Tool
	penColor         string
	penWidth         float64
	highlighterWidth float64
	scale            float64

	save   *persist.Debouncer
	closed bool
}

// New creates an annotator with no pages. Call SetPageCount once the page
// count is known.
func New(opts Options) (*Annotator, error) {
	if opts.Scheduler == nil {
		return nil, board.ErrNoScheduler
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.PenColor == "" {
		opts.PenColor = board.DefaultPenColor
	}
	if opts.PenWidth <= 0 {
		opts.PenWidth = board.DefaultPenWidth
	}
	if opts.HighlighterWidth <= 0 {
		opts.HighlighterWidth = DefaultHighlighterWidth
	}
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fonts == nil {
		f, err := render.NewFonts()
		if err != nil {
			return nil, err
		}
		opts.Fonts = f
	}
	a := &Annotator{
		opts:             opts,
		logger:           opts.Logger.With("component", "pdfnote", "file", opts.FileID),
		annotations:      append([]*state.Document(nil), opts.Annotations...),
		tool:             board.ToolPointer,
		penColor:         opts.PenColor,
		penWidth:         opts.PenWidth,
		highlighterWidth: opts.HighlighterWidth,
		scale:            opts.Scale,
	}
	a.save = persist.NewDebouncer(opts.Scheduler, opts.SaveDelay, a.emit)
	return a, nil
}

// SetPageCount sizes the annotation list to n pages, padding with empty
// documents and dropping pages past the end.
func (a *Annotator) SetPageCount(n int) {
	n = max(n, 0)
	for i := n; i < len(a.pages); i++ {
		if a.pages[i] != nil {
			a.pages[i].Close()
		}
	}
	if len(a.pages) > n {
		a.pages = a.pages[:n]
	}
	for len(a.pages) < n {
		a.pages = append(a.pages, nil)
	}

	if len(a.annotations) > n {
		a.annotations = a.annotations[:n]
	}
	for i := range a.annotations {
		if a.annotations[i] == nil {
			a.annotations[i] = state.NewDocument()
		}
	}
	for len(a.annotations) < n {
		a.annotations = append(a.annotations, state.NewDocument())
	}
	a.logger.Debug("page count set", "pages", n)
}

// PageCount returns the number of pages.
func (a *Annotator) PageCount() int { return len(a.pages) }

// PageSize returns the pixel size of a page board at the current scale.
func (a *Annotator) PageSize() (int, int) {
	return int(math.Round(PageWidth * a.scale)), int(math.Round(PageHeight * a.scale))
}

// SetScale resizes every page board. Annotation coordinates are kept.
func (a *Annotator) SetScale(s float64) {
	if s <= 0 || s == a.scale {
		return
	}
	a.scale = s
	w, h := a.PageSize()
	for _, p := range a.pages {
		if p != nil {
			p.Resize(w, h)
		}
	}
}

// Page returns the board of page i, creating it on first use. Pages that
// are never shown never get a board.
func (a *Annotator) Page(i int) (*board.Board, error) {
	if i < 0 || i >= len(a.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, i, len(a.pages))
	}
	if a.pages[i] != nil {
		return a.pages[i], nil
	}
	w, h := a.PageSize()
	opts := board.Options{
		Width:           w,
		Height:          h,
		Theme:           a.opts.Theme,
		NoteType:        render.NoteBlank,
		Overlay:         true,
		Tool:            a.tool,
		PenColor:        a.penColor,
		PenWidth:        a.widthFor(a.tool),
		SaveDelay:       a.opts.PageSaveDelay,
		LongPress:       a.opts.LongPress,
		Scheduler:       a.opts.Scheduler,
		Fonts:           a.opts.Fonts,
		Logger:          a.opts.Logger,
		OnContentChange: func(d *state.Document) { a.pageChanged(i, d) },
	}
	if a.opts.OnFrame != nil {
		opts.OnFrame = func() { a.opts.OnFrame(i) }
	}
	if a.opts.PageOptions != nil {
		a.opts.PageOptions(i, &opts)
	}
	b, err := board.New(opts)
	if err != nil {
		return nil, err
	}
	b.LoadDocument(a.annotations[i].Clone())
	a.pages[i] = b
	return b, nil
}

func (a *Annotator) pageChanged(i int, d *state.Document) {
	if i >= len(a.annotations) {
		return
	}
	a.annotations[i] = d
	a.save.Trigger()
}

func (a *Annotator) emit() {
	if a.opts.OnSave == nil {
		return
	}
	a.logger.Debug("saving annotations", "pages", len(a.annotations))
	a.opts.OnSave(a.opts.FileID, a.Annotations())
}

// Annotations returns a deep copy of the per-page annotation list.
func (a *Annotator) Annotations() []*state.Document {
	out := make([]*state.Document, len(a.annotations))
	for i, d := range a.annotations {
		out[i] = d.Clone()
	}
	return out
}

// Interactive reports whether pages take pointer input. With the pointer
// tool, input passes through to the page underneath.
func (a *Annotator) Interactive() bool { return a.tool != board.ToolPointer }

// Tool returns the current tool.
func (a *Annotator) Tool() board.Tool { return a.tool }

// SetTool switches every page. Pen and highlighter keep separate widths.
func (a *Annotator) SetTool(t board.Tool) {
	a.tool = t
	for _, p := range a.pages {
		if p != nil {
			p.SetTool(t)
			p.SetPenWidth(a.widthFor(t))
		}
	}
}

// SetPenColor sets the ink color on every page.
func (a *Annotator) SetPenColor(c string) {
	a.penColor = c
	for _, p := range a.pages {
		if p != nil {
			p.SetPenColor(c)
		}
	}
}

// PenColor returns the ink color.
func (a *Annotator) PenColor() string { return a.penColor }

// SetPenWidth sets the width of the current tool: the highlighter width
// while highlighting, the pen width otherwise.
func (a *Annotator) SetPenWidth(w float64) {
	if w <= 0 {
		return
	}
	if a.tool == board.ToolHighlighter {
		a.highlighterWidth = w
	} else {
		a.penWidth = w
	}
	for _, p := range a.pages {
		if p != nil {
			p.SetPenWidth(w)
		}
	}
}

// PenWidth returns the width of the current tool.
func (a *Annotator) PenWidth() float64 { return a.widthFor(a.tool) }

func (a *Annotator) widthFor(t board.Tool) float64 {
	if t == board.ToolHighlighter {
		return a.highlighterWidth
	}
	return a.penWidth
}

// Close flushes every page and then the pending save.
func (a *Annotator) Close() {
	if a.closed {
		return
	}
	for _, p := range a.pages {
		if p != nil {
			p.Close()
		}
	}
	a.save.Flush()
	a.closed = true
}
