package pdfnote

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StudyBoard/internal/board"
	"StudyBoard/internal/geom"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

type saved struct {
	fileID string
	pages  []*state.Document
}

func newAnnotator(t *testing.T, initial ...*state.Document) (*Annotator, *loop.Manual, *[]saved) {
	t.Helper()
	m := loop.NewManual()
	var saves []saved
	a, err := New(Options{
		FileID:      "file-1",
		Annotations: initial,
		Scheduler:   m,
		OnSave: func(id string, pages []*state.Document) {
			saves = append(saves, saved{id, pages})
		},
	})
	require.NoError(t, err)
	return a, m, &saves
}

func stroke(t *testing.T, d *state.Document) {
	t.Helper()
	_, err := d.CommitStroke(state.Stroke{Tool: state.ToolPen, Color: "#000", StrokeWidth: 2, Points: []geom.Point{{X: 1, Y: 1}, {X: 5, Y: 5}}})
	require.NoError(t, err)
}

func TestFitScale(t *testing.T) {
	assert.InDelta(t, 800*0.95/595, FitScale(800), 1e-12)
	assert.InDelta(t, 0.95, FitScale(PageWidth), 1e-12)
}

func TestSetPageCountPads(t *testing.T) {
	first := state.NewDocument()
	stroke(t, first)
	a, _, _ := newAnnotator(t, first)

	a.SetPageCount(3)
	got := a.Annotations()
	require.Len(t, got, 3)
	assert.Len(t, got[0].Lines, 1)
	assert.True(t, got[1].IsEmpty())
	assert.True(t, got[2].IsEmpty())

	a.SetPageCount(2)
	assert.Len(t, a.Annotations(), 2)
	assert.Equal(t, 2, a.PageCount())
}

func TestPagesAreLazyOverlays(t *testing.T) {
	a, _, _ := newAnnotator(t)
	a.SetPageCount(2)
	a.SetScale(2)

	_, err := a.Page(2)
	assert.ErrorIs(t, err, ErrPageRange)

	p, err := a.Page(1)
	require.NoError(t, err)
	again, err := a.Page(1)
	require.NoError(t, err)
	assert.Same(t, p, again)

	w, h := p.Size()
	assert.Equal(t, 1190, w)
	assert.Equal(t, 1684, h)
	frame := p.Frame()
	assert.Equal(t, uint8(0), frame.RGBAAt(10, 10).A, "pages leave the background to the page image")
}

func TestPageEditsSaveAfterQuietPeriod(t *testing.T) {
	a, m, saves := newAnnotator(t)
	a.SetPageCount(3)
	a.SetTool(board.ToolPen)
	p, err := a.Page(1)
	require.NoError(t, err)

	p.PointerDown(geom.Pt(10, 10))
	p.PointerMove(geom.Pt(40, 40))
	p.PointerUp(geom.Pt(40, 40))

	m.Advance(500 * time.Millisecond)
	assert.Len(t, a.Annotations()[1].Lines, 1, "page slot updated after the page settles")
	assert.Empty(t, *saves)

	m.Advance(1999 * time.Millisecond)
	assert.Empty(t, *saves)
	m.Advance(time.Millisecond)
	require.Len(t, *saves, 1)
	s := (*saves)[0]
	assert.Equal(t, "file-1", s.fileID)
	require.Len(t, s.pages, 3)
	assert.Len(t, s.pages[1].Lines, 1)
	assert.True(t, s.pages[0].IsEmpty())
}

func TestToolsAndWidths(t *testing.T) {
	a, _, _ := newAnnotator(t)
	a.SetPageCount(1)
	assert.False(t, a.Interactive(), "pointer passes input through")

	p, err := a.Page(0)
	require.NoError(t, err)

	a.SetTool(board.ToolHighlighter)
	assert.True(t, a.Interactive())
	assert.Equal(t, 15.0, p.PenWidth())
	a.SetPenWidth(20)

	a.SetTool(board.ToolPen)
	assert.Equal(t, 3.0, p.PenWidth())
	a.SetTool(board.ToolHighlighter)
	assert.Equal(t, 20.0, p.PenWidth())

	a.SetPenColor(Palette[3])
	assert.Equal(t, "#2962FF", p.PenColor())
	assert.Equal(t, board.ToolHighlighter, p.Tool())
}

func TestCloseFlushesEverything(t *testing.T) {
	a, _, saves := newAnnotator(t)
	a.SetPageCount(2)
	a.SetTool(board.ToolPen)
	p, err := a.Page(0)
	require.NoError(t, err)

	p.PointerDown(geom.Pt(10, 10))
	p.PointerMove(geom.Pt(40, 40))
	p.PointerUp(geom.Pt(40, 40))
	a.Close()

	require.Len(t, *saves, 1)
	assert.Len(t, (*saves)[0].pages[0].Lines, 1)
}

func TestPageOptionsHook(t *testing.T) {
	m := loop.NewManual()
	var seen []int
	a, err := New(Options{
		Scheduler: m,
		PageOptions: func(i int, o *board.Options) {
			seen = append(seen, i)
			o.Tool = board.ToolEraser
		},
	})
	require.NoError(t, err)
	a.SetPageCount(2)

	b, err := a.Page(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, board.ToolEraser, b.Tool())

	_, err = a.Page(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, seen, "hook runs once per page")
}

func TestExportPages(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	docs := []*state.Document{state.NewDocument(), state.NewDocument()}

	pages := ExportPages(docs, []image.Image{bg}, 2, render.ThemeDark)
	require.Len(t, pages, 2)
	assert.Equal(t, 1190, pages[0].Width)
	assert.Equal(t, 1684, pages[0].Height)
	assert.Equal(t, 2.0, pages[0].Scale)
	assert.Same(t, bg, pages[0].Background)
	assert.Nil(t, pages[1].Background)
	assert.Equal(t, render.ThemeDark, pages[1].Theme)
}
