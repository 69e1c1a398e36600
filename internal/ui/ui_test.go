package ui

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StudyBoard/internal/board"
	"StudyBoard/internal/config"
	"StudyBoard/internal/geom"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/render"
	"StudyBoard/internal/store"
)

func newTestWidget(t *testing.T, tool board.Tool) (*BoardWidget, *loop.Manual) {
	t.Helper()
	test.NewTempApp(t)
	m := loop.NewManual()
	w, err := NewBoardWidget(board.Options{
		Width:     400,
		Height:    300,
		Tool:      tool,
		Scheduler: m,
	}, nil)
	require.NoError(t, err)
	return w, m
}

func mouse(x, y float32) *desktop.MouseEvent {
	e := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	e.Position = fyne.NewPos(x, y)
	return e
}

func dragTo(x, y float32) *fyne.DragEvent {
	e := &fyne.DragEvent{}
	e.Position = fyne.NewPos(x, y)
	return e
}

func TestWidgetDrawsStroke(t *testing.T) {
	w, _ := newTestWidget(t, board.ToolPen)
	assert.Equal(t, fyne.NewSize(400, 300), w.MinSize())

	w.MouseDown(mouse(10, 10))
	w.Dragged(dragTo(50, 50))
	w.Dragged(dragTo(90, 60))
	w.MouseUp(mouse(90, 60))
	w.DragEnd()

	lines := w.Board.Document().Lines
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Points, 3)
	assert.Equal(t, board.ActionIdle, w.Board.Action())
}

func TestWidgetPassThrough(t *testing.T) {
	w, _ := newTestWidget(t, board.ToolPen)
	w.Interactive = func() bool { return false }

	w.MouseDown(mouse(10, 10))
	w.Dragged(dragTo(50, 50))
	w.DragEnd()
	assert.Empty(t, w.Board.Document().Lines)
	assert.Equal(t, desktop.DefaultCursor, w.Cursor())
}

func TestWidgetMouseOutEndsGesture(t *testing.T) {
	w, _ := newTestWidget(t, board.ToolPen)
	w.MouseDown(mouse(10, 10))
	w.Dragged(dragTo(40, 10))
	w.MouseOut()
	assert.Equal(t, board.ActionIdle, w.Board.Action())

	// A late drag after leaving is not a new stroke.
	w.Dragged(dragTo(80, 10))
	w.DragEnd()
	assert.Len(t, w.Board.Document().Lines, 1)
}

func TestEditorCommitsOnBlur(t *testing.T) {
	w, _ := newTestWidget(t, board.ToolText)
	test.NewWindow(w)

	w.MouseDown(mouse(30, 40))
	w.MouseUp(mouse(30, 40))
	id, editing := w.Board.Editing()
	require.True(t, editing)
	require.NotNil(t, w.editing)
	assert.True(t, w.editor.Visible())

	w.editor.SetText("hello")
	w.editor.FocusLost()

	_, editing = w.Board.Editing()
	assert.False(t, editing)
	assert.False(t, w.editor.Visible())
	o, ok := w.Board.Document().FindObjectByID(id)
	require.True(t, ok)
	assert.Equal(t, "hello", o.Text.Text)

	// A second blur after the edit ended changes nothing.
	w.editor.FocusLost()
	assert.Len(t, w.Board.Document().Texts(), 1)
}

func TestEmptyEditorDeletesBox(t *testing.T) {
	w, _ := newTestWidget(t, board.ToolText)
	test.NewWindow(w)

	w.MouseDown(mouse(30, 40))
	w.MouseUp(mouse(30, 40))
	w.editor.FocusLost()
	assert.Empty(t, w.Board.Document().Texts())
}

func TestReadDataURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	src, err := readDataURL(&buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "data:image/png;base64,"))
}

func TestPageImagesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"p2.png", "p10.JPG", "p1.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	paths, err := PageImages(dir)
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"p1.png", "p10.JPG", "p2.png"}, names)

	_, err = PageImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRemoveNoteDropsPendingEdits(t *testing.T) {
	test.NewTempApp(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "notes.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	fonts, err := render.NewFonts()
	require.NoError(t, err)

	m := loop.NewManual()
	v, err := newNoteView(context.Background(), test.NewWindow(nil), m, Options{
		Config: config.Default(),
		Store:  st,
		Fonts:  fonts,
		Logger: slog.Default(),
	})
	require.NoError(t, err)
	require.NotNil(t, v.note)
	gone := v.note.ID

	b := v.bw.Board
	b.SetTool(board.ToolPen)
	b.PointerDown(geom.Pt(10, 10))
	b.PointerMove(geom.Pt(40, 40))
	b.PointerUp(geom.Pt(40, 40))
	require.True(t, b.Dirty())

	v.remove()
	assert.False(t, b.Dirty())
	m.Advance(time.Second)

	_, err = st.Note(gone)
	assert.ErrorIs(t, err, store.ErrNotFound)
	notes, err := st.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 1, "a fresh note replaces the last one")
	assert.NotEqual(t, gone, notes[0].ID)
	assert.True(t, notes[0].Content.IsEmpty())
	assert.True(t, b.Document().IsEmpty())
}
