package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"StudyBoard/internal/board"
	"StudyBoard/internal/config"
	"StudyBoard/internal/export"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/pdfnote"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
	"StudyBoard/internal/store"
)

// Options configures the desktop app.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Store      *store.Store
	// NoteID opens that note. Empty opens the most recent one.
	NoteID string
	// Pages, when set, opens page annotation over these page images
	// instead of a note. PagesID keys the annotations in the store.
	Pages   []string
	PagesID string
	Fonts   *render.Fonts
	Logger  *slog.Logger
}

// RunApp opens the main window and blocks until it closes.
func RunApp(opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := app.NewWithID("studyboard")
	w := a.NewWindow("StudyBoard")
	w.Resize(fyne.NewSize(1100, 800))
	sched := loop.NewAsync(fyne.Do)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		closeFn func()
		err     error
	)
	if len(opts.Pages) > 0 {
		closeFn, err = openPages(w, sched, opts)
	} else {
		closeFn, err = openNotes(ctx, w, sched, opts)
	}
	if err != nil {
		return err
	}
	w.SetCloseIntercept(func() {
		closeFn()
		w.Close()
	})
	w.ShowAndRun()
	return nil
}

type noteView struct {
	opts    Options
	win     fyne.Window
	bw      *BoardWidget
	tb      *Toolbar
	note    *store.Note
	picker  *widget.Select
	byTitle map[string]string
	logger  *slog.Logger
}

func openNotes(ctx context.Context, w fyne.Window, sched loop.Scheduler, opts Options) (func(), error) {
	v, err := newNoteView(ctx, w, sched, opts)
	if err != nil {
		return nil, err
	}
	return v.bw.Board.Close, nil
}

func newNoteView(ctx context.Context, w fyne.Window, sched loop.Scheduler, opts Options) (*noteView, error) {
	cfg := opts.Config
	v := &noteView{opts: opts, win: w, logger: opts.Logger.With("component", "ui")}

	var tb *Toolbar
	bw, err := NewBoardWidget(board.Options{
		Width:           cfg.Canvas.Width,
		Height:          cfg.Canvas.Height,
		Theme:           render.Theme(cfg.Canvas.Theme),
		NoteType:        render.NoteType(cfg.Canvas.NoteType),
		PenColor:        cfg.Editor.PenColor,
		PenWidth:        cfg.Editor.PenWidth,
		SaveDelay:       cfg.SaveDelay(),
		LongPress:       cfg.LongPress(),
		Scheduler:       sched,
		Fonts:           opts.Fonts,
		Logger:          opts.Logger,
		OnContentChange: v.save,
		OnImageSelect: func(bool) {
			_, ok := v.bw.Board.Selected()
			tb.SetSelection(ok)
		},
		OnTextObjectSelect: func(t *state.TextObject) {
			_, ok := v.bw.Board.Selected()
			tb.SetSelection(ok)
			tb.ShowText(t)
		},
	}, opts.Logger)
	if err != nil {
		return nil, err
	}
	v.bw = bw
	b := bw.Board

	tb = NewToolbar(b,
		[]board.Tool{board.ToolPointer, board.ToolPen, board.ToolHighlighter, board.ToolEraser, board.ToolText},
		NotePalette,
		ToolbarActions{
			AddText:  func() { b.AddText("") },
			AddImage: v.pickImage,
			Undo:     func() { b.Undo() },
			Delete:   func() { b.DeleteSelectedObject() },
			Export:   v.exportPDF,
			SetFontSize: func(size float64) {
				b.UpdateSelectedObject(state.Patch{FontSize: state.Float(size)})
			},
		})
	v.tb = tb

	v.byTitle = make(map[string]string)
	v.picker = widget.NewSelect(nil, func(title string) {
		if id, ok := v.byTitle[title]; ok && (v.note == nil || v.note.ID != id) {
			v.open(id)
		}
	})
	newNote := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), v.create)
	delNote := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), v.confirmRemove)

	if err := v.openInitial(opts.NoteID); err != nil {
		return nil, err
	}

	header := container.NewVBox(
		container.NewHBox(widget.NewLabel("Note:"), v.picker, newNote, delNote),
		tb.Object(),
	)
	w.SetContent(container.NewBorder(header, nil, nil, nil, container.NewScroll(bw)))

	if opts.ConfigPath != "" {
		err := config.Watch(ctx, opts.ConfigPath, opts.Logger, func(c *config.Config) {
			fyne.Do(func() { v.apply(c) })
		})
		if err != nil {
			v.logger.Warn("config watch disabled", "error", err)
		}
	}
	return v, nil
}

func (v *noteView) openInitial(id string) error {
	if id != "" {
		return v.open(id)
	}
	notes, err := v.opts.Store.Notes()
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		v.create()
		return nil
	}
	return v.open(notes[0].ID)
}

func (v *noteView) open(id string) error {
	// Pending edits belong to the note being left.
	v.bw.Board.FlushContent()
	n, err := v.opts.Store.Note(id)
	if err != nil {
		v.logger.Error("open note", "id", id, "error", err)
		dialog.ShowError(err, v.win)
		return err
	}
	v.note = n
	v.bw.Board.LoadDocument(n.Content)
	v.bw.Refresh()
	v.refreshPicker()
	return nil
}

func (v *noteView) create() {
	n := &store.Note{
		Title:   "Note " + time.Now().Format("2006-01-02 15:04:05"),
		Type:    "board",
		Content: state.NewDocument(),
	}
	if err := v.opts.Store.SaveNote(n); err != nil {
		v.logger.Error("create note", "error", err)
		dialog.ShowError(err, v.win)
		return
	}
	v.open(n.ID)
}

func (v *noteView) confirmRemove() {
	if v.note == nil {
		return
	}
	dialog.ShowConfirm("Delete note", "Delete \""+v.note.Title+"\"?", func(ok bool) {
		if ok {
			v.remove()
		}
	}, v.win)
}

// remove deletes the open note, dropping its unsaved edits, and moves on
// to the most recent remaining note.
func (v *noteView) remove() {
	if v.note == nil {
		return
	}
	id := v.note.ID
	v.bw.Board.DiscardContent()
	v.note = nil
	if err := v.opts.Store.DeleteNote(id); err != nil {
		v.logger.Error("delete note", "id", id, "error", err)
		dialog.ShowError(err, v.win)
		return
	}
	v.logger.Info("note deleted", "id", id)
	if err := v.openInitial(""); err != nil {
		v.logger.Error("open note", "error", err)
	}
}

func (v *noteView) refreshPicker() {
	notes, err := v.opts.Store.Notes()
	if err != nil {
		v.logger.Error("list notes", "error", err)
		return
	}
	clear(v.byTitle)
	titles := make([]string, 0, len(notes))
	for _, n := range notes {
		titles = append(titles, n.Title)
		v.byTitle[n.Title] = n.ID
	}
	v.picker.SetOptions(titles)
	if v.note != nil {
		v.picker.SetSelected(v.note.Title)
	}
}

// save stores settled content with a fresh preview.
func (v *noteView) save(doc *state.Document) {
	if v.note == nil {
		return
	}
	preview, err := v.bw.Board.Thumbnail()
	if err != nil {
		v.logger.Warn("thumbnail failed", "id", v.note.ID, "error", err)
	}
	if err := v.opts.Store.SaveContent(v.note.ID, doc, preview); err != nil {
		v.logger.Error("save note", "id", v.note.ID, "error", err)
	}
}

// apply takes the reloaded look and pen defaults.
func (v *noteView) apply(c *config.Config) {
	v.opts.Config = c
	b := v.bw.Board
	b.SetTheme(render.Theme(c.Canvas.Theme))
	b.SetNoteType(render.NoteType(c.Canvas.NoteType))
	b.SetPenColor(c.Editor.PenColor)
	b.SetPenWidth(c.Editor.PenWidth)
	v.tb.Sync()
}

func (v *noteView) pickImage() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.win)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		src, err := readDataURL(r)
		if err != nil {
			dialog.ShowError(err, v.win)
			return
		}
		v.bw.Board.AddImage(src)
	}, v.win)
	d.SetFilter(storage.NewExtensionFileFilter(pageExts))
	d.Show()
}

// readDataURL reads an image file into a data URL.
func readDataURL(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return render.DataURL(http.DetectContentType(data), data), nil
}

func (v *noteView) exportPDF() {
	b := v.bw.Board
	w, h := b.Size()
	pages := []export.Page{{
		Doc:      b.Document(),
		Width:    w,
		Height:   h,
		Theme:    render.Theme(v.opts.Config.Canvas.Theme),
		NoteType: render.NoteType(v.opts.Config.Canvas.NoteType),
	}}
	savePDF(v.win, export.New(v.opts.Fonts, v.opts.Logger), pages, v.logger)
}

func savePDF(win fyne.Window, e *export.Exporter, pages []export.Page, logger *slog.Logger) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()
		if err := e.PDF(wc, pages); err != nil {
			logger.Error("export pdf", "error", err)
			dialog.ShowError(err, win)
			return
		}
		logger.Info("exported pdf", "uri", wc.URI().String(), "pages", len(pages))
	}, win)
	d.SetFileName("notes.pdf")
	d.Show()
}

func openPages(w fyne.Window, sched loop.Scheduler, opts Options) (func(), error) {
	cfg := opts.Config
	logger := opts.Logger.With("component", "ui")

	anns, err := opts.Store.Annotations(opts.PagesID)
	if err != nil {
		return nil, err
	}
	view := NewPageView(LoadPages(opts.Pages, logger), opts.Logger)
	ann, err := pdfnote.New(pdfnote.Options{
		FileID:           opts.PagesID,
		Annotations:      anns,
		Theme:            render.Theme(cfg.Canvas.Theme),
		PenColor:         cfg.Editor.PenColor,
		PenWidth:         cfg.Editor.PenWidth,
		HighlighterWidth: cfg.Editor.HighlighterWidth,
		SaveDelay:        cfg.PDFSaveDelay(),
		PageSaveDelay:    cfg.SaveDelay(),
		LongPress:        cfg.LongPress(),
		Scheduler:        sched,
		Fonts:            opts.Fonts,
		Logger:           opts.Logger,
		OnSave: func(fileID string, pages []*state.Document) {
			if err := opts.Store.SaveAnnotations(fileID, pages); err != nil {
				logger.Error("save annotations", "file", fileID, "error", err)
			}
		},
		PageOptions: view.Hook,
	})
	if err != nil {
		return nil, err
	}
	view.Bind(ann)

	tb := NewToolbar(ann,
		[]board.Tool{board.ToolPointer, board.ToolPen, board.ToolHighlighter, board.ToolEraser},
		pdfnote.Palette,
		ToolbarActions{
			Export: func() {
				savePDF(w, export.New(opts.Fonts, opts.Logger), view.ExportPages(), logger)
			},
		})
	zoom := container.NewHBox(
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), view.ZoomOut),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), func() { view.Fit(view.Object().Size().Width) }),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), view.ZoomIn),
	)
	w.SetContent(container.NewBorder(container.NewHBox(tb.Object(), zoom), nil, nil, nil, view.Object()))
	return ann.Close, nil
}
