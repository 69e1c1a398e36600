package ui

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"

	"StudyBoard/internal/board"
	"StudyBoard/internal/export"
	"StudyBoard/internal/pdfnote"
	"StudyBoard/internal/render"
)

const (
	pageGap  = 12
	zoomStep = 1.25
	minScale = 0.25
	maxScale = 4
)

var blankPage = func() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 0xff, 0xff, 0xff, 0xff
	return img
}()

var pageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// PageImages lists the page images in dir in name order. Pages are
// rasterized elsewhere; this only picks them up.
func PageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(pageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// LoadPages decodes every page image. Pages that fail to decode are
// returned as nil and shown blank.
func LoadPages(paths []string, logger *slog.Logger) []image.Image {
	out := make([]image.Image, len(paths))
	for i, p := range paths {
		img, err := render.DecodeSource(p)
		if err != nil {
			logger.Warn("page image skipped", "path", p, "error", err)
			continue
		}
		out[i] = img
	}
	return out
}

// PageView is a scrollable column of page images, each with an
// annotation board laid over it. Boards are created as pages scroll into
// view.
type PageView struct {
	ann     *pdfnote.Annotator
	pages   []image.Image
	widgets []*BoardWidget
	slots   []*fyne.Container
	column  *fyne.Container
	scroll  *container.Scroll
	logger  *slog.Logger
}

// NewPageView builds the view. The annotator's options must route
// PageOptions through the returned view's Hook.
func NewPageView(pages []image.Image, logger *slog.Logger) *PageView {
	if logger == nil {
		logger = slog.Default()
	}
	v := &PageView{pages: pages, logger: logger.With("component", "ui")}
	v.column = container.New(layout.NewCustomPaddedVBoxLayout(pageGap))
	for range pages {
		w := newBoardWidget(logger)
		v.widgets = append(v.widgets, w)
	}
	v.scroll = container.NewScroll(v.column)
	v.scroll.OnScrolled = func(fyne.Position) { v.materializeVisible() }
	return v
}

// Hook is the annotator's PageOptions callback.
func (v *PageView) Hook(i int, o *board.Options) {
	if i < len(v.widgets) {
		v.widgets[i].hook(o)
	}
}

// Bind attaches the annotator and lays the pages out.
func (v *PageView) Bind(ann *pdfnote.Annotator) {
	v.ann = ann
	ann.SetPageCount(len(v.pages))
	v.slots = v.slots[:0]
	v.column.RemoveAll()
	for i, w := range v.widgets {
		w.Interactive = ann.Interactive
		page := v.pages[i]
		if page == nil {
			page = blankPage
		}
		bg := canvas.NewImageFromImage(page)
		bg.FillMode = canvas.ImageFillStretch
		slot := container.NewStack(bg, w)
		v.slots = append(v.slots, slot)
		v.column.Add(container.NewCenter(slot))
	}
	v.relayout()
}

// Object is the view's canvas object.
func (v *PageView) Object() fyne.CanvasObject { return v.scroll }

// Fit scales pages to the given container width.
func (v *PageView) Fit(width float32) {
	v.setScale(pdfnote.FitScale(float64(width)))
}

// ZoomIn enlarges the pages.
func (v *PageView) ZoomIn() { v.setScale(v.scale() * zoomStep) }

// ZoomOut shrinks the pages.
func (v *PageView) ZoomOut() { v.setScale(v.scale() / zoomStep) }

func (v *PageView) scale() float64 {
	w, _ := v.ann.PageSize()
	return float64(w) / pdfnote.PageWidth
}

func (v *PageView) setScale(s float64) {
	if v.ann == nil {
		return
	}
	v.ann.SetScale(min(max(s, minScale), maxScale))
	v.relayout()
}

func (v *PageView) relayout() {
	pw, ph := v.ann.PageSize()
	size := fyne.NewSize(float32(pw), float32(ph))
	for i, w := range v.widgets {
		w.placeholder = size
		w.Refresh()
		v.slots[i].Refresh()
	}
	v.column.Refresh()
	v.materializeVisible()
}

// materializeVisible creates boards for the pages inside the viewport.
func (v *PageView) materializeVisible() {
	if v.ann == nil || len(v.widgets) == 0 {
		return
	}
	_, ph := v.ann.PageSize()
	stride := float32(ph) + pageGap
	top := v.scroll.Offset.Y
	bottom := top + max(v.scroll.Size().Height, stride)
	first := max(int(top/stride), 0)
	last := min(int(bottom/stride), len(v.widgets)-1)
	for i := first; i <= last; i++ {
		if v.widgets[i].Board != nil {
			continue
		}
		b, err := v.ann.Page(i)
		if err != nil {
			v.logger.Error("page board", "page", i, "error", err)
			continue
		}
		v.widgets[i].attach(b)
		v.slots[i].Refresh()
	}
}

// ExportPages returns the annotated pages for PDF export.
func (v *PageView) ExportPages() []export.Page {
	return v.ann.ExportPages(v.pages)
}
