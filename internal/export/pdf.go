// Package export writes documents out as PDF, one rendered page per
// document.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"

	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// ErrNoPages is returned when there is nothing to export.
var ErrNoPages = errors.New("export: no pages")

// Page is one document rendered onto one PDF page.
type Page struct {
	Doc      *state.Document
	Width    int
	Height   int
	Theme    render.Theme
	NoteType render.NoteType
	// Background, if set, is drawn under the annotations in place of
	// the theme background, scaled to the page.
	Background image.Image
	// Scale is surface pixels per PDF point. Zero means 1.
	Scale float64
}

// Exporter renders pages headless and assembles the PDF.
type Exporter struct {
	fonts  *render.Fonts
	logger *slog.Logger
}

// New returns an exporter drawing text with fonts.
func New(fonts *render.Fonts, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{fonts: fonts, logger: logger.With("component", "export")}
}

// PDF writes pages to w.
func (e *Exporter) PDF(w io.Writer, pages []Page) error {
	if len(pages) == 0 {
		return ErrNoPages
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: pageSize(pages[0])})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("StudyBoard", true)

	for i, pg := range pages {
		img := e.Render(pg)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode page %d: %w", i+1, err)
		}
		size := pageSize(pg)
		name := fmt.Sprintf("page-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}

		pdf.AddPageFormat("P", size)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, size.Wd, size.Ht, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return err
	}
	e.logger.Info("exported pdf", "pages", len(pages))
	return nil
}

// File writes pages to a PDF file at path.
func (e *Exporter) File(path string, pages []Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.PDF(f, pages); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render draws one page: background, strokes, then objects. Images are
// decoded synchronously; ones that fail are left out.
func (e *Exporter) Render(pg Page) *image.RGBA {
	doc := pg.Doc
	if doc == nil {
		doc = state.NewDocument()
	}
	bitmaps := make(map[string]image.Image)
	for _, im := range doc.Images() {
		bmp, err := render.DecodeSource(im.Src)
		if err != nil {
			e.logger.Warn("image skipped", "id", im.ID, "error", err)
			continue
		}
		bitmaps[im.ID] = bmp
	}
	sc := render.Scene{
		Doc:        doc,
		Theme:      pg.Theme,
		NoteType:   pg.NoteType,
		Overlay:    pg.Background != nil,
		LiveStroke: -1,
		Bitmap:     func(id string) image.Image { return bitmaps[id] },
	}
	p := render.NewPipeline(pg.Width, pg.Height, e.fonts, func() render.Scene { return sc }, nil, e.logger)
	if pg.Background == nil {
		return p.Snapshot(sc, true)
	}

	w, h := p.Size()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), pg.Background, pg.Background.Bounds(), xdraw.Src, nil)
	xdraw.Draw(out, out.Bounds(), p.Snapshot(sc, false), image.Point{}, xdraw.Over)
	return out
}

func pageSize(pg Page) gofpdf.SizeType {
	s := pg.Scale
	if s <= 0 {
		s = 1
	}
	return gofpdf.SizeType{Wd: float64(max(pg.Width, 1)) / s, Ht: float64(max(pg.Height, 1)) / s}
}
