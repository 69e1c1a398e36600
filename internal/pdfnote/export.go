package pdfnote

import (
	"image"
	"math"

	"StudyBoard/internal/export"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// ExportPages pairs each page's annotations with its page image for PDF
// export. Pages without an image, or past the end of backgrounds, get the
// theme background. The output has one page per annotation document and
// keeps the page geometry at scale.
func ExportPages(docs []*state.Document, backgrounds []image.Image, scale float64, theme render.Theme) []export.Page {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(PageWidth * scale))
	h := int(math.Round(PageHeight * scale))
	out := make([]export.Page, len(docs))
	for i, d := range docs {
		pg := export.Page{
			Doc:      d,
			Width:    w,
			Height:   h,
			Theme:    theme,
			NoteType: render.NoteBlank,
			Scale:    scale,
		}
		if i < len(backgrounds) && backgrounds[i] != nil {
			pg.Background = backgrounds[i]
		}
		out[i] = pg
	}
	return out
}

// ExportPages returns the current annotations as export pages at the
// current scale.
func (a *Annotator) ExportPages(backgrounds []image.Image) []export.Page {
	return ExportPages(a.Annotations(), backgrounds, a.scale, a.opts.Theme)
}
