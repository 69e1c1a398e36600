package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

func newExporter(t *testing.T) *Exporter {
	t.Helper()
	fonts, err := render.NewFonts()
	require.NoError(t, err)
	return New(fonts, nil)
}

func inkedDoc(t *testing.T) *state.Document {
	t.Helper()
	d := state.NewDocument()
	_, err := d.CommitStroke(state.Stroke{Tool: state.ToolPen, Color: "#ff0000", StrokeWidth: 6, Points: []geom.Point{{X: 10, Y: 50}, {X: 90, Y: 50}}})
	require.NoError(t, err)
	return d
}

func TestRenderPage(t *testing.T) {
	e := newExporter(t)
	img := e.Render(Page{Doc: inkedDoc(t), Width: 100, Height: 100, Theme: render.ThemeDark})
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 255}, img.RGBAAt(50, 10))
}

func TestRenderOverBackground(t *testing.T) {
	e := newExporter(t)
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i+1], bg.Pix[i+3] = 255, 255
	}
	img := e.Render(Page{Doc: inkedDoc(t), Width: 100, Height: 100, Background: bg})
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(50, 50))
	under := img.RGBAAt(50, 10)
	assert.InDelta(t, 255, int(under.G), 1)
	assert.Zero(t, under.R)
}

func TestPDF(t *testing.T) {
	e := newExporter(t)
	var buf bytes.Buffer
	err := e.PDF(&buf, []Page{
		{Doc: inkedDoc(t), Width: 120, Height: 160},
		{Doc: state.NewDocument(), Width: 1190, Height: 1684, Scale: 2},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.ErrorIs(t, e.PDF(&buf, nil), ErrNoPages)
}

func TestFile(t *testing.T) {
	e := newExporter(t)
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, e.File(path, []Page{{Doc: inkedDoc(t), Width: 50, Height: 50}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
