package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"StudyBoard/internal/board"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
)

// inkSurface is what the toolbar drives: one board or a page annotator.
type inkSurface interface {
	Tool() board.Tool
	SetTool(board.Tool)
	PenColor() string
	SetPenColor(string)
	PenWidth() float64
	SetPenWidth(float64)
}

// NotePalette is the swatch row offered for notes.
var NotePalette = []string{"#000000", "#D50000", "#2E7D32", "#2962FF", "#FFC400", "#FFFFFF"}

// ToolbarActions are the command buttons. Nil actions get no button.
type ToolbarActions struct {
	AddText     func()
	AddImage    func()
	Undo        func()
	Delete      func()
	Export      func()
	SetFontSize func(float64)
}

// colorSwatch is a tappable square of one ink color.
type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)

	selected bool
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Color))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1
	if s.selected {
		border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		border.StrokeWidth = 3
	}
	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) setSelected(on bool) {
	if s.selected == on {
		return
	}
	s.selected = on
	s.Refresh()
}

// Tapped implements fyne.Tappable.
func (s *colorSwatch) Tapped(*fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the tool picker, ink controls and command buttons.
type Toolbar struct {
	surface  inkSurface
	tools    *widget.Select
	swatches []*colorSwatch
	width    *widget.Slider
	font     *widget.Slider
	fontBox  *fyne.Container
	delete   *widget.Button

	labels map[string]board.Tool
	object fyne.CanvasObject
}

var toolLabels = map[board.Tool]string{
	board.ToolPointer:     "Select",
	board.ToolPen:         "Pen",
	board.ToolHighlighter: "Highlighter",
	board.ToolEraser:      "Eraser",
	board.ToolText:        "Text",
}

// NewToolbar builds a toolbar for s offering tools and palette.
func NewToolbar(s inkSurface, tools []board.Tool, palette []string, actions ToolbarActions) *Toolbar {
	t := &Toolbar{surface: s, labels: make(map[string]board.Tool)}

	var options []string
	for _, tool := range tools {
		l := toolLabels[tool]
		options = append(options, l)
		t.labels[l] = tool
	}
	t.tools = widget.NewSelect(options, func(l string) {
		t.surface.SetTool(t.labels[l])
		t.width.SetValue(t.surface.PenWidth())
	})

	for _, c := range palette {
		t.swatches = append(t.swatches, newColorSwatch(c, t.pickColor))
	}
	colorBox := container.NewHBox()
	for _, sw := range t.swatches {
		colorBox.Add(sw)
	}

	t.width = widget.NewSlider(1, 50)
	t.width.OnChanged = func(v float64) { t.surface.SetPenWidth(v) }
	widthBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 35)), t.width)

	t.font = widget.NewSlider(8, 96)
	t.font.Step = 1
	if actions.SetFontSize != nil {
		t.font.OnChangeEnded = actions.SetFontSize
	}
	t.fontBox = container.NewHBox(widget.NewLabel("Font:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), t.font))
	t.fontBox.Hide()

	buttons := widget.NewToolbar()
	if actions.AddText != nil {
		buttons.Append(widget.NewToolbarAction(theme.DocumentCreateIcon(), actions.AddText))
	}
	if actions.AddImage != nil {
		buttons.Append(widget.NewToolbarAction(theme.FileImageIcon(), actions.AddImage))
	}
	if actions.Undo != nil {
		buttons.Append(widget.NewToolbarAction(theme.ContentUndoIcon(), actions.Undo))
	}
	if actions.Export != nil {
		buttons.Append(widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Export))
	}
	t.delete = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		if actions.Delete != nil {
			actions.Delete()
		}
	})
	t.delete.Disable()
	if actions.Delete == nil {
		t.delete.Hide()
	}

	t.object = container.NewHBox(
		widget.NewLabel("Tool:"),
		t.tools,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		widthBox,
		t.fontBox,
		widget.NewSeparator(),
		buttons,
		t.delete,
		layout.NewSpacer(),
	)
	t.Sync()
	return t
}

// Object is the toolbar's canvas object.
func (t *Toolbar) Object() fyne.CanvasObject { return t.object }

// Sync reloads the controls from the surface.
func (t *Toolbar) Sync() {
	t.tools.SetSelected(toolLabels[t.surface.Tool()])
	t.width.SetValue(t.surface.PenWidth())
	t.markColor(t.surface.PenColor())
}

func (t *Toolbar) pickColor(c string) {
	t.surface.SetPenColor(c)
	t.markColor(c)
}

func (t *Toolbar) markColor(c string) {
	for _, sw := range t.swatches {
		sw.setSelected(sw.Color == c)
	}
}

// SetSelection enables the delete button while an object is selected.
func (t *Toolbar) SetSelection(selected bool) {
	if selected {
		t.delete.Enable()
	} else {
		t.delete.Disable()
	}
}

// ShowText shows the font control for the selected text box, or hides
// it for nil.
func (t *Toolbar) ShowText(txt *state.TextObject) {
	if txt == nil {
		t.fontBox.Hide()
		return
	}
	t.font.Value = txt.FontSize
	t.font.Refresh()
	t.fontBox.Show()
}
