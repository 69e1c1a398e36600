package render

import "image/color"

// Theme selects the default palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// NoteType selects the background ruling.
type NoteType string

const (
	NoteBlank NoteType = "blank"
	NoteLined NoteType = "lined"
)

// RulePitch is the distance between rule lines on lined notes.
const RulePitch = 30

// Palette holds the theme-dependent colors.
type Palette struct {
	Background color.NRGBA
	Rule       color.NRGBA
	Ink        string
}

// PaletteFor returns the palette for t. Unknown themes get the light one.
func PaletteFor(t Theme) Palette {
	if t == ThemeDark {
		return Palette{
			Background: color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 255},
			Rule:       color.NRGBA{R: 0x37, G: 0x41, B: 0x51, A: 255},
			Ink:        "#FFFFFF",
		}
	}
	return Palette{
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Rule:       color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 255},
		Ink:        "#000000",
	}
}

var (
	selectionColor = color.NRGBA{R: 0x00, G: 0x7b, B: 0xff, A: 255}
	affordanceBG   = color.NRGBA{A: 178}
)
