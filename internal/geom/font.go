package geom

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// LineHeight is the line advance as a multiple of the font size.
	LineHeight = 1.2
	// DefaultFontSize applies to empty text.
	DefaultFontSize = 16
	// MinFontSize is the smallest size a fit will produce.
	MinFontSize = 4
	// avgCharWidth approximates one glyph advance in ems.
	avgCharWidth = 0.6
)

// FitFontSize scales fontSize with the box width as it goes from
// startWidth to width.
func FitFontSize(fontSize, startWidth, width float64) float64 {
	if startWidth <= 0 || fontSize <= 0 {
		return math.Max(fontSize, MinFontSize)
	}
	return math.Max(fontSize*width/startWidth, MinFontSize)
}

// EstimateFontSize guesses a size that lets text fill a width×height box,
// assuming glyphs of avgCharWidth ems. It diverges from real glyph
// metrics, especially for non-Latin scripts.
func EstimateFontSize(text string, width, height float64) float64 {
	if text == "" {
		return DefaultFontSize
	}
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	fromWidth := width / float64(max(longest, 1)) / avgCharWidth
	fromHeight := height / (float64(len(lines)) * LineHeight)
	return math.Max(math.Min(fromWidth, fromHeight), MinFontSize)
}

// TextBlockHeight is the height of text laid out at fontSize.
func TextBlockHeight(text string, fontSize float64) float64 {
	return float64(strings.Count(text, "\n")+1) * fontSize * LineHeight
}
