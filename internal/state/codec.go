package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"StudyBoard/internal/geom"
)

// wireDocument is the storage shape shared with the note owner.
type wireDocument struct {
	Lines  []Stroke       `json:"lines"`
	Images []*ImageObject `json:"images"`
	Texts  []*TextObject  `json:"texts"`
}

// MarshalJSON encodes d as {lines, images, texts}. Empty collections are
// written as [] rather than null.
func (d *Document) MarshalJSON() ([]byte, error) {
	w := wireDocument{
		Lines:  make([]Stroke, len(d.Lines)),
		Images: d.Images(),
		Texts:  d.Texts(),
	}
	copy(w.Lines, d.Lines)
	for i := range w.Lines {
		if w.Lines[i].Points == nil {
			w.Lines[i].Points = []geom.Point{}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON replaces d with the decoded payload. Null entries and
// strokes with fewer than two points are dropped; objects without an id,
// or reusing one already taken, get a fresh one.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	doc := NewDocument()
	for _, s := range w.Lines {
		if len(s.Points) >= 2 {
			doc.Lines = append(doc.Lines, s)
		}
	}
	for _, img := range w.Images {
		if img == nil {
			continue
		}
		if _, taken := doc.byID[img.ID]; taken || img.ID == "" {
			img.ID = NewImageID()
		}
		if err := doc.InsertImage(img); err != nil {
			return err
		}
	}
	for _, txt := range w.Texts {
		if txt == nil {
			continue
		}
		if _, taken := doc.byID[txt.ID]; taken || txt.ID == "" {
			txt.ID = NewTextID()
		}
		if err := doc.InsertText(txt); err != nil {
			return err
		}
	}
	*d = *doc
	return nil
}

// Parse decodes a serialized document.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ParseOrEmpty decodes data, falling back to an empty document when the
// payload is absent or malformed.
func ParseOrEmpty(data []byte, logger *slog.Logger) *Document {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return NewDocument()
	}
	doc, err := Parse(data)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("initial content unreadable, starting empty", "error", err)
		return NewDocument()
	}
	return doc
}

// Marshal serializes d.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}
