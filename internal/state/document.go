package state

import (
	"errors"
	"fmt"
	"slices"

	"StudyBoard/internal/geom"
)

var (
	// ErrDuplicateID is returned when an inserted object reuses an id.
	ErrDuplicateID = errors.New("duplicate object id")
	// ErrNotFound is returned when no object has the requested id.
	ErrNotFound = errors.New("object not found")
	// ErrShortStroke is returned when committing a stroke with fewer than two points.
	ErrShortStroke = errors.New("stroke needs at least two points")
)

// Document is the in-memory note: an ordered list of strokes and the
// image and text objects. Images always paint below texts; within a kind
// objects keep insertion order. Object ids are unique across both kinds. Mutations happen in place; the document is not safe for
// concurrent use.
type Document struct {
	Lines []Stroke

	objects []Object
	byID    map[string]Object
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{byID: make(map[string]Object)}
}

// Objects returns images then texts, each in insertion order. This is the
// paint order, and it survives a save and reload.
func (d *Document) Objects() []Object {
	return d.objects
}

// Images returns the image objects in insertion order.
func (d *Document) Images() []*ImageObject {
	out := make([]*ImageObject, 0, len(d.objects))
	for _, o := range d.objects {
		if o.Kind == KindImage {
			out = append(out, o.Image)
		}
	}
	return out
}

// Texts returns the text objects in insertion order.
func (d *Document) Texts() []*TextObject {
	out := make([]*TextObject, 0, len(d.objects))
	for _, o := range d.objects {
		if o.Kind == KindText {
			out = append(out, o.Text)
		}
	}
	return out
}

// IsEmpty reports whether the document holds no strokes and no objects.
func (d *Document) IsEmpty() bool {
	return len(d.Lines) == 0 && len(d.objects) == 0
}

// CommitStroke appends s as the newest stroke and returns its index.
func (d *Document) CommitStroke(s Stroke) (int, error) {
	if len(s.Points) < 2 {
		return -1, ErrShortStroke
	}
	d.Lines = append(d.Lines, s.clone())
	return len(d.Lines) - 1, nil
}

// AppendPoint extends the stroke at index i.
func (d *Document) AppendPoint(i int, p geom.Point) bool {
	if i < 0 || i >= len(d.Lines) {
		return false
	}
	d.Lines[i].Points = append(d.Lines[i].Points, p)
	return true
}

// PopLastStroke removes the newest stroke.
func (d *Document) PopLastStroke() (Stroke, bool) {
	if len(d.Lines) == 0 {
		return Stroke{}, false
	}
	last := d.Lines[len(d.Lines)-1]
	d.Lines = d.Lines[:len(d.Lines)-1]
	return last, true
}

// InsertImage adds img above every image and below every text.
func (d *Document) InsertImage(img *ImageObject) error {
	return d.insert(ImageOf(img))
}

// InsertText adds txt on top of every existing object.
func (d *Document) InsertText(txt *TextObject) error {
	return d.insert(TextOf(txt))
}

func (d *Document) insert(o Object) error {
	if d.byID == nil {
		d.byID = make(map[string]Object)
	}
	id := o.ID()
	if _, exists := d.byID[id]; exists {
		return fmt.Errorf("insert %s %q: %w", o.Kind, id, ErrDuplicateID)
	}
	at := len(d.objects)
	if o.Kind == KindImage {
		at = slices.IndexFunc(d.objects, func(x Object) bool { return x.Kind == KindText })
		if at < 0 {
			at = len(d.objects)
		}
	}
	d.objects = slices.Insert(d.objects, at, o)
	d.byID[id] = o
	return nil
}

// RemoveObject deletes the object with id, whatever its kind.
func (d *Document) RemoveObject(id string) bool {
	if _, ok := d.byID[id]; !ok {
		return false
	}
	delete(d.byID, id)
	d.objects = slices.DeleteFunc(d.objects, func(o Object) bool { return o.ID() == id })
	return true
}

// MutateObject applies p to the object with id.
func (d *Document) MutateObject(id string, p Patch) error {
	o, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("mutate %q: %w", id, ErrNotFound)
	}
	p.Apply(o)
	return nil
}

// FindObjectByID looks up an object by id.
func (d *Document) FindObjectByID(id string) (Object, bool) {
	o, ok := d.byID[id]
	return o, ok
}

// FindObjectAt returns the topmost object whose bounding box contains p.
func (d *Document) FindObjectAt(p geom.Point) (Object, bool) {
	for i := len(d.objects) - 1; i >= 0; i-- {
		if d.objects[i].Bounds().Contains(p) {
			return d.objects[i], true
		}
	}
	return Object{}, false
}

// Clone returns a deep copy that shares nothing with d.
func (d *Document) Clone() *Document {
	c := &Document{
		Lines:   make([]Stroke, len(d.Lines)),
		objects: make([]Object, 0, len(d.objects)),
		byID:    make(map[string]Object, len(d.objects)),
	}
	for i, s := range d.Lines {
		c.Lines[i] = s.clone()
	}
	for _, o := range d.objects {
		oc := o.Clone()
		c.objects = append(c.objects, oc)
		c.byID[oc.ID()] = oc
	}
	return c
}
