package state

import (
	"github.com/google/uuid"
)

// NewImageID returns a fresh id for an image object.
func NewImageID() string { return "img-" + uuid.NewString() }

// NewTextID returns a fresh id for a text object.
func NewTextID() string { return "txt-" + uuid.NewString() }
