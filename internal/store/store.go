package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
)

// ErrNotFound is returned by mutators that target a record id absent from
// the collection. Mutate propagates it without committing anything.
var ErrNotFound = errors.New("application not found")

// Collection is the full record set as it lives in storage: one JSON
// document holding every application.
type Collection struct {
	Applications []models.Application `json:"applications"`
}

// Store is the persistence backend. Two implementations exist: a flat JSON
// file and a single JSONB row in postgres. Callers must never depend on
// which one is active.
type Store interface {
	// ReadAll returns the last committed record set.
	ReadAll(ctx context.Context) ([]models.Application, error)

	// Mutate runs fn against the decoded collection and commits the
	// result atomically. If fn returns an error nothing is written and
	// the error is returned as-is.
	Mutate(ctx context.Context, fn func(*Collection) error) error
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCollection turns raw storage bytes into a Collection. A BOM prefix
// is stripped and malformed or mis-shaped content degrades to an empty
// collection rather than an error: the store never refuses to start over
// corrupt state.
func decodeCollection(raw []byte) *Collection {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return &Collection{Applications: []models.Application{}}
	}
	if c.Applications == nil {
		c.Applications = []models.Application{}
	}
	return &c
}

func encodeCollection(c *Collection) ([]byte, error) {
	if c.Applications == nil {
		c.Applications = []models.Application{}
	}
	return json.MarshalIndent(c, "", "  ")
}
