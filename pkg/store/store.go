// Package store persists diagram documents.
//
// A [Store] keeps [Record]s: a serialized canvas plus its name, version and
// timestamps. Backends live in this package ([MemoryStore], [FileStore]) and
// in subpackages for external services (sqlite, redis, mongo). All of them
// share the same contract, checked by the storetest package:
//
//   - Put assigns an id when the record has none.
//   - Put increments Version; a non-zero Version on input must match the
//     stored version or Put fails with [ErrConflict].
//   - Get and Delete of an unknown id fail with [ErrNotFound].
//   - List returns summaries ordered by most recent update.
package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
)

// Sentinel errors. Backends wrap them with the offending id.
var (
	ErrNotFound = errors.New(errors.ErrCodeNotFound, "document not found")
	ErrConflict = errors.New(errors.ErrCodeConflict, "document version conflict")
)

// Record is one stored diagram.
type Record struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Version   int               `json:"version" bson:"version"`
	Document  *diagram.Document `json:"document" bson:"document"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Summary describes a record without its document.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Shapes      int       `json:"shapes"`
	Connections int       `json:"connections"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summarize builds the summary of r.
func (r *Record) Summarize() Summary {
	s := Summary{ID: r.ID, Name: r.Name, Version: r.Version, UpdatedAt: r.UpdatedAt}
	if r.Document != nil {
		s.Shapes = len(r.Document.CustomShapes) + len(r.Document.RegularShapes)
		s.Connections = len(r.Document.Connections)
	}
	return s
}

// Store is a document store. Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	// Put creates or replaces rec and updates its ID, Version and
	// timestamps in place.
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

// Clock returns the current time. Backends take one so tests can pin it.
type Clock func() time.Time

// stamp validates rec against the stored record (nil when absent) and
// advances its id, version and timestamps.
func stamp(rec, stored *Record, now time.Time) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	if rec.Document == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record %q has no document", rec.ID)
	}
	if rec.ID == "" {
		rec.ID = NewID()
	} else if err := errors.ValidateID(rec.ID); err != nil {
		return err
	}
	current := 0
	if stored != nil {
		current = stored.Version
		rec.CreatedAt = stored.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	if rec.Version != 0 && rec.Version != current {
		return errors.Wrap(errors.ErrCodeConflict, ErrConflict, "document %s is at version %d, not %d", rec.ID, current, rec.Version)
	}
	rec.Version = current + 1
	rec.UpdatedAt = now
	if rec.Name == "" {
		rec.Name = rec.ID
	}
	return nil
}

// Prepare returns the copy of rec a backend should write, given the
// currently stored record (nil when absent). rec itself is not modified;
// backends copy the result back after a successful write.
func Prepare(rec, stored *Record, now time.Time) (*Record, error) {
	if rec == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	next := *rec
	if err := stamp(&next, stored, now); err != nil {
		return nil, err
	}
	return &next, nil
}

// SortSummaries orders summaries by most recent update, then by id.
func SortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// NotFound wraps ErrNotFound with id.
func NotFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "document %q not found", id)
}
