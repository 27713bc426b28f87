package store

import (
	"context"
	"time"

	"github.com/matzehuels/canvaskit/pkg/observability"
)

type instrumented struct {
	Store
	backend string
}

// Instrument reports every Get and Put of s to observability.Store(),
// labelled with backend.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	rec, err := s.Store.Get(ctx, id)
	observability.Store().OnLoad(ctx, s.backend, id, time.Since(start), err)
	return rec, err
}

func (s *instrumented) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := s.Store.Put(ctx, rec)
	id, size := "", 0
	if rec != nil {
		id = rec.ID
		if rec.Document != nil {
			size = rec.Document.Len()
		}
	}
	observability.Store().OnSave(ctx, s.backend, id, size, time.Since(start), err)
	return err
}
