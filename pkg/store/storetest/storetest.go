// Package storetest checks a store.Store implementation against the
// contract shared by all backends.
package storetest

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// Factory opens an empty store that reads time from clock.
type Factory func(t *testing.T, clock store.Clock) store.Store

// Clock returns a clock starting at a fixed instant and advancing one
// second per call.
func Clock() store.Clock {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// Document returns a small document with two shapes and one connection.
func Document() *diagram.Document {
	return &diagram.Document{
		CustomShapes: []diagram.ShapeState{
			{ID: "a", Type: diagram.TypeCustom, Kind: diagram.KindCustom, Width: 100, Height: 100, Labels: []diagram.Label{{Message: "api"}}},
			{ID: "b", Type: diagram.TypeCustom, Kind: diagram.KindCustom, X: 300, Width: 100, Height: 100},
		},
		RegularShapes: []diagram.ShapeState{},
		Connections: []diagram.ConnectionState{{
			ID:           "a-b",
			SegmentStyle: diagram.StyleRegular,
			SrcPort:      diagram.PortState{X: 96, Y: 46, Parent: "a", Direction: geom.Right},
			DestPort:     diagram.PortState{X: -5, Y: 46, Parent: "b", Direction: geom.Left},
		}},
	}
}

// Run runs the contract tests as subtests of t.
func Run(t *testing.T, open Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutAssignsID", func(t *testing.T) {
		s := open(t, Clock())
		rec := &store.Record{Name: "first", Document: Document()}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if rec.ID == "" || rec.Version != 1 {
			t.Errorf("after Put: id %q version %d", rec.ID, rec.Version)
		}
		if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
			t.Errorf("timestamps created=%v updated=%v", rec.CreatedAt, rec.UpdatedAt)
		}
	})

	t.Run("GetReturnsDocument", func(t *testing.T) {
		s := open(t, Clock())
		rec := &store.Record{ID: "doc-1", Document: Document()}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, "doc-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "doc-1" {
			t.Errorf("Name = %q, want id as default", got.Name)
		}
		if got.Document.Len() != 3 || got.Document.CustomShapes[0].Labels[0].Message != "api" {
			t.Errorf("document = %+v", got.Document)
		}
		if p := got.Document.Connections[0].SrcPort; p.Direction != geom.Right || p.Parent != "a" {
			t.Errorf("source port = %+v", p)
		}
		if !got.UpdatedAt.Equal(rec.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, rec.UpdatedAt)
		}
	})

	t.Run("Versions", func(t *testing.T) {
		s := open(t, Clock())
		rec := &store.Record{ID: "v", Document: Document()}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
		created := rec.CreatedAt
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put at current version: %v", err)
		}
		if rec.Version != 2 || !rec.CreatedAt.Equal(created) || !rec.UpdatedAt.After(created) {
			t.Errorf("after update: %+v", rec)
		}

		stale := &store.Record{ID: "v", Version: 1, Document: Document()}
		err := s.Put(ctx, stale)
		if !stderrors.Is(err, store.ErrConflict) || !errors.Is(err, errors.ErrCodeConflict) {
			t.Errorf("stale Put = %v, want conflict", err)
		}
		if stale.Version != 1 {
			t.Errorf("failed Put modified the record: version %d", stale.Version)
		}

		blind := &store.Record{ID: "v", Document: Document()}
		if err := s.Put(ctx, blind); err != nil || blind.Version != 3 {
			t.Errorf("unversioned Put = %v, version %d", err, blind.Version)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		s := open(t, Clock())
		if _, err := s.Get(ctx, "missing"); !stderrors.Is(err, store.ErrNotFound) {
			t.Errorf("Get = %v", err)
		}
		if err := s.Delete(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Delete = %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t, Clock())
		rec := &store.Record{Document: Document()}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, rec.ID); !stderrors.Is(err, store.ErrNotFound) {
			t.Errorf("Get after Delete = %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		s := open(t, Clock())
		list, err := s.List(ctx)
		if err != nil || len(list) != 0 {
			t.Fatalf("empty List = %v, %v", list, err)
		}
		for _, id := range []string{"old", "new"} {
			if err := s.Put(ctx, &store.Record{ID: id, Document: Document()}); err != nil {
				t.Fatal(err)
			}
		}
		list, err = s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
			t.Fatalf("List = %+v", list)
		}
		if list[0].Shapes != 2 || list[0].Connections != 1 || list[0].Version != 1 {
			t.Errorf("summary = %+v", list[0])
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		s := open(t, Clock())
		tests := map[string]*store.Record{
			"no document": {ID: "x"},
			"path id":     {ID: "../x", Document: Document()},
		}
		for name, rec := range tests {
			if err := s.Put(ctx, rec); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("%s: Put = %v", name, err)
			}
		}
	})
}
