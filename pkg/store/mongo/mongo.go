// Package mongo is a store.Store on MongoDB. Records are stored as BSON
// documents keyed by _id in one collection.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// DefaultCollection holds the documents.
const DefaultCollection = "documents"

// Options configure Open.
type Options struct {
	URI        string
	Database   string
	Collection string
	// Attempts bounds the startup ping retries. Zero means 3.
	Attempts int
}

// Store is a MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    store.Clock
}

// Open connects, pings the primary and ensures the updatedAt index.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect to mongo at %s", opts.URI)
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	err = store.RetryWithBackoff(ctx, attempts, func() error {
		return store.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "ping mongo at %s", opts.URI)
	}

	name := opts.Collection
	if name == "" {
		name = DefaultCollection
	}
	s := &Store{client: client, coll: client.Database(opts.Database).Collection(name), now: time.Now}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "updatedAt", Value: -1}}})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "create index")
	}
	return s, nil
}

// SetClock replaces the time source.
func (s *Store) SetClock(c store.Clock) { s.now = c }

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	var rec store.Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "find document %s", id)
	}
	return &rec, nil
}

// Put inserts new records and replaces existing ones only while the stored
// version is the one Prepare checked against.
func (s *Store) Put(ctx context.Context, rec *store.Record) error {
	var stored *store.Record
	if rec != nil && rec.ID != "" {
		old, err := s.Get(ctx, rec.ID)
		switch {
		case err == nil:
			stored = old
		case !errors.Is(err, errors.ErrCodeNotFound):
			return err
		}
	}
	next, err := store.Prepare(rec, stored, s.now())
	if err != nil {
		return err
	}
	// BSON dates keep milliseconds.
	next.CreatedAt = next.CreatedAt.Truncate(time.Millisecond)
	next.UpdatedAt = next.UpdatedAt.Truncate(time.Millisecond)

	if stored == nil {
		_, err = s.coll.InsertOne(ctx, next)
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrap(errors.ErrCodeConflict, store.ErrConflict, "document %s created concurrently", next.ID)
		}
	} else {
		var res *mongo.UpdateResult
		res, err = s.coll.ReplaceOne(ctx, bson.M{"_id": next.ID, "version": stored.Version}, next)
		if err == nil && res.MatchedCount == 0 {
			return errors.Wrap(errors.ErrCodeConflict, store.ErrConflict, "document %s changed during write", next.ID)
		}
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "write document %s", next.ID)
	}
	*rec = *next
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "delete document %s", id)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(id)
	}
	return nil
}

// List projects away the document body except the arrays it counts.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list documents")
	}
	defer cur.Close(ctx)

	out := []store.Summary{}
	for cur.Next(ctx) {
		var rec store.Record
		if err := cur.Decode(&rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
		}
		out = append(out, rec.Summarize())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list documents")
	}
	return out, nil
}

func (s *Store) Close() error { return s.client.Disconnect(context.Background()) }

var _ store.Store = (*Store)(nil)
