// Package redis is a store.Store on Redis.
//
// Each record is a JSON string under "<prefix>doc:<id>"; the set
// "<prefix>docs" indexes the ids for List.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// DefaultPrefix namespaces the keys.
const DefaultPrefix = "canvaskit:"

// Options configure Open.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// Attempts bounds the startup ping retries. Zero means 3.
	Attempts int
}

// Store is a Redis-backed document store.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    store.Clock
}

// Open connects and pings the server, retrying while it is unreachable.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	err := store.RetryWithBackoff(ctx, attempts, func() error {
		return store.Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect to redis at %s", opts.Addr)
	}
	return New(client, opts.Prefix), nil
}

// New wraps an existing client. An empty prefix means DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

// SetClock replaces the time source.
func (s *Store) SetClock(c store.Clock) { s.now = c }

func (s *Store) key(id string) string { return s.prefix + "doc:" + id }

func (s *Store) index() string { return s.prefix + "docs" }

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	return s.get(ctx, s.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) get(ctx context.Context, c getter, id string) (*store.Record, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "get document %s", id)
	}
	return store.Unmarshal(data)
}

// Put writes inside WATCH on the record key, so a concurrent writer makes
// one of the two transactions fail instead of silently losing a version.
func (s *Store) Put(ctx context.Context, rec *store.Record) error {
	if rec != nil && rec.ID == "" {
		rec2 := *rec
		rec2.ID = store.NewID()
		if err := s.put(ctx, &rec2); err != nil {
			return err
		}
		*rec = rec2
		return nil
	}
	return s.put(ctx, rec)
}

func (s *Store) put(ctx context.Context, rec *store.Record) error {
	if rec == nil {
		_, err := store.Prepare(nil, nil, s.now())
		return err
	}
	key := s.key(rec.ID)
	var next *store.Record
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		var stored *store.Record
		old, err := s.get(ctx, tx, rec.ID)
		switch {
		case err == nil:
			stored = old
		case !errors.Is(err, errors.ErrCodeNotFound):
			return err
		}
		if next, err = store.Prepare(rec, stored, s.now()); err != nil {
			return err
		}
		data, err := store.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, data, 0)
			p.SAdd(ctx, s.index(), next.ID)
			return nil
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		return errors.Wrap(errors.ErrCodeConflict, store.ErrConflict, "document %s changed during write", rec.ID)
	}
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return err
		}
		return errors.Wrap(errors.ErrCodeUnavailable, err, "put document %s", rec.ID)
	}
	*rec = *next
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var n *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		n = p.Del(ctx, s.key(id))
		p.SRem(ctx, s.index(), id)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "delete document %s", id)
	}
	if n.Val() == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	ids, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list documents")
	}
	out := []store.Summary{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "load documents")
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := store.Unmarshal([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summarize())
	}
	store.SortSummaries(out)
	return out, nil
}

func (s *Store) Close() error { return s.client.Close() }

var _ store.Store = (*Store)(nil)
