package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/canvaskit/pkg/errors"
)

// FileStore keeps one JSON file per record under a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
	now Clock
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// SetClock replaces the time source.
func (s *FileStore) SetClock(c Clock) { s.now = c }

func (s *FileStore) path(id string) (string, error) {
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	return s.read(id)
}

func (s *FileStore) read(id string) (*Record, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "read %s", path)
	}
	return Unmarshal(data)
}

func (s *FileStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored *Record
	if rec != nil && rec.ID != "" {
		old, err := s.read(rec.ID)
		switch {
		case err == nil:
			stored = old
		case !errors.Is(err, errors.ErrCodeNotFound):
			return err
		}
	}
	next, err := Prepare(rec, stored, s.now())
	if err != nil {
		return err
	}
	data, err := Marshal(next)
	if err != nil {
		return err
	}
	path, err := s.path(next.ID)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "write %s", path)
	}
	*rec = *next
	return nil
}

// writeAtomic writes through a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return NotFound(id)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "remove %s", path)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list %s", s.dir)
	}
	out := []Summary{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summarize())
	}
	SortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
