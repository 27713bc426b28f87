package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/canvaskit/pkg/cache"
	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
	"github.com/matzehuels/canvaskit/pkg/render"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// documentRequest is the body of POST and PUT on documents.
type documentRequest struct {
	Name     string            `json:"name"`
	Version  int               `json:"version"`
	Document *diagram.Document `json:"document"`
}

type listResponse struct {
	Documents []store.Summary `json:"documents"`
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, listResponse{Documents: list})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec := &store.Record{Name: req.Name, Document: req.Document}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("document created", "id", rec.ID, "name", rec.Name)
	w.Header().Set("Location", "/api/documents/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	f, err := cio.ParseFormat(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := cio.Marshal(rec.Document, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec := &store.Record{ID: id, Name: req.Name, Version: req.Version, Document: req.Document}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("document saved", "id", rec.ID, "version", rec.Version)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("document deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderStored(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveRender(w, r, rec.Document)
}

func (s *Server) renderPosted(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	doc, err := cio.Read(r.Body, cio.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveRender(w, r, doc)
}

func (s *Server) serveRender(w http.ResponseWriter, r *http.Request, doc *diagram.Document) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, keyOpts, err := renderOptions(r, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.renderCached(r.Context(), doc, f, keyOpts, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderCached renders doc, consulting the cache by the hash of its JSON
// form and the output settings.
func (s *Server) renderCached(ctx context.Context, doc *diagram.Document, f render.Format, keyOpts cache.RenderKeyOpts, opts []render.Option) ([]byte, error) {
	canvas, err := s.load(doc)
	if err != nil {
		return nil, err
	}
	raw, err := cio.Marshal(doc, cio.FormatJSON)
	if err != nil {
		return nil, err
	}
	keyOpts.Zoom = canvas.Zoom()
	key := s.keyer.RenderKey(cache.Hash(raw), keyOpts)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		return data, nil
	}

	data, err := render.Render(canvas, f, append(append([]render.Option{}, s.render...), opts...)...)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, nil
}

// load parses doc onto a fresh canvas. Canvases are not shared between
// requests.
func (s *Server) load(doc *diagram.Document) (*diagram.Canvas, error) {
	c, err := diagram.New(s.canvas)
	if err != nil {
		return nil, err
	}
	opts := diagram.DefaultParseOptions()
	opts.CreateCommand = false
	if _, err := c.ParseDocument(doc, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// renderOptions reads ?padding= and ?jumps= from the query.
func renderOptions(r *http.Request, f render.Format) ([]render.Option, cache.RenderKeyOpts, error) {
	q := r.URL.Query()
	key := cache.RenderKeyOpts{Format: string(f), Padding: render.DefaultPadding, Jumps: true}
	var opts []render.Option
	if v := q.Get("padding"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return nil, key, errors.New(errors.ErrCodeInvalidInput, "invalid padding %q", v)
		}
		key.Padding = p
		opts = append(opts, render.WithPadding(p))
	}
	if v := q.Get("jumps"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, key, errors.New(errors.ErrCodeInvalidInput, "invalid jumps %q", v)
		}
		key.Jumps = b
		if !b {
			opts = append(opts, render.WithoutJumps())
		}
	}
	return opts, key, nil
}

// decodeDocument reads a documentRequest and checks that its document
// loads onto a canvas.
func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*documentRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req documentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if req.Document == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request has no document")
	}
	if _, err := s.load(req.Document); err != nil {
		return nil, err
	}
	return &req, nil
}
