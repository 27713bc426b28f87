package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvaskit/pkg/observability"
)

// logHooks reports engine, store and cache events to a logger at debug
// level.
type logHooks struct {
	logger *log.Logger
}

// RegisterLogHooks installs hooks that log every observability event.
func RegisterLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("obs")}
	observability.SetRouteHooks(h)
	observability.SetHistoryHooks(h)
	observability.SetStoreHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnRoute(conn, alg string, points int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("route failed", "connection", conn, "algorithm", alg, "err", err)
		return
	}
	h.logger.Debug("routed", "connection", conn, "algorithm", alg, "points", points, "duration", d)
}

func (h logHooks) OnIntersections(conn string, count int) {
	h.logger.Debug("intersections", "connection", conn, "count", count)
}

func (h logHooks) OnCommand(op string, depth int) {
	h.logger.Debug("history", "op", op, "depth", depth)
}

func (h logHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "id", id, "duration", d, "err", err)
}

func (h logHooks) OnSave(_ context.Context, backend, id string, size int, d time.Duration, err error) {
	h.logger.Debug("store save", "backend", backend, "id", id, "bytes", size, "duration", d, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
