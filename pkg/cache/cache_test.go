package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/canvaskit/pkg/observability"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

type backend struct {
	cache Cache
	clock *fakeClock
}

// backends returns each storing cache with a controllable clock.
func backends(t *testing.T) map[string]backend {
	t.Helper()
	mc := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMemoryCache()
	m.now = mc.now

	fc := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	f, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f.now = fc.now

	return map[string]backend{
		"memory": {m, mc},
		"file":   {f, fc},
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := b.cache
			if _, hit, err := c.Get(ctx, "doc:a"); hit || err != nil {
				t.Fatalf("empty cache hit=%v err=%v", hit, err)
			}
			if err := c.Set(ctx, "doc:a", []byte("<svg/>"), 0); err != nil {
				t.Fatal(err)
			}
			if err := c.Set(ctx, "doc:b", []byte("png"), time.Minute); err != nil {
				t.Fatal(err)
			}

			data, hit, err := c.Get(ctx, "doc:a")
			if err != nil || !hit || string(data) != "<svg/>" {
				t.Errorf("Get(doc:a) = %q, %v, %v", data, hit, err)
			}

			b.clock.t = b.clock.t.Add(2 * time.Minute)
			if _, hit, _ := c.Get(ctx, "doc:b"); hit {
				t.Error("expired entry was returned")
			}
			if _, hit, _ := c.Get(ctx, "doc:a"); !hit {
				t.Error("entry without ttl expired")
			}

			if err := c.Delete(ctx, "doc:a"); err != nil {
				t.Fatal(err)
			}
			if err := c.Delete(ctx, "doc:a"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if _, hit, _ := c.Get(ctx, "doc:a"); hit {
				t.Error("deleted entry was returned")
			}
		})
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	_ = c.Close()
	if c.Len() != 0 {
		t.Error("Close kept entries")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	left, _ := os.ReadDir(dir)
	if len(left) != 0 {
		t.Errorf("%d entries left in cache dir", len(left))
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %q", c.Dir())
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.DocumentKey("abc"); got != "doc:abc" {
		t.Errorf("DocumentKey = %q", got)
	}
	svg := k.RenderKey("h", RenderKeyOpts{Format: "svg"})
	png := k.RenderKey("h", RenderKeyOpts{Format: "png"})
	zoomed := k.RenderKey("h", RenderKeyOpts{Format: "svg", Zoom: 1.5})
	if svg == png || svg == zoomed {
		t.Error("different render options share a key")
	}
	if svg != k.RenderKey("h", RenderKeyOpts{Format: "svg"}) {
		t.Error("RenderKey is not deterministic")
	}
	if !strings.HasPrefix(svg, "render:") {
		t.Errorf("RenderKey = %q", svg)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "team:")
	if got := scoped.DocumentKey("x"); got != "team:doc:x" {
		t.Errorf("DocumentKey = %q", got)
	}
	key := scoped.RenderKey("h", RenderKeyOpts{Format: "svg"})
	if key != "team:"+NewDefaultKeyer().RenderKey("h", RenderKeyOpts{Format: "svg"}) {
		t.Errorf("RenderKey = %q", key)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"doc:abc", "doc"},
		{"render:ff00", "render"},
		{"team:render:ff00", "render"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets map[string]int
}

func (h *countingHooks) OnCacheHit(_ context.Context, k string) { h.hits[k]++ }
func (h *countingHooks) OnCacheMiss(_ context.Context, k string) { h.misses[k]++ }
func (h *countingHooks) OnCacheSet(_ context.Context, k string, _ int) { h.sets[k]++ }

func TestInstrument(t *testing.T) {
	h := &countingHooks{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	c := Instrument(NewMemoryCache())
	_, _, _ = c.Get(ctx, "render:1")
	_ = c.Set(ctx, "render:1", []byte("x"), 0)
	_, _, _ = c.Get(ctx, "render:1")
	_, _, _ = c.Get(ctx, "doc:2")

	if h.misses["render"] != 1 || h.hits["render"] != 1 || h.sets["render"] != 1 || h.misses["doc"] != 1 {
		t.Errorf("hits=%v misses=%v sets=%v", h.hits, h.misses, h.sets)
	}
	if Instrument(nil) != nil {
		t.Error("Instrument(nil) != nil")
	}
}
