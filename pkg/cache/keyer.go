package cache

import "strings"

// Key prefixes. The prefix of a key is also its key type in the cache hooks.
const (
	PrefixDocument = "doc"
	PrefixRender   = "render"
)

// RenderKeyOpts are the render settings that change the output bytes.
type RenderKeyOpts struct {
	Format  string  `json:"format"`
	Zoom    float64 `json:"zoom,omitempty"`
	Padding float64 `json:"padding,omitempty"`
	Jumps   bool    `json:"jumps,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey is the key of a stored document by id.
	DocumentKey(id string) string
	// RenderKey is the key of a rendered artifact. docHash is the Hash of
	// the serialized document.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DocumentKey(id string) string { return PrefixDocument + ":" + id }

func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey(PrefixRender, docHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, separating the
// namespaces of several stores sharing one cache.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DocumentKey(id string) string {
	return k.prefix + k.inner.DocumentKey(id)
}

func (k *ScopedKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(docHash, opts)
}

// KeyType returns the type segment of a key: the last segment before the
// final colon-separated component, e.g. "render" for "team:render:ab12".
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	key = key[:i]
	if j := strings.LastIndexByte(key, ':'); j >= 0 {
		return key[j+1:]
	}
	return key
}
