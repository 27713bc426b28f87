// Package config loads canvaskit settings from a TOML file.
//
// Config file locations, first match wins:
//  1. $CANVASKIT_CONFIG
//  2. ./canvaskit.toml
//  3. $XDG_CONFIG_HOME/canvaskit/config.toml (~/.config when unset)
//
// Missing files are not an error: [Load] returns [Default]. Keys absent from
// a file keep their default values.
//
// Example file:
//
//	[canvas]
//	width = 2000
//	height = 1500
//	historyCapacity = 50
//	zoomIndex = 2
//	debounce = "500ms"
//
//	[store]
//	backend = "sqlite"
//	sqlitePath = "diagrams.db"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/canvaskit/pkg/command"
	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/route"
)

const (
	// EnvConfigPath names an explicit config file.
	EnvConfigPath = "CANVASKIT_CONFIG"
	// FileName is looked up in the working directory.
	FileName = "canvaskit.toml"
	// DirName is the directory under the XDG config home.
	DirName = "canvaskit"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the accepted [store] backend values.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// Duration is a time.Duration written as a Go duration string ("1s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid duration %q", string(b))
	}
	*d = Duration(v)
	return nil
}

// Config is the whole settings file.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Paste   PasteConfig   `toml:"paste"`
	Routing RoutingConfig `toml:"routing"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Render  RenderConfig  `toml:"render"`
}

// CanvasConfig sets up new canvases.
type CanvasConfig struct {
	Width           float64  `toml:"width"`
	Height          float64  `toml:"height"`
	ReadOnly        bool     `toml:"readOnly"`
	HistoryCapacity int      `toml:"historyCapacity"`
	ZoomIndex       int      `toml:"zoomIndex"`
	Debounce        Duration `toml:"debounce"`
}

// PasteConfig controls copy and paste.
type PasteConfig struct {
	DiffX  float64 `toml:"diffX"`
	DiffY  float64 `toml:"diffY"`
	Prefix string  `toml:"prefix"`
}

// RoutingConfig tunes the manhattan router.
type RoutingConfig struct {
	Stub float64 `toml:"stub"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	SQLitePath    string `toml:"sqlitePath"`
	RedisAddr     string `toml:"redisAddr"`
	RedisPassword string `toml:"redisPassword"`
	RedisDB       int    `toml:"redisDB"`
	MongoURI      string `toml:"mongoURI"`
	MongoDatabase string `toml:"mongoDatabase"`
}

// ServerConfig configures `canvaskit serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"readTimeout"`
	WriteTimeout Duration `toml:"writeTimeout"`
}

// RenderConfig configures exports and the render cache.
type RenderConfig struct {
	Padding  float64  `toml:"padding"`
	CacheTTL Duration `toml:"cacheTTL"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:           diagram.DefaultWidth,
			Height:          diagram.DefaultHeight,
			HistoryCapacity: command.DefaultCapacity,
			ZoomIndex:       diagram.DefaultZoomPreset,
			Debounce:        Duration(diagram.DefaultDebounceDelay),
		},
		Paste: PasteConfig{
			DiffX:  diagram.DefaultPasteDiff,
			DiffY:  diagram.DefaultPasteDiff,
			Prefix: diagram.DefaultPastePrefix,
		},
		Routing: RoutingConfig{Stub: route.DefaultStub},
		Store: StoreConfig{
			Backend:       BackendFile,
			Path:          defaultDataDir(),
			SQLitePath:    filepath.Join(defaultDataDir(), "canvaskit.db"),
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "canvaskit",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
		},
		Render: RenderConfig{
			Padding:  20,
			CacheTTL: Duration(24 * time.Hour),
		},
	}
}

// Load reads the first config file found, or returns the defaults. The
// returned path is empty when no file was found.
func Load() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q", undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.HistoryCapacity < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "historyCapacity must be at least 1, got %d", c.Canvas.HistoryCapacity)
	}
	if _, err := diagram.ZoomFactor(c.Canvas.ZoomIndex); err != nil {
		return err
	}
	if c.Canvas.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "debounce must not be negative")
	}
	if c.Routing.Stub < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "routing stub must not be negative, got %g", c.Routing.Stub)
	}
	if !slices.Contains(Backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// CanvasOptions converts the canvas, paste and routing sections into canvas
// options. Listeners, factories and the logger are left for the caller.
func (c *Config) CanvasOptions() diagram.Options {
	opts := diagram.DefaultOptions()
	opts.Width = c.Canvas.Width
	opts.Height = c.Canvas.Height
	opts.ReadOnly = c.Canvas.ReadOnly
	opts.HistoryCapacity = c.Canvas.HistoryCapacity
	opts.ZoomPreset = c.Canvas.ZoomIndex
	opts.DebounceDelay = time.Duration(c.Canvas.Debounce)
	opts.PasteDiffX = c.Paste.DiffX
	opts.PasteDiffY = c.Paste.DiffY
	opts.PastePrefix = c.Paste.Prefix
	opts.Router = route.NewManhattan(c.Routing.Stub)
	return opts
}
