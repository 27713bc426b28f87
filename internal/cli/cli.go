// Package cli implements the canvaskit command-line interface.
//
// Diagrams are edited as files: every editing command loads a document
// (JSON or YAML, chosen by extension) onto a canvas, applies one operation
// and writes the document back. Other commands export diagrams, move them
// in and out of the configured document store, and serve the HTTP API.
//
// # Commands
//
//   - new, add, connect, move, resize, rm, label: edit a diagram file
//   - inspect: print shapes, connections and crossings
//   - render: export SVG, PNG or Graphviz DOT
//   - copy, paste: exchange shapes through the system clipboard
//   - store: list, fetch, save and delete stored documents
//   - open: pick a stored document interactively
//   - serve: run the HTTP API
//   - config, cache: manage settings and the render cache
//
// All commands accept --verbose (-v) for debug logging and --config to name
// a settings file.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/buildinfo"
	"github.com/matzehuels/canvaskit/pkg/cache"
	"github.com/matzehuels/canvaskit/pkg/config"
	"github.com/matzehuels/canvaskit/pkg/diagram"
)

// appName is used for directories and display.
const appName = "canvaskit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Defaults to stdout.
	Out io.Writer
	// Err receives progress indicators. Defaults to stderr.
	Err io.Writer

	configPath string
	cfg        *config.Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Out: os.Stdout, Err: os.Stderr}
}

func (c *CLI) errOut() io.Writer {
	if c.Err == nil {
		return io.Discard
	}
	return c.Err
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "canvaskit edits and exports box-and-arrow diagrams",
		Long:         `canvaskit is a diagram engine with manhattan-routed connections. It edits diagram files, renders them to SVG, PNG or Graphviz, and serves them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search "+config.EnvConfigPath+", ./"+config.FileName+", the user config dir)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.labelCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.copyCommand())
	root.AddCommand(c.pasteCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the first config file found.
func (c *CLI) loadConfig() error {
	if c.configPath != "" {
		cfg, err := config.LoadFile(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}
	cfg, path, err := config.Load()
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded settings, or the defaults before loading.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// canvasOptions builds canvas options from the settings.
func (c *CLI) canvasOptions() diagram.Options {
	opts := c.settings().CanvasOptions()
	opts.Logger = c.Logger.WithPrefix("canvas")
	return opts
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/canvaskit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
