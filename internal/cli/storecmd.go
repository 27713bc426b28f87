package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/config"
	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
	"github.com/matzehuels/canvaskit/pkg/store"
	"github.com/matzehuels/canvaskit/pkg/store/mongo"
	"github.com/matzehuels/canvaskit/pkg/store/redis"
	"github.com/matzehuels/canvaskit/pkg/store/sqlite"
)

// openStore opens the configured document store, instrumented for the
// observability hooks.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.settings().Store
	var (
		s   store.Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = store.NewMemoryStore()
	case config.BackendFile:
		s, err = store.NewFileStore(cfg.Path)
	case config.BackendSQLite:
		if err = os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err == nil {
			s, err = sqlite.Open(cfg.SQLitePath)
		}
	case config.BackendRedis:
		sp := newSpinnerWithContext(ctx, c.errOut(), "Connecting to redis at "+cfg.RedisAddr)
		sp.Start()
		s, err = redis.Open(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		sp.Stop()
	case config.BackendMongo:
		sp := newSpinnerWithContext(ctx, c.errOut(), "Connecting to mongo")
		sp.Start()
		s, err = mongo.Open(ctx, mongo.Options{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		sp.Stop()
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("store opened", "backend", cfg.Backend)
	return store.Instrument(s, cfg.Backend), nil
}

// withStore runs fn against the configured store and closes it.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage documents in the configured store",
	}
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeRemoveCommand())
	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored documents, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				list, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(c.Out)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				if len(list) == 0 {
					printInfo(c.Out, "No documents stored")
					return nil
				}
				rows := make([][]string, 0, len(list))
				now := time.Now()
				for _, d := range list {
					rows = append(rows, []string{
						d.ID, d.Name, fmt.Sprint(d.Version),
						fmt.Sprint(d.Shapes), fmt.Sprint(d.Connections),
						formatRelativeTime(d.UpdatedAt, now),
					})
				}
				fmt.Fprintln(c.Out, newTable("ID", "Name", "Version", "Shapes", "Connections", "Updated").Rows(rows...).Render())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a stored document into a file or stdout",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeDocumentIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				rec, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output != "" {
					if err := cio.ExportFile(rec.Document, output); err != nil {
						return err
					}
					printSuccess(c.Out, "Fetched %s (version %d)", rec.Name, rec.Version)
					printFile(c.Out, output)
					return nil
				}
				f, err := cio.ParseFormat(format)
				if err != nil {
					return err
				}
				return cio.Write(c.Out, rec.Document, f)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file (.json, .yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", string(cio.FormatJSON), "stdout format (json, yaml)")
	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	var (
		id      string
		name    string
		version int
	)
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Save a diagram file to the store and print its id",
		Long: `Save a diagram file to the store. Without --id a new document is created.
With --version the save fails unless the stored document is at that version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := c.loadCanvas(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = basePath("", filepath.Base(args[0]))
			}
			rec := &store.Record{ID: id, Name: name, Version: version, Document: canvas.Stringify()}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				if err := s.Put(cmd.Context(), rec); err != nil {
					return err
				}
				fmt.Fprintln(c.Out, rec.ID)
				c.Logger.Info("stored", "id", rec.ID, "name", rec.Name, "version", rec.Version)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "document id (default: a new id)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "document name (default: the file name)")
	cmd.Flags().IntVar(&version, "version", 0, "expected stored version")
	return cmd
}

func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete stored documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return err
					}
					printSuccess(c.Out, "Deleted %s", id)
				}
				return nil
			})
		},
		ValidArgsFunction: c.completeDocumentIDs,
	}
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
