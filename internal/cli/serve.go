package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/internal/server"
	"github.com/matzehuels/canvaskit/pkg/cache"
	"github.com/matzehuels/canvaskit/pkg/render"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document and render API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var rc cache.Cache = cache.Instrument(cache.NewMemoryCache())
			if noCache {
				rc = cache.NewNullCache()
			}
			defer rc.Close()

			srv := server.New(server.Options{
				Store:    s,
				Cache:    rc,
				Keyer:    cache.NewScopedKeyer(nil, cfg.Store.Backend+":"),
				CacheTTL: time.Duration(cfg.Render.CacheTTL),
				Canvas:   c.canvasOptions(),
				Render:   []render.Option{render.WithPadding(cfg.Render.Padding)},
				Logger:   c.Logger.WithPrefix("http"),
			})
			printInfo(c.Out, "Serving %s store on %s", cfg.Store.Backend, addr)
			return srv.ListenAndServe(cmd.Context(), addr,
				time.Duration(cfg.Server.ReadTimeout), time.Duration(cfg.Server.WriteTimeout))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}
