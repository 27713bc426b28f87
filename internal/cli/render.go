package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/cache"
	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
	"github.com/matzehuels/canvaskit/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string
	formats  []render.Format
	padding  float64
	noJumps  bool
	scale    float64
	zoom     int
	graphviz bool
	noCache  bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{padding: -1, scale: 1}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Export a diagram to SVG, PNG or Graphviz DOT",
		Example: `  canvaskit render flow.json
  canvaskit render flow.yaml -f svg,png -o out/flow
  canvaskit render flow.json -f svg --graphviz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.padding, "padding", opts.padding, "margin around the drawing (default from config)")
	cmd.Flags().BoolVar(&opts.noJumps, "no-jumps", false, "draw crossings without jump arcs")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG pixels per canvas unit")
	cmd.Flags().IntVar(&opts.zoom, "zoom", 0, "zoom preset index (default from config)")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "lay out with Graphviz instead of the canvas positions (svg only)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// parseFormats parses the --format flag. Empty means svg.
func parseFormats(s string) ([]render.Format, error) {
	if s == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, name := range strings.Split(s, ",") {
		f, err := render.ParseFormat(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// basePath derives the output path without extension. With no output flag
// it is the input path minus its extension; a known format extension on the
// output flag is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(ext); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath is the file written for format f.
func outputPath(opts *renderOpts, input string, f render.Format) string {
	if opts.output != "" && len(opts.formats) == 1 {
		return opts.output
	}
	return basePath(opts.output, input) + "." + string(f)
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	if opts.graphviz {
		for _, f := range opts.formats {
			if f != render.FormatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "--graphviz only produces svg, not %s", f)
			}
		}
	}
	doc, err := cio.ImportFile(input)
	if err != nil {
		return err
	}
	if opts.zoom != 0 {
		c.settings().Canvas.ZoomIndex = opts.zoom
	}
	if opts.padding < 0 {
		opts.padding = c.settings().Render.Padding
	}
	canvas, err := c.canvasFrom(doc)
	if err != nil {
		return err
	}
	raw, err := cio.Marshal(doc, cio.FormatJSON)
	if err != nil {
		return err
	}
	rc, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	keyer := cache.NewDefaultKeyer()
	docHash := cache.Hash(raw)
	for _, f := range opts.formats {
		prog := newProgress(c.Logger)
		key := keyer.RenderKey(docHash, cache.RenderKeyOpts{
			Format:  renderKeyFormat(f, opts.graphviz),
			Zoom:    canvas.Zoom(),
			Padding: opts.padding,
			Jumps:   !opts.noJumps,
		})
		data, cached, err := rc.Get(ctx, key)
		if err != nil {
			c.Logger.Warn("cache read failed", "err", err)
		}
		if !cached {
			if data, err = renderOne(ctx, canvas, f, opts); err != nil {
				return err
			}
			if err := rc.Set(ctx, key, data, time.Duration(c.settings().Render.CacheTTL)); err != nil {
				c.Logger.Warn("cache write failed", "err", err)
			}
		}
		path := outputPath(opts, input, f)
		if err := writeOutput(path, data); err != nil {
			return err
		}
		prog.done("Rendered " + path)
		printFile(c.Out, path)
		printStats(c.Out, len(doc.CustomShapes)+len(doc.RegularShapes), len(doc.Connections), cached)
	}
	return nil
}

func renderKeyFormat(f render.Format, graphviz bool) string {
	if graphviz {
		return "graphviz-" + string(f)
	}
	return string(f)
}

func renderOne(ctx context.Context, canvas *diagram.Canvas, f render.Format, opts *renderOpts) ([]byte, error) {
	if opts.graphviz {
		return render.DOTToSVG(ctx, render.ToDOT(canvas))
	}
	ropts := []render.Option{render.WithPadding(opts.padding), render.WithScale(opts.scale)}
	if opts.noJumps {
		ropts = append(ropts, render.WithoutJumps())
	}
	return render.Render(canvas, f, ropts...)
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
