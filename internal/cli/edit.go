package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	cio "github.com/matzehuels/canvaskit/pkg/io"
)

func (c *CLI) newCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty diagram file (.json, .yaml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if fileExists(path) && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := cio.ExportFile(&diagram.Document{}, path); err != nil {
				return err
			}
			printSuccess(c.Out, "Created %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

type addOptions struct {
	typeName      string
	parent        string
	x, y          float64
	width, height float64
	label         string
}

func (c *CLI) addCommand() *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a shape and print its id",
		Example: `  canvaskit add flow.json --label api --x 40 --y 40
  canvaskit add flow.json --type rectangle --width 400 --height 300`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			err := c.editFile(args[0], func(canvas *diagram.Canvas) error {
				s, err := addShape(canvas, opts)
				if err != nil {
					return err
				}
				id = s.ID
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.typeName, "type", "t", diagram.TypeCustom, "shape type (custom, rectangle)")
	cmd.Flags().StringVarP(&opts.parent, "parent", "p", "", "id of the containing shape")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "x position relative to the parent")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "y position relative to the parent")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "width (default: the type's default)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "height (default: the type's default)")
	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "label text")
	return cmd
}

func addShape(canvas *diagram.Canvas, opts addOptions) (*diagram.Shape, error) {
	s, err := canvas.CreateShape(opts.typeName, opts.parent, opts.x, opts.y)
	if err != nil {
		return nil, err
	}
	if opts.width > 0 || opts.height > 0 {
		w, h := s.Size()
		if opts.width > 0 {
			w = opts.width
		}
		if opts.height > 0 {
			h = opts.height
		}
		if err := canvas.ResizeShape(s.ID, w, h); err != nil {
			return nil, err
		}
	}
	if opts.label != "" {
		if err := s.SetLabel(0, opts.label); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type connectOptions struct {
	from, to string
	style    string
	color    string
}

func (c *CLI) connectCommand() *cobra.Command {
	var opts connectOptions
	cmd := &cobra.Command{
		Use:   "connect <file> <source-id> <target-id>",
		Short: "Connect two shapes and print the connection id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			err := c.editFile(args[0], func(canvas *diagram.Canvas) error {
				conn, err := connectShapes(canvas, args[1], args[2], opts)
				if err != nil {
					return err
				}
				id = conn.ID
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "right", "side of the source shape (top, right, bottom, left)")
	cmd.Flags().StringVar(&opts.to, "to", "left", "side of the target shape")
	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "segment style (regular, dotted, segmented)")
	cmd.Flags().StringVar(&opts.color, "color", "", "stroke color")
	return cmd
}

func connectShapes(canvas *diagram.Canvas, src, dst string, opts connectOptions) (*diagram.Connection, error) {
	from, err := geom.ParseDirection(opts.from)
	if err != nil {
		return nil, err
	}
	to, err := geom.ParseDirection(opts.to)
	if err != nil {
		return nil, err
	}
	a, b := canvas.Shape(src), canvas.Shape(dst)
	if a == nil {
		return nil, errors.NotFound("shape", src)
	}
	if b == nil {
		return nil, errors.NotFound("shape", dst)
	}
	req := diagram.ConnectRequest{
		Source:      src,
		Target:      dst,
		SourcePoint: sidePoint(a, from),
		TargetPoint: sidePoint(b, to),
		Color:       opts.color,
	}
	if opts.style != "" {
		style, err := diagram.ParseSegmentStyle(opts.style)
		if err != nil {
			return nil, err
		}
		req.Style = style
	}
	return canvas.Connect(req)
}

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <file> <id> <x> <y>",
		Short: "Move a shape relative to its parent",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats([]string{"x", "y"}, args[2:])
			if err != nil {
				return err
			}
			return c.editFile(args[0], func(canvas *diagram.Canvas) error {
				return canvas.MoveShape(args[1], v[0], v[1])
			})
		},
	}
}

func (c *CLI) resizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <file> <id> <width> <height>",
		Short: "Resize a shape",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats([]string{"width", "height"}, args[2:])
			if err != nil {
				return err
			}
			return c.editFile(args[0], func(canvas *diagram.Canvas) error {
				return canvas.ResizeShape(args[1], v[0], v[1])
			})
		},
	}
}

func (c *CLI) labelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "label <file> <id> <text>",
		Short: "Set the label of a shape",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editFile(args[0], func(canvas *diagram.Canvas) error {
				s := canvas.Shape(args[1])
				if s == nil {
					return errors.NotFound("shape", args[1])
				}
				return s.SetLabel(0, args[2])
			})
		},
	}
}

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <file> <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete shapes with their children and connections",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.editFile(args[0], func(canvas *diagram.Canvas) error {
				for _, id := range args[1:] {
					if err := canvas.DeleteShape(id); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(c.Out, "Deleted %d shape(s)", len(args)-1)
			return nil
		},
	}
}
