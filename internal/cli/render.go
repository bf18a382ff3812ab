package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapwright/pkg/cache"
	"github.com/matzehuels/mapwright/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	edges      string // edges CSV accompanying a nodes CSV input
	format     string // svg or png
	output     string // output file; default derives from the input name
	noCache    bool   // skip the artifact cache
	undirected bool   // draw edges without direction
	plain      bool   // ignore node and edge colors
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(nodelink.FormatSVG)}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a canvas with Graphviz and write SVG or PNG",
		Long: `Render converts a canvas to DOT and lays it out with Graphviz, ignoring
the stored node positions. Results are cached by DOT content under the
user cache directory; see "mapwright cache".`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCanvas,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.<format>)")
	cmd.Flags().StringVar(&opts.edges, "edges", "", "edges CSV for a CSV input")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.undirected, "undirected", false, "draw an undirected graph")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "ignore node and edge colors")
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(renderFormats))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	f, err := nodelink.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	e, err := c.loadInput(ctx, input, opts.edges)
	if err != nil {
		return err
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	dot := nodelink.ToDOT(e.Snapshot(), nodelink.Options{Directed: !opts.undirected, Styled: !opts.plain})
	c.Logger.Debugf("Generated DOT: %d bytes", len(dot))

	r := nodelink.NewRenderer(store, cache.NewDefaultKeyer(), c.Logger)
	data, err := r.Render(ctx, dot, f)
	if err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}

	path := opts.output
	if path == "" {
		path = basePath("", input) + "." + string(f)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}

	prog.done("Rendered %s to %s", input, path)
	printStats(len(e.Nodes()), len(e.Edges()), string(f))
	printFile(path)
	return nil
}
