package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapwright/pkg/engine"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	mwio "github.com/matzehuels/mapwright/pkg/io"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	edges      string  // edges CSV accompanying a nodes CSV input
	format     string  // output format name or alias
	output     string  // output file; empty writes single-file formats to stdout
	width      float64 // SVG width
	height     float64 // SVG height
	undirected bool    // DOT: emit an undirected graph
}

func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{
		format: string(mwio.FormatMarkdown),
		width:  mwio.DefaultSVGWidth,
		height: mwio.DefaultSVGHeight,
	}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a JSON or CSV canvas to another format",
		Long: `Convert imports a canvas from a JSON envelope (.json) or a nodes table
(.csv, with an optional --edges table) and exports it as json, markdown,
svg, csv, plantuml or dot.

Malformed CSV rows are dropped and listed; edges that point at missing
nodes fail the conversion.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCanvas,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, markdown, svg, csv, plantuml, dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout; csv writes <base>.nodes.csv and <base>.edges.csv)")
	cmd.Flags().StringVar(&opts.edges, "edges", "", "edges CSV for a CSV input")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "SVG width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "SVG height")
	cmd.Flags().BoolVar(&opts.undirected, "undirected", false, "DOT: write an undirected graph")
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(formatNames()))

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, input string, opts convertOpts, stdout io.Writer) error {
	prog := newProgress(c.Logger)

	f, err := mwio.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	e, err := c.loadInput(ctx, input, opts.edges)
	if err != nil {
		return err
	}

	arts, err := mwio.Export(ctx, e.Snapshot(), f, mwio.Options{
		Width:    opts.width,
		Height:   opts.height,
		Directed: !opts.undirected,
	})
	if err != nil {
		return err
	}

	if opts.output == "" && len(arts) == 1 {
		_, err := stdout.Write(arts[0].Data)
		return err
	}

	paths := outputPaths(opts.output, input, arts)
	for i, art := range arts {
		if err := writeFile(paths[i], art.Data); err != nil {
			return err
		}
	}
	prog.done("Converted %s to %s", input, f)
	printStats(len(e.Nodes()), len(e.Edges()), string(f))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// loadInput imports a canvas file into a fresh engine. The input format
// follows the file extension. Dropped CSV rows are reported as warnings.
func (c *CLI) loadInput(ctx context.Context, input, edgesPath string) (*engine.Engine, error) {
	var f mwio.Format
	switch ext := strings.ToLower(filepath.Ext(input)); ext {
	case ".json":
		f = mwio.FormatJSON
	case ".csv":
		f = mwio.FormatCSV
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "cannot import %q: want a .json or .csv file", input)
	}
	if edgesPath != "" && f != mwio.FormatCSV {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "--edges only applies to CSV input")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	var edges []byte
	if edgesPath != "" {
		if edges, err = os.ReadFile(edgesPath); err != nil {
			return nil, fmt.Errorf("read %s: %w", edgesPath, err)
		}
	}

	res, err := mwio.Import(ctx, f, data, edges)
	if err != nil {
		return nil, err
	}
	if res.Dropped > 0 {
		printWarning("Dropped %d malformed rows", res.Dropped)
		for _, re := range res.Errors {
			printDetail("line %d (%d columns): %s", re.Line, re.Columns, re.Reason)
		}
	}

	e := c.newEngine()
	if err := e.Load(res.Snapshot); err != nil {
		return nil, err
	}
	c.Logger.Debugf("Loaded %s: %d nodes, %d edges", input, len(e.Nodes()), len(e.Edges()))
	return e, nil
}

// outputPaths names the files for arts. A single artifact goes to output
// as given; several share output's base name (or the input's, when output
// is empty) followed by each artifact's suffix.
func outputPaths(output, input string, arts []mwio.Artifact) []string {
	if output != "" && len(arts) == 1 {
		return []string{output}
	}
	base := basePath(output, input)
	paths := make([]string, len(arts))
	for i, a := range arts {
		paths[i] = base + a.Suffix
	}
	return paths
}

// basePath strips the extension from output, or from input when output is
// empty.
func basePath(output, input string) string {
	if output == "" {
		output = input
	}
	return strings.TrimSuffix(output, filepath.Ext(output))
}
