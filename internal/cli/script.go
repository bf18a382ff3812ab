package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapwright/pkg/engine"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
	mwio "github.com/matzehuels/mapwright/pkg/io"
)

const scriptHelp = `A script is one command per line. Blank lines and lines starting with #
are ignored. Arguments are separated by spaces and quoted the way a shell
quotes them; a word starting with # begins a comment, so quote labels like
"#1". Colors in key=value form (fill=#fff) need no quotes. Nodes and edges are named by an alias chosen in the
script; ids of a --load'ed canvas work as aliases too.

  title <text>                      set the canvas title
  description <text>                set the canvas description
  type mindmap|tree|graph|timeline  set the diagram type
  theme <name>                      switch the theme for new entities
  grid off | grid <size> [snap]     configure the grid
  node <alias> <label> [x y] [key=value ...]
                                    keys: type, desc, font, width, height,
                                    fill, border; others become metadata
  edge <alias> <from> <to> [label] [key=value ...]
                                    keys: kind, color, width, arrow=none
  update <alias> key=value ...      node keys as above plus label, x, y;
                                    edge keys as above plus label, from, to
  move <alias> <x> <y>              move a node
  delete <alias>                    delete a node (with its edges) or edge
  select <alias> | select none      change the selection
  zoom <factor> [cx cy]             zoom, optionally about a screen point
  pan <dx> <dy>                     pan the view
  fit <width> <height> [padding]    fit all nodes into a screen
  undo [n] | redo [n]               step through history
  clear                             remove everything
  status                            print counts, zoom and selection
  export <format> [path]            export to stdout or a file`

func (c *CLI) scriptCommand() *cobra.Command {
	var load, edges string

	cmd := &cobra.Command{
		Use:   "script [file]",
		Short: "Apply an edit script to a canvas",
		Long:  "Script runs an edit script (from file, or stdin when omitted or \"-\") against\na fresh canvas.\n\n" + scriptHelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			name, dir := "stdin", "."
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in, name, dir = f, args[0], filepath.Dir(args[0])
			}

			e := c.newEngine()
			if load != "" {
				loaded, err := c.loadInput(cmd.Context(), load, edges)
				if err != nil {
					return err
				}
				e = loaded
			}

			s := newScript(cmd.Context(), e, cmd.OutOrStdout(), dir)
			if err := s.run(in); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			c.Logger.Debugf("Script %s: %d commands", name, s.count)
			printStats(len(e.Nodes()), len(e.Edges()), fmt.Sprintf("%d commands", s.count))
			return nil
		},
	}

	cmd.Flags().StringVar(&load, "load", "", "start from an imported .json or .csv canvas")
	cmd.Flags().StringVar(&edges, "edges", "", "edges CSV for a CSV --load")

	return cmd
}

// =============================================================================
// Interpreter
// =============================================================================

// script applies edit commands to an engine.
type script struct {
	ctx     context.Context
	eng     *engine.Engine
	out     io.Writer
	dir     string            // base for relative export paths
	aliases map[string]string // alias → node or edge id
	count   int
}

func newScript(ctx context.Context, e *engine.Engine, out io.Writer, dir string) *script {
	return &script{ctx: ctx, eng: e, out: out, dir: dir, aliases: map[string]string{}}
}

// run executes every line of r, stopping at the first failing command.
func (s *script) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		args, err := splitArgs(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := s.exec(args); err != nil {
			return fmt.Errorf("line %d: %s: %w", line, args[0], err)
		}
		s.count++
	}
	return sc.Err()
}

func (s *script) exec(args []string) error {
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "title":
		s.eng.SetTitle(strings.Join(rest, " "))
	case "description":
		s.eng.SetDescription(strings.Join(rest, " "))
	case "type":
		if err := want(rest, 1, 1); err != nil {
			return err
		}
		return s.eng.SetDiagramType(graph.DiagramType(rest[0]))
	case "theme":
		if err := want(rest, 1, 1); err != nil {
			return err
		}
		return s.eng.SetTheme(rest[0])
	case "grid":
		return s.grid(rest)
	case "node":
		return s.node(rest)
	case "edge":
		return s.edge(rest)
	case "update":
		return s.update(rest)
	case "move":
		if err := want(rest, 3, 3); err != nil {
			return err
		}
		return s.update([]string{rest[0], "x=" + rest[1], "y=" + rest[2]})
	case "delete":
		return s.delete(rest)
	case "select":
		return s.selectEntity(rest)
	case "zoom":
		return s.zoom(rest)
	case "pan":
		nums, err := numbers(rest, 2, 2)
		if err != nil {
			return err
		}
		s.eng.Pan(nums[0], nums[1])
	case "fit":
		nums, err := numbers(rest, 2, 3)
		if err != nil {
			return err
		}
		padding := 0.0
		if len(nums) == 3 {
			padding = nums[2]
		}
		s.eng.FitToScreen(nums[0], nums[1], padding)
	case "undo", "redo":
		return s.replay(cmd, rest)
	case "clear":
		s.eng.Clear()
	case "status":
		s.status()
	case "export":
		return s.export(rest)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown command")
	}
	return nil
}

// =============================================================================
// Commands
// =============================================================================

func (s *script) grid(args []string) error {
	if err := want(args, 1, 2); err != nil {
		return err
	}
	if args[0] == "off" {
		g := s.eng.Canvas().Grid
		g.Enabled, g.Snap = false, false
		s.eng.SetGrid(g)
		return nil
	}
	size, err := number(args[0])
	if err != nil {
		return err
	}
	g := graph.Grid{Enabled: true, Size: size}
	if len(args) == 2 {
		if args[1] != "snap" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "want \"snap\", got %q", args[1])
		}
		g.Snap = true
	}
	s.eng.SetGrid(g)
	return nil
}

func (s *script) node(args []string) error {
	pos, kv, err := splitOptions(args)
	if err != nil {
		return err
	}
	if len(pos) != 2 && len(pos) != 4 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want <alias> <label> [x y]")
	}
	alias, label := pos[0], pos[1]
	if err := s.claim(alias); err != nil {
		return err
	}
	if err := apperrors.ValidateLabel(label); err != nil {
		return err
	}

	var x, y float64
	if len(pos) == 4 {
		if x, err = number(pos[2]); err != nil {
			return err
		}
		if y, err = number(pos[3]); err != nil {
			return err
		}
	}

	th := s.eng.Themes().Resolve(s.eng.Canvas().Theme)
	base := graph.Node{Size: th.NodeSize(), Style: th.NodeStyle()}
	patch, meta, err := s.nodePatch(base, kv, false)
	if err != nil {
		return err
	}
	n := s.eng.CreateNodeWith(label, x, y, meta, patch)
	if n == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "create node failed")
	}
	s.aliases[alias] = n.ID
	return nil
}

func (s *script) edge(args []string) error {
	pos, kv, err := splitOptions(args)
	if err != nil {
		return err
	}
	if len(pos) != 3 && len(pos) != 4 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want <alias> <from> <to> [label]")
	}
	alias := pos[0]
	if err := s.claim(alias); err != nil {
		return err
	}

	opts := graph.EdgeOptions{}
	if len(pos) == 4 {
		if err := apperrors.ValidateLabel(pos[3]); err != nil {
			return err
		}
		opts.Label = pos[3]
	}
	var e graph.Edge
	if err := applyEdgeOptions(&e, kv, false); err != nil {
		return err
	}
	opts.Kind, opts.Style = e.Kind, e.Style
	if _, ok := kv["arrow"]; ok {
		opts.Arrow = &e.Arrow
	}

	created, err := s.eng.CreateEdge(s.resolve(pos[1]), s.resolve(pos[2]), opts)
	if err != nil {
		return err
	}
	s.aliases[alias] = created.ID
	return nil
}

func (s *script) update(args []string) error {
	if len(args) < 2 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want <alias> key=value ...")
	}
	pos, kv, err := splitOptions(args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want <alias> key=value ...")
	}
	id := s.resolve(pos[0])

	if n, ok := s.eng.Node(id); ok {
		patch, meta, err := s.nodePatch(n, kv, true)
		if err != nil {
			return err
		}
		if meta != nil {
			patch.Metadata = mergeMeta(n.Metadata, meta)
		}
		s.eng.UpdateNode(id, patch)
		return nil
	}
	if e, ok := s.eng.Edge(id); ok {
		before := e
		if err := applyEdgeOptions(&e, kv, true); err != nil {
			return err
		}
		if v, ok := kv["from"]; ok {
			e.From = s.resolve(v)
		}
		if v, ok := kv["to"]; ok {
			e.To = s.resolve(v)
		}
		_, err := s.eng.UpdateEdge(id, edgeDiff(before, e))
		return err
	}
	return apperrors.New(apperrors.ErrCodeNotFound, "no node or edge %q", pos[0])
}

func (s *script) delete(args []string) error {
	if err := want(args, 1, 1); err != nil {
		return err
	}
	id := s.resolve(args[0])
	if s.eng.DeleteNode(id) || s.eng.DeleteEdge(id) {
		return nil
	}
	return apperrors.New(apperrors.ErrCodeNotFound, "no node or edge %q", args[0])
}

func (s *script) selectEntity(args []string) error {
	if err := want(args, 1, 1); err != nil {
		return err
	}
	if args[0] == "none" {
		s.eng.ClearSelection()
		return nil
	}
	id := s.resolve(args[0])
	if s.eng.SelectNode(id) || s.eng.SelectEdge(id) {
		return nil
	}
	return apperrors.New(apperrors.ErrCodeNotFound, "no node or edge %q", args[0])
}

func (s *script) zoom(args []string) error {
	nums, err := numbers(args, 1, 3)
	if err != nil {
		return err
	}
	switch len(nums) {
	case 1:
		s.eng.Zoom(nums[0])
	case 3:
		s.eng.ZoomAt(nums[0], nums[1], nums[2])
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want <factor> [cx cy]")
	}
	return nil
}

func (s *script) replay(cmd string, args []string) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid count %q", args[0])
		}
		steps = n
	}
	step := s.eng.Undo
	if cmd == "redo" {
		step = s.eng.Redo
	}
	for range steps {
		if !step() {
			break
		}
	}
	return nil
}

func (s *script) status() {
	vp := s.eng.Viewport()
	sel := s.eng.Selection()
	fmt.Fprintf(s.out, "nodes=%d edges=%d zoom=%s offset=%s,%s selected=%s undo=%d redo=%d\n",
		len(s.eng.Nodes()), len(s.eng.Edges()),
		formatNum(vp.Zoom), formatNum(vp.OffsetX), formatNum(vp.OffsetY),
		s.aliasOf(sel.NodeID+sel.EdgeID),
		s.eng.History().Len(), s.eng.History().RedoLen(),
	)
}

func (s *script) export(args []string) error {
	if err := want(args, 1, 2); err != nil {
		return err
	}
	f, err := mwio.ParseFormat(args[0])
	if err != nil {
		return err
	}
	arts, err := mwio.Export(s.ctx, s.eng.Snapshot(), f, mwio.Options{Directed: true})
	if err != nil {
		return err
	}

	if len(args) == 1 {
		for _, a := range arts {
			if _, err := s.out.Write(a.Data); err != nil {
				return err
			}
		}
		return nil
	}

	path := args[1]
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	paths := outputPaths(path, path, arts)
	for i, a := range arts {
		if err := writeFile(paths[i], a.Data); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *script) claim(alias string) error {
	if _, taken := s.aliases[alias]; taken {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "alias %q already in use", alias)
	}
	return nil
}

// resolve maps an alias to its id. Unknown aliases pass through as ids.
func (s *script) resolve(alias string) string {
	if id, ok := s.aliases[alias]; ok {
		return id
	}
	return alias
}

func (s *script) aliasOf(id string) string {
	if id == "" {
		return "none"
	}
	for a, v := range s.aliases {
		if v == id {
			return a
		}
	}
	return id
}

// nodePatch builds a patch from key=value options against the current node.
// Unknown keys are returned as metadata. label, x and y are accepted only
// when update is set.
func (s *script) nodePatch(n graph.Node, kv map[string]string, update bool) (graph.NodePatch, graph.Metadata, error) {
	var p graph.NodePatch
	var meta graph.Metadata
	pos, size, style := n.Position, n.Size, n.Style
	var movePos, setSize, setStyle bool

	for k, v := range kv {
		switch k {
		case "label":
			if !update {
				return p, nil, apperrors.New(apperrors.ErrCodeInvalidInput, "label is positional")
			}
			if err := apperrors.ValidateLabel(v); err != nil {
				return p, nil, err
			}
			p.Label = graph.Ptr(v)
		case "x", "y":
			if !update {
				return p, nil, apperrors.New(apperrors.ErrCodeInvalidInput, "%s is positional", k)
			}
			f, err := number(v)
			if err != nil {
				return p, nil, err
			}
			if k == "x" {
				pos.X = f
			} else {
				pos.Y = f
			}
			movePos = true
		case "width", "height":
			f, err := number(v)
			if err != nil {
				return p, nil, err
			}
			if k == "width" {
				size.Width = f
			} else {
				size.Height = f
			}
			setSize = true
		case "fill", "border":
			if err := apperrors.ValidateColor(v); err != nil {
				return p, nil, err
			}
			if k == "fill" {
				style.Fill = v
			} else {
				style.Border = v
			}
			setStyle = true
		case "font":
			f, err := number(v)
			if err != nil {
				return p, nil, err
			}
			p.FontSize = graph.Ptr(f)
		case "desc":
			p.Description = graph.Ptr(v)
		default:
			if meta == nil {
				meta = graph.Metadata{}
			}
			meta[k] = v
		}
	}
	if movePos {
		p.Position = &pos
	}
	if setSize {
		p.Size = &size
	}
	if setStyle {
		p.Style = &style
	}
	return p, meta, nil
}

// applyEdgeOptions sets edge fields from key=value options. from, to and
// label are accepted only when update is set.
func applyEdgeOptions(e *graph.Edge, kv map[string]string, update bool) error {
	for k, v := range kv {
		switch k {
		case "kind":
			switch k := graph.EdgeKind(v); k {
			case graph.EdgeCurve, graph.EdgeStraight, graph.EdgeStep:
				e.Kind = k
			default:
				return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid edge kind %q", v)
			}
		case "color":
			if err := apperrors.ValidateColor(v); err != nil {
				return err
			}
			e.Style.Color = v
		case "width":
			f, err := number(v)
			if err != nil {
				return err
			}
			e.Style.Width = f
		case "arrow":
			a, err := arrow(v)
			if err != nil {
				return err
			}
			e.Arrow = a
		case "label", "from", "to":
			if !update {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "%s is positional", k)
			}
			switch k {
			case "label":
				e.Label = v
			case "from":
				e.From = v
			case "to":
				e.To = v
			}
		default:
			return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown edge option %q", k)
		}
	}
	return nil
}

// edgeDiff returns the patch turning before into after.
func edgeDiff(before, after graph.Edge) graph.EdgePatch {
	var p graph.EdgePatch
	if after.Kind != before.Kind {
		p.Kind = &after.Kind
	}
	if after.From != before.From {
		p.From = &after.From
	}
	if after.To != before.To {
		p.To = &after.To
	}
	if after.Label != before.Label {
		p.Label = &after.Label
	}
	if after.Style != before.Style {
		p.Style = &after.Style
	}
	if after.Arrow != before.Arrow {
		p.Arrow = &after.Arrow
	}
	return p
}

func arrow(v string) (graph.Arrow, error) {
	switch v {
	case graph.ArrowNone, "off":
		return graph.Arrow{Visible: false, Kind: graph.ArrowNone}, nil
	case graph.ArrowTriangle, "on":
		return graph.Arrow{Visible: true, Kind: graph.ArrowTriangle}, nil
	default:
		return graph.Arrow{}, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid arrow %q", v)
	}
}

func mergeMeta(base, extra graph.Metadata) graph.Metadata {
	out := base.Clone()
	if out == nil {
		out = graph.Metadata{}
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// splitOptions separates positional arguments from trailing key=value
// options.
func splitOptions(args []string) ([]string, map[string]string, error) {
	kv := map[string]string{}
	var pos []string
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			if len(kv) > 0 {
				return nil, nil, apperrors.New(apperrors.ErrCodeInvalidInput, "positional argument %q after options", a)
			}
			pos = append(pos, a)
			continue
		}
		kv[strings.ToLower(k)] = v
	}
	return pos, kv, nil
}

func want(args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "want %d argument(s), got %d", min, len(args))
		}
		return apperrors.New(apperrors.ErrCodeInvalidInput, "want %d to %d arguments, got %d", min, max, len(args))
	}
	return nil
}

func number(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid number %q", s)
	}
	return f, nil
}

func numbers(args []string, min, max int) ([]float64, error) {
	if err := want(args, min, max); err != nil {
		return nil, err
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := number(a)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// splitArgs splits a script line into shell-style words. A word that
// starts with # begins a trailing comment.
func splitArgs(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "unterminated quote")
	}
	return args, nil
}
