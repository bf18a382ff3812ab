package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mapwright/pkg/cache"
	"github.com/matzehuels/mapwright/pkg/observability"
)

// Format is a Graphviz output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a user-supplied output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported render format %q (want svg or png)", s)
	}
}

// ContentType returns the MIME type of rendered output.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// RenderSVG lays out DOT source with Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out DOT source with Graphviz and returns a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

// Render dispatches to RenderSVG or RenderPNG.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported render format %q", format)
	}
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container: Graphviz emits pt-based width/height and a transformed
// viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// =============================================================================
// Cached Renderer
// =============================================================================

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 24 * time.Hour

// Renderer renders DOT source through an artifact cache. Identical DOT
// text and format always produce the same key, so edits invalidate
// naturally.
type Renderer struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewRenderer creates a renderer. A nil cache disables caching; a nil
// keyer uses cache.DefaultKeyer; a nil logger uses log.Default().
func NewRenderer(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{cache: c, keyer: keyer, ttl: DefaultTTL, logger: logger}
}

// WithTTL returns a copy of r storing artifacts for ttl.
func (r *Renderer) WithTTL(ttl time.Duration) *Renderer {
	c := *r
	c.ttl = ttl
	return &c
}

// Render returns the artifact for dot in format, from cache when possible.
// Cache failures are logged and never fail the render.
func (r *Renderer) Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	key := r.keyer.ArtifactKey(cache.Hash([]byte(dot)), string(format))
	hooks := observability.Cache()

	data, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("artifact cache read failed", "format", format, "err", err)
	}
	if hit {
		hooks.OnCacheHit(ctx, string(format))
		r.logger.Debug("artifact cache hit", "format", format)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, string(format))

	start := time.Now()
	observability.Export().OnExportStart(ctx, "graphviz-"+string(format), 0)
	data, err = Render(ctx, dot, format)
	observability.Export().OnExportComplete(ctx, "graphviz-"+string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered", "format", format, "bytes", len(data), "took", time.Since(start))

	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("artifact cache write failed", "format", format, "err", err)
	} else {
		hooks.OnCacheSet(ctx, string(format), len(data))
	}
	return data, nil
}
