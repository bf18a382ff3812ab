package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mapwright/pkg/buildinfo"
	"github.com/matzehuels/mapwright/pkg/engine"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
	mwio "github.com/matzehuels/mapwright/pkg/io"
	"github.com/matzehuels/mapwright/pkg/render/nodelink"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Read().Version,
	})
}

// =============================================================================
// Export
// =============================================================================

// export converts a JSON envelope to the format named in the path.
// Query parameters: width and height (SVG), directed (DOT, default true),
// table=nodes|edges (CSV, default nodes).
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	f, err := mwio.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := exportOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.readCanvas(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	arts, err := mwio.Export(r.Context(), snap, f, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	art := arts[0]
	if f == mwio.FormatCSV && r.URL.Query().Get("table") == "edges" {
		art = arts[1]
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func exportOptions(r *http.Request) (mwio.Options, error) {
	q := r.URL.Query()
	opts := mwio.Options{Directed: true}

	var err error
	if opts.Width, err = queryFloat(q.Get("width")); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(q.Get("height")); err != nil {
		return opts, err
	}
	if v := q.Get("directed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid directed %q", v)
		}
		opts.Directed = b
	}
	return opts, nil
}

func queryFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid dimension %q", v)
	}
	return f, nil
}

// =============================================================================
// Render
// =============================================================================

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	f, err := nodelink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "render format"))
		return
	}
	snap, err := s.readCanvas(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dot := nodelink.ToDOT(snap, nodelink.Options{Directed: true, Styled: true})
	data, err := s.renderer.Render(r.Context(), dot, f)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render %s", f))
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Import
// =============================================================================

// csvRequest is the JSON form of an import request. A text/csv body is
// treated as a nodes table alone.
type csvRequest struct {
	Nodes string `json:"nodes"`
	Edges string `json:"edges"`
}

type rowError struct {
	Line    int    `json:"line"`
	Columns int    `json:"columns"`
	Reason  string `json:"reason"`
}

type importResponse struct {
	Canvas  json.RawMessage `json:"canvas"`
	Dropped int             `json:"dropped"`
	Errors  []rowError      `json:"errors"`
}

func (s *Server) importCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req csvRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode import request"))
			return
		}
	} else {
		req.Nodes = string(body)
	}

	res, err := mwio.Import(r.Context(), mwio.FormatCSV, []byte(req.Nodes), []byte(req.Edges))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.load(res.Snapshot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	canvas, err := mwio.ExportJSON(e.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := importResponse{Canvas: canvas, Dropped: res.Dropped, Errors: []rowError{}}
	for _, re := range res.Errors {
		resp.Errors = append(resp.Errors, rowError{Line: re.Line, Columns: re.Columns, Reason: re.Reason})
	}
	w.Header().Set("X-Dropped-Rows", strconv.Itoa(res.Dropped))
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// readCanvas decodes a JSON envelope from the request body and validates it
// by loading it into an engine.
func (s *Server) readCanvas(r *http.Request) (graph.Snapshot, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return graph.Snapshot{}, err
	}
	res, err := mwio.Import(r.Context(), mwio.FormatJSON, body, nil)
	if err != nil {
		return graph.Snapshot{}, err
	}
	e, err := s.load(res.Snapshot)
	if err != nil {
		return graph.Snapshot{}, err
	}
	return e.Snapshot(), nil
}

func (s *Server) load(snap graph.Snapshot) (*engine.Engine, error) {
	e := engine.New(engine.WithConfig(s.engineCfg), engine.WithLogger(s.logger))
	if err := e.Load(snap); err != nil {
		return nil, err
	}
	return e, nil
}
