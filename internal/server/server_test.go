package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapwright/pkg/cache"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/observability"
)

const treeCanvas = `{
  "version": "1.0",
  "title": "Deps",
  "type": "tree",
  "nodes": [
    {"id": "A", "label": "A", "position": {"x": 0, "y": 0}, "size": {"width": 120, "height": 60}},
    {"id": "B", "label": "B", "position": {"x": 100, "y": 0}, "size": {"width": 120, "height": 60}}
  ],
  "edges": [
    {"id": "e1", "kind": "curve", "from": "A", "to": "B", "label": "uses", "arrow": {"visible": true}}
  ]
}`

func newTestServer(t *testing.T, cfg Config, opts ...Option) *httptest.Server {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(&strings.Builder{}))}, opts...)
	ts := httptest.NewServer(New(cfg, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func decodeError(t *testing.T, resp *http.Response) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		path        string
		contentType string
		want        []string
	}{
		{"/v1/export/markdown", "text/markdown", []string{"# Deps", `A["A"] -->|uses| B["B"]`, "- A → B (uses)"}},
		{"/v1/export/dot", "text/vnd.graphviz", []string{"digraph G {", `"A" -> "B"`}},
		{"/v1/export/dot?directed=false", "text/vnd.graphviz", []string{"graph G {", `"A" -- "B"`}},
		{"/v1/export/svg?width=320&height=200", "image/svg+xml", []string{`width="320" height="200"`, "<polygon"}},
		{"/v1/export/csv", "text/csv", []string{"ID,Name,Description", `"A","A","","node",0,0,120,60`}},
		{"/v1/export/csv?table=edges", "text/csv", []string{"SourceID,TargetID", `"A","B","uses","curve"`}},
		{"/v1/export/puml", "text/plain", []string{"@startuml", "A --> B : uses"}},
		{"/v1/export/json", "application/json", []string{`"version": "1.0"`, `"title": "Deps"`}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, "application/json", treeCanvas)
			body := readAll(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q:\n%s", w, body)
				}
			}
		})
	}
}

func TestExportErrors(t *testing.T) {
	ts := newTestServer(t, Config{})
	dangling := strings.Replace(treeCanvas, `"to": "B"`, `"to": "Z"`, 1)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   apperrors.Code
	}{
		{"unknown format", "/v1/export/xlsx", treeCanvas, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"bad dimension", "/v1/export/svg?width=wide", treeCanvas, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"bad directed", "/v1/export/dot?directed=maybe", treeCanvas, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"malformed JSON", "/v1/export/json", "{", http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"dangling edge", "/v1/export/json", dangling, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code || got.RequestID == "" {
				t.Errorf("error = %+v, want code %s with request id", got, tt.code)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodySize: 16})
	resp := post(t, ts.URL+"/v1/export/json", "application/json", treeCanvas)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, Config{}, WithCache(cache.NewNullCache()))

	resp := post(t, ts.URL+"/v1/render/svg", "application/json", treeCanvas)
	body := readAll(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "image/svg+xml" || !strings.Contains(body, "<svg") {
		t.Errorf("unexpected render response %q: %.80s", resp.Header.Get("Content-Type"), body)
	}

	resp = post(t, ts.URL+"/v1/render/gif", "application/json", treeCanvas)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("render gif status = %d, want 400", resp.StatusCode)
	}
}

func TestImportCSV(t *testing.T) {
	ts := newTestServer(t, Config{})
	nodes := "ID,Name,Description,Type,X,Y,Width,Height,Color,BorderColor\n" +
		`"a","Alpha","","node",0,0,120,60,"#fff","#000"` + "\n" +
		`"b","Beta","","group",200,0,120,60,"#fff","#000"` + "\n" +
		`"c","short"` + "\n"
	edges := "SourceID,TargetID,Label,Type,Color,LineWidth\n" +
		`"a","b","uses","straight","#333",2` + "\n"

	t.Run("text/csv", func(t *testing.T) {
		resp := post(t, ts.URL+"/v1/import/csv", "text/csv", nodes)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d: %s", resp.StatusCode, readAll(t, resp))
		}
		if resp.Header.Get("X-Dropped-Rows") != "1" {
			t.Errorf("X-Dropped-Rows = %q", resp.Header.Get("X-Dropped-Rows"))
		}
		var body struct {
			Canvas struct {
				Nodes []struct {
					ID string `json:"id"`
				} `json:"nodes"`
			} `json:"canvas"`
			Dropped int        `json:"dropped"`
			Errors  []rowError `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body.Canvas.Nodes) != 2 || body.Dropped != 1 {
			t.Errorf("body = %+v", body)
		}
		if len(body.Errors) != 1 || body.Errors[0].Line != 4 || body.Errors[0].Columns != 2 {
			t.Errorf("errors = %+v", body.Errors)
		}
	})

	t.Run("json with edges", func(t *testing.T) {
		req, _ := json.Marshal(csvRequest{Nodes: nodes, Edges: edges})
		resp := post(t, ts.URL+"/v1/import/csv", "application/json", string(req))
		body := readAll(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d: %s", resp.StatusCode, body)
		}
		if !strings.Contains(body, `"from":"a"`) && !strings.Contains(body, `"from": "a"`) {
			t.Errorf("edge missing from canvas: %s", body)
		}
	})

	t.Run("dangling edge", func(t *testing.T) {
		req, _ := json.Marshal(csvRequest{Nodes: nodes, Edges: strings.Replace(edges, `"b"`, `"zz"`, 1)})
		resp := post(t, ts.URL+"/v1/import/csv", "application/json", string(req))
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Config{AllowedOrigins: []string{"https://app.example.com"}})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

type httpSpy struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (s *httpSpy) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	spy := &httpSpy{}
	observability.SetHTTPHooks(spy)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp = post(t, ts.URL+"/v1/export/xlsx", "application/json", "{}")
	readAll(t, resp)

	spy.mu.Lock()
	defer spy.mu.Unlock()
	if len(spy.statuses) != 2 || spy.statuses[0] != http.StatusOK || spy.statuses[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v", spy.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, WithLogger(log.New(&strings.Builder{})))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
