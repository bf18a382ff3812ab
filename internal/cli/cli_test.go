package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	mwio "github.com/matzehuels/mapwright/pkg/io"
)

// captureUI redirects status output into a buffer for the test's duration.
func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := uiOut
	uiOut = &buf
	t.Cleanup(func() { uiOut = prev })
	return &buf
}

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const nodesCSV = `ID,Name,Description,Type,X,Y,Width,Height,Color,BorderColor
"a","Alpha","first","node",0,0,120,60,"#ffffff","#333333"
"b","Beta","","group",200,0,120,60,"#ffffff","#333333"
`

const edgesCSV = `SourceID,TargetID,Label,Type,Color,LineWidth
"a","b","needs","curve","#666666",2
`

// =============================================================================
// Root Command
// =============================================================================

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"cache", "completion", "convert", "render", "script", "serve"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing --config flag")
	}
}

func TestRootCommandRunsScript(t *testing.T) {
	captureUI(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := testCLI().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader("node a A\nnode b B\nedge e a b\nstatus\n"))
	root.SetArgs([]string{"script"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "nodes=2 edges=1") {
		t.Errorf("output = %q", out.String())
	}
}

// =============================================================================
// Config
// =============================================================================

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "mw.toml", `
[canvas]
type  = "mindmap"
title = "From config"

[history]
enabled  = true
capacity = 2
`)

	c := testCLI()
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	e := c.newEngine()
	if got := e.Canvas().Title; got != "From config" {
		t.Errorf("title = %q", got)
	}
	if got := e.Canvas().Type; got != "mindmap" {
		t.Errorf("type = %q", got)
	}
	for range 3 {
		e.CreateNode("n", 0, 0, nil)
	}
	if got := e.History().Len(); got != 2 {
		t.Errorf("history len = %d, want capacity 2", got)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	c := testCLI()
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig without file: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(home, appName), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTemp(t, filepath.Join(home, appName), configFile, "[canvas]\ntitle = \"Default file\"\n")
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got := c.newEngine().Canvas().Title; got != "Default file" {
		t.Errorf("title = %q", got)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "bad.toml", "[canvas]\ntitel = \"typo\"\n")
	c := testCLI()
	c.configPath = path
	if err := c.loadConfig(); err == nil {
		t.Error("loadConfig with unknown key: want error")
	}
}

// =============================================================================
// Paths
// =============================================================================

func TestDirsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	if got, err := cacheDir(); err != nil || got != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir() = %q, %v", got, err)
	}
	if got, err := configDir(); err != nil || got != filepath.Join("/tmp/xdg-config", appName) {
		t.Errorf("configDir() = %q, %v", got, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"ab/abcd.svg", "ab/abef.png", "cd/cdef.svg"} {
		if err := writeFile(filepath.Join(dir, p), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	count, err := clearDir(dir)
	if err != nil {
		t.Fatalf("clearDir: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir still has %d entries", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir itself removed: %v", err)
	}

	if count, err := clearDir(filepath.Join(dir, "missing")); count != 0 || err != nil {
		t.Errorf("clearDir(missing) = %d, %v", count, err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "ab"), "abcd.svg", "12345")
	writeTemp(t, filepath.Join(dir, "cd"), "cdef.png", "123")

	u, err := scanDir(dir)
	if err != nil {
		t.Fatalf("scanDir: %v", err)
	}
	if len(u.files) != 2 || len(u.dirs) != 2 || u.bytes != 8 {
		t.Errorf("scanDir = %d files, %d dirs, %d bytes; want 2, 2, 8", len(u.files), len(u.dirs), u.bytes)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeTemp(t, filepath.Join(cacheHome, appName, "ab"), "abcd.svg", "<svg/>")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := testCLI().RootCommand()
		root.SetOut(&out)
		root.SetArgs(append([]string{"cache"}, args...))
		if err := root.Execute(); err != nil {
			t.Fatalf("cache %v: %v", args, err)
		}
		return out.String()
	}

	if got := strings.TrimSpace(run("path")); got != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", got)
	}

	ui := captureUI(t)
	run("info")
	if !strings.Contains(ui.String(), "6 B") {
		t.Errorf("cache info output %q lacks size", ui.String())
	}

	ui.Reset()
	run("clear")
	if !strings.Contains(ui.String(), "Cleared 1 cached entries") {
		t.Errorf("cache clear output %q", ui.String())
	}
}

func TestOutputPaths(t *testing.T) {
	single := []mwio.Artifact{{Suffix: ".md"}}
	pair := []mwio.Artifact{{Suffix: ".nodes.csv"}, {Suffix: ".edges.csv"}}

	tests := []struct {
		name   string
		output string
		input  string
		arts   []mwio.Artifact
		want   []string
	}{
		{"single to output", "out/doc.markdown", "map.json", single, []string{"out/doc.markdown"}},
		{"single from input", "", "maps/plan.json", single, []string{"maps/plan.md"}},
		{"pair from output", "out/table.csv", "map.json", pair, []string{"out/table.nodes.csv", "out/table.edges.csv"}},
		{"pair from input", "", "plan.json", pair, []string{"plan.nodes.csv", "plan.edges.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.output, tt.input, tt.arts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Convert
// =============================================================================

func TestConvertCSVToMarkdown(t *testing.T) {
	captureUI(t)
	dir := t.TempDir()
	nodes := writeTemp(t, dir, "map.csv", nodesCSV)
	edges := writeTemp(t, dir, "edges.csv", edgesCSV)

	var out bytes.Buffer
	err := testCLI().runConvert(context.Background(), nodes, convertOpts{format: "md", edges: edges}, &out)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	for _, want := range []string{"# Untitled", "### Alpha", "- Alpha → Beta (needs)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("markdown missing %q:\n%s", want, out.String())
		}
	}
}

func TestConvertJSONRoundTrip(t *testing.T) {
	captureUI(t)
	dir := t.TempDir()
	nodes := writeTemp(t, dir, "map.csv", nodesCSV)
	edges := writeTemp(t, dir, "edges.csv", edgesCSV)
	jsonPath := filepath.Join(dir, "map.json")

	c := testCLI()
	if err := c.runConvert(context.Background(), nodes, convertOpts{format: "json", edges: edges, output: jsonPath}, io.Discard); err != nil {
		t.Fatalf("csv → json: %v", err)
	}
	if err := c.runConvert(context.Background(), jsonPath, convertOpts{format: "csv"}, io.Discard); err != nil {
		t.Fatalf("json → csv: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "map.nodes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `"a","Alpha","first"`) || !strings.Contains(string(got), `"b","Beta","","group"`) {
		t.Errorf("nodes.csv:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "map.edges.csv")); err != nil {
		t.Errorf("edges.csv not written: %v", err)
	}
}

func TestConvertReportsDroppedRows(t *testing.T) {
	ui := captureUI(t)
	dir := t.TempDir()
	nodes := writeTemp(t, dir, "map.csv", nodesCSV+"\"c\",\"short\"\n")

	if err := testCLI().runConvert(context.Background(), nodes, convertOpts{format: "dot"}, io.Discard); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if !strings.Contains(ui.String(), "Dropped 1 malformed rows") {
		t.Errorf("ui output = %q", ui.String())
	}
	if !strings.Contains(ui.String(), "line 4 (2 columns)") {
		t.Errorf("ui output missing row detail: %q", ui.String())
	}
}

func TestConvertErrors(t *testing.T) {
	captureUI(t)
	dir := t.TempDir()
	nodes := writeTemp(t, dir, "map.csv", nodesCSV)
	dangling := writeTemp(t, dir, "dangling.csv", "SourceID,TargetID,Label,Type,Color,LineWidth\n\"a\",\"ghost\",\"\",\"curve\",\"#000\",1\n")
	text := writeTemp(t, dir, "map.txt", "hello")
	jsonPath := writeTemp(t, dir, "bad.json", "{not json")

	tests := []struct {
		name  string
		input string
		opts  convertOpts
		code  apperrors.Code
	}{
		{"unknown extension", text, convertOpts{format: "md"}, apperrors.ErrCodeInvalidInput},
		{"unknown format", nodes, convertOpts{format: "gif"}, apperrors.ErrCodeInvalidInput},
		{"edges with json", jsonPath, convertOpts{format: "md", edges: nodes}, apperrors.ErrCodeInvalidInput},
		{"dangling edge", nodes, convertOpts{format: "md", edges: dangling}, apperrors.ErrCodeInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testCLI().runConvert(context.Background(), tt.input, tt.opts, io.Discard)
			if !apperrors.Is(err, tt.code) {
				t.Errorf("runConvert error = %v, want code %s", err, tt.code)
			}
		})
	}

	if err := testCLI().runConvert(context.Background(), jsonPath, convertOpts{format: "md"}, io.Discard); err == nil {
		t.Error("malformed JSON: want error")
	}
}

func TestScriptCommandLoad(t *testing.T) {
	captureUI(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	nodes := writeTemp(t, dir, "map.csv", nodesCSV)
	edges := writeTemp(t, dir, "edges.csv", edgesCSV)
	script := writeTemp(t, dir, "edit.mw", "node c Gamma 400 0\nedge e2 b c\ndelete a\nstatus\nexport csv out.csv\n")

	root := testCLI().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"script", script, "--load", nodes, "--edges", edges})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "nodes=2 edges=1") {
		t.Errorf("status = %q", out.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.nodes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"Alpha"`) || !strings.Contains(string(data), `"Gamma"`) {
		t.Errorf("exported nodes:\n%s", data)
	}
}

func TestCompletionScript(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := testCLI().RootCommand()
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s script does not mention %s", shell, appName)
			}
		})
	}

	root := testCLI().RootCommand()
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompleteValues(t *testing.T) {
	tests := []struct {
		values []string
		prefix string
		want   []string
	}{
		{formatNames(), "", []string{"json", "markdown", "svg", "csv", "plantuml", "dot"}},
		{formatNames(), "P", []string{"plantuml"}},
		{renderFormats, "s", []string{"svg"}},
		{renderFormats, "x", nil},
	}

	for _, tt := range tests {
		got, dir := completeValues(tt.values)(nil, nil, tt.prefix)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
		if dir != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("complete(%q) directive = %v", tt.prefix, dir)
		}
	}

	if exts, dir := completeCanvas(nil, nil, ""); dir != cobra.ShellCompDirectiveFilterFileExt || len(exts) != 2 {
		t.Errorf("completeCanvas() = %v, %v", exts, dir)
	}
}
