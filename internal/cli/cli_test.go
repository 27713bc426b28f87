package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
	"github.com/matzehuels/canvaskit/pkg/observability"
)

// testEnv runs commands in a temporary working directory with isolated
// config, cache and data homes.
type testEnv struct {
	t     *testing.T
	dir   string
	stdin string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("CANVASKIT_CONFIG", "")
	t.Cleanup(observability.Reset)
	return &testEnv{t: t, dir: dir}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Out = &out
	c.Err = io.Discard
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(e.stdin))
	err := root.ExecuteContext(e.t.Context())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

// newDiagram creates a file with shapes a and b and a connection between
// them, returning their ids.
func (e *testEnv) newDiagram(path string) (a, b, conn string) {
	e.t.Helper()
	e.mustRun("new", path)
	a = strings.TrimSpace(e.mustRun("add", path, "--label", "api", "--x", "0", "--y", "0"))
	b = strings.TrimSpace(e.mustRun("add", path, "--label", "db", "--x", "300", "--y", "0"))
	conn = strings.TrimSpace(e.mustRun("connect", path, a, b))
	return a, b, conn
}

func (e *testEnv) inspect(path string) report {
	e.t.Helper()
	var r report
	if err := json.Unmarshal([]byte(e.mustRun("inspect", path, "--json")), &r); err != nil {
		e.t.Fatal(err)
	}
	return r
}

func TestNew(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("new", "flow.yaml")
	if _, err := cio.ImportFile("flow.yaml"); err != nil {
		t.Fatal(err)
	}
	_, err := env.run("new", "flow.yaml")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second new = %v, want INVALID_INPUT", err)
	}
	env.mustRun("new", "flow.yaml", "--force")

	if _, err := env.run("new", "flow.txt"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("new .txt = %v, want INVALID_FORMAT", err)
	}
}

func TestEditCommands(t *testing.T) {
	env := newTestEnv(t)
	a, b, conn := env.newDiagram("flow.json")

	r := env.inspect("flow.json")
	if len(r.Shapes) != 2 || len(r.Connections) != 1 {
		t.Fatalf("report = %+v", r)
	}
	if r.Connections[0].ID != conn || r.Connections[0].Source != a || r.Connections[0].Target != b {
		t.Errorf("connection = %+v", r.Connections[0])
	}
	if r.Connections[0].Segments == 0 {
		t.Error("connection was not routed")
	}

	env.mustRun("move", "flow.json", b, "400", "50")
	env.mustRun("resize", "flow.json", a, "120", "80")
	env.mustRun("label", "flow.json", a, "gateway")

	r = env.inspect("flow.json")
	byID := map[string]shapeRow{}
	for _, s := range r.Shapes {
		byID[s.ID] = s
	}
	if s := byID[b]; s.X != 400 || s.Y != 50 {
		t.Errorf("moved shape at %g,%g", s.X, s.Y)
	}
	if s := byID[a]; s.Width != 120 || s.Height != 80 || s.Label != "gateway" {
		t.Errorf("resized shape = %+v", s)
	}

	env.mustRun("rm", "flow.json", b)
	r = env.inspect("flow.json")
	if len(r.Shapes) != 1 || len(r.Connections) != 0 {
		t.Errorf("after rm: %d shapes, %d connections", len(r.Shapes), len(r.Connections))
	}
}

func TestAddNested(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("new", "flow.json")
	panel := strings.TrimSpace(env.mustRun("add", "flow.json", "--type", "rectangle", "--width", "400", "--height", "300"))
	child := strings.TrimSpace(env.mustRun("add", "flow.json", "--parent", panel, "--x", "20", "--y", "20"))

	r := env.inspect("flow.json")
	var found bool
	for _, s := range r.Shapes {
		if s.ID == child {
			found = true
			if s.Parent != panel {
				t.Errorf("parent = %q, want %q", s.Parent, panel)
			}
		}
		if s.ID == panel && (s.Kind != "regular" || s.Width != 400) {
			t.Errorf("panel = %+v", s)
		}
	}
	if !found {
		t.Fatal("child missing")
	}

	// Deleting the container removes the child.
	env.mustRun("rm", "flow.json", panel)
	if r := env.inspect("flow.json"); len(r.Shapes) != 0 {
		t.Errorf("%d shapes left", len(r.Shapes))
	}
}

func TestEditErrors(t *testing.T) {
	env := newTestEnv(t)
	a, b, _ := env.newDiagram("flow.json")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"add", "nope.json"}, errors.ErrCodeNotFound},
		{"unknown type", []string{"add", "flow.json", "--type", "hexagon"}, errors.ErrCodeUnknownType},
		{"unknown shape", []string{"move", "flow.json", "nope", "1", "2"}, errors.ErrCodeNotFound},
		{"bad number", []string{"move", "flow.json", a, "x", "2"}, errors.ErrCodeInvalidInput},
		{"bad side", []string{"connect", "flow.json", a, a, "--from", "up"}, errors.ErrCodeInvalidInput},
		{"bad style", []string{"connect", "flow.json", a, b, "--style", "wavy"}, errors.ErrCodeInvalidInput},
		{"unknown target", []string{"connect", "flow.json", a, "nope"}, errors.ErrCodeNotFound},
		{"copy duplicate id", []string{"copy", "flow.json", a, a, "--stdout"}, errors.ErrCodeInvalidSelection},
		{"bad format", []string{"render", "flow.json", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"graphviz png", []string{"render", "flow.json", "-f", "png", "--graphviz"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadOnlyConfig(t *testing.T) {
	env := newTestEnv(t)
	env.newDiagram("flow.json")
	if err := os.WriteFile("canvaskit.toml", []byte("[canvas]\nreadOnly = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := env.run("add", "flow.json")
	if !errors.Is(err, errors.ErrCodeReadOnly) {
		t.Errorf("err = %v, want READ_ONLY", err)
	}
}

func TestInspectTable(t *testing.T) {
	env := newTestEnv(t)
	a, _, conn := env.newDiagram("flow.json")
	out := env.mustRun("inspect", "flow.json")
	for _, want := range []string{"Shapes (2)", "Connections (1)", a, conn, "api"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestRender(t *testing.T) {
	env := newTestEnv(t)
	env.newDiagram("flow.json")

	out := env.mustRun("render", "flow.json", "-f", "svg,png,dot")
	for _, name := range []string{"flow.svg", "flow.png", "flow.dot"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if strings.Count(out, iconFresh) != 3 {
		t.Errorf("first render should be fresh:\n%s", out)
	}

	out = env.mustRun("render", "flow.json", "-f", "svg")
	if !strings.Contains(out, iconCached) {
		t.Errorf("second render should hit the cache:\n%s", out)
	}

	env.mustRun("render", "flow.json", "-o", "out/diagram.svg", "--no-cache")
	data, err := os.ReadFile(filepath.Join("out", "diagram.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not svg")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "flow.json", "flow"},
		{"", "dir/flow.yaml", "dir/flow"},
		{"out.svg", "flow.json", "out"},
		{"out/diagram", "flow.json", "out/diagram"},
		{"out.v2", "flow.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestCopyPaste(t *testing.T) {
	env := newTestEnv(t)
	a, b, _ := env.newDiagram("flow.json")

	copied := env.mustRun("copy", "flow.json", a, b, "--stdout")
	doc, err := cio.Unmarshal([]byte(copied), cio.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.CustomShapes) != 2 || len(doc.Connections) != 1 {
		t.Fatalf("copied %d shapes, %d connections", len(doc.CustomShapes), len(doc.Connections))
	}

	env.stdin = copied
	out := env.mustRun("paste", "flow.json", "--stdin", "--times", "2")
	if ids := strings.Fields(out); len(ids) != 4 {
		t.Errorf("pasted ids = %v", ids)
	}
	r := env.inspect("flow.json")
	if len(r.Shapes) != 6 || len(r.Connections) != 3 {
		t.Errorf("after paste: %d shapes, %d connections", len(r.Shapes), len(r.Connections))
	}
	labels := 0
	for _, s := range r.Shapes {
		if strings.HasSuffix(s.Label, "api") && s.Label != "api" {
			labels++
		}
	}
	if labels != 2 {
		t.Errorf("%d pasted labels carry the paste prefix, want 2", labels)
	}
}

func TestClipboard(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := env.newDiagram("flow.json")

	var board string
	oldWrite, oldRead := clipboardWrite, clipboardRead
	t.Cleanup(func() { clipboardWrite, clipboardRead = oldWrite, oldRead })
	clipboardWrite = func(s string) error { board = s; return nil }
	clipboardRead = func() (string, error) { return board, nil }

	out := env.mustRun("copy", "flow.json", a)
	if !strings.Contains(out, "Copied 1 shape(s)") {
		t.Errorf("copy output = %q", out)
	}
	env.mustRun("paste", "flow.json")
	if r := env.inspect("flow.json"); len(r.Shapes) != 3 {
		t.Errorf("%d shapes after paste", len(r.Shapes))
	}

	board = ""
	if _, err := env.run("paste", "flow.json"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("paste of empty clipboard = %v", err)
	}
}

func TestStoreCommands(t *testing.T) {
	env := newTestEnv(t)
	env.newDiagram("flow.json")
	cfg := "[store]\nbackend = \"file\"\npath = " + strconvQuote(filepath.Join(env.dir, "docs")) + "\n"
	if err := os.WriteFile("canvaskit.toml", []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun("store", "ls")
	if !strings.Contains(out, "No documents stored") {
		t.Errorf("empty ls = %q", out)
	}

	id := strings.TrimSpace(env.mustRun("store", "put", "flow.json"))
	if id == "" {
		t.Fatal("put printed no id")
	}
	env.mustRun("store", "put", "flow.json", "--id", id, "--version", "1")
	if _, err := env.run("store", "put", "flow.json", "--id", id, "--version", "1"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("stale put = %v, want CONFLICT", err)
	}

	out = env.mustRun("store", "ls", "--json")
	var list []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].Name != "flow" || list[0].Version != 2 {
		t.Errorf("list = %+v", list)
	}

	env.mustRun("store", "get", id, "-o", "copy.yaml")
	if r := env.inspect("copy.yaml"); len(r.Shapes) != 2 {
		t.Errorf("fetched %d shapes", len(r.Shapes))
	}
	if out := env.mustRun("store", "get", id, "-f", "yaml"); !strings.Contains(out, "customShapes:") {
		t.Errorf("get yaml = %q", out)
	}

	env.mustRun("store", "rm", id)
	if _, err := env.run("store", "get", id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after rm = %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("config", "path")
	if !strings.Contains(out, "using defaults") {
		t.Errorf("config path = %q", out)
	}
	env.mustRun("config", "init", "canvaskit.toml")
	if _, err := env.run("config", "init", "canvaskit.toml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init = %v", err)
	}
	if out := env.mustRun("config", "path"); !strings.Contains(out, "canvaskit.toml") {
		t.Errorf("config path = %q", out)
	}
	if out := env.mustRun("config", "show"); !strings.Contains(out, "[canvas]") {
		t.Errorf("config show = %q", out)
	}

	if err := os.WriteFile("bad.toml", []byte("[canvas]\nwidht = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run("--config", "bad.toml", "config", "show"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown key = %v, want INVALID_FORMAT", err)
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	if out := env.mustRun("version"); !strings.Contains(out, "version") {
		t.Errorf("version = %q", out)
	}
	if out := env.mustRun("completion", "bash"); !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command")
	}
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
