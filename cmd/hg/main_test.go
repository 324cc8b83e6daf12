package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/snapshot"
	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

// hgEnv clears every HYPERGRAPH_* variable and returns a graph path in a
// fresh directory.
func hgEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"HYPERGRAPH_GRAPH", "HYPERGRAPH_ID_STRATEGY", "HYPERGRAPH_ID_PREFIX", "HYPERGRAPH_TYPES",
		"HYPERGRAPH_NATS_URL", "HYPERGRAPH_LOG_LEVEL", "HYPERGRAPH_SYNC_INTERVAL", "HYPERGRAPH_SYNC_FILE",
		"HYPERGRAPH_SYNC_S3_BUCKET", "HYPERGRAPH_SYNC_GIT_REPO",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")
	ui.ForceNoColor()
	return filepath.Join(t.TempDir(), "graph.json")
}

// runHG executes one hg invocation and returns its stdout.
func runHG(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRunHG(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runHG(t, args...)
	if err != nil {
		t.Fatalf("hg %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// familyFile builds dad -> {sis, me} in a fresh graph file.
func familyFile(t *testing.T) (path string, hg func(args ...string) string) {
	t.Helper()
	path = hgEnv(t)
	base := []string{"--graph", path, "--types", "testdata/family.yaml"}
	hg = func(args ...string) string {
		t.Helper()
		return mustRunHG(t, append(append([]string{}, base...), args...)...)
	}

	hg("init", "--id", "fam", "--label", "Family", "-m", "source=census")
	hg("add-node", "--id", "dad", "-t", "person", "-m", "born=1960", "Dad")
	hg("add-node", "--id", "sis", "-t", "person", "Sis")
	hg("add-node", "--id", "me", "-t", "person", "Me")
	hg("add-edge", "--id", "kids", "-r", "children", "-s", "dad", "-T", "sis,me")
	return path, hg
}

func TestInit(t *testing.T) {
	path := hgEnv(t)

	out := mustRunHG(t, "--graph", path, "init", "--id", "g1", "--label", "Demo", "--undirected")
	if !strings.Contains(out, "Created graph g1") {
		t.Errorf("unexpected output: %q", out)
	}

	var doc map[string]any
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read graph file: %v", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("graph file is not JSON: %v", err)
	}
	if doc["id"] != "g1" || doc["label"] != "Demo" || doc["directed"] != false {
		t.Errorf("graph header = %v", doc)
	}

	if _, err := runHG(t, "--graph", path, "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already-exists error, got %v", err)
	}
	mustRunHG(t, "--graph", path, "init", "--force", "--id", "g2")
}

func TestMissingGraphFile(t *testing.T) {
	path := hgEnv(t)
	_, err := runHG(t, "--graph", path, "add-node", "x")
	if err == nil || !strings.Contains(err.Error(), "hg init") {
		t.Errorf("expected hint to run hg init, got %v", err)
	}
}

func TestFamilyScenario(t *testing.T) {
	_, hg := familyFile(t)

	var sis map[string]any
	if err := json.Unmarshal([]byte(hg("show", "sis", "--json")), &sis); err != nil {
		t.Fatalf("show json: %v", err)
	}
	if md := sis["metadata"].(map[string]any); md["born"] != float64(0) {
		t.Errorf("sis metadata = %v, want schema default born=0", md)
	}

	var neighbors []string
	if err := json.Unmarshal([]byte(hg("neighbors", "sis", "--json")), &neighbors); err != nil {
		t.Fatalf("neighbors json: %v", err)
	}
	if !reflect.DeepEqual(neighbors, []string{"dad", "me"}) {
		t.Errorf("neighbors(sis) = %v", neighbors)
	}

	for _, tc := range []struct {
		node, direction string
		want            int
	}{
		{"me", "in", 1},
		{"me", "out", 0},
		{"dad", "in", 0},
		{"dad", "out", 1},
		{"dad", "all", 1},
	} {
		var edges []model.Hyperedge
		if err := json.Unmarshal([]byte(hg("edges", tc.node, "-d", tc.direction, "--json")), &edges); err != nil {
			t.Fatalf("edges json: %v", err)
		}
		if len(edges) != tc.want {
			t.Errorf("edges %s -d %s = %d, want %d", tc.node, tc.direction, len(edges), tc.want)
		}
	}

	var kids map[string]any
	if err := json.Unmarshal([]byte(hg("show", "kids", "--json")), &kids); err != nil {
		t.Fatalf("show edge json: %v", err)
	}
	if kids["relation"] != "children" || !reflect.DeepEqual(kids["metadata"], map[string]any{"adopted": false}) {
		t.Errorf("kids = %v", kids)
	}

	out := hg("show", "dad")
	for _, want := range []string{"ID:        dad", "person (Person v1.0)", "born = 1960", "kids"} {
		if !strings.Contains(out, want) {
			t.Errorf("show dad missing %q:\n%s", want, out)
		}
	}
}

func TestSetAndRemove(t *testing.T) {
	path, hg := familyFile(t)
	base := []string{"--graph", path, "--types", "testdata/family.yaml"}

	hg("set", "me", "-m", "nickname=kid", "-m", "born=1990")
	var me map[string]any
	if err := json.Unmarshal([]byte(hg("show", "me", "--json")), &me); err != nil {
		t.Fatalf("show json: %v", err)
	}
	if md := me["metadata"].(map[string]any); md["nickname"] != "kid" || md["born"] != float64(1990) {
		t.Errorf("me metadata = %v", md)
	}

	hg("set", "kids", "-m", "adopted=true")
	if _, err := runHG(t, append(base, "set", "kids", "-m", "adopted=maybe")...); !errors.Is(err, model.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := runHG(t, append(base, "set", "nobody", "-m", "x=1")...); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}

	var removed struct {
		ID    string   `json:"id"`
		Edges []string `json:"removed_edges"`
	}
	if err := json.Unmarshal([]byte(hg("rm-node", "dad", "--json")), &removed); err != nil {
		t.Fatalf("rm-node json: %v", err)
	}
	if removed.ID != "dad" || !reflect.DeepEqual(removed.Edges, []string{"kids"}) {
		t.Errorf("rm-node = %+v", removed)
	}
	if _, err := runHG(t, append(base, "show", "kids")...); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("cascaded edge still present: %v", err)
	}
	if _, err := runHG(t, append(base, "rm-edge", "kids")...); err == nil {
		t.Error("expected error removing a missing edge")
	}
}

func TestAddErrors(t *testing.T) {
	path, _ := familyFile(t)
	base := []string{"--graph", path, "--types", "testdata/family.yaml"}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"duplicate node", []string{"add-node", "--id", "dad"}, model.ErrDuplicateID},
		{"duplicate edge", []string{"add-edge", "--id", "kids", "-s", "dad"}, model.ErrDuplicateID},
		{"unknown endpoint", []string{"add-edge", "-s", "dad", "-T", "ghost"}, model.ErrUnknownNode},
		{"schema type mismatch", []string{"add-node", "-t", "person", "-m", "born=soon"}, model.ErrTypeMismatch},
		{"bad metadata", []string{"add-node", "-m", "novalue"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runHG(t, append(append([]string{}, base...), tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}

	// Failed mutations leave the file untouched.
	var snap model.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 3 || len(snap.Hyperedges) != 1 {
		t.Errorf("graph changed: %d nodes, %d edges", len(snap.Nodes), len(snap.Hyperedges))
	}
}

func TestGeneratedIDs(t *testing.T) {
	path := hgEnv(t)
	t.Setenv("HYPERGRAPH_ID_STRATEGY", "nanoid")
	t.Setenv("HYPERGRAPH_ID_PREFIX", "n-")

	mustRunHG(t, "--graph", path, "init")
	var created struct{ ID string }
	if err := json.Unmarshal([]byte(mustRunHG(t, "--graph", path, "add-node", "--json", "Anon")), &created); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.ID, "n-") {
		t.Errorf("generated id %q lacks prefix", created.ID)
	}
}

func TestExportImportValidate(t *testing.T) {
	path, hg := familyFile(t)
	dir := filepath.Dir(path)

	var before struct{ Digest string }
	if err := json.Unmarshal([]byte(hg("validate", "--json")), &before); err != nil {
		t.Fatalf("validate json: %v", err)
	}

	jsonl := filepath.Join(dir, "out.jsonl")
	hg("export", "-o", jsonl)
	f, err := os.Open(jsonl)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, h, err := snapshot.ReadJSONL(f)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if h.Digest != before.Digest || len(snap.Nodes) != 3 {
		t.Errorf("export header = %+v", h)
	}

	stdout := hg("export", "--format", "json")
	if !json.Valid([]byte(stdout)) {
		t.Errorf("export to stdout is not JSON: %q", stdout)
	}

	imported := filepath.Join(dir, "copy.json")
	out := mustRunHG(t, "--graph", imported, "--types", "testdata/family.yaml", "import", jsonl)
	if !strings.Contains(out, "Imported 3 nodes and 1 edges") {
		t.Errorf("import output = %q", out)
	}
	var after struct{ Digest string }
	if err := json.Unmarshal([]byte(mustRunHG(t, "--graph", imported, "--types", "testdata/family.yaml", "validate", "--json")), &after); err != nil {
		t.Fatal(err)
	}
	if after.Digest != before.Digest {
		t.Errorf("digest changed across export/import: %s vs %s", before.Digest, after.Digest)
	}

	if _, err := runHG(t, "--graph", imported, "import", jsonl); err == nil {
		t.Error("expected import to refuse overwriting")
	}
}

func TestSyncOnce(t *testing.T) {
	path, hg := familyFile(t)
	target := filepath.Join(filepath.Dir(path), "backup", "graph.jsonl")

	if _, err := runHG(t, "--graph", path, "sync"); err == nil {
		t.Error("expected error without destinations")
	}
	hg("sync", "--file", target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sync target missing: %v", err)
	}
	snap, _, err := snapshot.ReadJSONL(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if snap.ID != "fam" || len(snap.Hyperedges) != 1 {
		t.Errorf("synced snapshot = %+v", snap)
	}
}

func TestTypes(t *testing.T) {
	path := hgEnv(t)

	// Without a graph file the library is shown as it would register.
	out := mustRunHG(t, "--graph", path, "--types", "testdata/family.yaml", "types")
	for _, want := range []string{"Node types:", "person", "born:number", "Edge relations:", "children"} {
		if !strings.Contains(out, want) {
			t.Errorf("types output missing %q:\n%s", want, out)
		}
	}

	var listed struct {
		NodeTypes     map[string]model.TypeDescriptor `json:"node_types"`
		EdgeRelations map[string]model.TypeDescriptor `json:"edge_relations"`
	}
	if err := json.Unmarshal([]byte(mustRunHG(t, "--graph", path, "--types", "testdata/family.yaml", "types", "--json")), &listed); err != nil {
		t.Fatal(err)
	}
	if listed.NodeTypes["person"].Name != "Person" || !listed.EdgeRelations["children"].Strict {
		t.Errorf("types = %+v", listed)
	}
	if _, ok := listed.NodeTypes[""]; !ok {
		t.Error("default node type missing")
	}

	toml := mustRunHG(t, "--graph", path, "--types", "testdata/family.yaml", "types", "--encode", "toml")
	if !strings.Contains(toml, "[node_types.person]") {
		t.Errorf("toml encoding:\n%s", toml)
	}
}

func TestHelpGroups(t *testing.T) {
	hgEnv(t)
	out := mustRunHG(t, "--help")
	for _, want := range []string{"Graph:", "Queries:", "System:", "add-edge", "--graph string"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}
