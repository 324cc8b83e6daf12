package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
	return ts
}

// familyGraph builds dad -> {sis, me} plus a lone node, in that insertion order.
func familyGraph(t *testing.T) *hypergraph.Graph {
	t.Helper()
	g, err := hypergraph.New(hypergraph.Config{ID: "fam", Label: "Family", Metadata: model.Metadata{"source": "census"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, in := range []hypergraph.NodeInput{
		{ID: "dad", Label: "Dad", Metadata: model.Metadata{"born": 1960}},
		{ID: "sis", Label: "Sis"},
		{ID: "me", Label: "Me"},
		{ID: "aunt", Label: "Aunt"},
	} {
		if _, err := g.AddNode(in); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if _, err := g.AddEdge(hypergraph.EdgeInput{
		ID: "children", Source: model.IDList{"dad"}, Target: model.IDList{"sis", "me"}, Relation: "children",
	}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func familySnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	snap, err := familyGraph(t).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	return snap
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"jsonl", FormatJSONL, false},
		{"yaml", "", true},
		{"", "", true},
	} {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
	if FormatFromPath("out/graph.JSON") != FormatJSON || FormatFromPath("graph.jsonl") != FormatJSONL {
		t.Error("FormatFromPath misclassified")
	}
}

func TestWriteJSONL(t *testing.T) {
	ts := fixedClock(t)
	snap := familySnapshot(t)

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, snap); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	// 1 header + 4 nodes + 1 edge
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h Header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != FormatVersion || h.Type != "header" || h.Graph != "fam" || h.Label != "Family" {
		t.Errorf("unexpected header: %+v", h)
	}
	if h.NodeCount != 4 || h.EdgeCount != 1 {
		t.Errorf("header counts: node=%d edge=%d", h.NodeCount, h.EdgeCount)
	}
	if !h.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", h.Timestamp, ts)
	}
	if want, _ := Digest(snap); h.Digest != want {
		t.Errorf("Digest = %q, want %q", h.Digest, want)
	}

	// Records keep insertion order.
	wantIDs := []string{"dad", "sis", "me", "aunt", "children"}
	for i, line := range lines[1:] {
		var rec struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		wantType := "node"
		if i == 4 {
			wantType = "edge"
		}
		if rec.Type != wantType || rec.Data.ID != wantIDs[i] {
			t.Errorf("line %d = %s/%s, want %s/%s", i+1, rec.Type, rec.Data.ID, wantType, wantIDs[i])
		}
	}
}

func TestReadJSONL_RoundTrip(t *testing.T) {
	snap := familySnapshot(t)
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, snap); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	got, h, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if h.NodeCount != 4 {
		t.Errorf("NodeCount = %d", h.NodeCount)
	}
	if got.ID != "fam" || got.Label != "Family" || !got.Directed || got.Metadata["source"] != "census" {
		t.Errorf("graph header = %+v", got)
	}
	if len(got.Nodes) != 4 || got.Nodes[0].ID != "dad" || got.Nodes[3].ID != "aunt" {
		t.Errorf("nodes = %v", got.Nodes)
	}
	if e := got.Hyperedges[0]; e.ID != "children" || len(e.Nodes) != 3 {
		t.Errorf("edge = %+v", e)
	}
}

func TestReadJSONL_Errors(t *testing.T) {
	var good bytes.Buffer
	if err := WriteJSONL(&good, familySnapshot(t)); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	lines := nonEmptyLines(good.String())

	tampered := strings.Replace(good.String(), `"label":"Aunt"`, `"label":"Uncle"`, 1)
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"empty", "", nil},
		{"no header", lines[1] + "\n", nil},
		{"bad version", `{"version":"9","type":"header"}` + "\n", nil},
		{"unknown record", lines[0] + "\n" + `{"type":"widget","data":{}}` + "\n", nil},
		{"count mismatch", strings.Join(lines[:len(lines)-1], "\n"), nil},
		{"tampered", tampered, ErrDigestMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadJSONL(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	snap := familySnapshot(t)
	var compact, pretty bytes.Buffer
	if err := WriteJSON(&compact, snap, ""); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := WriteJSON(&pretty, snap, "  "); err != nil {
		t.Fatalf("WriteJSON indent: %v", err)
	}
	if len(nonEmptyLines(compact.String())) != 1 {
		t.Errorf("compact output spans lines:\n%s", compact.String())
	}
	if !strings.Contains(pretty.String(), "\n  \"nodes\": {") {
		t.Errorf("indented output missing nodes object:\n%s", pretty.String())
	}

	var back model.Snapshot
	if err := json.Unmarshal(compact.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back.Nodes) != 4 || back.Nodes[2].ID != "me" {
		t.Errorf("decoded nodes = %v", back.Nodes)
	}
}

func TestExport(t *testing.T) {
	src := GraphSource{Graph: familyGraph(t)}
	ctx := context.Background()

	data, err := Export(ctx, src, FormatJSONL)
	if err != nil {
		t.Fatalf("Export jsonl: %v", err)
	}
	if n := len(nonEmptyLines(string(data))); n != 6 {
		t.Errorf("jsonl lines = %d, want 6", n)
	}
	data, err = Export(ctx, src, FormatJSON)
	if err != nil {
		t.Fatalf("Export json: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("invalid json: %s", data)
	}
	if _, err := Export(ctx, src, Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Export(canceled, src, FormatJSON); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
