package hypergraph

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

func TestNewNodeRef(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "a"})

	if _, err := NewNodeRef(nil, "a"); !errors.Is(err, model.ErrInvalidGraphReference) {
		t.Errorf("nil graph: expected ErrInvalidGraphReference, got %v", err)
	}
	if _, err := NewNodeRef(g, "ghost"); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("missing node: expected ErrUnknownEntity, got %v", err)
	}
	ref, err := NewNodeRef(g, "a")
	if err != nil {
		t.Fatalf("NewNodeRef: %v", err)
	}
	if ref.ID() != "a" || ref.Graph() != g {
		t.Errorf("ref = %q bound to %p", ref.ID(), ref.Graph())
	}
}

func TestNewEdgeRef(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "a"})
	mustAddEdge(t, g, EdgeInput{ID: "e", Source: model.IDList{"a"}})

	if _, err := NewEdgeRef(nil, "e"); !errors.Is(err, model.ErrInvalidGraphReference) {
		t.Errorf("nil graph: expected ErrInvalidGraphReference, got %v", err)
	}
	if _, err := NewEdgeRef(g, "ghost"); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("missing edge: expected ErrUnknownEntity, got %v", err)
	}
	ref, err := NewEdgeRef(g, "e")
	if err != nil {
		t.Fatalf("NewEdgeRef: %v", err)
	}
	cfg, err := ref.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.TypeName() != "Hyperedge" {
		t.Errorf("Config().TypeName() = %q", cfg.TypeName())
	}
}

func TestNodeRef_TracksRegistry(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "p", Type: "person"})
	ref, err := NewNodeRef(g, "p")
	if err != nil {
		t.Fatalf("NewNodeRef: %v", err)
	}

	desc := model.NodeDescriptor("Person").WithField("age", model.FieldNumber, 0)
	if err := g.RegisterNodeType("person", desc); err != nil {
		t.Fatalf("RegisterNodeType: %v", err)
	}
	cfg, _ := ref.Config()
	if cfg.TypeName() != "Person" {
		t.Errorf("Config().TypeName() = %q, want Person", cfg.TypeName())
	}

	// Read-mode sanitize applies the new schema's defaults on output only.
	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out model.Node
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Metadata["age"] != float64(0) {
		t.Errorf("encoded age = %v, want 0", out.Metadata["age"])
	}
	n, _ := ref.Node()
	if _, ok := n.Metadata["age"]; ok {
		t.Error("MarshalJSON mutated stored metadata")
	}
}

func TestNodeRef_MarshalMismatch(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "p", Type: "person", Metadata: model.Metadata{"age": "ten"}})
	ref, _ := NewNodeRef(g, "p")

	desc := model.NodeDescriptor("Person").WithField("age", model.FieldNumber, 0)
	if err := g.RegisterNodeType("person", desc); err != nil {
		t.Fatalf("RegisterNodeType: %v", err)
	}
	if _, err := json.Marshal(ref); !errors.Is(err, model.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestRef_AfterRemoval(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "a"})
	mustAddEdge(t, g, EdgeInput{ID: "e", Source: model.IDList{"a"}})
	nref, _ := NewNodeRef(g, "a")
	eref, _ := NewEdgeRef(g, "e")

	g.RemoveNode("a")

	if _, ok := nref.Node(); ok {
		t.Error("node ref still resolves after removal")
	}
	if _, ok := eref.Edge(); ok {
		t.Error("edge ref still resolves after cascade")
	}
	if _, err := json.Marshal(nref); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
	if err := eref.UpdateMetadata(model.Metadata{"x": 1}); !errors.Is(err, model.ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestEdgeRef_UpdateAndMarshal(t *testing.T) {
	g := newTestGraph(t)
	mustAddNode(t, g, NodeInput{ID: "a"})
	mustAddNode(t, g, NodeInput{ID: "b"})
	mustAddEdge(t, g, EdgeInput{ID: "e", Source: model.IDList{"a"}, Target: model.IDList{"b"}, Relation: "knows"})
	ref, _ := NewEdgeRef(g, "e")

	if err := ref.UpdateMetadata(model.Metadata{"since": "2001"}); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out model.Hyperedge
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Relation != "knows" || out.Metadata["since"] != "2001" {
		t.Errorf("decoded %+v", out)
	}
	if !reflect.DeepEqual(out.Nodes, []string{"a", "b"}) {
		t.Errorf("Nodes = %v", out.Nodes)
	}
}

func TestToJSON(t *testing.T) {
	g, err := New(Config{ID: "fam", Label: "Family", Metadata: model.Metadata{"v": 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, id := range []string{"me", "dad", "sis"} {
		mustAddNode(t, g, NodeInput{ID: id, Label: strings.ToUpper(id)})
	}
	mustAddEdge(t, g, EdgeInput{ID: "children", Source: model.IDList{"dad"}, Target: model.IDList{"sis", "me"}})

	snap, err := g.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if snap.ID != "fam" || snap.Label != "Family" || !snap.Directed {
		t.Errorf("snapshot header = %+v", snap)
	}
	if len(snap.Nodes) != 3 || len(snap.Hyperedges) != 1 {
		t.Fatalf("snapshot sizes = %d/%d", len(snap.Nodes), len(snap.Hyperedges))
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	// Keyed objects keep insertion order rather than sorting ids.
	me, dad, sis := strings.Index(s, `"me":`), strings.Index(s, `"dad":`), strings.Index(s, `"sis":`)
	if me < 0 || dad < 0 || sis < 0 || !(me < dad && dad < sis) {
		t.Errorf("node keys out of insertion order in %s", s)
	}
	if !strings.Contains(s, `"hyperedges":{"children":{`) {
		t.Errorf("hyperedges not keyed by id in %s", s)
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	g := newTestGraph(t)
	desc := model.NodeDescriptor("Person").WithStrict(true).WithField("age", model.FieldNumber, 0)
	if err := g.RegisterNodeType("person", desc); err != nil {
		t.Fatalf("RegisterNodeType: %v", err)
	}
	mustAddNode(t, g, NodeInput{ID: "a", Type: "person", Metadata: model.Metadata{"age": 7, "drop": true}})
	mustAddNode(t, g, NodeInput{ID: "b", Label: "plain", Metadata: model.Metadata{"k": "v"}})
	mustAddEdge(t, g, EdgeInput{ID: "ab", Source: model.IDList{"a"}, Target: model.IDList{"b", "b"}, Metadata: model.Metadata{"w": 2}})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	g2 := newTestGraph(t)
	if err := g2.RegisterNodeType("person", desc); err != nil {
		t.Fatalf("RegisterNodeType: %v", err)
	}
	for _, n := range snap.Nodes {
		mustAddNode(t, g2, NodeInput{ID: n.ID, Type: n.Type, Label: n.Label, Metadata: n.Metadata})
	}
	for _, e := range snap.Hyperedges {
		mustAddEdge(t, g2, EdgeInput{ID: e.ID, Source: e.Source, Target: e.Target, Relation: e.Relation, Metadata: e.Metadata})
	}

	data2, err := json.Marshal(g2)
	if err != nil {
		t.Fatalf("Marshal replay: %v", err)
	}
	var snap2 model.Snapshot
	if err := json.Unmarshal(data2, &snap2); err != nil {
		t.Fatalf("Unmarshal replay: %v", err)
	}
	if !reflect.DeepEqual(snap.Nodes, snap2.Nodes) {
		t.Errorf("nodes differ after replay:\n%s\n%s", data, data2)
	}
	if !reflect.DeepEqual(snap.Hyperedges, snap2.Hyperedges) {
		t.Errorf("hyperedges differ after replay:\n%s\n%s", data, data2)
	}
}
