package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEntityKind_IsValid(t *testing.T) {
	for _, tc := range []struct {
		kind EntityKind
		want bool
	}{
		{KindGraph, true},
		{KindNode, true},
		{KindEdge, true},
		{EntityKind(""), false},
		{EntityKind("vertex"), false},
	} {
		if got := tc.kind.IsValid(); got != tc.want {
			t.Errorf("EntityKind(%q).IsValid() = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestEntityKind_DefaultTypeName(t *testing.T) {
	for _, tc := range []struct {
		kind EntityKind
		want string
	}{
		{KindGraph, "Graph"},
		{KindNode, "Node"},
		{KindEdge, "Hyperedge"},
		{EntityKind("bogus"), ""},
	} {
		if got := tc.kind.DefaultTypeName(); got != tc.want {
			t.Errorf("EntityKind(%q).DefaultTypeName() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestFieldType_IsWellKnown(t *testing.T) {
	for _, tc := range []struct {
		typ  FieldType
		want bool
	}{
		{FieldString, true},
		{FieldNumber, true},
		{FieldBoolean, true},
		{FieldArray, true},
		{FieldObject, true},
		{FieldType("date"), false},
	} {
		if got := tc.typ.IsWellKnown(); got != tc.want {
			t.Errorf("FieldType(%q).IsWellKnown() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestDescriptorBuilders(t *testing.T) {
	base := NodeDescriptor("Project")
	d := base.WithVersion("0.1").WithStrict(true).WithField("budget", FieldNumber, 0).WithField("deadline", FieldString, "")
	if len(base.Schema) != 0 {
		t.Errorf("builder mutated receiver: %v", base.Schema)
	}
	if got := d.Schema.Names(); !reflect.DeepEqual(got, []string{"budget", "deadline"}) {
		t.Errorf("Names() = %v", got)
	}
	if !d.Strict || d.Version != "0.1" || d.Kind != KindNode {
		t.Errorf("descriptor = %+v", d)
	}
}

func TestDefaultDescriptor(t *testing.T) {
	d := DefaultDescriptor(KindEdge)
	if d.Kind != KindEdge || d.Name != "Hyperedge" || d.Strict || len(d.Schema) != 0 {
		t.Errorf("DefaultDescriptor(edge) = %+v", d)
	}
}

func TestNewHyperedge_DerivesNodes(t *testing.T) {
	src := []string{"dad"}
	e := NewHyperedge("e1", "children", src, []string{"sis", "me", "sis"}, Metadata{})
	if !reflect.DeepEqual(e.Nodes, []string{"dad", "sis", "me", "sis"}) {
		t.Errorf("Nodes = %v", e.Nodes)
	}
	src[0] = "mom"
	if e.Source[0] != "dad" {
		t.Error("edge aliases caller's source slice")
	}
	if !e.HasSource("dad") || e.HasSource("me") || !e.HasTarget("me") || !e.Contains("sis") {
		t.Error("membership predicates disagree with lists")
	}
}

func TestNewHyperedge_NilListsEncodeEmpty(t *testing.T) {
	e := NewHyperedge("e1", "", nil, nil, Metadata{})
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"source":[]`) || !strings.Contains(string(data), `"nodes":[]`) {
		t.Errorf("encoded = %s", data)
	}
}

func TestIDList_UnmarshalJSON(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    IDList
		wantErr bool
	}{
		{`"dad"`, IDList{"dad"}, false},
		{`["sis","me"]`, IDList{"sis", "me"}, false},
		{`[]`, IDList{}, false},
		{`null`, nil, false},
		{`[1]`, nil, true},
		{`7`, nil, true},
	} {
		var got IDList
		err := json.Unmarshal([]byte(tc.in), &got)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Unmarshal(%s) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestSentinelErrors(t *testing.T) {
	for _, tc := range []struct {
		err      error
		sentinel error
	}{
		{&DuplicateIDError{Kind: KindNode, ID: "a"}, ErrDuplicateID},
		{&UnknownNodeError{ID: "a"}, ErrUnknownNode},
		{&UnknownEntityError{Kind: KindEdge, ID: "e"}, ErrUnknownEntity},
		{&TypeMismatchError{Field: "f", Expected: FieldString, Got: "number"}, ErrTypeMismatch},
		{&DescriptorError{Kind: KindNode, Name: "x"}, ErrInvalidTypeDescriptor},
	} {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false", tc.err, tc.sentinel)
		}
		if !strings.HasPrefix(tc.err.Error(), tc.sentinel.Error()) {
			t.Errorf("%q does not start with %q", tc.err.Error(), tc.sentinel.Error())
		}
	}
}
