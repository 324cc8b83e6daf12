// Package typedef loads libraries of node types and edge relations from TOML
// or YAML descriptor files.
//
// A descriptor file has two sections keyed by tag:
//
//	[node_types.task]
//	version = "0.1"
//	strict = true
//
//	[[node_types.task.fields]]
//	name = "status"
//	type = "string"
//	default = "todo"
//
//	[edge_relations.owns]
//	name = "Owns"
package typedef

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// Format is a descriptor file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported descriptor file %q (want .toml, .yaml or .yml)", path)
}

// entry is one descriptor as written in a file. Kind is implied by the
// section unless given explicitly.
type entry struct {
	Kind    model.EntityKind `toml:"kind,omitempty" yaml:"kind,omitempty"`
	Name    string           `toml:"name,omitempty" yaml:"name,omitempty"`
	Version string           `toml:"version,omitempty" yaml:"version,omitempty"`
	Strict  bool             `toml:"strict,omitempty" yaml:"strict,omitempty"`
	Fields  model.Schema     `toml:"fields,omitempty" yaml:"fields,omitempty"`
}

type file struct {
	NodeTypes     map[string]entry `toml:"node_types,omitempty" yaml:"node_types,omitempty"`
	EdgeRelations map[string]entry `toml:"edge_relations,omitempty" yaml:"edge_relations,omitempty"`
}

// Library is a set of node-type and edge-relation descriptors keyed by tag.
type Library struct {
	NodeTypes     map[string]model.TypeDescriptor
	EdgeRelations map[string]model.TypeDescriptor

	// Sources lists the files the library was loaded from, in load order.
	Sources []string
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		NodeTypes:     make(map[string]model.TypeDescriptor),
		EdgeRelations: make(map[string]model.TypeDescriptor),
	}
}

// Parse decodes a descriptor document and checks every descriptor it declares.
func Parse(data []byte, format Format) (*Library, error) {
	var f file
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", format)
	}

	lib := NewLibrary()
	for tag, e := range f.NodeTypes {
		lib.NodeTypes[tag] = e.descriptor(model.KindNode, tag)
	}
	for tag, e := range f.EdgeRelations {
		lib.EdgeRelations[tag] = e.descriptor(model.KindEdge, tag)
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (e entry) descriptor(kind model.EntityKind, tag string) model.TypeDescriptor {
	d := model.TypeDescriptor{
		Kind:    e.Kind,
		Name:    e.Name,
		Version: e.Version,
		Strict:  e.Strict,
		Schema:  e.Fields,
	}
	if d.Kind == "" {
		d.Kind = kind
	}
	if d.Name == "" {
		d.Name = tag
	}
	return d
}

// LoadFile reads one descriptor file.
func LoadFile(path string) (*Library, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor file: %w", err)
	}
	lib, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lib.Sources = []string{path}
	return lib, nil
}

// LoadGlob loads every descriptor file matching pattern, which may use **.
// Files are merged in sorted path order, so a tag declared in several files
// takes its last definition. A pattern that matches nothing is an error.
func LoadGlob(pattern string) (*Library, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad descriptor pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no descriptor files match %q", pattern)
	}
	sort.Strings(matches)

	lib := NewLibrary()
	for _, path := range matches {
		if _, err := FormatFromPath(path); err != nil {
			continue
		}
		l, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		lib.Merge(l)
	}
	if len(lib.Sources) == 0 {
		return nil, fmt.Errorf("no .toml or .yaml descriptor files match %q", pattern)
	}
	return lib, nil
}

// Merge copies every descriptor of other into l, replacing tags l already has.
func (l *Library) Merge(other *Library) {
	for tag, d := range other.NodeTypes {
		l.NodeTypes[tag] = d
	}
	for tag, d := range other.EdgeRelations {
		l.EdgeRelations[tag] = d
	}
	l.Sources = append(l.Sources, other.Sources...)
}

// Len returns the number of descriptors in the library.
func (l *Library) Len() int {
	return len(l.NodeTypes) + len(l.EdgeRelations)
}

// Validate builds a type config for every descriptor without registering it.
func (l *Library) Validate() error {
	for _, tag := range sortedTags(l.NodeTypes) {
		if _, err := model.NewTypeConfig(model.KindNode, l.NodeTypes[tag]); err != nil {
			return fmt.Errorf("node type %q: %w", tag, err)
		}
	}
	for _, tag := range sortedTags(l.EdgeRelations) {
		if _, err := model.NewTypeConfig(model.KindEdge, l.EdgeRelations[tag]); err != nil {
			return fmt.Errorf("edge relation %q: %w", tag, err)
		}
	}
	return nil
}

// Apply registers every node type and edge relation on g in tag order.
// It stops at the first rejected descriptor.
func (l *Library) Apply(g *hypergraph.Graph) error {
	for _, tag := range sortedTags(l.NodeTypes) {
		if err := g.RegisterNodeType(tag, l.NodeTypes[tag]); err != nil {
			return fmt.Errorf("node type %q: %w", tag, err)
		}
	}
	for _, tag := range sortedTags(l.EdgeRelations) {
		if err := g.RegisterEdgeRelation(tag, l.EdgeRelations[tag]); err != nil {
			return fmt.Errorf("edge relation %q: %w", tag, err)
		}
	}
	return nil
}

// Encode writes the library as a descriptor document.
func (l *Library) Encode(w io.Writer, format Format) error {
	f := file{
		NodeTypes:     make(map[string]entry, len(l.NodeTypes)),
		EdgeRelations: make(map[string]entry, len(l.EdgeRelations)),
	}
	for tag, d := range l.NodeTypes {
		f.NodeTypes[tag] = toEntry(d, model.KindNode)
	}
	for tag, d := range l.EdgeRelations {
		f.EdgeRelations[tag] = toEntry(d, model.KindEdge)
	}

	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown descriptor format %q", format)
}

func toEntry(d model.TypeDescriptor, section model.EntityKind) entry {
	e := entry{Name: d.Name, Version: d.Version, Strict: d.Strict, Fields: d.Schema}
	if d.Kind != section {
		e.Kind = d.Kind
	}
	return e
}

func sortedTags(m map[string]model.TypeDescriptor) []string {
	tags := make([]string, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
