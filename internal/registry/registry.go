// Package registry maps node-type and edge-relation tags to their type
// configs, with a mandatory fallback under the empty tag.
package registry

import (
	"fmt"
	"sort"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// DefaultTag is the tag of the fallback entry every registry carries.
const DefaultTag = ""

// Registry holds the type configs registered for one entity kind.
// It is owned by a single graph and is not safe for concurrent use.
type Registry struct {
	kind    model.EntityKind
	entries map[string]*model.TypeConfig
}

// New returns a registry for kind with the schema-less default installed.
func New(kind model.EntityKind) (*Registry, error) {
	def, err := model.NewTypeConfig(kind, model.DefaultDescriptor(kind))
	if err != nil {
		return nil, fmt.Errorf("registry: default %s type: %w", kind, err)
	}
	return &Registry{
		kind:    kind,
		entries: map[string]*model.TypeConfig{DefaultTag: def},
	}, nil
}

// Kind returns the entity kind the registry configures.
func (r *Registry) Kind() model.EntityKind {
	return r.kind
}

// Register builds a config from desc and stores it under tag, replacing any
// earlier registration. The registry is unchanged if desc is rejected.
func (r *Registry) Register(tag string, desc model.TypeDescriptor) (*model.TypeConfig, error) {
	tc, err := model.NewTypeConfig(r.kind, desc)
	if err != nil {
		return nil, err
	}
	r.entries[tag] = tc
	return tc, nil
}

// Resolve returns the config registered under tag, or the default entry.
func (r *Registry) Resolve(tag string) *model.TypeConfig {
	if tc, ok := r.entries[tag]; ok {
		return tc
	}
	return r.entries[DefaultTag]
}

// Lookup returns the config registered under exactly tag.
func (r *Registry) Lookup(tag string) (*model.TypeConfig, bool) {
	tc, ok := r.entries[tag]
	return tc, ok
}

// Unregister removes tag. The default entry cannot be removed.
func (r *Registry) Unregister(tag string) bool {
	if tag == DefaultTag {
		return false
	}
	if _, ok := r.entries[tag]; !ok {
		return false
	}
	delete(r.entries, tag)
	return true
}

// Tags returns every registered tag, sorted, including the default.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered tags, including the default.
func (r *Registry) Len() int {
	return len(r.entries)
}
