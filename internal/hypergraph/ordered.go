package hypergraph

import "slices"

// ordered is a string-keyed map that remembers insertion order.
type ordered[V any] struct {
	keys []string
	vals map[string]V
}

func newOrdered[V any]() *ordered[V] {
	return &ordered[V]{vals: make(map[string]V)}
}

func (m *ordered[V]) get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *ordered[V]) has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// set inserts or replaces. A replaced key keeps its original position.
func (m *ordered[V]) set(key string, v V) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *ordered[V]) delete(key string) bool {
	if _, ok := m.vals[key]; !ok {
		return false
	}
	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

func (m *ordered[V]) len() int {
	return len(m.keys)
}

// values returns the values in insertion order.
func (m *ordered[V]) values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}
