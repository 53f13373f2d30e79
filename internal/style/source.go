// Package style provides the read-only style lookups that variable
// resolution runs against.
package style

import (
	"maps"
	"strings"
	"sync"
)

// Source exposes the current value of custom properties.
// An empty string means the property is not set.
type Source interface {
	PropertyValue(name string) string
}

// SourceFunc adapts a plain function to the Source interface
type SourceFunc func(name string) string

// PropertyValue calls f(name)
func (f SourceFunc) PropertyValue(name string) string {
	return f(name)
}

// MapSource is an in-memory Source that may be mutated between frames.
// It is safe for concurrent use. The zero value is an empty source.
type MapSource struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapSource creates a MapSource seeded with values
func NewMapSource(values map[string]string) *MapSource {
	m := &MapSource{values: make(map[string]string, len(values))}
	for name, value := range values {
		m.values[name] = value
	}
	return m
}

// PropertyValue returns the trimmed value of name, or "" when unset
func (m *MapSource) PropertyValue(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return strings.TrimSpace(m.values[name])
}

// Set stores value under name
func (m *MapSource) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[name] = value
}

// Delete removes name
func (m *MapSource) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
}

// Replace swaps the whole property set in one step, so readers never observe
// a half-applied reload
func (m *MapSource) Replace(values map[string]string) {
	next := make(map[string]string, len(values))
	maps.Copy(next, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = next
}

// Snapshot returns a copy of all declared properties
func (m *MapSource) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// Len returns the number of declared properties
func (m *MapSource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Layered consults each Source in order and returns the first non-empty value.
// Put the most specific source (inline styles) first.
type Layered []Source

// PropertyValue returns the first non-empty value across the layers
func (l Layered) PropertyValue(name string) string {
	for _, src := range l {
		if src == nil {
			continue
		}
		if v := strings.TrimSpace(src.PropertyValue(name)); v != "" {
			return v
		}
	}
	return ""
}
