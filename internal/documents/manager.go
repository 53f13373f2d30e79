package documents

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/parser/asimonim"
	"bennypowers.dev/varmotion/internal/parser/css"
	"bennypowers.dev/varmotion/internal/resolver"
	"bennypowers.dev/varmotion/internal/style"
)

// Usage is a var() call that cannot be satisfied by any loaded declaration
type Usage struct {
	Path      string
	Reference css.Reference
}

// Manager holds the loaded documents and serves their computed custom
// properties as a style.Source. Documents cascade in load order: a later
// document's declaration overrides an earlier one's.
type Manager struct {
	values *style.MapSource

	mu        sync.RWMutex
	documents map[string]*Document
	order     []string
	declared  map[string]string
	problems  []error
}

// NewManager creates an empty document manager
func NewManager() *Manager {
	return &Manager{
		values:    style.NewMapSource(nil),
		documents: make(map[string]*Document),
		declared:  make(map[string]string),
	}
}

// PropertyValue returns the computed value of a custom property
func (m *Manager) PropertyValue(name string) string {
	return m.values.PropertyValue(name)
}

// Get retrieves a document by path
func (m *Manager) Get(path string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[clean(path)]
}

// GetAll returns all documents in load order
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.order))
	for _, path := range m.order {
		docs = append(docs, m.documents[path])
	}
	return docs
}

// Paths returns the paths of all documents in load order
func (m *Manager) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Open adds a document from content already in memory
func (m *Manager) Open(path, languageID string, version int, content string, opts asimonim.Options) error {
	path = clean(path)
	doc, err := NewDocument(path, languageID, version, content, opts)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[path]; !exists {
		m.order = append(m.order, path)
	}
	m.documents[path] = doc
	m.recompute()
	return nil
}

// LoadFile reads and opens a file, choosing the parser from its extension
func (m *Manager) LoadFile(path string, opts asimonim.Options) error {
	languageID, ok := LanguageForPath(path)
	if !ok {
		return fmt.Errorf("unsupported file type: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	log.Debug("Loading %s as %s", path, languageID)
	return m.Open(path, languageID, 1, string(content), opts)
}

// Reload re-reads an open document from disk. On failure the previous
// content stays in effect.
func (m *Manager) Reload(path string) error {
	path = clean(path)

	m.mu.RLock()
	doc, exists := m.documents[path]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("document not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return m.Update(path, doc.Version()+1, string(content))
}

// Update replaces an open document's content
func (m *Manager) Update(path string, version int, content string) error {
	path = clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[path]
	if !exists {
		return fmt.Errorf("document not found: %s", path)
	}

	if err := doc.SetContent(content, version); err != nil {
		return fmt.Errorf("failed to set document content: %w", err)
	}
	m.recompute()
	return nil
}

// Close removes a document
func (m *Manager) Close(path string) error {
	path = clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[path]; !exists {
		return fmt.Errorf("document not found: %s", path)
	}

	delete(m.documents, path)
	m.order = slices.DeleteFunc(m.order, func(p string) bool { return p == path })
	m.recompute()
	return nil
}

// Declarations returns the cascaded custom properties as declared, before
// var() substitution
func (m *Manager) Declarations() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.declared)
}

// Computed returns every custom property after var() substitution
func (m *Manager) Computed() map[string]string {
	return m.values.Snapshot()
}

// Problems returns the declarations dropped by the last recompute, such as
// members of a reference cycle
func (m *Manager) Problems() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.problems)
}

// Graph builds the dependency graph of the cascaded declarations
func (m *Manager) Graph() *resolver.DependencyGraph {
	return resolver.BuildDependencyGraph(m.Declarations())
}

// Unresolved returns the var() calls in stylesheet documents that name an
// undeclared property and carry no fallback
func (m *Manager) Unresolved() []Usage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var usages []Usage
	for _, path := range m.order {
		for _, ref := range m.documents[path].References() {
			if ref.Fallback != nil {
				continue
			}
			if _, ok := m.declared[ref.Name]; ok {
				continue
			}
			usages = append(usages, Usage{Path: path, Reference: ref})
		}
	}
	return usages
}

// recompute cascades the documents and publishes the computed values in
// one swap. Callers hold m.mu for writing.
func (m *Manager) recompute() {
	declared := make(map[string]string)
	for _, path := range m.order {
		maps.Copy(declared, m.documents[path].Declarations())
	}

	computed, problems := resolver.Compute(declared)
	for _, err := range problems {
		log.Warn("%v", err)
	}

	m.declared = declared
	m.problems = problems
	m.values.Replace(computed)
	log.Debug("Computed %d of %d custom properties from %d documents", len(computed), len(declared), len(m.order))
}

func clean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
