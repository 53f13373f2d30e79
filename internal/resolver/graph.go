package resolver

import (
	"fmt"
	"sort"

	"bennypowers.dev/varmotion/internal/collections"
	"bennypowers.dev/varmotion/internal/parser/varref"
)

// DependencyGraph represents a directed graph of custom property dependencies
type DependencyGraph struct {
	// adjacency list: property name -> properties its value references
	dependencies map[string][]string
	// reverse lookup: property name -> properties whose values reference it
	dependents map[string][]string
	// declared property names, sorted so traversal order is stable
	nodes    []string
	declared collections.Set[string]
}

// BuildDependencyGraph builds a dependency graph from declared custom properties.
// Every var() in a value counts as a dependency, including ones that only
// appear in fallbacks, matching how CSS decides a declaration is cyclic.
func BuildDependencyGraph(declarations map[string]string) *DependencyGraph {
	graph := &DependencyGraph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        make([]string, 0, len(declarations)),
		declared:     collections.NewSet[string](),
	}

	for name := range declarations {
		graph.nodes = append(graph.nodes, name)
		graph.declared.Add(name)
	}
	sort.Strings(graph.nodes)

	for _, name := range graph.nodes {
		deps := uniqueNames(varref.Names(declarations[name]))
		if len(deps) == 0 {
			continue
		}
		graph.dependencies[name] = deps
		for _, dep := range deps {
			graph.dependents[dep] = append(graph.dependents[dep], name)
		}
	}

	return graph
}

func uniqueNames(names []string) []string {
	seen := collections.NewSet[string]()
	out := names[:0]
	for _, n := range names {
		if seen.Has(n) {
			continue
		}
		seen.Add(n)
		out = append(out, n)
	}
	return out
}

// Nodes returns the declared property names in sorted order
func (g *DependencyGraph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Dependencies returns the properties that name references
func (g *DependencyGraph) Dependencies(name string) []string {
	if deps, ok := g.dependencies[name]; ok {
		return deps
	}
	return []string{}
}

// Dependents returns the properties whose values reference name
func (g *DependencyGraph) Dependents(name string) []string {
	if deps, ok := g.dependents[name]; ok {
		return deps
	}
	return []string{}
}

// HasCycle returns true if the graph contains a circular dependency
func (g *DependencyGraph) HasCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns the cycle path if one exists, or nil if no cycle.
// The path starts and ends with the same property.
func (g *DependencyGraph) FindCycle() []string {
	visited := collections.NewSet[string]()
	onStack := collections.NewSet[string]()

	for _, node := range g.nodes {
		if cycle := g.findCycleDFS(node, visited, onStack, nil); cycle != nil {
			return cycle
		}
	}

	return nil
}

func (g *DependencyGraph) findCycleDFS(node string, visited, onStack collections.Set[string], path []string) []string {
	if onStack.Has(node) {
		for i, n := range path {
			if n == node {
				return append(append([]string(nil), path[i:]...), node)
			}
		}
		panic(fmt.Sprintf("cycle detection invariant violated: %q on stack but not in path %v", node, path))
	}
	if visited.Has(node) {
		return nil
	}

	visited.Add(node)
	onStack.Add(node)
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, onStack, path); cycle != nil {
			return cycle
		}
	}

	onStack.Remove(node)
	return nil
}

// CyclicNodes returns every declared property that sits on some cycle.
// Uses Tarjan's strongly connected components: a component with more than
// one member, or a single member that references itself, is cyclic.
func (g *DependencyGraph) CyclicNodes() collections.Set[string] {
	t := &tarjan{
		graph:   g,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: collections.NewSet[string](),
		cyclic:  collections.NewSet[string](),
	}
	for _, node := range g.nodes {
		if _, seen := t.index[node]; !seen {
			t.connect(node)
		}
	}
	return t.cyclic
}

type tarjan struct {
	graph   *DependencyGraph
	next    int
	index   map[string]int
	low     map[string]int
	stack   []string
	onStack collections.Set[string]
	cyclic  collections.Set[string]
}

func (t *tarjan) connect(node string) {
	t.index[node] = t.next
	t.low[node] = t.next
	t.next++
	t.stack = append(t.stack, node)
	t.onStack.Add(node)

	selfLoop := false
	for _, dep := range t.graph.dependencies[node] {
		if dep == node {
			selfLoop = true
		}
		if _, seen := t.index[dep]; !seen {
			t.connect(dep)
			t.low[node] = min(t.low[node], t.low[dep])
		} else if t.onStack.Has(dep) {
			t.low[node] = min(t.low[node], t.index[dep])
		}
	}

	if t.low[node] != t.index[node] {
		return
	}

	var component []string
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack.Remove(top)
		component = append(component, top)
		if top == node {
			break
		}
	}

	if len(component) > 1 || selfLoop {
		t.cyclic.Add(component...)
	}
}

// CycleThrough returns a dependency path that starts and ends at name,
// or nil when name is not on a cycle
func (g *DependencyGraph) CycleThrough(name string) []string {
	visited := collections.NewSet[string]()
	var walk func(node string, path []string) []string
	walk = func(node string, path []string) []string {
		for _, dep := range g.dependencies[node] {
			if dep == name {
				return append(append([]string(nil), path...), name)
			}
			if visited.Has(dep) {
				continue
			}
			visited.Add(dep)
			if found := walk(dep, append(path, dep)); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(name, []string{name})
}

// TopologicalSort returns declared properties in dependency order
// (dependencies first). Referenced but undeclared names are omitted.
// Returns a CircularReferenceError if the graph contains a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, NewCircularReferenceError(cycle)
	}

	visited := collections.NewSet[string]()
	result := make([]string, 0, len(g.nodes))

	for _, node := range g.nodes {
		if !visited.Has(node) {
			g.topologicalSortDFS(node, visited, &result)
		}
	}

	return result, nil
}

func (g *DependencyGraph) topologicalSortDFS(node string, visited collections.Set[string], stack *[]string) {
	visited.Add(node)

	for _, dep := range g.dependencies[node] {
		if !visited.Has(dep) {
			g.topologicalSortDFS(dep, visited, stack)
		}
	}

	if g.declared.Has(node) {
		*stack = append(*stack, node)
	}
}
