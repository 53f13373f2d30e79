package resolver

import (
	"strings"

	"bennypowers.dev/varmotion/internal/collections"
	"bennypowers.dev/varmotion/internal/parser/varref"
)

// Compute substitutes var() references inside declared custom property values,
// the way a browser does before getComputedStyle reports them.
//
// Properties on a dependency cycle, and properties whose references cannot be
// satisfied by a declaration or fallback, are left out of the result. One
// error per dropped property is returned; the map is usable either way.
func Compute(declarations map[string]string) (map[string]string, []error) {
	graph := BuildDependencyGraph(declarations)
	c := &computer{
		graph:        graph,
		declarations: declarations,
		cyclic:       graph.CyclicNodes(),
		computed:     make(map[string]string, len(declarations)),
		invalid:      collections.NewSet[string](),
	}

	for _, name := range graph.Nodes() {
		c.compute(name)
	}

	return c.computed, c.errs
}

type computer struct {
	graph        *DependencyGraph
	declarations map[string]string
	cyclic       collections.Set[string]
	computed     map[string]string
	invalid      collections.Set[string]
	errs         []error
}

// compute returns the substituted value of name and whether it is usable
func (c *computer) compute(name string) (string, bool) {
	if v, ok := c.computed[name]; ok {
		return v, true
	}
	if c.invalid.Has(name) {
		return "", false
	}

	raw, declared := c.declarations[name]
	if !declared {
		return "", false
	}

	if c.cyclic.Has(name) {
		c.invalid.Add(name)
		c.errs = append(c.errs, NewCircularReferenceError(c.graph.CycleThrough(name)))
		return "", false
	}

	value, err := c.substitute(raw)
	if err != nil {
		c.invalid.Add(name)
		c.errs = append(c.errs, err)
		return "", false
	}

	c.computed[name] = value
	return value, true
}

// substitute replaces every var() in value with its computed replacement
func (c *computer) substitute(value string) (string, error) {
	spans := varref.FindAll(value)
	if len(spans) == 0 {
		return strings.TrimSpace(value), nil
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(value[last:span.Start])
		replacement, err := c.substituteReference(value[span.Start:span.End])
		if err != nil {
			return "", err
		}
		b.WriteString(replacement)
		last = span.End
	}
	b.WriteString(value[last:])

	return strings.TrimSpace(b.String()), nil
}

func (c *computer) substituteReference(expr string) (string, error) {
	ref := varref.Parse(expr)
	if ref == nil {
		return expr, nil
	}

	if v, ok := c.compute(ref.Name); ok && v != "" {
		return v, nil
	}
	if ref.Fallback != nil {
		return c.substitute(*ref.Fallback)
	}
	return "", NewUnresolvedVariableError(ref.Name, []string{ref.Name})
}
