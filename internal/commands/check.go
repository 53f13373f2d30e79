package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"bennypowers.dev/varmotion/internal/collections"
	"bennypowers.dev/varmotion/internal/resolver"
	"github.com/pivotal-cf/jhanda"
)

type Check struct {
	output io.Writer

	Options struct {
		Root   string   `short:"r" long:"root"   default:"." description:"project root"`
		Config string   `short:"c" long:"config"             description:"path to configuration file"`
		Files  []string `short:"f" long:"file"               description:"additional style or token file to load"`
	}
}

func NewCheck(output io.Writer) Check {
	return Check{output: output}
}

func (c Check) Execute(args []string) error {
	if _, err := jhanda.Parse(&c.Options, args); err != nil {
		return err
	}

	ws, err := loadWorkspace(c.Options.Root, c.Options.Config, c.Options.Files)
	if err != nil {
		return err
	}

	found := 0

	for _, cycle := range cycles(ws.manager.Graph()) {
		found++
		fmt.Fprintf(c.output, "cycle: %s\n", strings.Join(cycle, " -> "))
	}

	for _, problem := range ws.manager.Problems() {
		if errors.Is(problem, resolver.ErrCircularReference) {
			continue
		}
		found++
		fmt.Fprintf(c.output, "invalid: %v\n", problem)
	}

	for _, usage := range ws.manager.Unresolved() {
		found++
		start := usage.Reference.Range.Start
		fmt.Fprintf(c.output, "%s:%d:%d: unresolved var(%s)\n",
			usage.Path, start.Line+1, start.Column+1, usage.Reference.Name)
	}

	if found > 0 {
		return fmt.Errorf("found %d problem(s)", found)
	}
	fmt.Fprintf(c.output, "ok: %d custom properties in %d files\n", len(ws.manager.Declarations()), len(ws.manager.Paths()))
	return nil
}

// cycles returns each distinct reference cycle once, starting from its
// alphabetically first member
func cycles(graph *resolver.DependencyGraph) [][]string {
	reported := collections.NewSet[string]()
	var result [][]string
	for _, name := range collections.SortedStrings(graph.CyclicNodes()) {
		if reported.Has(name) {
			continue
		}
		cycle := graph.CycleThrough(name)
		if cycle == nil {
			continue
		}
		reported.Add(cycle...)
		result = append(result, cycle)
	}
	slices.SortFunc(result, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return result
}

func (c Check) Usage() jhanda.Usage {
	return jhanda.Usage{
		Description:      "This command reports reference cycles, invalid declarations and unresolved var() calls in the project's style files.",
		ShortDescription: "reports reference problems in style files",
		Flags:            c.Options,
	}
}
