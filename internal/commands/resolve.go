package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"bennypowers.dev/varmotion/internal/parser/varref"
	"bennypowers.dev/varmotion/internal/resolver"
	"bennypowers.dev/varmotion/internal/value"
	"github.com/pivotal-cf/jhanda"
)

type Resolve struct {
	output io.Writer

	Options struct {
		Root   string   `short:"r" long:"root"   default:"." description:"project root"`
		Config string   `short:"c" long:"config"             description:"path to configuration file"`
		Files  []string `short:"f" long:"file"               description:"additional style or token file to load"`
		Trace  bool     `short:"t" long:"trace"              description:"print the custom properties consulted"`
	}
}

func NewResolve(output io.Writer) Resolve {
	return Resolve{output: output}
}

func (r Resolve) Execute(args []string) error {
	expressions, err := jhanda.Parse(&r.Options, args)
	if err != nil {
		return err
	}
	if len(expressions) == 0 {
		return errors.New("resolve requires at least one expression, e.g. 'var(--from)'")
	}

	ws, err := loadWorkspace(r.Options.Root, r.Options.Config, r.Options.Files)
	if err != nil {
		return err
	}

	res := resolver.Resolver{MaxDepth: ws.config.MaxDepth}
	failures := 0
	for _, expr := range expressions {
		if err := r.resolve(res, ws, expr); err != nil {
			failures++
			fmt.Fprintf(r.output, "%s: error: %v\n", expr, err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d expressions failed to resolve", failures, len(expressions))
	}
	return nil
}

func (r Resolve) resolve(res resolver.Resolver, ws *workspace, expr string) error {
	ref := varref.Parse(expr)
	if ref == nil {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(expr)), "var(") || varref.Contains(expr) {
			_, err := varref.ParseStrict(expr)
			return err
		}
		fmt.Fprintf(r.output, "%s = %s%s\n", expr, strings.TrimSpace(expr), describe(expr))
		return nil
	}

	trace, err := res.Trace(ref, ws.source)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.output, "%s = %s%s\n", expr, trace.Value, describe(trace.Value))
	if r.Options.Trace {
		via := strings.Join(trace.Chain, " -> ")
		if trace.FromFallback {
			via += " -> fallback"
		}
		fmt.Fprintf(r.output, "  via %s\n", via)
	}
	return nil
}

// describe names the kind of a concrete value, or "" when it cannot be
// interpolated
func describe(concrete string) string {
	v, err := value.Parse(concrete)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", v.Kind)
}

func (r Resolve) Usage() jhanda.Usage {
	return jhanda.Usage{
		Description:      "This command resolves var() expressions against the project's style and token files.",
		ShortDescription: "resolves var() expressions",
		Flags:            r.Options,
	}
}
