package js

import (
	"fmt"
	"sync"

	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/parser/css"
	htmlparser "bennypowers.dev/varmotion/internal/parser/html"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser extracts CSS from tagged template literals in JS and TS sources
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // matches css<Type>`...` (generic form parsed by JS grammar as binary_expression)
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		// Generic form: css<Type>`...` is valid TypeScript (since TS 2.9) but both
		// tree-sitter-javascript and tree-sitter-typescript misparse it as binary
		// expressions instead of a call_expression with type_arguments.
		// See: https://github.com/tree-sitter/tree-sitter-typescript/issues/341
		genericQuery, qerr := sitter.NewQuery(jsLang, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
			genericQuery:  genericQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
	if p.genericQuery != nil {
		p.genericQuery.Close()
	}
}

// Templates finds css and html tagged template literals, split at ${...}
// boundaries. Both css`...` and the TypeScript generic form css<T>`...`
// are recognised.
func (p *Parser) Templates(source string) []Template {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var templates []Template
	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		templates = collect(query, tree.RootNode(), sourceBytes, templates)
	}
	return templates
}

func collect(query *sitter.Query, root *sitter.Node, src []byte, templates []Template) []Template {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, root, src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tag string
		var template *sitter.Node
		for _, c := range match.Captures {
			switch names[c.Index] {
			case "tag":
				tag = string(src[c.Node.StartByte():c.Node.EndByte()])
			case "template":
				template = &c.Node
			}
		}

		if template == nil || (tag != "css" && tag != "html") {
			continue
		}

		if segments := segmentsOf(template, src); len(segments) > 0 {
			templates = append(templates, Template{Tag: tag, Segments: segments})
		}
	}
	return templates
}

// segmentsOf returns the string_fragment children of a template_string,
// skipping ${...} substitutions
func segmentsOf(template *sitter.Node, src []byte) []Segment {
	var segments []Segment
	for i := uint(0); i < template.ChildCount(); i++ {
		child := template.Child(i)
		if child.Kind() != "string_fragment" {
			continue
		}
		start := child.StartPosition()
		segments = append(segments, Segment{
			Content:   string(src[child.StartByte():child.EndByte()]),
			StartLine: start.Row,
			StartCol:  start.Column,
		})
	}
	return segments
}

// Parse extracts and parses CSS from css and html tagged templates, with
// ranges in source coordinates
func (p *Parser) Parse(source string) (*css.Sheet, error) {
	sheet := &css.Sheet{}

	templates := p.Templates(source)
	if len(templates) == 0 {
		return sheet, nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	var htmlParser *htmlparser.Parser
	defer func() { htmlparser.ReleaseParser(htmlParser) }()

	for _, tmpl := range templates {
		for _, seg := range tmpl.Segments {
			var parsed *css.Sheet
			var err error
			switch tmpl.Tag {
			case "css":
				parsed, err = cssParser.Parse(seg.Content)
			case "html":
				if htmlParser == nil {
					htmlParser = htmlparser.AcquireParser()
				}
				parsed, err = htmlParser.Parse(seg.Content)
			}
			if err != nil {
				log.Debug("Failed to parse %s segment at %d:%d: %v", tmpl.Tag, seg.StartLine, seg.StartCol, err)
				continue
			}
			parsed.Offset(seg.StartLine, seg.StartCol)
			sheet.Append(parsed)
		}
	}

	return sheet, nil
}
