package html

import (
	"fmt"
	"sync"

	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/parser/css"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// attributeWrapper turns declaration-level attribute text into a rule
const attributeWrapper = "x{"

// Parser extracts CSS from <style> elements and style attributes
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
	attrQuery  *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		attrQuery, qerr := sitter.NewQuery(htmlLang, `
			(attribute
				(attribute_name) @attr_name
				(quoted_attribute_value (attribute_value) @attr_value)
				(#eq? @attr_name "style"))
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile attribute query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
			attrQuery:  attrQuery,
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

// Close releases the parser and its queries
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.styleQuery != nil {
		p.styleQuery.Close()
	}
	if p.attrQuery != nil {
		p.attrQuery.Close()
	}
}

// Regions returns the CSS regions of an HTML document: style elements
// first, then style attributes, each in document order
func (p *Parser) Regions(source string) []Region {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	regions := p.collect(p.styleQuery, "css", StyleTag, root, src, nil)
	return p.collect(p.attrQuery, "attr_value", StyleAttribute, root, src, regions)
}

func (p *Parser) collect(query *sitter.Query, capture string, kind RegionType, root *sitter.Node, src []byte, regions []Region) []Region {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, root, src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, c := range match.Captures {
			if names[c.Index] != capture {
				continue
			}
			start := c.Node.StartPosition()
			regions = append(regions, Region{
				Content:   string(src[c.Node.StartByte():c.Node.EndByte()]),
				StartLine: start.Row,
				StartCol:  start.Column,
				Type:      kind,
			})
		}
	}
	return regions
}

// Parse extracts and parses every CSS region, with ranges in document
// coordinates. Declarations from style attributes follow those from style
// elements, so inline styles win as they do in the cascade.
func (p *Parser) Parse(source string) (*css.Sheet, error) {
	sheet := &css.Sheet{}

	regions := p.Regions(source)
	if len(regions) == 0 {
		return sheet, nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	for _, region := range regions {
		content, shift := region.Content, uint(0)
		if region.Type == StyleAttribute {
			content = attributeWrapper + content + "}"
			shift = uint(len(attributeWrapper))
		}

		parsed, err := cssParser.Parse(content)
		if err != nil {
			log.Debug("Failed to parse CSS region at %d:%d: %v", region.StartLine, region.StartCol, err)
			continue
		}

		unshift(parsed, shift)
		parsed.Offset(region.StartLine, region.StartCol)
		sheet.Append(parsed)
	}

	return sheet, nil
}

// unshift removes the wrapper prefix from first-line columns
func unshift(sheet *css.Sheet, n uint) {
	if n == 0 {
		return
	}
	fix := func(p *css.Position) {
		if p.Line == 0 && p.Column >= n {
			p.Column -= n
		}
	}
	for i := range sheet.Declarations {
		fix(&sheet.Declarations[i].Range.Start)
		fix(&sheet.Declarations[i].Range.End)
	}
	for i := range sheet.References {
		fix(&sheet.References[i].Range.Start)
		fix(&sheet.References[i].Range.End)
	}
}
