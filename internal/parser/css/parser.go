package css

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/varmotion/internal/parser/varref"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

const importantFlag = "!important"

// Parser finds custom property declarations and var() calls in CSS
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
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

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses a stylesheet
func (p *Parser) Parse(source string) (*Sheet, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	sheet := &Sheet{}
	walk(tree.RootNode(), src, sheet)
	return sheet, nil
}

func walk(node *sitter.Node, src []byte, sheet *Sheet) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "declaration":
		if d, ok := declaration(node, src); ok {
			sheet.Declarations = append(sheet.Declarations, d)
		}
	case "call_expression":
		if r, ok := reference(node, src); ok {
			sheet.References = append(sheet.References, r)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), src, sheet)
	}
}

// declaration reads a custom property declaration. The value is taken as
// raw text from the colon to the end of the node, since the grammar splits
// custom property values into arbitrary value nodes.
func declaration(node *sitter.Node, src []byte) (Declaration, bool) {
	var name string
	var valueStart uint
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			name = string(src[child.StartByte():child.EndByte()])
		case ":":
			if valueStart == 0 {
				valueStart = child.EndByte()
			}
		}
	}

	if !strings.HasPrefix(name, "--") || valueStart == 0 {
		return Declaration{}, false
	}

	raw := strings.TrimSpace(string(src[valueStart:node.EndByte()]))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, ";"))

	important := false
	if len(raw) >= len(importantFlag) && strings.EqualFold(raw[len(raw)-len(importantFlag):], importantFlag) {
		important = true
		raw = strings.TrimSpace(raw[:len(raw)-len(importantFlag)])
	}

	return Declaration{
		Name:      name,
		Value:     raw,
		Important: important,
		Range:     nodeRange(node),
	}, true
}

func reference(node *sitter.Node, src []byte) (Reference, bool) {
	ref := varref.Parse(string(src[node.StartByte():node.EndByte()]))
	if ref == nil {
		return Reference{}, false
	}
	return Reference{
		Name:     ref.Name,
		Fallback: ref.Fallback,
		Range:    nodeRange(node),
	}, true
}

func nodeRange(node *sitter.Node) Range {
	start, end := node.StartPosition(), node.EndPosition()
	return Range{
		Start: Position{Line: start.Row, Column: start.Column},
		End:   Position{Line: end.Row, Column: end.Column},
	}
}
