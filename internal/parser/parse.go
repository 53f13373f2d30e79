package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/varmotion/internal/parser/css"
	"bennypowers.dev/varmotion/internal/parser/html"
	"bennypowers.dev/varmotion/internal/parser/js"
)

// ErrUnsupportedLanguage indicates a document type with no CSS to extract
var ErrUnsupportedLanguage = errors.New("unsupported language")

// languages maps language IDs to the parser category they use.
// "css" → direct CSS, "html" → HTML parser, "js" → JS parser.
var languages = map[string]string{
	"css":             "css",
	"html":            "html",
	"javascript":      "js",
	"javascriptreact": "js",
	"typescript":      "js",
	"typescriptreact": "js",
}

var extensions = map[string]string{
	".css":  "css",
	".html": "html",
	".htm":  "html",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "javascriptreact",
	".ts":   "typescript",
	".mts":  "typescript",
	".tsx":  "typescriptreact",
}

// IsSupportedLanguage reports whether custom properties can be read from
// documents of the language
func IsSupportedLanguage(languageID string) bool {
	_, ok := languages[languageID]
	return ok
}

// LanguageForPath guesses a language ID from a file extension
func LanguageForPath(path string) (string, bool) {
	id, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return id, ok
}

// Parse extracts custom property declarations and var() calls from any
// supported document type
func Parse(content, languageID string) (*css.Sheet, error) {
	switch languages[languageID] {
	case "css":
		p := css.AcquireParser()
		defer css.ReleaseParser(p)
		return p.Parse(content)

	case "html":
		p := html.AcquireParser()
		defer html.ReleaseParser(p)
		return p.Parse(content)

	case "js":
		p := js.AcquireParser()
		defer js.ReleaseParser(p)
		return p.Parse(content)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, languageID)
	}
}

// ParseFile is Parse with the language taken from the path's extension
func ParseFile(path, content string) (*css.Sheet, error) {
	id, ok := LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	return Parse(content, id)
}
