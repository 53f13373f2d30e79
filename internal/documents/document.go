package documents

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/varmotion/internal/parser"
	"bennypowers.dev/varmotion/internal/parser/asimonim"
	"bennypowers.dev/varmotion/internal/parser/css"
)

// Token file language IDs
const (
	LanguageTokensJSON = "json"
	LanguageTokensYAML = "yaml"
)

// Document is a loaded style or design token file
type Document struct {
	path         string
	languageID   string
	content      string
	version      int
	options      asimonim.Options
	declarations map[string]string
	references   []css.Reference
}

// LanguageForPath returns the language ID used for a file, including
// design token files
func LanguageForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LanguageTokensJSON, true
	case ".yaml", ".yml":
		return LanguageTokensYAML, true
	}
	return parser.LanguageForPath(path)
}

// NewDocument parses content. Token options only apply to token files.
func NewDocument(path, languageID string, version int, content string, opts asimonim.Options) (*Document, error) {
	d := &Document{
		path:       path,
		languageID: languageID,
		options:    opts,
	}
	if err := d.SetContent(content, version); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the document's file path
func (d *Document) Path() string {
	return d.path
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the document's current content
func (d *Document) Content() string {
	return d.content
}

// IsTokenFile reports whether the document holds design tokens
func (d *Document) IsTokenFile() bool {
	return d.languageID == LanguageTokensJSON || d.languageID == LanguageTokensYAML
}

// Declarations returns the custom properties the document declares, with
// later declarations already applied over earlier ones
func (d *Document) Declarations() map[string]string {
	return d.declarations
}

// References returns the var() calls in a stylesheet document
func (d *Document) References() []css.Reference {
	return d.references
}

// SetContent re-parses the document.
// Returns an error if the provided version is older than the current document version,
// preventing stale updates from being applied. A parse failure leaves the
// document unchanged.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}

	var decls map[string]string
	var refs []css.Reference
	if d.IsTokenFile() {
		props, err := asimonim.Parse([]byte(content), d.languageID == LanguageTokensYAML, d.options)
		if err != nil {
			return fmt.Errorf("failed to parse tokens in %s: %w", d.path, err)
		}
		decls = props
	} else {
		sheet, err := parser.Parse(content, d.languageID)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", d.path, err)
		}
		decls = sheet.Properties()
		refs = sheet.References
	}

	d.content = content
	d.version = version
	d.declarations = decls
	d.references = refs
	return nil
}
