package documents_test

import (
	"testing"

	"bennypowers.dev/varmotion/internal/documents"
	"bennypowers.dev/varmotion/internal/parser/asimonim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForPath(t *testing.T) {
	tests := map[string]string{
		"theme.css":        "css",
		"index.html":       "html",
		"card.ts":          "typescript",
		"tokens.json":      documents.LanguageTokensJSON,
		"tokens.yaml":      documents.LanguageTokensYAML,
		"tokens.YML":       documents.LanguageTokensYAML,
		"element.jsx":      "javascriptreact",
		"deep/nest/a.html": "html",
	}
	for path, want := range tests {
		got, ok := documents.LanguageForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := documents.LanguageForPath("README.md")
	assert.False(t, ok)
}

func TestDocument(t *testing.T) {
	t.Run("stylesheet", func(t *testing.T) {
		doc, err := documents.NewDocument("theme.css", "css", 1, `:root { --from: #09F; } a { color: var(--from); }`, asimonim.Options{})
		require.NoError(t, err)

		assert.Equal(t, "theme.css", doc.Path())
		assert.Equal(t, "css", doc.LanguageID())
		assert.Equal(t, 1, doc.Version())
		assert.False(t, doc.IsTokenFile())
		assert.Equal(t, map[string]string{"--from": "#09F"}, doc.Declarations())
		require.Len(t, doc.References(), 1)
		assert.Equal(t, "--from", doc.References()[0].Name)
	})

	t.Run("tokens", func(t *testing.T) {
		doc, err := documents.NewDocument("tokens.json", documents.LanguageTokensJSON, 1,
			`{ "gap": { "$type": "dimension", "$value": "4px" } }`, asimonim.Options{Prefix: "ds"})
		require.NoError(t, err)

		assert.True(t, doc.IsTokenFile())
		assert.Equal(t, map[string]string{"--ds-gap": "4px"}, doc.Declarations())
		assert.Empty(t, doc.References())
	})

	t.Run("rejects stale updates", func(t *testing.T) {
		doc, err := documents.NewDocument("theme.css", "css", 3, `:root { --a: 1; }`, asimonim.Options{})
		require.NoError(t, err)

		err = doc.SetContent(`:root { --a: 2; }`, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale")
		assert.Equal(t, "1", doc.Declarations()["--a"])

		require.NoError(t, doc.SetContent(`:root { --a: 3; }`, 4))
		assert.Equal(t, "3", doc.Declarations()["--a"])
		assert.Equal(t, 4, doc.Version())
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := documents.NewDocument("notes.md", "markdown", 1, "# hi", asimonim.Options{})
		assert.Error(t, err)
	})
}
