package parser_test

import (
	"testing"

	"bennypowers.dev/varmotion/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedLanguage(t *testing.T) {
	for _, lang := range []string{"css", "html", "javascript", "javascriptreact", "typescript", "typescriptreact"} {
		t.Run(lang, func(t *testing.T) {
			assert.True(t, parser.IsSupportedLanguage(lang))
		})
	}

	for _, lang := range []string{"json", "yaml", "go", ""} {
		t.Run("unsupported_"+lang, func(t *testing.T) {
			assert.False(t, parser.IsSupportedLanguage(lang))
		})
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := map[string]string{
		"styles/theme.css":   "css",
		"index.HTML":         "html",
		"src/card.ts":        "typescript",
		"src/App.tsx":        "typescriptreact",
		"lib/element.mjs":    "javascript",
		"components/Btn.jsx": "javascriptreact",
	}
	for path, want := range tests {
		got, ok := parser.LanguageForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := parser.LanguageForPath("tokens.json")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	t.Run("css", func(t *testing.T) {
		sheet, err := parser.Parse(`:root { --from: #09F; } .a { color: var(--from); }`, "css")
		require.NoError(t, err)
		assert.Equal(t, "#09F", sheet.Properties()["--from"])
		require.Len(t, sheet.References, 1)
		assert.Equal(t, "--from", sheet.References[0].Name)
	})

	t.Run("html", func(t *testing.T) {
		sheet, err := parser.Parse(`<style>:root { --to: #F00; }</style>`, "html")
		require.NoError(t, err)
		assert.Equal(t, "#F00", sheet.Properties()["--to"])
	})

	for _, lang := range []string{"javascript", "javascriptreact", "typescript", "typescriptreact"} {
		t.Run(lang, func(t *testing.T) {
			sheet, err := parser.Parse("const s = css`\n  :host { --gap: 8px; }\n`;", lang)
			require.NoError(t, err)
			assert.Equal(t, "8px", sheet.Properties()["--gap"])
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := parser.Parse("{}", "json")
		assert.ErrorIs(t, err, parser.ErrUnsupportedLanguage)
	})
}

func TestParseFile(t *testing.T) {
	sheet, err := parser.ParseFile("theme.css", `:root { --from: red; }`)
	require.NoError(t, err)
	assert.Equal(t, "red", sheet.Properties()["--from"])

	_, err = parser.ParseFile("tokens.yaml", "a: 1")
	assert.ErrorIs(t, err, parser.ErrUnsupportedLanguage)
}
