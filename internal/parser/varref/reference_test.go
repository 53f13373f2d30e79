package varref_test

import (
	"testing"

	"bennypowers.dev/varmotion/internal/parser/varref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("reference without fallback", func(t *testing.T) {
		ref := varref.Parse("var(--ID-123)")
		require.NotNil(t, ref)
		assert.Equal(t, "--ID-123", ref.Name)
		assert.Nil(t, ref.Fallback)
		assert.False(t, ref.HasFallback())
	})

	t.Run("reference with literal fallback", func(t *testing.T) {
		ref := varref.Parse("var(--ID-123, red)")
		require.NotNil(t, ref)
		assert.Equal(t, "--ID-123", ref.Name)
		require.NotNil(t, ref.Fallback)
		assert.Equal(t, "red", *ref.Fallback)
	})

	t.Run("nested fallback is kept as raw text", func(t *testing.T) {
		ref := varref.Parse("var(--ID-123, var(--ID-234, cyan))")
		require.NotNil(t, ref)
		assert.Equal(t, "--ID-123", ref.Name)
		require.NotNil(t, ref.Fallback)
		assert.Equal(t, "var(--ID-234, cyan)", *ref.Fallback)
	})

	t.Run("fallback containing commas in a function", func(t *testing.T) {
		ref := varref.Parse("var(--bg, rgba(0, 0, 0, 0.5))")
		require.NotNil(t, ref)
		assert.Equal(t, "--bg", ref.Name)
		assert.Equal(t, "rgba(0, 0, 0, 0.5)", *ref.Fallback)
	})

	t.Run("only the first top-level comma splits", func(t *testing.T) {
		ref := varref.Parse("var(--font, Helvetica, Arial, sans-serif)")
		require.NotNil(t, ref)
		assert.Equal(t, "Helvetica, Arial, sans-serif", *ref.Fallback)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		ref := varref.Parse("  var(  --gap  ,   8px  )  ")
		require.NotNil(t, ref)
		assert.Equal(t, "--gap", ref.Name)
		assert.Equal(t, "8px", *ref.Fallback)
	})

	t.Run("empty fallback after comma", func(t *testing.T) {
		ref := varref.Parse("var(--gap,)")
		require.NotNil(t, ref)
		require.NotNil(t, ref.Fallback)
		assert.Equal(t, "", *ref.Fallback)
	})

	t.Run("quoted parentheses do not affect nesting", func(t *testing.T) {
		ref := varref.Parse(`var(--label, "a) b, c")`)
		require.NotNil(t, ref)
		assert.Equal(t, `"a) b, c"`, *ref.Fallback)
	})

	t.Run("function name is case-insensitive", func(t *testing.T) {
		ref := varref.Parse("VAR(--x)")
		require.NotNil(t, ref)
		assert.Equal(t, "--x", ref.Name)
	})
}

func TestParseNotAReference(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"literal color", "#09F"},
		{"named color", "red"},
		{"empty", ""},
		{"other function", "rgb(255, 0, 0)"},
		{"empty name", "var()"},
		{"whitespace name", "var(   , red)"},
		{"unbalanced open", "var(--a, var(--b)"},
		{"unbalanced close", "var(--a))"},
		{"trailing content", "var(--a) 2px"},
		{"name without dashes", "var(color)"},
		{"bare dashes", "var(--)"},
		{"unterminated string", `var(--a, "oops)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, varref.Parse(tt.input))
			assert.False(t, varref.IsReference(tt.input))

			_, err := varref.ParseStrict(tt.input)
			assert.ErrorIs(t, err, varref.ErrMalformedReference)
		})
	}
}

func TestParseStrictReason(t *testing.T) {
	_, err := varref.ParseStrict("var(--a")
	require.Error(t, err)

	var malformed *varref.MalformedReferenceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "var(--a", malformed.Input)
	assert.Equal(t, "unbalanced parentheses", malformed.Reason)
}

func TestReferenceString(t *testing.T) {
	tests := []string{
		"var(--from)",
		"var(--ID-123, red)",
		"var(--ID-123, var(--ID-234, cyan))",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			ref := varref.Parse(input)
			require.NotNil(t, ref)
			assert.Equal(t, input, ref.String())
		})
	}
}
