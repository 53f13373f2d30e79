package resolver_test

import (
	"testing"

	"bennypowers.dev/varmotion/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Run("substitutes chained references", func(t *testing.T) {
		computed, errs := resolver.Compute(map[string]string{
			"--red":    "#F00",
			"--brand":  "var(--red)",
			"--accent": "var(--brand)",
		})
		require.Empty(t, errs)
		assert.Equal(t, "#F00", computed["--brand"])
		assert.Equal(t, "#F00", computed["--accent"])
	})

	t.Run("substitutes embedded references", func(t *testing.T) {
		computed, errs := resolver.Compute(map[string]string{
			"--blur":   "4px",
			"--shadow": "0 0 var(--blur) var(--color, black)",
		})
		require.Empty(t, errs)
		assert.Equal(t, "0 0 4px black", computed["--shadow"])
	})

	t.Run("uses fallbacks for undeclared references", func(t *testing.T) {
		computed, errs := resolver.Compute(map[string]string{
			"--a": "var(--missing, var(--also-missing, cyan))",
		})
		require.Empty(t, errs)
		assert.Equal(t, "cyan", computed["--a"])
	})

	t.Run("drops cyclic properties and reports them", func(t *testing.T) {
		computed, errs := resolver.Compute(map[string]string{
			"--A":    "var(--B)",
			"--B":    "var(--A)",
			"--ok":   "green",
			"--leaf": "var(--A, orange)",
		})

		assert.NotContains(t, computed, "--A")
		assert.NotContains(t, computed, "--B")
		assert.Equal(t, "green", computed["--ok"])
		assert.Equal(t, "orange", computed["--leaf"], "dependents of a cycle fall back")

		require.Len(t, errs, 2)
		for _, err := range errs {
			assert.ErrorIs(t, err, resolver.ErrCircularReference)
		}
	})

	t.Run("drops properties with unsatisfiable references", func(t *testing.T) {
		computed, errs := resolver.Compute(map[string]string{
			"--a": "var(--nowhere)",
		})
		assert.NotContains(t, computed, "--a")
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], resolver.ErrUnresolvedVariable)
	})
}
