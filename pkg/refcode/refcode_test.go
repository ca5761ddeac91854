package refcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		gen := NewGenerator(func(string) (bool, error) { return false, nil })

		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, c := range code {
			assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected character %q", c)
		}
	})

	t.Run("Retries On Collision", func(t *testing.T) {
		calls := 0
		gen := NewGenerator(func(string) (bool, error) {
			calls++
			return calls < 3, nil // first two candidates collide
		})

		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.Equal(t, 3, calls)
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		calls := 0
		gen := NewGenerator(func(string) (bool, error) {
			calls++
			return true, nil // everything collides
		})

		_, err := gen.Generate()
		assert.Error(t, err)
		assert.Equal(t, 10, calls)
	})

	t.Run("Exists Check Error", func(t *testing.T) {
		gen := NewGenerator(func(string) (bool, error) {
			return false, fmt.Errorf("database error")
		})

		_, err := gen.Generate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check code uniqueness")
	})

	t.Run("No Immediate Repeats", func(t *testing.T) {
		gen := NewGenerator(func(string) (bool, error) { return false, nil })

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := gen.Generate()
			require.NoError(t, err)
			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})
}
