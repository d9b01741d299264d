package keymap_test

import (
	"testing"

	"keywell/keymap"
	"keywell/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A four-column toy keymap exercising every sentinel:
//
//	pos:         0        1       2       3
//	SYMBOL:     trans    "1"    trans   none
//	NAVIGATION: trans   trans   LEFT    trans
//	PRIMARY:    LALT     "Q"     "E"     "R"
func testTable() *keymap.Table {
	return &keymap.Table{
		Positions: 4,
		Base:      0,
		Layers: []keymap.Layer{
			{Name: "PRIMARY", Keys: []model.KeyValue{
				model.KeyOf(model.KeyLAlt),
				model.KeyOf(model.KeyQ),
				model.KeyOf(model.KeyE),
				model.KeyOf(model.KeyR),
			}},
			{Name: "NAVIGATION", Keys: []model.KeyValue{
				model.Transparent,
				model.Transparent,
				model.KeyOf(model.KeyLeft),
				model.Transparent,
			}},
			{Name: "SYMBOL", Keys: []model.KeyValue{
				model.Transparent,
				model.KeyOf(model.Key1),
				model.Transparent,
				model.Blocked,
			}},
		},
	}
}

func TestResolve(t *testing.T) {
	table := testTable()
	require.NoError(t, table.Validate())

	resolver := keymap.NewResolver(table)

	t.Run("base layer resolves directly", func(t *testing.T) {
		stack := keymap.NewStack(0)

		value, ok, err := resolver.Resolve(stack, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.KeyOf(model.KeyQ), value)
	})

	t.Run("transparent defers to the layer below", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(1) // NAVIGATION

		value, ok, err := resolver.Resolve(stack, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.KeyOf(model.KeyLAlt), value)
	})

	t.Run("upper layer overrides the base", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(1)

		value, ok, err := resolver.Resolve(stack, 2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.KeyOf(model.KeyLeft), value)
	})

	t.Run("blocked masks lower layers entirely", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(2) // SYMBOL

		// PRIMARY defines Key_R at position 3, SYMBOL blocks it.
		_, ok, err := resolver.Resolve(stack, 3)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transparent chain falls through two layers", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(1)
		stack.Shift(2)

		value, ok, err := resolver.Resolve(stack, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.KeyOf(model.KeyLAlt), value)
	})

	t.Run("most recent shift is consulted first", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(2)
		stack.Shift(1)

		// NAVIGATION is on top and transparent at 1; SYMBOL has "1".
		value, ok, err := resolver.Resolve(stack, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.KeyOf(model.Key1), value)
	})

	t.Run("every validated position resolves", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(1)
		stack.Shift(2)

		for pos := range table.Positions {
			_, _, err := resolver.Resolve(stack, model.KeyPosition(pos))
			assert.NoError(t, err, "position %d", pos)
		}
	})

	t.Run("an unresolvable position is a configuration error", func(t *testing.T) {
		broken := &keymap.Table{
			Positions: 1,
			Layers: []keymap.Layer{
				{Name: "PRIMARY", Keys: []model.KeyValue{model.Transparent}},
			},
		}
		// Validate would reject this table; resolve against it anyway.
		brokenResolver := keymap.NewResolver(broken)
		stack := keymap.NewStack(0)

		_, _, err := brokenResolver.Resolve(stack, 0)

		var confErr *keymap.ConfigurationError

		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, model.KeyPosition(0), confErr.Position)
	})
}

func TestResolveColor(t *testing.T) {
	colors := &keymap.ColorTable{
		Positions: 3,
		Layers: []keymap.ColorLayer{
			{Name: "PRIMARY", Indices: []int{15, 2, keymap.ColorTransparent}},
			{Name: "NAVIGATION", Indices: []int{keymap.ColorTransparent, 4, 9}},
		},
	}
	require.NoError(t, colors.Validate())

	t.Run("direct lookup", func(t *testing.T) {
		stack := keymap.NewStack(0)

		assert.Equal(t, keymap.Palette[15], colors.ResolveColor(stack, 0))
		assert.Equal(t, keymap.Palette[2], colors.ResolveColor(stack, 1))
	})

	t.Run("transparent defers to the layer below", func(t *testing.T) {
		stack := keymap.NewStack(0)
		stack.Shift(1)

		assert.Equal(t, keymap.Palette[15], colors.ResolveColor(stack, 0))
		assert.Equal(t, keymap.Palette[4], colors.ResolveColor(stack, 1))
	})

	t.Run("a fully transparent column is off", func(t *testing.T) {
		stack := keymap.NewStack(0)

		assert.Equal(t, model.Off, colors.ResolveColor(stack, 2))
	})

	t.Run("out-of-range palette index fails validation", func(t *testing.T) {
		bad := &keymap.ColorTable{
			Positions: 1,
			Layers: []keymap.ColorLayer{
				{Name: "PRIMARY", Indices: []int{16}},
			},
		}

		var confErr *keymap.ConfigurationError

		require.ErrorAs(t, bad.Validate(), &confErr)
	})
}
