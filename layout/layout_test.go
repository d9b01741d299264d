package layout_test

import (
	"bytes"
	"strings"
	"testing"

	"keywell/keymap"
	"keywell/layout"
	"keywell/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKeymap = `
positions: 4
base: PRIMARY
layers:
  - name: PRIMARY
    keys: [Q, LSHIFT, "shift:1", "macro:any"]
  - name: NAVIGATION
    keys: [LEFT, trans, trans, none]
`

const sampleColormap = `
positions: 4
layers:
  - name: PRIMARY
    colors: ["15", "7", "2", "14"]
  - name: NAVIGATION
    colors: ["9", "-", "-", "-"]
`

func TestLoadKeymap(t *testing.T) {
	t.Run("loads a document", func(t *testing.T) {
		table, err := layout.LoadKeymap(strings.NewReader(sampleKeymap))
		require.NoError(t, err)

		assert.Equal(t, 4, table.Positions)
		assert.Equal(t, 0, table.Base)
		require.Len(t, table.Layers, 2)
		assert.Equal(t, model.KeyOf(model.KeyQ), table.Layers[0].Keys[0])
		assert.Equal(t, model.ShiftTo(1), table.Layers[0].Keys[2])
		assert.Equal(t, model.MacroRef(model.MacroAnyKey), table.Layers[0].Keys[3])
		assert.Equal(t, model.Transparent, table.Layers[1].Keys[1])
		assert.Equal(t, model.Blocked, table.Layers[1].Keys[3])
	})

	t.Run("rejects unknown keycodes with layer context", func(t *testing.T) {
		doc := `
positions: 1
layers:
  - name: PRIMARY
    keys: [FROB]
`
		_, err := layout.LoadKeymap(strings.NewReader(doc))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRIMARY")
		assert.Contains(t, err.Error(), "FROB")
	})

	t.Run("rejects an undefined base layer", func(t *testing.T) {
		doc := `
positions: 1
base: GAMING
layers:
  - name: PRIMARY
    keys: [Q]
`
		_, err := layout.LoadKeymap(strings.NewReader(doc))

		require.Error(t, err)
	})

	t.Run("rejects a base layer with transparent entries", func(t *testing.T) {
		doc := `
positions: 2
layers:
  - name: PRIMARY
    keys: [Q, trans]
`
		_, err := layout.LoadKeymap(strings.NewReader(doc))

		var confErr *keymap.ConfigurationError

		require.ErrorAs(t, err, &confErr)
	})
}

func TestParseToken(t *testing.T) {
	testCases := []struct {
		token    string
		expected model.KeyValue
	}{
		{"trans", model.Transparent},
		{"none", model.Blocked},
		{"Q", model.KeyOf(model.KeyQ)},
		{"LSHIFT", model.KeyOf(model.KeyLShift)},
		{"shift:3", model.ShiftTo(3)},
		{"lock:2", model.LockTo(2)},
		{"macro:version", model.MacroRef(model.MacroVersionInfo)},
		{"media:MUTE", model.ConsumerOf(model.ConsumerMute)},
		{"media:0xB7", model.ConsumerOf(model.ConsumerCode(0xB7))},
		{"LS(EQUAL)", model.KeyWithMods(model.KeyEqual, model.ModLShift)},
		{"LC(LS(A))", model.KeyWithMods(model.KeyA, model.ModLCtrl|model.ModLShift)},
	}

	for _, item := range testCases {
		t.Run("parses "+item.token, func(t *testing.T) {
			value, err := layout.ParseToken(item.token)

			require.NoError(t, err)
			assert.Equal(t, item.expected, value)
		})

		t.Run("round-trips "+item.token, func(t *testing.T) {
			value, err := layout.ParseToken(layout.FormatToken(item.expected))

			require.NoError(t, err)
			assert.Equal(t, item.expected, value)
		})
	}

	errorCases := []string{"", "FROB", "shift:x", "macro:frobnicate", "media:KAZOO", "media:0xZZ"}
	for _, token := range errorCases {
		t.Run("rejects '"+token+"'", func(t *testing.T) {
			_, err := layout.ParseToken(token)

			require.Error(t, err)
		})
	}
}

func TestKeymapRoundTrip(t *testing.T) {
	table, err := layout.LoadKeymap(strings.NewReader(sampleKeymap))
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, layout.SaveKeymap(&buf, table))

	reloaded, err := layout.LoadKeymap(&buf)
	require.NoError(t, err)

	// The reloaded table must resolve identically at every slot.
	resolver := keymap.NewResolver(table)
	reloadedResolver := keymap.NewResolver(reloaded)

	stacks := []*keymap.Stack{keymap.NewStack(0)}

	shifted := keymap.NewStack(0)
	shifted.Shift(1)
	stacks = append(stacks, shifted)

	for _, stack := range stacks {
		for pos := range table.Positions {
			value, ok, err := resolver.Resolve(stack, model.KeyPosition(pos))
			require.NoError(t, err)

			reloadedValue, reloadedOk, err := reloadedResolver.Resolve(stack, model.KeyPosition(pos))
			require.NoError(t, err)

			assert.Equal(t, ok, reloadedOk, "position %d", pos)
			assert.Equal(t, value, reloadedValue, "position %d", pos)
		}
	}
}

func TestColormapRoundTrip(t *testing.T) {
	table, err := layout.LoadColormap(strings.NewReader(sampleColormap))
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, layout.SaveColormap(&buf, table))

	reloaded, err := layout.LoadColormap(&buf)
	require.NoError(t, err)

	stack := keymap.NewStack(0)
	stack.Shift(1)

	for pos := range table.Positions {
		assert.Equal(t,
			table.ResolveColor(stack, model.KeyPosition(pos)),
			reloaded.ResolveColor(stack, model.KeyPosition(pos)),
			"position %d", pos)
	}
}

func TestLoadColormap(t *testing.T) {
	t.Run("rejects out-of-range palette indices", func(t *testing.T) {
		doc := `
positions: 1
layers:
  - name: PRIMARY
    colors: ["16"]
`
		_, err := layout.LoadColormap(strings.NewReader(doc))

		var confErr *keymap.ConfigurationError

		require.ErrorAs(t, err, &confErr)
	})

	t.Run("rejects garbage entries", func(t *testing.T) {
		doc := `
positions: 1
layers:
  - name: PRIMARY
    colors: ["chartreuse"]
`
		_, err := layout.LoadColormap(strings.NewReader(doc))

		require.Error(t, err)
	})
}

func TestLoadLocationsJSON(t *testing.T) {
	infoJSON := `{
		"id": "split60",
		"name": "Split 60",
		"layouts": {
			"default": {
				"layout": [
					{"row": 0, "col": 0, "x": 0, "y": 0.25},
					{"row": 0, "col": 1, "x": 1, "y": 0},
					{"row": 1, "col": 0, "x": 0, "y": 1.25}
				]
			}
		}
	}`

	keyboardLayout, err := layout.LoadLocationsJSON(strings.NewReader(infoJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, keyboardLayout.Rows)
	assert.Equal(t, 2, keyboardLayout.Cols)
	require.Len(t, keyboardLayout.Locations, 3)
	assert.Equal(t, 1, keyboardLayout.Locations[2].Row)
	assert.InEpsilon(t, 0.25, keyboardLayout.Locations[0].Y, 1e-9)

	t.Run("rejects multiple layouts", func(t *testing.T) {
		multi := `{"layouts": {"a": {"layout": []}, "b": {"layout": []}}}`

		_, err := layout.LoadLocationsJSON(strings.NewReader(multi))
		require.Error(t, err)
	})
}
