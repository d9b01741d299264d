package db_test

import (
	"testing"

	"keywell/db"
	"keywell/keymap"
	"keywell/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStorage(t *testing.T) *db.SQLiteStorage {
	t.Helper()

	storage, err := db.NewStorageFromPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(storage.Close)

	return storage
}

func TestStoreAndGather(t *testing.T) {
	storage := memoryStorage(t)

	events := []model.KeyEvent{
		{Row: 0, Col: 1, Position: 1, Pressed: true},
		{Row: 0, Col: 1, Position: 1, Pressed: false},
		{Row: 0, Col: 1, Position: 1, Pressed: true},
		{Row: 0, Col: 1, Position: 1, Pressed: false},
		{Row: 2, Col: 3, Position: 17, Pressed: true},
		{Row: 2, Col: 3, Position: 17, Pressed: false},
	}

	for i := range events {
		require.NoError(t, storage.Store(&events[i]))
	}

	counts, err := storage.GatherAll()
	require.NoError(t, err)

	assert.Equal(t, []model.MinimalKeyEvent{
		{Row: 0, Col: 1, Position: 1, Count: 2},
		{Row: 2, Col: 3, Position: 17, Count: 1},
	}, counts)

	total, err := storage.CountEvents()
	require.NoError(t, err)
	assert.Equal(t, 6, total)
}

func TestAllEvents(t *testing.T) {
	storage := memoryStorage(t)

	stored := []model.KeyEvent{
		{Position: 1, Pressed: true},
		{Position: 2, Pressed: true},
		{Position: 1, Pressed: false},
	}

	for i := range stored {
		require.NoError(t, storage.Store(&stored[i]))
	}

	seq, err := storage.AllEvents()
	require.NoError(t, err)

	positions := make([]model.KeyPosition, 0, 3)
	for event := range seq {
		positions = append(positions, event.Position)
	}

	assert.Equal(t, []model.KeyPosition{1, 2, 1}, positions)
}

func overrideTable() *keymap.Table {
	return &keymap.Table{
		Positions: 3,
		Base:      0,
		Layers: []keymap.Layer{
			{Name: "PRIMARY", Keys: []model.KeyValue{
				model.KeyOf(model.KeyQ),
				model.ShiftTo(1),
				model.KeyWithMods(model.KeyEqual, model.ModLShift),
			}},
			{Name: "SYMBOL", Keys: []model.KeyValue{
				model.KeyOf(model.Key1),
				model.Transparent,
				model.Blocked,
			}},
		},
	}
}

func TestKeymapOverrideRoundTrip(t *testing.T) {
	storage := memoryStorage(t)

	t.Run("empty store has no override", func(t *testing.T) {
		loaded, err := storage.LoadKeymapOverride()
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("stored table resolves identically", func(t *testing.T) {
		table := overrideTable()
		require.NoError(t, storage.SaveKeymapOverride(table))

		loaded, err := storage.LoadKeymapOverride()
		require.NoError(t, err)
		require.NotNil(t, loaded)

		resolver := keymap.NewResolver(table)
		loadedResolver := keymap.NewResolver(loaded)

		stack := keymap.NewStack(0)
		stack.Shift(1)

		for pos := range table.Positions {
			value, ok, err := resolver.Resolve(stack, model.KeyPosition(pos))
			require.NoError(t, err)

			loadedValue, loadedOk, err := loadedResolver.Resolve(stack, model.KeyPosition(pos))
			require.NoError(t, err)

			assert.Equal(t, ok, loadedOk, "position %d", pos)
			assert.Equal(t, value, loadedValue, "position %d", pos)
		}
	})

	t.Run("saving again replaces the override", func(t *testing.T) {
		table := overrideTable()
		table.Layers[0].Keys[0] = model.KeyOf(model.KeyW)
		require.NoError(t, storage.SaveKeymapOverride(table))

		loaded, err := storage.LoadKeymapOverride()
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, model.KeyOf(model.KeyW), loaded.Layers[0].Keys[0])
	})

	t.Run("refuses to store an invalid table", func(t *testing.T) {
		table := overrideTable()
		table.Layers[0].Keys[1] = model.Transparent

		require.Error(t, storage.SaveKeymapOverride(table))
	})
}

func TestColormapOverrideRoundTrip(t *testing.T) {
	storage := memoryStorage(t)

	t.Run("empty store has no override", func(t *testing.T) {
		loaded, err := storage.LoadColormapOverride()
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("stored colormap resolves identically", func(t *testing.T) {
		table := &keymap.ColorTable{
			Positions: 3,
			Layers: []keymap.ColorLayer{
				{Name: "PRIMARY", Indices: []int{15, 7, keymap.ColorTransparent}},
				{Name: "SYMBOL", Indices: []int{4, keymap.ColorTransparent, 9}},
			},
		}
		require.NoError(t, storage.SaveColormapOverride(table))

		loaded, err := storage.LoadColormapOverride()
		require.NoError(t, err)
		require.NotNil(t, loaded)

		stack := keymap.NewStack(0)
		stack.Shift(1)

		for pos := range table.Positions {
			assert.Equal(t,
				table.ResolveColor(stack, model.KeyPosition(pos)),
				loaded.ResolveColor(stack, model.KeyPosition(pos)),
				"position %d", pos)
		}
	})
}
