package macro_test

import (
	"testing"

	"keywell/macro"
	"keywell/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTypist struct {
	typed    []string
	pressed  []model.Keycode
	mods     []model.Modifiers
	released []model.Keycode
}

func (r *recordingTypist) Type(s string) error {
	r.typed = append(r.typed, s)

	return nil
}

func (r *recordingTypist) Press(code model.Keycode, mods model.Modifiers) error {
	r.pressed = append(r.pressed, code)
	r.mods = append(r.mods, mods)

	return nil
}

func (r *recordingTypist) Release(code model.Keycode) error {
	r.released = append(r.released, code)

	return nil
}

func inAlphabet(code model.Keycode) bool {
	isLetter := code >= model.KeyA && code <= model.KeyZ
	isDigit := code >= model.Key1 && code <= model.Key0

	return isLetter || isDigit
}

func TestVersionInfo(t *testing.T) {
	t.Run("types the version string on press only", func(t *testing.T) {
		out := &recordingTypist{}
		d := macro.NewDispatcher(out)

		require.NoError(t, d.Dispatch(model.MacroVersionInfo, model.TransitionPressed))

		assert.Equal(t, []string{macro.FirmwareVersion}, out.typed)
	})

	t.Run("hold and release type nothing", func(t *testing.T) {
		out := &recordingTypist{}
		d := macro.NewDispatcher(out)

		require.NoError(t, d.Dispatch(model.MacroVersionInfo, model.TransitionHeld))
		require.NoError(t, d.Dispatch(model.MacroVersionInfo, model.TransitionReleased))

		assert.Empty(t, out.typed)
	})
}

func TestAnyKey(t *testing.T) {
	t.Run("picks from the 36-symbol alphabet with no modifiers", func(t *testing.T) {
		out := &recordingTypist{}
		d := macro.NewDispatcher(out)

		for range 100 {
			require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionPressed))
			require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionReleased))
		}

		require.Len(t, out.pressed, 100)
		require.Len(t, out.released, 100)

		for i, code := range out.pressed {
			assert.True(t, inAlphabet(code), "press %d picked %s", i, code)
			assert.Equal(t, model.Modifiers(0), out.mods[i])
		}
	})

	t.Run("selection is stable across hold and matches the release", func(t *testing.T) {
		out := &recordingTypist{}
		d := macro.NewDispatcher(out)

		require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionPressed))
		require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionHeld))
		require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionHeld))
		require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionReleased))

		require.Len(t, out.pressed, 1)
		require.Len(t, out.released, 1)
		assert.Equal(t, out.pressed[0], out.released[0])
	})

	t.Run("release without a held key is a no-op", func(t *testing.T) {
		out := &recordingTypist{}
		d := macro.NewDispatcher(out)

		require.NoError(t, d.Dispatch(model.MacroAnyKey, model.TransitionReleased))

		assert.Empty(t, out.released)
	})
}

func TestDispatchUnknown(t *testing.T) {
	out := &recordingTypist{}
	d := macro.NewDispatcher(out)

	require.NoError(t, d.Dispatch(model.MacroID(42), model.TransitionPressed))

	assert.Empty(t, out.typed)
	assert.Empty(t, out.pressed)
}
