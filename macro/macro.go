// Package macro dispatches symbolic macro ids to their handlers on key
// transitions. Unknown ids are deliberately a no-op: firmware drops
// unrecognized input instead of crashing on it.
package macro

import (
	"log/slog"
	"math/rand"
	"time"

	"keywell/model"
)

// FirmwareVersion is what the version-info macro types out.
const FirmwareVersion = "keywell v1.0.0"

// Typist is where handlers send synthetic keystrokes. The controller's
// HID sink implements it.
type Typist interface {
	// Type emits the string as one atomic burst of press/release pairs.
	Type(s string) error
	// Press holds a synthetic key down until the matching Release.
	Press(code model.Keycode, mods model.Modifiers) error
	Release(code model.Keycode) error
}

// Handler reacts to one macro id's key transitions.
type Handler interface {
	Handle(transition model.Transition) error
}

// Dispatcher routes macro events to their registered handlers.
type Dispatcher struct {
	handlers map[model.MacroID]Handler
}

func NewDispatcher(out Typist) *Dispatcher {
	return &Dispatcher{
		handlers: map[model.MacroID]Handler{
			model.MacroVersionInfo: &versionInfo{out: out},
			model.MacroAnyKey:      newAnyKey(out),
		},
	}
}

// Register replaces the handler for an id. Used by tests and by
// callers wiring custom macros.
func (d *Dispatcher) Register(id model.MacroID, h Handler) {
	d.handlers[id] = h
}

// Dispatch routes one transition. Ids without a handler are ignored.
func (d *Dispatcher) Dispatch(id model.MacroID, transition model.Transition) error {
	h, ok := d.handlers[id]
	if !ok {
		slog.Debug("ignoring unknown macro", "id", int(id), "transition", transition)

		return nil
	}

	return h.Handle(transition)
}

// versionInfo types the firmware version string on press. Hold and
// release do nothing, so the string comes out exactly once per tap.
type versionInfo struct {
	out Typist
}

func (v *versionInfo) Handle(transition model.Transition) error {
	if transition != model.TransitionPressed {
		return nil
	}

	return v.out.Type(FirmwareVersion)
}

// anyKeyAlphabet is the 36-symbol pool the any-key macro draws from.
var anyKeyAlphabet = buildAnyKeyAlphabet()

func buildAnyKeyAlphabet() []model.Keycode {
	alphabet := make([]model.Keycode, 0, 36)
	for code := model.KeyA; code <= model.KeyZ; code++ {
		alphabet = append(alphabet, code)
	}

	for code := model.Key1; code <= model.Key0; code++ {
		alphabet = append(alphabet, code)
	}

	return alphabet
}

// anyKey picks a random letter or digit on press and holds it down for
// as long as the physical key is held. The pick is made once per press
// and is stable until release; no modifier flags ever apply.
type anyKey struct {
	out  Typist
	rng  *rand.Rand
	held model.Keycode
}

func newAnyKey(out Typist) *anyKey {
	return &anyKey{
		out: out,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *anyKey) Handle(transition model.Transition) error {
	switch transition {
	case model.TransitionPressed:
		a.held = anyKeyAlphabet[a.rng.Intn(len(anyKeyAlphabet))]

		return a.out.Press(a.held, 0)
	case model.TransitionReleased:
		if a.held == model.KeyNone {
			return nil
		}

		code := a.held
		a.held = model.KeyNone

		return a.out.Release(code)
	default:
		return nil
	}
}
