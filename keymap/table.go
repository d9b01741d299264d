package keymap

import (
	"fmt"

	"keywell/model"
)

// Layer is one fully populated bank of bindings: exactly one KeyValue
// per physical position.
type Layer struct {
	Name string
	Keys []model.KeyValue
}

// Table holds the ordered list of layers. Order matters: shift and lock
// bindings refer to layers by index, so reordering changes behavior.
type Table struct {
	Layers    []Layer
	Positions int
	// Base is the index of the always-active bottom layer.
	Base int
}

// ConfigurationError reports a keymap that cannot resolve. It is fatal
// at validation time; resolution assumes a validated table.
type ConfigurationError struct {
	Layer    int
	Position model.KeyPosition
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("keymap misconfigured at layer %d, position %d: %s", e.Layer, e.Position, e.Reason)
}

// LayerIndex returns the index of the layer with the given name.
func (t *Table) LayerIndex(name string) (int, bool) {
	for i, l := range t.Layers {
		if l.Name == name {
			return i, true
		}
	}

	return 0, false
}

// Validate runs the startup consistency check: every layer fully
// populated, no Transparent slots on the base layer (they would make a
// position unresolvable), and every layer action in range.
func (t *Table) Validate() error {
	if len(t.Layers) == 0 {
		return &ConfigurationError{Reason: "no layers defined"}
	}

	if t.Base < 0 || t.Base >= len(t.Layers) {
		return &ConfigurationError{Layer: t.Base, Reason: "base layer index out of range"}
	}

	for i, layer := range t.Layers {
		if len(layer.Keys) != t.Positions {
			return &ConfigurationError{
				Layer:  i,
				Reason: fmt.Sprintf("layer %q has %d entries, expected %d", layer.Name, len(layer.Keys), t.Positions),
			}
		}

		for pos, value := range layer.Keys {
			if i == t.Base && value.Kind == model.KindTransparent {
				return &ConfigurationError{
					Layer:    i,
					Position: model.KeyPosition(pos),
					Reason:   "transparent entry on the base layer",
				}
			}

			switch value.Kind {
			case model.KindLayerShift, model.KindLayerLock:
				if value.Layer < 0 || value.Layer >= len(t.Layers) {
					return &ConfigurationError{
						Layer:    i,
						Position: model.KeyPosition(pos),
						Reason:   fmt.Sprintf("layer action targets layer %d, only %d defined", value.Layer, len(t.Layers)),
					}
				}
			default:
			}
		}
	}

	return nil
}

// At returns the binding for a (layer, position) slot. Out-of-range
// lookups fall back to Blocked; a validated table never hits that path.
func (t *Table) At(layer int, pos model.KeyPosition) model.KeyValue {
	if layer < 0 || layer >= len(t.Layers) {
		return model.Blocked
	}

	keys := t.Layers[layer].Keys
	if int(pos) < 0 || int(pos) >= len(keys) {
		return model.Blocked
	}

	return keys[pos]
}
