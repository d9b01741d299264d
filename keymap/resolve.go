package keymap

import (
	"keywell/model"
)

// Resolver answers "what does this physical key do right now" against a
// validated Table and the current Stack.
type Resolver struct {
	table *Table
}

func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve walks the active layers from most recently activated down.
// A Blocked entry stops the walk and masks everything below; a
// Transparent entry defers to the next layer; anything else wins.
//
// The bool is false when the position resolves to nothing (Blocked).
// An exhausted stack means the table was never validated, which is a
// ConfigurationError rather than a silent no-key.
func (r *Resolver) Resolve(stack *Stack, pos model.KeyPosition) (model.KeyValue, bool, error) {
	for _, layer := range stack.Active() {
		value := r.table.At(layer, pos)

		switch value.Kind {
		case model.KindBlocked:
			return model.KeyValue{}, false, nil
		case model.KindTransparent:
			continue
		default:
			return value, true, nil
		}
	}

	return model.KeyValue{}, false, &ConfigurationError{
		Layer:    stack.Base(),
		Position: pos,
		Reason:   "no layer resolves this position",
	}
}
