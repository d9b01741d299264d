package keymap

import "slices"

// Stack tracks which layers are active, most recently activated first.
// The base layer always sits at the bottom and can never be removed.
type Stack struct {
	// layers holds the active indices in activation order, most recent
	// at index 0. The base layer is always the last element.
	layers []int
	locked map[int]bool
	base   int
}

func NewStack(base int) *Stack {
	return &Stack{
		layers: []int{base},
		locked: map[int]bool{base: true},
		base:   base,
	}
}

// Active returns the active layer indices, most recent first. The
// returned slice is a copy.
func (s *Stack) Active() []int {
	return slices.Clone(s.layers)
}

func (s *Stack) Base() int {
	return s.base
}

func (s *Stack) IsActive(layer int) bool {
	return slices.Contains(s.layers, layer)
}

// Shift activates a layer for the duration of a held key. Shifting an
// already active layer moves it to the top without duplicating it.
func (s *Stack) Shift(layer int) {
	if layer == s.base {
		return
	}

	s.remove(layer)
	s.layers = append([]int{layer}, s.layers...)
}

// Unshift deactivates a shifted layer when its key is released. Locked
// layers and the base layer stay put.
func (s *Stack) Unshift(layer int) {
	if layer == s.base || s.locked[layer] {
		return
	}

	s.remove(layer)
}

// Lock toggles persistent activation of a layer.
func (s *Stack) Lock(layer int) {
	if layer == s.base {
		return
	}

	if s.locked[layer] {
		delete(s.locked, layer)
		s.remove(layer)

		return
	}

	s.locked[layer] = true
	s.remove(layer)
	s.layers = append([]int{layer}, s.layers...)
}

// Prune drops active layers at or above count, along with their locks.
// Used when the table shrank under the stack; a stale index would mask
// every position as blocked. The base layer is never dropped.
func (s *Stack) Prune(count int) {
	s.layers = slices.DeleteFunc(s.layers, func(l int) bool {
		return l != s.base && l >= count
	})

	for l := range s.locked {
		if l != s.base && l >= count {
			delete(s.locked, l)
		}
	}
}

func (s *Stack) remove(layer int) {
	s.layers = slices.DeleteFunc(s.layers, func(l int) bool { return l == layer })
}
