package keymap

import (
	"fmt"

	"keywell/model"
)

// PaletteSize is the number of palette slots; indices are 0-15.
const PaletteSize = 16

// ColorTransparent marks a slot that takes its color from the layer
// below. There is no blocked equivalent for colors: absence defers.
const ColorTransparent = -1

// Palette is the fixed 16-entry EGA-style palette the colormap indexes
// into.
var Palette = [PaletteSize]model.RGB{
	{R: 0x00, G: 0x00, B: 0x00}, // black
	{R: 0x00, G: 0x00, B: 0xAA}, // blue
	{R: 0x00, G: 0xAA, B: 0x00}, // green
	{R: 0x00, G: 0xAA, B: 0xAA}, // cyan
	{R: 0xAA, G: 0x00, B: 0x00}, // red
	{R: 0xAA, G: 0x00, B: 0xAA}, // magenta
	{R: 0xAA, G: 0x55, B: 0x00}, // brown
	{R: 0xAA, G: 0xAA, B: 0xAA}, // light gray
	{R: 0x55, G: 0x55, B: 0x55}, // dark gray
	{R: 0x55, G: 0x55, B: 0xFF}, // bright blue
	{R: 0x55, G: 0xFF, B: 0x55}, // bright green
	{R: 0x55, G: 0xFF, B: 0xFF}, // bright cyan
	{R: 0xFF, G: 0x55, B: 0x55}, // bright red
	{R: 0xFF, G: 0x55, B: 0xFF}, // bright magenta
	{R: 0xFF, G: 0xFF, B: 0x55}, // yellow
	{R: 0xFF, G: 0xFF, B: 0xFF}, // white
}

// ColorLayer is one bank of palette indices, one per position.
// ColorTransparent defers to the layer below.
type ColorLayer struct {
	Name    string
	Indices []int
}

// ColorTable mirrors the keymap Table shape for per-layer LED colors.
type ColorTable struct {
	Layers    []ColorLayer
	Positions int
}

// Validate checks that every layer is fully populated and every index
// is either ColorTransparent or a palette slot.
func (t *ColorTable) Validate() error {
	for i, layer := range t.Layers {
		if len(layer.Indices) != t.Positions {
			return &ConfigurationError{
				Layer:  i,
				Reason: fmt.Sprintf("color layer %q has %d entries, expected %d", layer.Name, len(layer.Indices), t.Positions),
			}
		}

		for pos, index := range layer.Indices {
			if index != ColorTransparent && (index < 0 || index >= PaletteSize) {
				return &ConfigurationError{
					Layer:    i,
					Position: model.KeyPosition(pos),
					Reason:   fmt.Sprintf("palette index %d out of range", index),
				}
			}
		}
	}

	return nil
}

// ResolveColor walks the active layers like key resolution does, but a
// fully transparent column is simply off, never an error.
func (t *ColorTable) ResolveColor(stack *Stack, pos model.KeyPosition) model.RGB {
	for _, layer := range stack.Active() {
		if layer < 0 || layer >= len(t.Layers) {
			continue
		}

		indices := t.Layers[layer].Indices
		if int(pos) < 0 || int(pos) >= len(indices) {
			continue
		}

		index := indices[pos]
		if index == ColorTransparent {
			continue
		}

		return Palette[index]
	}

	return model.Off
}
