package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"keywell/keymap"

	"gopkg.in/yaml.v3"
)

type colormapLayerDoc struct {
	Name   string   `yaml:"name"`
	Colors []string `yaml:"colors"`
}

type colormapDoc struct {
	Positions int                `yaml:"positions"`
	Layers    []colormapLayerDoc `yaml:"layers"`
}

// LoadColormap reads a YAML colormap document. Entries are palette
// indices 0-15, or "-" for transparent.
func LoadColormap(r io.Reader) (*keymap.ColorTable, error) {
	var doc colormapDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode colormap yaml: %w", err)
	}

	table := &keymap.ColorTable{Positions: doc.Positions}

	for i, layerDoc := range doc.Layers {
		layer := keymap.ColorLayer{Name: layerDoc.Name, Indices: make([]int, 0, len(layerDoc.Colors))}

		for j, token := range layerDoc.Colors {
			token = strings.TrimSpace(token)
			if token == "-" {
				layer.Indices = append(layer.Indices, keymap.ColorTransparent)

				continue
			}

			index, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("color layer %q (index %d), entry %d: %w", layerDoc.Name, i, j, err)
			}

			layer.Indices = append(layer.Indices, index)
		}

		table.Layers = append(table.Layers, layer)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("colormap file invalid: %w", err)
	}

	return table, nil
}

// SaveColormap is the inverse of LoadColormap.
func SaveColormap(w io.Writer, table *keymap.ColorTable) error {
	doc := colormapDoc{Positions: table.Positions}

	for _, layer := range table.Layers {
		layerDoc := colormapLayerDoc{Name: layer.Name, Colors: make([]string, 0, len(layer.Indices))}

		for _, index := range layer.Indices {
			if index == keymap.ColorTransparent {
				layerDoc.Colors = append(layerDoc.Colors, "-")
			} else {
				layerDoc.Colors = append(layerDoc.Colors, strconv.Itoa(index))
			}
		}

		doc.Layers = append(doc.Layers, layerDoc)
	}

	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("could not encode colormap yaml: %w", err)
	}

	return nil
}
