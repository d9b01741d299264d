package keywell

import (
	"fmt"

	"keywell/keymap"
	"keywell/layout"
)

func loadKeymapFile(path string) (*keymap.Table, error) {
	file, err := layout.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not open keymap file: %w", err)
	}
	defer file.Close()

	table, err := layout.LoadKeymap(file)
	if err != nil {
		return nil, fmt.Errorf("could not load keymap %s: %w", path, err)
	}

	return table, nil
}

func loadColormapFile(path string) (*keymap.ColorTable, error) {
	file, err := layout.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not open colormap file: %w", err)
	}
	defer file.Close()

	table, err := layout.LoadColormap(file)
	if err != nil {
		return nil, fmt.Errorf("could not load colormap %s: %w", path, err)
	}

	return table, nil
}
