package db

import (
	"database/sql"
	"errors"
	"fmt"

	"keywell/keymap"
	"keywell/layout"
)

// OverrideStore shadows the compiled-in keymap and colormap tables,
// like the EEPROM override area does on the keyboard.
type OverrideStore interface {
	SaveKeymapOverride(table *keymap.Table) error
	// LoadKeymapOverride returns (nil, nil) when no override is stored.
	LoadKeymapOverride() (*keymap.Table, error)
	SaveColormapOverride(table *keymap.ColorTable) error
	LoadColormapOverride() (*keymap.ColorTable, error)
}

func (s *SQLiteStorage) SaveKeymapOverride(table *keymap.Table) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid keymap: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		`delete from keymap_meta`, `delete from keymap_layers`, `delete from keymap_values`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("could not clear previous override: %w", err)
		}
	}

	if _, err := tx.Exec(`insert into keymap_meta(id, positions, base) values(0, ?, ?)`,
		table.Positions, table.Base); err != nil {
		return fmt.Errorf("could not store keymap meta: %w", err)
	}

	for i, layer := range table.Layers {
		if _, err := tx.Exec(`insert into keymap_layers(idx, name) values(?, ?)`, i, layer.Name); err != nil {
			return fmt.Errorf("could not store layer %d: %w", i, err)
		}

		for pos, value := range layer.Keys {
			if _, err := tx.Exec(`insert into keymap_values(layer, position, token) values(?, ?, ?)`,
				i, pos, layout.FormatToken(value)); err != nil {
				return fmt.Errorf("could not store value at layer %d, position %d: %w", i, pos, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit keymap override: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) LoadKeymapOverride() (*keymap.Table, error) {
	table := &keymap.Table{}

	err := s.db.QueryRow(`select positions, base from keymap_meta where id = 0`).
		Scan(&table.Positions, &table.Base)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("could not read keymap meta: %w", err)
	}

	layerRows, err := s.db.Query(`select idx, name from keymap_layers order by idx`)
	if err != nil {
		return nil, fmt.Errorf("could not read layers: %w", err)
	}

	defer layerRows.Close()

	for layerRows.Next() {
		var (
			idx  int
			name string
		)

		if err := layerRows.Scan(&idx, &name); err != nil {
			return nil, fmt.Errorf("could not scan layer row: %w", err)
		}

		table.Layers = append(table.Layers, keymap.Layer{Name: name})
	}

	if err := layerRows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate layers: %w", err)
	}

	valueRows, err := s.db.Query(`select layer, position, token from keymap_values order by layer, position`)
	if err != nil {
		return nil, fmt.Errorf("could not read values: %w", err)
	}

	defer valueRows.Close()

	for valueRows.Next() {
		var (
			layer, position int
			token           string
		)

		if err := valueRows.Scan(&layer, &position, &token); err != nil {
			return nil, fmt.Errorf("could not scan value row: %w", err)
		}

		if layer < 0 || layer >= len(table.Layers) {
			return nil, fmt.Errorf("stored value references unknown layer %d", layer)
		}

		value, err := layout.ParseToken(token)
		if err != nil {
			return nil, fmt.Errorf("stored value at layer %d, position %d: %w", layer, position, err)
		}

		table.Layers[layer].Keys = append(table.Layers[layer].Keys, value)
	}

	if err := valueRows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate values: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("stored keymap invalid: %w", err)
	}

	return table, nil
}

func (s *SQLiteStorage) SaveColormapOverride(table *keymap.ColorTable) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid colormap: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{`delete from colormap_layers`, `delete from colormap_values`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("could not clear previous override: %w", err)
		}
	}

	for i, layer := range table.Layers {
		if _, err := tx.Exec(`insert into colormap_layers(idx, name, positions) values(?, ?, ?)`,
			i, layer.Name, table.Positions); err != nil {
			return fmt.Errorf("could not store color layer %d: %w", i, err)
		}

		for pos, index := range layer.Indices {
			if _, err := tx.Exec(`insert into colormap_values(layer, position, palette) values(?, ?, ?)`,
				i, pos, index); err != nil {
				return fmt.Errorf("could not store color at layer %d, position %d: %w", i, pos, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit colormap override: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) LoadColormapOverride() (*keymap.ColorTable, error) {
	layerRows, err := s.db.Query(`select idx, name, positions from colormap_layers order by idx`)
	if err != nil {
		return nil, fmt.Errorf("could not read color layers: %w", err)
	}

	defer layerRows.Close()

	table := &keymap.ColorTable{}

	for layerRows.Next() {
		var (
			idx, positions int
			name           string
		)

		if err := layerRows.Scan(&idx, &name, &positions); err != nil {
			return nil, fmt.Errorf("could not scan color layer row: %w", err)
		}

		table.Positions = positions
		table.Layers = append(table.Layers, keymap.ColorLayer{Name: name})
	}

	if err := layerRows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate color layers: %w", err)
	}

	if len(table.Layers) == 0 {
		return nil, nil
	}

	valueRows, err := s.db.Query(`select layer, position, palette from colormap_values order by layer, position`)
	if err != nil {
		return nil, fmt.Errorf("could not read color values: %w", err)
	}

	defer valueRows.Close()

	for valueRows.Next() {
		var layer, position, palette int

		if err := valueRows.Scan(&layer, &position, &palette); err != nil {
			return nil, fmt.Errorf("could not scan color value row: %w", err)
		}

		if layer < 0 || layer >= len(table.Layers) {
			return nil, fmt.Errorf("stored color references unknown layer %d", layer)
		}

		table.Layers[layer].Indices = append(table.Layers[layer].Indices, palette)
	}

	if err := valueRows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate color values: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("stored colormap invalid: %w", err)
	}

	return table, nil
}
