// Package db persists keypress history and keymap overrides in SQLite.
// The override tables play the role the EEPROM area plays on the
// keyboard itself: a stored table shadows the compiled-in one.
package db

import (
	"database/sql"
	"fmt"
	"iter"
	"time"

	"keywell/model"

	_ "github.com/mattn/go-sqlite3"
)

type Storage interface {
	Store(event *model.KeyEvent) error
	GatherAll() ([]model.MinimalKeyEvent, error)
	AllEvents() (iter.Seq[model.KeyEventWithTimestamp], error)
	CountEvents() (int, error)
	OverrideStore
	Close()
}

type SQLiteStorage struct {
	db *sql.DB
}

func InitDBStorage(db *sql.DB) error {
	statements := []string{
		`create table if not exists keypresses(row int, col int, position int, pressed bool, ts datetime);`,
		`create index if not exists keypresses_tsix on keypresses (ts ASC);`,
		`create table if not exists keymap_meta(id int primary key check (id = 0), positions int, base int);`,
		`create table if not exists keymap_layers(idx int, name text, primary key (idx));`,
		`create table if not exists keymap_values(layer int, position int, token text, primary key (layer, position));`,
		`create table if not exists colormap_layers(idx int, name text, positions int, primary key (idx));`,
		`create table if not exists colormap_values(layer int, position int, palette int, primary key (layer, position));`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("could not run %q: %w", stmt, err)
		}
	}

	return nil
}

func NewStorageFromConnection(db *sql.DB) (*SQLiteStorage, error) {
	if err := InitDBStorage(db); err != nil {
		return nil, err
	}

	return &SQLiteStorage{db}, nil
}

func NewStorageFromPath(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s as sqlite file: %w", path, err)
	}

	return NewStorageFromConnection(db)
}

func (s *SQLiteStorage) Store(event *model.KeyEvent) error {
	_, err := s.db.Exec(`insert into keypresses(row, col, position, pressed, ts)
	    values(?, ?, ?, ?, datetime('now', 'subsec'))`,
		event.Row, event.Col, event.Position, event.Pressed)
	if err != nil {
		return fmt.Errorf("could not store event: %w", err)
	}

	return nil
}

// GatherAll returns per-key release counts over the whole history.
func (s *SQLiteStorage) GatherAll() ([]model.MinimalKeyEvent, error) {
	rows, err := s.db.Query(
		`select row, col, position, count(*) as cnt
        from keypresses
        where pressed = false
        group by row, col, position
        order by row, position`)
	if err != nil {
		return nil, fmt.Errorf("could not gather keypresses: %w", err)
	}

	defer rows.Close()

	result := make([]model.MinimalKeyEvent, 0)

	for rows.Next() {
		var row, col, position, count int

		if err := rows.Scan(&row, &col, &position, &count); err != nil {
			return nil, fmt.Errorf("could not scan keypress row: %w", err)
		}

		result = append(result, model.MinimalKeyEvent{Row: row, Col: col, Position: model.KeyPosition(position), Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate keypresses: %w", err)
	}

	return result, nil
}

func (s *SQLiteStorage) CountEvents() (int, error) {
	var count int
	if err := s.db.QueryRow(`select count(*) from keypresses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count keypresses: %w", err)
	}

	return count, nil
}

// AllEvents iterates the stored history in time order. Scan errors end
// the iteration early.
func (s *SQLiteStorage) AllEvents() (iter.Seq[model.KeyEventWithTimestamp], error) {
	rows, err := s.db.Query(
		`select row, col, position, pressed, ts
        from keypresses
        order by ts`)
	if err != nil {
		return nil, fmt.Errorf("could not query keypresses: %w", err)
	}

	return func(yield func(model.KeyEventWithTimestamp) bool) {
		defer rows.Close()

		for rows.Next() {
			var event model.KeyEventWithTimestamp

			var position int

			var ts time.Time

			if err := rows.Scan(&event.Row, &event.Col, &position, &event.Pressed, &ts); err != nil {
				return
			}

			event.Position = model.KeyPosition(position)
			event.Timestamp = ts

			if !yield(event) {
				return
			}
		}
	}, nil
}

func (s *SQLiteStorage) Close() {
	s.db.Close()
}
