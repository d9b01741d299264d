package layout

import (
	"encoding/json"
	"fmt"
	"io"

	"keywell/model"
)

type zmkKeyDescriptor struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Rx    float64 `json:"rx"`
	Ry    float64 `json:"ry"`
	Label string  `json:"label"`
}

type zmkLayoutCollection struct {
	Layout []zmkKeyDescriptor `json:"layout"`
}

type zmkInfoJSON struct {
	ID      string                         `json:"id"`
	Name    string                         `json:"name"`
	Layouts map[string]zmkLayoutCollection `json:"layouts"`
}

// LoadLocationsJSON reads a ZMK-style physical-layout info JSON and
// maps scan positions to grid and physical coordinates.
func LoadLocationsJSON(reader io.Reader) (*model.KeyboardLayout, error) {
	decoder := json.NewDecoder(reader)

	var info zmkInfoJSON

	if err := decoder.Decode(&info); err != nil {
		return nil, fmt.Errorf("could not decode layout info JSON: %w", err)
	}

	if len(info.Layouts) != 1 {
		return nil, fmt.Errorf("expected exactly one layout, got %d", len(info.Layouts))
	}

	locations := make(map[model.KeyPosition]model.Location)

	rows := 0
	cols := 0
	position := model.KeyPosition(0)

	for _, collection := range info.Layouts {
		for _, key := range collection.Layout {
			loc := model.Location{}
			loc.Row = key.Row
			loc.Col = key.Col

			if key.Row > rows {
				rows = key.Row
			}

			if key.Col > cols {
				cols = key.Col
			}

			loc.X = key.X
			loc.Y = key.Y
			loc.R = key.R
			loc.Rx = key.Rx
			loc.Ry = key.Ry

			locations[position] = loc
			position++
		}
	}

	return &model.KeyboardLayout{
		Locations: locations,
		Rows:      rows + 1,
		Cols:      cols + 1,
	}, nil
}
