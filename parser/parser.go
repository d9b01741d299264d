// Package parser decodes the debug log lines a ZMK-style keyboard half
// prints over its serial console into key events.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"keywell/model"
)

// ParseLine extracts a key event from one log line, e.g.
//
//	[23:09:36.886,444] <dbg> zmk: zmk_kscan_process_msgq: Row: 2, col: 1, position: 23, pressed: false
//
// Lines that do not carry all four fields are skipped (nil, nil);
// fields that are present but malformed are errors.
func ParseLine(line string) (*model.KeyEvent, error) {
	splits := strings.Split(line, " ")

	var (
		row, col, position, foundCount int
		pressed                        bool
		err                            error
	)

	ix := 0
	limit := len(splits) - 1 // We always care about the next token, so stop before it's too late

	for ix < limit {
		curItem := splits[ix]
		nextItem := strings.TrimRight(splits[ix+1], ",")

		switch curItem {
		case "Row:":
			row, err = strconv.Atoi(nextItem)
			if err != nil {
				return nil, fmt.Errorf("could not parse row: %w", err)
			}

			ix++
			foundCount++
		case "col:":
			col, err = strconv.Atoi(nextItem)
			if err != nil {
				return nil, fmt.Errorf("could not parse col: %w", err)
			}

			ix++
			foundCount++
		case "position:":
			position, err = strconv.Atoi(nextItem)
			if err != nil {
				return nil, fmt.Errorf("could not parse position: %w", err)
			}

			ix++
			foundCount++
		case "pressed:":
			// The keyboard resets terminal colors at line end; trim the
			// escape code before comparing.
			nextItem = strings.TrimSuffix(nextItem, "\x1b[0m")

			switch nextItem {
			case "true":
				pressed = true
			case "false":
				pressed = false
			default:
				return nil, fmt.Errorf("pressed value unexpected: '%s'", nextItem)
			}

			ix++
			foundCount++
		default:
		}

		ix++
	}

	if foundCount == 4 {
		return &model.KeyEvent{Row: row, Col: col, Position: model.KeyPosition(position), Pressed: pressed}, nil
	}

	return nil, nil
}
