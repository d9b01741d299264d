package layout

import (
	"fmt"
	"log/slog"
	"os"

	"keywell/model"
)

func OpenPath(path string) (*os.File, error) {
	slog.Info("Opening file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}

	return file, nil
}

var glyphs = map[model.Keycode]string{
	model.KeyLShift:    "⇧",
	model.KeyRShift:    "R⇧",
	model.KeyLCtrl:     "^",
	model.KeyRCtrl:     "⌃",
	model.KeyEnter:     "↵",
	model.KeyLGui:      "⌘",
	model.KeyRGui:      "⌘",
	model.KeyLAlt:      "⌥",
	model.KeyRAlt:      "⌥",
	model.KeyBackspace: "⌫",
	model.KeySpace:     "␣",
	model.KeyTab:       "⇥",
	model.KeyRight:     "→",
	model.KeyLeft:      "←",
	model.KeyUp:        "↑",
	model.KeyDown:      "↓",
}

// DisplayLabel renders a binding the way the show command prints it: a
// compact glyph for well-known keys, the token form otherwise.
func DisplayLabel(value model.KeyValue) string {
	switch value.Kind {
	case model.KindTransparent:
		return "·"
	case model.KindBlocked:
		return "✕"
	case model.KindKey:
		if value.Mods == 0 {
			if glyph, ok := glyphs[value.Code]; ok {
				return glyph
			}
		}

		return FormatToken(value)
	default:
		return FormatToken(value)
	}
}
