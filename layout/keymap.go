// Package layout loads and saves the on-disk keymap formats: YAML
// documents for key and color tables, and ZMK-style info JSON for
// physical key locations.
package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"keywell/keymap"
	"keywell/model"

	"gopkg.in/yaml.v3"
)

type keymapLayerDoc struct {
	Name string   `yaml:"name"`
	Keys []string `yaml:"keys"`
}

type keymapDoc struct {
	Positions int              `yaml:"positions"`
	Base      string           `yaml:"base,omitempty"`
	Layers    []keymapLayerDoc `yaml:"layers"`
}

// LoadKeymap reads a YAML keymap document into a validated Table.
// The base layer is the one named by `base`, defaulting to PRIMARY if
// present and the first layer otherwise.
func LoadKeymap(r io.Reader) (*keymap.Table, error) {
	var doc keymapDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode keymap yaml: %w", err)
	}

	table := &keymap.Table{Positions: doc.Positions}

	for i, layerDoc := range doc.Layers {
		layer := keymap.Layer{Name: layerDoc.Name, Keys: make([]model.KeyValue, 0, len(layerDoc.Keys))}

		for j, token := range layerDoc.Keys {
			value, err := ParseToken(token)
			if err != nil {
				return nil, fmt.Errorf("layer %q (index %d), key %d: %w", layerDoc.Name, i, j, err)
			}

			layer.Keys = append(layer.Keys, value)
		}

		table.Layers = append(table.Layers, layer)
	}

	baseName := doc.Base
	if baseName == "" {
		baseName = "PRIMARY"
	}

	if index, ok := table.LayerIndex(baseName); ok {
		table.Base = index
	} else if doc.Base != "" {
		return nil, fmt.Errorf("base layer %q is not defined", doc.Base)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("keymap file invalid: %w", err)
	}

	return table, nil
}

// SaveKeymap writes the table back as YAML. Loading the output yields a
// table with identical resolution behavior.
func SaveKeymap(w io.Writer, table *keymap.Table) error {
	doc := keymapDoc{Positions: table.Positions}

	if table.Base < len(table.Layers) {
		doc.Base = table.Layers[table.Base].Name
	}

	for _, layer := range table.Layers {
		layerDoc := keymapLayerDoc{Name: layer.Name, Keys: make([]string, 0, len(layer.Keys))}
		for _, value := range layer.Keys {
			layerDoc.Keys = append(layerDoc.Keys, FormatToken(value))
		}

		doc.Layers = append(doc.Layers, layerDoc)
	}

	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("could not encode keymap yaml: %w", err)
	}

	return nil
}

// Modifier wrappers in canonical order, ZMK-style.
var modWrappers = []struct {
	prefix string
	bit    model.Modifiers
}{
	{"LC", model.ModLCtrl},
	{"LS", model.ModLShift},
	{"LA", model.ModLAlt},
	{"LG", model.ModLGui},
	{"RC", model.ModRCtrl},
	{"RS", model.ModRShift},
	{"RA", model.ModRAlt},
	{"RG", model.ModRGui},
}

var consumerNames = map[string]model.ConsumerCode{
	"PLAY":     model.ConsumerPlayPause,
	"NEXT":     model.ConsumerNextTrack,
	"PREV":     model.ConsumerPrevTrack,
	"MUTE":     model.ConsumerMute,
	"VOL_UP":   model.ConsumerVolumeUp,
	"VOL_DOWN": model.ConsumerVolumeDown,
	"BRI_UP":   model.ConsumerBrightnessUp,
	"BRI_DOWN": model.ConsumerBrightnessDown,
}

// ParseToken turns one keymap-file token into a KeyValue. Tokens:
//
//	trans              fall through to the next lower layer
//	none               blocked, masks lower layers
//	shift:2 / lock:3   layer actions by index
//	macro:version      macro reference
//	media:MUTE         consumer-page usage by name
//	media:0x6F         consumer-page usage by raw code
//	LS(EQUAL)          keycode with modifier wrappers
//	A, LSHIFT, F5      plain keycode by name
func ParseToken(token string) (model.KeyValue, error) {
	token = strings.TrimSpace(token)

	switch {
	case token == "trans":
		return model.Transparent, nil
	case token == "none":
		return model.Blocked, nil
	case strings.HasPrefix(token, "shift:"):
		layer, err := strconv.Atoi(strings.TrimPrefix(token, "shift:"))
		if err != nil {
			return model.KeyValue{}, fmt.Errorf("bad layer in %q: %w", token, err)
		}

		return model.ShiftTo(layer), nil
	case strings.HasPrefix(token, "lock:"):
		layer, err := strconv.Atoi(strings.TrimPrefix(token, "lock:"))
		if err != nil {
			return model.KeyValue{}, fmt.Errorf("bad layer in %q: %w", token, err)
		}

		return model.LockTo(layer), nil
	case strings.HasPrefix(token, "macro:"):
		id, ok := model.MacroByName(strings.TrimPrefix(token, "macro:"))
		if !ok {
			return model.KeyValue{}, fmt.Errorf("unknown macro in %q", token)
		}

		return model.MacroRef(id), nil
	case strings.HasPrefix(token, "media:"):
		name := strings.TrimPrefix(token, "media:")

		code, ok := consumerNames[name]
		if !ok && strings.HasPrefix(name, "0x") {
			// Raw usage form, as written for codes without a name.
			raw, err := strconv.ParseUint(name, 0, 16)
			if err != nil {
				return model.KeyValue{}, fmt.Errorf("bad media usage in %q: %w", token, err)
			}

			code, ok = model.ConsumerCode(raw), true
		}

		if !ok {
			return model.KeyValue{}, fmt.Errorf("unknown media key in %q", token)
		}

		return model.ConsumerOf(code), nil
	}

	var mods model.Modifiers

	inner := token
	for {
		unwrapped, bit, ok := unwrapModifier(inner)
		if !ok {
			break
		}

		mods |= bit
		inner = unwrapped
	}

	code, ok := model.KeycodeByName(inner)
	if !ok {
		return model.KeyValue{}, fmt.Errorf("unknown keycode %q", inner)
	}

	return model.KeyWithMods(code, mods), nil
}

func unwrapModifier(token string) (string, model.Modifiers, bool) {
	for _, wrapper := range modWrappers {
		open := wrapper.prefix + "("
		if strings.HasPrefix(token, open) && strings.HasSuffix(token, ")") {
			return token[len(open) : len(token)-1], wrapper.bit, true
		}
	}

	return token, 0, false
}

// FormatToken is the inverse of ParseToken.
func FormatToken(value model.KeyValue) string {
	switch value.Kind {
	case model.KindTransparent:
		return "trans"
	case model.KindBlocked:
		return "none"
	case model.KindLayerShift:
		return fmt.Sprintf("shift:%d", value.Layer)
	case model.KindLayerLock:
		return fmt.Sprintf("lock:%d", value.Layer)
	case model.KindMacro:
		return "macro:" + value.Macro.String()
	case model.KindConsumer:
		for name, code := range consumerNames {
			if code == value.Consumer {
				return "media:" + name
			}
		}

		return fmt.Sprintf("media:0x%02X", uint16(value.Consumer))
	default:
		token := value.Code.String()
		// Wrap innermost-first so parsing unwraps in canonical order.
		for i := len(modWrappers) - 1; i >= 0; i-- {
			if value.Mods.Has(modWrappers[i].bit) {
				token = modWrappers[i].prefix + "(" + token + ")"
			}
		}

		return token
	}
}
