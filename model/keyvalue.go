package model

import "fmt"

// MacroID names one of the built-in macros a key can reference.
type MacroID int

const (
	MacroNone MacroID = iota
	MacroVersionInfo
	MacroAnyKey
)

func (m MacroID) String() string {
	switch m {
	case MacroVersionInfo:
		return "version"
	case MacroAnyKey:
		return "any"
	default:
		return "none"
	}
}

// MacroByName looks up a macro id by its keymap-file token.
func MacroByName(name string) (MacroID, bool) {
	switch name {
	case "version":
		return MacroVersionInfo, true
	case "any":
		return MacroAnyKey, true
	default:
		return MacroNone, false
	}
}

type ValueKind int

const (
	// KindKey emits a plain HID keycode, possibly with modifier flags.
	KindKey ValueKind = iota
	// KindTransparent defers to the next lower active layer.
	KindTransparent
	// KindBlocked emits nothing and masks all lower layers.
	KindBlocked
	// KindLayerShift activates a layer while the key is held.
	KindLayerShift
	// KindLayerLock toggles a layer until pressed again.
	KindLayerLock
	// KindMacro dispatches to a macro handler.
	KindMacro
	// KindConsumer emits a consumer-page (media) usage.
	KindConsumer
)

// KeyValue is the logical binding of one (layer, position) slot.
type KeyValue struct {
	Kind     ValueKind
	Code     Keycode
	Mods     Modifiers
	Layer    int
	Macro    MacroID
	Consumer ConsumerCode
}

var (
	Transparent = KeyValue{Kind: KindTransparent}
	Blocked     = KeyValue{Kind: KindBlocked}
)

func KeyOf(code Keycode) KeyValue {
	return KeyValue{Kind: KindKey, Code: code}
}

func KeyWithMods(code Keycode, mods Modifiers) KeyValue {
	return KeyValue{Kind: KindKey, Code: code, Mods: mods}
}

func ShiftTo(layer int) KeyValue {
	return KeyValue{Kind: KindLayerShift, Layer: layer}
}

func LockTo(layer int) KeyValue {
	return KeyValue{Kind: KindLayerLock, Layer: layer}
}

func MacroRef(id MacroID) KeyValue {
	return KeyValue{Kind: KindMacro, Macro: id}
}

func ConsumerOf(code ConsumerCode) KeyValue {
	return KeyValue{Kind: KindConsumer, Consumer: code}
}

func (v KeyValue) String() string {
	switch v.Kind {
	case KindTransparent:
		return "trans"
	case KindBlocked:
		return "none"
	case KindLayerShift:
		return fmt.Sprintf("shift:%d", v.Layer)
	case KindLayerLock:
		return fmt.Sprintf("lock:%d", v.Layer)
	case KindMacro:
		return "macro:" + v.Macro.String()
	case KindConsumer:
		return fmt.Sprintf("consumer:0x%02X", uint16(v.Consumer))
	default:
		if v.Mods != 0 {
			return fmt.Sprintf("%s+0x%02X", v.Code, uint8(v.Mods))
		}

		return v.Code.String()
	}
}
