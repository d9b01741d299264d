package model

import "fmt"

// Keycode is a USB HID keyboard usage ID (usage page 0x07).
type Keycode uint16

const (
	KeyNone Keycode = 0x00

	KeyA Keycode = 0x04
	KeyB Keycode = 0x05
	KeyC Keycode = 0x06
	KeyD Keycode = 0x07
	KeyE Keycode = 0x08
	KeyF Keycode = 0x09
	KeyG Keycode = 0x0A
	KeyH Keycode = 0x0B
	KeyI Keycode = 0x0C
	KeyJ Keycode = 0x0D
	KeyK Keycode = 0x0E
	KeyL Keycode = 0x0F
	KeyM Keycode = 0x10
	KeyN Keycode = 0x11
	KeyO Keycode = 0x12
	KeyP Keycode = 0x13
	KeyQ Keycode = 0x14
	KeyR Keycode = 0x15
	KeyS Keycode = 0x16
	KeyT Keycode = 0x17
	KeyU Keycode = 0x18
	KeyV Keycode = 0x19
	KeyW Keycode = 0x1A
	KeyX Keycode = 0x1B
	KeyY Keycode = 0x1C
	KeyZ Keycode = 0x1D

	Key1 Keycode = 0x1E
	Key2 Keycode = 0x1F
	Key3 Keycode = 0x20
	Key4 Keycode = 0x21
	Key5 Keycode = 0x22
	Key6 Keycode = 0x23
	Key7 Keycode = 0x24
	Key8 Keycode = 0x25
	Key9 Keycode = 0x26
	Key0 Keycode = 0x27

	KeyEnter     Keycode = 0x28
	KeyEsc       Keycode = 0x29
	KeyBackspace Keycode = 0x2A
	KeyTab       Keycode = 0x2B
	KeySpace     Keycode = 0x2C
	KeyMinus     Keycode = 0x2D
	KeyEqual     Keycode = 0x2E
	KeyLBracket  Keycode = 0x2F
	KeyRBracket  Keycode = 0x30
	KeyBackslash Keycode = 0x31
	KeySemicolon Keycode = 0x33
	KeyQuote     Keycode = 0x34
	KeyGrave     Keycode = 0x35
	KeyComma     Keycode = 0x36
	KeyDot       Keycode = 0x37
	KeySlash     Keycode = 0x38
	KeyCapsLock  Keycode = 0x39

	KeyF1  Keycode = 0x3A
	KeyF2  Keycode = 0x3B
	KeyF3  Keycode = 0x3C
	KeyF4  Keycode = 0x3D
	KeyF5  Keycode = 0x3E
	KeyF6  Keycode = 0x3F
	KeyF7  Keycode = 0x40
	KeyF8  Keycode = 0x41
	KeyF9  Keycode = 0x42
	KeyF10 Keycode = 0x43
	KeyF11 Keycode = 0x44
	KeyF12 Keycode = 0x45

	KeyInsert   Keycode = 0x49
	KeyHome     Keycode = 0x4A
	KeyPageUp   Keycode = 0x4B
	KeyDelete   Keycode = 0x4C
	KeyEnd      Keycode = 0x4D
	KeyPageDown Keycode = 0x4E
	KeyRight    Keycode = 0x4F
	KeyLeft     Keycode = 0x50
	KeyDown     Keycode = 0x51
	KeyUp       Keycode = 0x52

	KeyNumLock    Keycode = 0x53
	KeyKPDivide   Keycode = 0x54
	KeyKPMultiply Keycode = 0x55
	KeyKPMinus    Keycode = 0x56
	KeyKPPlus     Keycode = 0x57
	KeyKPEnter    Keycode = 0x58
	KeyKP1        Keycode = 0x59
	KeyKP2        Keycode = 0x5A
	KeyKP3        Keycode = 0x5B
	KeyKP4        Keycode = 0x5C
	KeyKP5        Keycode = 0x5D
	KeyKP6        Keycode = 0x5E
	KeyKP7        Keycode = 0x5F
	KeyKP8        Keycode = 0x60
	KeyKP9        Keycode = 0x61
	KeyKP0        Keycode = 0x62
	KeyKPDot      Keycode = 0x63

	KeyLCtrl  Keycode = 0xE0
	KeyLShift Keycode = 0xE1
	KeyLAlt   Keycode = 0xE2
	KeyLGui   Keycode = 0xE3
	KeyRCtrl  Keycode = 0xE4
	KeyRShift Keycode = 0xE5
	KeyRAlt   Keycode = 0xE6
	KeyRGui   Keycode = 0xE7
)

// Consumer-page (0x0C) usage IDs for the media keys we bind.
type ConsumerCode uint16

const (
	ConsumerPlayPause      ConsumerCode = 0xCD
	ConsumerNextTrack      ConsumerCode = 0xB5
	ConsumerPrevTrack      ConsumerCode = 0xB6
	ConsumerMute           ConsumerCode = 0xE2
	ConsumerVolumeUp       ConsumerCode = 0xE9
	ConsumerVolumeDown     ConsumerCode = 0xEA
	ConsumerBrightnessUp   ConsumerCode = 0x6F
	ConsumerBrightnessDown ConsumerCode = 0x70
)

// Modifiers is a bitmask of held modifier keys, one bit per modifier
// in HID report order (LCtrl..RGui).
type Modifiers uint8

const (
	ModLCtrl Modifiers = 1 << iota
	ModLShift
	ModLAlt
	ModLGui
	ModRCtrl
	ModRShift
	ModRAlt
	ModRGui
)

func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

// IsModifier reports whether the keycode is one of the eight
// modifier usages (0xE0-0xE7).
func (k Keycode) IsModifier() bool {
	return k >= KeyLCtrl && k <= KeyRGui
}

// ModifierBit converts a modifier keycode into its report bit.
// Returns 0 for non-modifier codes.
func (k Keycode) ModifierBit() Modifiers {
	if !k.IsModifier() {
		return 0
	}

	return 1 << (k - KeyLCtrl)
}

var keycodeNames = map[Keycode]string{
	KeyNone: "NONE",
	KeyA:    "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F",
	KeyG: "G", KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L",
	KeyM: "M", KeyN: "N", KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R",
	KeyS: "S", KeyT: "T", KeyU: "U", KeyV: "V", KeyW: "W", KeyX: "X",
	KeyY: "Y", KeyZ: "Z",
	Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	KeyEnter: "ENTER", KeyEsc: "ESC", KeyBackspace: "BSPC", KeyTab: "TAB",
	KeySpace: "SPACE", KeyMinus: "MINUS", KeyEqual: "EQUAL",
	KeyLBracket: "LBKT", KeyRBracket: "RBKT", KeyBackslash: "BSLH",
	KeySemicolon: "SEMI", KeyQuote: "SQT", KeyGrave: "GRAVE",
	KeyComma: "COMMA", KeyDot: "DOT", KeySlash: "FSLH", KeyCapsLock: "CAPS",
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5",
	KeyF6: "F6", KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10",
	KeyF11: "F11", KeyF12: "F12",
	KeyInsert: "INS", KeyHome: "HOME", KeyPageUp: "PGUP",
	KeyDelete: "DEL", KeyEnd: "END", KeyPageDown: "PGDN",
	KeyRight: "RIGHT", KeyLeft: "LEFT", KeyDown: "DOWN", KeyUp: "UP",
	KeyNumLock: "NUMLOCK", KeyKPDivide: "KP_SLASH",
	KeyKPMultiply: "KP_STAR", KeyKPMinus: "KP_MINUS", KeyKPPlus: "KP_PLUS",
	KeyKPEnter: "KP_ENTER", KeyKP1: "KP_1", KeyKP2: "KP_2", KeyKP3: "KP_3",
	KeyKP4: "KP_4", KeyKP5: "KP_5", KeyKP6: "KP_6", KeyKP7: "KP_7",
	KeyKP8: "KP_8", KeyKP9: "KP_9", KeyKP0: "KP_0", KeyKPDot: "KP_DOT",
	KeyLCtrl: "LCTRL", KeyLShift: "LSHIFT", KeyLAlt: "LALT", KeyLGui: "LGUI",
	KeyRCtrl: "RCTRL", KeyRShift: "RSHIFT", KeyRAlt: "RALT", KeyRGui: "RGUI",
}

var keycodesByName map[string]Keycode

func init() {
	keycodesByName = make(map[string]Keycode, len(keycodeNames))
	for code, name := range keycodeNames {
		keycodesByName[name] = code
	}
}

func (k Keycode) String() string {
	if name, ok := keycodeNames[k]; ok {
		return name
	}

	return fmt.Sprintf("0x%02X", uint16(k))
}

// KeycodeByName looks up a keycode by its canonical name, e.g. "LSHIFT".
func KeycodeByName(name string) (Keycode, bool) {
	code, ok := keycodesByName[name]

	return code, ok
}
