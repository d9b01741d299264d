package model

import (
	"time"
)

// Position of the key in scan order, as reported by the keyboard halves.
type KeyPosition int

type KeyEvent struct {
	Row      int
	Col      int
	Position KeyPosition
	Pressed  bool
}

type KeyEventWithTimestamp struct {
	Row       int
	Col       int
	Position  KeyPosition
	Pressed   bool
	Timestamp time.Time
}

// Transition is the state of a key relative to the previous scan.
type Transition int

const (
	TransitionPressed Transition = iota
	TransitionHeld
	TransitionReleased
)

func (t Transition) String() string {
	switch t {
	case TransitionPressed:
		return "pressed"
	case TransitionHeld:
		return "held"
	case TransitionReleased:
		return "released"
	default:
		return "unknown"
	}
}

// MinimalKeyEvent is a per-key press count as gathered from storage.
type MinimalKeyEvent struct {
	Row, Col, Count int
	Position        KeyPosition
}

type Combo struct {
	Keys    []KeyPosition
	Pressed int
}

type KeyboardLayout struct {
	Locations map[KeyPosition]Location
	Rows      int
	Cols      int
}

type RowCol struct {
	Row int
	Col int
}

type Location struct {
	RowCol
	X  float64
	Y  float64
	R  float64
	Rx float64
	Ry float64
}

type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Off is the color of an unlit LED.
var Off = RGB{}
