// Package combo recognizes chords of simultaneously held keys and fires
// their bound action once per chord.
package combo

import (
	"log/slog"
	"time"

	"keywell/model"
)

// DefaultWindow is how close together chord keys must go down to count
// as one deliberate chord rather than fast typing.
const DefaultWindow = 50 * time.Millisecond

// Binding ties a set of key positions to a one-shot action. Bindings
// are matched against the pressed set, not press order. Declaration
// order is the tie-break when several bindings are satisfied at once.
type Binding struct {
	Name   string
	Keys   []model.KeyPosition
	Action func()
}

// Bitmask identifies a set of key positions. Each position sets its bit.
// Keyboards with more than 128 keys are not a thing we care about.
type Bitmask struct {
	High uint64
	Low  uint64
}

func (b *Bitmask) set(pos model.KeyPosition) {
	if pos < 64 {
		b.Low |= 1 << pos
	} else {
		b.High |= 1 << (pos % 64)
	}
}

func (b *Bitmask) clear(pos model.KeyPosition) {
	if pos < 64 {
		b.Low &^= 1 << pos
	} else {
		b.High &^= 1 << (pos % 64)
	}
}

func (b Bitmask) contains(other Bitmask) bool {
	return b.Low&other.Low == other.Low && b.High&other.High == other.High
}

// MaskOf builds the position bitmask for a key set.
func MaskOf(keys []model.KeyPosition) Bitmask {
	var mask Bitmask
	for _, key := range keys {
		mask.set(key)
	}

	return mask
}

// Matcher consumes key transitions and fires bindings. It is owned by
// the polling loop and is not safe for concurrent use.
type Matcher struct {
	bindings []Binding
	masks    []Bitmask
	window   time.Duration

	pressedAt map[model.KeyPosition]time.Time
	pressed   Bitmask
	// latched[i] stays true from the moment binding i fires (or loses a
	// tie-break) until every one of its keys has been released.
	latched []bool
}

func NewMatcher(window time.Duration, bindings ...Binding) *Matcher {
	if window <= 0 {
		window = DefaultWindow
	}

	masks := make([]Bitmask, len(bindings))
	for i, b := range bindings {
		masks[i] = MaskOf(b.Keys)
	}

	return &Matcher{
		bindings:  bindings,
		masks:     masks,
		window:    window,
		pressedAt: make(map[model.KeyPosition]time.Time),
		latched:   make([]bool, len(bindings)),
	}
}

// HandleKey updates the pressed set and returns the binding fired by
// this transition, or nil. A chord fires when the completing press
// arrives while every other chord key went down within the coincidence
// window; overlapping satisfied bindings lose to the first-declared one
// and are latched so they cannot fire from the same pile of keys.
func (m *Matcher) HandleKey(pos model.KeyPosition, pressed bool, now time.Time) *Binding {
	if !pressed {
		delete(m.pressedAt, pos)
		m.pressed.clear(pos)
		m.unlatchReleased()

		return nil
	}

	m.pressedAt[pos] = now
	m.pressed.set(pos)

	var fired *Binding

	for i := range m.bindings {
		if m.latched[i] || !m.pressed.contains(m.masks[i]) || !m.satisfied(i, now) {
			continue
		}

		if fired == nil {
			fired = &m.bindings[i]
			m.latched[i] = true

			slog.Debug("combo fired", "name", fired.Name, "keys", fired.Keys)

			if fired.Action != nil {
				fired.Action()
			}
		} else {
			// Lost the declaration-order tie-break; latch anyway so the
			// leftover keys cannot fire it on a later scan.
			m.latched[i] = true
		}
	}

	return fired
}

// satisfied reports whether every key of binding i is down and went
// down within the coincidence window of now. A key that has been held
// since before the window does not count toward a chord: the window
// elapsing silently resets the attempt.
func (m *Matcher) satisfied(i int, now time.Time) bool {
	for _, key := range m.bindings[i].Keys {
		pressedAt, ok := m.pressedAt[key]
		if !ok {
			return false
		}

		if now.Sub(pressedAt) > m.window {
			return false
		}
	}

	return len(m.bindings[i].Keys) > 0
}

// unlatchReleased clears the fired latch for bindings whose keys are
// now all up, re-arming them for the next full chord.
func (m *Matcher) unlatchReleased() {
	for i := range m.latched {
		if !m.latched[i] {
			continue
		}

		anyDown := false

		for _, key := range m.bindings[i].Keys {
			if _, ok := m.pressedAt[key]; ok {
				anyDown = true

				break
			}
		}

		if !anyDown {
			m.latched[i] = false
		}
	}
}
