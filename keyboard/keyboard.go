// Package keyboard owns the runtime state of the configured keyboard:
// the active-layer stack, the combo matcher latch and the set of held
// keys. One Controller instance is driven synchronously by a single
// polling loop; nothing here locks.
package keyboard

import (
	"fmt"
	"log/slog"
	"time"

	"keywell/combo"
	"keywell/keymap"
	"keywell/macro"
	"keywell/model"
)

// HIDSink receives resolved key activity for transmission to the host.
type HIDSink interface {
	Press(code model.Keycode, mods model.Modifiers) error
	Release(code model.Keycode) error
	// Type emits a whole string as one atomic burst.
	Type(s string) error
	Consumer(code model.ConsumerCode, pressed bool) error
}

// LEDSink materializes per-key colors on the hardware.
type LEDSink interface {
	Set(pos model.KeyPosition, color model.RGB) error
	SetEnabled(enabled bool)
}

// PowerEvent is a host power-management signal.
type PowerEvent int

const (
	PowerSuspend PowerEvent = iota
	PowerSleep
	PowerResume
)

func (e PowerEvent) String() string {
	switch e {
	case PowerSuspend:
		return "suspend"
	case PowerSleep:
		return "sleep"
	case PowerResume:
		return "resume"
	default:
		return "unknown"
	}
}

// Config collects everything a Controller needs. Tables are validated
// at construction, never per keystroke.
type Config struct {
	Keymap   *keymap.Table
	Colormap *keymap.ColorTable
	Combos   []combo.Binding
	// ComboWindow overrides the coincidence window; zero means default.
	ComboWindow time.Duration
	HID         HIDSink
	LEDs        LEDSink
}

type Controller struct {
	resolver *keymap.Resolver
	colors   *keymap.ColorTable
	stack    *keymap.Stack
	combos   *combo.Matcher
	macros   *macro.Dispatcher
	hid      HIDSink
	leds     LEDSink

	positions int
	// held remembers what each pressed position resolved to, so a
	// release undoes exactly that even if the stack changed meanwhile.
	held   map[model.KeyPosition]model.KeyValue
	ledsOn bool
}

func New(cfg Config) (*Controller, error) {
	if err := cfg.Keymap.Validate(); err != nil {
		return nil, fmt.Errorf("keymap table: %w", err)
	}

	if cfg.Colormap != nil {
		if err := cfg.Colormap.Validate(); err != nil {
			return nil, fmt.Errorf("colormap table: %w", err)
		}
	}

	window := combo.DefaultWindow
	if cfg.ComboWindow > 0 {
		window = cfg.ComboWindow
	}

	c := &Controller{
		resolver:  keymap.NewResolver(cfg.Keymap),
		colors:    cfg.Colormap,
		stack:     keymap.NewStack(cfg.Keymap.Base),
		combos:    combo.NewMatcher(window, cfg.Combos...),
		macros:    macro.NewDispatcher(cfg.HID),
		hid:       cfg.HID,
		leds:      cfg.LEDs,
		positions: cfg.Keymap.Positions,
		held:      make(map[model.KeyPosition]model.KeyValue),
		ledsOn:    true,
	}

	return c, nil
}

// Macros exposes the dispatcher so callers can register custom ids.
func (c *Controller) Macros() *macro.Dispatcher {
	return c.macros
}

// Stack exposes the active-layer stack, mainly for inspection.
func (c *Controller) Stack() *keymap.Stack {
	return c.stack
}

// SwapKeymap replaces the resolution table, e.g. on a hot reload. Held
// keys keep their old resolution until released. Active layers the new
// table does not define are dropped from the stack; if the base itself
// is gone the stack resets to the new table's base.
func (c *Controller) SwapKeymap(table *keymap.Table) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("keymap table: %w", err)
	}

	c.resolver = keymap.NewResolver(table)
	c.positions = table.Positions

	if c.stack.Base() >= len(table.Layers) {
		c.stack = keymap.NewStack(table.Base)
	} else {
		c.stack.Prune(len(table.Layers))
	}

	return c.SyncColors()
}

// HandleKey processes one physical key-state change at the current
// wall-clock time. Called once per transition from the polling loop.
func (c *Controller) HandleKey(event model.KeyEvent) error {
	return c.HandleKeyAt(event, time.Now())
}

// HandleKeyAt is HandleKey with an explicit event time. Recorded
// history replays with its original timestamps, so the chord
// coincidence window applies to when keys were actually pressed.
func (c *Controller) HandleKeyAt(event model.KeyEvent, at time.Time) error {
	if fired := c.combos.HandleKey(event.Position, event.Pressed, at); fired != nil {
		slog.Info("chord action", "name", fired.Name)
	}

	if event.Pressed {
		return c.handlePress(event.Position)
	}

	return c.handleRelease(event.Position)
}

func (c *Controller) handlePress(pos model.KeyPosition) error {
	value, ok, err := c.resolver.Resolve(c.stack, pos)
	if err != nil {
		return fmt.Errorf("resolving position %d: %w", pos, err)
	}

	if !ok {
		// Blocked: remember it so the release is a no-op too.
		c.held[pos] = model.Blocked

		return nil
	}

	c.held[pos] = value

	switch value.Kind {
	case model.KindKey:
		return c.hid.Press(value.Code, value.Mods)
	case model.KindLayerShift:
		c.stack.Shift(value.Layer)

		return c.SyncColors()
	case model.KindLayerLock:
		c.stack.Lock(value.Layer)

		return c.SyncColors()
	case model.KindMacro:
		return c.macros.Dispatch(value.Macro, model.TransitionPressed)
	case model.KindConsumer:
		return c.hid.Consumer(value.Consumer, true)
	default:
		return nil
	}
}

func (c *Controller) handleRelease(pos model.KeyPosition) error {
	value, ok := c.held[pos]
	if !ok {
		// Release without a tracked press: half reconnected mid-hold,
		// or the very first event we saw. Ignore it.
		return nil
	}

	delete(c.held, pos)

	switch value.Kind {
	case model.KindKey:
		return c.hid.Release(value.Code)
	case model.KindLayerShift:
		c.stack.Unshift(value.Layer)

		return c.SyncColors()
	case model.KindMacro:
		return c.macros.Dispatch(value.Macro, model.TransitionReleased)
	case model.KindConsumer:
		return c.hid.Consumer(value.Consumer, false)
	default:
		return nil
	}
}

// HandlePower reacts to host power signals by toggling the LED sink.
// That is the whole state machine: a binary on/off pass-through.
func (c *Controller) HandlePower(event PowerEvent) {
	switch event {
	case PowerSuspend, PowerSleep:
		c.EnableLEDs(false)
	case PowerResume:
		c.EnableLEDs(true)
	}
}

// EnableLEDs flips LED output and resyncs colors when turning on.
func (c *Controller) EnableLEDs(on bool) {
	if c.leds == nil || c.ledsOn == on {
		return
	}

	c.ledsOn = on
	c.leds.SetEnabled(on)

	if on {
		if err := c.SyncColors(); err != nil {
			slog.Error("could not resync colors", "error", err)
		}
	}
}

// ToggleLEDs is the chord-action flavor of EnableLEDs.
func (c *Controller) ToggleLEDs() {
	c.EnableLEDs(!c.ledsOn)
}

func (c *Controller) LEDsEnabled() bool {
	return c.ledsOn
}

// ColorAt resolves the current color for one position.
func (c *Controller) ColorAt(pos model.KeyPosition) model.RGB {
	if c.colors == nil {
		return model.Off
	}

	return c.colors.ResolveColor(c.stack, pos)
}

// SyncColors pushes the whole colormap through the LED sink. Called
// after every layer change and on resume.
func (c *Controller) SyncColors() error {
	if c.leds == nil || !c.ledsOn || c.colors == nil {
		return nil
	}

	for pos := range c.positions {
		if err := c.leds.Set(model.KeyPosition(pos), c.colors.ResolveColor(c.stack, model.KeyPosition(pos))); err != nil {
			return fmt.Errorf("setting color at position %d: %w", pos, err)
		}
	}

	return nil
}
