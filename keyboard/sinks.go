package keyboard

import (
	"fmt"
	"io"
	"log/slog"

	"keywell/model"
)

// ConsoleHID prints resolved key activity instead of sending USB
// reports, for running the configuration against a live keyboard on
// the desk.
type ConsoleHID struct {
	W io.Writer
}

func (h *ConsoleHID) Press(code model.Keycode, mods model.Modifiers) error {
	if _, err := fmt.Fprintf(h.W, "press %s", code); err != nil {
		return fmt.Errorf("could not write press: %w", err)
	}

	if mods != 0 {
		if _, err := fmt.Fprintf(h.W, " mods=0x%02X", uint8(mods)); err != nil {
			return fmt.Errorf("could not write press: %w", err)
		}
	}

	_, err := fmt.Fprintln(h.W)
	if err != nil {
		return fmt.Errorf("could not write press: %w", err)
	}

	return nil
}

func (h *ConsoleHID) Release(code model.Keycode) error {
	if _, err := fmt.Fprintf(h.W, "release %s\n", code); err != nil {
		return fmt.Errorf("could not write release: %w", err)
	}

	return nil
}

// Type writes the whole string in one call, keeping the burst atomic
// from the consumer's point of view.
func (h *ConsoleHID) Type(s string) error {
	if _, err := fmt.Fprintf(h.W, "type %q\n", s); err != nil {
		return fmt.Errorf("could not write type: %w", err)
	}

	return nil
}

func (h *ConsoleHID) Consumer(code model.ConsumerCode, pressed bool) error {
	verb := "release"
	if pressed {
		verb = "press"
	}

	if _, err := fmt.Fprintf(h.W, "consumer %s 0x%02X\n", verb, uint16(code)); err != nil {
		return fmt.Errorf("could not write consumer: %w", err)
	}

	return nil
}

// SlogLEDs logs color changes instead of driving hardware.
type SlogLEDs struct{}

func (SlogLEDs) Set(pos model.KeyPosition, color model.RGB) error {
	slog.Debug("led", "position", pos, "r", color.R, "g", color.G, "b", color.B)

	return nil
}

func (SlogLEDs) SetEnabled(enabled bool) {
	slog.Info("led driver toggled", "enabled", enabled)
}
