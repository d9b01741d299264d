package keywell

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"keywell/combo"
	"keywell/db"
	"keywell/keyboard"
	"keywell/logging"
	"keywell/model"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	replayKeymapFile   string
	replayColormapFile string
	replayStoragePath  string
	replayTop          int
)

// replayCmd represents the replay command.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run recorded keypress history through the configuration",
	Long: `Streams the stored history through the resolver, combo matcher and
macros, then reports chord fires and the most pressed keys. Useful to check
what a keymap change would have done to your actual typing.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		logging.Setup(false)

		if replayKeymapFile == "" {
			return fmt.Errorf("pass --keymap")
		}

		table, err := loadKeymapFile(replayKeymapFile)
		if err != nil {
			return err
		}

		storage, err := db.NewStorageFromPath(replayStoragePath)
		if err != nil {
			return fmt.Errorf("could not open %s as sqlite file: %w", replayStoragePath, err)
		}
		defer storage.Close()

		cfg := keyboard.Config{
			Keymap: table,
			HID:    &keyboard.ConsoleHID{W: io.Discard},
		}

		if replayColormapFile != "" {
			cfg.Colormap, err = loadColormapFile(replayColormapFile)
			if err != nil {
				return err
			}
		}

		bindings, chordStats := comboCounters()
		cfg.Combos = bindings

		controller, err := keyboard.New(cfg)
		if err != nil {
			return fmt.Errorf("could not build controller: %w", err)
		}

		total, err := storage.CountEvents()
		if err != nil {
			return err
		}

		events, err := storage.AllEvents()
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(total), "Replaying history...")

		for event := range events {
			if err := bar.Add(1); err != nil {
				slog.Error("could not update progress bar", "error", err)
			}

			keyEvent := model.KeyEvent{
				Row:      event.Row,
				Col:      event.Col,
				Position: event.Position,
				Pressed:  event.Pressed,
			}

			if err := controller.HandleKeyAt(keyEvent, event.Timestamp); err != nil {
				slog.Error("could not handle event", "position", event.Position, "error", err)
			}
		}

		if err := bar.Finish(); err != nil {
			slog.Error("could not finish progress bar", "error", err)
		}

		for _, binding := range bindings {
			chord := chordStats[binding.Name]
			fmt.Printf("chord %s %v fired %d times\n", binding.Name, chord.Keys, chord.Pressed)
		}

		counts, err := storage.GatherAll()
		if err != nil {
			return err
		}

		slices.SortFunc(counts, func(a, b model.MinimalKeyEvent) int {
			return -cmp.Compare(a.Count, b.Count)
		})

		if len(counts) > replayTop {
			counts = counts[:replayTop]
		}

		fmt.Printf("top %d keys:\n", len(counts))

		for _, key := range counts {
			fmt.Printf("  position %d (row %d, col %d): %d presses\n", key.Position, key.Row, key.Col, key.Count)
		}

		return nil
	},
}

// comboCounters builds the standard chord bindings with actions that
// tally fires into per-chord statistics, keyed by chord name.
func comboCounters() ([]combo.Binding, map[string]*model.Combo) {
	chords := []struct {
		name string
		keys []model.KeyPosition
	}{
		{"hardware-test-mode", hardwareTestChord},
		{"led-toggle", ledToggleChord},
		{"protocol-toggle", protocolToggleChord},
	}

	stats := make(map[string]*model.Combo, len(chords))
	bindings := make([]combo.Binding, 0, len(chords))

	for _, chord := range chords {
		stat := &model.Combo{Keys: chord.keys}
		stats[chord.name] = stat
		bindings = append(bindings, combo.Binding{
			Name:   chord.name,
			Keys:   chord.keys,
			Action: func() { stat.Pressed++ },
		})
	}

	return bindings, stats
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayKeymapFile, "keymap", "k", "", "Path to the keymap yaml")
	replayCmd.Flags().StringVar(&replayColormapFile, "colormap", "", "Path to the colormap yaml")
	replayCmd.Flags().StringVarP(&replayStoragePath, "out", "o", "./keypresses.sqlite",
		"Path of the keypress history database")
	replayCmd.Flags().IntVar(&replayTop, "top", 10, "How many keys to report")
}
