package keywell

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keywell/combo"
	"keywell/db"
	"keywell/keyboard"
	"keywell/keymap"
	"keywell/logging"
	"keywell/model"
	"keywell/parser"
	"keywell/ports"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	filenames    []string
	keymapFile   string
	colormapFile string
	storagePath  string
	comboWindow  time.Duration
	saveOverride bool
	verbose      bool
)

// The three chords the firmware binds: hardware test mode, LED toggle,
// keyboard protocol toggle. Positions follow the glove-style matrix.
var (
	hardwareTestChord   = []model.KeyPosition{52, 0, 6}
	ledToggleChord      = []model.KeyPosition{52, 0}
	protocolToggleChord = []model.KeyPosition{52, 6}
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to an attached keyboard and run the configuration",
	Long: `Provide two serial device paths to connect to, or leave empty to read
from stdin. Key events are resolved through the layered keymap the way the
firmware would resolve them, logged to a sqlite file, and printed as HID
activity. The keymap file is watched and hot-reloaded on change.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		logging.Setup(verbose)

		fileCount := len(filenames)
		if fileCount != 2 && fileCount != 0 {
			return fmt.Errorf("expected exactly 0 or 2 files, got %d", fileCount)
		}

		storage, err := db.NewStorageFromPath(storagePath)
		if err != nil {
			return fmt.Errorf("could not open %s as sqlite file: %w", storagePath, err)
		}
		defer storage.Close()

		table, colors, err := loadTables(storage)
		if err != nil {
			return err
		}

		if saveOverride {
			if err := storage.SaveKeymapOverride(table); err != nil {
				return fmt.Errorf("could not persist keymap override: %w", err)
			}

			if colors != nil {
				if err := storage.SaveColormapOverride(colors); err != nil {
					return fmt.Errorf("could not persist colormap override: %w", err)
				}
			}
		}

		var controller *keyboard.Controller

		bindings := []combo.Binding{
			{Name: "hardware-test-mode", Keys: hardwareTestChord, Action: func() {
				slog.Info("entering hardware test mode")
			}},
			{Name: "led-toggle", Keys: ledToggleChord, Action: func() {
				controller.ToggleLEDs()
			}},
			{Name: "protocol-toggle", Keys: protocolToggleChord, Action: func() {
				slog.Info("toggling keyboard protocol")
			}},
		}

		controller, err = keyboard.New(keyboard.Config{
			Keymap:      table,
			Colormap:    colors,
			Combos:      bindings,
			ComboWindow: comboWindow,
			HID:         &keyboard.ConsoleHID{W: os.Stdout},
			LEDs:        keyboard.SlogLEDs{},
		})
		if err != nil {
			return fmt.Errorf("could not build controller: %w", err)
		}

		if err := controller.SyncColors(); err != nil {
			return fmt.Errorf("could not set initial colors: %w", err)
		}

		var ch <-chan string

		switch fileCount {
		case 0:
			names, err := ports.AvailableDevices()
			if err != nil {
				return fmt.Errorf("could not list devices: %w", err)
			}

			slog.Info("Suggested devices", "names", names)
			slog.Info("Will proceed to read from stdin...")

			ch = ports.ReadLines(os.Stdin)
		case 2:
			var closer func()

			ch, closer, err = ports.OpenSplit(filenames[0], filenames[1])
			if err != nil {
				names, errInner := ports.AvailableDevices()
				if errInner != nil {
					return fmt.Errorf("could not open ports: %w; could not suggest devices: %w", err, errInner)
				}

				if len(names) > 0 {
					return fmt.Errorf("error opening ports: %w. Maybe try instead: %+v", err, names)
				}

				return fmt.Errorf("error opening ports: %w. It does not seem like any keyboard is connected", err)
			}
			defer closer()
		}

		if keymapFile != "" {
			stopWatch, err := watchKeymapFile(keymapFile, controller)
			if err != nil {
				slog.Error("could not watch keymap file", "path", keymapFile, "error", err)
			} else {
				defer stopWatch()
			}
		}

		stopSignals := watchPowerSignals(controller)
		defer stopSignals()

		slog.Info("Main loop")

		for line := range ch {
			parsed, err := parser.ParseLine(line)
			if err != nil {
				slog.Warn("could not parse line", "error", err, "line", line)

				continue
			}

			if parsed == nil {
				continue
			}

			if verbose {
				slog.Debug("key event", "position", parsed.Position, "pressed", parsed.Pressed)
			}

			if err := storage.Store(parsed); err != nil {
				slog.Error("could not store event", "error", err)
			}

			if err := controller.HandleKey(*parsed); err != nil {
				slog.Error("could not handle event", "position", parsed.Position, "error", err)
			}
		}

		return fmt.Errorf("input stream closed, restart me")
	},
}

// loadTables reads the keymap and colormap from files, falling back to
// the stored override when no keymap file is given.
func loadTables(storage db.Storage) (*keymap.Table, *keymap.ColorTable, error) {
	var (
		table  *keymap.Table
		colors *keymap.ColorTable
		err    error
	)

	if keymapFile != "" {
		table, err = loadKeymapFile(keymapFile)
		if err != nil {
			return nil, nil, err
		}
	} else {
		table, err = storage.LoadKeymapOverride()
		if err != nil {
			return nil, nil, err
		}

		if table == nil {
			return nil, nil, fmt.Errorf("no keymap file given and no stored override; pass --keymap")
		}

		slog.Info("Using keymap override from storage")
	}

	if colormapFile != "" {
		colors, err = loadColormapFile(colormapFile)
		if err != nil {
			return nil, nil, err
		}
	} else {
		colors, err = storage.LoadColormapOverride()
		if err != nil {
			return nil, nil, err
		}
	}

	return table, colors, nil
}

// watchKeymapFile hot-reloads the keymap when the file changes. A bad
// edit keeps the previous table and logs the validation error.
func watchKeymapFile(path string, controller *keyboard.Controller) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()

		return nil, fmt.Errorf("could not watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}

				table, err := loadKeymapFile(path)
				if err != nil {
					slog.Error("keymap reload failed, keeping previous table", "error", err)

					continue
				}

				if err := controller.SwapKeymap(table); err != nil {
					slog.Error("keymap reload rejected", "error", err)

					continue
				}

				slog.Info("keymap reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				slog.Error("watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// watchPowerSignals maps SIGUSR1/SIGUSR2 to host suspend/resume, the
// stand-in for the power-management event source.
func watchPowerSignals(controller *keyboard.Controller) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		for sig := range signals {
			switch sig {
			case syscall.SIGUSR1:
				slog.Info("host suspend")
				controller.HandlePower(keyboard.PowerSuspend)
			case syscall.SIGUSR2:
				slog.Info("host resume")
				controller.HandlePower(keyboard.PowerResume)
			}
		}
	}()

	return func() { signal.Stop(signals) }
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(
		&filenames,
		"file",
		"f",
		[]string{},
		"List of serial device paths to get input from",
	)

	runCmd.Flags().StringVarP(
		&keymapFile,
		"keymap",
		"k",
		"",
		"Path to the keymap yaml; falls back to the stored override")

	runCmd.Flags().StringVar(
		&colormapFile,
		"colormap",
		"",
		"Path to the colormap yaml")

	runCmd.Flags().StringVarP(
		&storagePath,
		"out",
		"o",
		"./keypresses.sqlite",
		"Output path for keypress history and overrides")

	runCmd.Flags().DurationVar(
		&comboWindow,
		"combo-window",
		combo.DefaultWindow,
		"Coincidence window for chord detection")

	runCmd.Flags().BoolVar(
		&saveOverride,
		"save-override",
		false,
		"Persist the loaded keymap and colormap as the stored override")

	runCmd.Flags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"If provided, debug output will be shown")
}
