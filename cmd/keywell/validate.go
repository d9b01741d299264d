package keywell

import (
	"fmt"
	"log/slog"

	"keywell/layout"
	"keywell/logging"

	"github.com/spf13/cobra"
)

var (
	validateKeymapFile   string
	validateColormapFile string
	validateLayoutFile   string
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check keymap and colormap files for configuration errors",
	Long: `Loads the given files and runs the startup consistency checks: full
layer population, no transparent entries on the base layer, in-range layer
actions and palette indices. Exits non-zero on the first violation.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		logging.Setup(false)

		if validateKeymapFile == "" {
			return fmt.Errorf("pass --keymap")
		}

		table, err := loadKeymapFile(validateKeymapFile)
		if err != nil {
			return err
		}

		slog.Info("keymap ok",
			"path", validateKeymapFile,
			"layers", len(table.Layers),
			"positions", table.Positions,
			"base", table.Layers[table.Base].Name)

		if validateColormapFile != "" {
			colors, err := loadColormapFile(validateColormapFile)
			if err != nil {
				return err
			}

			if colors.Positions != table.Positions {
				return fmt.Errorf("colormap covers %d positions, keymap covers %d",
					colors.Positions, table.Positions)
			}

			slog.Info("colormap ok", "path", validateColormapFile, "layers", len(colors.Layers))
		}

		if validateLayoutFile != "" {
			file, err := layout.OpenPath(validateLayoutFile)
			if err != nil {
				return err
			}
			defer file.Close()

			locations, err := layout.LoadLocationsJSON(file)
			if err != nil {
				return err
			}

			if len(locations.Locations) != table.Positions {
				return fmt.Errorf("layout defines %d keys, keymap covers %d positions",
					len(locations.Locations), table.Positions)
			}

			slog.Info("layout ok", "path", validateLayoutFile, "keys", len(locations.Locations))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateKeymapFile, "keymap", "k", "", "Path to the keymap yaml")
	validateCmd.Flags().StringVar(&validateColormapFile, "colormap", "", "Path to the colormap yaml")
	validateCmd.Flags().StringVar(&validateLayoutFile, "layout", "", "Path to the physical layout info json")
}
