package keywell

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"keywell/keymap"
	"keywell/layout"
	"keywell/logging"
	"keywell/model"

	"github.com/spf13/cobra"
)

var (
	showKeymapFile   string
	showColormapFile string
	showLayers       []string
)

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective layout for a set of active layers",
	Long: `Resolves every position against the given active layers (activated in
the order listed, so the last one is checked first) and prints the resulting
binding and color per key, the way the keyboard would see it.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		logging.Setup(false)

		if showKeymapFile == "" {
			return fmt.Errorf("pass --keymap")
		}

		table, err := loadKeymapFile(showKeymapFile)
		if err != nil {
			return err
		}

		var colors *keymap.ColorTable
		if showColormapFile != "" {
			colors, err = loadColormapFile(showColormapFile)
			if err != nil {
				return err
			}
		}

		stack := keymap.NewStack(table.Base)

		for _, name := range showLayers {
			index, ok := table.LayerIndex(name)
			if !ok {
				index, err = strconv.Atoi(name)
				if err != nil || index < 0 || index >= len(table.Layers) {
					return fmt.Errorf("unknown layer %q", name)
				}
			}

			stack.Shift(index)
		}

		resolver := keymap.NewResolver(table)
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintln(writer, "pos\tlayer stack\tbinding\tcolor")

		for pos := range table.Positions {
			value, ok, err := resolver.Resolve(stack, model.KeyPosition(pos))
			if err != nil {
				return fmt.Errorf("position %d: %w", pos, err)
			}

			label := "✕"
			if ok {
				label = layout.DisplayLabel(value)
			}

			colorCell := ""
			if colors != nil {
				rgb := colors.ResolveColor(stack, model.KeyPosition(pos))
				colorCell = fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B)
			}

			fmt.Fprintf(writer, "%d\t%v\t%s\t%s\n", pos, stack.Active(), label, colorCell)
		}

		if err := writer.Flush(); err != nil {
			return fmt.Errorf("could not flush output: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showKeymapFile, "keymap", "k", "", "Path to the keymap yaml")
	showCmd.Flags().StringVar(&showColormapFile, "colormap", "", "Path to the colormap yaml")
	showCmd.Flags().StringSliceVarP(&showLayers, "layer", "l", []string{},
		"Layers to activate on top of the base, by name or index")
}
