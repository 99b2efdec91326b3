package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/palette"
)

func newPalettesCmd() *cobra.Command {
	var showColors bool

	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "List the named colormaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range palette.Names() {
				if !showColors {
					fmt.Fprintln(w, name)
					continue
				}
				cmap, err := palette.ByName(name)
				if err != nil {
					return err
				}
				colors := cmap.Colors()
				if len(colors) == 0 {
					// 连续色带取 5 个样本
					colors = palette.Sample(cmap, 5)
				}
				hexes := make([]string, len(colors))
				for i, c := range colors {
					hexes[i] = palette.Hex(c)
				}
				fmt.Fprintf(w, "%-10s %s\n", name, strings.Join(hexes, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showColors, "colors", false, "print the colours of each colormap")
	return cmd
}

func newIconsCmd() *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "icons",
		Short: "List icon names and code points of an icon set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := icons.ParseSet(setName)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range icons.Names(set) {
				r, err := icons.Lookup(set, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\tU+%04X\n", name, r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", string(icons.Solid), "icon set: solid, regular, brands")
	return cmd
}
