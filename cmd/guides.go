package cmd

import (
	"github.com/affodent/shadematch/pkg/shade"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(guidesCmd)
}

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "List the shade guides and their reference swatches",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, g := range shade.All() {
			cmd.Printf("%s (%s)\n", g.Name, g.ID)
			for _, s := range g.Swatches {
				l, a, b := s.Color.Lab()
				cmd.Printf("  %-5s %s  Lab %.1f %.1f %.1f\n", s.Label, s.Color, l, a, b)
			}
		}
	},
}
