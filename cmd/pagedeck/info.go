package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show page metadata for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Clear()

		pages := s.Pages()
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %d pages", args[0], len(pages))))
		for _, p := range pages {
			dims := "unknown size"
			if p.Dims != nil {
				dims = fmt.Sprintf("%.0fx%.0f pt", p.Dims.Width, p.Dims.Height)
			}
			fmt.Printf("  page %-4d %s", p.DisplayNumber, dims)
			if p.Rotation != 0 {
				fmt.Printf("  rotated %d°", p.Rotation)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
