package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/codec"
)

var (
	genPages  int
	genOutput string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a sample deck document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if genPages < 1 {
			return fmt.Errorf("page count must be positive")
		}
		deck := codec.NewDeck()
		doc := codec.GeneratePages(genPages, codec.Dims{Width: 595, Height: 842})
		data, err := deck.Save(cmd.Context(), doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(genOutput, data, 0644); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("wrote %s (%d pages, %d bytes)", genOutput, genPages, len(data))))
		return nil
	},
}

func init() {
	genCmd.Flags().IntVarP(&genPages, "pages", "n", 10, "Number of pages to generate")
	genCmd.Flags().StringVarP(&genOutput, "output", "o", "sample.deck", "Output file")
	rootCmd.AddCommand(genCmd)
}
