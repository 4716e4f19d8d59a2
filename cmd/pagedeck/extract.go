package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/exporter"
	"github.com/pagedeck/pagedeck/pagerange"
)

var (
	extractPages  string
	extractOutput string
	extractCheck  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract page ranges into a new document",
	Long: `Extract copies the pages matched by --pages (for example "1-3,5,8~10")
into a new document. With --check the expression is only validated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := loadStore(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Clear()

		if extractCheck {
			res := pagerange.Parse(extractPages, s.State().Len())
			if !res.Valid {
				for _, e := range res.Errors {
					fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s: %s", e.Segment, e.Message)))
				}
				return fmt.Errorf("invalid range expression")
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("%d pages selected", res.TotalSelected)))
			return nil
		}

		e := exporter.New(codec.NewDeck(), nil)
		base := extractOutput
		if base == "" {
			base = strings.TrimSuffix(args[0], ".deck") + "_extract"
		} else {
			base = strings.TrimSuffix(base, ".deck")
		}
		art, err := e.ExportRanges(ctx, s, extractPages, base, progressPrinter())
		if err != nil {
			return err
		}
		if err := os.WriteFile(art.Filename, art.Data, 0644); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("wrote %s (%d pages, %d bytes)",
			art.Filename, art.PageCount, art.SizeBytes)))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractPages, "pages", "p", "", "Page ranges to extract, e.g. 1-3,5")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default <input>_extract.deck)")
	extractCmd.Flags().BoolVar(&extractCheck, "check", false, "Only validate the range expression")
	_ = extractCmd.MarkFlagRequired("pages")
	rootCmd.AddCommand(extractCmd)
}
