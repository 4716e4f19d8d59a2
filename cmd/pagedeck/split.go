package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/exporter"
	"github.com/pagedeck/pagedeck/splitplan"
)

var (
	splitRanges string
	splitParts  int
	splitEvery  int
	splitOutDir string
	splitZip    bool
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a document into parts",
	Long: `Split divides a document by one of three methods:

  --ranges "1-3,4-6"   one part per range
  --parts 3            three parts of equal size
  --every 5            parts of five pages each

Exactly one method must be given. With --zip the parts and a
manifest.json are bundled into a single archive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, params, err := splitMethod()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := loadStore(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Clear()

		if err := os.MkdirAll(splitOutDir, 0755); err != nil {
			return err
		}

		base := strings.TrimSuffix(filepath.Base(args[0]), ".deck")
		e := exporter.New(codec.NewDeck(), nil)
		arts, err := e.Split(ctx, s, method, params, base, progressPrinter())
		if err != nil {
			return err
		}

		if splitZip {
			data, err := exporter.Zip(arts)
			if err != nil {
				return err
			}
			out := filepath.Join(splitOutDir, base+"_split.zip")
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("wrote %s (%d parts)", out, len(arts))))
			return nil
		}

		for _, art := range arts {
			out := filepath.Join(splitOutDir, art.Filename)
			if err := os.WriteFile(out, art.Data, 0644); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("wrote %s (%d pages, %d bytes)",
				out, art.PageCount, art.SizeBytes)))
		}
		return nil
	},
}

// splitMethod maps the mutually exclusive flags onto a plan method.
func splitMethod() (splitplan.Method, splitplan.Params, error) {
	set := 0
	if splitRanges != "" {
		set++
	}
	if splitParts > 0 {
		set++
	}
	if splitEvery > 0 {
		set++
	}
	if set != 1 {
		return 0, splitplan.Params{}, fmt.Errorf("exactly one of --ranges, --parts, --every is required")
	}
	switch {
	case splitRanges != "":
		return splitplan.ByRanges, splitplan.Params{Ranges: splitRanges}, nil
	case splitParts > 0:
		return splitplan.EqualParts, splitplan.Params{Parts: splitParts}, nil
	default:
		return splitplan.EveryN, splitplan.Params{PagesPerGroup: splitEvery}, nil
	}
}

func init() {
	splitCmd.Flags().StringVar(&splitRanges, "ranges", "", "Split by explicit page ranges")
	splitCmd.Flags().IntVar(&splitParts, "parts", 0, "Split into N equal parts")
	splitCmd.Flags().IntVar(&splitEvery, "every", 0, "Split every K pages")
	splitCmd.Flags().StringVarP(&splitOutDir, "out-dir", "d", ".", "Output directory")
	splitCmd.Flags().BoolVar(&splitZip, "zip", false, "Bundle parts into a single zip archive")
	rootCmd.AddCommand(splitCmd)
}
