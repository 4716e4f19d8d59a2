package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/pagestore"
	"github.com/pagedeck/pagedeck/progress"
)

var (
	// titleStyle for section headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted progress and metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for completion lines
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for failures
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

var rootCmd = &cobra.Command{
	Use:   "pagedeck",
	Short: "Reorganize paginated documents",
	Long: `pagedeck edits the page structure of a document: extract page ranges,
split into parts by range, count, or size, and inspect page metadata.

Documents use the deck container format; see "pagedeck gen" to create one.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// loadStore reads path into a fresh page store.
func loadStore(ctx context.Context, path string) (*pagestore.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := pagestore.New(codec.NewDeck(), pagestore.Config{})
	if err := s.Load(ctx, data, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// progressPrinter streams progress events to stderr.
func progressPrinter() progress.Func {
	return func(e progress.Event) {
		line := fmt.Sprintf("[%s] %3.0f%% %s", e.Stage, e.Percent, e.Message)
		fmt.Fprintln(os.Stderr, dimStyle.Render(line))
	}
}
