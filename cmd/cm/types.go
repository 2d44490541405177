package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/cm/internal/emoji"
)

// createTypesCommand creates the types command.
func createTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List commit types and their emoji",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printTypes(cmd.OutOrStdout())
			return nil
		},
	}
}

func printTypes(out io.Writer) {
	entries := emoji.Entries()

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Type))
	}

	for _, e := range entries {
		glyph := e.Glyph + strings.Repeat(" ", max(0, 2-runewidth.StringWidth(e.Glyph)))
		_, _ = fmt.Fprintf(out, "%s  %-*s  %s\n", glyph, width, e.Type, e.Description)
	}
}
