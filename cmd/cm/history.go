package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/cm/internal/git"
	"github.com/wizzomafizzo/cm/internal/history"
	"github.com/wizzomafizzo/cm/internal/storage"
)

const defaultHistoryLimit = 20

type historyReader interface {
	Recent(ctx context.Context, repo string, limit int) ([]history.Entry, error)
}

// createHistoryCommand creates the history command.
func createHistoryCommand(root *rootOptions) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List commit messages created by cm",
		Long:  "List commit messages created by cm in this repository, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fs := afero.NewOsFs()

			cfg, err := loadConfig(cmd, fs, root, os.LookupEnv)
			if err != nil {
				return err
			}

			repoRoot := ""
			if !all {
				if repoRoot, err = git.New("").Root(ctx); err != nil {
					return err //nolint:wrapcheck // sentinel is the message
				}
			}

			if ctx, err = initLogging(ctx, fs, repoRoot, cfg.LogLevel); err != nil {
				return err
			}

			path, err := storage.New(fs).GetDatabasePath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			store, err := history.Open(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			return printHistory(ctx, cmd.OutOrStdout(), store, repoRoot, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of entries to show")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show entries from every repository")

	return cmd
}

func printHistory(ctx context.Context, out io.Writer, store historyReader, repo string, limit int) error {
	entries, err := store.Recent(ctx, repo, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No commits recorded yet.")
		return nil
	}

	dim := color.New(color.Faint)
	for _, e := range entries {
		marker := ""
		if e.Edited {
			marker = " (edited)"
		}
		_, _ = fmt.Fprintf(out, "%s  %s%s\n",
			dim.Sprint(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			e.Subject,
			dim.Sprint(marker),
		)
		if repo == "" {
			_, _ = fmt.Fprintf(out, "                  %s\n", dim.Sprint(e.Repo))
		}
		_, _ = fmt.Fprintf(out, "                  %s\n", dim.Sprintf("%s (%s), %d attempt(s)", e.Provider, e.Model, e.Attempts))
	}
	return nil
}
