package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/cm/internal/ai"
	"github.com/wizzomafizzo/cm/internal/editor"
	"github.com/wizzomafizzo/cm/internal/git"
	"github.com/wizzomafizzo/cm/internal/history"
	"github.com/wizzomafizzo/cm/internal/logging"
	"github.com/wizzomafizzo/cm/internal/prompt"
	"github.com/wizzomafizzo/cm/internal/session"
	"github.com/wizzomafizzo/cm/internal/storage"
	"github.com/wizzomafizzo/cm/internal/ui"
)

func runGenerate(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	fs := afero.NewOsFs()

	cfg, err := loadConfig(cmd, fs, opts, os.LookupEnv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	repo := git.New("")
	root, err := repo.Root(ctx)
	if err != nil {
		return err //nolint:wrapcheck // sentinel is the message
	}

	ctx, err = initLogging(ctx, fs, root, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.Get(ctx)

	genCtx, err := session.Gather(ctx, repo, session.GatherOptions{
		MaxDiffLines: cfg.MaxDiffLines,
		HistoryCount: cfg.HistoryCount,
		MaxRetries:   cfg.MaxRetries,
	})
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	display := ui.New(os.Stdout)
	display.Banner(provider.Name(), provider.Model(), repo.StagedFileCount(ctx))

	gen := ai.NewGenerator(provider, genCtx, ai.GeneratorOptions{
		OnAttempt: display.Attempt,
		OnError: func(_ uint, err error) {
			display.Warn("API error: %v. Retrying...", err)
		},
		MaxRetryWait: cfg.MaxRetryWait,
		Emoji:        cfg.Emoji,
	})

	s := &session.Session{
		Generator:  gen,
		Repo:       repo,
		Editor:     editor.New(fs, os.LookupEnv),
		Display:    display,
		RepoRoot:   root,
		Provider:   provider.Name(),
		Model:      provider.Model(),
		MinLength:  cfg.MinMessageLength,
		Emoji:      cfg.Emoji,
		AutoAccept: opts.yes,
		DryRun:     opts.dryRun,

		NewPrompter: prompt.NewLinerPrompter,
	}

	if store := openHistory(ctx, fs); store != nil {
		defer func() { _ = store.Close() }()
		s.History = store
	}

	logger.Info().
		Str("provider", string(cfg.Provider)).
		Str("model", provider.Model()).
		Bool("emoji", cfg.Emoji).
		Msg("starting generation")

	outcome, err := s.Run(ctx)
	logger.Info().Stringer("outcome", outcome).AnErr("error", err).Msg("session finished")
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	return nil
}

// openHistory opens the commit log. A store that cannot be opened only
// disables recording.
func openHistory(ctx context.Context, fs afero.Fs) *history.Store {
	logger := logging.Get(ctx)

	path, err := storage.New(fs).GetDatabasePath()
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return nil
	}

	store, err := history.Open(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("history disabled")
		return nil
	}
	return store
}
