package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/cm/internal/config"
	"github.com/wizzomafizzo/cm/internal/logging"
	"github.com/wizzomafizzo/cm/internal/storage"
)

type rootOptions struct {
	configPath   string
	provider     string
	model        string
	logLevel     string
	maxDiffLines int
	maxRetries   uint
	noEmoji      bool
	yes          bool
	dryRun       bool
}

// createRootCommand creates the root command, which generates and reviews a
// commit message for the staged changes.
func createRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cm",
		Short: "Generate conventional commit messages for staged changes",
		Long: "cm sends the staged diff to an AI backend, shows the suggested " +
			"conventional commit message and lets you accept, edit, regenerate or quit.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.provider, "provider", "p", "", "AI provider: openrouter or gemini")
	flags.StringVarP(&opts.model, "model", "m", "", "Model name for the selected provider")
	flags.BoolVar(&opts.noEmoji, "no-emoji", false, "Do not prefix the subject with an emoji")
	flags.IntVar(&opts.maxDiffLines, "max-diff-lines", 0, "Maximum diff lines sent to the provider")
	flags.UintVar(&opts.maxRetries, "max-retries", 0, "Generation attempts before giving up")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Commit the first suggestion without review")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show the suggestion without committing")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	persistent.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")

	rootCmd.AddCommand(
		createHistoryCommand(opts),
		createTypesCommand(),
		createVersionCommand(),
	)

	return rootCmd
}

// loadConfig resolves the configuration and applies any flags the user set.
// It does not validate.
func loadConfig(cmd *cobra.Command, fs afero.Fs, opts *rootOptions, lookup config.LookupFunc) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = storage.New(fs).ConfigPath()
	}

	cfg, err := config.Load(fs, path, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, cfg, opts)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("provider") {
		cfg.Provider = config.Provider(opts.provider)
		// A model given for another provider would not apply.
		if !changed("model") {
			cfg.Model = ""
		}
	}
	if changed("model") {
		cfg.Model = opts.model
	}
	if changed("no-emoji") && opts.noEmoji {
		cfg.Emoji = false
	}
	if changed("max-diff-lines") {
		cfg.MaxDiffLines = opts.maxDiffLines
	}
	if changed("max-retries") {
		cfg.MaxRetries = opts.maxRetries
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

// initLogging attaches the file logger for repoRoot to ctx.
func initLogging(ctx context.Context, fs afero.Fs, repoRoot, level string) (context.Context, error) {
	ctx, err := logging.New(ctx, fs, logging.Config{
		RepoRoot: repoRoot,
		Level:    logging.ParseLevel(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return ctx, nil
}
