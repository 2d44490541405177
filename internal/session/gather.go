package session

import (
	"context"
	"fmt"

	"github.com/wizzomafizzo/cm/internal/ai"
	"github.com/wizzomafizzo/cm/internal/git"
	"github.com/wizzomafizzo/cm/internal/logging"
)

// Source reads the repository state a run is generated from.
type Source interface {
	IsRepository(ctx context.Context) bool
	StagedDiff(ctx context.Context, maxLines int) (string, error)
	CommitHistory(ctx context.Context, n int) string
	DiffStat(ctx context.Context) string
}

// GatherOptions sizes the repository snapshot.
type GatherOptions struct {
	MaxDiffLines int
	HistoryCount int
	MaxRetries   uint
}

// Gather builds the generation input for one run. It fails with
// git.ErrNotARepository or git.ErrNoStagedChanges before any backend is
// contacted.
func Gather(ctx context.Context, src Source, opts GatherOptions) (ai.GenerationContext, error) {
	if !src.IsRepository(ctx) {
		return ai.GenerationContext{}, git.ErrNotARepository
	}

	diff, err := src.StagedDiff(ctx, opts.MaxDiffLines)
	if err != nil {
		return ai.GenerationContext{}, fmt.Errorf("failed to read staged changes: %w", err)
	}

	genCtx := ai.GenerationContext{
		Diff:       diff,
		History:    src.CommitHistory(ctx, opts.HistoryCount),
		Stat:       src.DiffStat(ctx),
		MaxRetries: opts.MaxRetries,
	}

	logging.Get(ctx).Debug().
		Int("diff_bytes", len(genCtx.Diff)).
		Int("history_bytes", len(genCtx.History)).
		Uint("max_retries", genCtx.MaxRetries).
		Msg("gathered repository state")

	return genCtx, nil
}
