package ai

import (
	"context"
	"errors"
	"time"

	"github.com/wizzomafizzo/cm/internal/emoji"
	"github.com/wizzomafizzo/cm/internal/logging"
	"github.com/wizzomafizzo/cm/internal/message"
)

// DefaultMaxRetries is the provider-error budget when none is configured.
const DefaultMaxRetries = 3

// GenerationContext is the per-run input to generation. It is built once
// from the repository and never changes during the run.
type GenerationContext struct {
	Diff       string
	History    string
	Stat       string
	MaxRetries uint
}

// Prompt builds the generation prompt for this context.
func (c GenerationContext) Prompt() string {
	return BuildPrompt(c.Diff, c.History, c.Stat)
}

// GeneratorOptions tunes a Generator. The callbacks let the caller show
// progress to the operator; both may be nil.
type GeneratorOptions struct {
	OnAttempt    func(attempt uint)
	OnError      func(attempt uint, err error)
	MaxRetryWait time.Duration
	Emoji        bool
}

// Generator produces commit message candidates, retrying provider failures
// up to the configured budget.
type Generator struct {
	provider   Provider
	sleep      func(ctx context.Context, d time.Duration) error
	opts       GeneratorOptions
	prompt     string
	maxRetries uint
	attempts   uint
}

// NewGenerator creates a Generator for one run.
func NewGenerator(provider Provider, genCtx GenerationContext, opts GeneratorOptions) *Generator {
	maxRetries := genCtx.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Generator{
		provider:   provider,
		prompt:     genCtx.Prompt(),
		maxRetries: maxRetries,
		opts:       opts,
		sleep:      sleepContext,
	}
}

// Provider returns the backend this generator talks to.
func (g *Generator) Provider() Provider {
	return g.provider
}

// Attempts returns how many attempts the current cycle has used.
func (g *Generator) Attempts() uint {
	return g.attempts
}

// Reset starts a fresh budget. Regeneration calls it so that asking for a
// new candidate is never charged against provider failures.
func (g *Generator) Reset() {
	g.attempts = 0
}

// Next returns the next candidate message. Provider errors and responses
// without a subject are reported through OnError and retried; once the budget
// is spent Next returns an *ExhaustedError.
func (g *Generator) Next(ctx context.Context) (message.CommitMessage, error) {
	logger := logging.Get(ctx)
	var lastErr error

	for {
		g.attempts++
		if g.attempts > g.maxRetries {
			return message.CommitMessage{}, &ExhaustedError{Attempts: g.maxRetries, Last: lastErr}
		}

		if g.opts.OnAttempt != nil {
			g.opts.OnAttempt(g.attempts)
		}

		msg, err := g.attempt(ctx)
		if err == nil {
			logger.Info().
				Uint("attempt", g.attempts).
				Str("subject", msg.Subject).
				Bool("has_body", msg.HasBody()).
				Msg("generated commit message")
			return msg, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return message.CommitMessage{}, ctxErr
		}

		lastErr = err
		logger.Warn().
			Err(err).
			Uint("attempt", g.attempts).
			Uint("max_retries", g.maxRetries).
			Bool("transient", IsTransient(err)).
			Msg("generation attempt failed")
		if g.opts.OnError != nil {
			g.opts.OnError(g.attempts, err)
		}

		if g.attempts < g.maxRetries {
			if err := g.backoff(ctx, err); err != nil {
				return message.CommitMessage{}, err
			}
		}
	}
}

func (g *Generator) attempt(ctx context.Context) (message.CommitMessage, error) {
	response, err := g.provider.Generate(ctx, g.prompt)
	if err != nil {
		return message.CommitMessage{}, err
	}

	msg := message.Parse(response)
	if msg.Subject == "" {
		return message.CommitMessage{}, &ParseError{Msg: "response contained no subject line"}
	}

	if g.opts.Emoji {
		msg.Subject = emoji.Decorate(msg.Subject)
	}
	return msg, nil
}

// backoff honours a rate limit hint, capped at MaxRetryWait. Every other
// error is retried immediately.
func (g *Generator) backoff(ctx context.Context, err error) error {
	var rateErr *RateLimitedError
	if !errors.As(err, &rateErr) || rateErr.RetryAfter == nil || g.opts.MaxRetryWait <= 0 {
		return nil
	}

	wait := min(*rateErr.RetryAfter, g.opts.MaxRetryWait)
	if wait <= 0 {
		return nil
	}

	logging.Get(ctx).Debug().Dur("wait", wait).Msg("waiting before retry")
	return g.sleep(ctx, wait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // cancellation is reported as-is
	case <-timer.C:
		return nil
	}
}
