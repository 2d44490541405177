// Package ai talks to text-generation backends and turns staged changes into
// commit messages.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wizzomafizzo/cm/internal/config"
	"github.com/wizzomafizzo/cm/internal/logging"
)

const (
	defaultTimeout = 60 * time.Second

	// Sampling settings shared by every backend.
	temperature = 0.7
	maxTokens   = 500

	// maxErrorBody caps how much of a failed response is kept in an APIError.
	maxErrorBody = 2048
)

// Provider generates text for a prompt. Implementations never retry on their
// own; the Generator owns the retry policy.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

type clientOptions struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// Option customises a backend client.
type Option func(*clientOptions)

// WithHTTPClient replaces the default client (60s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithBaseURL points a backend at a different endpoint, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

func buildOptions(defaultURL string, opts []Option) clientOptions {
	o := clientOptions{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewProvider creates the backend selected by cfg.
func NewProvider(cfg *config.Config, opts ...Option) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.ResolvedModel(), opts...), nil
	case config.ProviderGemini:
		return NewGemini(cfg.GoogleAPIKey, cfg.ResolvedModel(), opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider '%s'", cfg.Provider)
	}
}

// response is a fully read HTTP answer.
type response struct {
	header http.Header
	body   []byte
	status int
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) errorText() string {
	body := r.body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if len(body) == 0 {
		return http.StatusText(r.status)
	}
	// The cut may split a rune.
	return strings.ToValidUTF8(string(bytes.TrimSpace(body)), "")
}

// postJSON sends payload and reads the whole response. Every transport-level
// failure comes back as a *NetworkError.
func postJSON(
	ctx context.Context, client *http.Client, url string, headers map[string]string, payload any,
) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	logging.Get(ctx).Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("generation request finished")

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}
