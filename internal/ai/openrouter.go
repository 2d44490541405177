package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	openRouterURL     = "https://openrouter.ai/api/v1/chat/completions"
	openRouterReferer = "https://github.com/wizzomafizzo/cm"
	openRouterTitle   = "Commit Message Generator"
)

// OpenRouter is a chat-completions backend.
type OpenRouter struct {
	apiKey string
	model  string
	opts   clientOptions
}

// NewOpenRouter creates an OpenRouter client for model.
func NewOpenRouter(apiKey, model string, opts ...Option) *OpenRouter {
	return &OpenRouter{
		apiKey: apiKey,
		model:  model,
		opts:   buildOptions(openRouterURL, opts),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Error   *chatError   `json:"error"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
}

func (*OpenRouter) Name() string { return "OpenRouter" }

func (p *OpenRouter) Model() string { return p.model }

// Generate sends prompt as a single user message.
func (p *OpenRouter) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"HTTP-Referer":  openRouterReferer,
		"X-Title":       openRouterTitle,
	}

	resp, err := postJSON(ctx, p.opts.httpClient, p.opts.baseURL, headers, payload)
	if err != nil {
		return "", err
	}

	if resp.status == http.StatusTooManyRequests {
		return "", &RateLimitedError{RetryAfter: parseRetryAfter(resp.header.Get("Retry-After"), p.opts.now())}
	}

	var body chatResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		if !resp.ok() {
			return "", &APIError{Status: resp.status, Message: resp.errorText()}
		}
		return "", &ParseError{Msg: "invalid JSON body", Err: err}
	}

	if body.Error != nil {
		return "", &APIError{Status: resp.status, Message: body.Error.Message}
	}
	if !resp.ok() {
		return "", &APIError{Status: resp.status, Message: resp.errorText()}
	}
	if len(body.Choices) == 0 {
		return "", &ParseError{Msg: "no choices in response"}
	}

	content := body.Choices[0].Message.Content
	if content == nil {
		return "", &ParseError{Msg: "no content in first choice"}
	}

	return strings.TrimSpace(*content), nil
}
