package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const geminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini is a single-shot generateContent backend.
type Gemini struct {
	apiKey string
	model  string
	opts   clientOptions
}

// NewGemini creates a Gemini client for model.
func NewGemini(apiKey, model string, opts ...Option) *Gemini {
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		opts:   buildOptions(geminiURL, opts),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// firstText returns candidates[0].content.parts[0].text.
func (r *geminiResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", false
	}
	return *parts[0].Text, true
}

func (*Gemini) Name() string { return "Gemini" }

func (p *Gemini) Model() string { return p.model }

// Generate sends prompt as one content part.
func (p *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}
	url := strings.TrimSuffix(p.opts.baseURL, "/") + "/" + p.model + ":generateContent"

	resp, err := postJSON(ctx, p.opts.httpClient, url, map[string]string{"x-goog-api-key": p.apiKey}, payload)
	if err != nil {
		return "", err
	}

	if resp.status == http.StatusTooManyRequests {
		return "", &RateLimitedError{}
	}
	if !resp.ok() {
		return "", &APIError{Status: resp.status, Message: resp.errorText()}
	}

	var body geminiResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return "", &ParseError{Msg: "invalid JSON body", Err: err}
	}
	text, ok := body.firstText()
	if !ok {
		return "", &ParseError{Msg: "failed to extract text from response"}
	}

	return strings.TrimSpace(text), nil
}
