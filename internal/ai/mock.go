package ai

import (
	"context"
	"sync"
)

// MockCall represents a single call to the mock provider
type MockCall struct {
	Prompt string
}

// MockResult is one scripted answer.
type MockResult struct {
	Err      error
	Response string
}

// MockProvider replays scripted results for testing. Once the script runs
// out the last result repeats.
type MockProvider struct {
	Results []MockResult
	Calls   []MockCall
	mu      sync.Mutex
}

// NewMockProvider creates a mock that answers with the given results in order.
func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{Results: results}
}

// GetCallCount returns number of calls
func (m *MockProvider) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Generate implements Provider
func (m *MockProvider) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.Calls)
	m.Calls = append(m.Calls, MockCall{Prompt: prompt})

	if len(m.Results) == 0 {
		return "SUBJECT: chore: mock response\nBODY: none", nil
	}
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1
	}
	return m.Results[idx].Response, m.Results[idx].Err
}

func (*MockProvider) Name() string { return "Mock" }

func (*MockProvider) Model() string { return "mock-model" }
