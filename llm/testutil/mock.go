// Package testutil provides test doubles for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/commitai/llm"
)

// MockGenerator is a thread-safe scripted stand-in for llm.Client. It
// returns configured responses or errors in sequence and counts calls so
// tests can assert how many provider attempts were made.
//
//	// Single response
//	mock := &testutil.MockGenerator{Responses: []string{"feat: add login"}}
//
//	// Error then success (for retry testing)
//	mock := &testutil.MockGenerator{
//	    Errors:    []error{llm.NewProviderError("mock", llm.KindTimeout, err)},
//	    Responses: []string{"feat: add login"},
//	}
type MockGenerator struct {
	mu sync.Mutex

	// Errors are returned first, one per call, before Responses.
	Errors []error
	// Responses are returned in sequence once Errors are exhausted.
	Responses []string

	callCount        int
	capturedMessages [][]llm.Message
}

// Name implements the generator client surface.
func (m *MockGenerator) Name() string { return "mock" }

// Generate returns the next scripted error or response.
func (m *MockGenerator) Generate(_ context.Context, messages []llm.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++
	m.capturedMessages = append(m.capturedMessages, messages)

	if idx < len(m.Errors) {
		return "", m.Errors[idx]
	}

	idx -= len(m.Errors)
	if idx < len(m.Responses) {
		return m.Responses[idx], nil
	}

	return "", nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Messages returns the message batch sent on call i.
func (m *MockGenerator) Messages(i int) []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.capturedMessages) {
		return nil
	}
	return m.capturedMessages[i]
}

// Reset clears scripted state so the mock can be reused.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.capturedMessages = nil
}
