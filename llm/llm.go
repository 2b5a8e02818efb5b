// Package llm wraps the external text-generation capability used for
// contract analysis and chat.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUpstream        = errors.New("generation backend error")
	ErrRateLimited     = errors.New("generation backend rate limit exceeded")
	ErrPaymentRequired = errors.New("generation backend quota exhausted")
)

// Generator produces a completion for one system + user prompt pair.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	return f(ctx, systemPrompt, userPrompt, maxTokens)
}

// UpstreamError is a non-success answer from the generation backend.
// Kind is one of ErrUpstream, ErrRateLimited or ErrPaymentRequired.
type UpstreamError struct {
	StatusCode int
	Body       string
	Kind       error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Body)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// NewUpstreamError classifies a backend status code.
func NewUpstreamError(statusCode int, body string) *UpstreamError {
	kind := ErrUpstream
	switch statusCode {
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	case http.StatusPaymentRequired:
		kind = ErrPaymentRequired
	}
	return &UpstreamError{StatusCode: statusCode, Body: body, Kind: kind}
}
