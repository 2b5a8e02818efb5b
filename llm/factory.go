package llm

import (
	"context"
	"fmt"
	"time"
)

// Providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Settings selects and configures a generator
type Settings struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// New builds the configured generator. The returned close function releases
// provider resources and is never nil.
func New(ctx context.Context, s Settings) (Generator, func() error, error) {
	noop := func() error { return nil }

	var gen Generator
	closeFn := noop
	switch s.Provider {
	case ProviderGemini:
		g, err := NewGemini(ctx, s.APIKey, s.Model, s.Temperature)
		if err != nil {
			return nil, noop, err
		}
		gen, closeFn = g, g.Close
	case ProviderOpenAI:
		gen = NewOpenAI(OpenAIConfig{
			BaseURL:     s.BaseURL,
			APIKey:      s.APIKey,
			Model:       s.Model,
			Temperature: s.Temperature,
			Timeout:     s.Timeout,
		})
	default:
		return nil, noop, fmt.Errorf("unknown LLM provider: %q", s.Provider)
	}

	return NewRateLimited(gen, s.RequestsPerMinute, s.Burst), closeFn, nil
}
