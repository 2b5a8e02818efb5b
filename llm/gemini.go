package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator generates completions with the Gemini SDK
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini-backed generator
func NewGemini(ctx context.Context, apiKey, model string, temperature float64) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate runs one system-instructed generation
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 {
		return "", &UpstreamError{Kind: ErrUpstream, Body: "no candidates in response"}
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		// only the first candidate with content is used
		if text.Len() > 0 {
			break
		}
	}

	return text.String(), nil
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" {
			body = apiErr.Body
		}
		return NewUpstreamError(apiErr.Code, body)
	}
	return &UpstreamError{Kind: ErrUpstream, Body: err.Error()}
}
