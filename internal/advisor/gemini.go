package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider generates replies with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a provider for apiKey. An empty baseURL uses the
// public endpoint. A nil httpClient uses the SDK default.
func NewGeminiProvider(ctx context.Context, baseURL, apiKey string, httpClient *http.Client) (*GeminiProvider, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Generate sends the whole history and returns the first candidate's text.
func (p *GeminiProvider) Generate(ctx context.Context, model string, history []Turn) (string, error) {
	contents := make([]*genai.Content, len(history))
	for i, t := range history {
		contents[i] = &genai.Content{Role: string(t.Role), Parts: []*genai.Part{{Text: t.Text}}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("generating content: no candidates returned")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

func classifyGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case http.StatusBadRequest, http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	default:
		return fmt.Errorf("generating content: %w", err)
	}
}
