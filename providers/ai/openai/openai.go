// Package openai implements the [ai.Provider] interface for the OpenAI chat
// completions API and any OpenAI-compatible endpoint (Grok, OpenRouter,
// self-hosted gateways) selected via WithBaseURL.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// OpenAIProvider implements the Provider interface for the OpenAI API and
// compatible endpoints.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new OpenAI provider instance with default values from the
// environment. OPENAI_API_KEY supplies the credential and OPENAI_API_BASE_URL
// optionally overrides the endpoint base.
func New() *OpenAIProvider {
	apiKey := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API. Use this to target Grok or any
// other OpenAI-compatible endpoint.
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements the ai.Provider interface.
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: API key is not set", ai.ErrMissingConfig)
	}

	chatRequest := requestToChatCompletion(request)

	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, chatRequest)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return responseToGeneric(*resp), nil
}
