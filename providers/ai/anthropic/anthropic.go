// Package anthropic implements the [ai.Provider] interface for Anthropic's
// Messages API. The adapter is buffered-only: streaming callers receive the
// complete response wrapped in a single-event stream by the dispatcher.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently
	// of the URL.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is applied when the caller gives no limit;
	// Anthropic requires max_tokens on every request.
	defaultMaxTokens = 4096
)

// AnthropicProvider implements [ai.Provider] for Anthropic's Messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns an [AnthropicProvider] initialized from environment variables.
// It reads ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL
// for the endpoint base (defaulting to https://api.anthropic.com/v1 when
// unset).
func New() *AnthropicProvider {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns
// the provider so calls can be chained.
func (p *AnthropicProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls
// can be chained. Use this when targeting a proxy or local testing endpoint.
func (p *AnthropicProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (p *AnthropicProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// buildHeaders constructs the HTTP headers required for every Anthropic
// request. x-api-key carries the credential (Anthropic does not use Bearer
// tokens) and anthropic-version pins the wire format.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// SendMessage implements [ai.Provider] by sending a synchronous chat request
// to Anthropic's Messages API and returning the full response mapped to the
// canonical [ai.ChatResponse] format.
func (p *AnthropicProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	// Guard against missing credentials before making a network call.
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ai.ErrMissingConfig)
	}

	anthropicReq := requestToAnthropic(request)

	// Pass empty apiKey so DoPostSync does not inject a Bearer token;
	// Anthropic authenticates via x-api-key instead.
	httpResponse, resp, err := utils.DoPostSync[anthropicResponse](
		ctx,
		p.client,
		p.baseURL+messagesEndpoint,
		"",
		anthropicReq,
		p.buildHeaders()...,
	)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Anthropic API: %s", httpResponse.Status)
	}

	result := anthropicToGeneric(*resp)

	// Anthropic usually echoes the model name; fall back to the request
	// model so callers always have a non-empty Model field.
	if result.Model == "" {
		result.Model = request.Model
	}

	return result, nil
}
