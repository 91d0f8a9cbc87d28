// Package gemini implements the [ai.Provider] interface for Google's Gemini
// generative language API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements the ai.Provider interface for the Gemini API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance with default values from the
// environment. GEMINI_API_KEY supplies the credential and
// GEMINI_API_BASE_URL optionally overrides the endpoint base.
func New() *GeminiProvider {
	apiKey := os.Getenv("GEMINI_API_KEY")
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// endpointURL builds the per-model endpoint URL. Gemini authenticates via
// the key query parameter rather than a header.
func (p *GeminiProvider) endpointURL(model, method, extraQuery string) string {
	u := fmt.Sprintf("%s/models/%s:%s?key=%s", p.baseURL, model, method, url.QueryEscape(p.apiKey))
	if extraQuery != "" {
		u += "&" + extraQuery
	}
	return u
}

// SendMessage implements the ai.Provider interface using the buffered
// generateContent endpoint.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ai.ErrMissingConfig)
	}

	geminiReq := requestToGemini(request)

	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		p.endpointURL(request.Model, "generateContent", ""),
		"",
		geminiReq,
	)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	result := geminiToGeneric(*resp)
	result.Model = request.Model // Gemini omits the model from the response body
	return result, nil
}
