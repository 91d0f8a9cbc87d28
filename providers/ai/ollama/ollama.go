// Package ollama implements the [ai.Provider] interface for Ollama-style
// self-hosted servers (local Ollama, RunPod deployments). The adapter is
// text-only: images are not sent on either the buffered or the streaming
// path, so both paths stay in feature parity.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

const chatEndpoint = "/api/chat"

// OllamaProvider implements the Provider interface for self-hosted
// Ollama-compatible servers. There is no authentication; the base URL alone
// identifies the deployment and is required.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
}

// New creates a new Ollama provider. The base URL must be supplied via
// WithBaseURL before use; self-hosted deployments have no well-known
// default.
func New() *OllamaProvider {
	return &OllamaProvider{
		client: &http.Client{},
	}
}

// WithAPIKey is a no-op: Ollama-style servers do not authenticate.
func (p *OllamaProvider) WithAPIKey(string) ai.Provider {
	return p
}

// WithBaseURL sets the server URL. A trailing slash is tolerated.
func (p *OllamaProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *OllamaProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements the ai.Provider interface with a buffered
// (stream=false) call.
func (p *OllamaProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("%w: server URL is not set", ai.ErrMissingConfig)
	}

	ollamaReq := requestToOllama(request)
	ollamaReq.Stream = false

	httpResponse, resp, err := utils.DoPostSync[chatResponse](ctx, p.client, p.baseURL+chatEndpoint, "", ollamaReq)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Ollama server: %s", httpResponse.Status)
	}

	return responseToGeneric(resp, request.Model), nil
}
