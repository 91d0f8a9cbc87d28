package ollama

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

// StreamMessage implements ai.StreamProvider over Ollama's newline-delimited
// JSON transport. Each line carries one frame with message.content as the
// delta; the frame with done=true (or end of stream) terminates.
func (p *OllamaProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("%w: server URL is not set", ai.ErrMissingConfig)
	}

	ollamaReq := requestToOllama(request)
	ollamaReq.Stream = true

	httpResponse, err := utils.DoPostStream(ctx, p.client, p.baseURL+chatEndpoint, "", ollamaReq)
	if err != nil {
		return nil, err
	}

	lineScanner := utils.NewLineScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			line, scanErr := lineScanner.Next()
			if scanErr == io.EOF {
				yield(ai.StreamEvent{Type: ai.StreamEventDone}, nil)
				return
			}
			if scanErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("stream read error: %w", scanErr))
				return
			}

			frame, parseErr := utils.DecodeFrame[chatResponse](line)
			if parseErr != nil {
				// Malformed individual frames never abort the stream.
				slog.Debug("dropping malformed stream frame", "provider", "ollama", "error", parseErr)
				continue
			}

			if frame.Message.Content != "" {
				if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: frame.Message.Content}, nil) {
					return
				}
			}

			if frame.Done {
				if frame.PromptEvalCount > 0 || frame.EvalCount > 0 {
					usage := &ai.Usage{
						PromptTokens:     frame.PromptEvalCount,
						CompletionTokens: frame.EvalCount,
					}
					if !yield(ai.StreamEvent{Type: ai.StreamEventUsage, Usage: usage}, nil) {
						return
					}
				}
				yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: "stop"}, nil)
				return
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}
