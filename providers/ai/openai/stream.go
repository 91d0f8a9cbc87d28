package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

// StreamMessage implements ai.StreamProvider for the chat completions
// endpoint. It sends a streaming request with stream=true and returns a
// ChatStream that yields incremental deltas as SSE "data:" events arrive.
// The stream terminates on the literal "data: [DONE]" sentinel; anything
// received after it is ignored.
func (p *OpenAIProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: API key is not set", ai.ErrMissingConfig)
	}

	chatRequest := requestToChatCompletion(request)
	chatRequest.Stream = true
	chatRequest.StreamOptions = &streamOptions{IncludeUsage: true}

	// Body is left open for SSE reading
	httpResponse, err := utils.DoPostStream(ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, chatRequest)
	if err != nil {
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			chunk, parseErr := utils.DecodeFrame[chatCompletionStreamChunk](payload)
			if parseErr != nil {
				// Malformed individual frames never abort the stream.
				slog.Debug("dropping malformed stream frame", "provider", "openai", "error", parseErr)
				continue
			}

			for _, event := range chunkToStreamEvents(chunk) {
				if !yield(event, nil) {
					return // Caller stopped iterating
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// chunkToStreamEvents converts a single streaming chunk into zero or more
// canonical StreamEvents. A chunk can carry content, a finish reason, or (in
// the terminal frame requested via stream_options.include_usage) usage with
// empty choices.
func chunkToStreamEvents(chunk *chatCompletionStreamChunk) []ai.StreamEvent {
	var events []ai.StreamEvent

	if chunk.Usage != nil {
		events = append(events, ai.StreamEvent{
			Type:  ai.StreamEventUsage,
			Usage: usageToGeneric(*chunk.Usage),
		})
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			events = append(events, ai.StreamEvent{
				Type:    ai.StreamEventContent,
				Content: choice.Delta.Content,
			})
		}

		if choice.FinishReason != "" {
			events = append(events, ai.StreamEvent{
				Type:         ai.StreamEventDone,
				FinishReason: choice.FinishReason,
			})
		}
	}

	return events
}
