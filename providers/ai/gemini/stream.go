package gemini

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

// StreamMessage implements ai.StreamProvider using the streamGenerateContent
// endpoint with alt=sse. Each SSE event carries a generateContentResponse
// whose first candidate's first text part is the content delta; the stream
// terminates when the SSE stream ends (Gemini sends no sentinel).
func (p *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ai.ErrMissingConfig)
	}

	geminiReq := requestToGemini(request)

	httpResponse, err := utils.DoPostStream(
		ctx,
		p.client,
		p.endpointURL(request.Model, "streamGenerateContent", "alt=sse"),
		"",
		geminiReq,
	)
	if err != nil {
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		var finishReason string
		var usage *ai.Usage

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// End of SSE stream is Gemini's termination signal.
				if usage != nil {
					if !yield(ai.StreamEvent{Type: ai.StreamEventUsage, Usage: usage}, nil) {
						return
					}
				}
				yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: strings.ToLower(finishReason)}, nil)
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			frame, parseErr := utils.DecodeFrame[generateContentResponse](payload)
			if parseErr != nil {
				// Malformed individual frames never abort the stream.
				slog.Debug("dropping malformed stream frame", "provider", "gemini", "error", parseErr)
				continue
			}

			if len(frame.Candidates) > 0 && frame.Candidates[0].FinishReason != "" {
				finishReason = frame.Candidates[0].FinishReason
			}
			if frame.UsageMetadata != nil {
				usage = usageToGeneric(*frame.UsageMetadata)
			}

			if delta := extractDelta(frame); delta != "" {
				if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: delta}, nil) {
					return
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}
