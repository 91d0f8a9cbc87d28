package ollama

import "chatgate/providers/ai"

// Wire types for the Ollama /api/chat endpoint. Shapes are fixed by the
// Ollama API and must not drift.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is both the buffered response shape and one frame of the
// newline-delimited JSON stream. Token counts only appear on the final
// (done) frame.
type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// requestToOllama converts the canonical request. System messages stay
// in-line; multi-part history is collapsed to its text component; the
// Images field is intentionally ignored (text-only adapter).
func requestToOllama(request ai.ChatRequest) chatRequest {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		})
	}
	return chatRequest{
		Model:    request.Model,
		Messages: messages,
	}
}

func responseToGeneric(resp *chatResponse, fallbackModel string) *ai.ChatResponse {
	model := resp.Model
	if model == "" {
		model = fallbackModel
	}
	result := &ai.ChatResponse{
		Model:   model,
		Content: resp.Message.Content,
	}
	if resp.Done {
		result.FinishReason = "stop"
	}
	if resp.PromptEvalCount > 0 || resp.EvalCount > 0 {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
		}
	}
	return result
}
