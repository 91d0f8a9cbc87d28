package openai

import (
	"strings"

	"chatgate/providers/ai"
)

// requestToChatCompletion converts an ai.ChatRequest to the chat completions
// wire format. System messages stay in-line with their canonical role.
// Historical multi-part messages are collapsed to their text component so
// image payloads are never replayed; only the current request's images are
// attached, as image_url parts on the last message.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		})
	}

	if len(request.Images) > 0 && len(messages) > 0 {
		last := len(messages) - 1
		text, _ := messages[last].Content.(string)
		parts := []contentPart{{Type: "text", Text: text}}
		for _, image := range request.Images {
			parts = append(parts, contentPart{
				Type:     "image_url",
				ImageURL: &imageURL{URL: imageDataURL(image)},
			})
		}
		messages[last].Content = parts
	}

	return chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	}
}

// imageDataURL wraps a bare base64 payload as a data URL. Payloads that
// already carry a data: scheme are passed through untouched.
func imageDataURL(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return "data:image/jpeg;base64," + image
}

// responseToGeneric converts a chat completions response to the canonical
// format. The caller has already verified Choices is non-empty.
func responseToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Content:      resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
	}
	if resp.Usage != nil {
		result.Usage = usageToGeneric(*resp.Usage)
	}
	return result
}

func usageToGeneric(u usage) *ai.Usage {
	return &ai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
