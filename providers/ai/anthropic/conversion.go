package anthropic

import (
	"strings"

	"chatgate/providers/ai"
)

// requestToAnthropic converts an ai.ChatRequest into an anthropicRequest
// ready to POST to the Messages API.
//
// System messages never appear in the messages array: every canonical
// system message is hoisted into the top-level system field, multiple ones
// concatenated with a newline. Historical multi-part messages are collapsed
// to their text component; only the current request's images are attached,
// as image blocks on the last message.
func requestToAnthropic(request ai.ChatRequest) anthropicRequest {
	var systemParts []string
	var messages []anthropicMessage

	for _, msg := range request.Messages {
		if msg.Role == ai.RoleSystem {
			if text := msg.Text(); text != "" {
				systemParts = append(systemParts, text)
			}
			continue
		}
		messages = append(messages, anthropicMessage{
			Role:    string(msg.Role),
			Content: []anthropicContentBlock{{Type: "text", Text: msg.Text()}},
		})
	}

	if len(request.Images) > 0 && len(messages) > 0 {
		last := len(messages) - 1
		for _, image := range request.Images {
			messages[last].Content = append(messages[last].Content, anthropicContentBlock{
				Type: "image",
				Source: &anthropicSource{
					Type:      "base64",
					MediaType: imageMediaType(image),
					Data:      imageData(image),
				},
			})
		}
	}

	return anthropicRequest{
		Model:     request.Model,
		System:    strings.Join(systemParts, "\n"),
		Messages:  messages,
		MaxTokens: defaultMaxTokens,
	}
}

// imageMediaType extracts the media type from a data URL, defaulting to
// image/jpeg for bare base64 payloads.
func imageMediaType(image string) string {
	if strings.HasPrefix(image, "data:") {
		rest := strings.TrimPrefix(image, "data:")
		if idx := strings.Index(rest, ";"); idx > 0 {
			return rest[:idx]
		}
	}
	return "image/jpeg"
}

// imageData strips any data URL envelope, returning the bare base64 payload.
func imageData(image string) string {
	if idx := strings.Index(image, "base64,"); idx >= 0 {
		return image[idx+len("base64,"):]
	}
	return image
}

// anthropicToGeneric converts a Messages API response to the canonical
// format. Text blocks are concatenated; usage maps input/output token
// counts onto prompt/completion (Anthropic reports no total).
func anthropicToGeneric(resp anthropicResponse) *ai.ChatResponse {
	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	result := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Content:      content.String(),
		FinishReason: resp.StopReason,
	}
	if resp.Usage != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		}
	}
	return result
}
