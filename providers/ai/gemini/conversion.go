package gemini

import (
	"strings"

	"chatgate/providers/ai"
)

// requestToGemini converts an ai.ChatRequest to a Gemini
// generateContentRequest.
//
// Role mapping: canonical assistant becomes "model", user stays "user", and
// system messages never appear in the contents array: they are hoisted into
// systemInstruction, multiple ones concatenated with a newline. Historical
// multi-part messages are collapsed to their text component; the current
// request's images become inline_data parts on the last turn, but only when
// that turn's role is user.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	var systemParts []string
	var contents []content

	for _, msg := range request.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			if text := msg.Text(); text != "" {
				systemParts = append(systemParts, text)
			}

		case ai.RoleAssistant:
			contents = append(contents, content{
				Role:  "model",
				Parts: []part{{Text: msg.Text()}},
			})

		case ai.RoleUser:
			contents = append(contents, content{
				Role:  "user",
				Parts: []part{{Text: msg.Text()}},
			})
		}
	}

	if len(request.Images) > 0 && len(contents) > 0 {
		last := len(contents) - 1
		if contents[last].Role == "user" {
			for _, image := range request.Images {
				contents[last].Parts = append(contents[last].Parts, part{
					InlineData: &inlineData{
						MimeType: imageMimeType(image),
						Data:     imageData(image),
					},
				})
			}
		}
	}

	req := generateContentRequest{Contents: contents}
	if len(systemParts) > 0 {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: strings.Join(systemParts, "\n")}},
		}
	}
	return req
}

// imageMimeType extracts the mime type from a data URL, defaulting to
// image/jpeg for bare base64 payloads.
func imageMimeType(image string) string {
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

// geminiToGeneric converts a generateContentResponse to the canonical
// format, concatenating the text parts of the first candidate.
func geminiToGeneric(resp generateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{}

	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		var text strings.Builder
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		result.Content = text.String()
		result.FinishReason = strings.ToLower(cand.FinishReason)
	}

	if resp.UsageMetadata != nil {
		result.Usage = usageToGeneric(*resp.UsageMetadata)
	}
	return result
}

func usageToGeneric(u usageMetadata) *ai.Usage {
	return &ai.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
	}
}

// extractDelta returns the text fragment carried by one streaming frame:
// candidates[0].content.parts[0].text. Frames without a candidate or text
// part yield the empty string.
func extractDelta(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
