package ai

import "strings"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a single chat completion request in canonical form.
// Messages carry the full conversation including the composed system message
// at index 0. Images are base64 payloads for the current turn only; each
// adapter attaches them to the last user message in its own wire format and
// never replays images from earlier turns.
type ChatRequest struct {
	Model    string    `json:"model,omitempty"` // Model name or identifier
	Messages []Message `json:"messages"`        // Full ordered conversation, system message first
	Images   []string  `json:"images,omitempty"`
}

// Message represents a single message in a conversation. Content is either
// the scalar Content string or the ordered ContentParts sequence; the
// representation is fixed at construction and ContentParts wins when both
// are set.
type Message struct {
	Role         MessageRole    `json:"role"`
	Content      string         `json:"content,omitempty"`
	ContentParts []ContentPart  `json:"content_parts,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"` // Arbitrary metadata; carries usage stats on assistant turns
}

// TextMessage builds a plain scalar-content message.
func TextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// IsMultiPart reports whether the message uses the part-sequence content
// representation.
func (m Message) IsMultiPart() bool {
	return len(m.ContentParts) > 0
}

// Text returns the textual content of the message regardless of
// representation: the scalar Content, or the concatenated text parts of a
// multi-part message. Image parts contribute nothing, which is what adapters
// rely on to collapse image-bearing history turns to text before re-sending.
func (m Message) Text() string {
	if !m.IsMultiPart() {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.ContentParts {
		if p.Type == ContentTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// AppendText adds text to the message in its existing representation:
// appended as a suffix on scalar content, or as an additional text part on a
// part sequence.
func (m *Message) AppendText(text string) {
	if m.IsMultiPart() {
		m.ContentParts = append(m.ContentParts, ContentPart{Type: ContentTypeText, Text: text})
		return
	}
	m.Content += text
}

// ContentPart is one typed element of a multi-part message content sequence.
type ContentPart struct {
	Type  ContentType `json:"type"`
	Text  string      `json:"text,omitempty"`
	Image *ImageData  `json:"image,omitempty"`
}

// ImageData is an inline image attached to a message.
type ImageData struct {
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded payload
}

// Attachment is an uploaded file accompanying a chat request. Images are
// passed to adapters as raw base64 strings; documents are extracted to plain
// text before they reach the adapters.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"` // base64-encoded payload
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage holds the token accounting reported by a provider. All fields
// default to zero when the provider does not report them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the completed response to a chat request.
type ChatResponse struct {
	Id           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

// ContentType identifies the kind of a [ContentPart].
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)
