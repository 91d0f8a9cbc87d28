// Package prompt builds the final canonical message list sent to a provider
// adapter: one composed system message prepended to the conversation, plus
// extracted document text folded into the last user turn.
package prompt

import (
	"fmt"
	"strings"

	"chatgate/providers/ai"
)

// FormattingDirective is the fixed formatting rule present in every composed
// system message, regardless of agent or instruction input.
const FormattingDirective = "Format answers in Markdown. Present tabular data as Markdown tables, " +
	"use > blockquotes for quoted material, and **bold** for key terms."

// documentMarker introduces extracted document text appended to a plain-text
// user message.
const documentMarker = "\n\n--- Attached document ---\n"

// AgentProfile is a reusable persona applied to a conversation. The json
// tags allow the profile to be embedded directly in persisted agent records.
type AgentProfile struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Personality  string `json:"personality"`
	Expertise    string `json:"expertise"`
	Instructions string `json:"instructions,omitempty"`
	Knowledge    string `json:"knowledge,omitempty"`
}

// personaBlock renders the agent profile as a system prompt section.
// An empty profile contributes nothing.
func personaBlock(agent *AgentProfile) string {
	if agent == nil {
		return ""
	}
	var b strings.Builder
	writeField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	writeField("You are", agent.Name)
	writeField("Role", agent.Role)
	writeField("Personality", agent.Personality)
	writeField("Expertise", agent.Expertise)
	writeField("Instructions", agent.Instructions)
	writeField("Knowledge", agent.Knowledge)
	return strings.TrimRight(b.String(), "\n")
}

// Compose produces the final ordered message list for a provider adapter.
//
// The system message concatenates, in fixed precedence: the formatting
// directive, the agent persona block (when an agent is selected), and the
// user-saved per-chat instruction. It is always prepended as a new first
// entry, never merged into an existing message, and is inserted even when
// agent and instruction are empty so the formatting directive is always
// active.
//
// When documentText is non-empty it is appended to the last message only if
// that message's role is user: as a marker plus text on scalar content, or
// as an additional text part on a part sequence. Images are not handled
// here; adapters attach them so the canonical list stays provider-agnostic.
func Compose(messages []ai.Message, agent *AgentProfile, instruction string, documentText string) []ai.Message {
	sections := []string{FormattingDirective}
	if persona := personaBlock(agent); persona != "" {
		sections = append(sections, persona)
	}
	if instruction != "" {
		sections = append(sections, instruction)
	}
	systemMessage := ai.TextMessage(ai.RoleSystem, strings.Join(sections, "\n\n"))

	composed := make([]ai.Message, 0, len(messages)+1)
	composed = append(composed, systemMessage)
	composed = append(composed, messages...)

	if documentText != "" && len(composed) > 1 {
		last := len(composed) - 1
		if composed[last].Role == ai.RoleUser {
			if composed[last].IsMultiPart() {
				composed[last].AppendText(documentText)
			} else {
				composed[last].AppendText(documentMarker + documentText)
			}
		}
	}

	return composed
}
