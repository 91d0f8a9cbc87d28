// Package chat orchestrates one chat turn: it composes the final message
// list, dispatches to the selected provider adapter, re-emits the provider's
// output as a uniform delta sequence, aggregates usage, and hands the
// completed turn to the session store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"chatgate/core/dispatch"
	"chatgate/core/prompt"
	"chatgate/internal/utils"
	"chatgate/providers/ai"
)

// Request is one inbound chat turn. Messages carry the conversation as the
// caller knows it; Images attach to the final user turn only; Documents are
// extracted to text before dispatch.
type Request struct {
	ChatID     string          `json:"chat_id"`
	ProviderID string          `json:"provider_id"`
	ModelID    string          `json:"model_id"`
	Messages   []ai.Message    `json:"messages"`
	Images     []string        `json:"images,omitempty"`
	Documents  []ai.Attachment `json:"documents,omitempty"`
	AgentID    string          `json:"agent_id,omitempty"`
}

// Response is the buffered (non-streaming) result of one chat turn.
type Response struct {
	Content  string   `json:"content"`
	Model    string   `json:"model"`
	Provider string   `json:"provider"`
	Usage    ai.Usage `json:"usage"`
}

// Event is one unit of the streaming response surfaced to the caller:
// either a text chunk or a terminal error message.
type Event struct {
	Chunk string `json:"chunk,omitempty"`
	Error string `json:"error,omitempty"`
}

// Collaborator interfaces. All except ConfigResolver are optional; a nil
// collaborator behaves as "absent" (no agent, no instruction, no document
// text, no persistence).

// ConfigResolver supplies the read-only provider configuration snapshot for
// one request.
type ConfigResolver interface {
	ResolveProviderConfig(providerID string) (dispatch.ProviderConfig, bool)
}

// AgentResolver looks up a stored agent profile by id.
type AgentResolver interface {
	ResolveAgent(agentID string) (*prompt.AgentProfile, bool)
}

// InstructionStore returns the user-saved per-chat instruction, empty when
// none is saved.
type InstructionStore interface {
	SavedInstruction(chatID string) string
}

// DocumentExtractor converts an uploaded attachment to plain text.
type DocumentExtractor interface {
	ExtractText(attachment ai.Attachment) string
}

// SessionStore persists the full message history after a completed or
// explicitly-errored turn. Implementations may write asynchronously; the
// service does not inspect the outcome.
type SessionStore interface {
	PersistSession(chatID string, history []ai.Message)
}

// Service wires the collaborators together. Construct with [NewService].
type Service struct {
	registry     *dispatch.Registry
	configs      ConfigResolver
	agents       AgentResolver
	instructions InstructionStore
	extractor    DocumentExtractor
	sessions     SessionStore
	logger       *slog.Logger
}

// NewService builds a chat service. registry and configs are required;
// the remaining collaborators may be nil.
func NewService(registry *dispatch.Registry, configs ConfigResolver, agents AgentResolver, instructions InstructionStore, extractor DocumentExtractor, sessions SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:     registry,
		configs:      configs,
		agents:       agents,
		instructions: instructions,
		extractor:    extractor,
		sessions:     sessions,
		logger:       logger,
	}
}

// composeMessages resolves the optional agent, saved instruction, and
// document text, then builds the final message list via the prompt
// composer.
func (s *Service) composeMessages(request Request) []ai.Message {
	var agent *prompt.AgentProfile
	if request.AgentID != "" && s.agents != nil {
		if resolved, ok := s.agents.ResolveAgent(request.AgentID); ok {
			agent = resolved
		} else {
			s.logger.Warn("agent not found, composing without persona", "agent_id", request.AgentID)
		}
	}

	var instruction string
	if s.instructions != nil {
		instruction = s.instructions.SavedInstruction(request.ChatID)
	}

	var documentText string
	if s.extractor != nil && len(request.Documents) > 0 {
		texts := make([]string, 0, len(request.Documents))
		for _, doc := range request.Documents {
			if text := s.extractor.ExtractText(doc); text != "" {
				texts = append(texts, text)
			}
		}
		documentText = strings.Join(texts, "\n\n")
	}

	return prompt.Compose(request.Messages, agent, instruction, documentText)
}

// Send handles one buffered chat turn. The adapter's canonical stream is
// collected into a single response; an upstream non-2xx is surfaced
// verbatim as the answer text so the caller sees the provider diagnostic.
func (s *Service) Send(ctx context.Context, request Request) (*Response, error) {
	cfg, ok := s.configs.ResolveProviderConfig(request.ProviderID)
	if !ok {
		return nil, fmt.Errorf("%w: no configuration for provider %q", ai.ErrMissingConfig, request.ProviderID)
	}

	messages := s.composeMessages(request)
	chatRequest := ai.ChatRequest{
		Model:    request.ModelID,
		Messages: messages,
		Images:   request.Images,
	}

	var accumulator UsageAccumulator

	stream, err := s.registry.Stream(ctx, cfg, chatRequest)
	if err != nil {
		if answer, isUpstream := upstreamAnswer(err); isUpstream {
			s.persist(request, answer, accumulator.Totals())
			return s.response(request, answer, accumulator.Totals()), nil
		}
		return nil, err
	}

	collected, err := stream.Collect()
	if err != nil {
		// No provider answer to persist; surface the failure.
		return nil, err
	}

	accumulator.Record(collected.Usage)
	totals := accumulator.Totals()
	s.persist(request, collected.Content, totals)
	return s.response(request, collected.Content, totals), nil
}

// Stream handles one streaming chat turn, yielding chunk events in the
// exact order deltas arrive from the provider. Any failure is converted to
// a single terminal error event. The session store is written only after a
// complete or explicitly-errored termination, never on caller
// cancellation.
func (s *Service) Stream(ctx context.Context, request Request) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		cfg, ok := s.configs.ResolveProviderConfig(request.ProviderID)
		if !ok {
			yield(Event{Error: fmt.Sprintf("no configuration for provider %q", request.ProviderID)})
			return
		}

		messages := s.composeMessages(request)
		chatRequest := ai.ChatRequest{
			Model:    request.ModelID,
			Messages: messages,
			Images:   request.Images,
		}

		stream, err := s.registry.Stream(ctx, cfg, chatRequest)
		if err != nil {
			if answer, isUpstream := upstreamAnswer(err); isUpstream {
				// The upstream diagnostic becomes the answer text.
				if yield(Event{Chunk: answer}) {
					s.persist(request, answer, ai.Usage{})
				}
				return
			}
			yield(Event{Error: err.Error()})
			return
		}

		var answer strings.Builder
		var accumulator UsageAccumulator

		for event, streamErr := range stream.Iter() {
			if streamErr != nil {
				if ctx.Err() != nil {
					// Cancelled by the caller: no persistence.
					return
				}
				yield(Event{Error: streamErr.Error()})
				if answer.Len() > 0 {
					s.persist(request, answer.String(), accumulator.Totals())
				}
				return
			}

			switch event.Type {
			case ai.StreamEventContent:
				answer.WriteString(event.Content)
				if !yield(Event{Chunk: event.Content}) {
					// Caller went away mid-stream: no persistence.
					return
				}

			case ai.StreamEventUsage:
				accumulator.Record(event.Usage)
			}
		}

		s.persist(request, answer.String(), accumulator.Totals())
	}
}

// response assembles the buffered result envelope.
func (s *Service) response(request Request, content string, usage ai.Usage) *Response {
	return &Response{
		Content:  content,
		Model:    request.ModelID,
		Provider: request.ProviderID,
		Usage:    usage,
	}
}

// persist appends the assistant turn (with usage metadata) to the caller's
// history and hands it to the session store.
func (s *Service) persist(request Request, answer string, usage ai.Usage) {
	if s.sessions == nil {
		return
	}

	assistant := ai.TextMessage(ai.RoleAssistant, answer)
	assistant.Meta = map[string]any{
		"usage":    usage,
		"model":    request.ModelID,
		"provider": request.ProviderID,
	}

	history := make([]ai.Message, 0, len(request.Messages)+1)
	history = append(history, request.Messages...)
	history = append(history, assistant)
	s.sessions.PersistSession(request.ChatID, history)
}

// upstreamAnswer converts an upstream non-2xx failure into the answer text
// surfaced to the caller, mirroring the provider's own diagnostic.
func upstreamAnswer(err error) (string, bool) {
	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Error %d: %s", httpErr.StatusCode, httpErr.Body), true
	}
	return "", false
}
