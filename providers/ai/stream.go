package ai

import "iter"

// StreamEventType identifies the kind of delta carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventContent indicates a text content delta.
	StreamEventContent StreamEventType = "content"
	// StreamEventUsage carries token usage metadata (typically the final event).
	StreamEventUsage StreamEventType = "usage"
	// StreamEventDone signals that the stream has finished normally.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent represents a single delta yielded during LLM response
// streaming. Each event carries exactly one type of payload, identified by
// the Type field. Content deltas are emitted in strict append order: the
// concatenation of all content deltas for one request equals the final
// assistant message content.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Content      string          `json:"content,omitempty"`       // Text delta (Type == StreamEventContent)
	Usage        *Usage          `json:"usage,omitempty"`         // Token usage (Type == StreamEventUsage)
	FinishReason string          `json:"finish_reason,omitempty"` // Present on StreamEventDone
}

// ChatStream wraps a streaming iterator and provides automatic accumulation
// of deltas into a final ChatResponse. It supports both range-based iteration
// for real-time token processing and a convenience Collect() method for
// callers who want the complete response.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (including breaking out of the loop early) or by calling Collect(). The
// underlying provider holds open resources (typically an HTTP response body)
// that are only released when the iterator completes or is abandoned via a
// loop break. Constructing a ChatStream and never iterating it will leak
// those resources.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator.
// The iterator is expected to yield StreamEvent values (with nil error) for
// normal deltas, and may yield a non-nil error to signal a mid-stream
// failure.
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewSingleEventStream wraps a synchronous ChatResponse as a single-event
// stream. This is the fallback when the provider does not support streaming:
// the entire response is delivered as one content event, followed by usage
// when present, followed by a done event.
func NewSingleEventStream(response *ChatResponse) *ChatStream {
	iteratorFunc := func(yield func(StreamEvent, error) bool) {
		if response.Content != "" {
			if !yield(StreamEvent{Type: StreamEventContent, Content: response.Content}, nil) {
				return
			}
		}

		if response.Usage != nil {
			if !yield(StreamEvent{Type: StreamEventUsage, Usage: response.Usage}, nil) {
				return
			}
		}

		yield(StreamEvent{Type: StreamEventDone, FinishReason: response.FinishReason}, nil)
	}

	return NewChatStream(iteratorFunc)
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(event.Content)
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated
// ChatResponse. This is a convenience for callers who want the complete
// response but still benefit from streaming transport (lower
// time-to-first-byte). Any mid-stream error terminates collection and
// returns the partial response together with the error.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}

	for event, err := range stream.iterator {
		if err != nil {
			return accumulated, err
		}

		switch event.Type {
		case StreamEventContent:
			accumulated.Content += event.Content

		case StreamEventUsage:
			if event.Usage != nil {
				accumulated.Usage = event.Usage
			}

		case StreamEventDone:
			accumulated.FinishReason = event.FinishReason
		}
	}

	return accumulated, nil
}
