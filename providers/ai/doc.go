// Package ai defines the provider-agnostic chat model and the interfaces
// every LLM provider adapter implements.
//
// The canonical types ([Message], [ContentPart], [ChatRequest], [ChatResponse],
// [Usage]) describe one conversation independently of any provider wire format.
// Adapters in the subpackages (openai, anthropic, gemini, ollama) translate the
// canonical request into their provider's payload, issue the HTTP call, and
// translate the raw response or stream back into canonical deltas.
//
// Streaming responses are modelled as a [ChatStream] over iter.Seq2: the
// adapter produces canonical [StreamEvent] values as frames arrive, and the
// caller consumes them with a range loop or collects them into a complete
// [ChatResponse].
package ai
