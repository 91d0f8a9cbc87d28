// Package utils provides shared low-level helpers used throughout the
// chatgate internals. It covers HTTP request helpers for both synchronous
// and streaming communication with LLM provider APIs, scanners for the two
// streaming wire formats in use (Server-Sent Events and newline-delimited
// JSON), and small string utilities.
//
// Key entry points: [DoPostSync] for synchronous JSON round-trips,
// [DoPostStream] together with [SSEScanner] or [LineScanner] for streaming
// consumption, and [CloseWithLog] for deferred body cleanup.
package utils
