package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DoPostStream performs an HTTP POST request and returns the raw response with
// the body left open for streaming reads. The caller is responsible for closing
// the response body when done reading. On error paths the body is read and
// closed before returning.
//
// This follows the same pattern as DoPostSync but does not consume the response
// body, enabling streaming consumption via [SSEScanner] or [LineScanner].
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return response, fmt.Errorf("error sending stream request: %w", err)
	}

	// For non-2xx responses, read the body and close it before returning.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return response, &HTTPError{StatusCode: response.StatusCode, Body: string(errorBody)}
	}

	return response, nil
}

// maxStreamLineSize is the maximum size of a single streamed line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for large
// events such as long completions. If a line exceeds this limit the scanner
// returns a wrapped bufio.ErrTooLong via the Next() error path.
const maxStreamLineSize = 1 * 1024 * 1024

// SSEScanner reads Server-Sent Events (SSE) from an io.Reader.
// It handles multi-line data fields, skips comments, empty lines, and lines
// that do not carry an event payload, and detects the [DONE] sentinel used
// by OpenAI-compatible APIs.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner that reads SSE events from the given
// reader. The scanner supports individual lines up to maxStreamLineSize.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)
	return &SSEScanner{
		scanner: scanner,
	}
}

// Next returns the next SSE data payload as a string.
// It skips empty lines and comment lines (starting with ':').
// Returns io.EOF when no more events are available, and io.EOF when the
// [DONE] sentinel is encountered; nothing after the sentinel is consumed.
//
// Multi-line data fields (multiple consecutive "data:" lines) are joined
// with newlines into a single payload string.
func (sseScanner *SSEScanner) Next() (string, error) {
	var dataLines []string

	for sseScanner.scanner.Scan() {
		line := sseScanner.scanner.Text()

		// Empty line signals end of an event; flush accumulated data lines
		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		// Skip SSE comments (heartbeats)
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			// [DONE] sentinel (OpenAI convention) terminates the stream
			if data == "[DONE]" {
				return "", io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Ignore other SSE fields (event:, id:, retry:)
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	// Flush any trailing data lines when the stream ends without a blank line
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}

	return "", io.EOF
}

// LineScanner reads newline-delimited JSON frames from an io.Reader. This is
// the streaming transport used by Ollama-style self-hosted servers, which
// emit one JSON object per line with no SSE framing.
type LineScanner struct {
	scanner *bufio.Scanner
}

// NewLineScanner creates a LineScanner over reader with the same line size
// limit as [NewSSEScanner].
func NewLineScanner(reader io.Reader) *LineScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)
	return &LineScanner{
		scanner: scanner,
	}
}

// Next returns the next non-empty line as a string.
// Returns io.EOF when the stream ends.
func (lineScanner *LineScanner) Next() (string, error) {
	for lineScanner.scanner.Scan() {
		line := strings.TrimSpace(lineScanner.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}

	if err := lineScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("line scanner error: %w", err)
	}

	return "", io.EOF
}
