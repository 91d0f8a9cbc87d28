package utils

import (
	"io"
	"strings"
	"testing"
)

// TestSSEScanner_DataLines verifies that data payloads are returned in order
// and that comments and unknown fields are skipped.
func TestSSEScanner_DataLines(t *testing.T) {
	input := strings.Join([]string{
		": heartbeat",
		"event: message",
		`data: {"a":1}`,
		"",
		`data: {"b":2}`,
		"",
	}, "\n")

	scanner := NewSSEScanner(strings.NewReader(input))

	first, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != `{"a":1}` {
		t.Errorf("expected first payload, got %q", first)
	}

	second, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != `{"b":2}` {
		t.Errorf("expected second payload, got %q", second)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

// TestSSEScanner_DoneSentinel verifies that the [DONE] sentinel terminates
// the stream and that nothing after it is consumed.
func TestSSEScanner_DoneSentinel(t *testing.T) {
	input := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hi"}}]}`,
		"",
		"data: [DONE]",
		"",
		`data: {"should":"never be seen"}`,
		"",
	}, "\n")

	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != `{"choices":[{"delta":{"content":"Hi"}}]}` {
		t.Errorf("unexpected payload: %q", payload)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on [DONE] sentinel, got %v", err)
	}

	// The scanner must stay terminated after the sentinel.
	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after termination, got %v", err)
	}
}

// TestSSEScanner_MultiLineData verifies that consecutive data lines within
// one event are joined with newlines.
func TestSSEScanner_MultiLineData(t *testing.T) {
	input := "data: line1\ndata: line2\n\n"

	scanner := NewSSEScanner(strings.NewReader(input))
	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "line1\nline2" {
		t.Errorf("expected joined payload, got %q", payload)
	}
}

// TestSSEScanner_TrailingDataWithoutBlankLine verifies that a final event
// not followed by a blank line is still flushed.
func TestSSEScanner_TrailingDataWithoutBlankLine(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: tail"))
	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "tail" {
		t.Errorf("expected trailing payload, got %q", payload)
	}
	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestLineScanner verifies newline-delimited JSON framing: one payload per
// non-empty line, io.EOF at end of stream.
func TestLineScanner(t *testing.T) {
	input := "{\"message\":{\"content\":\"He\"}}\n\n{\"message\":{\"content\":\"llo\"},\"done\":true}\n"

	scanner := NewLineScanner(strings.NewReader(input))

	first, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != `{"message":{"content":"He"}}` {
		t.Errorf("unexpected first line: %q", first)
	}

	second, err := scanner.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(second, `"done":true`) {
		t.Errorf("unexpected second line: %q", second)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestTruncateString verifies truncation preserves the prefix and records
// the original length.
func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("expected passthrough, got %q", got)
	}
	long := strings.Repeat("x", 20)
	got := TruncateString(long, 5)
	if !strings.HasPrefix(got, "xxxxx") || !strings.Contains(got, "total: 20") {
		t.Errorf("unexpected truncation result: %q", got)
	}
}
