// Package extract converts uploaded document attachments to plain text for
// prompt injection. Extraction is best-effort: unreadable files produce a
// bracketed error marker rather than failing the chat request.
package extract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"

	"chatgate/providers/ai"
)

// Extractor converts attachments to text. The zero value is not usable;
// construct with [New].
type Extractor struct {
	logger *slog.Logger
}

// New returns an Extractor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractText decodes the attachment and extracts its text. PDFs yield
// their page text, HTML is converted to Markdown, valid UTF-8 passes
// through as-is, and anything else yields an error marker so the model sees
// that a file was attached but unreadable.
func (e *Extractor) ExtractText(attachment ai.Attachment) string {
	decoded, err := base64.StdEncoding.DecodeString(attachment.Content)
	if err != nil {
		e.logger.Warn("failed to decode attachment", "file", attachment.Name, "error", err)
		return errorMarker(attachment.Name)
	}

	if isPDF(attachment) {
		text, err := pdfText(decoded)
		if err != nil {
			e.logger.Warn("failed to extract PDF attachment", "file", attachment.Name, "error", err)
			return errorMarker(attachment.Name)
		}
		return strings.TrimSpace(text)
	}

	if isHTML(attachment) {
		markdown, err := htmltomarkdown.ConvertString(string(decoded))
		if err != nil {
			e.logger.Warn("failed to convert HTML attachment", "file", attachment.Name, "error", err)
			return errorMarker(attachment.Name)
		}
		return strings.TrimSpace(markdown)
	}

	if utf8.Valid(decoded) {
		return strings.TrimSpace(string(decoded))
	}

	e.logger.Warn("unsupported binary attachment", "file", attachment.Name, "mime_type", attachment.MimeType)
	return errorMarker(attachment.Name)
}

func isPDF(attachment ai.Attachment) bool {
	if strings.Contains(attachment.MimeType, "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(attachment.Name), ".pdf")
}

// pdfText extracts the plain text of every page. The parser panics on some
// corrupt inputs; those are recovered into an error so the caller's marker
// fallback applies.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse failure: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if _, err := io.Copy(&b, content); err != nil {
		return "", err
	}
	return b.String(), nil
}

func isHTML(attachment ai.Attachment) bool {
	if strings.Contains(attachment.MimeType, "html") {
		return true
	}
	name := strings.ToLower(attachment.Name)
	return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
}

func errorMarker(fileName string) string {
	return fmt.Sprintf("[Error reading file %s]", fileName)
}
