package generation

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Document is an uploaded study document.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Limits bound what ExtractText accepts.
type Limits struct {
	MaxBytes int64
	MinChars int
}

// ExtractText returns the trimmed text of a plain-text document.
//
// A document is accepted when its filename ends in .txt or its content type
// is text/plain. Other formats, PDF included, fail with ErrUnsupportedFormat.
func ExtractText(doc Document, limits Limits) (string, error) {
	if !isPlainText(doc) {
		return "", fmt.Errorf("%w: only .txt documents are supported", ErrUnsupportedFormat)
	}

	if limits.MaxBytes > 0 && int64(len(doc.Content)) > limits.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit",
			ErrDocumentTooLarge, len(doc.Content), limits.MaxBytes)
	}

	if !utf8.Valid(doc.Content) {
		return "", fmt.Errorf("%w: document is not valid UTF-8 text", ErrUnsupportedFormat)
	}

	text := strings.TrimSpace(string(doc.Content))
	if n := utf8.RuneCountInString(text); n < limits.MinChars {
		return "", fmt.Errorf("%w: got %d characters, need at least %d",
			ErrDocumentTooShort, n, limits.MinChars)
	}

	return text, nil
}

func isPlainText(doc Document) bool {
	if strings.EqualFold(filepath.Ext(doc.Filename), ".txt") {
		return true
	}
	if doc.ContentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(doc.ContentType)
	return err == nil && mediaType == "text/plain"
}
