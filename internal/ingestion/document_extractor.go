// Package ingestion brings resume documents into the system: extracting
// text from uploaded files, managing the uploads directory, and pulling
// attachments from a Gmail inbox.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	// ErrEmptyDocument is returned when a document yields no text, for
	// example a scanned-image PDF with no text layer.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrUnsupportedType is returned for file extensions the extractor
	// does not handle.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ExtractText extracts plain text from a PDF, DOCX, or TXT document. The
// filename only supplies the extension; content is read from data.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
		}
		return text, nil
	case ".pdf":
		return extractPDF(filename, data)
	case ".docx":
		return extractDOCX(filename, data)
	default:
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupportedType)
	}
}

// extractPDF walks every page and concatenates its text layer.
func extractPDF(filename string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf %s: %w", filename, err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}
	return text, nil
}

func extractDOCX(filename string, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx %s: %w", filename, err)
	}
	defer doc.Close()

	text := stripDocxTags(doc.Editable().GetContent())
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}
	return text, nil
}

// stripDocxTags removes the WordprocessingML markup GetContent leaves in
// place, turning paragraph boundaries into newlines.
func stripDocxTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var builder strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SupportedExtension reports whether the extractor handles the file.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}
