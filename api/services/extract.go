package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no extractor
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrExtractionFailed is returned when a supported file cannot be read
	ErrExtractionFailed = errors.New("failed to extract text")
)

// ExtractText returns the plain text content of an uploaded document.
// Supported extensions: .pdf, .txt, .md, .json.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%w from %s: %v", ErrExtractionFailed, filename, err)
		}
		return text, nil
	case ".txt", ".md":
		return string(data), nil
	case ".json":
		if !json.Valid(data) {
			return "", fmt.Errorf("%w from %s: invalid JSON format", ErrExtractionFailed, filename)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Continue even if one page fails
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}
