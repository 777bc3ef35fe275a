// Package ocr extracts plain text from the document formats an
// analysis run accepts. Extraction is best effort: files that cannot
// be read yield empty text, never an error.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Extractor extracts text content from a local document.
type Extractor interface {
	Extract(ctx context.Context, path string) string
}

// SupportedExtensions lists the upload formats the pipeline accepts.
// Formats without a text extractor are accepted but contribute no text.
var SupportedExtensions = []string{
	".pdf", ".xlsx", ".txt", ".md", ".csv", ".doc", ".docx", ".ppt", ".pptx",
}

// IsSupported reports whether a filename has an accepted extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// DocumentExtractor dispatches to a format-specific extractor based on
// file extension.
type DocumentExtractor struct {
	pdf *PdfToText
}

// NewExtractor creates a DocumentExtractor. If pdfToTextPath is empty,
// "pdftotext" is resolved from PATH.
func NewExtractor(pdfToTextPath string) *DocumentExtractor {
	return &DocumentExtractor{pdf: NewPdfToText(pdfToTextPath)}
}

// Extract returns the text content of the document at path, or "" when
// the format is unsupported or extraction fails.
func (e *DocumentExtractor) Extract(ctx context.Context, path string) string {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = e.pdf.ExtractText(ctx, path)
	case ".xlsx":
		text, err = extractXLSX(path)
	case ".txt", ".md", ".csv":
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	default:
		return ""
	}

	if err != nil {
		zap.L().Warn("document extraction failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}
	return text
}
