package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pdf-rag-chatbot/internal/logger"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor turns PDF bytes into plain text
type PDFExtractor struct {
	maxBytes int64
}

// NewPDFExtractor creates a new PDF extractor. maxBytes <= 0 disables the size cap.
func NewPDFExtractor(maxBytes int64) *PDFExtractor {
	return &PDFExtractor{maxBytes: maxBytes}
}

// ExtractionResult contains the result of PDF text extraction
type ExtractionResult struct {
	Text           string
	Pages          int
	EmptyPages     int
	WordCount      int
	ProcessingTime time.Duration
}

// ReadAll reads an upload fully, failing with ErrTooLarge past the size cap.
func (e *PDFExtractor) ReadAll(r io.Reader) ([]byte, error) {
	var src io.Reader = r
	if e.maxBytes > 0 {
		src = io.LimitReader(r, e.maxBytes+1)
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrExtraction, err)
	}
	if e.maxBytes > 0 && int64(len(content)) > e.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrTooLarge, e.maxBytes)
	}
	return content, nil
}

// Extract returns the text of every page in order, joined by "\n". Pages that
// have no text, or whose text cannot be decoded, contribute an empty string.
func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (result *ExtractionResult, err error) {
	start := time.Now()

	// the pdf library panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create PDF reader: %v", ErrExtraction, err)
	}

	pages := reader.NumPage()
	texts := make([]string, pages)
	empty := 0

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: cancelled at page %d: %w", ErrExtraction, i, err)
		}
		texts[i-1] = pageText(reader, i)
		if texts[i-1] == "" {
			empty++
		}
	}

	text := strings.Join(texts, "\n")
	if empty > 0 {
		logger.Debug("PDF pages without text", "pages", pages, "empty", empty)
	}

	return &ExtractionResult{
		Text:           text,
		Pages:          pages,
		EmptyPages:     empty,
		WordCount:      len(strings.Fields(text)),
		ProcessingTime: time.Since(start),
	}, nil
}

func pageText(reader *pdf.Reader, i int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("failed to extract text from page", "page", i, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}

	fonts := make(map[string]*pdf.Font)
	text, err := page.GetPlainText(fonts)
	if err != nil {
		logger.Warn("failed to extract text from page", "page", i, "error", err)
		return ""
	}
	return text
}
