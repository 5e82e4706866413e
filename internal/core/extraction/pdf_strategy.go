package extraction

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfConfidence is fixed: the text layer either parses or it throws,
// there is no uncertainty model for native extraction.
const pdfConfidence = 95

var _ Strategy = (*PDFStrategy)(nil)

// PDFStrategy extracts the native text layer of a PDF via docconv and
// counts pages with pdfcpu.
type PDFStrategy struct{}

func NewPDFStrategy() *PDFStrategy { return &PDFStrategy{} }

func (s *PDFStrategy) Name() string { return "pdf-native" }

func (s *PDFStrategy) Extract(ctx context.Context, data []byte) (*Result, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return nil, fmt.Errorf("pdf text extraction failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return nil, fmt.Errorf("pdf contains no extractable text layer")
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil || pages < 1 {
		// Text extraction already succeeded; a broken xref table should
		// not fail the job over the page count alone.
		log.Printf("pdf page count failed, defaulting to 1: %v", err)
		pages = 1
	}

	return &Result{
		Text:       text,
		Confidence: pdfConfidence,
		PageCount:  pages,
	}, nil
}
