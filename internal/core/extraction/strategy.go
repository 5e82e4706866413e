package extraction

import (
	"context"
	"strings"
)

// Result is what any extraction strategy produces on success.
type Result struct {
	Text       string
	Confidence int // 0-100
	PageCount  int
}

// Strategy turns raw file bytes into extracted text, or fails.
// Implementations hold no per-job state beyond their configuration.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, data []byte) (*Result, error)
}

// Kind classifies a file for strategy selection. Resolved once from
// (contentType, extension) before any bytes are fetched.
type Kind int

const (
	KindUnsupported Kind = iota
	KindNativeDocument
	KindImage
)

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"bmp": true, "tif": true, "tiff": true, "webp": true,
}

// Classify maps a file's content type and extension onto a strategy kind.
func Classify(contentType, extension string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))

	switch {
	case strings.Contains(ct, "pdf") || ext == "pdf":
		return KindNativeDocument
	case strings.HasPrefix(ct, "image/") || imageExtensions[ext]:
		return KindImage
	default:
		return KindUnsupported
	}
}
