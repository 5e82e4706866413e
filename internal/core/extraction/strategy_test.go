package extraction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		extension   string
		want        Kind
	}{
		{"pdf by content type", "application/pdf", "pdf", KindNativeDocument},
		{"pdf by extension only", "application/octet-stream", "pdf", KindNativeDocument},
		{"pdf with dotted extension", "", ".PDF", KindNativeDocument},
		{"png image", "image/png", "png", KindImage},
		{"jpeg by extension only", "application/octet-stream", "jpg", KindImage},
		{"tiff image", "image/tiff", "tif", KindImage},
		{"video is unsupported", "video/mp4", "mp4", KindUnsupported},
		{"word doc is unsupported", "application/msword", "doc", KindUnsupported},
		{"empty everything", "", "", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.contentType, tt.extension))
		})
	}
}
