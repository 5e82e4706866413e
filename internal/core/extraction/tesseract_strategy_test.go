package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeStubEngine drops a shell script that mimics the tesseract CLI:
// answers --version, otherwise writes text to <outBase>.txt.
func writeStubEngine(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tesseract-stub")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	require.NoError(t, err)
	return path
}

func okEngine(text string) string {
	return fmt.Sprintf(`if [ "$1" = "--version" ]; then
  echo "tesseract 5.3.0"
  exit 0
fi
printf '%%s\n' %q > "$2.txt"
`, text)
}

func TestTesseractStrategyExtract(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		tempDir := t.TempDir()
		s := NewTesseractStrategy(writeStubEngine(t, okEngine("HELLO WORLD")), tempDir, "eng")

		res, err := s.Extract(context.Background(), []byte("fake image bytes"))
		require.NoError(t, err)
		require.Equal(t, "HELLO WORLD", res.Text)
		require.Equal(t, 70, res.Confidence)
		require.Equal(t, 1, res.PageCount)

		requireNoTempFiles(t, tempDir)
	})

	t.Run("engine unavailable fails fast with binary name", func(t *testing.T) {
		tempDir := t.TempDir()
		s := NewTesseractStrategy("/nonexistent/tesseract-bin", tempDir, "eng")

		_, err := s.Extract(context.Background(), []byte("bytes"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "/nonexistent/tesseract-bin")
		require.Contains(t, err.Error(), "not available")

		// Probe runs before any temp file is created.
		requireNoTempFiles(t, tempDir)
	})

	t.Run("engine failure still cleans up", func(t *testing.T) {
		tempDir := t.TempDir()
		script := `if [ "$1" = "--version" ]; then exit 0; fi
echo "Error, cannot read input image" >&2
exit 1
`
		s := NewTesseractStrategy(writeStubEngine(t, script), tempDir, "eng")

		_, err := s.Extract(context.Background(), []byte{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "ocr engine failed")
		require.Contains(t, err.Error(), "cannot read input image")

		requireNoTempFiles(t, tempDir)
	})

	t.Run("language hint is passed through", func(t *testing.T) {
		tempDir := t.TempDir()
		// Echo the -l argument back as the extracted text.
		script := `if [ "$1" = "--version" ]; then exit 0; fi
printf '%s\n' "$4" > "$2.txt"
`
		s := NewTesseractStrategy(writeStubEngine(t, script), tempDir, "deu")

		res, err := s.Extract(context.Background(), []byte("bytes"))
		require.NoError(t, err)
		require.Equal(t, "deu", res.Text)
	})
}

func requireNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "temp files left behind in %s", dir)
}
