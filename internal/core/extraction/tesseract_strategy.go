package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// engineConfidence is fixed: this invocation path of the engine does
// not report a per-run confidence score.
const engineConfidence = 70

const defaultEngineTimeout = 2 * time.Minute

var _ Strategy = (*TesseractStrategy)(nil)

// TesseractStrategy shells out to the tesseract binary. Bytes are
// written to a uniquely named temp file, the engine writes
// <outBase>.txt, and both files are removed afterwards regardless of
// outcome. The engine is invoked with --psm 3 (fully automatic page
// segmentation) and --oem 1 (neural engine only).
type TesseractStrategy struct {
	Binary  string        // path or name of the tesseract executable
	TempDir string        // working dir for temp files; empty means os.TempDir()
	Lang    string        // tesseract language code, e.g. "eng"
	Timeout time.Duration // bound on the extraction subprocess
}

func NewTesseractStrategy(binary, tempDir, lang string) *TesseractStrategy {
	return &TesseractStrategy{Binary: binary, TempDir: tempDir, Lang: lang}
}

func (s *TesseractStrategy) Name() string { return "tesseract" }

func (s *TesseractStrategy) Extract(ctx context.Context, data []byte) (*Result, error) {
	bin := s.Binary
	if bin == "" {
		bin = "tesseract"
	}
	lang := s.Lang
	if lang == "" {
		lang = "eng"
	}

	// Probe first so a missing binary fails with an actionable message
	// instead of a cryptic error from the real invocation.
	if err := exec.CommandContext(ctx, bin, "--version").Run(); err != nil {
		return nil, fmt.Errorf("ocr engine %q is not available (install tesseract or set TESSERACT_PATH): %w", bin, err)
	}

	in, err := os.CreateTemp(s.TempDir, "ocr-input-*")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	inPath := in.Name()
	outBase := inPath + ".out"
	outPath := outBase + ".txt"
	defer func() {
		// Cleanup failures must never mask the extraction result.
		_ = os.Remove(inPath)
		_ = os.Remove(outPath)
	}()

	if _, err := in.Write(data); err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("close temp input: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultEngineTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, inPath, outBase, "-l", lang, "--psm", "3", "--oem", "1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ocr engine failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("ocr engine failed: %w", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read ocr output: %w", err)
	}

	return &Result{
		Text:       strings.TrimSpace(string(out)),
		Confidence: engineConfidence,
		PageCount:  1,
	}, nil
}
