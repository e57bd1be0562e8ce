package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/username/tradejournal/backend/src/logger"
)

// Recognizer turns an image into raw text. The engine is an external
// collaborator: it owns the unbounded-duration work and is bounded by a
// timeout here, never retried.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractRecognizer shells out to the tesseract binary, feeding the image
// on stdin and reading recognized text from stdout.
type TesseractRecognizer struct {
	binary  string
	timeout time.Duration
}

func NewTesseractRecognizer(binary string, timeout time.Duration) *TesseractRecognizer {
	return &TesseractRecognizer{binary: binary, timeout: timeout}
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, "stdin", "stdout", "-l", "eng")
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("ocr engine timed out after %s: %w", r.timeout, ctx.Err())
		}
		return "", fmt.Errorf("ocr engine failed: %w (stderr: %s)", err, stderr.String())
	}

	logger.L.Debug("OCR recognition finished", "duration", time.Since(start).String(), "textBytes", stdout.Len())
	return stdout.String(), nil
}
