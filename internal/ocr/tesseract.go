package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

// Tesseract runs the tesseract CLI, feeding the image on stdin.
type Tesseract struct {
	path string
	log  *logger.Logger
}

// NewTesseract creates an engine for the binary at path ("tesseract" on PATH
// when empty).
func NewTesseract(path string, log *logger.Logger) *Tesseract {
	if strings.TrimSpace(path) == "" {
		path = "tesseract"
	}
	return &Tesseract{path: path, log: logger.OrNop(log).With("service", "ocr.Tesseract")}
}

// Available reports whether the tesseract binary can be found.
func (t *Tesseract) Available() bool {
	_, err := exec.LookPath(t.path)
	return err == nil
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, model Model) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", tesseractLanguages(model), "--psm", "3")
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract (%s): %w: %s", model, err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	t.log.Debug("tesseract page recognized", "model", model.String(), "chars", len([]rune(text)))
	return text, nil
}

func tesseractLanguages(model Model) string {
	if model == ModelLatin {
		return "eng"
	}
	return "chi_sim+eng"
}
