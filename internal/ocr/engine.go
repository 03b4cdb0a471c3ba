// Package ocr recognizes text in rendered page images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

// Model selects the language set an engine recognizes.
type Model int

const (
	// ModelCJKLatin recognizes simplified Chinese and English together.
	ModelCJKLatin Model = iota
	// ModelLatin recognizes English only. Used when the combined model fails.
	ModelLatin
)

func (m Model) String() string {
	switch m {
	case ModelCJKLatin:
		return "cjk+latin"
	case ModelLatin:
		return "latin"
	default:
		return fmt.Sprintf("model(%d)", int(m))
	}
}

// Engine recognizes the text in one PNG page image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, model Model) (string, error)
}

// ErrEmptyImage is returned when an engine is handed no image data.
var ErrEmptyImage = errors.New("ocr: empty image")

// Engine names accepted by New.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
	EngineNone      = "none"
)

// Options configures New.
type Options struct {
	Engine            string
	TesseractPath     string
	GoogleCredentials string
	Logger            *logger.Logger
}

// New builds the engine named by opts.Engine. EngineNone returns a nil
// Engine and no error, which disables OCR.
func New(ctx context.Context, opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case EngineTesseract, "":
		return NewTesseract(opts.TesseractPath, opts.Logger), nil
	case EngineVision:
		return NewVision(ctx, opts.GoogleCredentials, opts.Logger)
	case EngineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", opts.Engine)
	}
}
