package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/ocr"
	"github.com/a3tai/mcp-form-drafter/internal/pdf"
	"github.com/a3tai/mcp-form-drafter/internal/textquality"
)

// TextLayer is an opened PDF whose embedded text can be read.
type TextLayer interface {
	Text() (string, error)
	Close() error
}

// TextLayerOpener opens the embedded text layer of a PDF payload.
type TextLayerOpener func(data []byte) (TextLayer, error)

// PageRenderer rasterizes the leading pages of a PDF to PNG images.
type PageRenderer interface {
	RenderPages(ctx context.Context, data []byte, maxPages int) ([][]byte, error)
}

// OpenTextLayer opens data with the internal pdf package.
func OpenTextLayer(data []byte) (TextLayer, error) {
	doc, err := pdf.Open(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

var errNoPageRecognized = errors.New("ocr recognized no page")

// PDFIngestor extracts source questions from a PDF: the embedded text layer
// first, then OCR of the leading pages when the text layer yields nothing
// usable.
type PDFIngestor struct {
	open     TextLayerOpener
	renderer PageRenderer
	engine   ocr.Engine
	maxPages int
	log      *logger.Logger
}

// PDFOption customizes a PDFIngestor.
type PDFOption func(*PDFIngestor)

// WithTextLayerOpener replaces the text-layer opener.
func WithTextLayerOpener(open TextLayerOpener) PDFOption {
	return func(p *PDFIngestor) { p.open = open }
}

// WithOCR enables the OCR fallback.
func WithOCR(renderer PageRenderer, engine ocr.Engine) PDFOption {
	return func(p *PDFIngestor) {
		p.renderer = renderer
		p.engine = engine
	}
}

// WithMaxOCRPages overrides how many leading pages are rendered for OCR.
func WithMaxOCRPages(n int) PDFOption {
	return func(p *PDFIngestor) {
		if n > 0 {
			p.maxPages = n
		}
	}
}

// NewPDFIngestor creates an ingestor. Without WithOCR only the text layer is
// used.
func NewPDFIngestor(log *logger.Logger, opts ...PDFOption) *PDFIngestor {
	p := &PDFIngestor{
		open:     OpenTextLayer,
		maxPages: pdf.DefaultRenderPages,
		log:      logger.OrNop(log).With("service", "extraction.PDFIngestor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OCREnabled reports whether the OCR fallback is configured.
func (p *PDFIngestor) OCREnabled() bool {
	return p.renderer != nil && p.engine != nil
}

// Ingest runs both phases. The text layer is always read and released before
// OCR starts.
func (p *PDFIngestor) Ingest(ctx context.Context, data []byte) Result {
	res := Result{FileType: string(KindPDF)}

	text, err := p.readTextLayer(data)
	switch {
	case err != nil:
		p.log.Warn("pdf text layer parse failed", "error", err)
		res.ParseIssue = IssuePDFParseFailed
	default:
		text = NormalizeText(text)
		res.TextLength = utf8.RuneCountInString(text)
		res.ReadabilityScore = textquality.Score(text)
		switch {
		case res.TextLength == 0:
			res.ParseIssue = IssuePDFNoText
		case res.ReadabilityScore < textquality.TextLayerThreshold:
			p.log.Info("pdf text layer rejected as garbled", "readability", res.ReadabilityScore)
			res.ParseIssue = IssuePDFLowQualityText
		default:
			res.Questions = ExtractQuestions(text)
			res.SourceText = form.Truncate(text, form.MaxSourceText)
			res.ExtractMethod = MethodPDFText
		}
	}

	if len(res.Questions) > 0 || !p.OCREnabled() {
		return res
	}

	ocrText, err := p.recognize(ctx, data)
	if err != nil {
		p.log.Warn("pdf ocr fallback failed", "error", err, "parse_issue", string(res.ParseIssue))
		return res
	}

	ocrText = NormalizeText(ocrText)
	score := textquality.Score(ocrText)
	if score < textquality.OCRThreshold {
		p.log.Info("pdf ocr text rejected as unreadable", "readability", score)
		return res
	}
	questions := ExtractQuestions(ocrText)
	if len(questions) == 0 {
		p.log.Info("pdf ocr text produced no questions", "chars", utf8.RuneCountInString(ocrText))
		return res
	}

	return Result{
		Questions:        questions,
		FileType:         string(KindPDF),
		TextLength:       utf8.RuneCountInString(ocrText),
		ParseIssue:       IssueNone,
		ReadabilityScore: score,
		UsedOCR:          true,
		SourceText:       form.Truncate(ocrText, form.MaxSourceText),
		ExtractMethod:    MethodPDFOCR,
	}
}

// readTextLayer opens the payload, reads its text and releases the handle on
// every path. Panics from the parser are reported as errors.
func (p *PDFIngestor) readTextLayer(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	doc, err := p.open(data)
	if err != nil {
		return "", err
	}
	defer func() { _ = doc.Close() }()

	return doc.Text()
}

// recognize renders the leading pages and runs OCR on them one at a time.
// A page that fails with the combined model is retried with the Latin-only
// model; a page that fails both is skipped.
func (p *PDFIngestor) recognize(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("ocr panicked: %v", r)
		}
	}()

	images, err := p.renderer.RenderPages(ctx, data, p.maxPages)
	if err != nil && len(images) == 0 {
		return "", fmt.Errorf("render pages: %w", err)
	}
	if err != nil {
		p.log.Warn("pdf page rendering stopped early", "rendered", len(images), "error", err)
	}

	pages := make([]string, 0, len(images))
	for i, image := range images {
		pageText, err := p.engine.Recognize(ctx, image, ocr.ModelCJKLatin)
		if err != nil {
			p.log.Warn("ocr page failed, retrying latin model", "page", i+1, "error", err)
			pageText, err = p.engine.Recognize(ctx, image, ocr.ModelLatin)
		}
		if err != nil {
			p.log.Warn("ocr page failed", "page", i+1, "error", err)
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			pages = append(pages, pageText)
		}
	}

	if len(pages) == 0 {
		return "", errNoPageRecognized
	}
	return strings.Join(pages, "\n\n"), nil
}
