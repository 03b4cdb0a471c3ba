package extraction

import (
	"context"
	"unicode/utf8"

	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/textquality"
)

// Service routes an upload to the extractor for its kind.
type Service struct {
	pdf *PDFIngestor
	log *logger.Logger
}

// NewService creates a Service. A nil ingestor falls back to a text-layer
// only PDF ingestor.
func NewService(ingestor *PDFIngestor, log *logger.Logger) *Service {
	log = logger.OrNop(log)
	if ingestor == nil {
		ingestor = NewPDFIngestor(log)
	}
	return &Service{pdf: ingestor, log: log.With("service", "extraction.Service")}
}

// Extract classifies the upload and extracts its questions. Unsupported
// kinds produce an empty result, never an error.
func (s *Service) Extract(ctx context.Context, up Upload) Result {
	kind := ClassifyKind(up.Filename, up.MIMEType)

	var res Result
	switch kind {
	case KindCSV:
		res = structuredResult(kind, up.Data, CSVFieldNames(up.Data))
	case KindJSON:
		res = structuredResult(kind, up.Data, JSONFieldNames(up.Data))
	case KindText:
		text := NormalizeText(decodeText(up.Data))
		res = rawTextResult(kind, text)
		res.Questions = ExtractQuestions(text)
	case KindPDF:
		res = s.pdf.Ingest(ctx, up.Data)
	default:
		res = Result{FileType: string(KindUnknown)}
	}

	s.log.Info("upload extracted",
		"filename", up.Filename,
		"kind", string(kind),
		"questions", len(res.Questions),
		"parse_issue", string(res.ParseIssue),
		"method", string(res.ExtractMethod),
		"used_ocr", res.UsedOCR,
	)
	return res
}

func structuredResult(kind Kind, data []byte, names []string) Result {
	res := rawTextResult(kind, NormalizeText(decodeText(data)))
	res.Questions = FieldQuestions(names)
	return res
}

func rawTextResult(kind Kind, text string) Result {
	return Result{
		FileType:         string(kind),
		TextLength:       utf8.RuneCountInString(text),
		ReadabilityScore: textquality.Score(text),
		SourceText:       form.Truncate(text, form.MaxSourceText),
		ExtractMethod:    MethodRawText,
	}
}
