// Package draft turns a prompt and an optional upload into a form draft,
// trying the LLM first and falling back to the rule engine.
package draft

import (
	"context"
	"errors"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/intent"
	"github.com/a3tai/mcp-form-drafter/internal/llm"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/rules"
)

// Extractor pulls source questions out of an upload.
type Extractor interface {
	Extract(ctx context.Context, up extraction.Upload) extraction.Result
}

// Generator produces a validated LLM draft.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (form.Draft, error)
}

var errNoGenerator = errors.New("no llm provider configured")

// Request is one draft generation.
type Request struct {
	Prompt string
	// Upload is optional.
	Upload *extraction.Upload
}

// Outcome is the draft plus what was extracted from the upload, if any.
type Outcome struct {
	Draft      form.Draft         `json:"draft"`
	Extraction *extraction.Result `json:"extraction,omitempty"`
}

// Builder runs the generation pipeline. It holds no per-request state.
type Builder struct {
	extractor Extractor
	generator Generator
	log       *logger.Logger
}

// NewBuilder creates a Builder. generator may be nil, in which case every
// draft is rule-based.
func NewBuilder(extractor Extractor, generator Generator, log *logger.Logger) *Builder {
	log = logger.OrNop(log)
	if extractor == nil {
		extractor = extraction.NewService(nil, log)
	}
	return &Builder{
		extractor: extractor,
		generator: generator,
		log:       log.With("service", "draft.Builder"),
	}
}

// BuildDraft extracts the upload, classifies the prompt and produces a draft.
// Errors are *apperrors.Error values.
func (b *Builder) BuildDraft(ctx context.Context, req Request) (Outcome, error) {
	var (
		out       Outcome
		extracted extraction.Result
	)
	if req.Upload != nil && len(req.Upload.Data) > 0 {
		extracted = b.extractor.Extract(ctx, *req.Upload)
		out.Extraction = &extracted
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" && len(extracted.Questions) == 0 {
		if err := pdfIssue(extracted); err != nil {
			return out, err
		}
		return out, apperrors.New(apperrors.CodeEmptyInput, nil)
	}

	classified := intent.Classify(prompt)
	needLLM := rules.NeedsLLMForQuiz(classified, len(extracted.Questions))

	draft, err := b.generate(ctx, prompt, classified, req.Upload, extracted)
	if err != nil {
		if needLLM {
			b.log.Warn("quiz requires llm draft", "topic", string(classified.Topic), "error", err)
			return out, apperrors.New(apperrors.CodeQuizNeedsLLM, err)
		}
		b.log.Info("falling back to rule-based draft", "reason", err)
		draft = rules.Build(rules.Input{Prompt: prompt, SourceQuestions: extracted.Questions})
	} else {
		if strings.TrimSpace(draft.Title) == "" {
			draft.Title = intent.Title(prompt, classified)
		}
		draft.NeedLLMForQuiz = needLLM
	}

	if len(draft.Questions) == 0 {
		if err := pdfIssue(extracted); err != nil {
			return out, err
		}
		return out, apperrors.New(apperrors.CodeEmptyInput, nil)
	}

	out.Draft = draft
	b.log.Info("draft built",
		"mode", string(draft.GenerationMode),
		"quiz", draft.IsQuiz,
		"questions", len(draft.Questions),
		"source_questions", len(extracted.Questions),
	)
	return out, nil
}

func (b *Builder) generate(ctx context.Context, prompt string, classified intent.Result, up *extraction.Upload, extracted extraction.Result) (form.Draft, error) {
	if b.generator == nil {
		return form.Draft{}, errNoGenerator
	}
	req := llm.Request{
		Prompt:       prompt,
		Quiz:         classified.Quiz,
		DesiredCount: classified.DesiredCount,
		SourceText:   extracted.SourceText,
	}
	if up != nil {
		req.SourceFilename = up.Filename
	}
	return b.generator.Generate(ctx, req)
}

// pdfIssue reports the PDF parse issue of a result as an error, or nil.
func pdfIssue(res extraction.Result) error {
	if res.FileType != string(extraction.KindPDF) || res.ParseIssue == extraction.IssueNone {
		return nil
	}
	return apperrors.New(apperrors.Code(res.ParseIssue), nil)
}
