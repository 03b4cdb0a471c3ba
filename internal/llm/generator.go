// Package llm drafts forms with a large language model and validates what
// comes back.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

// MaxModels is the most candidate models tried per request.
const MaxModels = 3

// DefaultTimeout bounds a single (model, egress) attempt.
const DefaultTimeout = 45 * time.Second

// ErrDisabled is returned by New when no provider is configured.
var ErrDisabled = errors.New("llm provider disabled")

// Config selects the provider and its candidates.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	// Models are tried in order; only the first MaxModels are used.
	Models []string
	// Proxies are tried in order before a direct attempt.
	Proxies []string
	Timeout time.Duration
}

// Generator produces validated drafts by trying each candidate model over
// each egress path.
type Generator struct {
	completer Completer
	models    []string
	egress    []Egress
	timeout   time.Duration
	log       *logger.Logger
}

// New builds a Generator from cfg. It returns ErrDisabled for the none
// provider.
func New(cfg Config, log *logger.Logger) (*Generator, error) {
	var (
		completer Completer
		err       error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		completer, err = NewOpenAI(cfg.APIKey, cfg.BaseURL)
	case ProviderAnthropic:
		completer, err = NewAnthropic(cfg.APIKey, cfg.BaseURL)
	case ProviderNone, "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	egress, err := ParseEgress(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	return NewWithCompleter(completer, cfg.Models, egress, cfg.Timeout, log), nil
}

// NewWithCompleter builds a Generator around an existing Completer.
func NewWithCompleter(c Completer, models []string, egress []Egress, timeout time.Duration, log *logger.Logger) *Generator {
	models = lo.Compact(lo.Map(models, func(m string, _ int) string { return strings.TrimSpace(m) }))
	if len(models) > MaxModels {
		models = models[:MaxModels]
	}
	if len(egress) == 0 {
		egress = []Egress{{}}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		completer: c,
		models:    models,
		egress:    egress,
		timeout:   timeout,
		log:       logger.OrNop(log).With("service", "llm.Generator"),
	}
}

// Models returns the candidate models in try order.
func (g *Generator) Models() []string {
	return append([]string(nil), g.models...)
}

// Generate returns the first draft that parses and passes validation. When
// every model fails the error is an *ExhaustedError.
func (g *Generator) Generate(ctx context.Context, req Request) (form.Draft, error) {
	system := SystemInstruction()
	user := UserMessage(req)

	draft, model, failures := FirstSuccess(ctx, g.models, func(ctx context.Context, model string) (form.Draft, error) {
		content, err := g.complete(ctx, model, system, user)
		if err != nil {
			return form.Draft{}, err
		}

		draft, err := ParseDraft(content)
		if err == nil {
			draft, err = Validate(draft, req)
		}
		if err != nil {
			g.log.Warn("llm draft rejected", "model", model, "error", err)
			return form.Draft{}, &AttemptError{Model: model, Err: err}
		}
		return draft, nil
	})
	if failures != nil || model == "" {
		return form.Draft{}, &ExhaustedError{Errors: failures}
	}

	draft.GenerationMode = form.ModeLLM
	draft.LLMModelUsed = &model
	g.log.Info("llm draft accepted", "model", model, "questions", len(draft.Questions), "quiz", draft.IsQuiz)
	return draft, nil
}

// complete sends one request for model, moving to the next egress path only
// when no response came back at all.
func (g *Generator) complete(ctx context.Context, model, system, user string) (string, error) {
	content, _, failures := FirstSuccess(ctx, g.egress, func(ctx context.Context, e Egress) (string, error) {
		client, tracker := e.client(g.timeout)
		content, err := g.completer.Complete(ctx, Call{Model: model, System: system, User: user, HTTPClient: client})
		if err != nil {
			attemptErr := &AttemptError{Model: model, Egress: e.Name(), Err: err}
			g.log.Warn("llm attempt failed", "model", model, "egress", e.Name(), "responded", tracker.responded.Load(), "error", err)
			if tracker.responded.Load() {
				return "", Stop(attemptErr)
			}
			return "", attemptErr
		}
		if strings.TrimSpace(content) == "" {
			return "", Stop(&AttemptError{Model: model, Egress: e.Name(), Err: ErrEmptyContent})
		}
		return content, nil
	})
	if failures != nil {
		return "", errors.Join(failures...)
	}
	return content, nil
}
