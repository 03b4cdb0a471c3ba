package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

// Reasons a model response is rejected. All of them abandon the model.
var (
	ErrEmptyContent   = errors.New("empty content")
	ErrNotJSON        = errors.New("response is not a JSON object")
	ErrMissingField   = errors.New("required field missing")
	ErrNoQuestions    = errors.New("no usable questions")
	ErrTooMany        = errors.New("too many questions")
	ErrNotQuiz        = errors.New("quiz requested but draft is not flagged as quiz")
	ErrAnswerCoverage = errors.New("too few questions carry a correct answer")
)

var requiredDraftFields = []string{"isQuiz", "title", "questions"}

// ValidationError lists why a draft was rejected.
type ValidationError struct {
	Err     error
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	return fmt.Sprintf("validation failed: %v: %s", e.Err, strings.Join(e.Details, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, details ...string) error {
	return &ValidationError{Err: err, Details: details}
}

// ParseDraft decodes model output into a normalized draft. Unknown question
// types become text; choice questions with fewer than two options or an
// answer outside the options lose their choice semantics; questions that
// cannot be decoded or have no title are dropped. A draft listing more
// questions than form.MaxQuestions is rejected.
func ParseDraft(content string) (form.Draft, error) {
	cleaned := stripCodeFences(content)
	if cleaned == "" {
		return form.Draft{}, invalid(ErrEmptyContent)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return form.Draft{}, invalid(ErrNotJSON, err.Error())
	}
	missing := lo.Filter(requiredDraftFields, func(f string, _ int) bool {
		_, ok := top[f]
		return !ok
	})
	if len(missing) > 0 {
		return form.Draft{}, invalid(ErrMissingField, missing...)
	}

	var draft form.Draft
	if err := json.Unmarshal(top["isQuiz"], &draft.IsQuiz); err != nil {
		return form.Draft{}, invalid(ErrMissingField, "isQuiz: "+err.Error())
	}
	if err := json.Unmarshal(top["title"], &draft.Title); err != nil {
		return form.Draft{}, invalid(ErrMissingField, "title: "+err.Error())
	}
	if raw, ok := top["description"]; ok {
		_ = json.Unmarshal(raw, &draft.Description)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)

	var rawQuestions []json.RawMessage
	if err := json.Unmarshal(top["questions"], &rawQuestions); err != nil {
		return form.Draft{}, invalid(ErrNoQuestions, "questions: "+err.Error())
	}
	if len(rawQuestions) > form.MaxQuestions {
		return form.Draft{}, invalid(ErrTooMany, fmt.Sprintf("%d > %d", len(rawQuestions), form.MaxQuestions))
	}

	questions := make([]form.Question, 0, len(rawQuestions))
	for i, raw := range rawQuestions {
		var wq WireQuestion
		if err := json.Unmarshal(raw, &wq); err != nil {
			continue
		}
		if q, ok := normalizeQuestion(wq, i); ok {
			questions = append(questions, q)
		}
	}

	draft.Questions = form.Finalize(questions, form.MaxQuestions)
	if len(draft.Questions) == 0 {
		return form.Draft{}, invalid(ErrNoQuestions)
	}
	draft.GenerationMode = form.ModeLLM
	return draft, nil
}

func normalizeQuestion(wq WireQuestion, index int) (form.Question, bool) {
	title := strings.TrimSpace(wq.Title)
	if title == "" {
		return form.Question{}, false
	}

	key := form.Slugify(wq.Key)
	if key == "" {
		key = form.Slugify(title)
	}
	if key == "" {
		key = fmt.Sprintf("q_%d", index+1)
	}

	q := form.Question{
		Key:      key,
		Title:    title,
		Type:     form.QuestionType(strings.ToLower(strings.TrimSpace(wq.Type))),
		Required: wq.Required,
	}
	if !form.IsValidType(q.Type) {
		q.Type = form.TypeText
	}
	if q.Type != form.TypeChoice {
		return q, true
	}

	options := lo.Uniq(lo.Compact(lo.Map(wq.Options, func(o string, _ int) string {
		return strings.TrimSpace(o)
	})))
	if len(options) > form.MaxOptions {
		options = options[:form.MaxOptions]
	}
	answer := strings.TrimSpace(wq.CorrectAnswer)
	if len(options) < form.MinOptions || (answer != "" && !lo.Contains(options, answer)) {
		q.Type = form.TypeText
		return q, true
	}

	q.Options = options
	q.CorrectAnswer = answer
	if answer != "" {
		q.Points = int(math.Round(math.Max(wq.Points, 0)))
		if q.Points <= 0 {
			q.Points = 1
		}
	}
	return q, true
}

// AnswerThreshold is the number of answered questions a quiz of n questions
// needs: max(3, ceil(0.8 × n)).
func AnswerThreshold(n int) int {
	return max(3, (4*n+4)/5)
}

// Validate applies the quiz gate to a parsed draft. A failing draft is
// rejected as a whole. Accepted quiz drafts are trimmed to the desired count.
func Validate(draft form.Draft, req Request) (form.Draft, error) {
	if !req.Quiz {
		return draft, nil
	}
	if !draft.IsQuiz {
		return form.Draft{}, invalid(ErrNotQuiz)
	}

	answered := lo.CountBy(draft.Questions, func(q form.Question) bool { return q.HasAnswer() })
	if need := AnswerThreshold(len(draft.Questions)); answered < need {
		return form.Draft{}, invalid(ErrAnswerCoverage,
			fmt.Sprintf("%d of %d answered, need %d", answered, len(draft.Questions), need))
	}

	if req.DesiredCount > 0 && len(draft.Questions) > req.DesiredCount {
		draft.Questions = draft.Questions[:req.DesiredCount]
	}
	return draft, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
