// Package rules builds drafts deterministically from the prompt, uploaded
// source questions and the static field and quiz tables.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/a3tai/mcp-form-drafter/internal/fields"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/intent"
	"github.com/a3tai/mcp-form-drafter/internal/quizbank"
)

// MaxGenericQuestions caps drafts built from prompt inference alone.
const MaxGenericQuestions = 12

const maxExplicitTokenRunes = 20

var (
	explicitMarker  = regexp.MustCompile(`(?:收集|包括|包含|字段|信息)[:：]?`)
	explicitEnd     = regexp.MustCompile(`[。！？!?\n]`)
	tokenSeparators = regexp.MustCompile(`[,，、/／;；]`)

	satisfactionQuestion = form.Question{
		Key:      "satisfaction",
		Title:    "您的整体满意度",
		Type:     form.TypeChoice,
		Required: true,
		Options:  []string{"非常满意", "满意", "一般", "不满意", "非常不满意"},
	}

	needQuestion = form.Question{
		Key:   "need",
		Title: "请描述您的需求",
		Type:  form.TypeParagraph,
	}
)

// Input is what the builder works from.
type Input struct {
	Prompt string
	// SourceQuestions come from an uploaded document. When present they are
	// used as the question list and no prompt inference runs.
	SourceQuestions []form.Question
}

// NeedsLLMForQuiz reports whether a quiz can only be produced by the LLM:
// the prompt asks for a quiz on a topic with no local bank and no upload
// supplied questions.
func NeedsLLMForQuiz(r intent.Result, sourceQuestions int) bool {
	return r.Quiz && !quizbank.HasBank(r.Topic) && sourceQuestions == 0
}

// Build assembles a rule-based draft. It is deterministic for a given input.
func Build(in Input) form.Draft {
	classified := intent.Classify(in.Prompt)
	draft := form.Draft{
		Title:          intent.Title(in.Prompt, classified),
		IsQuiz:         classified.Quiz,
		GenerationMode: form.ModeRule,
		NeedLLMForQuiz: NeedsLLMForQuiz(classified, len(in.SourceQuestions)),
	}

	switch {
	case len(in.SourceQuestions) > 0:
		draft.Questions = form.Finalize(lo.Map(in.SourceQuestions, func(q form.Question, _ int) form.Question {
			return q.Clone()
		}), form.MaxQuestions)
		draft.Description = fmt.Sprintf("根据上传文件自动生成，共 %d 题。", len(draft.Questions))
	case classified.Quiz:
		count := min(classified.DesiredCount, form.MaxQuestions)
		draft.Questions = form.Finalize(quizbank.Draw(classified.Topic, count), count)
		draft.Description = fmt.Sprintf("共 %d 题，每题 1 分，请选择正确答案。", len(draft.Questions))
	default:
		draft.Questions = form.Finalize(inferQuestions(in.Prompt, classified.Category), MaxGenericQuestions)
		draft.Description = describePrompt(in.Prompt)
	}

	return draft
}

// inferQuestions runs the general-purpose cascade: explicit tokens, library
// keyword hits, category augmentation and finally the default triplet.
func inferQuestions(prompt string, category intent.Category) []form.Question {
	questions := ExplicitQuestions(prompt)
	questions = append(questions, fields.ScanAll(prompt)...)

	switch category {
	case intent.CategoryRegistration:
		phone := fields.Canonical("phone")
		phone.Required = true
		core := []form.Question{fields.Canonical("name"), fields.Canonical("email"), phone}
		questions = append(core, questions...)
	case intent.CategorySurvey:
		questions = append(questions, satisfactionQuestion.Clone(), fields.Canonical("feedback"))
	}

	if len(questions) == 0 {
		questions = []form.Question{fields.Canonical("name"), fields.Canonical("email"), needQuestion.Clone()}
	}
	return questions
}

// ExplicitTokens returns the delimited field tokens that follow the first
// collection marker in prompt, up to the end of that sentence.
func ExplicitTokens(prompt string) []string {
	loc := explicitMarker.FindStringIndex(prompt)
	if loc == nil {
		return nil
	}
	rest := prompt[loc[1]:]
	if end := explicitEnd.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}

	tokens := lo.Map(tokenSeparators.Split(rest, -1), func(tok string, _ int) string {
		return strings.TrimSpace(tok)
	})
	return lo.Compact(tokens)
}

// ExplicitQuestions normalizes each explicit token. Tokens too long to be a
// field name become literal text questions.
func ExplicitQuestions(prompt string) []form.Question {
	var questions []form.Question
	for i, tok := range ExplicitTokens(prompt) {
		if utf8.RuneCountInString(tok) > maxExplicitTokenRunes {
			questions = append(questions, form.Question{
				Key:   fmt.Sprintf("custom_%d", i+1),
				Title: tok,
				Type:  form.TypeText,
			})
			continue
		}
		if q, ok := fields.Normalize(tok); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

func describePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "表单由规则自动生成。"
	}
	return "根据需求自动生成：" + form.Truncate(prompt, 60)
}
