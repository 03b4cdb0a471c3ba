// Package intent classifies a free-text prompt into quiz, registration,
// survey and similar form intents.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

// Topic is the subject of a quiz prompt.
type Topic string

const (
	TopicOpenAI  Topic = "openai"
	TopicChina   Topic = "china"
	TopicUnknown Topic = "unknown"
)

// Category steers the rule-based builder for non-quiz prompts.
type Category string

const (
	CategoryNone         Category = ""
	CategoryRegistration Category = "registration"
	CategorySurvey       Category = "survey"
	CategoryRecruitment  Category = "recruitment"
	CategoryBooking      Category = "booking"
)

// Question count bounds for quiz prompts.
const (
	MinQuizCount     = 3
	MaxQuizCount     = 20
	DefaultQuizCount = 8
)

// DefaultTitle is used when the prompt is empty and nothing else applies.
const DefaultTitle = "自动生成表单"

// promptTitleSuffix follows the truncated prompt in fallback titles.
const promptTitleSuffix = "- " + DefaultTitle

const promptTitleRunes = 28

// Result is the classification of a single prompt.
type Result struct {
	Quiz         bool
	Topic        Topic
	DesiredCount int
	Category     Category
}

type rule[T any] struct {
	value    T
	keywords []string
}

var (
	quizKeywords = []string{"quiz", "测验", "测试", "考察", "知识问答", "知识测试"}

	topicRules = []rule[Topic]{
		{value: TopicOpenAI, keywords: []string{"openai", "chatgpt", "gpt", "llm", "大模型", "提示词", "prompt", "api"}},
		{value: TopicChina, keywords: []string{"中国", "中华", "china", "chinese"}},
	}

	categoryRules = []rule[Category]{
		{value: CategoryRegistration, keywords: []string{"报名", "活动", "参会", "参赛", "讲座"}},
		{value: CategorySurvey, keywords: []string{"问卷", "调研", "调查"}},
		{value: CategoryRecruitment, keywords: []string{"招聘", "应聘", "简历"}},
		{value: CategoryBooking, keywords: []string{"预约", "预定", "排期"}},
	}

	categoryTitles = map[Category]string{
		CategoryRegistration: "活动报名表",
		CategorySurvey:       "问卷调查",
		CategoryRecruitment:  "招聘信息登记表",
		CategoryBooking:      "预约登记表",
	}

	quizTitles = map[Topic]string{
		TopicOpenAI:  "OpenAI 知识测验",
		TopicChina:   "中国知识测验",
		TopicUnknown: "知识测验",
	}

	arabicCount  = regexp.MustCompile(`(?i)(\d+)\s*(?:题|道|questions?)`)
	chineseCount = regexp.MustCompile(`([三四五六七八九十])\s*(?:题|道)`)

	chineseNumerals = map[string]int{
		"三": 3, "四": 4, "五": 5, "六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	}
)

// Classify inspects prompt and returns its intent.
func Classify(prompt string) Result {
	lower := strings.ToLower(prompt)
	if containsAny(lower, quizKeywords) {
		return Result{
			Quiz:         true,
			Topic:        firstMatch(lower, topicRules, TopicUnknown),
			DesiredCount: DesiredCount(prompt),
		}
	}
	return Result{
		Topic:    TopicUnknown,
		Category: firstMatch(lower, categoryRules, CategoryNone),
	}
}

// IsQuiz reports whether prompt asks for a graded quiz.
func IsQuiz(prompt string) bool {
	return containsAny(strings.ToLower(prompt), quizKeywords)
}

// DesiredCount extracts the requested number of quiz questions from prompt.
func DesiredCount(prompt string) int {
	if m := arabicCount.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return min(max(n, MinQuizCount), MaxQuizCount)
		}
	}
	if m := chineseCount.FindStringSubmatch(prompt); m != nil {
		return chineseNumerals[m[1]]
	}
	return DefaultQuizCount
}

// Title picks a draft title for prompt given its classification.
func Title(prompt string, r Result) string {
	if r.Quiz {
		return quizTitles[r.Topic]
	}
	if t, ok := categoryTitles[r.Category]; ok {
		return t
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return DefaultTitle
	}
	return form.Truncate(prompt, promptTitleRunes) + promptTitleSuffix
}

// containsAny reports a keyword hit. ASCII keywords must start a word, so
// "api" does not fire inside "capital".
func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if form.ContainsWordPrefix(lower, kw) {
			return true
		}
	}
	return false
}

func firstMatch[T any](lower string, rules []rule[T], fallback T) T {
	for _, r := range rules {
		if containsAny(lower, r.keywords) {
			return r.value
		}
	}
	return fallback
}
