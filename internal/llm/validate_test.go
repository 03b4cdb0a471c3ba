package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

func TestParseDraft(t *testing.T) {
	content := "```json\n" + `{
		"isQuiz": false,
		"title": "  活动报名  ",
		"description": "请填写",
		"questions": [
			{"key": "Full Name", "title": "姓名", "type": "text", "required": true, "options": ["x"], "correctAnswer": "x", "points": 3},
			{"key": "", "title": "您的性别", "type": "choice", "options": ["男", " 女 ", "", "男"]},
			{"key": "level", "title": "级别", "type": "dropdown"},
			{"key": "one", "title": "只有一个选项", "type": "choice", "options": ["唯一"]},
			{"key": "bad_answer", "title": "答案不在选项中", "type": "choice", "options": ["A", "B"], "correctAnswer": "C", "points": 2},
			{"key": "graded", "title": "1+1=?", "type": "CHOICE", "options": ["1", "2"], "correctAnswer": "2", "points": 0},
			{"key": "level", "title": "重复的 key", "type": "text"},
			{"key": "untitled", "title": "   "},
			"not an object"
		]
	}` + "\n```"

	draft, err := ParseDraft(content)
	require.NoError(t, err)

	assert.Equal(t, "活动报名", draft.Title)
	assert.Equal(t, "请填写", draft.Description)
	assert.Equal(t, form.ModeLLM, draft.GenerationMode)

	byKey := make(map[string]form.Question)
	var keys []string
	for _, q := range draft.Questions {
		byKey[q.Key] = q
		keys = append(keys, q.Key)
	}
	assert.Equal(t, []string{"full_name", "您的性别", "level", "one", "bad_answer", "graded"}, keys)

	name := byKey["full_name"]
	assert.Empty(t, name.Options)
	assert.Empty(t, name.CorrectAnswer)
	assert.Zero(t, name.Points)

	assert.Equal(t, []string{"男", "女"}, byKey["您的性别"].Options)
	assert.Equal(t, form.TypeText, byKey["level"].Type)
	assert.Equal(t, form.TypeText, byKey["one"].Type)
	assert.Empty(t, byKey["one"].Options)

	badAnswer := byKey["bad_answer"]
	assert.Equal(t, form.TypeText, badAnswer.Type)
	assert.Empty(t, badAnswer.CorrectAnswer)
	assert.Zero(t, badAnswer.Points)

	graded := byKey["graded"]
	assert.Equal(t, form.TypeChoice, graded.Type)
	assert.Equal(t, "2", graded.CorrectAnswer)
	assert.Equal(t, 1, graded.Points)
}

func TestParseDraft_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty", "   ", ErrEmptyContent},
		{"not json", "当然可以！以下是表单：", ErrNotJSON},
		{"array", `[{"title":"x"}]`, ErrNotJSON},
		{"missing questions", `{"isQuiz":false,"title":"t"}`, ErrMissingField},
		{"missing isQuiz", `{"title":"t","questions":[{"title":"q"}]}`, ErrMissingField},
		{"questions not array", `{"isQuiz":false,"title":"t","questions":"q"}`, ErrNoQuestions},
		{"no usable questions", `{"isQuiz":false,"title":"t","questions":[{"title":""},1]}`, ErrNoQuestions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDraft(tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseDraft_QuestionLimit(t *testing.T) {
	wireWith := func(n int) string {
		wire := WireDraft{Title: "t"}
		for i := 0; i < n; i++ {
			wire.Questions = append(wire.Questions, WireQuestion{Key: strings.Repeat("k", i+1), Title: "q", Type: "text"})
		}
		raw, err := json.Marshal(wire)
		require.NoError(t, err)
		return string(raw)
	}

	draft, err := ParseDraft(wireWith(form.MaxQuestions))
	require.NoError(t, err)
	assert.Len(t, draft.Questions, form.MaxQuestions)

	_, err = ParseDraft(wireWith(form.MaxQuestions + 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooMany)
	assert.Contains(t, err.Error(), "16 > 15")
}

func TestAnswerThreshold(t *testing.T) {
	tests := map[int]int{1: 3, 3: 3, 4: 4, 5: 4, 8: 7, 10: 8, 15: 12}
	for n, want := range tests {
		assert.Equal(t, want, AnswerThreshold(n), "n=%d", n)
	}
}

func quizDraft(total, answered int) form.Draft {
	d := form.Draft{IsQuiz: true}
	for i := 0; i < total; i++ {
		q := form.Question{Key: strings.Repeat("q", i+1), Title: "题目", Type: form.TypeChoice, Options: []string{"A", "B"}}
		if i < answered {
			q.CorrectAnswer = "A"
			q.Points = 1
		}
		d.Questions = append(d.Questions, q)
	}
	return d
}

func TestValidate(t *testing.T) {
	t.Run("not a quiz request", func(t *testing.T) {
		d, err := Validate(quizDraft(5, 0), Request{})
		require.NoError(t, err)
		assert.Len(t, d.Questions, 5)
	})

	t.Run("one of five answered is rejected", func(t *testing.T) {
		_, err := Validate(quizDraft(5, 1), Request{Quiz: true, DesiredCount: 5})
		assert.ErrorIs(t, err, ErrAnswerCoverage)
	})

	t.Run("four of five answered passes", func(t *testing.T) {
		d, err := Validate(quizDraft(5, 4), Request{Quiz: true, DesiredCount: 5})
		require.NoError(t, err)
		assert.Len(t, d.Questions, 5)
	})

	t.Run("quiz flag required", func(t *testing.T) {
		d := quizDraft(5, 5)
		d.IsQuiz = false
		_, err := Validate(d, Request{Quiz: true})
		assert.ErrorIs(t, err, ErrNotQuiz)
	})

	t.Run("small quizzes need three answers", func(t *testing.T) {
		_, err := Validate(quizDraft(2, 2), Request{Quiz: true})
		assert.ErrorIs(t, err, ErrAnswerCoverage)
	})

	t.Run("trimmed to desired count after the gate", func(t *testing.T) {
		d, err := Validate(quizDraft(10, 10), Request{Quiz: true, DesiredCount: 6})
		require.NoError(t, err)
		assert.Len(t, d.Questions, 6)
	})
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`  {"a":1}  `))
}
