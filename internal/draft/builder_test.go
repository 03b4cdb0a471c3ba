package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/llm"
)

type fakeGenerator struct {
	draft    form.Draft
	err      error
	requests []llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (form.Draft, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return form.Draft{}, f.err
	}
	return f.draft, nil
}

type fakeExtractor struct {
	result extraction.Result
	calls  int
}

func (f *fakeExtractor) Extract(context.Context, extraction.Upload) extraction.Result {
	f.calls++
	return f.result
}

func exhausted() error {
	return &llm.ExhaustedError{Errors: []error{&llm.AttemptError{Model: "m1", Err: llm.ErrNotJSON}}}
}

func keys(d form.Draft) []string {
	return lo.Map(d.Questions, func(q form.Question, _ int) string { return q.Key })
}

func TestBuildDraft_EmptyInput(t *testing.T) {
	b := NewBuilder(nil, nil, nil)

	_, err := b.BuildDraft(context.Background(), Request{Prompt: "   "})
	assert.True(t, apperrors.Is(err, apperrors.CodeEmptyInput))

	_, err = b.BuildDraft(context.Background(), Request{Upload: &extraction.Upload{Filename: "a.csv", Data: []byte("\n\n")}})
	assert.True(t, apperrors.Is(err, apperrors.CodeEmptyInput))
}

func TestBuildDraft_RegistrationWithoutLLM(t *testing.T) {
	out, err := NewBuilder(nil, nil, nil).BuildDraft(context.Background(), Request{Prompt: "报名表"})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "phone"}, keys(out.Draft))
	assert.True(t, out.Draft.Questions[2].Required)
	assert.Equal(t, form.ModeRule, out.Draft.GenerationMode)
	assert.Nil(t, out.Draft.LLMModelUsed)
	assert.Nil(t, out.Extraction)
}

func TestBuildDraft_JSONUploadWithEmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{err: exhausted()}
	b := NewBuilder(nil, gen, nil)

	out, err := b.BuildDraft(context.Background(), Request{Upload: &extraction.Upload{
		Filename: "people.json",
		MIMEType: "application/json",
		Data:     []byte(`[{"Name":"x","Email":"y"}]`),
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email"}, keys(out.Draft))
	assert.Equal(t, form.ModeRule, out.Draft.GenerationMode)
	require.NotNil(t, out.Extraction)
	assert.Equal(t, "json", out.Extraction.FileType)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "people.json", gen.requests[0].SourceFilename)
	assert.Contains(t, gen.requests[0].SourceText, `"Name"`)
}

func TestBuildDraft_ChinaQuizFallsBackToBank(t *testing.T) {
	gen := &fakeGenerator{err: exhausted()}
	out, err := NewBuilder(nil, gen, nil).BuildDraft(context.Background(), Request{Prompt: "帮我做一个关于中国的测验，8题"})
	require.NoError(t, err)

	d := out.Draft
	assert.True(t, d.IsQuiz)
	assert.False(t, d.NeedLLMForQuiz)
	require.Len(t, d.Questions, 8)
	assert.Equal(t, "china_capital", d.Questions[0].Key)
	assert.Equal(t, "china_festival", d.Questions[7].Key)
	for _, q := range d.Questions {
		assert.True(t, q.Required, q.Key)
		assert.Contains(t, q.Options, q.CorrectAnswer, q.Key)
	}

	require.Len(t, gen.requests, 1)
	assert.True(t, gen.requests[0].Quiz)
	assert.Equal(t, 8, gen.requests[0].DesiredCount)
}

func TestBuildDraft_UnknownTopicQuizNeedsLLM(t *testing.T) {
	_, err := NewBuilder(nil, nil, nil).BuildDraft(context.Background(), Request{Prompt: "出一套天文测验"})
	assert.True(t, apperrors.Is(err, apperrors.CodeQuizNeedsLLM))

	gen := &fakeGenerator{err: exhausted()}
	_, err = NewBuilder(nil, gen, nil).BuildDraft(context.Background(), Request{Prompt: "出一套天文测验"})
	assert.True(t, apperrors.Is(err, apperrors.CodeQuizNeedsLLM))
	assert.ErrorIs(t, err, llm.ErrNotJSON)
}

func TestBuildDraft_LLMDraftAccepted(t *testing.T) {
	model := "m2"
	gen := &fakeGenerator{draft: form.Draft{
		Questions:      []form.Question{{Key: "star", Title: "离地球最近的恒星？", Type: form.TypeChoice, Options: []string{"太阳", "比邻星"}, CorrectAnswer: "太阳", Points: 1}},
		IsQuiz:         true,
		GenerationMode: form.ModeLLM,
		LLMModelUsed:   &model,
	}}

	out, err := NewBuilder(nil, gen, nil).BuildDraft(context.Background(), Request{Prompt: "出一套天文测验"})
	require.NoError(t, err)

	assert.Equal(t, "知识测验", out.Draft.Title)
	assert.True(t, out.Draft.NeedLLMForQuiz)
	assert.Equal(t, form.ModeLLM, out.Draft.GenerationMode)
	require.NotNil(t, out.Draft.LLMModelUsed)
	assert.Equal(t, "m2", *out.Draft.LLMModelUsed)
}

func TestBuildDraft_LLMTitleKept(t *testing.T) {
	gen := &fakeGenerator{draft: form.Draft{
		Title:          "读书会报名",
		Questions:      []form.Question{{Key: "name", Title: "姓名", Type: form.TypeText}},
		GenerationMode: form.ModeLLM,
	}}

	out, err := NewBuilder(nil, gen, nil).BuildDraft(context.Background(), Request{Prompt: "读书会报名"})
	require.NoError(t, err)
	assert.Equal(t, "读书会报名", out.Draft.Title)
	assert.False(t, out.Draft.NeedLLMForQuiz)
}

func TestBuildDraft_PDFIssueSurfacedOnlyWithoutQuestions(t *testing.T) {
	issue := &fakeExtractor{result: extraction.Result{FileType: "pdf", ParseIssue: extraction.IssuePDFLowQualityText}}
	up := &extraction.Upload{Filename: "scan.pdf", Data: []byte("%PDF-1.4")}

	_, err := NewBuilder(issue, nil, nil).BuildDraft(context.Background(), Request{Upload: up})
	assert.True(t, apperrors.Is(err, apperrors.CodePDFLowQualityText))
	assert.Equal(t, 1, issue.calls)

	// The prompt still yields questions, so the issue stays in the extraction result only.
	out, err := NewBuilder(issue, nil, nil).BuildDraft(context.Background(), Request{Prompt: "活动报名", Upload: up})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Draft.Questions)
	assert.Equal(t, extraction.IssuePDFLowQualityText, out.Extraction.ParseIssue)
}

func TestBuildDraft_RealPDFParseFailure(t *testing.T) {
	ingestor := extraction.NewPDFIngestor(nil, extraction.WithTextLayerOpener(func([]byte) (extraction.TextLayer, error) {
		return nil, errors.New("xref table broken")
	}))
	b := NewBuilder(extraction.NewService(ingestor, nil), nil, nil)

	_, err := b.BuildDraft(context.Background(), Request{Upload: &extraction.Upload{Filename: "broken.pdf", Data: []byte("junk")}})
	assert.True(t, apperrors.Is(err, apperrors.CodePDFParseFailed))
}

func TestBuildDraft_SourceQuestionsBypassInference(t *testing.T) {
	csv := &extraction.Upload{Filename: "signup.csv", Data: []byte("姓名,邮箱,电话\n张三,a@b.c,123\n")}
	out, err := NewBuilder(nil, nil, nil).BuildDraft(context.Background(), Request{Prompt: "问卷调查 收集：学校", Upload: csv})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "phone"}, keys(out.Draft))
	assert.Contains(t, out.Draft.Description, "3")
}

func TestBuildDraft_Deterministic(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	req := Request{Prompt: "问卷调查，收集：姓名、城市、公司"}

	first, err := b.BuildDraft(context.Background(), req)
	require.NoError(t, err)
	second, err := b.BuildDraft(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Draft, second.Draft)
}
