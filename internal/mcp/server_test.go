package mcp

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-form-drafter/internal/config"
	"github.com/a3tai/mcp-form-drafter/internal/draft"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/googleforms"
)

type fakePublisher struct {
	token string
	draft form.Draft
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, token string, d form.Draft) (googleforms.Created, error) {
	f.token = token
	f.draft = d
	if f.err != nil {
		return googleforms.Created{}, f.err
	}
	return googleforms.Created{FormID: "f1", ResponderURI: "https://forms.example/f1", Items: len(d.Questions)}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 1024
	cfg.UploadDir = t.TempDir()
	return cfg
}

func newTestServer(t *testing.T, publisher googleforms.Publisher) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(t), publisher)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, publisher googleforms.Publisher) *Server {
	t.Helper()
	extractor := extraction.NewService(nil, nil)
	s, err := NewServer(cfg, draft.NewBuilder(extractor, nil, nil), extractor, publisher, nil)
	require.NoError(t, err)
	return s
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func TestServer_HandleExtractQuestions(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("inline csv", func(t *testing.T) {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{
			"content":  "姓名,邮箱,电话\n",
			"filename": "signup.csv",
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		text := extractTextFromResult(result)
		assert.Contains(t, text, "Extracted 3 questions from signup.csv (type: csv)")
		assert.Contains(t, text, `"key": "phone"`)
	})

	t.Run("file on disk", func(t *testing.T) {
		path := filepath.Join(s.config.UploadDir, "people.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"Name":"x","Email":"y"}]`), 0o600))

		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{"path": path}))
		require.NoError(t, err)
		assert.Contains(t, extractTextFromResult(result), "from people.json (type: json)")

		result, err = s.handleExtractQuestions(context.Background(), callRequest(map[string]any{"path": "people.json"}))
		require.NoError(t, err)
		assert.Contains(t, extractTextFromResult(result), "from people.json (type: json)")
	})

	t.Run("base64 content", func(t *testing.T) {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{
			"content":  base64.StdEncoding.EncodeToString([]byte("Name,Email\n")),
			"filename": "a.csv",
			"encoding": "base64",
		}))
		require.NoError(t, err)
		assert.Contains(t, extractTextFromResult(result), "Extracted 2 questions")
	})

	t.Run("missing input", func(t *testing.T) {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("too large", func(t *testing.T) {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{
			"content":  strings.Repeat("a", 2048),
			"filename": "big.txt",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, extractTextFromResult(result), "file_too_large")
	})

	t.Run("missing file", func(t *testing.T) {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{"path": "missing.csv"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, extractTextFromResult(result), "cannot access file")
	})
}

func TestServer_PathConfinedToUploadDir(t *testing.T) {
	s := newTestServer(t, nil)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("root:x:0:0:root:/root:/bin/bash\n"), 0o600))

	for _, path := range []string{
		outside,
		"/etc/passwd",
		"../secret.txt",
		"sub/../../" + filepath.Base(filepath.Dir(outside)) + "/secret.txt",
	} {
		t.Run(path, func(t *testing.T) {
			result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{
				"path":     path,
				"filename": "x.txt",
			}))
			require.NoError(t, err)
			assert.True(t, result.IsError)

			text := extractTextFromResult(result)
			assert.Contains(t, text, "outside configured directory")
			assert.NotContains(t, text, "root:x:0:0")
		})
	}
}

func TestServer_PathDisabledInServerMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeServer
	s := newTestServerWithConfig(t, cfg, nil)

	inside := filepath.Join(cfg.UploadDir, "fields.csv")
	require.NoError(t, os.WriteFile(inside, []byte("Name,Email\n"), 0o600))

	for _, path := range []string{"/etc/passwd", inside} {
		result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{
			"path":     path,
			"filename": "x.txt",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, extractTextFromResult(result), "path argument is not available")
	}

	result, err := s.handleBuildDraft(context.Background(), callRequest(map[string]any{"path": "/etc/passwd", "prompt": "报名表"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_PathDisabledWithoutUploadDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.UploadDir = ""
	s := newTestServerWithConfig(t, cfg, nil)

	result, err := s.handleExtractQuestions(context.Background(), callRequest(map[string]any{"path": "/etc/passwd"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "path argument is not available")
}

func TestServer_HandleBuildDraft(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleBuildDraft(context.Background(), callRequest(map[string]any{"prompt": "报名表"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, `Draft "活动报名表": 3 questions, mode rule`)
	assert.Contains(t, text, `"generationMode": "rule"`)

	result, err = s.handleBuildDraft(context.Background(), callRequest(map[string]any{"prompt": ""}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "empty_input")

	result, err = s.handleBuildDraft(context.Background(), callRequest(map[string]any{"prompt": "天文测验"}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "quiz_needs_llm")
}

func TestServer_HandleCreateForm(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestServer(t, pub)

	wrapped := `{"draft":{"title":"T","description":"","questions":[{"key":"name","title":"姓名","type":"text","required":true}],"isQuiz":false,"generationMode":"rule","llmModelUsed":null,"needLlmForQuiz":false},"extraction":null}`
	result, err := s.handleCreateForm(context.Background(), callRequest(map[string]any{
		"draft":        wrapped,
		"access_token": "tok",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	assert.Contains(t, extractTextFromResult(result), "Form created: https://forms.example/f1")
	assert.Equal(t, "tok", pub.token)
	assert.Equal(t, "T", pub.draft.Title)

	result, err = s.handleCreateForm(context.Background(), callRequest(map[string]any{"draft": wrapped}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleCreateForm(context.Background(), callRequest(map[string]any{"draft": "{", "access_token": "tok"}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "invalid draft json")
}

func TestDecodeContent(t *testing.T) {
	data, err := decodeContent("abc", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = decodeContent("%%%", "base64")
	assert.Error(t, err)

	_, err = decodeContent("abc", "gzip")
	assert.Error(t, err)
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
