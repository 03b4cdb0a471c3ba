package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/config"
	"github.com/a3tai/mcp-form-drafter/internal/descriptions"
	"github.com/a3tai/mcp-form-drafter/internal/draft"
	"github.com/a3tai/mcp-form-drafter/internal/googleforms"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/security"
)

// Tool names
const (
	ToolExtractQuestions = "extract_questions"
	ToolBuildDraft       = "build_draft"
	ToolCreateForm       = "create_form"
)

// SSEBasePath is where the MCP SSE transport is mounted in server mode.
const SSEBasePath = "/mcp"

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	builder   *draft.Builder
	extractor draft.Extractor
	publisher googleforms.Publisher
	paths     *security.PathValidator // nil disables the path argument
	mcpServer *server.MCPServer
	log       *logger.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, builder *draft.Builder, extractor draft.Extractor, publisher googleforms.Publisher, log *logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if builder == nil {
		return nil, fmt.Errorf("draft builder cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		builder:   builder,
		extractor: extractor,
		publisher: publisher,
		mcpServer: mcpServer,
		log:       logger.OrNop(log).With("service", "mcp.Server"),
	}

	// Local files are only readable by a stdio client on the same host
	if cfg.IsStdioMode() && cfg.UploadDir != "" {
		paths, err := security.NewPathValidator(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("upload directory: %w", err)
		}
		s.paths = paths
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	var uploadArgs []mcp.ToolOption
	if s.paths != nil {
		uploadArgs = append(uploadArgs, mcp.WithString("path",
			mcp.Description(fmt.Sprintf("Path of the document to read, inside %s", s.paths.Directory())),
		))
	}
	uploadArgs = append(uploadArgs,
		mcp.WithString("content",
			mcp.Description("Document content, used when path is empty"),
		),
		mcp.WithString("filename",
			mcp.Description("File name of content, used to detect its type (e.g. fields.csv)"),
		),
		mcp.WithString("mime_type",
			mcp.Description("Optional MIME type of content"),
		),
		mcp.WithString("encoding",
			mcp.Description("Encoding of content: text (default) or base64"),
			mcp.Enum(encodingText, encodingBase64),
		),
	)

	extractTool := mcp.NewTool(ToolExtractQuestions,
		append([]mcp.ToolOption{mcp.WithDescription(descriptions.ExtractQuestionsDescription)}, uploadArgs...)...,
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractQuestions)

	buildTool := mcp.NewTool(ToolBuildDraft,
		append([]mcp.ToolOption{
			mcp.WithDescription(descriptions.BuildDraftDescription),
			mcp.WithString("prompt",
				mcp.Description("What the form is for, in the user's words"),
			),
		}, uploadArgs...)...,
	)
	s.mcpServer.AddTool(buildTool, s.handleBuildDraft)

	if s.publisher != nil {
		createTool := mcp.NewTool(ToolCreateForm,
			mcp.WithDescription(descriptions.CreateFormDescription),
			mcp.WithString("draft",
				mcp.Required(),
				mcp.Description("Draft JSON as returned by build_draft"),
			),
			mcp.WithString("access_token",
				mcp.Required(),
				mcp.Description("Google OAuth access token of the user"),
			),
		)
		s.mcpServer.AddTool(createTool, s.handleCreateForm)
	}
}

// Handler functions
func (s *Server) handleExtractQuestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	up, err := s.uploadFromRequest(request)
	if err != nil {
		return toolError(err), nil
	}
	if up == nil {
		return mcp.NewToolResultError("either path or content is required"), nil
	}

	res := s.extractor.Extract(ctx, *up)

	header := fmt.Sprintf("Extracted %d questions from %s (type: %s", len(res.Questions), up.Filename, res.FileType)
	if res.ParseIssue != "" {
		header += fmt.Sprintf(", issue: %s", res.ParseIssue)
	}
	if res.UsedOCR {
		header += ", via OCR"
	}
	header += ")"
	return jsonResult(header, res)
}

func (s *Server) handleBuildDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	up, err := s.uploadFromRequest(request)
	if err != nil {
		return toolError(err), nil
	}

	out, err := s.builder.BuildDraft(ctx, draft.Request{
		Prompt: request.GetString("prompt", ""),
		Upload: up,
	})
	if err != nil {
		return toolError(err), nil
	}

	d := out.Draft
	header := fmt.Sprintf("Draft %q: %d questions, mode %s", d.Title, len(d.Questions), d.GenerationMode)
	if d.IsQuiz {
		header += ", quiz"
	}
	return jsonResult(header, out)
}

func (s *Server) handleCreateForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("draft")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	token, err := request.RequireString("access_token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := googleforms.DecodeDraft([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := s.publisher.Publish(ctx, token, d)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(fmt.Sprintf("Form created: %s", created.ResponderURI), created)
}

// toolError reports err as a tool error. Categorized errors carry their code
// and localized message.
func toolError(err error) *mcp.CallToolResult {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", appErr.Code, appErr.Message))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(header string, v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(header + "\n\n" + string(body)), nil
}

// Run serves MCP over stdio. Server mode is handled by the HTTP API, which
// mounts SSEHandler.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return fmt.Errorf("mcp server runs in stdio mode only; use the http api in server mode")
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.log.Debug("starting mcp server in stdio mode", "tools", s.toolNames())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// SSEHandler exposes the same tools over the MCP SSE transport under
// SSEBasePath.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	return server.NewSSEServer(s.mcpServer,
		server.WithBaseURL(baseURL),
		server.WithStaticBasePath(SSEBasePath),
	)
}

func (s *Server) toolNames() []string {
	names := []string{ToolExtractQuestions, ToolBuildDraft}
	if s.publisher != nil {
		names = append(names, ToolCreateForm)
	}
	return names
}
