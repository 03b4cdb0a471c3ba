package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

const (
	maxOutputTokens = 4096
	temperature     = 0.2
)

// Call is a single chat completion routed through one egress path.
type Call struct {
	Model      string
	System     string
	User       string
	HTTPClient *http.Client
}

// Completer sends one chat completion and returns the raw text content.
type Completer interface {
	Complete(ctx context.Context, call Call) (string, error)
}

var errMissingAPIKey = errors.New("llm api key is not configured")

// OpenAI talks to an OpenAI-compatible chat completions endpoint in JSON mode.
type OpenAI struct {
	apiKey  string
	baseURL string
}

func NewOpenAI(apiKey, baseURL string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errMissingAPIKey
	}
	return &OpenAI{apiKey: apiKey, baseURL: strings.TrimSpace(baseURL)}, nil
}

func (o *OpenAI) Complete(ctx context.Context, call Call) (string, error) {
	opts := []openai.Option{
		openai.WithModel(call.Model),
		openai.WithToken(o.apiKey),
	}
	if o.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(o.baseURL))
	}
	if call.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(call.HTTPClient))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return "", fmt.Errorf("openai client: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, call.System),
		llms.TextParts(llms.ChatMessageTypeHuman, call.User),
	}
	resp, err := model.GenerateContent(ctx, messages,
		llms.WithJSONMode(),
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxOutputTokens),
	)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}

// Anthropic talks to the Anthropic Messages API.
type Anthropic struct {
	apiKey  string
	baseURL string
}

func NewAnthropic(apiKey, baseURL string) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errMissingAPIKey
	}
	return &Anthropic{apiKey: apiKey, baseURL: strings.TrimSpace(baseURL)}, nil
}

func (a *Anthropic) Complete(ctx context.Context, call Call) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(a.apiKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	if call.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(call.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(call.Model),
		MaxTokens:   maxOutputTokens,
		Temperature: param.NewOpt(temperature),
		System: []anthropic.TextBlockParam{
			{Text: call.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(call.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
