package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mcp-form-drafter", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, "none", cfg.LLMProvider)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "tesseract", cfg.OCREngine)
	assert.Equal(t, 2, cfg.OCRPages)
	assert.NotEmpty(t, cfg.UploadDir)
	assert.NoError(t, cfg.Validate())
}

func validLLM() *Config {
	cfg := DefaultConfig()
	cfg.LLMProvider = "openai"
	cfg.LLMAPIKey = "sk-test"
	cfg.LLMModels = []string{"gpt-4o-mini"}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "server mode", mutate: func(c *Config) { c.Mode = "server" }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{name: "port too low in server mode", mutate: func(c *Config) { c.Mode = "server"; c.Port = 0 }, wantErr: "port"},
		{name: "port too high in server mode", mutate: func(c *Config) { c.Mode = "server"; c.Port = 70000 }, wantErr: "port"},
		{name: "port ignored in stdio mode", mutate: func(c *Config) { c.Port = 0 }},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "log level"},
		{name: "non positive file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "unknown llm provider", mutate: func(c *Config) { c.LLMProvider = "cohere" }, wantErr: "llm provider"},
		{name: "llm without key", mutate: func(c *Config) { c.LLMProvider = "anthropic"; c.LLMModels = []string{"m"} }, wantErr: "FORM_DRAFTER_LLM_API_KEY"},
		{name: "llm without models", mutate: func(c *Config) { c.LLMProvider = "openai"; c.LLMAPIKey = "k" }, wantErr: "at least one model"},
		{name: "too many models", mutate: func(c *Config) { c.LLMModels = []string{"a", "b", "c", "d"} }, wantErr: "at most 3"},
		{name: "bad proxy", mutate: func(c *Config) { c.LLMProxies = []string{"proxy:3128"} }, wantErr: "invalid proxy url"},
		{name: "zero llm timeout", mutate: func(c *Config) { c.LLMTimeout = 0 }, wantErr: "timeout"},
		{name: "unknown ocr engine", mutate: func(c *Config) { c.OCREngine = "abbyy" }, wantErr: "ocr engine"},
		{name: "vision without credentials", mutate: func(c *Config) { c.OCREngine = "vision" }, wantErr: "FORM_DRAFTER_GOOGLE_CREDENTIALS"},
		{name: "vision with credentials", mutate: func(c *Config) { c.OCREngine = "vision"; c.GoogleCredentials = "/sa.json" }},
		{name: "ocr disabled", mutate: func(c *Config) { c.OCREngine = "none" }},
		{name: "zero ocr pages", mutate: func(c *Config) { c.OCRPages = 0 }, wantErr: "ocr pages"},
		{name: "missing upload dir", mutate: func(c *Config) { c.UploadDir = "/non/existent/uploads" }, wantErr: "upload directory"},
		{name: "missing upload dir ignored in server mode", mutate: func(c *Config) { c.Mode = "server"; c.UploadDir = "/non/existent/uploads" }},
		{name: "upload dir disabled", mutate: func(c *Config) { c.UploadDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, validLLM().Validate())
}

func TestConfigLLMAndOCR(t *testing.T) {
	cfg := validLLM()
	cfg.LLMProxies = []string{"http://proxy:3128"}
	cfg.LLMBaseURL = "https://llm.internal/v1"

	l := cfg.LLM()
	assert.Equal(t, "openai", l.Provider)
	assert.Equal(t, "sk-test", l.APIKey)
	assert.Equal(t, "https://llm.internal/v1", l.BaseURL)
	assert.Equal(t, []string{"gpt-4o-mini"}, l.Models)
	assert.Equal(t, []string{"http://proxy:3128"}, l.Proxies)
	assert.Equal(t, cfg.LLMTimeout, l.Timeout)

	o := cfg.OCR()
	assert.Equal(t, "tesseract", o.Engine)
	assert.Equal(t, "tesseract", o.TesseractPath)
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: 9090}
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestConfigIsDebug(t *testing.T) {
	for level, want := range map[string]bool{"debug": true, "info": false, "warn": false, "error": false} {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, want, cfg.IsDebug(), level)
	}
}

func TestConfigString_OmitsSecrets(t *testing.T) {
	cfg := validLLM()
	s := cfg.String()

	assert.True(t, strings.HasPrefix(s, "Config{Mode: stdio"))
	assert.Contains(t, s, "LLMProvider: openai")
	assert.Contains(t, s, "gpt-4o-mini")
	assert.NotContains(t, s, "sk-test")
}

func TestConfigModes(t *testing.T) {
	cfg := &Config{Mode: ModeServer}
	assert.True(t, cfg.IsServerMode())
	assert.False(t, cfg.IsStdioMode())

	cfg.Mode = ModeStdio
	assert.False(t, cfg.IsServerMode())
	assert.True(t, cfg.IsStdioMode())
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FORM_DRAFTER_LLM_API_KEY", EnvName("llm-api-key"))
	assert.Equal(t, "FORM_DRAFTER_MAXFILESIZE", EnvName("maxfilesize"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c"}))
	assert.Nil(t, splitList(nil))
}
