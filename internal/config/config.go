package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-form-drafter/internal/llm"
	"github.com/a3tai/mcp-form-drafter/internal/ocr"
	"github.com/a3tai/mcp-form-drafter/internal/pdf"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 20 * 1024 * 1024 // 20MB
	DefaultLLMProvider = llm.ProviderNone
	DefaultOCREngine   = ocr.EngineTesseract
	DefaultEnvFile     = ".env"

	envPrefix = "FORM_DRAFTER"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is passed.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the form drafter
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64  // Maximum upload size in bytes
	UploadDir   string // Directory the MCP path argument may read from (stdio mode only)

	// LLM configuration
	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModels   []string
	LLMProxies  []string
	LLMTimeout  time.Duration

	// OCR configuration
	OCREngine         string
	OCRPages          int
	TesseractPath     string
	GoogleCredentials string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		Version:       "1.0.0",
		ServerName:    "mcp-form-drafter",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
		UploadDir:     currentDir,
		LLMProvider:   DefaultLLMProvider,
		LLMTimeout:    llm.DefaultTimeout,
		OCREngine:     DefaultOCREngine,
		OCRPages:      pdf.DefaultRenderPages,
		TesseractPath: "tesseract",
	}
}

// LoadFromFlags loads the .env file, parses command line flags and returns a
// configuration. Flags win over environment variables.
func LoadFromFlags() (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.UploadDir != "" {
		if expandedPath, err := filepath.Abs(cfg.UploadDir); err == nil {
			cfg.UploadDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile exports the variables in path. A missing file is not an error
// and variables already set in the environment are kept.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// flagKeys lists every key bound between pflag and viper.
var flagKeys = []string{
	"mode", "host", "port", "loglevel", "maxfilesize", "upload-dir",
	"llm-provider", "llm-api-key", "llm-base-url", "llm-models", "llm-proxies", "llm-timeout",
	"ocr-engine", "ocr-pages", "tesseract-path", "google-credentials",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("upload-dir", cfg.UploadDir)
	viper.SetDefault("llm-provider", cfg.LLMProvider)
	viper.SetDefault("llm-timeout", cfg.LLMTimeout)
	viper.SetDefault("ocr-engine", cfg.OCREngine)
	viper.SetDefault("ocr-pages", cfg.OCRPages)
	viper.SetDefault("tesseract-path", cfg.TesseractPath)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
	pflag.String("upload-dir", cfg.UploadDir, "Directory local documents may be read from (stdio mode only)")

	pflag.String("llm-provider", cfg.LLMProvider, "LLM provider: openai, anthropic or none")
	pflag.String("llm-api-key", "", "API key for the LLM provider")
	pflag.String("llm-base-url", "", "Base URL override for the LLM provider")
	pflag.StringSlice("llm-models", nil, "Candidate models in try order (at most 3)")
	pflag.StringSlice("llm-proxies", nil, "Egress proxies tried in order before a direct attempt")
	pflag.Duration("llm-timeout", cfg.LLMTimeout, "Timeout of a single LLM attempt")

	pflag.String("ocr-engine", cfg.OCREngine, "OCR engine for scanned PDFs: tesseract, vision or none")
	pflag.Int("ocr-pages", cfg.OCRPages, "Leading PDF pages rendered for OCR")
	pflag.String("tesseract-path", cfg.TesseractPath, "Path to the tesseract binary")
	pflag.String("google-credentials", "", "Service account file for Google Cloud Vision")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Form Drafter - turns prompts and uploaded documents into form drafts\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                              # stdio mode, rules only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --llm-provider=openai --llm-models=gpt-4o-mini # stdio mode with an LLM\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081      # HTTP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from %s):\n", DefaultEnvFile)
		for _, key := range flagKeys {
			fmt.Fprintf(os.Stderr, "  %s\n", EnvName(key))
		}
	}
}

// EnvName returns the environment variable that sets key.
func EnvName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.UploadDir = viper.GetString("upload-dir")

	cfg.LLMProvider = strings.ToLower(viper.GetString("llm-provider"))
	cfg.LLMAPIKey = viper.GetString("llm-api-key")
	cfg.LLMBaseURL = viper.GetString("llm-base-url")
	cfg.LLMModels = splitList(viper.GetStringSlice("llm-models"))
	cfg.LLMProxies = splitList(viper.GetStringSlice("llm-proxies"))
	cfg.LLMTimeout = viper.GetDuration("llm-timeout")

	cfg.OCREngine = strings.ToLower(viper.GetString("ocr-engine"))
	cfg.OCRPages = viper.GetInt("ocr-pages")
	cfg.TesseractPath = viper.GetString("tesseract-path")
	cfg.GoogleCredentials = viper.GetString("google-credentials")
}

// splitList flattens comma separated entries, which is how list values
// arrive from environment variables.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// The upload directory only matters where the path argument is served
	if c.Mode == ModeStdio && c.UploadDir != "" {
		info, err := os.Stat(c.UploadDir)
		if err != nil {
			return fmt.Errorf("cannot access upload directory %s: %w", c.UploadDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("upload directory %s is not a directory", c.UploadDir)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	switch c.LLMProvider {
	case llm.ProviderNone:
	case llm.ProviderOpenAI, llm.ProviderAnthropic:
		if c.LLMAPIKey == "" {
			return fmt.Errorf("llm provider %s requires an api key (%s)", c.LLMProvider, EnvName("llm-api-key"))
		}
		if len(c.LLMModels) == 0 {
			return fmt.Errorf("llm provider %s requires at least one model", c.LLMProvider)
		}
	default:
		return fmt.Errorf("invalid llm provider: %s (must be one of: openai, anthropic, none)", c.LLMProvider)
	}
	if len(c.LLMModels) > llm.MaxModels {
		return fmt.Errorf("at most %d llm models may be configured, got %d", llm.MaxModels, len(c.LLMModels))
	}
	if c.LLMTimeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	if _, err := llm.ParseEgress(c.LLMProxies); err != nil {
		return err
	}

	switch c.OCREngine {
	case ocr.EngineNone, ocr.EngineTesseract:
	case ocr.EngineVision:
		if c.GoogleCredentials == "" {
			return fmt.Errorf("ocr engine vision requires google credentials (%s)", EnvName("google-credentials"))
		}
	default:
		return fmt.Errorf("invalid ocr engine: %s (must be one of: tesseract, vision, none)", c.OCREngine)
	}
	if c.OCRPages <= 0 {
		return errors.New("ocr pages must be positive")
	}

	return nil
}

// LLM returns the generator configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider: c.LLMProvider,
		APIKey:   c.LLMAPIKey,
		BaseURL:  c.LLMBaseURL,
		Models:   c.LLMModels,
		Proxies:  c.LLMProxies,
		Timeout:  c.LLMTimeout,
	}
}

// OCR returns the OCR engine configuration.
func (c *Config) OCR() ocr.Options {
	return ocr.Options{
		Engine:            c.OCREngine,
		TesseractPath:     c.TesseractPath,
		GoogleCredentials: c.GoogleCredentials,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration. Secrets are
// never included.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, LogLevel: %s, MaxFileSize: %d, UploadDir: %s, LLMProvider: %s, LLMModels: %v, OCREngine: %s}",
		c.Mode, c.Host, c.Port, c.LogLevel, c.MaxFileSize, c.UploadDir, c.LLMProvider, c.LLMModels, c.OCREngine)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
