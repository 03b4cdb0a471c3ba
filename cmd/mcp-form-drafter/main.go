package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-form-drafter/internal/config"
	"github.com/a3tai/mcp-form-drafter/internal/draft"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
	"github.com/a3tai/mcp-form-drafter/internal/googleforms"
	"github.com/a3tai/mcp-form-drafter/internal/httpapi"
	"github.com/a3tai/mcp-form-drafter/internal/llm"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/mcp"
	"github.com/a3tai/mcp-form-drafter/internal/ocr"
	"github.com/a3tai/mcp-form-drafter/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// app holds everything wired from the configuration.
type app struct {
	mcp     *mcp.Server
	http    *httpapi.Server
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// setupLogging builds the logger for the configured mode. In stdio mode all
// output goes to stderr so it never mixes with the MCP stream.
func setupLogging(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Production: cfg.IsServerMode() && !cfg.IsDebug(),
		Stderr:     cfg.IsStdioMode(),
	})
}

// newOCREngine builds the configured OCR engine. A missing tesseract binary
// disables OCR with a warning instead of failing startup.
func newOCREngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (ocr.Engine, error) {
	opts := cfg.OCR()
	opts.Logger = log
	engine, err := ocr.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	if t, ok := engine.(*ocr.Tesseract); ok && !t.Available() {
		log.Warn("tesseract not found, OCR disabled", "path", cfg.TesseractPath)
		return nil, nil
	}
	return engine, nil
}

// newGenerator builds the LLM generator, or nil when no provider is set.
func newGenerator(cfg *config.Config, log *logger.Logger) (draft.Generator, error) {
	gen, err := llm.New(cfg.LLM(), log)
	if errors.Is(err, llm.ErrDisabled) {
		log.Info("llm disabled, drafts are rule-based")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info("llm enabled", "provider", cfg.LLMProvider, "models", gen.Models())
	return gen, nil
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	engine, err := newOCREngine(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	pdfOpts := []extraction.PDFOption{extraction.WithMaxOCRPages(cfg.OCRPages)}
	if engine != nil {
		pdfOpts = append(pdfOpts, extraction.WithOCR(pdf.NewRenderer(0), engine))
		if c, ok := engine.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
	}
	extractor := extraction.NewService(extraction.NewPDFIngestor(log, pdfOpts...), log)

	generator, err := newGenerator(cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}
	builder := draft.NewBuilder(extractor, generator, log)
	publisher := googleforms.NewPublisher(log, nil)

	a.mcp, err = mcp.NewServer(cfg, builder, extractor, publisher, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("mcp server: %w", err)
	}

	a.http, err = httpapi.New(cfg, builder, extractor, log,
		httpapi.WithPublisher(publisher),
		httpapi.WithMCP(a.mcp.SSEHandler("http://"+cfg.Address())),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("http server: %w", err)
	}
	return a, nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, a *app, log *logger.Logger) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- a.http.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	log.Info("server stopped")
	return nil
}

// runStdioMode handles stdio mode execution. The parent process controls our
// lifecycle; we return when stdin is closed.
func runStdioMode(ctx context.Context, a *app) error {
	return a.mcp.Run(ctx)
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.Version = version
	}

	log, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Debug("starting", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cancel, a, log)
	} else {
		err = runStdioMode(ctx, a)
	}
	if err != nil {
		log.Error("server error", "error", err)
		a.Close()
		log.Sync()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Form Drafter\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
