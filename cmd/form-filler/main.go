package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	_ "time/tzdata"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/a3tai/form-filler/internal/config"
	"github.com/a3tai/form-filler/internal/form"
	"github.com/a3tai/form-filler/internal/httpapi"
	"github.com/a3tai/form-filler/internal/logging"
	"github.com/a3tai/form-filler/internal/mcp"
	"github.com/a3tai/form-filler/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// logOutput picks the log stream. In stdio mode stdout carries the MCP
// protocol, so logs go to stderr.
func logOutput(cfg *config.Config) string {
	if cfg.IsStdioMode() {
		return logging.OutputStderr
	}
	return logging.OutputStdout
}

// newService builds the form service from the configuration and warms the
// asset cache. Missing assets are not fatal at startup: every request
// retries the load and reports what is missing.
func newService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pdf.Service, error) {
	var rules *form.Rules
	if cfg.RulesPath != "" {
		var err error
		if rules, err = form.LoadRules(cfg.RulesPath); err != nil {
			return nil, err
		}
	}

	svc, err := pdf.NewService(pdf.Options{
		Rules: rules,
		Assets: pdf.AssetPaths{
			Template:     cfg.TemplatePath,
			Font:         cfg.FontPath,
			FontName:     cfg.FontName,
			FontCacheDir: cfg.FontCacheDir,
			Mapping:      cfg.MappingPath,
		},
		MaxFileSize: cfg.MaxFileSize,
		Filename:    cfg.Filename,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	if err := svc.Preload(ctx); err != nil {
		logger.Warn("assets not ready, retrying on first request", zap.Error(err))
	} else {
		logger.Info("assets loaded",
			zap.String("template", cfg.TemplatePath),
			zap.String("mapping", cfg.MappingPath))
	}
	return svc, nil
}

// run serves until ctx is canceled or the transport fails.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create form service: %w", err)
	}

	if cfg.IsServerMode() {
		router := httpapi.NewRouter(svc, httpapi.RouterOptions{
			Logger:      logger,
			MaxBodySize: cfg.MaxBodySize,
		})
		return httpapi.NewServer(cfg.Address(), router, logger, cfg.ShutdownTimeout).Run(ctx)
	}

	server, err := mcp.NewServer(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, logOutput(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsDebug() {
		logger.Debug("starting", zap.String("config", cfg.String()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Form Filler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
