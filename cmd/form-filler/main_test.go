package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/a3tai/form-filler/internal/config"
	"github.com/a3tai/form-filler/internal/form"
	"github.com/a3tai/form-filler/internal/logging"
	"github.com/a3tai/form-filler/internal/pdf/pdftest"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version = testVersion
	buildTime = "2026-10-01_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	<-done

	output := buf.String()
	for _, expected := range []string{
		"Form Filler",
		"Version: " + testVersion,
		"Build Time: 2026-10-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestLogOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	assert.Equal(t, logging.OutputStderr, logOutput(cfg))

	cfg.Mode = config.ModeServer
	assert.Equal(t, logging.OutputStdout, logOutput(cfg))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.AssetDir = dir
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.FontCacheDir = filepath.Join(dir, "fonts")
	cfg.ResolvePaths()
	// No TrueType font in tests; values fall back to Helvetica.
	cfg.FontPath = ""
	return cfg
}

func writeAssets(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.TemplatePath, pdftest.Document(), 0o600))
	require.NoError(t, os.WriteFile(cfg.MappingPath, []byte(`{"cust_name": [{"xPct": 10, "yPct": 90}]}`), 0o600))
}

func TestNewService_WarnsOnMissingAssets(t *testing.T) {
	cfg := testConfig(t)
	core, logs := observer.New(zap.WarnLevel)

	svc, err := newService(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	require.NotNil(t, svc)

	entries := logs.FilterMessage("assets not ready, retrying on first request").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "template.pdf")
}

func TestNewService_LoadsAssetsAndRules(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)

	cfg.RulesPath = filepath.Join(cfg.AssetDir, "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.RulesPath, []byte(`
plans:
  - code: promo
    title: PROMO
    total: 1000
    monthly: 100
    discount: 10
    bill: 90
`), 0o600))

	core, logs := observer.New(zap.InfoLevel)
	svc, err := newService(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("assets loaded").Len())

	plans := svc.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, "promo", plans[0].Code)
	assert.Equal(t, "1,000", plans[0].Total)

	res := svc.Normalize(form.Record{"plan": "PROMO"})
	assert.Equal(t, "promo", res.Plan)
}

func TestNewService_BadRules(t *testing.T) {
	cfg := testConfig(t)
	cfg.RulesPath = filepath.Join(cfg.AssetDir, "missing.yaml")

	_, err := newService(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rules file")
}

func TestRun_ServerModeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	cfg.Mode = config.ModeServer
	cfg.ShutdownTimeout = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, run(ctx, cfg, zap.NewNop()))
}

func TestRun_ServerModeListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeServer
	cfg.Host = "256.0.0.1"

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to listen"), err.Error())
}
