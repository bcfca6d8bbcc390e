package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range []string{"MODE", "HOST", "PORT", "ASSETS", "TEMPLATE", "FONT", "MAPPING", "RULES", "LOGLEVEL", "FONT_NAME"} {
		os.Unsetenv(EnvPrefix + "_" + name)
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})
	setArgs(args)
	resetFlags()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	clearEnvVars()
	withArgs(t, "form-filler")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeServer {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeServer)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, DefaultPort)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("LoadFromFlags() MaxBodySize = %v, want %v", cfg.MaxBodySize, DefaultMaxBodySize)
	}
	if !filepath.IsAbs(cfg.TemplatePath) || filepath.Base(cfg.TemplatePath) != DefaultTemplateFile {
		t.Errorf("LoadFromFlags() TemplatePath = %v, want absolute path to %s", cfg.TemplatePath, DefaultTemplateFile)
	}
	if filepath.Base(filepath.Dir(cfg.MappingPath)) != DefaultAssetDir {
		t.Errorf("LoadFromFlags() MappingPath = %v, want it inside %s", cfg.MappingPath, DefaultAssetDir)
	}
	if cfg.RulesPath != "" {
		t.Errorf("LoadFromFlags() RulesPath = %v, want empty", cfg.RulesPath)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	assets := t.TempDir()

	tests := []struct {
		name         string
		args         []string
		wantMode     string
		wantHost     string
		wantPort     int
		wantLogLevel string
		wantTemplate string
		wantFont     string
	}{
		{
			name:         "custom asset directory",
			args:         []string{"form-filler", "--assets=" + assets},
			wantMode:     ModeServer,
			wantHost:     DefaultHost,
			wantPort:     DefaultPort,
			wantLogLevel: "info",
			wantTemplate: filepath.Join(assets, DefaultTemplateFile),
			wantFont:     filepath.Join(assets, DefaultFontFile),
		},
		{
			name:         "stdio mode",
			args:         []string{"form-filler", "--mode=stdio", "--assets=" + assets},
			wantMode:     ModeStdio,
			wantHost:     DefaultHost,
			wantPort:     DefaultPort,
			wantLogLevel: "info",
			wantTemplate: filepath.Join(assets, DefaultTemplateFile),
			wantFont:     filepath.Join(assets, DefaultFontFile),
		},
		{
			name:         "explicit files and listener",
			args:         []string{"form-filler", "--host=0.0.0.0", "--port=9090", "--loglevel=debug", "--template=" + filepath.Join(assets, "kt.pdf"), "--font=" + filepath.Join(assets, "nanum.ttf")},
			wantMode:     ModeServer,
			wantHost:     "0.0.0.0",
			wantPort:     9090,
			wantLogLevel: "debug",
			wantTemplate: filepath.Join(assets, "kt.pdf"),
			wantFont:     filepath.Join(assets, "nanum.ttf"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			withArgs(t, tt.args...)

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.Mode != tt.wantMode {
				t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Host != tt.wantHost {
				t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, tt.wantHost)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.TemplatePath != tt.wantTemplate {
				t.Errorf("LoadFromFlags() TemplatePath = %v, want %v", cfg.TemplatePath, tt.wantTemplate)
			}
			if cfg.FontPath != tt.wantFont {
				t.Errorf("LoadFromFlags() FontPath = %v, want %v", cfg.FontPath, tt.wantFont)
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	clearEnvVars()
	withArgs(t, "form-filler")

	assets := t.TempDir()
	os.Setenv(EnvPrefix+"_MODE", "stdio")
	os.Setenv(EnvPrefix+"_PORT", "3000")
	os.Setenv(EnvPrefix+"_ASSETS", assets)
	os.Setenv(EnvPrefix+"_FONT_NAME", "MalgunGothic")
	os.Setenv(EnvPrefix+"_LOGLEVEL", "warn")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeStdio {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeStdio)
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.FontName != "MalgunGothic" {
		t.Errorf("LoadFromFlags() FontName = %v, want %v", cfg.FontName, "MalgunGothic")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MappingPath != filepath.Join(assets, DefaultMappingFile) {
		t.Errorf("LoadFromFlags() MappingPath = %v, want it inside %s", cfg.MappingPath, assets)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	clearEnvVars()
	withArgs(t, "form-filler", "--port=9999", "--shutdown-timeout=3s")
	os.Setenv(EnvPrefix+"_PORT", "3000")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (flag should override env)", cfg.Port, 9999)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("LoadFromFlags() ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 3*time.Second)
	}
}

func TestLoadFromFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "invalid mode", args: []string{"form-filler", "--mode=invalid"}, wantErr: "mode must be"},
		{name: "invalid port", args: []string{"form-filler", "--port=70000"}, wantErr: "port must be between"},
		{name: "invalid log level", args: []string{"form-filler", "--loglevel=trace"}, wantErr: "invalid log level"},
		{name: "invalid filename", args: []string{"form-filler", "--filename=a/b.pdf"}, wantErr: "invalid filename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			withArgs(t, tt.args...)

			_, err := LoadFromFlags()
			if err == nil {
				t.Fatal("LoadFromFlags() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	clearEnvVars()
	withArgs(t, "form-filler", "--version")

	_, err := LoadFromFlags()
	if err == nil || err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want version requested", err)
	}
}
