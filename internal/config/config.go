package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 20 * 1024 * 1024 // 20MB
	DefaultMaxBodySize     = 1 << 20          // 1MB
	DefaultShutdownTimeout = 10 * time.Second
	DefaultAssetDir        = "assets"
	DefaultTemplateFile    = "template.pdf"
	DefaultFontFile        = "malgun.ttf"
	DefaultMappingFile     = "KT_mapping_legacy_names.json"
	DefaultFilename        = "KT_WELCOME.pdf"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "FORM_FILLER"
)

// Config holds all configuration for the form filler
type Config struct {
	// Server configuration
	Mode            string // "server" or "stdio"
	Host            string
	Port            int
	MaxBodySize     int64
	ShutdownTimeout time.Duration

	// Asset configuration. Empty file paths resolve inside AssetDir.
	AssetDir     string
	TemplatePath string
	FontPath     string
	FontName     string
	FontCacheDir string
	MappingPath  string
	RulesPath    string

	// Application configuration
	Version     string
	ServerName  string
	Filename    string
	LogLevel    string
	MaxFileSize int64 // Maximum template size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeServer,
		Host:            DefaultHost,
		Port:            DefaultPort,
		MaxBodySize:     DefaultMaxBodySize,
		ShutdownTimeout: DefaultShutdownTimeout,
		AssetDir:        DefaultAssetDir,
		FontCacheDir:    defaultFontCacheDir(),
		Version:         "1.0.0",
		ServerName:      "form-filler",
		Filename:        DefaultFilename,
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

func defaultFontCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "form-filler", "fonts")
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
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
	cfg.ResolvePaths()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("maxbody", cfg.MaxBodySize)
	viper.SetDefault("shutdown-timeout", cfg.ShutdownTimeout)
	viper.SetDefault("assets", cfg.AssetDir)
	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("font", cfg.FontPath)
	viper.SetDefault("font-name", cfg.FontName)
	viper.SetDefault("font-cache", cfg.FontCacheDir)
	viper.SetDefault("mapping", cfg.MappingPath)
	viper.SetDefault("rules", cfg.RulesPath)
	viper.SetDefault("filename", cfg.Filename)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for HTTP, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.Int64("maxbody", cfg.MaxBodySize, "Maximum request body size in bytes")
	pflag.Duration("shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	pflag.String("assets", cfg.AssetDir, "Directory holding the template, font and mapping")
	pflag.String("template", cfg.TemplatePath, "Template PDF (default <assets>/"+DefaultTemplateFile+")")
	pflag.String("font", cfg.FontPath, "TrueType font for form values (default <assets>/"+DefaultFontFile+")")
	pflag.String("font-name", cfg.FontName, "Registered font name, when the font file was installed before")
	pflag.String("font-cache", cfg.FontCacheDir, "Directory for installed font metrics")
	pflag.String("mapping", cfg.MappingPath, "Field mapping JSON (default <assets>/"+DefaultMappingFile+")")
	pflag.String("rules", cfg.RulesPath, "Optional YAML file overriding aliases and plans")
	pflag.String("filename", cfg.Filename, "Filename of generated documents")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "maxbody", "shutdown-timeout",
		"assets", "template", "font", "font-name", "font-cache", "mapping", "rules",
		"filename", "loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nForm Filler - fills the subscription form template from submitted fields\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# HTTP server, ./assets (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --assets=/srv/form                      "+
			"# HTTP server with custom assets\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --assets=/srv/form         # MCP over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081              # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE        Run mode\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HOST        Server host\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PORT        Server port\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_ASSETS      Asset directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_TEMPLATE    Template PDF\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_FONT        TrueType font\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAPPING     Field mapping\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_RULES       Rules override\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOGLEVEL    Log level\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.MaxBodySize = viper.GetInt64("maxbody")
	cfg.ShutdownTimeout = viper.GetDuration("shutdown-timeout")
	cfg.AssetDir = viper.GetString("assets")
	cfg.TemplatePath = viper.GetString("template")
	cfg.FontPath = viper.GetString("font")
	cfg.FontName = viper.GetString("font-name")
	cfg.FontCacheDir = viper.GetString("font-cache")
	cfg.MappingPath = viper.GetString("mapping")
	cfg.RulesPath = viper.GetString("rules")
	cfg.Filename = viper.GetString("filename")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// ResolvePaths fills unset asset paths from AssetDir and makes every path
// absolute.
func (c *Config) ResolvePaths() {
	if c.TemplatePath == "" {
		c.TemplatePath = filepath.Join(c.AssetDir, DefaultTemplateFile)
	}
	if c.FontPath == "" {
		c.FontPath = filepath.Join(c.AssetDir, DefaultFontFile)
	}
	if c.MappingPath == "" {
		c.MappingPath = filepath.Join(c.AssetDir, DefaultMappingFile)
	}

	for _, p := range []*string{&c.AssetDir, &c.TemplatePath, &c.FontPath, &c.MappingPath, &c.RulesPath, &c.FontCacheDir} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}

// Validate checks if the configuration is valid. Asset files are not
// required to exist; a missing asset fails the request that needs it.
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplatePath == "" {
		return errors.New("template path cannot be empty")
	}
	if c.MappingPath == "" {
		return errors.New("mapping path cannot be empty")
	}
	if c.FontCacheDir == "" {
		return errors.New("font cache directory cannot be empty")
	}

	// Validate sizes
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MaxBodySize <= 0 {
		return errors.New("maximum body size must be positive")
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout cannot be negative")
	}

	if strings.ContainsAny(c.Filename, "\"\r\n/\\") || strings.TrimSpace(c.Filename) == "" {
		return fmt.Errorf("invalid filename: %q", c.Filename)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Template: %s, Font: %s, Mapping: %s, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.TemplatePath, c.FontPath, c.MappingPath, c.LogLevel)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
