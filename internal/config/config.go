package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir    string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig contains the data-cleaning pipeline configuration.
// The alias table, canonical partner set and missing-token list are plain
// data here so that partner onboarding never touches pipeline code.
type PipelineConfig struct {
	// SourceFile is the campaign log CSV served by the HTTP API.
	SourceFile string `yaml:"source_file" envconfig:"SOURCE_FILE"`

	// MissingTokens are the literal cell values treated as missing before
	// type coercion. Matching is exact and case-sensitive.
	MissingTokens []string `yaml:"missing_tokens" envconfig:"MISSING_TOKENS"`

	// PartnerAliases maps known misspellings to canonical partner ids.
	// Keys must already be in normalized form (lowercase alphanumeric).
	PartnerAliases map[string]string `yaml:"partner_aliases" envconfig:"PARTNER_ALIASES"`

	// CanonicalPartners is the set of recognized partner ids. Normalized
	// values outside this set pass through but are reported as diagnostics.
	CanonicalPartners []string `yaml:"canonical_partners" envconfig:"CANONICAL_PARTNERS"`

	// DateFormats are tried in order when parsing the timestamp column.
	DateFormats []string `yaml:"date_formats" envconfig:"DATE_FORMATS"`
}

// DefaultPartnerAliases is the built-in misspelling correction table.
// Keys are pre-normalized (lowercase alphanumeric only).
func DefaultPartnerAliases() map[string]string {
	return map[string]string{
		"br1ghtblox": "brightblox",
		"funbles":    "funables",
		"k1dzsy":     "kidzsy",
		"m1n1mx":     "minimax",
		"plypyls":    "playpals",
		"plypls":     "playpals",
		"zppytoys":   "zappytoys",
	}
}

// DefaultCanonicalPartners is the built-in recognized partner roster.
func DefaultCanonicalPartners() []string {
	return []string{
		"brightblox", "funables", "kidzsy",
		"minimax", "playpals", "toonjoy", "zappytoys",
	}
}

// DefaultDateFormats are the two accepted timestamp layouts, tried in order.
func DefaultDateFormats() []string {
	return []string{"2006-01-02", "02/01/2006"}
}

// defaultConfig returns the built-in configuration. Defaults live here
// rather than in envconfig tags so the YAML file can override them: tag
// defaults are written back on every Process call and would shadow any
// file value for the same key.
func defaultConfig() Config {
	var cfg Config

	cfg.Server = ServerConfig{
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 30 * time.Second,
	}
	cfg.Security = SecurityConfig{
		AllowedOrigins: []string{"http://localhost:8080"},
		EnableCORS:     true,
		RateLimit:      RateLimitConfig{Enabled: true, RPS: 100, Burst: 50},
	}
	cfg.Logging = LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: "logs/app.log",
	}
	cfg.Paths = PathsConfig{
		DataDir:    "data",
		ReportsDir: "data/reports",
		LogsDir:    "logs",
	}
	cfg.Pipeline.SourceFile = "data/sample_campaign_logs.csv"

	return cfg
}

// Load builds the configuration with precedence defaults < YAML file <
// environment. envconfig only writes fields whose CTRW_* variable is
// actually set, so file values survive it.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("CTRW", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyPipelineDefaults()

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyPipelineDefaults fills the data tables that envconfig defaults
// cannot express (maps and the empty-string token).
func (c *Config) applyPipelineDefaults() {
	if len(c.Pipeline.PartnerAliases) == 0 {
		c.Pipeline.PartnerAliases = DefaultPartnerAliases()
	}
	if len(c.Pipeline.CanonicalPartners) == 0 {
		c.Pipeline.CanonicalPartners = DefaultCanonicalPartners()
	}
	if len(c.Pipeline.DateFormats) == 0 {
		c.Pipeline.DateFormats = DefaultDateFormats()
	}
	if len(c.Pipeline.MissingTokens) == 0 {
		c.Pipeline.MissingTokens = []string{"", "NULL", "null", "N/A", "NA"}
	}
}

// resolvePaths sets up the executable directory
func (c *Config) resolvePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	c.Paths.ExecutableDir = paths.ExecutableDir
	return nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	if filepath.IsAbs(c.Paths.DataDir) {
		return c.Paths.DataDir
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir)
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	if filepath.IsAbs(c.Paths.ReportsDir) {
		return c.Paths.ReportsDir
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Paths.ReportsDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	if filepath.IsAbs(c.Paths.LogsDir) {
		return c.Paths.LogsDir
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Paths.LogsDir)
}

// GetSourceFile returns the resolved campaign log CSV path
func (c *Config) GetSourceFile() string {
	if filepath.IsAbs(c.Pipeline.SourceFile) {
		return c.Pipeline.SourceFile
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Pipeline.SourceFile)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Pipeline.SourceFile == "" {
		return fmt.Errorf("pipeline source file must be set")
	}

	if len(c.Pipeline.CanonicalPartners) == 0 {
		return fmt.Errorf("canonical partner set must not be empty")
	}

	if len(c.Pipeline.DateFormats) == 0 {
		return fmt.Errorf("at least one date format must be configured")
	}

	// Alias values must resolve inside the canonical set, otherwise alias
	// substitution would manufacture unrecognized ids.
	canonical := make(map[string]bool, len(c.Pipeline.CanonicalPartners))
	for _, p := range c.Pipeline.CanonicalPartners {
		canonical[p] = true
	}
	for alias, target := range c.Pipeline.PartnerAliases {
		if !canonical[target] {
			return fmt.Errorf("alias %q maps to unknown partner %q", alias, target)
		}
	}

	// Always use JSON format
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path of the optional YAML config file,
// resolved relative to the executable directory.
func getConfigFilePath() string {
	if path := os.Getenv("CTRW_CONFIG_FILE"); path != "" {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}
