package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	envVars := []string{
		"CTRW_SERVER_PORT", "CTRW_SERVER_READ_TIMEOUT",
		"CTRW_LOGGING_LEVEL", "CTRW_LOGGING_OUTPUT",
		"CTRW_PIPELINE_SOURCE_FILE", "CTRW_CONFIG_FILE",
	}

	// Save original values and restore after the test
	originalEnv := make(map[string]string)
	for _, envVar := range envVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}
	defer func() {
		for _, envVar := range envVars {
			if val := originalEnv[envVar]; val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			setupEnv: func() {
				for _, envVar := range envVars {
					os.Unsetenv(envVar)
				}
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, DefaultPartnerAliases(), cfg.Pipeline.PartnerAliases)
				assert.Equal(t, DefaultCanonicalPartners(), cfg.Pipeline.CanonicalPartners)
				assert.Equal(t, DefaultDateFormats(), cfg.Pipeline.DateFormats)
				assert.Equal(t, []string{"", "NULL", "null", "N/A", "NA"}, cfg.Pipeline.MissingTokens)
			},
		},
		{
			name: "environment variables override defaults",
			setupEnv: func() {
				for _, envVar := range envVars {
					os.Unsetenv(envVar)
				}
				os.Setenv("CTRW_SERVER_PORT", "9999")
				os.Setenv("CTRW_PIPELINE_SOURCE_FILE", "data/other_logs.csv")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9999, cfg.Server.Port)
				assert.Equal(t, "data/other_logs.csv", cfg.Pipeline.SourceFile)
			},
		},
		{
			name: "invalid port rejected",
			setupEnv: func() {
				for _, envVar := range envVars {
					os.Unsetenv(envVar)
				}
				os.Setenv("CTRW_SERVER_PORT", "-1")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()

			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
pipeline:
  source_file: data/custom.csv
  canonical_partners:
    - brightblox
    - funables
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	os.Setenv("CTRW_CONFIG_FILE", configPath)
	defer os.Unsetenv("CTRW_CONFIG_FILE")
	os.Unsetenv("CTRW_SERVER_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "data/custom.csv", cfg.Pipeline.SourceFile)
	assert.Equal(t, []string{"brightblox", "funables"}, cfg.Pipeline.CanonicalPartners)
}

func TestLoadFileValuesNotShadowedByDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  output: console
security:
  allowed_origins:
    - http://dashboard.example.test
pipeline:
  missing_tokens:
    - ""
    - missing
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	os.Setenv("CTRW_CONFIG_FILE", configPath)
	defer os.Unsetenv("CTRW_CONFIG_FILE")
	os.Unsetenv("CTRW_LOGGING_LEVEL")
	os.Unsetenv("CTRW_LOGGING_OUTPUT")
	os.Unsetenv("CTRW_SECURITY_ALLOWED_ORIGINS")
	os.Unsetenv("CTRW_PIPELINE_MISSING_TOKENS")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, []string{"http://dashboard.example.test"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, []string{"", "missing"}, cfg.Pipeline.MissingTokens)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	os.Setenv("CTRW_CONFIG_FILE", configPath)
	os.Setenv("CTRW_SERVER_PORT", "9090")
	defer func() {
		os.Unsetenv("CTRW_CONFIG_FILE")
		os.Unsetenv("CTRW_SERVER_PORT")
	}()
	os.Unsetenv("CTRW_LOGGING_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateAliasTargets(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeout = time.Second
	cfg.Server.WriteTimeout = time.Second
	cfg.Security.AllowedOrigins = []string{"http://localhost:8080"}
	cfg.Pipeline.SourceFile = "data/logs.csv"
	cfg.Pipeline.CanonicalPartners = []string{"brightblox"}
	cfg.Pipeline.DateFormats = DefaultDateFormats()
	cfg.Pipeline.PartnerAliases = map[string]string{"brghtblx": "nosuchpartner"}

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuchpartner")
}

func TestGetSourceFileResolution(t *testing.T) {
	cfg := &Config{}
	cfg.Paths.ExecutableDir = "/opt/ctrwatch"
	cfg.Pipeline.SourceFile = "data/sample_campaign_logs.csv"
	assert.Equal(t, filepath.Join("/opt/ctrwatch", "data/sample_campaign_logs.csv"), cfg.GetSourceFile())

	cfg.Pipeline.SourceFile = "/var/data/logs.csv"
	assert.Equal(t, "/var/data/logs.csv", cfg.GetSourceFile())
}

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)
	assert.NotEmpty(t, paths.ExecutableDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "drops"), paths.DropReportsDir)
}
