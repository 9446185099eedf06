package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadWithFile tests loading with various env and file combinations
func TestLoadWithFile(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, int64(32<<20), cfg.Report.MaxUploadBytes)
				assert.Equal(t, 64, cfg.Report.MaxSessions)
				assert.Equal(t, "rapport_EPL.xlsx", cfg.Report.WorkbookName)
				assert.Equal(t, "bulletins_etudiants.csv", cfg.Report.BulletinsName)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"EPL_SERVER_PORT":         "9090",
				"EPL_LOGGING_LEVEL":       "debug",
				"EPL_REPORT_MAX_SESSIONS": "8",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 8, cfg.Report.MaxSessions)
			},
		},
		{
			name: "file values apply when env is unset",
			file: `
server:
  port: 7070
logging:
  output: both
  file_path: /var/log/epl.log
report:
  workbook_name: export.xlsx
  max_sessions: 4
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "/var/log/epl.log", cfg.Logging.FilePath)
				assert.Equal(t, "export.xlsx", cfg.Report.WorkbookName)
				assert.Equal(t, 4, cfg.Report.MaxSessions)
				assert.Equal(t, "bulletins_etudiants.csv", cfg.Report.BulletinsName)
			},
		},
		{
			name: "env takes precedence over file",
			env:  map[string]string{"EPL_SERVER_PORT": "6060"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port from env",
			env:     map[string]string{"EPL_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid logging output",
			env:     map[string]string{"EPL_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadWithFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 5050\n")
	t.Setenv("EPL_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5050, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "read timeout"},
		{"no origins with CORS", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"no origins without CORS", func(c *Config) {
			c.Security.AllowedOrigins = nil
			c.Security.EnableCORS = false
		}, ""},
		{"zero upload limit", func(c *Config) { c.Report.MaxUploadBytes = 0 }, "max upload"},
		{"zero sessions", func(c *Config) { c.Report.MaxSessions = 0 }, "max sessions"},
		{"empty workbook name", func(c *Config) { c.Report.WorkbookName = "" }, "file names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ForcesJSONFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestMergeConfigs(t *testing.T) {
	env := *Default()
	file := Config{
		Server:   ServerConfig{Port: 9000, IdleTimeout: 2 * time.Minute},
		Security: SecurityConfig{AllowedOrigins: []string{"https://epl.example"}},
		Paths:    PathsConfig{BaseDir: "/srv/epl"},
		Report:   ReportConfig{MaxUploadBytes: 1024},
	}

	merged := mergeConfigs(file, env)
	assert.Equal(t, 9000, merged.Server.Port)
	assert.Equal(t, 2*time.Minute, merged.Server.IdleTimeout)
	assert.Equal(t, 15*time.Second, merged.Server.ReadTimeout, "zero file values keep env defaults")
	assert.Equal(t, []string{"https://epl.example"}, merged.Security.AllowedOrigins)
	assert.Equal(t, "/srv/epl", merged.Paths.BaseDir)
	assert.Equal(t, int64(1024), merged.Report.MaxUploadBytes)
	assert.Equal(t, "rapport_EPL.xlsx", merged.Report.WorkbookName)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, DefaultWorkbookName, cfg.Report.WorkbookName)
	assert.Equal(t, DefaultMaxSessions, cfg.Report.MaxSessions)
	assert.Equal(t, 50, cfg.Security.RateLimit.Burst)
}
