package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "EPL"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/epl.log"`
}

// PathsConfig contains file system paths configuration.
// Relative directories are resolved under BaseDir, which defaults to the
// executable directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// ReportConfig contains dataset and export settings
type ReportConfig struct {
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	MaxSessions    int    `yaml:"max_sessions" envconfig:"MAX_SESSIONS" default:"64"`
	WorkbookName   string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME" default:"rapport_EPL.xlsx"`
	BulletinsName  string `yaml:"bulletins_name" envconfig:"BULLETINS_NAME" default:"bulletins_etudiants.csv"`
}

// Load loads configuration from environment variables and the config file
// named by EPL_CONFIG or found in a well-known location
func Load() (*Config, error) {
	file := os.Getenv(EnvPrefix + "_CONFIG")
	if file == "" {
		file = getConfigFilePath()
	}
	return LoadWithFile(file)
}

// LoadWithFile loads configuration from environment variables and an
// optional YAML file. Explicitly set environment variables take precedence.
func LoadWithFile(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fromFile replaces dst with the file value unless the variable was set
// in the environment or the file leaves the field empty
func fromFile[T comparable](key string, dst *T, file T) {
	var zero T
	if file == zero {
		return
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		return
	}
	*dst = file
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	s, fs := &envConfig.Server, fileConfig.Server
	fromFile("SERVER_PORT", &s.Port, fs.Port)
	fromFile("SERVER_READ_TIMEOUT", &s.ReadTimeout, fs.ReadTimeout)
	fromFile("SERVER_WRITE_TIMEOUT", &s.WriteTimeout, fs.WriteTimeout)
	fromFile("SERVER_IDLE_TIMEOUT", &s.IdleTimeout, fs.IdleTimeout)
	fromFile("SERVER_MAX_HEADER_BYTES", &s.MaxHeaderBytes, fs.MaxHeaderBytes)
	fromFile("SERVER_SHUTDOWN_TIMEOUT", &s.ShutdownTimeout, fs.ShutdownTimeout)

	sec, fsec := &envConfig.Security, fileConfig.Security
	if _, ok := os.LookupEnv(EnvPrefix + "_SECURITY_ALLOWED_ORIGINS"); !ok && len(fsec.AllowedOrigins) > 0 {
		sec.AllowedOrigins = fsec.AllowedOrigins
	}
	fromFile("SECURITY_RATE_LIMIT_RPS", &sec.RateLimit.RPS, fsec.RateLimit.RPS)
	fromFile("SECURITY_RATE_LIMIT_BURST", &sec.RateLimit.Burst, fsec.RateLimit.Burst)

	l, fl := &envConfig.Logging, fileConfig.Logging
	fromFile("LOGGING_LEVEL", &l.Level, fl.Level)
	fromFile("LOGGING_FORMAT", &l.Format, fl.Format)
	fromFile("LOGGING_OUTPUT", &l.Output, fl.Output)
	fromFile("LOGGING_FILE_PATH", &l.FilePath, fl.FilePath)

	p, fp := &envConfig.Paths, fileConfig.Paths
	fromFile("PATHS_BASE_DIR", &p.BaseDir, fp.BaseDir)
	fromFile("PATHS_DATA_DIR", &p.DataDir, fp.DataDir)
	fromFile("PATHS_REPORTS_DIR", &p.ReportsDir, fp.ReportsDir)
	fromFile("PATHS_LOGS_DIR", &p.LogsDir, fp.LogsDir)

	ws, fws := &envConfig.WebSocket, fileConfig.WebSocket
	fromFile("WEBSOCKET_READ_BUFFER_SIZE", &ws.ReadBufferSize, fws.ReadBufferSize)
	fromFile("WEBSOCKET_WRITE_BUFFER_SIZE", &ws.WriteBufferSize, fws.WriteBufferSize)
	fromFile("WEBSOCKET_PING_PERIOD", &ws.PingPeriod, fws.PingPeriod)
	fromFile("WEBSOCKET_PONG_WAIT", &ws.PongWait, fws.PongWait)

	r, fr := &envConfig.Report, fileConfig.Report
	fromFile("REPORT_MAX_UPLOAD_BYTES", &r.MaxUploadBytes, fr.MaxUploadBytes)
	fromFile("REPORT_MAX_SESSIONS", &r.MaxSessions, fr.MaxSessions)
	fromFile("REPORT_WORKBOOK_NAME", &r.WorkbookName, fr.WorkbookName)
	fromFile("REPORT_BULLETINS_NAME", &r.BulletinsName, fr.BulletinsName)

	return envConfig
}

// ResolvePaths resolves the configured directories
func (c *Config) ResolvePaths() (*Paths, error) {
	return NewPaths(c.Paths)
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

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Report.MaxUploadBytes <= 0 {
		return fmt.Errorf("report max upload bytes must be positive")
	}

	if c.Report.MaxSessions <= 0 {
		return fmt.Errorf("report max sessions must be positive")
	}

	if c.Report.WorkbookName == "" || c.Report.BulletinsName == "" {
		return fmt.Errorf("report file names must not be empty")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/epl.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Report: ReportConfig{
			MaxUploadBytes: DefaultMaxUploadBytes,
			MaxSessions:    DefaultMaxSessions,
			WorkbookName:   DefaultWorkbookName,
			BulletinsName:  DefaultBulletinsName,
		},
	}
}
