// Package config provides configuration management for the EPL dashboard.
// It loads settings from environment variables and an optional YAML file,
// validates them, and resolves the application directories.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables use the EPL_ prefix followed by the section name:
//
//	EPL_SERVER_PORT=8080
//	EPL_LOGGING_LEVEL=debug
//	EPL_REPORT_MAX_SESSIONS=128
//	EPL_PATHS_BASE_DIR=/srv/epl
//
// EPL_CONFIG names the YAML file. Without it, config.yaml and
// configs/config.yaml are tried in the working directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	paths, err := cfg.ResolvePaths()
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
package config
