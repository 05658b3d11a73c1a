package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Server      ServerConfig      `mapstructure:"server"`
	Update      UpdateConfig      `mapstructure:"update"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// APIConfig holds film API connection details
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DiagnosticsConfig controls request outcome reporting
type DiagnosticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// ServerConfig holds the mock film API settings
type ServerConfig struct {
	Listen         string        `mapstructure:"listen"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	AdminSecret    string        `mapstructure:"admin_secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// UpdateConfig controls self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
