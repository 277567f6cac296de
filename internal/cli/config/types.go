// Package config loads pipedash configuration from defaults, pipedash.yaml,
// PIPEDASH_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
)

// ServerConfig holds configuration for the dashboard server.
type ServerConfig struct {
	Addr  string `koanf:"addr" yaml:"addr"`
	Port  int    `koanf:"port" yaml:"port"`
	Watch bool   `koanf:"watch" yaml:"watch"`
	Title string `koanf:"title" yaml:"title"`
}

// Config holds all CLI configuration options.
type Config struct {
	// APIURL is the backend the loader fetches from. Empty means the local
	// server on Server.Port.
	APIURL       string        `koanf:"api_url" yaml:"api_url"`
	StatePath    string        `koanf:"state_path" yaml:"state_path"`
	Verbose      bool          `koanf:"verbose" yaml:"verbose"`
	OutputFormat string        `koanf:"output" yaml:"output"`
	HTTPTimeout  time.Duration `koanf:"http_timeout" yaml:"http_timeout"`
	Server       ServerConfig  `koanf:"server" yaml:"server"`
}

// Default configuration values.
const (
	DefaultConfigFile = "pipedash.yaml"
	DefaultStateFile  = ".pipedash/state.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultAddr       = "127.0.0.1"
	DefaultPort       = 8765
	DefaultTitle      = "Pipeline dashboard"
)

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		Server: ServerConfig{
			Addr:  DefaultAddr,
			Port:  DefaultPort,
			Watch: true,
			Title: DefaultTitle,
		},
	}
}

// ResolvedAPIURL returns APIURL, or the local server's address when unset.
func (c *Config) ResolvedAPIURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return dashboard.LocalBaseURL(c.Server.Addr, c.Server.Port)
}
