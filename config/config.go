package config

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// Config represents the complete CrabScript configuration
type Config struct {
	BaseDir  string         `yaml:"-"` // Directory containing config file, for resolving relative paths
	Path     string         `yaml:"-"` // Absolute path of the loaded file, empty when defaults are used
	Security SecurityConfig `yaml:"security"`
	REPL     REPLConfig     `yaml:"repl"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SecurityConfig holds the filesystem policy applied to cat, fwrite and friends
type SecurityConfig struct {
	NoRead        bool     `yaml:"no_read"`        // Deny all file reads
	RestrictRead  []string `yaml:"restrict_read"`  // Directories scripts may not read
	NoWrite       bool     `yaml:"no_write"`       // Deny all file writes
	RestrictWrite []string `yaml:"restrict_write"` // Directories scripts may not write
	AllowShell    bool     `yaml:"allow_shell"`    // Reserved; there is no shell native
	MaxReadSize   string   `yaml:"max_read_size"`  // Largest file cat reads, e.g. "10MB" (empty: no limit)
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Where line history is kept (default: temp dir)
	Prompt      string `yaml:"prompt"`       // Main prompt (default: ">> ")
}

// WatchConfig holds settings for --watch
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before a changed script is rerun
}

// LoggingConfig holds where diagnostics and script output go
type LoggingConfig struct {
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Security: SecurityConfig{
			MaxReadSize: "",
		},
		REPL: REPLConfig{
			Prompt: ">> ",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Output: "stdout",
		},
	}
}

// MaxReadBytes parses MaxReadSize. Zero means no limit.
func (s SecurityConfig) MaxReadBytes() (int64, error) {
	if s.MaxReadSize == "" {
		return 0, nil
	}
	n, err := units.FromHumanSize(s.MaxReadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid security.max_read_size %q: %w", s.MaxReadSize, err)
	}
	return n, nil
}
