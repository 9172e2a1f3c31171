package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output controls where and how transcripts are written.
type Output struct {
	Directory  string `toml:"directory"`
	Format     string `toml:"format"`
	Timestamps bool   `toml:"timestamps"`
}

// Selection holds caption track preferences.
type Selection struct {
	Languages []string `toml:"languages"`
}

// Network holds transport settings.
type Network struct {
	Proxy                 string `toml:"proxy"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	MaxRetries            int    `toml:"max_retries"`
}

// Clients tunes Innertube client selection.
type Clients struct {
	Order           []string `toml:"order"`
	Skip            []string `toml:"skip"`
	DisableFallback bool     `toml:"disable_fallback"`
}

// Logging holds logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Output    Output    `toml:"output"`
	Selection Selection `toml:"selection"`
	Network   Network   `toml:"network"`
	Clients   Clients   `toml:"clients"`
	Logging   Logging   `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: Output{
			Directory:  "transcripts",
			Format:     "text",
			Timestamps: true,
		},
		Selection: Selection{
			Languages: []string{"en"},
		},
		Network: Network{
			RequestTimeoutSeconds: 30,
			MaxRetries:            3,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/youtube-transcriptor/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; the defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Output.Directory == "" {
		c.Output.Directory = "transcripts"
	}
	if c.Network.RequestTimeoutSeconds == 0 {
		c.Network.RequestTimeoutSeconds = 30
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 3
	}
	if len(c.Selection.Languages) == 0 {
		c.Selection.Languages = []string{"en"}
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "srt", "vtt":
	default:
		return fmt.Errorf("output.format: unsupported value %q (want text, srt, or vtt)", c.Output.Format)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Network.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("network.request_timeout_seconds: must not be negative")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("network.max_retries: must not be negative")
	}
	return nil
}

// CreateSample writes a commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
