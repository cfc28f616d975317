package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable consulted when refine.api_key is empty.
const APIKeyEnv = "GEMINI_API_KEY"

// styleTokens mirrors the refine package's style set. It is duplicated here
// so config stays free of domain imports.
var styleTokens = []string{"professional", "simple", "formal", "friendly", "client-ready"}

// Config holds all application configuration.
type Config struct {
	Hotkey   HotkeyConfig `yaml:"hotkey"`
	Audio    AudioConfig  `yaml:"audio"`
	Refine   RefineConfig `yaml:"refine"`
	Output   OutputConfig `yaml:"output"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Keys    []string `yaml:"keys"`
	Mode    string   `yaml:"mode"` // "hold" or "toggle"
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
	// MinDuration is the shortest recording in seconds that is still sent
	// for refinement. Zero disables the check.
	MinDuration float64 `yaml:"min_duration"`
}

// RefineConfig holds settings for the remote refinement model.
type RefineConfig struct {
	Backend  string            `yaml:"backend"` // "gemini"
	Endpoint string            `yaml:"endpoint"`
	Model    string            `yaml:"model"`
	APIKey   string            `yaml:"api_key"`
	Style    string            `yaml:"style"`   // initial style
	Prompts  map[string]string `yaml:"prompts"` // per-style instruction overrides
}

// OutputConfig controls what happens with a refined result.
type OutputConfig struct {
	Clipboard   bool   `yaml:"clipboard"`
	Inject      string `yaml:"inject"` // "none", "type" or "paste"
	DownloadDir string `yaml:"download_dir"`
	Email       bool   `yaml:"email"`
	Notify      bool   `yaml:"notify"`
	Meter       bool   `yaml:"meter"`
}

// ServerConfig holds settings for the HTTP refine endpoint.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxUploadMiB int    `yaml:"max_upload_mib"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gostt-refine")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Enabled: true,
			Keys:    []string{"ctrl", "shift", "r"},
			Mode:    "toggle",
		},
		Audio: AudioConfig{
			SampleRate:  16000,
			Channels:    1,
			MinDuration: 0,
		},
		Refine: RefineConfig{
			Backend:  "gemini",
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-3-flash-preview",
			Style:    "professional",
		},
		Output: OutputConfig{
			Clipboard: true,
			Inject:    "none",
			Notify:    true,
			Meter:     true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxUploadMiB: 25,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in output.download_dir is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Output.DownloadDir = expandTilde(cfg.Output.DownloadDir)

	return cfg, nil
}

// ResolveAPIKey fills Refine.APIKey from the environment when the config
// leaves it empty. A .env file in the working directory is loaded first;
// variables already set in the process win over it. The key is read once
// here and never validated: a missing key surfaces as a remote failure.
func (c *Config) ResolveAPIKey() {
	_ = godotenv.Load()
	if c.Refine.APIKey == "" {
		c.Refine.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Hotkey.Enabled && len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}

	if c.Audio.MinDuration < 0 {
		return fmt.Errorf("audio.min_duration must be >= 0")
	}

	switch c.Refine.Backend {
	case "gemini":
	default:
		return fmt.Errorf("refine.backend must be \"gemini\", got %q", c.Refine.Backend)
	}

	if c.Refine.Endpoint == "" {
		return fmt.Errorf("refine.endpoint must not be empty")
	}

	if c.Refine.Model == "" {
		return fmt.Errorf("refine.model must not be empty")
	}

	if !isStyleToken(c.Refine.Style) {
		return fmt.Errorf("refine.style must be one of %s, got %q", strings.Join(styleTokens, ", "), c.Refine.Style)
	}

	for style, prompt := range c.Refine.Prompts {
		if !isStyleToken(style) {
			return fmt.Errorf("refine.prompts: unknown style %q", style)
		}
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("refine.prompts.%s must not be empty", style)
		}
	}

	switch c.Output.Inject {
	case "none", "type", "paste":
	default:
		return fmt.Errorf("output.inject must be \"none\", \"type\" or \"paste\", got %q", c.Output.Inject)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Server.MaxUploadMiB <= 0 {
		return fmt.Errorf("server.max_upload_mib must be > 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level string to a slog.Level. Unknown values map to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteDefault writes the default config to DefaultConfigPath if no file
// exists there yet. It returns the written path, or "" when a config
// file was already present.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	header := "# gostt-refine configuration\n" +
		"# The Gemini API key is read from refine.api_key or the " + APIKeyEnv + " environment variable.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

func isStyleToken(s string) bool {
	for _, t := range styleTokens {
		if s == t {
			return true
		}
	}
	return false
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
