package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds persistent client settings stored at <profileDir>/config.yaml.
type Config struct {
	BackendURL    string        `yaml:"backend_url,omitempty"`
	Token         string        `yaml:"-"`
	Theme         string        `yaml:"theme,omitempty"`
	Agent         string        `yaml:"agent,omitempty"` // empty lets the backend pick
	ModelProvider string        `yaml:"model_provider,omitempty"`
	ModelName     string        `yaml:"model_name,omitempty"`
	Renderer      string        `yaml:"renderer,omitempty"` // "native" or "glamour"
	WordWrap      int           `yaml:"word_wrap,omitempty"`
	Clipboard     string        `yaml:"clipboard,omitempty"` // "auto", "osc52" or "native"
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	Log           LogConfig     `yaml:"log"`
	Export        ExportConfig  `yaml:"export"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"` // relative to the profile dir
}

// ExportConfig is the commit identity used by /export.
type ExportConfig struct {
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

const (
	filename = "config.yaml"

	DefaultBackendURL    = "http://localhost:8001"
	DefaultModelProvider = "gemini"
	DefaultModelName     = "gemini-2.0-flash"
)

// Renderers accepted in Config.Renderer.
const (
	RendererNative  = "native"
	RendererGlamour = "glamour"
)

// Load reads <profileDir>/config.yaml and applies environment overrides.
// If the file is absent or corrupt, defaults are used; the returned error
// reports a corrupt file so the caller can warn about it.
func Load(profileDir string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(filepath.Join(profileDir, filename))
	switch {
	case os.IsNotExist(err):
		cfg.applyEnv()
		return cfg, nil
	case err != nil:
		cfg.applyEnv()
		return cfg, fmt.Errorf("config: read: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cfg = Defaults()
		cfg.applyEnv()
		return cfg, fmt.Errorf("config: parse %s: %w", filename, err)
	}
	cfg.fill()
	cfg.applyEnv()
	return cfg, nil
}

// Save writes cfg to <profileDir>/config.yaml, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BackendURL:    DefaultBackendURL,
		Theme:         "dark",
		ModelProvider: DefaultModelProvider,
		ModelName:     DefaultModelName,
		Renderer:      RendererNative,
		WordWrap:      100,
		Clipboard:     "auto",
		Timeout:       2 * time.Minute,
		Log: LogConfig{
			Level: "info",
			File:  "osa-builder.log",
		},
	}
}

// fill restores defaults for fields a partial file left empty.
func (c *Config) fill() {
	d := Defaults()
	if c.BackendURL == "" {
		c.BackendURL = d.BackendURL
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.ModelProvider == "" {
		c.ModelProvider = d.ModelProvider
	}
	if c.ModelName == "" {
		c.ModelName = d.ModelName
	}
	if c.Renderer != RendererGlamour {
		c.Renderer = RendererNative
	}
	if c.WordWrap <= 0 {
		c.WordWrap = d.WordWrap
	}
	if c.Clipboard == "" {
		c.Clipboard = d.Clipboard
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OSA_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("OSA_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("OSA_MODEL_PROVIDER"); v != "" {
		c.ModelProvider = v
	}
	if v := os.Getenv("OSA_MODEL"); v != "" {
		c.ModelName = v
	}
}

// LogPath resolves Log.File against profileDir.
func (c Config) LogPath(profileDir string) string {
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(profileDir, c.Log.File)
}
