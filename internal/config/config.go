package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the rework configuration.
type Config struct {
	Provider       string        `json:"provider" yaml:"provider"`
	Model          string        `json:"model" yaml:"model"`
	Mode           string        `json:"mode" yaml:"mode"`
	Format         string        `json:"format" yaml:"format"`
	MaxFileBytes   int           `json:"maxFileBytes" yaml:"maxFileBytes"`
	MaxTokens      int           `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	Temperature    float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TimeoutSeconds int           `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	Retries        int           `json:"retries" yaml:"retries"`
	UnknownErrors  string        `json:"unknownErrors" yaml:"unknownErrors"`
	Exclude        []string      `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	RulesFile      string        `json:"rulesFile,omitempty" yaml:"rulesFile,omitempty"`
	LogFile        string        `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	Cache          CacheConfig   `json:"cache" yaml:"cache"`
	Privacy        PrivacyConfig `json:"privacy" yaml:"privacy"`
}

// CacheConfig controls caching of provider responses.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// PrivacyConfig controls what is logged and what is sent to the provider.
type PrivacyConfig struct {
	// RedactLogs masks secrets in provider bodies before they are logged.
	RedactLogs bool `json:"redactLogs" yaml:"redactLogs"`
	// WithholdPaths lists globs of files that are never sent to the provider.
	WithholdPaths []string `json:"withholdPaths,omitempty" yaml:"withholdPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:      "gemini",
		Model:         "gemini-2.5-flash-lite",
		Mode:          "general",
		Format:        "text",
		MaxFileBytes:  500000,
		UnknownErrors: "skip",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactLogs: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for rework.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rework"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "rework"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "rework"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "rework"), nil
	default:
		return filepath.Join(home, ".config", "rework"), nil
	}
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// decodeFile reads path into cfg. Fields absent from the file keep their
// current values, so explicit false and zero values in the file win.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadFile loads the config stored at path on top of the defaults. An empty
// path means the default location, which is allowed to be missing.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if err := decodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the default config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the config to path, as YAML when the extension says so.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(path string, overrides map[string]string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// envKeys maps environment variables onto config keys understood by SetField.
var envKeys = []struct{ env, key string }{
	{"REWORK_PROVIDER", "provider"},
	{"REWORK_MODEL", "model"},
	{"REWORK_MODE", "mode"},
	{"REWORK_FORMAT", "format"},
	{"REWORK_MAX_FILE_BYTES", "maxFileBytes"},
	{"REWORK_MAX_TOKENS", "maxTokens"},
	{"REWORK_TIMEOUT_SECONDS", "timeoutSeconds"},
	{"REWORK_RETRIES", "retries"},
	{"REWORK_UNKNOWN_ERRORS", "unknownErrors"},
	{"REWORK_LOG_FILE", "logFile"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks numeric ranges. Names such as provider and mode are
// validated by the packages that interpret them.
func (c Config) Validate() error {
	switch {
	case c.MaxFileBytes < 0:
		return fmt.Errorf("maxFileBytes must not be negative")
	case c.MaxTokens < 0:
		return fmt.Errorf("maxTokens must not be negative")
	case c.Retries < 0:
		return fmt.Errorf("retries must not be negative")
	case c.TimeoutSeconds < 0:
		return fmt.Errorf("timeoutSeconds must not be negative")
	case c.Temperature < 0 || c.Temperature > 2:
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

// Keys lists the keys accepted by SetField.
var Keys = []string{
	"provider", "model", "mode", "format", "maxFileBytes", "maxTokens",
	"temperature", "timeoutSeconds", "retries", "unknownErrors", "exclude",
	"rulesFile", "logFile", "cache.enabled", "cache.dir", "cache.ttlSeconds",
	"privacy.redactLogs", "privacy.withholdPaths",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List values are comma-separated.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "mode":
		cfg.Mode = value
	case "format":
		cfg.Format = value
	case "maxFileBytes":
		return setInt(&cfg.MaxFileBytes, key, value)
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "timeoutSeconds":
		return setInt(&cfg.TimeoutSeconds, key, value)
	case "retries":
		return setInt(&cfg.Retries, key, value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "unknownErrors":
		cfg.UnknownErrors = value
	case "exclude":
		cfg.Exclude = splitList(value)
	case "rulesFile":
		cfg.RulesFile = value
	case "logFile":
		cfg.LogFile = value
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactLogs":
		return setBool(&cfg.Privacy.RedactLogs, key, value)
	case "privacy.withholdPaths":
		cfg.Privacy.WithholdPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
