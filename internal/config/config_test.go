package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "gemini" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "gemini")
	}
	if cfg.Model != "gemini-2.5-flash-lite" {
		t.Errorf("Default model = %q, want %q", cfg.Model, "gemini-2.5-flash-lite")
	}
	if cfg.Mode != "general" {
		t.Errorf("Default mode = %q, want %q", cfg.Mode, "general")
	}
	if cfg.UnknownErrors != "skip" {
		t.Errorf("Default unknownErrors = %q, want %q", cfg.UnknownErrors, "skip")
	}
	if cfg.Retries != 0 {
		t.Errorf("Default retries = %d, want 0", cfg.Retries)
	}
	if cfg.MaxFileBytes != 500000 {
		t.Errorf("Default maxFileBytes = %d, want 500000", cfg.MaxFileBytes)
	}
	if !cfg.Cache.Enabled {
		t.Error("Default cache should be enabled")
	}
	if !cfg.Privacy.RedactLogs {
		t.Error("Default redactLogs should be true")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("REWORK_PROVIDER", "openai")
	t.Setenv("REWORK_MODEL", "gpt-4.1-mini")
	t.Setenv("REWORK_MODE", "security")
	t.Setenv("REWORK_FORMAT", "json")
	t.Setenv("REWORK_MAX_FILE_BYTES", "1000")
	t.Setenv("REWORK_RETRIES", "2")
	t.Setenv("REWORK_UNKNOWN_ERRORS", "abort")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gpt-4.1-mini" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4.1-mini")
	}
	if cfg.Mode != "security" {
		t.Errorf("Mode = %q, want %q", cfg.Mode, "security")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.MaxFileBytes != 1000 {
		t.Errorf("MaxFileBytes = %d, want 1000", cfg.MaxFileBytes)
	}
	if cfg.Retries != 2 {
		t.Errorf("Retries = %d, want 2", cfg.Retries)
	}
	if cfg.UnknownErrors != "abort" {
		t.Errorf("UnknownErrors = %q, want %q", cfg.UnknownErrors, "abort")
	}
}

func TestMergeEnv_InvalidInt(t *testing.T) {
	t.Setenv("REWORK_RETRIES", "lots")
	cfg := Default()
	if err := mergeEnv(&cfg); err == nil {
		t.Error("Expected error for non-integer REWORK_RETRIES")
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	err := mergeOverrides(&cfg, map[string]string{
		"provider":     "anthropic",
		"model":        "claude-sonnet-4-20250514",
		"mode":         "bugfix",
		"maxFileBytes": "2048",
		"exclude":      "**/*.min.js, testdata/**",
		"rulesFile":    "",
	})
	if err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Mode != "bugfix" {
		t.Errorf("Mode = %q, want %q", cfg.Mode, "bugfix")
	}
	if cfg.MaxFileBytes != 2048 {
		t.Errorf("MaxFileBytes = %d, want 2048", cfg.MaxFileBytes)
	}
	want := []string{"**/*.min.js", "testdata/**"}
	if !reflect.DeepEqual(cfg.Exclude, want) {
		t.Errorf("Exclude = %v, want %v", cfg.Exclude, want)
	}
	if cfg.RulesFile != "" {
		t.Errorf("Empty override should not set RulesFile, got %q", cfg.RulesFile)
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("nil overrides should not change config")
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key, value string
	}{
		{"provider", "ollama"},
		{"temperature", "0.3"},
		{"timeoutSeconds", "90"},
		{"cache.enabled", "false"},
		{"cache.ttlSeconds", "60"},
		{"privacy.redactLogs", "false"},
		{"privacy.withholdPaths", "**/.env,**/*secret*"},
		{"logFile", "/tmp/rework.log"},
	}
	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Fatalf("SetField(%s) error: %v", tt.key, err)
		}
	}
	if cfg.Provider != "ollama" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Temperature)
	}
	if cfg.TimeoutSeconds != 90 {
		t.Errorf("TimeoutSeconds = %d, want 90", cfg.TimeoutSeconds)
	}
	if cfg.Cache.Enabled {
		t.Error("cache.enabled should be false")
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("TTLSeconds = %d, want 60", cfg.Cache.TTLSeconds)
	}
	if cfg.Privacy.RedactLogs {
		t.Error("privacy.redactLogs should be false")
	}
	if len(cfg.Privacy.WithholdPaths) != 2 {
		t.Errorf("WithholdPaths = %v", cfg.Privacy.WithholdPaths)
	}
	if cfg.LogFile != "/tmp/rework.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
}

func TestSetField_AllKeysKnown(t *testing.T) {
	values := map[string]string{
		"maxFileBytes": "1", "maxTokens": "1", "temperature": "1",
		"timeoutSeconds": "1", "retries": "1", "cache.enabled": "true",
		"cache.ttlSeconds": "1", "privacy.redactLogs": "true",
	}
	for _, key := range Keys {
		cfg := Default()
		v, ok := values[key]
		if !ok {
			v = "x"
		}
		if err := SetField(&cfg, key, v); err != nil {
			t.Errorf("SetField(%q) error: %v", key, err)
		}
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "failOn", "high"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidValues(t *testing.T) {
	cfg := Default()
	for _, kv := range [][2]string{
		{"maxFileBytes", "big"},
		{"temperature", "warm"},
		{"cache.enabled", "sometimes"},
	} {
		if err := SetField(&cfg, kv[0], kv[1]); err == nil {
			t.Errorf("Expected error for %s=%s", kv[0], kv[1])
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.MaxFileBytes = -1 },
		func(c *Config) { c.Retries = -1 },
		func(c *Config) { c.Temperature = 3 },
		func(c *Config) { c.TimeoutSeconds = -5 },
	}
	for i, mutate := range bad {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "rework") {
		t.Errorf("ConfigDir = %q", dir)
	}
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != filepath.Join("/tmp/xdg-test", "rework", "config.json") {
		t.Errorf("ConfigPath = %q", path)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "openai"
	cfg.Model = "gpt-4.1-mini"
	cfg.Cache.Enabled = false

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", loaded.Provider, "openai")
	}
	if loaded.Cache.Enabled {
		t.Error("Explicit cache.enabled=false in file should be honored")
	}
	if loaded.MaxFileBytes != 500000 {
		t.Errorf("MaxFileBytes = %d, want default", loaded.MaxFileBytes)
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("Missing default file should yield defaults")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Missing explicit file should be an error")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rework.yaml")
	data := "provider: anthropic\nmode: performance\nretries: 1\ncache:\n  enabled: false\n  ttlSeconds: 30\nexclude:\n  - \"**/*.pb.go\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Mode != "performance" || cfg.Retries != 1 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTLSeconds != 30 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "**/*.pb.go" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Model != "gemini-2.5-flash-lite" {
		t.Errorf("Model should keep default, got %q", cfg.Model)
	}
}

func TestSaveTo_YAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yml")
	cfg := Default()
	cfg.UnknownErrors = "abort"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.UnknownErrors != "abort" {
		t.Errorf("UnknownErrors = %q", loaded.UnknownErrors)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.Provider = "anthropic"
	cfg.Model = "from-file"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REWORK_MODEL", "from-env")

	got, err := Load("", map[string]string{"provider": "openai"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Provider != "openai" {
		t.Errorf("Provider = %q, want override", got.Provider)
	}
	if got.Model != "from-env" {
		t.Errorf("Model = %q, want env value", got.Model)
	}
}

func TestLoad_InvalidOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load("", map[string]string{"maxFileBytes": "-3"}); err == nil {
		t.Error("Expected validation error")
	}
}
