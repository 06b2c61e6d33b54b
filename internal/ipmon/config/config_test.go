package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
	if cfg.Window != 90 {
		t.Errorf("expected Window=90, got %d", cfg.Window)
	}
	if cfg.UseCache {
		t.Errorf("expected UseCache=false")
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected FetchTimeout=10s, got %v", cfg.FetchTimeout)
	}
	if cfg.NotifyEnabled() {
		t.Errorf("expected notifications disabled by default")
	}
	srcs, err := cfg.ParsedSources()
	if err != nil {
		t.Fatalf("ParsedSources returned error: %v", err)
	}
	if len(srcs) != 2 || srcs[0].Name != "cloud" || srcs[1].Name != "goog" {
		t.Errorf("unexpected default sources: %+v", srcs)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IPMON_ENV", "dev")
	t.Setenv("IPMON_LOG_LEVEL", "debug")
	t.Setenv("IPMON_DATA_DIR", "/tmp/ipmon/data")
	t.Setenv("IPMON_WINDOW", "30")
	t.Setenv("IPMON_USE_CACHE", "true")
	t.Setenv("IPMON_SOURCES", "cloud=https://a.example/cloud.json, goog=https://b.example/goog.json")
	t.Setenv("IPMON_FETCH_TIMEOUT", "3s")
	t.Setenv("IPMON_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("IPMON_BLOOM_FP_RATE", "0.001")
	t.Setenv("IPMON_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("IPMON_TELEGRAM_CHAT_ID", "-100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Env != "dev" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected env/log level: %q %q", cfg.Env, cfg.LogLevel)
	}
	if cfg.DataDir != "/tmp/ipmon/data" {
		t.Errorf("expected DataDir override, got %q", cfg.DataDir)
	}
	if cfg.Window != 30 {
		t.Errorf("expected Window=30, got %d", cfg.Window)
	}
	if !cfg.UseCache {
		t.Errorf("expected UseCache=true")
	}
	wantSources := []string{"cloud=https://a.example/cloud.json", "goog=https://b.example/goog.json"}
	if len(cfg.Sources) != len(wantSources) {
		t.Fatalf("expected %d sources, got %v", len(wantSources), cfg.Sources)
	}
	for i, v := range wantSources {
		if cfg.Sources[i] != v {
			t.Errorf("expected Sources[%d]=%q, got %q", i, v, cfg.Sources[i])
		}
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("expected FetchTimeout=3s, got %v", cfg.FetchTimeout)
	}
	if cfg.ListenAddr != "0.0.0.0:9090" {
		t.Errorf("expected ListenAddr override, got %q", cfg.ListenAddr)
	}
	if cfg.BloomFPRate != 0.001 {
		t.Errorf("expected BloomFPRate=0.001, got %v", cfg.BloomFPRate)
	}
	if !cfg.NotifyEnabled() {
		t.Errorf("expected notifications enabled")
	}
}

func TestLoad_SingleSourceFromEnv(t *testing.T) {
	t.Setenv("IPMON_SOURCES", "cloud=https://a.example/cloud.json")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "cloud=https://a.example/cloud.json" {
		t.Errorf("unexpected sources: %v", cfg.Sources)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ipmon.yaml")
	body := "window: 14\nexport_dir: /srv/exports\nsources:\n  - cloud=https://c.example/cloud.json\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	// environment wins over the file
	t.Setenv("IPMON_WINDOW", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Window != 7 {
		t.Errorf("expected env Window=7 to override file, got %d", cfg.Window)
	}
	if cfg.ExportDir != "/srv/exports" {
		t.Errorf("expected ExportDir from file, got %q", cfg.ExportDir)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "cloud=https://c.example/cloud.json" {
		t.Errorf("expected file sources, got %v", cfg.Sources)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel, got %q", cfg.LogLevel)
	}
}

func TestLoad_ConfigFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipmon.toml")
	if err := os.WriteFile(path, []byte("window = 21\nlog_level = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Window != 21 || cfg.LogLevel != "warn" {
		t.Errorf("unexpected config from toml: window=%d level=%q", cfg.Window, cfg.LogLevel)
	}
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
	ini := filepath.Join(dir, "ipmon.ini")
	if err := os.WriteFile(ini, []byte("window=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(ini); err == nil || !strings.Contains(err.Error(), "unsupported config file type") {
		t.Errorf("expected unsupported type error, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"env", "IPMON_ENV", "staging"},
		{"log level", "IPMON_LOG_LEVEL", "trace"},
		{"zero window", "IPMON_WINDOW", "0"},
		{"negative window", "IPMON_WINDOW", "-3"},
		{"window not a number", "IPMON_WINDOW", "ninety"},
		{"source without name", "IPMON_SOURCES", "https://a.example/cloud.json"},
		{"source bad scheme", "IPMON_SOURCES", "cloud=file:///etc/passwd"},
		{"duplicate source", "IPMON_SOURCES", "cloud=https://a.example/x,cloud=https://b.example/y"},
		{"listen addr", "IPMON_LISTEN_ADDR", "no-port"},
		{"bloom rate", "IPMON_BLOOM_FP_RATE", "1.5"},
		{"cache size", "IPMON_INDEX_CACHE_SIZE", "-1"},
		{"token without chat", "IPMON_TELEGRAM_TOKEN", "123:abc"},
		{"empty data dir", "IPMON_DATA_DIR", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_WhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading defaults")
	}
}

func TestLoad_WhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	envLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading env")
	}
}

func TestLoad_RegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(v *validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "mocked validation error") {
		t.Fatal("expected error when registering validation")
	}
}

func TestValidSourceURL(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"cloud=https://www.gstatic.com/ipranges/cloud.json", true},
		{"goog=http://localhost:8000/goog.json", true},
		{"cloud", false},
		{"cloud=", false},
		{"=https://a.example/", false},
		{"cloud=gopher://a.example/", false},
		{"", false},
	}

	validate := validator.New()
	_ = validate.RegisterValidation("source_url", validSourceURL)

	type S struct {
		Source string `validate:"source_url"`
	}
	for _, tc := range cases {
		err := validate.Struct(S{Source: tc.input})
		if tc.expected && err != nil {
			t.Errorf("validSourceURL(%q) = false, want true", tc.input)
		}
		if !tc.expected && err == nil {
			t.Errorf("validSourceURL(%q) = true, want false", tc.input)
		}
	}
}

func TestSplitList(t *testing.T) {
	key, val := splitList("IPMON_SOURCES", " a=https://x b=https://y ")
	if key != "sources" {
		t.Errorf("expected key sources, got %q", key)
	}
	parts, ok := val.([]string)
	if !ok || len(parts) != 2 || parts[0] != "a=https://x" || parts[1] != "b=https://y" {
		t.Errorf("unexpected split: %#v", val)
	}
	key, val = splitList("IPMON_WINDOW", "30")
	if key != "window" || val != "30" {
		t.Errorf("unexpected scalar: %q %#v", key, val)
	}
}
