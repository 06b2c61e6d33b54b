package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/ipmon/internal/ipmon/common/utils"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "IPMON_"

// AppConfig holds the monitor's configuration.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// DataDir holds one <YYYY-MM-DD>.json snapshot per captured day.
	DataDir string `koanf:"data_dir" validate:"required"`

	// ExportDir receives rule documents and the charts/ metrics exports.
	ExportDir string `koanf:"export_dir" validate:"required"`

	// CacheDir holds the metrics cache and prefix index databases.
	CacheDir string `koanf:"cache_dir" validate:"required"`

	// Window is the number of most recent snapshots aggregated.
	Window int `koanf:"window" validate:"required,gte=1"`

	// UseCache returns the cached metrics series instead of recomputing.
	UseCache bool `koanf:"use_cache"`

	// Sources lists provider documents as name=url.
	Sources []string `koanf:"sources" validate:"required,min=1,dive,source_url"`

	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"required,gt=0"`

	// ListenAddr is the host:port the export server binds to.
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`

	// IndexCacheSize is the prefix index LRU size; 0 disables the cache.
	IndexCacheSize int `koanf:"index_cache_size" validate:"gte=0"`

	// BloomFPRate is the prefix index bloom filter false positive target.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`

	TelegramToken  string `koanf:"telegram_token"`
	TelegramChatID string `koanf:"telegram_chat_id" validate:"required_with=TelegramToken"`
}

// DEFAULT_APP_CONFIG defines the default configuration: the two published
// Google range documents, a 90 day window and local working directories.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:       "prod",
	LogLevel:  "info",
	DataDir:   "data",
	ExportDir: "exports",
	CacheDir:  "cache",
	Window:    90,
	UseCache:  false,
	Sources: []string{
		"cloud=https://www.gstatic.com/ipranges/cloud.json",
		"goog=https://www.gstatic.com/ipranges/goog.json",
	},
	FetchTimeout:   10 * time.Second,
	ListenAddr:     "127.0.0.1:8080",
	IndexCacheSize: 4096,
	BloomFPRate:    0.01,
}

// ParsedSources returns the configured sources. Load has already validated
// each entry, so an error here means duplicate names.
func (c *AppConfig) ParsedSources() ([]utils.Source, error) {
	return utils.ParseSources(c.Sources)
}

// NotifyEnabled reports whether Telegram credentials are configured.
func (c *AppConfig) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// validSourceURL validates a name=url source entry.
func validSourceURL(fl validator.FieldLevel) bool {
	_, err := utils.ParseSource(fl.Field().String())
	return err == nil
}

// splitList turns space or comma separated values into a list so that
// IPMON_SOURCES="cloud=... goog=..." maps onto a slice.
func splitList(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	value = strings.TrimSpace(value)

	if value == "" {
		return key, value
	}

	if strings.Contains(value, " ") || strings.Contains(value, ",") {
		parts := strings.FieldsFunc(value, func(r rune) bool {
			return r == ' ' || r == ','
		})
		return key, parts
	}

	return key, value
}

// envLoader loads IPMON_ prefixed environment variables; swapped in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: splitList,
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads an optional YAML, JSON or TOML config file.
var fileLoader = func(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return k.Load(file.Provider(path), parser)
}

// registerValidation registers the "source_url" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("source_url", validSourceURL)
}

// Load builds the configuration from defaults, then the optional config
// file at path (skipped when empty), then the environment. The result is
// validated before it is returned.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if path != "" {
		if err := fileLoader(k, path); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := cfg.ParsedSources(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
