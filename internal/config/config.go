// Package config loads the application configuration from an optional YAML (or JSON) file
// and QUILL_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. QUILL_SERVER_PORT.
const EnvPrefix = "QUILL_"

// Engine variants.
const (
	EngineLua  = "lua"
	EngineFake = "fake"
)

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
	Templates   TemplatesConfig `mapstructure:"templates" yaml:"templates" json:"templates"`
	Engine      string          `mapstructure:"engine" yaml:"engine" json:"engine"`
	Render      RenderConfig    `mapstructure:"render" yaml:"render" json:"render"`
	DB          DBConfig        `mapstructure:"db" yaml:"db" json:"db"`
	Redis       RedisConfig     `mapstructure:"redis" yaml:"redis" json:"redis"`
	UseTestPool bool            `mapstructure:"use_test_pool" yaml:"use_test_pool" json:"use_test_pool"`
	Log         LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" yaml:"port" json:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
}

// TemplatesConfig selects the template source. Dev reads Dir on every request.
type TemplatesConfig struct {
	Dev bool   `mapstructure:"dev" yaml:"dev" json:"dev"`
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

type RenderConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DBConfig points at the SQLite database; ":memory:" keeps it in process.
type DBConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// RedisConfig configures the key-value store. An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
	DB       int    `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 3 * time.Second,
		},
		Templates: TemplatesConfig{
			Dir: "templates",
		},
		Engine: EngineLua,
		Render: RenderConfig{
			Timeout: 2 * time.Second,
		},
		DB: DBConfig{
			Path: "quill.db",
		},
		Redis: RedisConfig{
			Prefix: "quill:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies environment overrides.
// A missing file is not an error; an empty path skips the file entirely.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	raw, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	for _, key := range keys(reflect.TypeOf(cfg), "") {
		if v, ok := lookup(EnvName(key)); ok {
			setPath(raw, key, v)
		}
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// EnvName returns the environment variable for a dotted key, e.g. server.port → QUILL_SERVER_PORT.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func readFile(path string) (map[string]any, error) {
	raw := map[string]any{}
	if path == "" {
		return raw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// keys lists the dotted mapstructure keys of every leaf field of t.
func keys(t reflect.Type, prefix string) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := prefix + f.Tag.Get("mapstructure")
		if f.Type.Kind() == reflect.Struct {
			out = append(out, keys(f.Type, name+".")...)
			continue
		}
		out = append(out, name)
	}
	return out
}

// setPath stores v under a dotted key, creating intermediate maps.
func setPath(raw map[string]any, key string, v any) {
	parts := strings.Split(key, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineLua, EngineFake:
	default:
		return fmt.Errorf("invalid config: unknown engine %q (want %s or %s)", c.Engine, EngineLua, EngineFake)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("invalid config: server.request_timeout must not be negative")
	}
	if c.Render.Timeout < 0 {
		return fmt.Errorf("invalid config: render.timeout must not be negative")
	}
	if c.Templates.Dev && c.Templates.Dir == "" {
		return fmt.Errorf("invalid config: templates.dir is required when templates.dev is set")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
