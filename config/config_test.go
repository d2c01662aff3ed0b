package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/multimongo/observability"
)

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]bool
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "cmd directory wins",
			files:      map[string]bool{"./cmd/multimongo/config.yml": true, "./config.yml": true},
			wantConfig: "./cmd/multimongo/config.yml",
		},
		{
			name:       "service named file under config",
			files:      map[string]bool{"./config/multimongo.yaml": true, "./.env": true},
			wantConfig: "./config/multimongo.yaml",
			wantEnv:    "./.env",
		},
		{
			name:  "nothing found",
			files: map[string]bool{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &mockFS{files: tc.files}}
			got := r.ResolveFiles("multimongo", LoaderConfig{})
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("ConfigFile = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("EnvFile = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	got := r.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/app.yml", EnvFile: "/etc/app.env"})
	if got.ConfigFile != "/etc/app.yml" || got.EnvFile != "/etc/app.env" {
		t.Errorf("explicit paths should be kept, got %+v", got)
	}
}

func TestLoadPropertiesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
multimongo:
  primary:
    uri: mongodb://localhost:27017/orders
    max_pool_size: 50
    connect_timeout: 5s
  secondary:
    host: db2.internal
`)

	props, err := LoadProperties("multimongo", WithConfigFile(path), WithoutEnv())
	if err != nil {
		t.Fatalf("LoadProperties: %v", err)
	}

	if !props.IsSet("multimongo.primary.uri") {
		t.Error("primary uri should be set")
	}
	if props.IsSet("multimongo.tertiary.uri") {
		t.Error("tertiary uri should not be set")
	}
	if got := props.GetString("multimongo.secondary.host"); got != "db2.internal" {
		t.Errorf("secondary host = %q", got)
	}

	var slot struct {
		URI            string        `mapstructure:"uri"`
		MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	}
	if err := props.Unmarshal("multimongo.primary", &slot); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if slot.MaxPoolSize != 50 || slot.ConnectTimeout != 5*time.Second {
		t.Errorf("decoded = %+v", slot)
	}
}

func TestLoadPropertiesEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
multimongo:
  primary:
    database: orders
    uri: mongodb://file:27017
`)
	t.Setenv("MULTIMONGO_PRIMARY_URI", "mongodb://env:27017")
	t.Setenv("MULTIMONGO_PRIMARY_ADDITIONAL_HOSTS", "a:1,b:2")

	props, err := LoadProperties("multimongo", WithConfigFile(path), WithFileSystem(OSFileSystem{}))
	if err != nil {
		t.Fatalf("LoadProperties: %v", err)
	}

	var slot struct {
		URI             string   `mapstructure:"uri"`
		Database        string   `mapstructure:"database"`
		AdditionalHosts []string `mapstructure:"additional_hosts"`
	}
	if err := props.Unmarshal("multimongo.primary", &slot); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if slot.URI != "mongodb://env:27017" {
		t.Errorf("uri = %q, want env value", slot.URI)
	}
	if slot.Database != "orders" {
		t.Errorf("database = %q, file value should survive an env override of a sibling", slot.Database)
	}
	if !slices.Equal(slot.AdditionalHosts, []string{"a:1", "b:2"}) {
		t.Errorf("additional_hosts = %v", slot.AdditionalHosts)
	}
}

func TestLoadPropertiesEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"/app/.env": true}}
	if _, err := LoadProperties("svc", WithFileSystem(fs), WithEnvFile("/app/.env")); err != nil {
		t.Fatalf("LoadProperties: %v", err)
	}
	if !slices.Equal(fs.loaded, []string{"/app/.env"}) {
		t.Errorf("loaded env files = %v", fs.loaded)
	}
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	props, err := LoadProperties("svc", WithConfigFile("/nonexistent/config.yml"), WithoutEnv())
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(props.Keys("")) != 0 {
		t.Errorf("expected no keys, got %v", props.Keys(""))
	}
}

func TestLoadPropertiesBrokenFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "multimongo: [unterminated")
	if _, err := LoadProperties("svc", WithConfigFile(path), WithoutEnv()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaults(t *testing.T) {
	props, err := LoadProperties("svc",
		WithFileSystem(&mockFS{}),
		WithDefaults(map[string]any{"multimongo.enabled": true}),
		WithoutEnv())
	if err != nil {
		t.Fatal(err)
	}
	if props.GetString("multimongo.enabled") != "true" {
		t.Errorf("enabled = %q", props.GetString("multimongo.enabled"))
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: orders-api
environment: staging
logging:
  level: debug
  format: json
observability:
  tracing: true
  endpoint: otel:4318
  sample_rate: 0.25
`)
	var cfg ServiceConfig
	if err := LoadConfig("orders-api", &cfg, WithConfigFile(path), WithoutEnv()); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Name != "orders-api" || cfg.Environment != "staging" || cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Observability.Tracing || cfg.Observability.Endpoint != "otel:4318" || cfg.Observability.SampleRate != 0.25 {
		t.Errorf("observability = %+v", cfg.Observability)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"bad environment", ServiceConfig{Name: "x", Environment: "qa"}, "config.environment must be one of"},
		{"bad sample rate", ServiceConfig{Name: "x", Environment: "production", Observability: observability.Config{SampleRate: 2}}, "config.observability"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("Validate() = %v, want %q", err, tc.errMsg)
			}
		})
	}

	var cfg ServiceConfig
	cfg.ApplyDefaults()
	if cfg.Name != "multimongo" || !cfg.Debug {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestNewPropertiesKeys(t *testing.T) {
	props := NewProperties(map[string]any{
		"multimongo.primary.uri":  "mongodb://a",
		"multimongo.primary.host": "a",
		"mongodb.host":            "b",
	})
	got := props.Keys("multimongo")
	want := []string{"multimongo.primary.host", "multimongo.primary.uri"}
	if !slices.Equal(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
	if props.Get("mongodb.host") != "b" {
		t.Errorf("Get = %v", props.Get("mongodb.host"))
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("MULTIMONGO_PRIMARY_MAX_POOL_SIZE")
	for _, want := range []string{
		"multimongo_primary_max_pool_size",
		"multimongo.primary.max.pool.size",
		"multimongo.primary.max_pool_size",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if v := envKeyVariants("HOME"); !slices.Equal(v, []string{"home"}) {
		t.Errorf("single part = %v", v)
	}
}
