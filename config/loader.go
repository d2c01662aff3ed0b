package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/multimongo/logger"
)

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved file paths. Empty means not found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching standard
// locations for the ones not given.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, ext := range []string{"yml", "yaml"} {
		paths = append(paths,
			fmt.Sprintf("./cmd/%s/config.%s", serviceName, ext),
			fmt.Sprintf("./config/%s.%s", serviceName, ext),
			fmt.Sprintf("./config/config.%s", ext),
			fmt.Sprintf("./config.%s", ext),
		)
	}
	return paths
}

func envCandidates(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/.env", serviceName),
		fmt.Sprintf("./.env.%s", serviceName),
		"./config/.env",
		"./.env",
	}
}

// LoaderConfig holds loader dependencies and file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	Defaults   map[string]any
	SkipEnv    bool
}

// LoaderOption configures LoadProperties and LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the file system used for lookups.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithDefaults registers default values. Defaults count as set for IsSet.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// WithoutEnv disables binding of process environment variables.
func WithoutEnv() LoaderOption {
	return func(lc *LoaderConfig) { lc.SkipEnv = true }
}

// LoadProperties loads the YAML file, the .env file and the environment for
// serviceName. Missing files are not an error.
func LoadProperties(serviceName string, opts ...LoaderOption) (*ViperProperties, error) {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	log := logger.Get("config")

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
		log.Debug("config file loaded", logger.Fields("path", files.ConfigFile))
	}

	if !lc.SkipEnv {
		if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
			if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
				log.Warn("failed to load env file", logger.Fields("path", files.EnvFile, logger.FieldError, err.Error()))
			}
		}
		bindEnv(v, os.Environ())
	}

	return FromViper(v), nil
}

// LoadConfig loads configuration for serviceName and decodes it into cfg.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	props, err := LoadProperties(serviceName, opts...)
	if err != nil {
		return err
	}
	if err := props.UnmarshalAll(cfg); err != nil {
		return fmt.Errorf("unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every nested key variant of each KEY=value pair.
func bindEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment key to the config keys it may address.
// Underscores are either path separators or part of a snake_case field name:
//
//	MULTIMONGO_PRIMARY_URI        -> multimongo.primary.uri, multimongo.primary_uri, ...
//	MULTIMONGO_PRIMARY_MAX_POOL_SIZE -> multimongo.primary.max_pool_size, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]bool)
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
