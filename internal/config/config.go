// Package config defines the gate's configuration and loads it from Pkl or
// YAML files, with environment overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apple/pkl-go/pkl"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/asimihsan/manup/pkg/gate"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheConsul = "consul"
)

// Evaluator engines.
const (
	EngineNative = "native"
	EngineOPA    = "opa"
)

// AppConfig is the resolved configuration.
type AppConfig struct {
	URL                  string         `yaml:"url"`
	Platform             string         `yaml:"platform"`
	CacheBuster          bool           `yaml:"cacheBuster"`
	FetchTimeout         time.Duration  `yaml:"fetchTimeout"`
	ExternalTranslations bool           `yaml:"externalTranslations"`
	Language             LanguageConfig `yaml:"language"`
	Cache                CacheConfig    `yaml:"cache"`
	Engine               string         `yaml:"engine"`
	OPAModulePath        string         `yaml:"opaModulePath"`
	LogLevel             string         `yaml:"logLevel"`
	MetricsAddr          string         `yaml:"metricsAddr"`
}

// LanguageConfig selects the translation languages.
type LanguageConfig struct {
	Current string `yaml:"current"`
	Default string `yaml:"default"`
}

// CacheConfig selects and configures the metadata cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	SQLitePath    string        `yaml:"sqlitePath"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	RedisPrefix   string        `yaml:"redisPrefix"`
	RedisTTL      time.Duration `yaml:"redisTTL"`
	ConsulAddr    string        `yaml:"consulAddr"`
	ConsulPrefix  string        `yaml:"consulPrefix"`
}

// Default returns the configuration used for anything a file leaves unset.
func Default() *AppConfig {
	return &AppConfig{
		FetchTimeout: 5 * time.Second,
		Language:     LanguageConfig{Default: "en"},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			SQLitePath: filepath.Join(os.TempDir(), "manup", "cache.db"),
		},
		Engine:   EngineNative,
		LogLevel: "info",
	}
}

// LoadFromPath reads a .pkl, .yaml or .yml file on top of Default().
func LoadFromPath(ctx context.Context, path string) (*AppConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pkl":
		return loadPkl(ctx, path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", gate.ErrConfigLoad, filepath.Ext(path))
	}
}

func loadYAML(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", gate.ErrConfigLoad, path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", gate.ErrConfigLoad, path, err)
	}
	return cfg, nil
}

// pklConfig mirrors AppConfig in the shape Pkl evaluates to.
type pklConfig struct {
	URL                  string         `pkl:"url"`
	Platform             *string        `pkl:"platform"`
	CacheBuster          *bool          `pkl:"cacheBuster"`
	FetchTimeout         *pkl.Duration  `pkl:"fetchTimeout"`
	ExternalTranslations *bool          `pkl:"externalTranslations"`
	Language             *pklLanguage   `pkl:"language"`
	Cache                *pklCache      `pkl:"cache"`
	Engine               *string        `pkl:"engine"`
	OPAModulePath        *string        `pkl:"opaModulePath"`
	LogLevel             *string        `pkl:"logLevel"`
	MetricsAddr          *string        `pkl:"metricsAddr"`
}

type pklLanguage struct {
	Current *string `pkl:"current"`
	Default *string `pkl:"default"`
}

type pklCache struct {
	Backend       *string       `pkl:"backend"`
	SQLitePath    *string       `pkl:"sqlitePath"`
	RedisAddr     *string       `pkl:"redisAddr"`
	RedisPassword *string       `pkl:"redisPassword"`
	RedisDB       *int          `pkl:"redisDB"`
	RedisPrefix   *string       `pkl:"redisPrefix"`
	RedisTTL      *pkl.Duration `pkl:"redisTTL"`
	ConsulAddr    *string       `pkl:"consulAddr"`
	ConsulPrefix  *string       `pkl:"consulPrefix"`
}

func loadPkl(ctx context.Context, path string) (*AppConfig, error) {
	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: starting pkl evaluator: %v", gate.ErrConfigLoad, err)
	}
	defer evaluator.Close()

	var raw pklConfig
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(path), &raw); err != nil {
		return nil, fmt.Errorf("%w: evaluating %s: %v", gate.ErrConfigLoad, path, err)
	}
	return raw.resolve(), nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *pkl.Duration) {
	if src != nil {
		*dst = src.GoDuration()
	}
}

func (p pklConfig) resolve() *AppConfig {
	cfg := Default()
	cfg.URL = p.URL
	setString(&cfg.Platform, p.Platform)
	setBool(&cfg.CacheBuster, p.CacheBuster)
	setDuration(&cfg.FetchTimeout, p.FetchTimeout)
	setBool(&cfg.ExternalTranslations, p.ExternalTranslations)
	setString(&cfg.Engine, p.Engine)
	setString(&cfg.OPAModulePath, p.OPAModulePath)
	setString(&cfg.LogLevel, p.LogLevel)
	setString(&cfg.MetricsAddr, p.MetricsAddr)
	if p.Language != nil {
		setString(&cfg.Language.Current, p.Language.Current)
		setString(&cfg.Language.Default, p.Language.Default)
	}
	if c := p.Cache; c != nil {
		setString(&cfg.Cache.Backend, c.Backend)
		setString(&cfg.Cache.SQLitePath, c.SQLitePath)
		setString(&cfg.Cache.RedisAddr, c.RedisAddr)
		setString(&cfg.Cache.RedisPassword, c.RedisPassword)
		if c.RedisDB != nil {
			cfg.Cache.RedisDB = *c.RedisDB
		}
		setString(&cfg.Cache.RedisPrefix, c.RedisPrefix)
		setDuration(&cfg.Cache.RedisTTL, c.RedisTTL)
		setString(&cfg.Cache.ConsulAddr, c.ConsulAddr)
		setString(&cfg.Cache.ConsulPrefix, c.ConsulPrefix)
	}
	return cfg
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup over the process environment, backed by the
// variables in envFile when it exists. Process variables win.
func EnvLookup(envFile string) (LookupFunc, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("%w: reading %s: %v", gate.ErrConfigLoad, envFile, err)
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides cfg with MANUP_* variables.
func ApplyEnv(cfg *AppConfig, lookup LookupFunc) error {
	strs := map[string]*string{
		"MANUP_URL":            &cfg.URL,
		"MANUP_PLATFORM":       &cfg.Platform,
		"MANUP_ENGINE":         &cfg.Engine,
		"MANUP_OPA_MODULE":     &cfg.OPAModulePath,
		"MANUP_LOG_LEVEL":      &cfg.LogLevel,
		"MANUP_METRICS_ADDR":   &cfg.MetricsAddr,
		"MANUP_LANG":           &cfg.Language.Current,
		"MANUP_DEFAULT_LANG":   &cfg.Language.Default,
		"MANUP_CACHE_BACKEND":  &cfg.Cache.Backend,
		"MANUP_SQLITE_PATH":    &cfg.Cache.SQLitePath,
		"MANUP_REDIS_ADDR":     &cfg.Cache.RedisAddr,
		"MANUP_REDIS_PASSWORD": &cfg.Cache.RedisPassword,
		"MANUP_CONSUL_ADDR":    &cfg.Cache.ConsulAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("MANUP_CACHE_BUSTER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MANUP_CACHE_BUSTER: %v", gate.ErrConfigLoad, err)
		}
		cfg.CacheBuster = b
	}
	if v, ok := lookup("MANUP_FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: MANUP_FETCH_TIMEOUT: %v", gate.ErrConfigLoad, err)
		}
		cfg.FetchTimeout = d
	}
	return nil
}

// Validate checks that cfg can drive a gate.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheSQLite, CacheConsul:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redisAddr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	switch c.Engine {
	case EngineNative, EngineOPA:
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetchTimeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", gate.ErrConfigLoad, errors.Join(errs...))
	}
	return nil
}
