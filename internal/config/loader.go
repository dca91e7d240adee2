// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `CADENCE_`, where `__` maps to "."
     (e.g., `CADENCE_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<mount>/<path>#<key>` are swapped for the
secret they name before unmarshal.  After merging, the tree is unmarshalled
into strongly-typed structs, defaulted, validated, enriched with the runtime
root path, and cached in an `atomic.Pointer` for lock-free reads.
`Reload()` simply calls `Load()` again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, secret resolution.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final "config loaded" with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix    = "CADENCE_"
	rootEnv      = "CADENCE_ROOT"
	secretPrefix = "vault:"
)

var current atomic.Pointer[Config]

// SecretResolver turns a `vault:` reference into its plaintext value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves CADENCE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv(rootEnv); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.  resolver may be nil when no Vault is available; a
// `vault:` value then fails the load.
func Load(ctx context.Context, resolver SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	cfg, err := loadFrom(ctx, root, resolver)
	if err != nil {
		return nil, err
	}

	current.Store(cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"dataset", cfg.Catalog.Dataset,
		"analytics", cfg.Analytics.Enabled,
		"root", cfg.Paths.Root,
	)
	return cfg, nil
}

// loadFrom does the work of Load for an explicit root directory.
func loadFrom(ctx context.Context, root string, resolver SecretResolver) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: CADENCE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	if err := resolveSecrets(ctx, k, resolver); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// resolveSecrets replaces every `vault:` string value in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, resolver SecretResolver) error {
	for _, key := range k.Keys() {
		raw, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(raw, secretPrefix) {
			continue
		}
		if resolver == nil {
			return fmt.Errorf("config key %s references a secret but no resolver is configured", key)
		}
		val, err := resolver.Resolve(ctx, strings.TrimPrefix(raw, secretPrefix))
		if err != nil {
			return fmt.Errorf("resolve secret for %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set secret for %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}

/*──────────────────────────── defaults ────────────────────────────────────*/

// applyDefaults fills zero values that have a sensible default.  Relative
// paths are anchored at the runtime root.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Site.Locale == "" {
		c.Site.Locale = "en_US"
	}
	if c.Catalog.Dataset == "" {
		c.Catalog.Dataset = "data/music_course.json"
	}
	if c.Catalog.FeaturedLimit == 0 {
		c.Catalog.FeaturedLimit = 6
	}
	if c.Catalog.CacheEntries == 0 {
		c.Catalog.CacheEntries = 256
	}
	if c.Contact.FormName == "" {
		c.Contact.FormName = "contact_form_secure"
	}
	if c.Contact.ResetDelay == 0 {
		c.Contact.ResetDelay = 5 * time.Second
	}
	if c.Contact.SessionIdleTTL == 0 {
		c.Contact.SessionIdleTTL = 30 * time.Minute
	}
	if c.Contact.MaxSessions == 0 {
		c.Contact.MaxSessions = 10000
	}
	if c.Mail.Timeout == 0 {
		c.Mail.Timeout = 15 * time.Second
	}
	if c.Captcha.VerifyURL == "" {
		c.Captcha.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}
	if c.Analytics.MaxRetries == 0 {
		c.Analytics.MaxRetries = 3
	}
	if c.Analytics.RetryDelay == 0 {
		c.Analytics.RetryDelay = time.Second
	}
	if c.Analytics.EventTTL == 0 {
		c.Analytics.EventTTL = 30 * 24 * time.Hour
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}

	c.Catalog.Dataset = anchor(c.Paths.Root, c.Catalog.Dataset)
	c.Log.Dir = anchor(c.Paths.Root, c.Log.Dir)
	if c.Site.ThemeDir != "" {
		c.Site.ThemeDir = anchor(c.Paths.Root, c.Site.ThemeDir)
	}
	if c.Geo.CityDB != "" {
		c.Geo.CityDB = anchor(c.Paths.Root, c.Geo.CityDB)
	}
}

func anchor(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context, resolver SecretResolver) error {
	_, err := Load(ctx, resolver)
	return err
}
