// internal/config/model.go
//
// Typed configuration model for Cadence.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `CADENCE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal and defaulting; the app
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations are written as Go duration strings ("5s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Site section
//

// Site carries the metadata the layout pushes into <head>.
type Site struct {
	Name        string `koanf:"name"        validate:"required"`
	Title       string `koanf:"title"       validate:"required"`
	Description string `koanf:"description"`
	Keywords    string `koanf:"keywords"`
	Locale      string `koanf:"locale"`
	BaseURL     string `koanf:"base_url"    validate:"omitempty,url"`
	ThemeDir    string `koanf:"theme_dir"` // optional template overrides on disk
}

//
// Catalog section
//

// Catalog points at the static course dataset.
type Catalog struct {
	Dataset       string `koanf:"dataset"        validate:"required"`
	FeaturedLimit int    `koanf:"featured_limit" validate:"gte=1"`
	CacheEntries  int    `koanf:"cache_entries"  validate:"gte=1"`
}

//
// Contact section
//

// Contact tunes the contact-form controllers.
type Contact struct {
	FormName       string        `koanf:"form_name"        validate:"required"`
	ResetDelay     time.Duration `koanf:"reset_delay"      validate:"gt=0"`
	CSRFKey        string        `koanf:"csrf_key"`
	SessionIdleTTL time.Duration `koanf:"session_idle_ttl" validate:"gt=0"`
	MaxSessions    int           `koanf:"max_sessions"     validate:"gte=1"`
}

//
// Mail section
//

// Mail configures the SMTP relay used for contact messages.  Leaving
// SMTPHost empty switches the site to the log-only sender.
type Mail struct {
	SMTPHost string        `koanf:"smtp_host"`
	SMTPPort string        `koanf:"smtp_port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"     validate:"omitempty,email"`
	To       string        `koanf:"to"       validate:"omitempty,email"`
	Timeout  time.Duration `koanf:"timeout"`
}

//
// Captcha section
//

// Captcha holds reCAPTCHA keys.  An empty Secret disables verification;
// the token is still captured.
type Captcha struct {
	SiteKey   string `koanf:"site_key"`
	Secret    string `koanf:"secret"`
	VerifyURL string `koanf:"verify_url" validate:"omitempty,url"`
}

//
// Analytics section
//

// Analytics configures event delivery.  An empty RedisAddr routes events to
// the log sink.
type Analytics struct {
	Enabled       bool          `koanf:"enabled"`
	Debug         bool          `koanf:"debug"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"    validate:"gte=0"`
	MaxRetries    int           `koanf:"max_retries" validate:"gte=0"` // retries after the first attempt
	RetryDelay    time.Duration `koanf:"retry_delay" validate:"gte=0"`
	EventTTL      time.Duration `koanf:"event_ttl"   validate:"gte=0"`
}

//
// Database section
//

// Database is optional.  When ArchiveDSN is set, successful inquiries are
// copied into the contact_inquiry table.
type Database struct {
	ArchiveDSN string `koanf:"archive_dsn"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	CityDB string `koanf:"city_db"`
}

//
// Routing section
//

// Routing holds friendly-path aliases ("/lessons" → "/courses").
type Routing struct {
	Aliases map[string]string `koanf:"aliases"`
}

//
// Log section
//

// Log controls the file logger.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // CADENCE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Site      Site      `koanf:"site"`
	Catalog   Catalog   `koanf:"catalog"`
	Contact   Contact   `koanf:"contact"`
	Mail      Mail      `koanf:"mail"`
	Captcha   Captcha   `koanf:"captcha"`
	Analytics Analytics `koanf:"analytics"`
	Database  Database  `koanf:"database"`
	Geo       Geo       `koanf:"geo"`
	Routing   Routing   `koanf:"routing"`
	Log       Log       `koanf:"log"`
	Paths     Paths     `koanf:"-"`
}
