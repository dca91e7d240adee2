// cmd/web/main.go
//
// Cadence – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load config (conf/.env → conf/global.yaml → CADENCE_* env), resolving
//     `vault:` references when VAULT_ADDR is set.
//
//  2. Start the daily rotating logger (tees to console when in a TTY).
//
//  3. Build shared services: course catalog, analytics tracker, message
//     sender, CAPTCHA verifier, optional MySQL archive, contact registry.
//
//  4. Load the theme (embedded, with optional on-disk overrides) and the
//     view renderer.
//
//  5. Build the chi router:
//
//     • request id / real ip / request log / metrics
//     • panic recovery → themed 500 page
//     • security headers, ForceHTTPS (skips localhost)
//     • visitor cookie, request metadata (UA + GeoIP)
//     • friendly-path aliases
//     • /metrics, /assets/*, then every registered component
//
//  6. Serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/captcha"
	"github.com/yanizio/cadence/internal/catalog"
	"github.com/yanizio/cadence/internal/component"
	"github.com/yanizio/cadence/internal/config"
	"github.com/yanizio/cadence/internal/contact"
	"github.com/yanizio/cadence/internal/database"
	"github.com/yanizio/cadence/internal/form"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/message"
	"github.com/yanizio/cadence/internal/middleware"
	"github.com/yanizio/cadence/internal/requestinfo"
	"github.com/yanizio/cadence/internal/routing"
	"github.com/yanizio/cadence/internal/server"
	"github.com/yanizio/cadence/internal/session"
	"github.com/yanizio/cadence/internal/theme"
	"github.com/yanizio/cadence/internal/vault"
	"github.com/yanizio/cadence/internal/view"

	_ "github.com/yanizio/cadence/components/analytics"
	_ "github.com/yanizio/cadence/components/contact"
	_ "github.com/yanizio/cadence/components/courses"
	_ "github.com/yanizio/cadence/components/home"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	var resolver config.SecretResolver
	if vault.Configured() {
		vc, err := vault.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("vault: %v", err)
		}
		resolver = vc
	}
	cfg, err := config.Load(ctx, resolver)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	if err := run(ctx, cfg, logOut); err != nil {
		logOut.Errorw("server exited", "err", err)
		_ = logOut.Sync()
		os.Exit(1)
	}
	logOut.Infow("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logOut *zap.SugaredLogger) error {
	if err := form.SetKey(cfg.Contact.CSRFKey); err != nil {
		return err
	}
	if err := requestinfo.InitGeo(cfg.Geo.CityDB); err != nil {
		logOut.Warnw("geoip disabled", "file", cfg.Geo.CityDB, "err", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 3.  Shared services ─────────────────────────────────────────────
	//
	catOpts := catalog.Options{
		FeaturedLimit: cfg.Catalog.FeaturedLimit,
		CacheEntries:  cfg.Catalog.CacheEntries,
		Locale:        cfg.Site.Locale,
	}
	cat, err := catalog.Open(cfg.Catalog.Dataset, catOpts)
	if err != nil {
		// Unreadable dataset: serve the catalog's error state instead of exiting.
		logOut.Errorw("catalog unavailable", "file", cfg.Catalog.Dataset, "err", err)
		cat = catalog.New(nil, catOpts)
	}

	tracker := analytics.NewTracker(newSink(cfg.Analytics, logOut), analytics.Options{
		Enabled:    cfg.Analytics.Enabled,
		Debug:      cfg.Analytics.Debug,
		MaxRetries: cfg.Analytics.MaxRetries,
		RetryDelay: cfg.Analytics.RetryDelay,
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracker.Close(sctx); err != nil {
			logOut.Warnw("analytics drain incomplete", "err", err)
		}
	}()

	var sender message.Sender = message.NewLogSender(logOut)
	if cfg.Mail.SMTPHost != "" {
		sender = message.NewSMTPSender(message.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
			SiteName: cfg.Site.Name,
			Timeout:  cfg.Mail.Timeout,
		})
	}
	verifier := captcha.New(cfg.Captcha.Secret, cfg.Captcha.VerifyURL)

	var archive contact.Archiver
	if dsn := cfg.Database.ArchiveDSN; dsn != "" {
		db, err := database.Open(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		a := contact.NewArchive(db)
		if err := a.EnsureSchema(ctx); err != nil {
			return err
		}
		archive = a
		logOut.Infow("contact archive online")
	}

	contacts := contact.NewRegistry(func() *contact.Controller {
		return contact.NewController(contact.Options{
			Sender:     sender,
			Tracker:    tracker,
			Verifier:   verifier,
			Archive:    archive,
			FormName:   cfg.Contact.FormName,
			ResetDelay: cfg.Contact.ResetDelay,
		})
	}, cfg.Contact.SessionIdleTTL, cfg.Contact.MaxSessions)
	go contacts.Run(ctx, contact.EvictInterval)

	//
	// ── 4.  Theme + view ────────────────────────────────────────────────
	//
	th, err := theme.Load(cfg.Site.ThemeDir)
	if err != nil {
		return err
	}
	v, err := view.New(th, cfg.Site, cfg.Captcha.SiteKey)
	if err != nil {
		return err
	}

	aliases, err := routing.NewAliases(cfg.Routing.Aliases)
	if err != nil {
		return err
	}

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.RequestLog,
		middleware.Instrument,
		middleware.Recover(v.Internal()),
		middleware.Security,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
		session.Middleware,
		requestinfo.Enrich,
		aliases.Middleware,
	)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(theme.AssetPrefix+"*", http.StripPrefix(theme.AssetPrefix, http.FileServer(http.FS(th.Assets))))

	if err := component.Mount(r, component.Deps{
		Config:   cfg,
		Catalog:  cat,
		Tracker:  tracker,
		Contacts: contacts,
		View:     v,
	}); err != nil {
		return err
	}

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r), cfg.HTTP.ShutdownTimeout)
}

// newSink picks Redis when configured, else the log sink.
func newSink(a config.Analytics, l *zap.SugaredLogger) analytics.Sink {
	if a.RedisAddr == "" {
		return analytics.NewLogSink(l)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.RedisAddr,
		Password: a.RedisPassword,
		DB:       a.RedisDB,
	})
	l.Infow("analytics sink", "kind", "redis", "addr", a.RedisAddr)
	return analytics.NewRedisSink(rdb, a.EventTTL)
}
