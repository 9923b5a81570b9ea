package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asimihsan/manup/internal/alert"
	stdoutaudit "github.com/asimihsan/manup/internal/audit/stdout"
	"github.com/asimihsan/manup/internal/cache/consul"
	"github.com/asimihsan/manup/internal/cache/memory"
	"github.com/asimihsan/manup/internal/cache/redis"
	"github.com/asimihsan/manup/internal/cache/sqlite"
	"github.com/asimihsan/manup/internal/cache/tiered"
	"github.com/asimihsan/manup/internal/config"
	"github.com/asimihsan/manup/internal/controller"
	"github.com/asimihsan/manup/internal/decision"
	"github.com/asimihsan/manup/internal/engine/opa"
	httpfetch "github.com/asimihsan/manup/internal/fetch/http"
	"github.com/asimihsan/manup/internal/host/console"
	"github.com/asimihsan/manup/internal/logger"
	"github.com/asimihsan/manup/internal/metadata"
	"github.com/asimihsan/manup/internal/metrics"
	"github.com/asimihsan/manup/internal/text"
	pkgconfig "github.com/asimihsan/manup/pkg/config"
	"github.com/asimihsan/manup/pkg/gate"
)

// Exit codes.
const (
	exitContinue = 0
	exitError    = 1
	exitUsage    = 2
	exitBlocked  = 3
	exitPending  = 4
)

var registerMetrics sync.Once

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	url         string
	platform    string
	version     string
	appName     string
	cache       string
	engine      string
	metricsAddr string
	dumpConfig  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("manup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "configuration file (.pkl, .yaml); defaults to "+pkgconfig.DefaultPath+" when present")
	fs.StringVar(&o.url, "url", "", "metadata document URL")
	fs.StringVar(&o.platform, "platform", "", "platform to gate: ios, android or desktop")
	fs.StringVar(&o.version, "version", "", "running app version")
	fs.StringVar(&o.appName, "app-name", "App", "app name shown in alerts")
	fs.StringVar(&o.cache, "cache", "", "cache backend: none, memory, sqlite, redis, consul")
	fs.StringVar(&o.engine, "engine", "", "decision engine: native or opa")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&o.dumpConfig, "dump-config", false, "print the resolved configuration and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.version == "" && !o.dumpConfig {
		return o, errors.New("-version is required")
	}
	return o, nil
}

func (o options) overrides(cfg *config.AppConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.URL, o.url)
	set(&cfg.Platform, o.platform)
	set(&cfg.Cache.Backend, o.cache)
	set(&cfg.Engine, o.engine)
	set(&cfg.MetricsAddr, o.metricsAddr)
}

// lockedWriter serialises writes from the dialog prompt and the main flow.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	out := &lockedWriter{w: stdout}
	o, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	cfg, configID, err := pkgconfig.Evaluate(ctx, o.configPath, o.overrides)
	if err != nil {
		fmt.Fprintf(stderr, "manup: %v\n", err)
		return exitError
	}
	if o.dumpConfig {
		fmt.Fprintf(out, "Configuration (%s):\n%s", configID, spew.Sdump(cfg))
		return exitContinue
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log := logger.New(stderr, level)
	slog.SetDefault(log)

	registerMetrics.Do(metrics.MustRegister)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		log.Warn("cache unavailable, continuing without one", "backend", cfg.Cache.Backend, "error", err)
		cache, closeCache = nil, func() {}
	}
	defer closeCache()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build decision engine: %v\n", err)
		return exitError
	}

	var fetchOpts []httpfetch.Option
	if cfg.CacheBuster {
		fetchOpts = append(fetchOpts, httpfetch.WithCacheBuster())
	}

	presenter := console.NewPresenter(stdin, out)
	appInfo := console.AppInfo{Version: o.version, Name: o.appName}
	svc := controller.New(controller.Config{
		URL:      cfg.URL,
		Metadata: metadata.New(httpfetch.New(cfg.FetchTimeout, fetchOpts...), cache, log),
		Platform: console.NewPlatform(cfg.Platform),
		AppInfo:  appInfo,
		Engine:   engine,
		Alerts: alert.New(alert.Config{
			Alerts:               presenter,
			Opener:               console.NewOpener(out),
			AppInfo:              appInfo,
			Translator:           text.NewCatalogTranslator(cfg.Language.Current, cfg.Language.Default),
			ExternalTranslations: cfg.ExternalTranslations,
			Logger:               log,
		}),
		Audit:    stdoutaudit.New(log),
		ConfigID: configID,
		Logger:   log,
	})

	outcome := await(ctx, svc, presenter)
	fmt.Fprintf(out, "manup: decision=%s status=%s run=%s\n", outcome.Decision, outcome.Status, outcome.RunID)

	switch outcome.Status {
	case gate.StatusContinue:
		return exitContinue
	case gate.StatusBlocked:
		// Keep the dialog answerable until input ends or we are interrupted.
		_ = presenter.Wait(ctx)
		return exitBlocked
	default:
		return exitPending
	}
}

// await runs the gate until it settles, the process is interrupted, or the
// console can no longer answer the alert.
func await(ctx context.Context, svc *controller.Service, presenter *console.Presenter) gate.Outcome {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-presenter.InputClosed():
			cancel()
		case <-runCtx.Done():
		}
	}()

	outcome := svc.Run(runCtx)
	if outcome.Status != gate.StatusPending || ctx.Err() != nil {
		return outcome
	}
	// Input may close just as a blocking alert settles the run.
	graceCtx, graceCancel := context.WithTimeout(context.WithoutCancel(ctx), 100*time.Millisecond)
	defer graceCancel()
	return svc.Run(graceCtx)
}

func serveMetrics(addr string, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// openCache builds the configured backend behind an in-process layer.
func openCache(ctx context.Context, c config.CacheConfig) (gate.CacheStore, func(), error) {
	noop := func() {}
	local := tiered.Layer{Name: config.CacheMemory, Store: memory.New()}

	switch c.Backend {
	case config.CacheNone:
		return nil, noop, nil
	case config.CacheMemory:
		return local.Store, noop, nil
	case config.CacheSQLite:
		s, err := sqlite.Open(ctx, c.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return tiered.New(local, tiered.Layer{Name: config.CacheSQLite, Store: s}), func() { _ = s.Close() }, nil
	case config.CacheRedis:
		s, err := redis.Dial(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.RedisPrefix, c.RedisTTL)
		if err != nil {
			return nil, noop, err
		}
		return tiered.New(local, tiered.Layer{Name: config.CacheRedis, Store: s}), func() { _ = s.Close() }, nil
	case config.CacheConsul:
		prefix := c.ConsulPrefix
		if prefix == "" {
			prefix = consul.DefaultPrefix
		}
		s, err := consul.New(c.ConsulAddr, prefix)
		if err != nil {
			return nil, noop, err
		}
		return tiered.New(local, tiered.Layer{Name: config.CacheConsul, Store: s}), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

func newEngine(ctx context.Context, cfg *config.AppConfig) (gate.PolicyEngine, error) {
	switch cfg.Engine {
	case config.EngineOPA:
		if cfg.OPAModulePath != "" {
			return opa.NewEngineFromFile(ctx, cfg.OPAModulePath)
		}
		return opa.NewEngine(ctx)
	default:
		return decision.NewEngine(), nil
	}
}
