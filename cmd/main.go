// Command ekiden runs one tick of the relay race engine.
//
// Usage:
//
//	ekiden <realtime|commit|preview> [-config path] [-now RFC3339]
//
// A scheduler invokes realtime every few minutes and commit once at the end of
// each race day. Preview computes and logs the standings without writing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/ekiden/internal/adapters/feed"
	"github.com/okian/ekiden/internal/adapters/publish"
	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/adapters/roster"
	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/config"
	"github.com/okian/ekiden/internal/domain/news"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const metricsJob = "ekiden"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	mode       service.Mode
	configPath string
	now        time.Time
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	if len(args) == 0 {
		return opts, fmt.Errorf("%w: missing mode", service.ErrInvalidMode)
	}
	mode, err := service.ParseMode(args[0])
	if err != nil {
		return opts, err
	}
	opts.mode = mode

	fs := flag.NewFlagSet("ekiden "+string(mode), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default $EKIDEN_CONFIG)")
	now := fs.String("now", "", "tick time as RFC3339 (default current time)")
	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}

	opts.now = time.Now()
	if *now != "" {
		t, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			return opts, fmt.Errorf("invalid -now %q: %w", *now, err)
		}
		opts.now = t
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		// Logger isn't configured yet
		fmt.Fprintf(stderr, "ekiden: %v\nusage: ekiden <realtime|commit|preview> [-config path] [-now RFC3339]\n", err)
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ekiden: failed to load config: %v\n", err)
		return exitError
	}

	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithWriter(stderr),
	); err != nil {
		fmt.Fprintf(stderr, "ekiden: failed to initialize logging: %v\n", err)
		return exitError
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Named("main")

	code := tick(ctx, cfg, opts, log)
	exportMetrics(ctx, cfg, log)
	return code
}

func tick(ctx context.Context, cfg *config.Config, opts options, log logger.Logger) int {
	race, err := roster.Load(cfg.RosterFile, cfg.ShadowFile)
	if err != nil {
		log.Error(ctx, "failed to load roster", logger.Error(err))
		return exitError
	}
	cal, err := cfg.Calendar()
	if err != nil {
		log.Error(ctx, "invalid race calendar", logger.Error(err))
		return exitError
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open storage", logger.String("adapter", cfg.StorageAdapter), logger.Error(err))
		return exitError
	}

	svcOpts := []service.Option{
		service.WithRepository(repository.New(backend)),
		service.WithSource(feed.NewFiles(cfg.DistanceFeedFile, cfg.CommentaryFile)),
		service.WithDetector(news.New(news.WithSettings(cfg.NewsSettings()))),
		service.WithLedgerSize(cfg.LedgerSize),
	}
	if len(cfg.WebhookURLs) > 0 {
		svcOpts = append(svcOpts, service.WithNotifier(
			publish.NewWebhook(cfg.WebhookURLs, publish.WithTimeout(cfg.WebhookTimeout())),
		))
	}

	svc, err := service.New(race, cal, svcOpts...)
	if err != nil {
		_ = backend.Close()
		log.Error(ctx, "failed to create service", logger.Error(err))
		return exitError
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn(ctx, "closing storage failed", logger.Error(err))
		}
	}()

	_, err = svc.Tick(ctx, opts.mode, opts.now)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, service.ErrRaceNotStarted):
		log.Info(ctx, "race has not started, nothing to do", logger.String("reason", err.Error()))
		return exitOK
	default:
		log.Error(ctx, "tick failed", logger.String("mode", string(opts.mode)), logger.Error(err))
		return exitError
	}
}

func newBackend(ctx context.Context, cfg *config.Config) (repository.Backend, error) {
	switch cfg.StorageAdapter {
	case config.StorageRedis:
		rc := repository.DefaultRedisConfig()
		rc.Addr = cfg.RedisAddr
		rc.Password = cfg.RedisPassword
		rc.DB = cfg.RedisDB
		rc.KeyPrefix = cfg.RedisKeyPrefix
		return repository.NewRedisBackend(ctx, rc)
	default:
		return repository.NewFileBackend(cfg.DataDir)
	}
}

// exportMetrics hands the tick metrics to the node exporter and the pushgateway
// when configured. Failures are logged only.
func exportMetrics(ctx context.Context, cfg *config.Config, log logger.Logger) {
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn(ctx, "metrics textfile export failed", logger.Error(err))
		}
	}
	if cfg.MetricsPushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.MetricsPushgatewayURL, metricsJob); err != nil {
			log.Warn(ctx, "metrics push failed", logger.Error(err))
		}
	}
}
