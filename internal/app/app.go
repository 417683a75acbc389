package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"ListingCrawler/internal/config"
	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/infrastructure/output"
	"ListingCrawler/internal/infrastructure/parser"
	"ListingCrawler/internal/infrastructure/scheduler"
	"ListingCrawler/internal/infrastructure/storage"
	"ListingCrawler/internal/logging"
	"ListingCrawler/internal/ports"
	"ListingCrawler/internal/scanner"
	"ListingCrawler/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
	closers  []io.Closer
}

// New builds a runnable application. stdout receives rendered listings
// unless the config names an output file.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, stdout io.Writer) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	fetcher := parser.NewFetcher(
		&http.Client{Timeout: cfg.HTTP.Timeout()},
		baseLogger.With("component", "fetcher"),
	)
	source := parser.NewStrategySource(
		scanner.NewRegistry(),
		cfg.Targets,
		fetcher,
		parser.MismatchPolicy(cfg.Extraction.MismatchPolicy),
		baseLogger.With("component", "source"),
	)

	var repository ports.ListingRepository
	if cfg.Storage.Enabled() {
		repo, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.closers = append(a.closers, repo)
		repository = repo
	}

	out := stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("create output %s: %w", cfg.Output.Path, err)
		}
		a.closers = append(a.closers, f)
		out = f
	}
	writer, err := output.NewWriter(cfg.Output.Format, out)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Writer:     writer,
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) ([]domain.RunSummary, error) {
	return a.pipeline.Run(ctx)
}

// Watch re-runs the pipeline on the configured cron schedule until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	location, err := a.cfg.Scheduler.Location()
	if err != nil {
		return err
	}
	logger := a.logger.With("component", "scheduler")
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, location, logger)
	sched := usecase.NewScheduler(driver, a.pipeline, logger)

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching targets", "cron", a.cfg.Scheduler.CronExpression, "timezone", location.String())

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases storage and output handles.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
