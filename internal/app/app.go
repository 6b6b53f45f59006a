package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/domain"
	"TOSAnalyzer/internal/infrastructure/fetcher"
	"TOSAnalyzer/internal/infrastructure/llm"
	"TOSAnalyzer/internal/infrastructure/ml"
	"TOSAnalyzer/internal/infrastructure/ocr"
	"TOSAnalyzer/internal/infrastructure/scheduler"
	"TOSAnalyzer/internal/infrastructure/storage"
	"TOSAnalyzer/internal/logging"
	"TOSAnalyzer/internal/metrics"
	"TOSAnalyzer/internal/ports"
	"TOSAnalyzer/internal/report"
	"TOSAnalyzer/internal/risk"
	"TOSAnalyzer/internal/transport/rest"
	"TOSAnalyzer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	readiness *usecase.Readiness
	analyze   *usecase.AnalyzeService
	extract   *usecase.ExtractService
	probe     *usecase.Scheduler
	purge     func(context.Context) error
	closers   []func() error
}

// New builds the application. Cache backends that cannot be reached are logged
// and disabled rather than failing startup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	analyzer, err := buildAnalyzer(cfg.Risk)
	if err != nil {
		return nil, err
	}
	baseLogger.Info("risk analyzer configured", "scorer", analyzer.ScorerName())

	summarizer, checker := buildSummarizer(cfg)
	a.readiness = usecase.NewReadiness(checker, a.metrics, baseLogger.With("component", "readiness"))
	a.probe = usecase.NewScheduler(
		scheduler.NewTicker(cfg.Summarizer.ProbeInterval),
		a.readiness,
		cfg.Summarizer.ProbeInterval,
	)

	cache := a.buildCache(ctx)

	a.analyze = usecase.NewAnalyzeService(usecase.AnalyzeDeps{
		Analyzer:    analyzer,
		Summarizer:  summarizer,
		Backend:     cfg.Summarizer.Backend,
		Cache:       cache,
		Readiness:   a.readiness,
		Placeholder: cfg.Summarizer.Placeholder,
		Metrics:     a.metrics,
		Logger:      baseLogger.With("component", "analyze"),
	})

	var extractor ports.TextExtractor
	if cfg.OCR.Endpoint != "" {
		extractor = ocr.NewClient(cfg.OCR)
	}
	a.extract = usecase.NewExtractService(usecase.ExtractDeps{
		OCR:     extractor,
		Fetcher: fetcher.NewPageFetcher(cfg.Fetcher, nil),
		Metrics: a.metrics,
		Logger:  baseLogger.With("component", "extract"),
	})

	return a, nil
}

func buildAnalyzer(cfg config.RiskConfig) (*risk.Analyzer, error) {
	var table []domain.RiskDimension
	for _, d := range cfg.Dimensions {
		table = append(table, domain.RiskDimension{Name: d.Name, Score: d.Score, Description: d.Description})
	}

	registry := risk.NewRegistry()
	registry.Register(risk.NewStaticScorer(table))
	registry.Register(risk.NewKeywordScorer(table, cfg.Indicators))

	name := cfg.Scorer
	if name == "" {
		name = "static"
	}
	scorer, err := registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("risk scorer: %w (available: %v)", err, registry.Names())
	}

	opts := []risk.Option{
		risk.WithScorer(scorer),
		risk.WithAggressivePhrases(cfg.AggressivePhrases),
	}
	if len(cfg.Clauses) > 0 {
		rules := make([]risk.ClauseRule, 0, len(cfg.Clauses))
		for _, c := range cfg.Clauses {
			rules = append(rules, risk.ClauseRule{
				Trigger: c.Trigger,
				Clause:  domain.SuspiciousClause{Name: c.Name, Text: c.Text},
			})
		}
		opts = append(opts, risk.WithClauseRules(rules))
	}

	return risk.NewAnalyzer(opts...), nil
}

func buildSummarizer(cfg config.Config) (ports.Summarizer, ports.ReadinessChecker) {
	switch cfg.Summarizer.Backend {
	case config.BackendML:
		client := ml.NewClient(cfg.ML)
		return client, client
	case config.BackendChatGPT:
		client := llm.NewChatGPTClient(cfg.ChatGPT)
		return client, client
	default:
		return nil, nil
	}
}

func (a *Application) buildCache(ctx context.Context) ports.SummaryCache {
	log := a.logger.With("component", "cache", "backend", a.cfg.Cache.Backend)

	switch a.cfg.Cache.Backend {
	case config.CachePostgres:
		db, err := storage.OpenPostgres(ctx, a.cfg.Database.DSN)
		if err != nil {
			log.Warn("summary cache disabled", "error", err)
			return nil
		}
		cache := storage.NewPostgresCache(db, a.cfg.Cache.TTL)
		if err := cache.EnsureSchema(ctx); err != nil {
			log.Warn("summary cache disabled", "error", err)
			_ = db.Close()
			return nil
		}
		a.closers = append(a.closers, db.Close)
		a.purge = a.schedulePurge(cache, log)
		return cache

	case config.CacheRedis:
		client := storage.NewRedisClient(a.cfg.Redis)
		cache := storage.NewRedisCache(client, a.cfg.Redis.KeyPrefix, a.cfg.Cache.TTL)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("summary cache disabled", "error", err)
			_ = client.Close()
			return nil
		}
		a.closers = append(a.closers, client.Close)
		return cache
	}

	return nil
}

// schedulePurge returns a starter that deletes expired Postgres rows once per TTL.
func (a *Application) schedulePurge(cache *storage.PostgresCache, log *slog.Logger) func(context.Context) error {
	ticker := scheduler.NewTicker(a.cfg.Cache.TTL)
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ticker.Stop(ctx)
	})

	return func(ctx context.Context) error {
		return ticker.Start(ctx, func(time.Time) {
			n, err := cache.Purge(ctx)
			if err != nil {
				log.Warn("purge expired summaries", "error", err)
				return
			}
			if n > 0 {
				log.Debug("purged expired summaries", "rows", n)
			}
		})
	}
}

// Handler returns the HTTP surface.
func (a *Application) Handler() http.Handler {
	return rest.New(rest.Deps{
		Analyzer:     a.analyze,
		Extractor:    a.extract,
		Readiness:    a.readiness,
		Metrics:      a.metrics.Handler(),
		Logger:       a.logger.With("component", "http"),
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
	}).Routes()
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.probe.Start(ctx); err != nil {
		return fmt.Errorf("start readiness probe: %w", err)
	}
	if a.purge != nil {
		if err := a.purge(ctx); err != nil {
			return fmt.Errorf("start cache purge: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr, "summarizer", a.cfg.Summarizer.Backend, "cache", a.cfg.Cache.Backend)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	if err := a.probe.Stop(shutdownCtx); err != nil {
		a.logger.Warn("stop readiness probe", "error", err)
	}

	return serveErr
}

// Analyze runs one document through the pipeline, probing the summarizer first.
func (a *Application) Analyze(ctx context.Context, text string) (domain.AnalysisResult, report.Safety, error) {
	probeCtx, cancel := context.WithTimeout(ctx, a.cfg.Summarizer.ProbeInterval)
	if err := a.readiness.Probe(probeCtx); err != nil {
		a.logger.Warn("summarizer not ready", "error", err)
	}
	cancel()

	result, err := a.analyze.Analyze(ctx, text)
	if err != nil {
		return domain.AnalysisResult{}, report.Safety{}, err
	}
	return result, report.Derive(result.RiskScores), nil
}

// Close releases connections held by the application.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
