package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/routerhaus/kitfinder/catalog"
	"github.com/routerhaus/kitfinder/config"
	"github.com/routerhaus/kitfinder/loader"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/pipeline"
	"github.com/routerhaus/kitfinder/server"
	"github.com/routerhaus/kitfinder/store"
)

type options struct {
	configPath   string
	query        string
	quizCoverage string
	quizDevices  string
	quizUse      string
	compare      string
	export       bool
	serve        bool
}

func main() {
	defaultCfg := config.DefaultConfig()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&opts.query, "query", "", "Shared query string, e.g. sort=price-asc&f_brand=ASUS")
	flag.StringVar(&opts.quizCoverage, "quiz-coverage", "", "Quiz: home size (Apartment/Small, 2–3 Bedroom, Large/Multi-floor)")
	flag.StringVar(&opts.quizDevices, "quiz-devices", "", "Quiz: device count ("+strings.Join([]string{models.DeviceLoadLight, models.DeviceLoadMid, models.DeviceLoadHeavy}, ", ")+")")
	flag.StringVar(&opts.quizUse, "quiz-use", "", "Quiz: primary use (e.g. Gaming)")
	flag.StringVar(&opts.compare, "compare", "", "Comma separated kit slugs to compare")
	flag.BoolVar(&opts.export, "export", false, "Export the enriched catalog to -output")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API instead of printing results")

	catalogSource := flag.String("catalog", defaultCfg.CatalogSource, "Catalog JSON file path or http(s) URL")
	outputFile := flag.String("output", defaultCfg.OutputFile, "Export file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Export format: csv, json, or dual")
	workers := flag.Int("workers", defaultCfg.Workers, "Derivation workers")
	listenAddr := flag.String("listen", defaultCfg.ListenAddr, "API listen address")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	prefsDir := flag.String("prefs-dir", defaultCfg.PrefsDir, "Preference store directory (empty keeps preferences in memory)")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "Catalog request timeout")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum retry attempts for the catalog request")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		if err := cfg.LoadFile(opts.configPath); err != nil {
			slog.Error("loading configuration", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("invalid environment", slog.Any("error", err))
		os.Exit(1)
	}

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "catalog":
			cfg.CatalogSource = *catalogSource
		case "output":
			cfg.OutputFile = *outputFile
		case "format":
			cfg.OutputFormat = strings.ToLower(*outputFormat)
		case "workers":
			cfg.Workers = *workers
		case "listen":
			cfg.ListenAddr = *listenAddr
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "prefs-dir":
			cfg.PrefsDir = *prefsDir
		case "timeout":
			cfg.Timeout = *timeout
		case "max-retries":
			cfg.MaxRetries = *maxRetries
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if cfg.Verbose {
		level.Set(slog.LevelDebug)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("kitfinder failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	registry := prometheus.NewRegistry()
	loaderMetrics := loader.NewMetrics(registry)
	pipelineMetrics := pipeline.NewMetrics(registry)

	slog.Info("loading catalog",
		slog.String("source", cfg.CatalogSource),
		slog.Int("workers", cfg.Workers),
	)

	l, err := loader.NewLoader(cfg, loaderMetrics)
	if err != nil {
		return fmt.Errorf("initialising loader: %w", err)
	}
	result, err := l.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	kits, stats, err := derive(ctx, cfg, opts.export, pipelineMetrics, result)
	if err != nil {
		return err
	}
	printSummary(result, stats, cfg, opts.export)

	if opts.serve {
		return serve(ctx, cfg, registry, kits)
	}
	return browse(cfg, opts, kits)
}

// derive runs the raw records through the pipeline, exporting when asked.
func derive(ctx context.Context, cfg *config.Config, export bool, metrics *pipeline.Metrics, result *models.LoadResult) ([]models.Kit, map[string]interface{}, error) {
	var writer pipeline.OutputWriter
	if export {
		w, err := pipeline.NewOutputWriter(cfg.OutputFormat, cfg.OutputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("creating writer: %w", err)
		}
		writer = w
		defer func() {
			if err := writer.Close(); err != nil {
				slog.Error("close writer", slog.Any("error", err))
			}
		}()
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.SetMetrics(metrics)
	p.Start(cfg.Workers)
	if cfg.Verbose {
		p.StartMetricsReporting(time.Second)
	}

	if err := p.Process(result.Raw...); err != nil {
		return nil, nil, fmt.Errorf("processing catalog: %w", err)
	}
	if err := p.Close(); err != nil {
		return nil, nil, fmt.Errorf("pipeline shutdown failed: %w", err)
	}
	if writer != nil {
		if err := writer.Validate(); err != nil {
			return nil, nil, fmt.Errorf("output validation failed: %w", err)
		}
		if dual, ok := writer.(*pipeline.DualWriter); ok {
			slog.Info("export written", slog.Any("files", dual.Paths()))
		}
	}
	return p.Kits(), p.GetMetrics(), nil
}

// browse applies the query, quiz and compare flags and prints the result.
func browse(cfg *config.Config, opts options, kits []models.Kit) error {
	prefs, err := store.Open(cfg.PrefsDir, slog.Default())
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			slog.Error("close preference store", slog.Any("error", err))
		}
	}()

	st := catalog.New(kits, catalog.Options{
		Preferences:         prefs,
		CompareLimit:        cfg.CompareLimit,
		RecommendationLimit: cfg.RecommendationLimit,
		Logger:              slog.Default(),
	})

	if opts.query != "" {
		values, err := url.ParseQuery(strings.TrimPrefix(opts.query, "?"))
		if err != nil {
			return fmt.Errorf("parsing query: %w", err)
		}
		st.Restore(values)
	}

	answered := 0
	for _, v := range []string{opts.quizCoverage, opts.quizDevices, opts.quizUse} {
		if v != "" {
			answered++
		}
	}
	switch answered {
	case 0:
	case 3:
		st.ApplyQuizResult(models.NewQuizAnswer(opts.quizCoverage, opts.quizDevices, opts.quizUse))
	default:
		return errors.New("quiz needs -quiz-coverage, -quiz-devices and -quiz-use together")
	}

	for _, slug := range strings.Split(opts.compare, ",") {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, err := st.ToggleCompare(slug); err != nil {
			return fmt.Errorf("compare: %w", err)
		}
	}

	return printResults(st)
}

// serve runs the API and, when configured, the metrics endpoint until ctx
// is cancelled.
func serve(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, kits []models.Kit) error {
	api, err := server.NewServer(kits, server.Options{
		Logger:              slog.Default(),
		Metrics:             server.NewMetrics(registry),
		CacheSize:           cfg.CacheSize,
		RateLimit:           cfg.RateLimit,
		RateBurst:           cfg.RateBurst,
		CompareLimit:        cfg.CompareLimit,
		RecommendationLimit: cfg.RecommendationLimit,
	})
	if err != nil {
		return fmt.Errorf("initialising server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx, cfg.ListenAddr)
	})

	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, draining connections")
	}()
	return g.Wait()
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
