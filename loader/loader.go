// Package loader fetches the raw kit catalog from a URL or a local file.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/routerhaus/kitfinder/config"
	"github.com/routerhaus/kitfinder/models"
)

// Loader reads the catalog once per Load call. Remote sources go through a
// colly collector with retry and capped exponential backoff.
type Loader struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	mu           sync.Mutex
	current      *attempt
	requestCount int
	retryCount   int
	errorCount   int
	errorsByType map[string]int
}

type attempt struct {
	body   []byte
	status int
	start  time.Time
	err    error
}

// NewLoader builds a loader for cfg.CatalogSource. metrics may be nil.
func NewLoader(cfg *config.Config, metrics *Metrics) (*Loader, error) {
	l := &Loader{
		cfg:          cfg,
		Metrics:      metrics,
		errorsByType: make(map[string]int),
	}
	if !cfg.IsRemote() {
		return l, nil
	}

	parsed, err := url.Parse(cfg.CatalogSource)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("catalog url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	l.collector = collector
	l.configureHandlers()
	return l, nil
}

func (l *Loader) configureHandlers() {
	l.collector.OnRequest(func(r *colly.Request) {
		l.mu.Lock()
		l.requestCount++
		l.mu.Unlock()
		l.Metrics.IncRequest("started")
		slog.Debug("fetching catalog", slog.String("url", r.URL.String()))
	})

	l.collector.OnResponse(func(r *colly.Response) {
		a := l.active()
		if a == nil {
			return
		}
		a.status = r.StatusCode
		a.body = bytes.Clone(r.Body)
		l.Metrics.ObserveDuration(time.Since(a.start))
		l.Metrics.IncRequest("completed")
	})

	l.collector.OnError(func(r *colly.Response, err error) {
		a := l.active()
		if a == nil {
			return
		}
		if r != nil {
			a.status = r.StatusCode
		}
		a.err = err
		l.Metrics.ObserveDuration(time.Since(a.start))
	})
}

func (l *Loader) active() *attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Load reads and decodes the catalog. It fails when the source cannot be read
// or is not a JSON array; there is no partial result.
func (l *Loader) Load(ctx context.Context) (*models.LoadResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	var (
		body []byte
		err  error
	)
	if l.collector != nil {
		body, err = l.fetch(ctx)
	} else {
		body, err = l.readFile()
	}
	if err == nil {
		var raws []models.RawKit
		raws, err = DecodeCatalog(body)
		if err == nil {
			l.Metrics.AddItems(len(raws))
			slog.Info("catalog loaded",
				slog.String("source", l.cfg.CatalogSource),
				slog.Int("records", len(raws)),
				slog.Int("bytes", len(body)),
			)
			return l.result(start, raws, len(body)), nil
		}
		l.recordError(err)
	}
	return nil, err
}

func (l *Loader) result(start time.Time, raws []models.RawKit, n int) *models.LoadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	errs := make(map[string]int, len(l.errorsByType))
	for k, v := range l.errorsByType {
		errs[k] = v
	}
	return &models.LoadResult{
		Source:       l.cfg.CatalogSource,
		Raw:          raws,
		Bytes:        n,
		StartTime:    start,
		EndTime:      time.Now(),
		RequestCount: l.requestCount,
		RetryCount:   l.retryCount,
		ErrorCount:   l.errorCount,
		ErrorsByType: errs,
	}
}

func (l *Loader) readFile() ([]byte, error) {
	body, err := os.ReadFile(l.cfg.CatalogSource)
	if err != nil {
		classified := classifyFileError(err)
		l.recordError(classified)
		return nil, fmt.Errorf("read catalog: %w", classified)
	}
	return body, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	source := l.cfg.CatalogSource
	for try := 1; ; try++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a := &attempt{start: time.Now()}
		l.mu.Lock()
		l.current = a
		l.mu.Unlock()

		visitErr := l.collector.Visit(source)

		l.mu.Lock()
		l.current = nil
		l.mu.Unlock()

		err := a.err
		if err == nil {
			err = visitErr
		}
		if err == nil {
			return a.body, nil
		}

		classified := classifyError(err, a.status)
		if classified == nil {
			classified = err
		}
		category := l.recordError(classified)
		slog.Error("catalog request error",
			slog.String("url", source),
			slog.Int("status", a.status),
			slog.String("category", category),
			slog.Int("attempt", try),
			slog.Any("error", err),
		)

		if !retryable(classified) || try > l.cfg.MaxRetries {
			return nil, fmt.Errorf("fetch catalog %s: %w", source, classified)
		}

		delay := l.backoff(try)
		l.mu.Lock()
		l.retryCount++
		l.mu.Unlock()
		l.Metrics.IncRetries()
		slog.Debug("retrying catalog fetch", slog.Duration("delay", delay), slog.Int("attempt", try+1))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loader) recordError(err error) string {
	category := errorTypeLabel(err)
	l.mu.Lock()
	l.errorCount++
	l.errorsByType[category]++
	l.mu.Unlock()
	l.Metrics.IncError(category)
	return category
}

func (l *Loader) backoff(n int) time.Duration {
	if n <= 0 {
		n = 1
	}

	base := l.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(n-1))
	if max := l.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// DecodeCatalog parses a catalog body. Malformed records decode leniently;
// the body itself must be a JSON array.
func DecodeCatalog(body []byte) ([]models.RawKit, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptySource
	}
	if trimmed[0] != '[' {
		return nil, ErrInvalidCatalog
	}
	var raws []models.RawKit
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return raws, nil
}
