// Package pipeline derives raw catalog records into kits on a worker pool and
// optionally exports the enriched catalog.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/routerhaus/kitfinder/config"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

const bufferSize = 512

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(kits []*models.Kit) error
	Close() error
	Validate() error
}

type job struct {
	index int
	raw   models.RawKit
}

// Pipeline derives records concurrently. Results are slotted by submission
// index, so Kits returns them in input order whatever the scheduling.
type Pipeline struct {
	ctx       context.Context
	writer    OutputWriter
	resolver  *parser.BrandResolver
	jobCh     chan job
	batchSize int
	prom      *Metrics

	wg sync.WaitGroup

	resultsMu sync.Mutex
	results   map[int]models.Kit

	metrics metrics

	mu     sync.Mutex // guards closed/err/next/kits
	closed bool
	err    error
	next   int
	kits   []models.Kit

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline. writer may be nil when nothing is exported.
func NewPipeline(ctx context.Context, writer OutputWriter, cfg *config.Config) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	batchSize := 64
	if cfg != nil && cfg.BatchSize > 0 {
		batchSize = cfg.BatchSize
	}
	p := &Pipeline{
		ctx:       ctx,
		writer:    writer,
		resolver:  parser.DefaultBrands,
		jobCh:     make(chan job, bufferSize),
		batchSize: batchSize,
		results:   make(map[int]models.Kit),
		metrics:   newMetrics(),
		shutdown:  make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			p.signalShutdown()
		case <-p.shutdown:
		}
	}()
	return p
}

// SetResolver replaces the brand rules used for derivation. Call before Start.
func (p *Pipeline) SetResolver(r *parser.BrandResolver) {
	if r != nil {
		p.resolver = r
	}
}

// SetMetrics attaches Prometheus counters. Call before Start.
func (p *Pipeline) SetMetrics(m *Metrics) {
	p.prom = m
}

// Start launches worker goroutines.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues raw records in order.
func (p *Pipeline) Process(raws ...models.RawKit) error {
	if len(raws) == 0 {
		return nil
	}

	for _, raw := range raws {
		p.mu.Lock()
		if p.err != nil {
			err := p.err
			p.mu.Unlock()
			return err
		}
		if p.closed {
			p.mu.Unlock()
			return ErrPipelineClosed
		}
		index := p.next
		p.next++
		p.mu.Unlock()

		if err := p.enqueue(job{index: index, raw: raw}); err != nil {
			return err
		}
	}
	return nil
}

// Close waits for workers to finish, resolves duplicate slugs and writes the
// catalog to the output writer in input order.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		close(p.jobCh)
	})
	p.wg.Wait()
	defer p.signalShutdown()

	p.mu.Lock()
	if p.kits == nil {
		p.kits = p.collect()
	}
	kits := p.kits
	p.mu.Unlock()

	if err := p.Err(); err != nil {
		return err
	}
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("pipeline cancelled: %w", err)
	}
	if p.writer != nil {
		if err := p.flush(kits); err != nil {
			p.setErr(err)
			return err
		}
	}
	return nil
}

// Kits returns the derived catalog. It is empty until Close returns.
func (p *Pipeline) Kits() []models.Kit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kits
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics := p.GetMetrics()
				processed := metrics["processed_kits"].(int64)
				validation := metrics["validation_errors"].(map[string]int)
				slog.Debug("pipeline progress",
					slog.Int64("processed", processed),
					slog.Int("duplicate_slugs", validation["duplicate_slug"]),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	for j := range p.jobCh {
		kit := p.resolver.Derive(j.raw)

		p.resultsMu.Lock()
		p.results[j.index] = kit
		p.resultsMu.Unlock()

		p.metrics.incrementProcessed()
		p.prom.IncDerived()
	}
}

// collect orders the results and gives repeated slugs a numeric suffix.
// The first kit keeps the plain slug; later ones get -2, -3 and so on,
// skipping any slug another kit already has.
func (p *Pipeline) collect() []models.Kit {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	kits := make([]models.Kit, 0, len(p.results))
	for i := 0; i < p.next; i++ {
		if kit, ok := p.results[i]; ok {
			kits = append(kits, kit)
		}
	}

	taken := make(map[string]struct{}, len(kits))
	for _, k := range kits {
		taken[k.Slug] = struct{}{}
	}
	claimed := make(map[string]struct{}, len(kits))
	for i := range kits {
		slug := kits[i].Slug
		if _, dup := claimed[slug]; !dup {
			claimed[slug] = struct{}{}
			continue
		}
		for n := 2; ; n++ {
			candidate := slug + "-" + strconv.Itoa(n)
			if _, used := taken[candidate]; used {
				continue
			}
			taken[candidate] = struct{}{}
			claimed[candidate] = struct{}{}
			kits[i].Slug = candidate
			break
		}
		p.metrics.addValidation("duplicate_slug")
		p.prom.IncDuplicate()
		slog.Debug("duplicate slug renamed", slog.String("slug", slug), slog.String("renamed", kits[i].Slug))
	}
	return kits
}

func (p *Pipeline) flush(kits []models.Kit) error {
	batch := make([]*models.Kit, 0, p.batchSize)
	for i := range kits {
		batch = append(batch, &kits[i])
		if len(batch) >= p.batchSize {
			if err := p.writer.Write(batch); err != nil {
				return fmt.Errorf("write batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := p.writer.Write(batch); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) enqueue(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case p.jobCh <- j:
		return nil
	}
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	p.err = err
	p.closed = true
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_kits":    m.processed,
		"validation_errors": copyValidation,
	}
}
