package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/routerhaus/kitfinder/config"
	"github.com/routerhaus/kitfinder/models"
)

type mockWriter struct {
	mu          sync.Mutex
	batches     [][]*models.Kit
	closed      bool
	validateErr error
}

func (mw *mockWriter) Write(kits []*models.Kit) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	copyBatch := make([]*models.Kit, len(kits))
	copy(copyBatch, kits)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.mu.Lock()
	mw.closed = true
	mw.mu.Unlock()
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) totalWritten() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	total := 0
	for _, batch := range mw.batches {
		total += len(batch)
	}
	return total
}

func (mw *mockWriter) batchSizes() []int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	sizes := make([]int, 0, len(mw.batches))
	for _, batch := range mw.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}

type failingWriter struct{}

func (failingWriter) Write([]*models.Kit) error { return errors.New("disk full") }
func (failingWriter) Close() error              { return nil }
func (failingWriter) Validate() error           { return nil }

func raw(model string) models.RawKit {
	return models.RawKit{Model: models.Text(model), CoverageSqft: 2000, WifiStandard: "6"}
}

func TestPipelinePreservesInputOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(8)

	for i := 0; i < 200; i++ {
		if err := p.Process(raw("Cudy Model " + strconv.Itoa(i))); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	kits := p.Kits()
	if len(kits) != 200 {
		t.Fatalf("kits = %d, want 200", len(kits))
	}
	for i, k := range kits {
		if want := "Cudy Model " + strconv.Itoa(i); k.Model != want {
			t.Fatalf("kits[%d] = %q, want %q", i, k.Model, want)
		}
	}
	if got := writer.totalWritten(); got != 200 {
		t.Fatalf("written kits = %d, want 200", got)
	}
	if got := p.GetMetrics()["processed_kits"].(int64); got != 200 {
		t.Fatalf("processed = %d, want 200", got)
	}
}

func TestPipelineDeduplicatesSlugs(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	p := NewPipeline(context.Background(), nil, config.DefaultConfig())
	p.SetMetrics(metrics)
	p.Start(3)

	// "Cudy X-2" already owns cudy-cudy-x-2, so the second "Cudy X" skips it.
	if err := p.Process(raw("Cudy X"), raw("Cudy X-2"), raw("Cudy X"), raw("Cudy X")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{"cudy-cudy-x", "cudy-cudy-x-2", "cudy-cudy-x-3", "cudy-cudy-x-4"}
	kits := p.Kits()
	if len(kits) != len(want) {
		t.Fatalf("kits = %d, want %d", len(kits), len(want))
	}
	for i, k := range kits {
		if k.Slug != want[i] {
			t.Fatalf("slug[%d] = %q, want %q", i, k.Slug, want[i])
		}
	}

	validation := p.GetMetrics()["validation_errors"].(map[string]int)
	if validation["duplicate_slug"] != 2 {
		t.Fatalf("duplicate_slug = %d, want 2", validation["duplicate_slug"])
	}
	if got := testutil.ToFloat64(metrics.DuplicateSlugs); got != 2 {
		t.Fatalf("duplicate metric = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.DerivedTotal); got != 4 {
		t.Fatalf("derived metric = %v, want 4", got)
	}
}

func TestPipelineBatchFlushThreshold(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 64
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	for i := 0; i < 65; i++ {
		if err := p.Process(raw("Tenda " + strconv.Itoa(i))); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if len(sizes) != 2 {
		t.Fatalf("batch writes = %d, want 2", len(sizes))
	}
	if sizes[0] != 64 || sizes[1] != 1 {
		t.Fatalf("batch sizes = %v, want [64 1]", sizes)
	}
}

func TestPipelineProcessAfterClose(t *testing.T) {
	p := NewPipeline(context.Background(), nil, config.DefaultConfig())
	p.Start(1)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(raw("Zyxel")); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
	if kits := p.Kits(); len(kits) != 0 {
		t.Fatalf("kits = %d, want 0", len(kits))
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(ctx, &mockWriter{}, config.DefaultConfig())
	p.Start(1)
	if err := p.Process(raw("Arris")); err != nil {
		t.Fatalf("process: %v", err)
	}
	cancel()

	if err := p.Close(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPipelineWriterError(t *testing.T) {
	p := NewPipeline(context.Background(), failingWriter{}, config.DefaultConfig())
	p.Start(1)
	if err := p.Process(raw("MSI")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err == nil {
		t.Fatalf("expected write error")
	}
	if p.Err() == nil {
		t.Fatalf("expected Err to record the write failure")
	}
}
