package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/routerhaus/kitfinder/models"
)

// DualWriter exports every batch as CSV and JSONL side by side. Both files
// share the base name of the requested output, so "out/kits", "out/kits.csv"
// and "out/kits.json" all produce out/kits.csv and out/kits.json.
type DualWriter struct {
	mu      sync.Mutex
	paths   []string
	outputs []OutputWriter
}

// NewDualWriter opens the CSV and JSONL files derived from filename.
func NewDualWriter(filename string) (*DualWriter, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	csvPath, jsonPath := base+".csv", base+".json"

	csvWriter, err := NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("csv output: %w", err)
	}
	jsonWriter, err := NewJSONWriter(jsonPath)
	if err != nil {
		_ = csvWriter.Close()
		return nil, fmt.Errorf("json output: %w", err)
	}

	return &DualWriter{
		paths:   []string{csvPath, jsonPath},
		outputs: []OutputWriter{csvWriter, jsonWriter},
	}, nil
}

// Paths returns the CSV and JSONL file paths, in that order.
func (dw *DualWriter) Paths() []string {
	return append([]string(nil), dw.paths...)
}

// Write sends kits to each output in turn and stops at the first failure.
func (dw *DualWriter) Write(kits []*models.Kit) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	for i, out := range dw.outputs {
		if err := out.Write(kits); err != nil {
			return fmt.Errorf("write %s: %w", dw.paths[i], err)
		}
	}
	return nil
}

// Close closes every output, even after a failure.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.each(OutputWriter.Close, "close")
}

// Validate checks both files.
func (dw *DualWriter) Validate() error {
	return dw.each(OutputWriter.Validate, "validate")
}

func (dw *DualWriter) each(fn func(OutputWriter) error, op string) error {
	var errs []error
	for i, out := range dw.outputs {
		if err := fn(out); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", op, dw.paths[i], err))
		}
	}
	return errors.Join(errs...)
}
