package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/routerhaus/kitfinder/models"
)

var csvHeader = []string{
	"slug", "brand", "model", "wifi_standard", "coverage_sqft", "coverage_bucket",
	"max_wan_mbps", "wan_tier", "price_usd", "msrp", "price_bucket", "mesh_ready",
	"mesh_eco", "device_load", "primary_use", "access_support", "review_score", "buy_link",
}

// NewOutputWriter opens a writer for format: csv, json (JSONL) or dual. Dual
// writes .csv and .json files sharing filename's base name.
func NewOutputWriter(format, filename string) (OutputWriter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONWriter(filename)
	case "csv":
		return NewCSVWriter(filename)
	case "dual":
		return NewDualWriter(filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// CSVWriter writes records to CSV.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func csvRecord(k *models.Kit) []string {
	buyLink := ""
	if k.Commerce != nil {
		buyLink = k.Commerce.BuyLink.String()
	}
	review := ""
	if k.Reviews != nil {
		review = formatNumber(k.ReviewScore())
	}
	return []string{
		k.Slug,
		k.Brand,
		k.Model,
		k.WifiStandard,
		formatNumber(k.CoverageSqft),
		k.CoverageBucket,
		formatNumber(k.MaxWanSpeedMbps),
		k.WanTier,
		formatNumber(k.PriceUSD),
		formatNumber(k.MSRP),
		k.PriceBucket,
		strconv.FormatBool(k.MeshReady),
		k.MeshEco,
		k.DeviceLoad,
		strings.Join(k.PrimaryUse, ";"),
		strings.Join(k.AccessSupport, ";"),
		review,
		buyLink,
	}
}

// Write appends kits to the CSV output.
func (cw *CSVWriter) Write(kits []*models.Kit) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, kit := range kits {
		if err := cw.writer.Write(csvRecord(kit)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := os.Stat(cw.file.Name())
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends kits in JSONL format.
func (jw *JSONWriter) Write(kits []*models.Kit) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, kit := range kits {
		if err := jw.encoder.Encode(kit); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := os.Stat(jw.file.Name())
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
