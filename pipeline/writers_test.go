package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/routerhaus/kitfinder/models"
)

func sampleKit() *models.Kit {
	return &models.Kit{
		Slug:            "tp-link-tp-link-deco-xe75",
		Brand:           "TP-Link",
		Model:           "TP-Link Deco XE75",
		CoverageSqft:    5500,
		MaxWanSpeedMbps: 1000,
		PriceUSD:        299.99,
		WifiStandard:    "6E",
		WifiGen:         "6E",
		MeshReady:       true,
		MeshEco:         "Deco",
		PrimaryUse:      []string{"Streaming", "Gaming"},
		AccessSupport:   []string{"Fiber", "Cable"},
		CoverageBucket:  models.CoverageLarge,
		WanTier:         models.WanTier1G,
		PriceBucket:     models.Price150to299,
		DeviceLoad:      models.DeviceLoadMid,
		Reviews:         &models.Reviews{Score: 4.5},
		Commerce:        &models.Commerce{BuyLink: "https://shop.example.test/xe75"},
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "kits.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]*models.Kit{sampleKit()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "slug" || len(records[0]) != len(csvHeader) {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := make(map[string]string, len(csvHeader))
	for i, col := range records[0] {
		row[col] = records[1][i]
	}
	checks := map[string]string{
		"slug":           "tp-link-tp-link-deco-xe75",
		"price_usd":      "299.99",
		"msrp":           "",
		"mesh_ready":     "true",
		"primary_use":    "Streaming;Gaming",
		"access_support": "Fiber;Cable",
		"review_score":   "4.5",
		"buy_link":       "https://shop.example.test/xe75",
		"wan_tier":       models.WanTier1G,
	}
	for col, want := range checks {
		if row[col] != want {
			t.Fatalf("%s = %q, want %q", col, row[col], want)
		}
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kits.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	second := sampleKit()
	second.Slug = "asus-asus-rt-ax86u-pro"
	if err := writer.Write([]*models.Kit{sampleKit(), second}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var slugs []string
	for scanner.Scan() {
		var decoded models.Kit
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		slugs = append(slugs, decoded.Slug)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if strings.Join(slugs, ",") != "tp-link-tp-link-deco-xe75,asus-asus-rt-ax86u-pro" {
		t.Fatalf("slugs = %v", slugs)
	}
}

func TestDualWriterWrite(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "csv name", filename: "kits.csv"},
		{name: "json name", filename: "kits.json"},
		{name: "no extension", filename: "kits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			csvPath := filepath.Join(dir, "kits.csv")
			jsonPath := filepath.Join(dir, "kits.json")

			writer, err := NewOutputWriter("dual", filepath.Join(dir, tt.filename))
			if err != nil {
				t.Fatalf("create dual writer: %v", err)
			}
			dual, ok := writer.(*DualWriter)
			if !ok {
				t.Fatalf("writer = %T, want *DualWriter", writer)
			}
			if got := dual.Paths(); len(got) != 2 || got[0] != csvPath || got[1] != jsonPath {
				t.Fatalf("paths = %v, want [%s %s]", got, csvPath, jsonPath)
			}

			if err := writer.Write([]*models.Kit{sampleKit()}); err != nil {
				t.Fatalf("write dual: %v", err)
			}
			if err := writer.Validate(); err != nil {
				t.Fatalf("validate dual: %v", err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("close dual: %v", err)
			}

			if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
				t.Fatalf("csv file missing or empty")
			}
			if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
				t.Fatalf("json file missing or empty")
			}
		})
	}
}

func TestDualWriterCloseReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewDualWriter(filepath.Join(dir, "kits"))
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	err = writer.Close()
	if err == nil {
		t.Fatalf("expected an error closing twice")
	}
	for _, name := range []string{"kits.csv", "kits.json"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("close error %q does not mention %s", err, name)
		}
	}
}

func TestNewOutputWriterUnsupported(t *testing.T) {
	if _, err := NewOutputWriter("xml", filepath.Join(t.TempDir(), "kits.xml")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
