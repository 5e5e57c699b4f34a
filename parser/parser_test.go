package parser

import (
	"regexp"
	"testing"

	"github.com/routerhaus/kitfinder/models"
)

func TestCoverageBucket(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "missing", input: 0, expected: models.CoverageSmall},
		{name: "small", input: 1200, expected: models.CoverageSmall},
		{name: "small boundary", input: 1800, expected: models.CoverageSmall},
		{name: "just above small", input: 1801, expected: models.CoverageMedium},
		{name: "medium boundary", input: 3000, expected: models.CoverageMedium},
		{name: "large", input: 3001, expected: models.CoverageLarge},
		{name: "negative", input: -5, expected: models.CoverageSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverageBucket(tt.input); got != tt.expected {
				t.Errorf("CoverageBucket(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWanTier(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{input: 0, expected: models.WanTier1G},
		{input: 1000, expected: models.WanTier1G},
		{input: 1001, expected: models.WanTier2G5},
		{input: 2500, expected: models.WanTier2G5},
		{input: 2501, expected: models.WanTier5G},
		{input: 5000, expected: models.WanTier5G},
		{input: 10000, expected: models.WanTier10G},
	}

	for _, tt := range tests {
		if got := WanTier(tt.input); got != tt.expected {
			t.Errorf("WanTier(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPriceBucket(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{input: 0, expected: models.PriceUnder150},
		{input: 149.99, expected: models.PriceUnder150},
		{input: 150, expected: models.Price150to299},
		{input: 299.99, expected: models.Price150to299},
		{input: 300, expected: models.Price300to599},
		{input: 599, expected: models.Price300to599},
		{input: 600, expected: models.Price600Plus},
	}

	for _, tt := range tests {
		if got := PriceBucket(tt.input); got != tt.expected {
			t.Errorf("PriceBucket(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestResolveBrand(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{model: "TP-Link Deco XE75", expected: "TP-Link"},
		{model: "TP‑Link Archer AX55", expected: "TP-Link"},
		{model: "tplink Deco M5", expected: "TP-Link"},
		{model: "ROG Rapture GT-AX11000", expected: "ASUS"},
		{model: "asus ZenWiFi XT8", expected: "ASUS"},
		{model: "Orbi RBK863S", expected: "NETGEAR"},
		{model: "Nighthawk RAX50", expected: "NETGEAR"},
		{model: "Velop MX5300", expected: "Linksys"},
		{model: "Amazon eero Pro 6E", expected: "eero"},
		{model: "Nest Wifi Pro", expected: "Google"},
		{model: "Dream Machine Pro", expected: "Ubiquiti"},
		{model: "D–Link EAGLE PRO", expected: "D-Link"},
		{model: "Zyxel Multy M1", expected: "Zyxel"},
		{model: "Gl.iNet Flint 2", expected: "GliNet"},
		{model: "Huawei AX3", expected: "Huawei"},
		{model: "  Huawei AX3", expected: models.UnknownBrand},
		{model: "Huawei\tAX3", expected: "Huawei"},
		{model: "360 T7", expected: models.UnknownBrand},
		{model: "", expected: models.UnknownBrand},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := DefaultBrands.Resolve(tt.model); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.model, got, tt.expected)
			}
		})
	}
}

func TestResolveBrandFirstMatchWins(t *testing.T) {
	first := NewBrandResolver([]BrandRule{
		{Pattern: regexp.MustCompile(`(?i)^ASUS`), Brand: "ASUS"},
		{Pattern: regexp.MustCompile(`(?i)ROG`), Brand: "Republic of Gamers"},
	})
	swapped := NewBrandResolver([]BrandRule{
		{Pattern: regexp.MustCompile(`(?i)ROG`), Brand: "Republic of Gamers"},
		{Pattern: regexp.MustCompile(`(?i)^ASUS`), Brand: "ASUS"},
	})

	model := "ASUS ROG Rapture GT6"
	for i := 0; i < 3; i++ {
		if got := first.Resolve(model); got != "ASUS" {
			t.Fatalf("first resolver = %q, want ASUS", got)
		}
		if got := swapped.Resolve(model); got != "Republic of Gamers" {
			t.Fatalf("swapped resolver = %q, want Republic of Gamers", got)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "ASUS-ZenWiFi XT8 (2-pack)", expected: "asus-zenwifi-xt8-2-pack"},
		{input: "TP-Link-Deco X55 Pro", expected: "tp-link-deco-x55-pro"},
		{input: "eero-eero Pro 6E", expected: "eero-eero-pro-6e"},
		{input: "--Weird__Name--", expected: "weird__name"},
		{input: "Wi‑Fi 7", expected: "wi-fi-7"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDeriveDefaults(t *testing.T) {
	kit := Derive(models.RawKit{})

	if kit.Brand != models.UnknownBrand {
		t.Fatalf("brand = %q, want Unknown", kit.Brand)
	}
	if kit.CoverageBucket != models.CoverageSmall || kit.WanTier != models.WanTier1G || kit.PriceBucket != models.PriceUnder150 {
		t.Fatalf("buckets = %q/%q/%q", kit.CoverageBucket, kit.WanTier, kit.PriceBucket)
	}
	if kit.AccessSupport == nil || kit.PrimaryUse == nil {
		t.Fatalf("lists should default to empty, got %v / %v", kit.AccessSupport, kit.PrimaryUse)
	}
	if kit.DeviceLoad != models.DeviceLoadLight {
		t.Fatalf("device load = %q, want %q", kit.DeviceLoad, models.DeviceLoadLight)
	}
	if kit.MeshEco != "" {
		t.Fatalf("mesh eco should stay empty for non-mesh kits, got %q", kit.MeshEco)
	}
	if kit.Slug != "unknown" {
		t.Fatalf("slug = %q, want unknown", kit.Slug)
	}
}

func TestDeriveMeshAndDeviceLoad(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawKit
		wantEco     string
		wantLoad    string
		wantPriceBk string
	}{
		{
			name:        "asus mesh gaming",
			raw:         models.RawKit{Model: "ASUS ZenWiFi Pro ET12", MeshReady: true, PrimaryUse: models.StringList{"Gaming", "Streaming"}, PriceUSD: 479.99},
			wantEco:     "AiMesh",
			wantLoad:    models.DeviceLoadMid,
			wantPriceBk: models.Price300to599,
		},
		{
			name:        "unknown brand mesh falls back to easymesh",
			raw:         models.RawKit{Model: "Cudy M3000", MeshReady: true, MSRP: 129},
			wantEco:     "EasyMesh",
			wantLoad:    models.DeviceLoadLight,
			wantPriceBk: models.PriceUnder150,
		},
		{
			name:        "explicit values are kept",
			raw:         models.RawKit{Model: "Orbi 970", MeshReady: true, MeshEco: "Orbi Wi-Fi 7", DeviceLoad: models.DeviceLoadHeavy, PriceUSD: 0, MSRP: 1699},
			wantEco:     "Orbi Wi-Fi 7",
			wantLoad:    models.DeviceLoadHeavy,
			wantPriceBk: models.Price600Plus,
		},
		{
			name:        "explicit eco kept without mesh",
			raw:         models.RawKit{Model: "Linksys E8450", MeshEco: "Velop"},
			wantEco:     "Velop",
			wantLoad:    models.DeviceLoadLight,
			wantPriceBk: models.PriceUnder150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kit := Derive(tt.raw)
			if kit.MeshEco != tt.wantEco {
				t.Errorf("meshEco = %q, want %q", kit.MeshEco, tt.wantEco)
			}
			if kit.DeviceLoad != tt.wantLoad {
				t.Errorf("deviceLoad = %q, want %q", kit.DeviceLoad, tt.wantLoad)
			}
			if kit.PriceBucket != tt.wantPriceBk {
				t.Errorf("priceBucket = %q, want %q", kit.PriceBucket, tt.wantPriceBk)
			}
		})
	}
}

func TestDeriveCarriesRawFields(t *testing.T) {
	raw := models.RawKit{
		Model:           "Deco BE85",
		CoverageSqft:    9600,
		MaxWanSpeedMbps: 10000,
		WifiStandard:    "7",
		Reviews:         &models.Reviews{Score: 4.4},
	}
	kit := DefaultBrands.Derive(raw)

	if kit.Brand != "Deco" {
		t.Fatalf("brand = %q, want first-word fallback Deco", kit.Brand)
	}
	if kit.WifiGen != "7" || kit.WifiStandard != "7" {
		t.Fatalf("wifi = %q/%q, want 7/7", kit.WifiGen, kit.WifiStandard)
	}
	if kit.CoverageBucket != models.CoverageLarge || kit.WanTier != models.WanTier10G {
		t.Fatalf("buckets = %q/%q", kit.CoverageBucket, kit.WanTier)
	}
	if kit.ReviewScore() != 4.4 {
		t.Fatalf("review score = %v, want 4.4", kit.ReviewScore())
	}
	if kit.Slug != "deco-deco-be85" {
		t.Fatalf("slug = %q", kit.Slug)
	}
}
