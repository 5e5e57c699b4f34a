package catalog

import (
	"testing"

	"github.com/routerhaus/kitfinder/facet"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/ranking"
)

func TestEncodeQuery(t *testing.T) {
	sel := facet.NewSelection()
	sel.Add("brand", "TP-Link")
	sel.Add("brand", "ASUS")
	sel.Add("meshReady", "Yes")
	sel.Add("wifiGen", "7")
	sel.Remove("wifiGen", "7")

	got := EncodeQuery(ranking.PriceAsc, sel).Encode()
	want := "f_brand=ASUS%2CTP-Link&f_meshReady=Yes&sort=price-asc"
	if got != want {
		t.Fatalf("EncodeQuery = %q, want %q", got, want)
	}
}

func TestQueryRoundTripThroughString(t *testing.T) {
	sel := facet.NewSelection()
	sel.Add("wanTier", models.WanTier1G)
	sel.Add("wanTier", models.WanTierSFP)
	sel.Add("priceBucket", models.Price150to299)
	sel.Add("coverageBucket", models.CoverageMedium)
	sel.Add("primaryUse", "Work From Home")
	sel.Add("primaryUse", "50%25 off")

	for _, key := range ranking.Keys {
		raw := EncodeQuery(key, sel).Encode()
		sort, ok, got, err := ParseQuery(raw, facet.Default)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", raw, err)
		}
		if !ok || sort != key {
			t.Fatalf("sort = %q, %v, want %q", sort, ok, key)
		}
		if !got.Equal(sel) {
			t.Fatalf("selection = %v, want %v", got, sel)
		}
	}
}

func TestDecodeQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSort ranking.SortKey
		wantOK   bool
		want     map[string][]string
	}{
		{
			name:     "plain",
			raw:      "?sort=wan-desc&f_brand=ASUS,eero",
			wantSort: ranking.WanDesc,
			wantOK:   true,
			want:     map[string][]string{"brand": {"ASUS", "eero"}},
		},
		{
			name:     "double encoded link",
			raw:      "sort=relevance&f_brand=ASUS%252CTP-Link&f_wanTier=%25E2%2589%25A41G",
			wantSort: ranking.Relevance,
			wantOK:   true,
			want:     map[string][]string{"brand": {"ASUS", "TP-Link"}, "wanTier": {models.WanTier1G}},
		},
		{
			name:     "double encoded spaces",
			raw:      "f_primaryUse=Work%2520From%2520Home",
			wantSort: ranking.Relevance,
			wantOK:   false,
			want:     map[string][]string{"primaryUse": {"Work From Home"}},
		},
		{
			name:     "literal percent escape kept",
			raw:      "f_primaryUse=50%2525%20off",
			wantSort: ranking.Relevance,
			wantOK:   false,
			want:     map[string][]string{"primaryUse": {"50%25 off"}},
		},
		{
			name:     "unknown facet and empty items",
			raw:      "f_color=red&f_meshReady=,Yes,,",
			wantSort: ranking.Relevance,
			wantOK:   false,
			want:     map[string][]string{"meshReady": {"Yes"}},
		},
		{
			name:     "unknown sort",
			raw:      "sort=cheapest",
			wantSort: ranking.Relevance,
			wantOK:   false,
			want:     map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sort, ok, sel, err := ParseQuery(tt.raw, facet.Default)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			if sort != tt.wantSort || ok != tt.wantOK {
				t.Fatalf("sort = %q, %v, want %q, %v", sort, ok, tt.wantSort, tt.wantOK)
			}
			want := facet.NewSelection()
			for k, vs := range tt.want {
				for _, v := range vs {
					want.Add(k, v)
				}
			}
			if !sel.Equal(want) {
				t.Fatalf("selection = %v, want %v", sel, want)
			}
		})
	}
}

func TestParseQueryRejectsMalformedInput(t *testing.T) {
	if _, _, _, err := ParseQuery("f_brand=%zz", facet.Default); err == nil {
		t.Fatalf("expected an error for a bad escape")
	}
}
