package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

const catalogHTML = `
<html><body>
<table>
  <tr><th>Irrelevant</th><th>Columns</th></tr>
  <tr><td>not</td><td>a catalog</td></tr>
</table>
<table>
  <tr><th>Name</th><th>Set</th><th>SKU</th><th>Card Type</th><th>Price</th></tr>
  <tr><td>Lightning Bolt</td><td>M11</td><td>SKU-1</td><td>Regular</td><td>$2.20</td></tr>
  <tr><td>Lightning Bolt</td><td>M11</td><td>SKU-2</td><td>Foil</td><td>$8.00</td></tr>
  <tr><td>Juzám Djinn</td><td>ARN</td><td>SKU-3</td><td>Regular</td><td>$1,250.00</td></tr>
</table>
</body></html>`

func TestParseCatalogHTML(t *testing.T) {
	variants, err := ParseCatalog(catalogHTML, 0)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}

	bolt := variants[0]
	if bolt.NameOriginal != "Lightning Bolt" || bolt.SetCode != "M11" || bolt.SKU != "SKU-1" {
		t.Errorf("first variant = %+v", bolt)
	}
	if bolt.NameNormalized != "lightning bolt" {
		t.Errorf("NameNormalized = %q, want %q", bolt.NameNormalized, "lightning bolt")
	}
	if bolt.PriceCents != 220 {
		t.Errorf("PriceCents = %d, want 220", bolt.PriceCents)
	}

	djinn := variants[2]
	if djinn.NameNormalized != "juzam djinn" {
		t.Errorf("diacritic name normalized to %q, want %q", djinn.NameNormalized, "juzam djinn")
	}
	if djinn.PriceCents != 125000 {
		t.Errorf("thousands separator price = %d cents, want 125000", djinn.PriceCents)
	}
}

func TestParseCatalogCSV(t *testing.T) {
	csvText := "Card Name,Set,SKU,Type,Base Price\nBrainstorm,EMA,SKU-10,Regular,1.50\nBrainstorm,ICE,SKU-11,Regular,0.99\n"

	variants, err := ParseCatalog(csvText, 0)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[0].SetCode != "EMA" || variants[0].PriceCents != 150 {
		t.Errorf("first variant = %+v", variants[0])
	}
	if variants[1].SetCode != "ICE" || variants[1].PriceCents != 99 {
		t.Errorf("second variant = %+v", variants[1])
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		maxBytes int
	}{
		{"empty input", "", 0},
		{"no recognizable header", "<table><tr><th>Foo</th></tr><tr><td>bar</td></tr></table>", 0},
		{"csv without required columns", "a,b,c\n1,2,3\n", 0},
		{"oversized input", strings.Repeat("x", 100), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(tt.raw, tt.maxBytes)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *CatalogParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *CatalogParseError, got %T", err)
			}
		})
	}
}

func TestParseCatalogErrorCarriesSnippet(t *testing.T) {
	raw := "<table><tr><th>Unexpected</th></tr><tr><td>layout</td></tr></table>"
	_, err := ParseCatalog(raw, 0)

	var parseErr *CatalogParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *CatalogParseError, got %v", err)
	}
	if parseErr.Snippet == "" {
		t.Error("parse error should carry a diagnostic snippet of the input")
	}
	if !strings.Contains(parseErr.Error(), "name/set/sku/type/price") {
		t.Errorf("error message %q should name the missing columns", parseErr.Error())
	}
}

func TestPriceToCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"$2.20", 220, false},
		{"2.20", 220, false},
		{"$1,234.56", 123456, false},
		{"0.999", 100, false}, // fractional cents round
		{"3", 300, false},
		{"2.20 USD", 220, false},
		{"2.20 usd", 220, false},
		{"USD 2.20", 220, false},
		{"free", 0, true},
		{"", 0, true},
		{"-1.00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := PriceToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PriceToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PriceToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeduplicateVariants(t *testing.T) {
	variants := []models.CardVariant{
		{NameOriginal: "Brainstorm", NameNormalized: "brainstorm", SetCode: "ICE", VariantType: "Regular", SKU: "A", PriceCents: 150},
		{NameOriginal: "Brainstorm", NameNormalized: "brainstorm", SetCode: "ICE", VariantType: "Regular", SKU: "B", PriceCents: 99},
		{NameOriginal: "Brainstorm", NameNormalized: "brainstorm", SetCode: "ICE", VariantType: "Regular", SKU: "C", PriceCents: 99},
		{NameOriginal: "Brainstorm", NameNormalized: "brainstorm", SetCode: "EMA", VariantType: "Regular", SKU: "D", PriceCents: 120},
		{NameOriginal: "Brainstorm", NameNormalized: "brainstorm", SetCode: "ICE", VariantType: "Foil", SKU: "E", PriceCents: 900},
	}

	deduped := DeduplicateVariants(variants)
	if len(deduped) != 3 {
		t.Fatalf("expected 3 surviving variants, got %d: %+v", len(deduped), deduped)
	}

	// The ICE/Regular group keeps the cheapest; B wins over the equally
	// priced C because it was seen first.
	if deduped[0].SKU != "B" || deduped[0].PriceCents != 99 {
		t.Errorf("ICE Regular survivor = %+v, want SKU B at 99 cents", deduped[0])
	}
	if deduped[1].SKU != "D" {
		t.Errorf("EMA survivor = %+v, want SKU D", deduped[1])
	}
	if deduped[2].SKU != "E" {
		t.Errorf("Foil survivor = %+v, want SKU E", deduped[2])
	}
}
