package services

import (
	"strings"
	"testing"
	"time"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

func scenarioCatalog() *Catalog {
	return NewCatalog([]models.CardVariant{
		{NameOriginal: "Lightning Bolt", SetCode: "M11", SKU: "SKU-BOLT", VariantType: "Regular", PriceCents: 220},
		{NameOriginal: "Black Lotus", SetCode: "LEA", SKU: "SKU-LOTUS", VariantType: "Regular", PriceCents: 220},
	}, "test", time.Unix(0, 0))
}

func TestExportEndToEnd(t *testing.T) {
	catalog := scenarioCatalog()
	entries := ParseDecklist("4 Lightning Bolt (M11)\n1 Black Lotus")
	matches := MatchAll(entries, catalog, models.DefaultMatchConfig())

	for i, m := range matches {
		if m.Status != models.StatusAutoMatched {
			t.Fatalf("entry %d status = %s, want auto_matched", i, m.Status)
		}
	}

	var buf strings.Builder
	if err := WriteExportCSV(&buf, matches); err != nil {
		t.Fatalf("WriteExportCSV() error = %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "Card Name,Set,SKU,Card Type,Quantity,Base Price" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Lightning Bolt,M11,SKU-BOLT,Regular,4,$2.20" {
		t.Errorf("first row = %q", lines[1])
	}
	if lines[2] != "Black Lotus,LEA,SKU-LOTUS,Regular,1,$2.20" {
		t.Errorf("second row = %q", lines[2])
	}
	if lines[3] != "" {
		t.Errorf("expected blank separator before summary, got %q", lines[3])
	}
	if lines[4] != "Total Regular,5" {
		t.Errorf("summary quantity line = %q, want 5 Regular cards", lines[4])
	}
	if lines[5] != "Grand Total,$10.80" {
		t.Errorf("grand total line = %q, want $10.80", lines[5])
	}
}

func TestBuildExportRowsAggregates(t *testing.T) {
	catalog := scenarioCatalog()
	entries := ParseDecklist("2 Lightning Bolt\n2 Lightning Bolt\n1 Black Lotus")
	matches := MatchAll(entries, catalog, models.DefaultMatchConfig())

	rows := BuildExportRows(matches)
	if len(rows) != 2 {
		t.Fatalf("expected duplicate lines to aggregate into 2 rows, got %d", len(rows))
	}
	if rows[0].Qty != 4 {
		t.Errorf("aggregated Lightning Bolt qty = %d, want 4", rows[0].Qty)
	}
}

func TestBuildExportRowsSkipsExcludedAndUnresolved(t *testing.T) {
	catalog := scenarioCatalog()
	entries := ParseDecklist("4 Lightning Bolt\n\nSIDEBOARD:\n1 Black Lotus\n2 No Such Card")
	matches := MatchAll(entries, catalog, models.DefaultMatchConfig())

	rows := BuildExportRows(matches)
	if len(rows) != 1 {
		t.Fatalf("expected only the included resolved entry, got %d rows: %+v", len(rows), rows)
	}
	if rows[0].CardName != "Lightning Bolt" {
		t.Errorf("row = %+v, want Lightning Bolt only", rows[0])
	}
}

func TestCentsToDollars(t *testing.T) {
	tests := []struct {
		cents int
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{220, "$2.20"},
		{1080, "$10.80"},
		{123456, "$1234.56"},
		{-99, "-$0.99"},
	}

	for _, tt := range tests {
		if got := CentsToDollars(tt.cents); got != tt.want {
			t.Errorf("CentsToDollars(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
