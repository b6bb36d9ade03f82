package services

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

// DefaultMaxCatalogBytes caps how much raw catalog text the parser accepts.
// Vendor exports run a few megabytes; anything past this is a bad fetch.
const DefaultMaxCatalogBytes = 20 << 20

const parseErrorSnippetLen = 200

// CatalogParseError reports an unusable catalog source. Snippet carries the
// start of the offending input for operator inspection.
type CatalogParseError struct {
	Reason  string
	Snippet string
}

func (e *CatalogParseError) Error() string {
	if e.Snippet == "" {
		return "catalog parse: " + e.Reason
	}
	return fmt.Sprintf("catalog parse: %s (input starts with %q)", e.Reason, e.Snippet)
}

func newCatalogParseError(reason, input string) *CatalogParseError {
	snippet := strings.TrimSpace(input)
	if len(snippet) > parseErrorSnippetLen {
		snippet = snippet[:parseErrorSnippetLen]
	}
	return &CatalogParseError{Reason: reason, Snippet: snippet}
}

// columnAliases maps header cell text to the canonical column it represents.
var columnAliases = map[string]string{
	"name":       "name",
	"card name":  "name",
	"card":       "name",
	"set":        "set",
	"set code":   "set",
	"edition":    "set",
	"sku":        "sku",
	"item":       "sku",
	"product id": "sku",
	"type":       "type",
	"card type":  "type",
	"finish":     "type",
	"variant":    "type",
	"price":      "price",
	"base price": "price",
	"cost":       "price",
}

var requiredColumns = []string{"name", "set", "sku", "type", "price"}

// ParseCatalog parses raw vendor catalog text (an HTML page containing a
// listing table, or CSV) into card variants with normalized names computed.
// maxBytes <= 0 applies DefaultMaxCatalogBytes. The result is not yet
// deduplicated; see DeduplicateVariants.
func ParseCatalog(raw string, maxBytes int) ([]models.CardVariant, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCatalogBytes
	}
	if len(raw) > maxBytes {
		return nil, &CatalogParseError{
			Reason: fmt.Sprintf("input of %d bytes exceeds limit of %d bytes", len(raw), maxBytes),
		}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, newCatalogParseError("empty input", raw)
	}

	if strings.Contains(strings.ToLower(raw), "<table") {
		return parseHTMLCatalog(raw)
	}
	return parseCSVCatalog(raw)
}

// parseHTMLCatalog scans every table in the document and keeps the one with
// the most data rows whose header carries all required columns.
func parseHTMLCatalog(raw string) ([]models.CardVariant, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, newCatalogParseError("invalid HTML: "+err.Error(), raw)
	}

	var best []models.CardVariant
	found := false
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		columns := mapHeaderCells(headerCellTexts(rows.First()))
		if columns == nil {
			return
		}

		var variants []models.CardVariant
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if v, ok := buildVariant(cells, columns); ok {
				variants = append(variants, v)
			}
		})

		if !found || len(variants) > len(best) {
			best = variants
			found = true
		}
	})

	if !found {
		return nil, newCatalogParseError("no table with name/set/sku/type/price columns", raw)
	}
	return best, nil
}

func parseCSVCatalog(raw string) ([]models.CardVariant, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, newCatalogParseError("invalid CSV: "+err.Error(), raw)
	}
	if len(records) < 2 {
		return nil, newCatalogParseError("no data rows", raw)
	}

	columns := mapHeaderCells(records[0])
	if columns == nil {
		return nil, newCatalogParseError("no header row with name/set/sku/type/price columns", raw)
	}

	var variants []models.CardVariant
	for _, record := range records[1:] {
		if v, ok := buildVariant(record, columns); ok {
			variants = append(variants, v)
		}
	}
	return variants, nil
}

func headerCellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cell.Text())
	})
	return cells
}

// mapHeaderCells resolves header text to canonical column indexes, or nil if
// any required column is missing.
func mapHeaderCells(cells []string) map[string]int {
	columns := make(map[string]int)
	for i, cell := range cells {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := columnAliases[key]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil
		}
	}
	return columns
}

// buildVariant extracts one variant from a data row. Rows without a name or
// with an unparseable price are dropped rather than failing the whole parse.
func buildVariant(cells []string, columns map[string]int) (models.CardVariant, bool) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	name := field("name")
	if name == "" {
		return models.CardVariant{}, false
	}
	cents, err := PriceToCents(field("price"))
	if err != nil {
		return models.CardVariant{}, false
	}

	return models.CardVariant{
		NameOriginal:   name,
		NameNormalized: NormalizeName(name),
		SetCode:        strings.ToUpper(field("set")),
		SKU:            field("sku"),
		VariantType:    field("type"),
		PriceCents:     cents,
	}, true
}

// PriceToCents cleans a vendor price string ("$1,234.56", "2.20 USD") to an
// integer number of cents, rounding fractional cents. The currency code is
// accepted in any case, before or after the amount.
func PriceToCents(price string) (int, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(price))
	cleaned = strings.TrimSuffix(cleaned, "USD")
	cleaned = strings.TrimPrefix(cleaned, "USD")
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty price")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q", price)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative price %q", price)
	}
	return int(math.Round(value * 100)), nil
}

// DeduplicateVariants keeps exactly one variant per (normalized name, set,
// variant type) group: the cheapest, with first-seen order breaking ties and
// deciding the order of survivors.
func DeduplicateVariants(variants []models.CardVariant) []models.CardVariant {
	type slot struct{ index int }
	seen := make(map[string]slot, len(variants))
	result := make([]models.CardVariant, 0, len(variants))

	for _, v := range variants {
		key := v.NameNormalized + "|" + strings.ToUpper(v.SetCode) + "|" + strings.ToLower(v.VariantType)
		if s, ok := seen[key]; ok {
			if v.PriceCents < result[s.index].PriceCents {
				result[s.index] = v
			}
			continue
		}
		seen[key] = slot{index: len(result)}
		result = append(result, v)
	}
	return result
}
