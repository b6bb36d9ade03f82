package services

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

var exportHeader = []string{"Card Name", "Set", "SKU", "Card Type", "Quantity", "Base Price"}

// ExportRow is one aggregated purchase line: every entry that resolved to the
// same (name, set, sku, type) listing collapses into a single row with its
// quantities summed.
type ExportRow struct {
	CardName    string `json:"card_name"`
	SetCode     string `json:"set_code"`
	SKU         string `json:"sku"`
	VariantType string `json:"variant_type"`
	Qty         int    `json:"qty"`
	PriceCents  int    `json:"price_cents"`
}

// BuildExportRows aggregates the resolved, included entries of a match pass.
// Only auto-matched and manually selected entries carry a variant; everything
// else is left out. Row order follows first appearance, so the same matches
// always aggregate the same way.
func BuildExportRows(matches []models.DeckEntryMatch) []ExportRow {
	index := make(map[string]int)
	var rows []ExportRow

	for _, m := range matches {
		if m.Selected == nil || !m.Entry.Include {
			continue
		}
		v := m.Selected
		key := v.NameOriginal + "|" + v.SetCode + "|" + v.SKU + "|" + v.VariantType
		if i, ok := index[key]; ok {
			rows[i].Qty += m.Entry.Qty
			continue
		}
		index[key] = len(rows)
		rows = append(rows, ExportRow{
			CardName:    v.NameOriginal,
			SetCode:     v.SetCode,
			SKU:         v.SKU,
			VariantType: v.VariantType,
			Qty:         m.Entry.Qty,
			PriceCents:  v.PriceCents,
		})
	}
	return rows
}

// WriteExportCSV writes the aggregated rows followed by a blank line and a
// summary block: per-finish total quantities and the grand total price.
func WriteExportCSV(w io.Writer, matches []models.DeckEntryMatch) error {
	rows := BuildExportRows(matches)

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	totalCents := 0
	var variantOrder []string
	qtyByVariant := make(map[string]int)

	for _, row := range rows {
		record := []string{
			row.CardName,
			row.SetCode,
			row.SKU,
			row.VariantType,
			fmt.Sprintf("%d", row.Qty),
			CentsToDollars(row.PriceCents),
		}
		if err := writer.Write(record); err != nil {
			return err
		}

		if _, ok := qtyByVariant[row.VariantType]; !ok {
			variantOrder = append(variantOrder, row.VariantType)
		}
		qtyByVariant[row.VariantType] += row.Qty
		totalCents += row.Qty * row.PriceCents
	}

	// csv.Writer can't emit a zero-field record; flush and write the blank
	// separator directly.
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	summary := csv.NewWriter(w)
	for _, vt := range variantOrder {
		if err := summary.Write([]string{fmt.Sprintf("Total %s", vt), fmt.Sprintf("%d", qtyByVariant[vt])}); err != nil {
			return err
		}
	}
	if err := summary.Write([]string{"Grand Total", CentsToDollars(totalCents)}); err != nil {
		return err
	}
	summary.Flush()
	return summary.Error()
}

// CentsToDollars formats an integer cent amount as a dollar string, e.g.
// 1080 -> "$10.80".
func CentsToDollars(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
