package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

// Candidate reasons, recorded per variant so the UI can explain how a match
// was found.
const (
	reasonExact           = "exact"
	reasonCaseInsensitive = "case-insensitive"
	reasonNormalized      = "normalized"
	reasonOverride        = "override"
)

// MatchEntry resolves a single deck entry against the catalog. It is pure
// given its inputs: the same entry, catalog and config always produce the
// same result.
//
// Resolution runs the narrowing stages in a fixed order: exact name match,
// case-insensitive match, normalized match, set-hint filter, set-priority
// filter, variant-priority tie-break, and finally (only when the name stages
// all come up empty) the fuzzy edit-distance fallback.
func MatchEntry(entry models.DeckEntry, catalog *Catalog, config models.MatchConfig) models.DeckEntryMatch {
	match := models.DeckEntryMatch{
		Entry:      entry,
		Status:     models.StatusUnresolved,
		Candidates: []models.MatchCandidate{},
	}

	bucket := nameStageCandidates(entry.CardName, catalog)
	if len(bucket) == 0 {
		return fuzzyFallback(match, entry, catalog, config)
	}

	pool := narrowByNameStage(bucket, entry.CardName)
	pool, note := applySetHint(pool, entry.SetHint)
	if note != "" {
		match.Notes = note
	}
	pool = applySetPriority(pool, config.SetPriority)
	pool = applyVariantPriority(pool, config.VariantPriority)

	if len(pool) == 1 {
		match.Status = models.StatusAutoMatched
		selected := pool[0].Variant
		match.Selected = &selected
		// Show everything considered at the widest non-empty stage so a
		// reviewer can see what the tie-break skipped.
		match.Candidates = bucket
		return match
	}

	match.Status = models.StatusAmbiguous
	sortAmbiguous(pool, config.VariantPriority)
	match.Candidates = pool
	return match
}

// MatchAll resolves every entry in order. The result always covers every
// input entry; data-quality problems degrade to not-found or ambiguous,
// never to an error.
func MatchAll(entries []models.DeckEntry, catalog *Catalog, config models.MatchConfig) []models.DeckEntryMatch {
	matches := make([]models.DeckEntryMatch, 0, len(entries))
	for _, entry := range entries {
		matches = append(matches, MatchEntry(entry, catalog, config))
	}
	return matches
}

// nameStageCandidates collects every variant indexed under the entry's
// normalized forms (primary face and full joined form), each tagged with the
// strongest name stage it satisfies.
func nameStageCandidates(cardName string, catalog *Catalog) []models.MatchCandidate {
	var bucket []models.MatchCandidate
	seen := make(map[string]bool)
	for _, form := range NormalizedForms(cardName) {
		for _, v := range catalog.ByNormalizedName(form) {
			// SKU alone is not identity: vendor rows may leave it blank.
			key := v.SKU + "|" + v.SetCode + "|" + v.VariantType + "|" + v.NameOriginal
			if seen[key] {
				continue
			}
			seen[key] = true

			reason := reasonNormalized
			switch {
			case v.NameOriginal == cardName:
				reason = reasonExact
			case strings.EqualFold(v.NameOriginal, cardName):
				reason = reasonCaseInsensitive
			}
			bucket = append(bucket, models.MatchCandidate{Variant: v, Reason: reason})
		}
	}
	return bucket
}

// narrowByNameStage keeps the candidates of the first name stage that is
// non-empty: exact beats case-insensitive beats normalized.
func narrowByNameStage(bucket []models.MatchCandidate, cardName string) []models.MatchCandidate {
	for _, reason := range []string{reasonExact, reasonCaseInsensitive} {
		var pool []models.MatchCandidate
		for _, c := range bucket {
			if c.Reason == reason {
				pool = append(pool, c)
			}
		}
		if len(pool) > 0 {
			return pool
		}
	}
	return bucket
}

// applySetHint narrows a multi-candidate pool to the hinted set. A hint that
// matches nothing is dropped rather than producing a false not-found; the
// note records the dropped hint for the caller.
func applySetHint(pool []models.MatchCandidate, setHint string) ([]models.MatchCandidate, string) {
	if setHint == "" || len(pool) <= 1 {
		return pool, ""
	}
	var filtered []models.MatchCandidate
	for _, c := range pool {
		if strings.EqualFold(c.Variant.SetCode, setHint) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return pool, fmt.Sprintf("set hint %s ignored: no candidate in that set", setHint)
	}
	return filtered, ""
}

// applySetPriority narrows to the highest-priority set present among the
// candidates. If no priority set is present the stage is skipped.
func applySetPriority(pool []models.MatchCandidate, setPriority []string) []models.MatchCandidate {
	if len(pool) <= 1 || len(setPriority) == 0 {
		return pool
	}
	for _, set := range setPriority {
		var filtered []models.MatchCandidate
		for _, c := range pool {
			if strings.EqualFold(c.Variant.SetCode, set) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	return pool
}

// applyVariantPriority narrows to the first preferred finish present in the
// pool. If none of the preferred finishes are present the ambiguity stands.
func applyVariantPriority(pool []models.MatchCandidate, variantPriority []string) []models.MatchCandidate {
	if len(pool) <= 1 {
		return pool
	}
	for _, vt := range variantPriority {
		var filtered []models.MatchCandidate
		for _, c := range pool {
			if strings.EqualFold(c.Variant.VariantType, vt) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	return pool
}

// fuzzyFallback scans the catalog keys for close edit-distance matches. Fuzzy
// results always come back ambiguous, even a unique one: a guessed name needs
// human confirmation before it lands in an order.
func fuzzyFallback(match models.DeckEntryMatch, entry models.DeckEntry, catalog *Catalog, config models.MatchConfig) models.DeckEntryMatch {
	if !config.FuzzyEnabled {
		match.Status = models.StatusNotFound
		return match
	}

	query := NormalizeName(PrimaryFace(entry.CardName))
	threshold := FuzzyThreshold(len(query))

	var pool []models.MatchCandidate
	for _, key := range catalog.Keys() {
		if !WithinFuzzyWindow(len(query), len(key)) {
			continue
		}
		distance := EditDistance(query, key)
		if distance > threshold {
			continue
		}
		for _, v := range catalog.ByNormalizedName(key) {
			pool = append(pool, models.MatchCandidate{
				Variant: v,
				Score:   distance,
				Reason:  fmt.Sprintf("fuzzy:%d", distance),
			})
		}
	}

	if len(pool) == 0 {
		match.Status = models.StatusNotFound
		return match
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score < pool[j].Score
		}
		return pool[i].Variant.PriceCents < pool[j].Variant.PriceCents
	})
	match.Status = models.StatusAmbiguous
	match.Candidates = pool
	return match
}

// sortAmbiguous orders an ambiguous pool by preferred finish rank, then price.
func sortAmbiguous(pool []models.MatchCandidate, variantPriority []string) {
	rank := func(variantType string) int {
		for i, vt := range variantPriority {
			if strings.EqualFold(variantType, vt) {
				return i
			}
		}
		return len(variantPriority)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		ri, rj := rank(pool[i].Variant.VariantType), rank(pool[j].Variant.VariantType)
		if ri != rj {
			return ri < rj
		}
		return pool[i].Variant.PriceCents < pool[j].Variant.PriceCents
	})
}

// SelectCandidate moves a match to manual-selected using one of its own
// candidates, identified by SKU.
func SelectCandidate(match *models.DeckEntryMatch, sku string) error {
	for _, c := range match.Candidates {
		if c.Variant.SKU == sku {
			selected := c.Variant
			match.Selected = &selected
			match.Status = models.StatusManualSelected
			return nil
		}
	}
	return fmt.Errorf("sku %q is not among the entry's candidates", sku)
}

// ApplyOverride forces a manual selection from caller-supplied fields,
// bypassing the automatic stages. The SKU is resolved against the catalog
// when possible; otherwise a synthetic variant is built as given.
func ApplyOverride(match *models.DeckEntryMatch, override models.ManualOverride, catalog *Catalog) {
	variant, ok := models.CardVariant{}, false
	if override.SKU != "" && catalog != nil {
		variant, ok = catalog.BySKU(override.SKU)
	}
	if !ok {
		name := override.CardName
		if name == "" {
			name = match.Entry.CardName
		}
		variant = models.CardVariant{
			NameOriginal:   name,
			NameNormalized: NormalizeName(name),
			SetCode:        strings.ToUpper(override.SetCode),
			SKU:            override.SKU,
			VariantType:    override.VariantType,
		}
	}

	match.Selected = &variant
	match.Status = models.StatusManualSelected
	match.Candidates = []models.MatchCandidate{{Variant: variant, Reason: reasonOverride}}
}
