package services

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	qtyPattern     = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	// Trailing "(SET)" or "(SET 123)" hint, e.g. "Lightning Bolt (M11 146)".
	setHintPattern = regexp.MustCompile(`^(.*?)\s*\(([A-Za-z0-9]{2,5})(?:\s+(\S+))?\)\s*$`)
)

// ParseDecklist turns free-form decklist text into an ordered list of deck
// entries. Malformed lines are skipped or best-effort parsed; the function
// never fails. Duplicate lines are kept as-is: merging by name is an export
// concern, not a parsing one.
//
// Sections follow a small state machine: entries start in the main deck, a
// "SIDEBOARD:"/"SB:" marker switches to the sideboard, and a blank line after
// sideboard entries switches to the commander section.
func ParseDecklist(text string) []models.DeckEntry {
	var entries []models.DeckEntry
	section := models.SectionMain

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			if section == models.SectionSideboard {
				section = models.SectionCommander
			}
			continue
		}

		line = stripMarkup(line)
		if line == "" {
			continue
		}

		if rest, ok := sideboardMarker(line); ok {
			section = models.SectionSideboard
			if rest == "" {
				continue
			}
			// Marker with trailing card data, e.g. "SB: 3 Thoughtseize".
			line = rest
		}

		if entry, ok := parseEntryLine(rawLine, line, section); ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

// stripMarkup removes embedded HTML tags and decodes entities so the line
// grammar only ever sees plain text.
func stripMarkup(line string) string {
	if strings.ContainsRune(line, '<') {
		line = htmlTagPattern.ReplaceAllString(line, "")
	}
	if strings.ContainsRune(line, '&') {
		line = html.UnescapeString(line)
	}
	// Entity decoding can introduce non-breaking spaces the line grammar
	// would otherwise treat as part of the name.
	line = strings.ReplaceAll(line, " ", " ")
	return strings.TrimSpace(line)
}

// sideboardMarker reports whether the line is a sideboard header and returns
// any trailing card data carried on the same line.
func sideboardMarker(line string) (string, bool) {
	upper := strings.ToUpper(line)
	for _, marker := range []string{"SIDEBOARD:", "SB:"} {
		if strings.HasPrefix(upper, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

// parseEntryLine applies the line grammar <qty> <name> [(<SET> [<collector>])].
func parseEntryLine(rawLine, line string, section models.Section) (models.DeckEntry, bool) {
	qty := 1
	name := line
	if m := qtyPattern.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			qty = n
			name = m[2]
		} else if err == nil {
			// "0 Foo" means none of that card; drop the line.
			return models.DeckEntry{}, false
		}
	}

	var setHint, collectorHint string
	if m := setHintPattern.FindStringSubmatch(name); m != nil && strings.TrimSpace(m[1]) != "" {
		name = strings.TrimSpace(m[1])
		setHint = strings.ToUpper(m[2])
		collectorHint = m[3]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.DeckEntry{}, false
	}

	return models.DeckEntry{
		OriginalLine:  rawLine,
		Qty:           qty,
		CardName:      name,
		SetHint:       setHint,
		CollectorHint: collectorHint,
		Section:       section,
		Include:       section == models.SectionMain,
	}, true
}
