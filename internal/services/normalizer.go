package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FaceSeparator joins the faces of split/adventure/double-faced card names,
// e.g. "Fire // Ice".
const FaceSeparator = " // "

// asciiFold maps typographic quotes/dashes and a few ligatures to plain ASCII
// before the character filter runs.
var asciiFold = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", "\"",
	"”", "\"",
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"æ", "ae",
	"œ", "oe",
)

// NormalizeName produces the canonical comparison key for a card name:
// lowercase, diacritics stripped, punctuation removed, dashes folded to
// spaces, whitespace collapsed. The output contains only lowercase ASCII
// letters, digits and single spaces, so the function is idempotent.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = asciiFold.Replace(s)
	s = stripDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == '-' || r == '/' || unicode.IsSpace(r):
			pendingSpace = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			// punctuation and anything non-ASCII is dropped
		}
	}
	return b.String()
}

// stripDiacritics NFD-decomposes the string and drops combining marks, so
// "Juzám" becomes "Juzam".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PrimaryFace returns the text before the first face separator, or the whole
// name for single-faced cards.
func PrimaryFace(name string) string {
	if idx := strings.Index(name, FaceSeparator); idx != -1 {
		return strings.TrimSpace(name[:idx])
	}
	return name
}

// NormalizedForms returns the distinct normalized keys an entry name can be
// probed under: the primary face and the full joined form.
func NormalizedForms(name string) []string {
	full := NormalizeName(name)
	primary := NormalizeName(PrimaryFace(name))
	if primary == full || primary == "" {
		return []string{full}
	}
	return []string{primary, full}
}
