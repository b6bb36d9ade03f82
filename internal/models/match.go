package models

type MatchStatus string

const (
	StatusUnresolved     MatchStatus = "unresolved"
	StatusAutoMatched    MatchStatus = "auto_matched"
	StatusAmbiguous      MatchStatus = "ambiguous"
	StatusNotFound       MatchStatus = "not_found"
	StatusManualSelected MatchStatus = "manual_selected"
)

// MatchCandidate is one catalog variant considered for an entry. Score is 0
// for exact-stage candidates and the edit distance for fuzzy ones. Reason
// records which stage produced the candidate ("exact", "case-insensitive",
// "normalized", "fuzzy:<distance>").
type MatchCandidate struct {
	Variant CardVariant `json:"variant"`
	Score   int         `json:"score"`
	Reason  string      `json:"reason"`
}

// DeckEntryMatch holds the resolution outcome for a single deck entry. It is
// created with StatusUnresolved, moved to exactly one automatic terminal
// status by the match pass, and may later be moved to StatusManualSelected by
// an explicit selection.
type DeckEntryMatch struct {
	Entry      DeckEntry        `json:"entry"`
	Status     MatchStatus      `json:"status"`
	Selected   *CardVariant     `json:"selected,omitempty"`
	Candidates []MatchCandidate `json:"candidates"`
	Notes      string           `json:"notes,omitempty"`
}

// MatchConfig controls tie-breaking during automatic resolution. All fields
// are caller-supplied; DefaultMatchConfig gives the stock behavior.
type MatchConfig struct {
	VariantPriority []string `json:"variant_priority"`
	SetPriority     []string `json:"set_priority"`
	FuzzyEnabled    bool     `json:"fuzzy_enabled"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		VariantPriority: []string{VariantRegular, VariantFoil, VariantHolo},
		FuzzyEnabled:    true,
	}
}

// ManualOverride is a caller-forced selection for one entry. SKU is matched
// against the catalog when possible; otherwise a synthetic variant is built
// from the remaining fields.
type ManualOverride struct {
	CardName    string `json:"card_name"`
	SetCode     string `json:"set_code"`
	VariantType string `json:"variant_type"`
	SKU         string `json:"sku"`
}
