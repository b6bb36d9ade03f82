package models

type Section string

const (
	SectionMain      Section = "main"
	SectionSideboard Section = "sideboard"
	SectionCommander Section = "commander"
)

// DeckEntry is one parsed decklist line. Entries are created by the parser
// and never mutated afterwards; match results live in DeckEntryMatch.
type DeckEntry struct {
	OriginalLine  string  `json:"original_line"`
	Qty           int     `json:"qty"`
	CardName      string  `json:"card_name"`
	SetHint       string  `json:"set_hint,omitempty"`
	CollectorHint string  `json:"collector_hint,omitempty"`
	Section       Section `json:"section"`
	Include       bool    `json:"include"`
}
