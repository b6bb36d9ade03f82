package models

// Common variant (finish) names as vendors list them. The set is open-ended;
// catalogs may carry anything in the type column.
const (
	VariantRegular = "Regular"
	VariantFoil    = "Foil"
	VariantHolo    = "Holo"
)

// CardVariant is a single purchasable listing of a card: name, set, finish,
// SKU and price. Immutable once constructed.
type CardVariant struct {
	NameOriginal    string `json:"name"`
	NameNormalized  string `json:"name_normalized"`
	SetCode         string `json:"set_code"`
	SKU             string `json:"sku"`
	VariantType     string `json:"variant_type"`
	PriceCents      int    `json:"price_cents"`
	CollectorNumber string `json:"collector_number,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
}
