package services

import (
	"sort"
	"time"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

// Catalog is an immutable, indexed view over a deduplicated variant list.
// The name index and the sorted key list are built once at construction;
// a refresh produces a brand-new Catalog, so concurrent readers always see
// a consistent snapshot.
type Catalog struct {
	variants []models.CardVariant
	byName   map[string][]models.CardVariant
	bySKU    map[string]models.CardVariant
	keys     []string

	source    string
	fetchedAt time.Time
}

// NewCatalog builds the catalog index in O(n). Variants without a
// precomputed normalized name get one here.
func NewCatalog(variants []models.CardVariant, source string, fetchedAt time.Time) *Catalog {
	owned := make([]models.CardVariant, len(variants))
	copy(owned, variants)

	byName := make(map[string][]models.CardVariant, len(owned))
	bySKU := make(map[string]models.CardVariant, len(owned))
	for i := range owned {
		if owned[i].NameNormalized == "" {
			owned[i].NameNormalized = NormalizeName(owned[i].NameOriginal)
		}
		key := owned[i].NameNormalized
		byName[key] = append(byName[key], owned[i])
		if owned[i].SKU != "" {
			if _, exists := bySKU[owned[i].SKU]; !exists {
				bySKU[owned[i].SKU] = owned[i]
			}
		}
	}

	// Sorted keys keep every scan over the index deterministic regardless of
	// map iteration order.
	keys := make([]string, 0, len(byName))
	for key := range byName {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Catalog{
		variants:  owned,
		byName:    byName,
		bySKU:     bySKU,
		keys:      keys,
		source:    source,
		fetchedAt: fetchedAt,
	}
}

// ByNormalizedName returns the variants indexed under the given normalized
// key in catalog order. The returned slice is shared; callers must not
// modify it.
func (c *Catalog) ByNormalizedName(key string) []models.CardVariant {
	return c.byName[key]
}

// BySKU looks up a single variant by its vendor SKU.
func (c *Catalog) BySKU(sku string) (models.CardVariant, bool) {
	v, ok := c.bySKU[sku]
	return v, ok
}

// Keys returns the normalized name keys in sorted order. Shared slice;
// read-only.
func (c *Catalog) Keys() []string {
	return c.keys
}

// Variants returns all indexed variants in catalog order. Shared slice;
// read-only.
func (c *Catalog) Variants() []models.CardVariant {
	return c.variants
}

func (c *Catalog) Len() int {
	return len(c.variants)
}

func (c *Catalog) Source() string {
	return c.source
}

func (c *Catalog) FetchedAt() time.Time {
	return c.fetchedAt
}
