package models

import (
	"time"
)

// CatalogSnapshot records one successfully parsed catalog so a failed refresh
// can fall back to the last good one.
type CatalogSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SourceURL    string    `json:"source_url" gorm:"index"`
	FetchedAt    time.Time `json:"fetched_at"`
	VariantCount int       `json:"variant_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// SnapshotVariant is one catalog row belonging to a snapshot.
type SnapshotVariant struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	SnapshotID      uint   `json:"snapshot_id" gorm:"not null;index"`
	Name            string `json:"name" gorm:"not null"`
	SetCode         string `json:"set_code"`
	SKU             string `json:"sku"`
	VariantType     string `json:"variant_type"`
	PriceCents      int    `json:"price_cents"`
	CollectorNumber string `json:"collector_number"`
	ImageURL        string `json:"image_url"`
}
