package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

// snapshotsToKeep bounds how many historical catalogs stay on disk.
const snapshotsToKeep = 5

// SnapshotStore persists parsed catalogs so a failed refresh can fall back
// to the last good one instead of leaving the matcher without a catalog.
type SnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save records a deduplicated catalog and prunes old snapshots beyond the
// retention window.
func (s *SnapshotStore) Save(source string, fetchedAt time.Time, variants []models.CardVariant) error {
	snapshot := models.CatalogSnapshot{
		SourceURL:    source,
		FetchedAt:    fetchedAt,
		VariantCount: len(variants),
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		rows := make([]models.SnapshotVariant, 0, len(variants))
		for _, v := range variants {
			rows = append(rows, models.SnapshotVariant{
				SnapshotID:      snapshot.ID,
				Name:            v.NameOriginal,
				SetCode:         v.SetCode,
				SKU:             v.SKU,
				VariantType:     v.VariantType,
				PriceCents:      v.PriceCents,
				CollectorNumber: v.CollectorNumber,
				ImageURL:        v.ImageURL,
			})
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return err
			}
		}

		return pruneSnapshots(tx)
	})
}

// Latest loads the most recent snapshot and rebuilds its variant list with
// normalized names recomputed.
func (s *SnapshotStore) Latest() (*models.CatalogSnapshot, []models.CardVariant, error) {
	var snapshot models.CatalogSnapshot
	err := s.db.Order("fetched_at DESC").First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var rows []models.SnapshotVariant
	if err := s.db.Where("snapshot_id = ?", snapshot.ID).Order("id").Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	variants := make([]models.CardVariant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, models.CardVariant{
			NameOriginal:    row.Name,
			NameNormalized:  NormalizeName(row.Name),
			SetCode:         row.SetCode,
			SKU:             row.SKU,
			VariantType:     row.VariantType,
			PriceCents:      row.PriceCents,
			CollectorNumber: row.CollectorNumber,
			ImageURL:        row.ImageURL,
		})
	}
	return &snapshot, variants, nil
}

func pruneSnapshots(tx *gorm.DB) error {
	var stale []models.CatalogSnapshot
	if err := tx.Order("fetched_at DESC").Limit(100).Offset(snapshotsToKeep).Find(&stale).Error; err != nil {
		return err
	}
	for _, old := range stale {
		if err := tx.Where("snapshot_id = ?", old.ID).Delete(&models.SnapshotVariant{}).Error; err != nil {
			return fmt.Errorf("pruning snapshot %d variants: %w", old.ID, err)
		}
		if err := tx.Delete(&models.CatalogSnapshot{}, old.ID).Error; err != nil {
			return fmt.Errorf("pruning snapshot %d: %w", old.ID, err)
		}
		log.Printf("Pruned catalog snapshot %d (%s, %d variants)", old.ID, old.SourceURL, old.VariantCount)
	}
	return nil
}
