package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/domain"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) CreateBatch(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ItemRepository) ListByProforma(ctx context.Context, proformaID uuid.UUID) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.WithContext(ctx).
		Where("proforma_id = ?", proformaID).
		Order("display_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// ReplaceForProforma swaps the full item set of a proforma in one transaction.
// Partial item updates are not supported; every write carries the whole list.
func (r *ItemRepository) ReplaceForProforma(ctx context.Context, proformaID uuid.UUID, items []domain.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proforma_id = ?", proformaID).Delete(&domain.Item{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ProformaID = proformaID
		}
		return tx.Create(&items).Error
	})
}

func (r *ItemRepository) DeleteByProforma(ctx context.Context, proformaID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proforma_id = ?", proformaID).
		Delete(&domain.Item{}).Error
}
