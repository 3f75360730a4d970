package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/domain"
)

type ProformaRepository struct {
	db *gorm.DB
}

func NewProformaRepository(db *gorm.DB) *ProformaRepository {
	return &ProformaRepository{db: db}
}

func (r *ProformaRepository) Create(ctx context.Context, proforma *domain.Proforma) error {
	return r.db.WithContext(ctx).Create(proforma).Error
}

func (r *ProformaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proforma, error) {
	var proforma domain.Proforma
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Preload("Client", func(db *gorm.DB) *gorm.DB {
			// Soft-deleted clients stay visible on their proformas
			return db.Unscoped()
		}).
		Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	err := query.First(&proforma).Error
	if err != nil {
		return nil, err
	}
	return &proforma, nil
}

func (r *ProformaRepository) Update(ctx context.Context, proforma *domain.Proforma) error {
	return r.db.WithContext(ctx).Omit("Items", "Client").Save(proforma).Error
}

// Delete removes the proforma header; items go with it via the cascade
func (r *ProformaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Items").
		Delete(&domain.Proforma{BaseModel: domain.BaseModel{ID: id}}).Error
}

// proformaSortableFields maps API sort field names to proforma table columns,
// qualified because the client-name search joins in the clients table
var proformaSortableFields = map[string]string{
	"proformaNumber": "proformas.proforma_number",
	"date":           "proformas.date",
	"total":          "proformas.total",
	"status":         "proformas.status",
	"createdAt":      "proformas.created_at",
}

// List returns the owner's proformas with items and client preloaded,
// highest number first unless a sort is given. A numeric search term matches
// the proforma number exactly; anything else matches the client name as a
// substring.
func (r *ProformaRepository) List(ctx context.Context, page, pageSize int, search string, status domain.ProformaStatus, sort SortConfig) ([]domain.Proforma, int64, error) {
	var proformas []domain.Proforma
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Proforma{})
	query = ApplyOwnerFilterWithAlias(ctx, query, "proformas")

	if status != "" {
		query = query.Where("proformas.status = ?", status)
	}

	if search != "" {
		if number, err := strconv.Atoi(strings.TrimSpace(search)); err == nil {
			query = query.Where("proformas.proforma_number = ?", number)
		} else {
			searchPattern := "%" + strings.ToLower(search) + "%"
			query = query.
				Joins("JOIN clients ON clients.id = proformas.client_id").
				Where("LOWER(clients.first_name || ' ' || clients.last_name) LIKE ?", searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, proformaSortableFields, "proformas.proforma_number")

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Preload("Client", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Offset(offset).Limit(pageSize).
		Order(orderClause).
		Find(&proformas).Error

	return proformas, total, err
}

// CountInRange returns the caller's number of proformas dated in [from, to)
func (r *ProformaRepository) CountInRange(ctx context.Context, from, to time.Time) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Proforma{}).
		Where("date >= ? AND date < ?", from, to)
	query = ApplyOwnerFilter(ctx, query)
	err := query.Count(&count).Error
	return int(count), err
}

// ListAllWithItems streams every proforma with items, unscoped by owner.
// Used by the nightly consistency audit.
func (r *ProformaRepository) ListAllWithItems(ctx context.Context) ([]domain.Proforma, error) {
	var proformas []domain.Proforma
	err := r.db.WithContext(ctx).
		Preload("Items").
		Find(&proformas).Error
	return proformas, err
}

// CountByOwnerAndNumber reports how many proformas an owner has with a number.
// Anything above 1 is a numbering violation.
func (r *ProformaRepository) CountByOwnerAndNumber(ctx context.Context, userID string, number int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Proforma{}).
		Where("user_id = ? AND proforma_number = ?", userID, number).
		Count(&count).Error
	return count, err
}

func (r *ProformaRepository) Count(ctx context.Context) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Proforma{})
	query = ApplyOwnerFilter(ctx, query)
	err := query.Count(&count).Error
	return int(count), err
}
