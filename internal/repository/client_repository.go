package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/domain"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	err := query.First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByIDIncludingDeleted fetches a client even after soft deletion.
// Finalized proformas keep rendering the client they were issued to.
func (r *ClientRepository) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	query := r.db.WithContext(ctx).Unscoped().Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	err := query.First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete soft-deletes a client. Existing proformas keep their reference.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id).Error
}

// FindByCedulaRUC returns the owner's active client with the given identifier,
// used for duplicate detection on create/update
func (r *ClientRepository) FindByCedulaRUC(ctx context.Context, userID, cedulaRUC string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND cedula_ruc = ?", userID, cedulaRUC).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// clientSortableFields maps API sort field names to client table columns
var clientSortableFields = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"cedulaRuc": "cedula_ruc",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *ClientRepository) List(ctx context.Context, page, pageSize int, search string, sort SortConfig) ([]domain.Client, int64, error) {
	var clients []domain.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Client{})
	query = ApplyOwnerFilter(ctx, query)

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR cedula_ruc LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, clientSortableFields, "created_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order(orderClause).
		Find(&clients).Error

	return clients, total, err
}

// Count returns the caller's number of active clients
func (r *ClientRepository) Count(ctx context.Context) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Client{})
	query = ApplyOwnerFilter(ctx, query)
	err := query.Count(&count).Error
	return int(count), err
}

// CountProformas returns how many proformas reference the client
func (r *ClientRepository) CountProformas(ctx context.Context, clientID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Proforma{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return int(count), err
}
