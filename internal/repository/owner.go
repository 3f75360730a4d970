package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/auth"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (created_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config
// fieldMap maps API field names to database column names
// Returns the default sort if field is not in whitelist
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyOwnerFilter applies the per-user ownership filter to a GORM query
// Call this on queries over tables that carry a user_id column
// If no filter is set (admin or API service), the query is returned unchanged
func ApplyOwnerFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	userID := auth.GetEffectiveOwnerFilter(ctx)
	if userID != nil {
		return query.Where("user_id = ?", *userID)
	}
	return query
}

// ApplyOwnerFilterWithAlias applies the ownership filter using a table alias
// Use this when joining multiple tables and you need to specify which table's
// user_id to filter on
func ApplyOwnerFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	userID := auth.GetEffectiveOwnerFilter(ctx)
	if userID != nil {
		return query.Where(tableAlias+".user_id = ?", *userID)
	}
	return query
}

// MustHaveOwnerAccess checks if the current user may touch a record owned by ownerID
func MustHaveOwnerAccess(ctx context.Context, ownerID string) bool {
	userID := auth.GetEffectiveOwnerFilter(ctx)
	if userID == nil {
		return true
	}
	return *userID == ownerID
}
