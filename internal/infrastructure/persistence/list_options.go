package persistence

import (
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/shared"
)

// applyListOptions applies pagination and ordering from a shared filter.
// The order column is validated against a whitelist so request input never
// reaches the ORDER BY clause unchecked.
func applyListOptions(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool, defaultSortField string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, allowedSortFields, defaultSortField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir)
}
