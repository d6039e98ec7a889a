package option

import (
	"strings"
	"time"

	"github.com/docbrief/docbrief/pkg/db/pagination"
	"gorm.io/gorm"
)

// ApplyPagination applies cursor pagination. One extra row is fetched so the
// caller can detect whether more pages exist.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}
		if token := strings.TrimSpace(page.PageToken); token != "" {
			if cursor, err := pagination.DecodeCursor(token); err == nil && cursor != nil {
				if ts, terr := time.Parse(time.RFC3339, cursor.CreatedAt); terr == nil {
					db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, cursor.ID)
				}
			}
		}
		return db.Limit(size + 1)
	})
}

// WithSortBy orders by a pre-validated order expression.
func WithSortBy(order string) QueryOption {
	return WithOrderBy(order)
}

// WithQuerySortBy validates user-supplied sort fields against an allow list.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) string {
	sortBy = strings.ToLower(strings.TrimSpace(sortBy))
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	orderBy = strings.ToLower(strings.TrimSpace(orderBy))
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}
