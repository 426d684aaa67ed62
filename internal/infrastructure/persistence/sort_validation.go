package persistence

import (
	"strings"

	"github.com/alfred/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"last_deployed_at": true,
}

// ConversationSortFields contains allowed secondary sort fields for conversations.
// Pinned conversations always come first.
var ConversationSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"title":           true,
	"last_message_at": true,
}

// escapeLike escapes LIKE wildcards in user search input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// searchScope filters column by a case-insensitive substring match.
// LOWER() keeps it portable between Postgres and SQLite.
func searchScope(column, search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+strings.ToLower(escapeLike(search))+"%")
	}
}

// paginate applies the normalized filter's offset and limit
func paginate(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}
