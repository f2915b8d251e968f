package shared

import (
	"context"
	"strings"

	"visit/shared/constant"
	"visit/shared/dto"
	"visit/shared/failure"

	"github.com/google/uuid"
)

// CalculateTotalPage is the number of pages needed for total rows, never less than one.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// FilterByID matches the row of table whose fieldID equals id.
func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{dto.Filter{Field: fieldID, Value: id, Operator: dto.FilterOperatorEq, Table: table}},
	}
}

// BuildCacheKey joins a key prefix and its parts with ":".
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// UserID returns the authenticated caller placed on the context by the auth middleware.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return userID
}

// RequireUUID reports a malformed path id as the entity not being found.
func RequireUUID(id, entityName string) error {
	if _, err := uuid.Parse(id); err != nil {
		return failure.NotFound(entityName + " not found") //nolint:wrapcheck
	}

	return nil
}
