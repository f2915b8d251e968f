package model

const (
	TableName  = "users"
	EntityName = "user"

	FieldID     = "id"
	FieldRole   = "role"
	FieldActive = "active"
)

// User is the subset of the identity record the scheduler needs for role checks.
type User struct {
	ID     string `db:"id"`
	Role   string `db:"role"`
	Active bool   `db:"active"`
}
