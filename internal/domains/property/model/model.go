package model

import "visit/shared/model"

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID      = "id"
	FieldOwnerID = "owner_id"
	FieldTitle   = "title"
	FieldActive  = "active"
)

// Property is the catalog row the scheduler reads to resolve existence and ownership.
// The catalog itself is maintained elsewhere.
type Property struct {
	ID      string `db:"id"`
	OwnerID string `db:"owner_id"`
	Title   string `db:"title"`
	Active  bool   `db:"active"`
	model.Metadata
}
