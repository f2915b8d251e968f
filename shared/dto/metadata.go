package dto

import (
	"time"

	"visit/shared/constant"
	"visit/shared/model"
	"visit/shared/timezone"
)

// Metadata is the audit stamp of a record as rendered in responses. Instants are formatted in
// the application timezone; an instant that was never set renders as an empty string.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(stamp model.Metadata) {
	*m = Metadata{
		CreatedAt:  formatInstant(stamp.CreatedAt),
		ModifiedAt: formatInstant(stamp.ModifiedAt),
		CreatedBy:  stamp.CreatedBy,
		ModifiedBy: stamp.ModifiedBy,
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return constant.Empty
	}

	return timezone.Format(t, constant.DateFormat)
}
