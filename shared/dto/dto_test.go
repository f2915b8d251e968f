package dto_test

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"visit/shared/constant"
	"visit/shared/dto"
	"visit/shared/model"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.NewMetadata("hirer-1", createdAt))

	parsed, err := time.Parse(constant.DateFormat, metadata.CreatedAt)
	assert.NoError(t, err)
	assert.True(t, createdAt.Equal(parsed))
	assert.Equal(t, metadata.CreatedAt, metadata.ModifiedAt)
	assert.Equal(t, "hirer-1", metadata.CreatedBy)
	assert.Equal(t, "hirer-1", metadata.ModifiedBy)
}

func TestMetadata_FromModelUnsetInstants(t *testing.T) {
	metadata := dto.Metadata{ModifiedAt: "stale", ModifiedBy: "stale"}
	metadata.FromModel(model.Metadata{CreatedAt: time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), CreatedBy: "owner-1"})

	assert.Equal(t, "2024-05-20T08:00:00Z", metadata.CreatedAt)
	assert.Empty(t, metadata.ModifiedAt)
	assert.Empty(t, metadata.ModifiedBy)

	body, err := json.Marshal(metadata)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"created_at":"2024-05-20T08:00:00Z","created_by":"owner-1"}`, string(body))
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        url.Values
		withDefaults bool
		expected     dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    url.Values{"page": {"2"}, "limit": {"20"}, "sort_by": {"start_at"}, "sort_dir": {"desc"}},
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "start_at", SortDir: dto.SortDirDesc},
		},
		{
			name:         "defaults",
			query:        url.Values{},
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "nothing without defaults",
			query:    url.Values{},
			expected: dto.QueryParams{},
		},
		{
			name:         "unparsable and negative values fall back",
			query:        url.Values{"page": {"first"}, "limit": {"-10"}, "sort_dir": {"sideways"}},
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit is capped",
			query:    url.Values{"limit": {"5000"}},
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:         "status filter does not leak into paging",
			query:        url.Values{"status": {"pending"}, "page": {"3"}},
			withDefaults: true,
			expected:     dto.QueryParams{Page: 3, Limit: constant.DefaultValueLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/hirer/bookings?"+tt.query.Encode(), nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.withDefaults)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, dto.QueryParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	from := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		group dto.FilterGroup
		where string
		args  map[string]any
	}{
		{
			name: "active bookings of a property",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{Field: "property_id", Value: "P1", Operator: dto.FilterOperatorEq, Table: "bookings"},
					dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn, Table: "bookings"},
					dto.Filter{Field: "end_at", Value: from, Operator: dto.FilterOperatorGreater, Table: "bookings"},
				},
			},
			where: "(bookings.property_id = :property_id AND bookings.status IN (:status_0, :status_1) AND bookings.end_at > :end_at)",
			args:  map[string]any{"property_id": "P1", "status_0": "pending", "status_1": "confirmed", "end_at": from},
		},
		{
			name: "range bounds with explicit arg names",
			group: dto.FilterGroup{
				Filters: []any{
					dto.Filter{Field: "start_at", ArgName: "range_end", Operator: dto.FilterOperatorLess, Value: "b", Table: "bookings"},
					dto.Filter{Field: "end_at", ArgName: "range_start", Operator: dto.FilterOperatorLessEq, Value: "a"},
				},
			},
			where: "(bookings.start_at < :range_end AND end_at <= :range_start)",
			args:  map[string]any{"range_end": "b", "range_start": "a"},
		},
		{
			name: "empty in list matches nothing",
			group: dto.FilterGroup{
				Filters: []any{
					dto.Filter{Field: "id", Value: []string{}, Operator: dto.FilterOperatorIn},
				},
			},
			where: "(FALSE)",
			args:  map[string]any{},
		},
		{
			name:  "no filters",
			group: dto.FilterGroup{},
			where: "",
			args:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.group.GetWhereClause()

			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}
