package dto_test

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/internal/domains/slot/model/dto"
	"visit/shared/failure"
	"visit/shared/interval"
)

const (
	from = "2024-06-01T00:00:00Z"
	to   = "2024-06-02T00:00:00Z"
)

func TestSlotsQuery_FromValues(t *testing.T) {
	tests := []struct {
		name        string
		from, to    string
		granularity string
		code        int
		want        time.Duration
	}{
		{name: "hourly", from: from, to: to, granularity: "60", want: time.Hour},
		{name: "whole day", from: from, to: to, granularity: "1440", want: 24 * time.Hour},
		{name: "beyond a day", from: from, to: to, granularity: "1441", code: http.StatusBadRequest},
		{name: "overflowing", from: from, to: to, granularity: "9223372036854775807", code: http.StatusBadRequest},
		{name: "below minimum", from: from, to: to, granularity: "5", code: http.StatusBadRequest},
		{name: "not a number", from: from, to: to, granularity: "hour", code: http.StatusBadRequest},
		{name: "missing from", to: to, granularity: "60", code: http.StatusBadRequest},
		{name: "malformed to", from: from, to: "tomorrow", granularity: "60", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := dto.SlotsQuery{}

			err := query.FromValues(tt.from, tt.to, tt.granularity)
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, query.Granularity())
		})
	}
}

func TestSlotsQuery_Range(t *testing.T) {
	query := dto.SlotsQuery{From: from, To: to}

	rng, err := query.Range()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, rng.Duration())

	query.To = "2024-06-02"

	_, err = query.Range()
	assert.ErrorIs(t, err, failure.ErrInvalidRange)
}

func TestSlotsResponse_FromSeq(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	slots := []interval.Interval{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)},
	}

	res := dto.SlotsResponse{}
	res.FromSeq("P1", slices.Values(slots))

	assert.Equal(t, "P1", res.PropertyID)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, "2024-06-01T10:00:00Z", res.Slots[1].Start)

	res.FromSeq("P1", slices.Values([]interval.Interval{}))
	assert.NotNil(t, res.Slots)
	assert.Empty(t, res.Slots)
}
