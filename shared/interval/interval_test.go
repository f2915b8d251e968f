package interval_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/shared/failure"
	"visit/shared/interval"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func iv(startHour, endHour int) interval.Interval {
	return interval.Interval{Start: at(startHour, 0), End: at(endHour, 0)}
}

func TestNew(t *testing.T) {
	_, err := interval.New(at(10, 0), at(9, 0))
	assert.True(t, errors.Is(err, failure.ErrInvalidInterval))

	_, err = interval.New(at(10, 0), at(10, 0))
	assert.True(t, errors.Is(err, failure.ErrInvalidInterval))

	_, err = interval.New(time.Time{}, at(10, 0))
	assert.True(t, errors.Is(err, failure.ErrInvalidInterval))

	in, err := interval.New(at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, in.Duration())
}

func TestOverlapsTouchesContains(t *testing.T) {
	tests := []struct {
		name     string
		a, b     interval.Interval
		overlaps bool
		touches  bool
		contains bool
	}{
		{name: "disjoint", a: iv(9, 10), b: iv(11, 12)},
		{name: "adjacent", a: iv(9, 10), b: iv(10, 11), touches: true},
		{name: "partial overlap", a: iv(9, 11), b: iv(10, 12), overlaps: true, touches: true},
		{name: "inner", a: iv(9, 12), b: iv(10, 11), overlaps: true, touches: true, contains: true},
		{name: "identical", a: iv(9, 10), b: iv(9, 10), overlaps: true, touches: true, contains: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))
			assert.Equal(t, tt.touches, tt.a.Touches(tt.b))
			assert.Equal(t, tt.contains, tt.a.Contains(tt.b))
		})
	}
}

func TestIntersect(t *testing.T) {
	res, ok := iv(9, 11).Intersect(iv(10, 12))
	require.True(t, ok)
	assert.True(t, res.Equal(iv(10, 11)))

	_, ok = iv(9, 10).Intersect(iv(10, 11))
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	merged := interval.Merge([]interval.Interval{iv(13, 14), iv(9, 10), iv(10, 11), iv(10, 12), iv(15, 16)})

	require.Len(t, merged, 3)
	assert.True(t, merged[0].Equal(iv(9, 12)))
	assert.True(t, merged[1].Equal(iv(13, 14)))
	assert.True(t, merged[2].Equal(iv(15, 16)))

	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i-1].Touches(merged[i]))
	}

	assert.Nil(t, interval.Merge(nil))
}

func TestSubtract(t *testing.T) {
	free := []interval.Interval{iv(9, 12)}
	busy := []interval.Interval{iv(10, 11)}

	rest := interval.Subtract(free, busy)

	require.Len(t, rest, 2)
	assert.True(t, rest[0].Equal(iv(9, 10)))
	assert.True(t, rest[1].Equal(iv(11, 12)))

	assert.Empty(t, interval.Subtract(free, []interval.Interval{iv(8, 13)}))
	assert.Len(t, interval.Subtract(free, nil), 1)

	partial := interval.Subtract([]interval.Interval{iv(9, 12)}, []interval.Interval{iv(8, 10), iv(11, 13)})
	require.Len(t, partial, 1)
	assert.True(t, partial[0].Equal(iv(10, 11)))
}

func TestSplit(t *testing.T) {
	slots := slices.Collect(interval.Interval{Start: at(9, 0), End: at(11, 30)}.Split(time.Hour))

	require.Len(t, slots, 2)
	assert.True(t, slots[0].Equal(iv(9, 10)))
	assert.True(t, slots[1].Equal(iv(10, 11)))

	assert.Empty(t, slices.Collect(iv(9, 10).Split(0)))
	assert.Empty(t, slices.Collect(interval.Interval{Start: at(9, 0), End: at(9, 30)}.Split(time.Hour)))
}

func TestSplitStopsEarly(t *testing.T) {
	count := 0
	for range iv(0, 10).Split(time.Hour) {
		count++
		if count == 3 {
			break
		}
	}

	assert.Equal(t, 3, count)
}

func TestAnyContainsAndOverlaps(t *testing.T) {
	set := []interval.Interval{iv(9, 10), iv(12, 14)}

	assert.True(t, interval.AnyContains(set, iv(12, 13)))
	assert.False(t, interval.AnyContains(set, iv(9, 11)))
	assert.True(t, interval.AnyOverlaps(set, iv(13, 15)))
	assert.False(t, interval.AnyOverlaps(set, iv(10, 12)))
}
