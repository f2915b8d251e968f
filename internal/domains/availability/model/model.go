package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"iter"
	"slices"
	"time"

	"visit/shared/interval"
	"visit/shared/model"
)

const (
	TableName  = "availability_windows"
	EntityName = "availability"

	FieldID         = "id"
	FieldPropertyID = "property_id"
	FieldOwnerID    = "owner_id"
	FieldStartAt    = "start_at"
	FieldEndAt      = "end_at"
	FieldRecurrence = "recurrence"
)

const day = 24 * time.Hour

var errRecurrenceType = errors.New("recurrence must be scanned from json bytes")

// Recurrence repeats a window's time of day on the listed weekdays, starting with the window's
// own date. An empty weekday list repeats on the weekday of the window start.
type Recurrence struct {
	Weekdays []time.Weekday `json:"weekdays"`
	Until    *time.Time     `json:"until,omitempty"`
}

func (r Recurrence) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Recurrence) Scan(src any) error {
	switch val := src.(type) {
	case []byte:
		return json.Unmarshal(val, r)
	case string:
		return json.Unmarshal([]byte(val), r)
	default:
		return errRecurrenceType
	}
}

func (r *Recurrence) repeatsOn(weekday time.Weekday, base time.Weekday) bool {
	if len(r.Weekdays) == 0 {
		return weekday == base
	}

	return slices.Contains(r.Weekdays, weekday)
}

// SameRecurrence reports whether a and b describe the same repetition. Two one-off windows match.
func SameRecurrence(a, b *Recurrence) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if !sameWeekdays(a.Weekdays, b.Weekdays) {
		return false
	}

	if a.Until == nil || b.Until == nil {
		return a.Until == nil && b.Until == nil
	}

	return a.Until.Equal(*b.Until)
}

func sameWeekdays(a, b []time.Weekday) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)

	slices.Sort(x)
	slices.Sort(y)

	return slices.Equal(slices.Compact(x), slices.Compact(y))
}

// Window is an owner-published span during which a property may be visited.
type Window struct {
	ID         string      `db:"id"`
	PropertyID string      `db:"property_id"`
	OwnerID    string      `db:"owner_id"`
	StartAt    time.Time   `db:"start_at"`
	EndAt      time.Time   `db:"end_at"`
	Recurrence *Recurrence `db:"recurrence"`
	model.Metadata
}

func (w Window) Interval() interval.Interval {
	return interval.Interval{Start: w.StartAt, End: w.EndAt}
}

// InLocation returns w with its instants expressed in loc. A recurring window repeats on the
// weekdays and wall-clock time of the location it is expressed in.
func (w Window) InLocation(loc *time.Location) Window {
	w.StartAt = w.StartAt.In(loc)
	w.EndAt = w.EndAt.In(loc)

	if w.Recurrence != nil && w.Recurrence.Until != nil {
		until := w.Recurrence.Until.In(loc)
		w.Recurrence = &Recurrence{Weekdays: w.Recurrence.Weekdays, Until: &until}
	}

	return w
}

// Occurrences yields, in chronological order, every concrete interval of the window that
// overlaps rng.
func (w Window) Occurrences(rng interval.Interval) iter.Seq[interval.Interval] {
	return func(yield func(interval.Interval) bool) {
		base := w.Interval()

		if w.Recurrence == nil {
			if base.Overlaps(rng) {
				yield(base)
			}

			return
		}

		loc := w.StartAt.Location()
		length := base.Duration()
		hour, minute, sec := w.StartAt.Clock()
		nsec := w.StartAt.Nanosecond()

		first := rng.Start.Add(-length).In(loc)
		if first.Before(w.StartAt) {
			first = w.StartAt
		}

		y, m, d := first.Date()
		cursor := time.Date(y, m, d, 0, 0, 0, 0, loc)

		for !cursor.After(rng.End) {
			cy, cm, cd := cursor.Date()
			start := time.Date(cy, cm, cd, hour, minute, sec, nsec, loc)

			if w.Recurrence.Until != nil && !start.Before(*w.Recurrence.Until) {
				return
			}

			occ := interval.Interval{Start: start, End: start.Add(length)}

			if !start.Before(w.StartAt) && w.Recurrence.repeatsOn(cursor.Weekday(), w.StartAt.Weekday()) && occ.Overlaps(rng) {
				if !yield(occ) {
					return
				}
			}

			cursor = time.Date(cy, cm, cd+1, 0, 0, 0, 0, loc)
		}
	}
}

// Covers returns the merged occurrences of windows clipped to rng.
func Covers(windows []Window, rng interval.Interval) []interval.Interval {
	var out []interval.Interval

	for _, w := range windows {
		for occ := range w.Occurrences(rng) {
			if clipped, ok := occ.Intersect(rng); ok {
				out = append(out, clipped)
			}
		}
	}

	return interval.Merge(out)
}

// Compare orders windows by start, then end, then id.
func Compare(a, b Window) int {
	if c := interval.Compare(a.Interval(), b.Interval()); c != 0 {
		return c
	}

	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
