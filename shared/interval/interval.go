// Package interval holds the half-open time interval arithmetic used by scheduling:
// overlap and containment tests, normalization of interval sets, subtraction and slicing.
//
// All intervals are [Start, End). Two intervals that share only an endpoint do not overlap,
// but they do touch.
package interval

import (
	"iter"
	"slices"
	"time"

	"visit/shared/failure"
)

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New returns the interval [start, end) or an InvalidInterval failure when start is not before end.
func New(start, end time.Time) (Interval, error) {
	in := Interval{Start: start, End: end}
	if err := in.Validate(); err != nil {
		return Interval{}, err
	}

	return in, nil
}

func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return failure.InvalidInterval("interval start and end are required")
	}

	if !i.Start.Before(i.End) {
		return failure.InvalidInterval("interval start must be before end")
	}

	return nil
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// Overlaps reports whether i and other share at least one instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Touches reports whether i and other overlap or are contiguous.
func (i Interval) Touches(other Interval) bool {
	return !i.Start.After(other.End) && !other.Start.After(i.End)
}

// Contains reports whether other lies fully inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Intersect returns the common part of i and other. ok is false when they do not overlap.
func (i Interval) Intersect(other Interval) (res Interval, ok bool) {
	res = Interval{Start: later(i.Start, other.Start), End: earlier(i.End, other.End)}
	if res.IsEmpty() {
		return Interval{}, false
	}

	return res, true
}

// Union returns the smallest interval covering both i and other.
func (i Interval) Union(other Interval) Interval {
	return Interval{Start: earlier(i.Start, other.Start), End: later(i.End, other.End)}
}

func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

func (i Interval) String() string {
	return "[" + i.Start.Format(time.RFC3339) + ", " + i.End.Format(time.RFC3339) + ")"
}

// Split yields consecutive granularity-sized slices of i starting at i.Start.
// A trailing remainder shorter than granularity is dropped.
func (i Interval) Split(granularity time.Duration) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		if granularity <= 0 {
			return
		}

		for start := i.Start; !start.Add(granularity).After(i.End); start = start.Add(granularity) {
			if !yield(Interval{Start: start, End: start.Add(granularity)}) {
				return
			}
		}
	}
}

// Sort orders intervals by start, then end.
func Sort(in []Interval) {
	slices.SortFunc(in, Compare)
}

func Compare(a, b Interval) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}

	return a.End.Compare(b.End)
}

// Merge returns the minimal set of non-overlapping, non-touching intervals covering in, sorted by start.
// The input is not modified.
func Merge(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}

	sorted := slices.Clone(in)
	Sort(sorted)

	out := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		if last.Touches(cur) {
			*last = last.Union(cur)

			continue
		}

		out = append(out, cur)
	}

	return out
}

// Subtract removes every busy interval from each free interval and returns what remains, sorted.
func Subtract(free, busy []Interval) []Interval {
	busy = Merge(busy)
	out := []Interval{}

	for _, f := range Merge(free) {
		rest := []Interval{f}

		for _, b := range busy {
			next := rest[:0:0]

			for _, r := range rest {
				next = append(next, cut(r, b)...)
			}

			rest = next
		}

		out = append(out, rest...)
	}

	return out
}

// cut returns the parts of r that are outside b.
func cut(r, b Interval) []Interval {
	if !r.Overlaps(b) {
		return []Interval{r}
	}

	parts := []Interval{}
	if r.Start.Before(b.Start) {
		parts = append(parts, Interval{Start: r.Start, End: b.Start})
	}

	if b.End.Before(r.End) {
		parts = append(parts, Interval{Start: b.End, End: r.End})
	}

	return parts
}

// AnyOverlaps reports whether target overlaps at least one interval of set.
func AnyOverlaps(set []Interval, target Interval) bool {
	return slices.ContainsFunc(set, target.Overlaps)
}

// AnyContains reports whether at least one interval of set fully contains target.
func AnyContains(set []Interval, target Interval) bool {
	return slices.ContainsFunc(set, func(in Interval) bool {
		return in.Contains(target)
	})
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}

	return b
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}
