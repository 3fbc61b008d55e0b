package typegraph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// TripCountUnknown marks an array dimension whose trip count could not be
// established. It orders before every bounded count, so an unbounded
// dimension compares smaller than any known one.
const TripCountUnknown int64 = -1

// OffsetExpression describes where and how one layout is embedded inside
// another: a byte offset plus one (stride, trip count) pair per array
// nesting level, outermost first. Strides and TripCounts are parallel;
// TripCountUnknown stands for a missing count.
type OffsetExpression struct {
	Offset     int64
	Strides    []int64
	TripCounts []int64
}

// NewOffsetExpression builds a scalar embedding at the given byte offset,
// with no array dimensions.
func NewOffsetExpression(offset int64) OffsetExpression {
	return OffsetExpression{Offset: offset}
}

// AddStride appends one array nesting level. Pass TripCountUnknown when the
// dimension is unbounded.
func (oe *OffsetExpression) AddStride(stride, tripCount int64) {
	oe.Strides = append(oe.Strides, stride)
	oe.TripCounts = append(oe.TripCounts, tripCount)
}

// Compare imposes the strict total order tags are deduplicated under:
// by offset, then lexicographically by strides, then by trip counts.
func (oe OffsetExpression) Compare(o OffsetExpression) int {
	if c := cmp.Compare(oe.Offset, o.Offset); c != 0 {
		return c
	}
	if c := slices.Compare(oe.Strides, o.Strides); c != 0 {
		return c
	}
	return slices.Compare(oe.TripCounts, o.TripCounts)
}

// Less reports whether oe orders before o.
func (oe OffsetExpression) Less(o OffsetExpression) bool {
	return oe.Compare(o) < 0
}

// Equal reports whether oe and o are identical under the total order.
func (oe OffsetExpression) Equal(o OffsetExpression) bool {
	return oe.Compare(o) == 0
}

// clone deep-copies oe so interned tags never alias caller-owned slices.
func (oe OffsetExpression) clone() OffsetExpression {
	return OffsetExpression{
		Offset:     oe.Offset,
		Strides:    slices.Clone(oe.Strides),
		TripCounts: slices.Clone(oe.TripCounts),
	}
}

func (oe OffsetExpression) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "+%d", oe.Offset)
	for i, s := range oe.Strides {
		tc := TripCountUnknown
		if i < len(oe.TripCounts) {
			tc = oe.TripCounts[i]
		}
		if tc == TripCountUnknown {
			fmt.Fprintf(&b, "[%d x ?]", s)
		} else {
			fmt.Fprintf(&b, "[%d x %d]", s, tc)
		}
	}
	return b.String()
}
