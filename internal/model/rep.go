// Package model holds the core domain types for territory allocation.
package model

// Segment is the market segment a rep or account belongs to.
type Segment string

const (
	SegmentEnterprise Segment = "Enterprise"
	SegmentMidMarket  Segment = "Mid Market"
)

// Valid reports whether s is one of the two known segments.
func (s Segment) Valid() bool {
	return s == SegmentEnterprise || s == SegmentMidMarket
}

// Rep represents a sales representative. Name is the identity key and is
// compared case-sensitively everywhere except geo matching.
type Rep struct {
	Name     string  `json:"rep_name"`
	Segment  Segment `json:"segment"`
	Location string  `json:"location"`
}

// RepsBySegment returns the reps belonging to the given segment, in input order.
func RepsBySegment(reps []Rep, segment Segment) []Rep {
	var out []Rep
	for _, r := range reps {
		if r.Segment == segment {
			out = append(out, r)
		}
	}
	return out
}
