package syntax

import "fmt"

// Span is a half-open byte range [Start, End) with a single category.
// Spans produced by classification are contiguous: each span starts where
// the previous one ended, so together they cover the classified range with
// no gaps or overlaps.
type Span struct {
	Start    int
	End      int
	Category Category
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the source text the span covers.
func (s Span) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d) %s", s.Start, s.End, s.Category)
}
