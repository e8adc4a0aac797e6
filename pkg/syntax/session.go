package syntax

import (
	"sort"

	"github.com/cubicletools/ctc/polyfill"
)

// syncInterval is the spacing between resume points recorded during a
// scan. Smaller intervals cost memory, larger ones cost rescan time after
// an edit near the end of a large buffer.
const syncInterval = 128

// A point is a resume position: a scan restarted at off with the recorded
// scope stack produces the same spans as a scan from the top of the
// buffer. Points sit on token boundaries, where the stack is the entire
// scan state.
type point struct {
	off   int
	stack []scope
}

// Session caches resume points across calls so a host re-rendering a
// window deep in a large buffer does not rescan from the top every time.
// The zero value is ready to use.
//
// A Session is tied to one logical buffer. After an edit, call
// [Session.Invalidate] with the lowest changed offset before classifying
// again. Sessions are not safe for concurrent use.
type Session struct {
	points []point
}

func NewSession() *Session {
	return &Session{}
}

// Classify returns the spans covering [lo, hi) of src, clipped to the
// range and with adjacent same-category spans merged. Offsets outside the
// buffer are clamped. The spans are contiguous; unclassified stretches
// appear as None spans rather than gaps.
func (s *Session) Classify(src []byte, lo, hi int) []Span {
	lo = clamp(lo, 0, len(src))
	hi = clamp(hi, lo, len(src))

	c := &cursor{src: src}

	if i := s.resumeIndex(lo); i >= 0 {
		c.pos = s.points[i].off
		c.stack = polyfill.SlicesClone(s.points[i].stack)
	}

	var spans []Span

	for c.pos < hi {
		s.record(c)

		sp := c.step()

		if sp.End <= lo {
			continue
		}

		if sp.Start < lo {
			sp.Start = lo
		}

		if sp.End > hi {
			sp.End = hi
		}

		if n := len(spans); n > 0 && spans[n-1].Category == sp.Category {
			spans[n-1].End = sp.End
			continue
		}

		spans = append(spans, sp)
	}

	return spans
}

// Invalidate drops the resume points an edit at off makes stale. Points at
// or before the edit only depend on content before it and survive.
func (s *Session) Invalidate(off int) {
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].off > off
	})

	s.points = s.points[:i]
}

// resumeIndex returns the index of the last point at or before lo, or -1
// when the scan has to start from the top.
func (s *Session) resumeIndex(lo int) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.points[i].off > lo
	}) - 1
}

// record snapshots a resume point once the scan has moved a full interval
// past the last recorded one. Rescans over already-covered territory
// record nothing, which keeps points sorted and unique.
func (s *Session) record(c *cursor) {
	last := 0

	if n := len(s.points); n > 0 {
		last = s.points[n-1].off
	}

	if c.pos-last < syncInterval {
		return
	}

	s.points = append(s.points, point{
		off:   c.pos,
		stack: polyfill.SlicesClone(c.stack),
	})
}

// Classify classifies an entire buffer in one pass, without caching.
func Classify(src []byte) []Span {
	return NewSession().Classify(src, 0, len(src))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
