package ctc

import (
	"github.com/cubicletools/ctc/internal/format"
	"github.com/cubicletools/ctc/pkg/syntax"
)

// Tokens classifies src and returns its lexical spans. Adjacent spans with
// the same category are merged.
func Tokens(src []byte) []syntax.Span {
	return syntax.Classify(src)
}

// TokensOutput classifies src and marshals the spans in the named format.
// Each span records its byte range, category, presentation group (when the
// category has one), and covered text.
func TokensOutput(src []byte, formatName string) ([]byte, error) {
	ft, err := format.Get(formatName)
	if err != nil {
		return nil, err
	}

	spans := []any{}

	for _, span := range syntax.Classify(src) {
		entry := map[string]any{
			"start":    span.Start,
			"end":      span.End,
			"category": span.Category.String(),
			"text":     span.Text(src),
		}

		if group := span.Category.Group(); group != syntax.GroupNone {
			entry["group"] = string(group)
		}

		spans = append(spans, entry)
	}

	return ft.Marshal(map[string]any{"spans": spans})
}

// TokenCounts classifies src and returns the number of spans per category.
// Categories that never occur are absent from the map.
func TokenCounts(src []byte) map[string]int {
	counts := map[string]int{}

	for _, span := range syntax.Classify(src) {
		counts[span.Category.String()]++
	}

	return counts
}

// CountsOutput marshals TokenCounts in the named format.
func CountsOutput(src []byte, formatName string) ([]byte, error) {
	return marshalCounts(TokenCounts(src), formatName)
}

// GroupCounts classifies src and returns the number of spans per
// presentation group. Spans whose category has no group are not counted.
func GroupCounts(src []byte) map[string]int {
	counts := map[string]int{}

	for _, span := range syntax.Classify(src) {
		if group := span.Category.Group(); group != syntax.GroupNone {
			counts[string(group)]++
		}
	}

	return counts
}

// GroupCountsOutput marshals GroupCounts in the named format.
func GroupCountsOutput(src []byte, formatName string) ([]byte, error) {
	return marshalCounts(GroupCounts(src), formatName)
}

func marshalCounts(counts map[string]int, formatName string) ([]byte, error) {
	ft, err := format.Get(formatName)
	if err != nil {
		return nil, err
	}

	doc := map[string]any{}
	for key, n := range counts {
		doc[key] = n
	}

	return ft.Marshal(doc)
}
