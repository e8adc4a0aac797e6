// Package highlight renders classified cubicle source through chroma
// styles and formatters. The classifier does the lexing; this package
// only maps its categories onto chroma token types and drives a
// formatter, so every chroma style and output device works unchanged.
package highlight

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"

	"github.com/cubicletools/ctc/pkg/errors"
	"github.com/cubicletools/ctc/pkg/syntax"
)

var tokenTypes = map[syntax.Category]chroma.TokenType{
	syntax.None:          chroma.Text,
	syntax.Shebang:       chroma.CommentHashbang,
	syntax.Comment:       chroma.CommentMultiline,
	syntax.CommentMarker: chroma.CommentSpecial,
	syntax.Keyword:       chroma.Keyword,
	syntax.Type:          chroma.KeywordType,
	syntax.Boolean:       chroma.KeywordConstant,
	syntax.Ident:         chroma.Name,
	syntax.StateVar:      chroma.NameVariable,
	syntax.Operator:      chroma.Operator,
	syntax.Symbol:        chroma.Punctuation,
	syntax.KeyChar:       chroma.Punctuation,
	syntax.Number:        chroma.LiteralNumberInteger,
	syntax.Float:         chroma.LiteralNumberFloat,
	syntax.Enclosure:     chroma.Punctuation,
	syntax.Error:         chroma.Error,
}

// TokenType maps a classifier category to its chroma token type.
func TokenType(c syntax.Category) chroma.TokenType {
	t, found := tokenTypes[c]
	if !found {
		return chroma.Text
	}

	return t
}

// Tokens classifies src and converts the spans to chroma tokens. The
// concatenated token values reproduce src exactly.
func Tokens(src []byte) []chroma.Token {
	spans := syntax.Classify(src)

	tokens := make([]chroma.Token, len(spans))
	for i, s := range spans {
		tokens[i] = chroma.Token{Type: TokenType(s.Category), Value: s.Text(src)}
	}

	return tokens
}

// Style resolves a chroma style by name. The empty name selects the
// fallback style.
func Style(name string) (*chroma.Style, error) {
	if name == "" {
		return styles.Fallback, nil
	}

	s, found := styles.Registry[name]
	if !found {
		return nil, fmt.Errorf("%s: %w", name, errors.ErrUnknownStyle)
	}

	return s, nil
}

// Formatter resolves a chroma formatter by name. The empty name selects
// the fallback formatter.
func Formatter(name string) (chroma.Formatter, error) {
	if name == "" {
		return formatters.Fallback, nil
	}

	f, found := formatters.Registry[name]
	if !found {
		return nil, fmt.Errorf("formatter %s: %w", name, errors.ErrUnknownStyle)
	}

	return f, nil
}

// Render classifies src and writes it highlighted to w.
func Render(w io.Writer, src []byte, styleName, formatterName string) error {
	style, err := Style(styleName)
	if err != nil {
		return err
	}

	formatter, err := Formatter(formatterName)
	if err != nil {
		return err
	}

	return formatter.Format(w, style, chroma.Literator(Tokens(src)...))
}
