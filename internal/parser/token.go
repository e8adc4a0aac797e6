package parser

import (
	"fmt"

	"github.com/cubicletools/ctc/pkg/syntax"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokOp
	tokPunct
)

// token is one parse token with its byte offset in the source. Word
// tokens cover identifiers, keywords, booleans and numeric literals; op
// tokens cover := && || = <> < > <= >= + -; everything else is a
// single-character punct.
type token struct {
	kind tokenKind
	text string
	off  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}

	return fmt.Sprintf("%q", t.text)
}

// adjacent reports whether b starts exactly where a ends. Names are
// assembled from runs of adjacent tokens, so a space is what separates
// the name "x_@0@" from "x_" followed by a reference.
func adjacent(a, b token) bool {
	return a.off+len(a.text) == b.off
}

// opTokens in split order; two-character operators first so a merged
// span like "<=" is not read as "<" then "=".
var opTokens = []string{":=", "&&", "||", "<=", ">=", "<>", "<", ">", "="}

// scan converts classified spans into parse tokens. Comment and shebang
// spans vanish here, which keeps comment handling in one place.
//
// Span boundaries do not line up with token boundaries: the classifier
// folds @ and . into identifier spans to keep template names whole, and
// merges adjacent same-category spans. Identifier spans are split back
// into word and punctuation tokens, operator spans into individual
// operators, and delimiter spans into single characters; the parser
// re-glues template names from token adjacency.
func scan(src []byte) []token {
	toks := []token{}

	for _, sp := range syntax.Classify(src) {
		text := sp.Text(src)

		switch sp.Category {
		case syntax.Comment, syntax.Shebang, syntax.CommentMarker:
			continue

		case syntax.None:
			for j := 0; j < len(text); j++ {
				switch b := text[j]; b {
				case ' ', '\t', '\r', '\n':

				case '+', '-':
					toks = append(toks, token{tokOp, string(b), sp.Start + j})

				default:
					toks = append(toks, token{tokPunct, string(b), sp.Start + j})
				}
			}

		case syntax.Ident:
			toks = append(toks, splitIdent(text, sp.Start)...)

		case syntax.Operator:
			toks = append(toks, splitOperators(text, sp.Start)...)

		case syntax.KeyChar, syntax.Enclosure, syntax.Symbol, syntax.Error:
			for j := 0; j < len(text); j++ {
				toks = append(toks, token{tokPunct, string(text[j]), sp.Start + j})
			}

		default:
			toks = append(toks, token{tokWord, text, sp.Start})
		}
	}

	return append(toks, token{kind: tokEOF, off: len(src)})
}

// splitIdent breaks an identifier span into word runs and the @ and .
// characters embedded by template references.
func splitIdent(text string, off int) []token {
	toks := []token{}

	j := 0
	for j < len(text) {
		if text[j] == '@' || text[j] == '.' {
			toks = append(toks, token{tokPunct, string(text[j]), off + j})
			j++

			continue
		}

		k := j
		for k < len(text) && text[k] != '@' && text[k] != '.' {
			k++
		}

		toks = append(toks, token{tokWord, text[j:k], off + j})
		j = k
	}

	return toks
}

// splitOperators breaks a merged operator span like "<=" or ":=<" into
// individual operator tokens, longest match first.
func splitOperators(text string, off int) []token {
	toks := []token{}

	j := 0
	for j < len(text) {
		matched := false

		for _, op := range opTokens {
			if len(text)-j >= len(op) && text[j:j+len(op)] == op {
				toks = append(toks, token{tokOp, op, off + j})
				j += len(op)
				matched = true

				break
			}
		}

		if !matched {
			toks = append(toks, token{tokOp, string(text[j]), off + j})
			j++
		}
	}

	return toks
}
