package highlight_test

import (
	"bytes"
	"testing"

	"github.com/alecthomas/chroma"

	"github.com/cubicletools/ctc/internal/highlight"
	"github.com/cubicletools/ctc/pkg/errors"
	"github.com/cubicletools/ctc/pkg/syntax"
)

const sample = `#!ctc
(* protocol sketch TODO revisit *)
number_procs 3
type state = Idle | Busy
array Flag[proc] : bool
init (i) { Flag[i] = False }
transition go (i) { Flag[i] := True; }
`

func TestTokensReconstructInput(t *testing.T) {
	t.Parallel()

	b := &bytes.Buffer{}
	for _, tok := range highlight.Tokens([]byte(sample)) {
		b.WriteString(tok.Value)
	}

	if b.String() != sample {
		t.Errorf("tokens reconstruct %q, want %q", b.String(), sample)
	}
}

func TestTokenTypes(t *testing.T) {
	t.Parallel()

	cases := map[syntax.Category]chroma.TokenType{
		syntax.Keyword:       chroma.Keyword,
		syntax.Type:          chroma.KeywordType,
		syntax.Boolean:       chroma.KeywordConstant,
		syntax.Ident:         chroma.Name,
		syntax.StateVar:      chroma.NameVariable,
		syntax.Operator:      chroma.Operator,
		syntax.KeyChar:       chroma.Punctuation,
		syntax.Enclosure:     chroma.Punctuation,
		syntax.Number:        chroma.LiteralNumberInteger,
		syntax.Float:         chroma.LiteralNumberFloat,
		syntax.Shebang:       chroma.CommentHashbang,
		syntax.Comment:       chroma.CommentMultiline,
		syntax.CommentMarker: chroma.CommentSpecial,
		syntax.Error:         chroma.Error,
		syntax.None:          chroma.Text,
	}

	for cat, want := range cases {
		if got := highlight.TokenType(cat); got != want {
			t.Errorf("%s maps to %s, want %s", cat, got, want)
		}
	}
}

func TestRenderNoop(t *testing.T) {
	t.Parallel()

	b := &bytes.Buffer{}

	err := highlight.Render(b, []byte(sample), "", "noop")
	if err != nil {
		t.Fatal(err)
	}

	if b.String() != sample {
		t.Errorf("noop render %q, want %q", b.String(), sample)
	}
}

func TestRenderTerminal(t *testing.T) {
	t.Parallel()

	b := &bytes.Buffer{}

	err := highlight.Render(b, []byte(sample), "native", "terminal256")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(b.Bytes(), []byte("number_procs")) {
		t.Error("render output lost source text")
	}

	if !bytes.Contains(b.Bytes(), []byte("\x1b[")) {
		t.Error("terminal render has no escape sequences")
	}
}

func TestUnknownNames(t *testing.T) {
	t.Parallel()

	err := highlight.Render(&bytes.Buffer{}, []byte(sample), "no-such-style", "noop")
	if !errors.Is(err, errors.ErrUnknownStyle) {
		t.Errorf("style error = %v", err)
	}

	err = highlight.Render(&bytes.Buffer{}, []byte(sample), "", "no-such-formatter")
	if !errors.Is(err, errors.ErrUnknownStyle) {
		t.Errorf("formatter error = %v", err)
	}
}
