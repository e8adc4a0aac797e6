package syntax_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/cubicletools/ctc/pkg/syntax"
)

// describe renders spans as `category "text"` lines for compact comparison.
func describe(src string) string {
	spans := syntax.Classify([]byte(src))

	lines := []string{}
	for _, sp := range spans {
		lines = append(lines, fmt.Sprintf("%s %q", sp.Category, sp.Text([]byte(src))))
	}

	return strings.Join(lines, "\n")
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		src  string
		want []string
	}{
		"transition header": {
			src: "transition req (i j)",
			want: []string{
				`keyword "transition"`,
				`none " "`,
				`identifier "req"`,
				`none " "`,
				`enclosure "("`,
				`identifier "i"`,
				`none " "`,
				`identifier "j"`,
				`enclosure ")"`,
			},
		},
		"update": {
			src: "Timer := 1.5;",
			want: []string{
				`state-variable "Timer"`,
				`none " "`,
				`operator ":="`,
				`none " "`,
				`float "1.5"`,
				`key-character ";"`,
			},
		},
		"guard": {
			src: "requires { State[j] = Idle && Count > 0 }",
			want: []string{
				`keyword "requires"`,
				`none " "`,
				`enclosure "{"`,
				`none " "`,
				`state-variable "State"`,
				`enclosure "["`,
				`identifier "j"`,
				`enclosure "]"`,
				`none " "`,
				`operator "="`,
				`none " "`,
				`state-variable "Idle"`,
				`none " "`,
				`operator "&&"`,
				`none " "`,
				`state-variable "Count"`,
				`none " "`,
				`operator ">"`,
				`none " "`,
				`number "0"`,
				`none " "`,
				`enclosure "}"`,
			},
		},
		"comment with marker": {
			src: "(* TODO fix race *)",
			want: []string{
				`comment "(* "`,
				`comment-marker "TODO"`,
				`comment " fix race *)"`,
			},
		},
		"note marker": {
			src: "(* NOTE: see below *)",
			want: []string{
				`comment "(* "`,
				`comment-marker "NOTE"`,
				`comment ": see below *)"`,
			},
		},
		"nested comment": {
			src: "(* outer (* inner *) tail *)",
			want: []string{
				`comment "(* outer (* inner *) tail *)"`,
			},
		},
		"comment hides code": {
			src: "(* ] := ) *) X",
			want: []string{
				`comment "(* ] := ) *)"`,
				`none " "`,
				`state-variable "X"`,
			},
		},
		"unterminated comment": {
			src: "var (* open",
			want: []string{
				`keyword "var"`,
				`none " "`,
				`comment "(* open"`,
			},
		},
		"marker needs word boundary": {
			src: "(*xTODO*)",
			want: []string{
				`comment "(*xTODO*)"`,
			},
		},
		"stray close paren": {
			src: "x)",
			want: []string{
				`identifier "x"`,
				`error ")"`,
			},
		},
		"mismatched closer": {
			src: "( ] )",
			want: []string{
				`enclosure "("`,
				`none " "`,
				`error "]"`,
				`none " "`,
				`enclosure ")"`,
			},
		},
		"stray comment close": {
			src: "a *) b",
			want: []string{
				`identifier "a"`,
				`none " "`,
				`error "*)"`,
				`none " "`,
				`identifier "b"`,
			},
		},
		"comment inside enclosure": {
			src: "( (* note *) )",
			want: []string{
				`enclosure "("`,
				`none " "`,
				`comment "(* note *)"`,
				`none " "`,
				`enclosure ")"`,
			},
		},
		"shebang": {
			src: "#!/usr/bin/env ctc\nvar X : int",
			want: []string{
				`shebang "#!/usr/bin/env ctc"`,
				`none "\n"`,
				`keyword "var"`,
				`none " "`,
				`state-variable "X"`,
				`none " "`,
				`key-character ":"`,
				`none " "`,
				`type "int"`,
			},
		},
		"shebang only at line start": {
			src: "x #! y",
			want: []string{
				`identifier "x"`,
				`none " #! "`,
				`identifier "y"`,
			},
		},
		"types": {
			src: "array A[proc] : bool",
			want: []string{
				`keyword "array"`,
				`none " "`,
				`state-variable "A"`,
				`enclosure "["`,
				`type "proc"`,
				`enclosure "]"`,
				`none " "`,
				`key-character ":"`,
				`none " "`,
				`type "bool"`,
			},
		},
		"case arm": {
			src: "case | _ : True",
			want: []string{
				`keyword "case"`,
				`none " "`,
				`key-character "|"`,
				`none " "`,
				`symbol "_"`,
				`none " "`,
				`key-character ":"`,
				`none " "`,
				`boolean "True"`,
			},
		},
		"nondeterministic update": {
			src: "A[j] := ?;",
			want: []string{
				`state-variable "A"`,
				`enclosure "["`,
				`identifier "j"`,
				`enclosure "]"`,
				`none " "`,
				`operator ":="`,
				`none " "`,
				`symbol "?"`,
				`key-character ";"`,
			},
		},
		"splice after keyword": {
			src: "var@T@",
			want: []string{
				`keyword "var"`,
				`key-character "@"`,
				`state-variable "T"`,
				`key-character "@"`,
			},
		},
		"splice inside identifier": {
			src: "flag@i@x",
			want: []string{
				`identifier "flag@i@x"`,
			},
		},
		"dotted context ref": {
			src: "@1.field@",
			want: []string{
				`key-character "@"`,
				`number "1"`,
				`key-character "."`,
				`identifier "field@"`,
			},
		},
		"qualified state": {
			src: "Foo.Bar",
			want: []string{
				`state-variable "Foo"`,
				`key-character "."`,
				`state-variable "Bar"`,
			},
		},
		"integers": {
			src: "-12_3L +7 1_000 42",
			want: []string{
				`number "-12_3L"`,
				`none " "`,
				`number "+7"`,
				`none " "`,
				`number "1_000"`,
				`none " "`,
				`number "42"`,
			},
		},
		"floats": {
			src: "1.5 -2. 3e8 6.02e-23",
			want: []string{
				`float "1.5"`,
				`none " "`,
				`float "-2."`,
				`none " "`,
				`float "3e8"`,
				`none " "`,
				`float "6.02e-23"`,
			},
		},
		"marker words are plain state vars in code": {
			src: "TODO := True",
			want: []string{
				`state-variable "TODO"`,
				`none " "`,
				`operator ":="`,
				`none " "`,
				`boolean "True"`,
			},
		},
		"adjacent delimiters merge": {
			src: "([{}])",
			want: []string{
				`enclosure "([{}])"`,
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := describe(tc.src)
			want := strings.Join(tc.want, "\n")

			if got != want {
				t.Errorf("classify %q:\ngot:\n%s\nwant:\n%s", tc.src, got, want)
			}
		})
	}
}

func TestClassifyOffsets(t *testing.T) {
	t.Parallel()

	got := syntax.Classify([]byte("x := 3"))
	want := []syntax.Span{
		{Start: 0, End: 1, Category: syntax.Ident},
		{Start: 1, End: 2, Category: syntax.None},
		{Start: 2, End: 4, Category: syntax.Operator},
		{Start: 4, End: 5, Category: syntax.None},
		{Start: 5, End: 6, Category: syntax.Number},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestClassifyCoversBuffer(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"",
		"transition t (i)\nrequires { True }\n{ X := ?; }",
		"(* unterminated",
		"#!header\n)} ] *) fine",
		"-1.5e3 _ ? @ | ;;",
	}

	for _, src := range srcs {
		spans := syntax.Classify([]byte(src))

		pos := 0

		for _, sp := range spans {
			if sp.Start != pos {
				t.Fatalf("%q: span %v starts at %d, want %d", src, sp, sp.Start, pos)
			}

			if sp.End <= sp.Start {
				t.Fatalf("%q: empty span %v", src, sp)
			}

			pos = sp.End
		}

		if pos != len(src) {
			t.Fatalf("%q: spans end at %d, want %d", src, pos, len(src))
		}
	}
}

func TestKeywordsAreWholeWords(t *testing.T) {
	t.Parallel()

	keywords := []string{
		"type", "array", "var", "const", "init", "unsafe", "invariant",
		"number_procs", "transition", "requires", "forall_other", "case",
	}

	for _, kw := range keywords {
		spans := syntax.Classify([]byte(kw))
		if len(spans) != 1 || spans[0].Category != syntax.Keyword {
			t.Errorf("%q alone: got %v, want one keyword span", kw, spans)
		}

		for _, src := range []string{"x" + kw, kw + "x"} {
			spans := syntax.Classify([]byte(src))
			if len(spans) != 1 || spans[0].Category != syntax.Ident {
				t.Errorf("%q: got %v, want one identifier span", src, spans)
			}
		}
	}
}

func TestBalancedDelimitersNeverError(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"()",
		"[]",
		"{}",
		"([]{})",
		"( [ { } ] )",
		"{ A[i] := (x); }",
		"(* ( [ { *) ok",
	}

	for _, src := range srcs {
		for _, sp := range syntax.Classify([]byte(src)) {
			if sp.Category == syntax.Error {
				t.Errorf("%q: unexpected error span %v", src, sp)
			}
		}
	}
}

func TestUnmatchedClosersError(t *testing.T) {
	t.Parallel()

	for _, src := range []string{")", "]", "}"} {
		spans := syntax.Classify([]byte(src))
		want := []syntax.Span{{Start: 0, End: 1, Category: syntax.Error}}

		if !reflect.DeepEqual(spans, want) {
			t.Errorf("%q: got %v, want %v", src, spans, want)
		}
	}
}
