package template_test

import (
	"strings"
	"testing"

	"github.com/cubicletools/ctc/internal/parser"
	"github.com/cubicletools/ctc/internal/printer"
	"github.com/cubicletools/ctc/internal/template"
	"github.com/cubicletools/ctc/pkg/errors"
)

func expand(t *testing.T, src string, data any) string {
	t.Helper()

	m, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	out, err := template.Expand(m, data)
	if err != nil {
		t.Fatal(err)
	}

	return string(printer.Source(out))
}

func TestExpandModel(t *testing.T) {
	t.Parallel()

	src := `
number_procs 2
type msg = Empty | @q@ (Req_@0@ | Ack_@0@)
type token

@q@ var pending_@0@ : bool
array Chan[proc] : msg

init (i) { Chan[i] = Empty && @q@ (&& pending_@0@ = False) }

unsafe (i j) { @q | @0.critical@ = True@ (|| Chan[i] = Req_@0@ && Chan[j] = Req_@0@) }

@q@ transition send_@0@ (i)
	requires { pending_@0@ = False }
{
	pending_@0@ := True;
	Chan[i] := Req_@0@;
}
`

	data := map[string]any{
		"q": map[string]any{
			"a": map[string]any{"critical": true},
			"b": map[string]any{"critical": false},
		},
	}

	want := `number_procs 2
type msg = Empty | Req_a | Ack_a | Req_b | Ack_b
type token
var pending_a : bool
var pending_b : bool
array Chan[proc] : msg
init (i) { Chan[i] = Empty && pending_a = False && pending_b = False }
unsafe (i j) { Chan[i] = Req_a && Chan[j] = Req_a }
transition send_a (i)
	requires { pending_a = False }
{
	pending_a := True;
	Chan[i] := Req_a;
}
transition send_b (i)
	requires { pending_b = False }
{
	pending_b := True;
	Chan[i] := Req_b;
}
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandChainedArguments(t *testing.T) {
	t.Parallel()

	src := `
@t@ var act_@0@ : bool

init () { act_A = False }

@t, 0.dep@ transition start_@0@_from_@1@ (i)
	requires { act_@1@ = True }
{
	act_@0@ := True;
}
`

	data := map[string]any{
		"t": map[string]any{
			"A": map[string]any{"dep": []any{}},
			"B": map[string]any{"dep": []any{"A"}},
			"C": map[string]any{"dep": []any{"A", "B"}},
		},
	}

	want := `var act_A : bool
var act_B : bool
var act_C : bool
init () { act_A = False }
transition start_B_from_A (i)
	requires { act_A = True }
{
	act_B := True;
}
transition start_C_from_A (i)
	requires { act_A = True }
{
	act_C := True;
}
transition start_C_from_B (i)
	requires { act_B = True }
{
	act_C := True;
}
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandValuesAndOrdering(t *testing.T) {
	t.Parallel()

	src := `
@n@ var slot_@0@ : int
@m@ var cell_@0@_@0.value@ : int
init () { slot_1 = 0 }
`

	data := map[string]any{
		"n": []any{float64(3), float64(1), float64(2)},
		"m": map[string]any{"x": float64(5)},
	}

	want := `var slot_1 : int
var slot_2 : int
var slot_3 : int
var cell_x_5 : int
init () { slot_1 = 0 }
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandConditionPairs(t *testing.T) {
	t.Parallel()

	src := `
init () { x = x }

@p, p | @0@ <> @1@@ transition mv_@0@_@1@ (i)
{
	Own_@0@[i] := False;
	Own_@1@[i] := True;
}
`

	data := map[string]any{
		"p": map[string]any{"A": nil, "B": nil},
	}

	want := `init () { x = x }
transition mv_A_B (i)
{
	Own_A[i] := False;
	Own_B[i] := True;
}
transition mv_B_A (i)
{
	Own_B[i] := False;
	Own_A[i] := True;
}
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandNestedOrRewrite(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		src  string
		want string
	}{
		"single": {
			src:  "init () { A = On && (B = On || C = On) }\n",
			want: "init () { A = On && B = On || A = On && C = On }\n",
		},
		"product": {
			src: "init () { (B = On || C = On) && (D = On || E = On) }\n",
			want: "init () { B = On && D = On || B = On && E = On" +
				" || C = On && D = On || C = On && E = On }\n",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := expand(t, tc.src, nil); got != tc.want {
				t.Errorf("expanded:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestExpandEmptyIterators(t *testing.T) {
	t.Parallel()

	// Empty instance sets remove what they guard: the case arm, the
	// update-free transition, the quantification, and the invariant.
	src := `
init (i) { forall_other j. (@e@ (|| F_@0@[j] = On)) && X = On }

@e@ invariant (i) { G_@0@[i] = On }

transition keep (i)
{
	X := case
		@e@ (| X = V_@0@ : W_@0@)
		| _ : X;
}

transition gone (i)
{
	@e@ (Y_@0@ := True;)
}
`

	data := map[string]any{"e": map[string]any{}}

	want := `init (i) { X = On }
transition keep (i)
{
	X := case
		| _ : X
	;
}
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandOrIterator(t *testing.T) {
	t.Parallel()

	src := `
init () { x = x }
unsafe (i) { @t@ (|| Bad_@0@[i] = On) }
`

	data := map[string]any{"t": map[string]any{"A": nil, "B": nil}}

	want := `init () { x = x }
unsafe (i) { Bad_A[i] = On || Bad_B[i] = On }
`

	if got := expand(t, src, data); got != want {
		t.Errorf("expanded:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		src  string
		data any
		want string
		is   error
	}{
		"missing data name": {
			src:  "@missing@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{},
			want: "name missing not found in input data",
			is:   errors.ErrBadRef,
		},
		"no data document": {
			src:  "@t@ var v_@0@ : bool\ninit () { x = x }\n",
			data: nil,
			want: "wrong data format",
			is:   errors.ErrDataFormat,
		},
		"undefined index": {
			src:  "var v_@2@ : bool\ninit () { x = x }\n",
			data: map[string]any{},
			want: "index 2 undefined (defined = [])",
			is:   errors.ErrBadRef,
		},
		"missing field": {
			src:  "@t@ var v_@0.size@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"A": nil}},
			want: "field size not found in context {_key: A}",
			is:   errors.ErrBadRef,
		},
		"malformed name": {
			src:  "@t@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"has space": nil}},
			want: "in name v_@0@: malformed: v_has space",
			is:   errors.ErrBadName,
		},
		"not iterable": {
			src:  "@t@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": "abc"},
			want: "expanded value is not iterable: abc",
			is:   errors.ErrNotIterable,
		},
		"nested or in case condition": {
			src: "init () { x = x }\ntransition t (i)\n" +
				"{ X := case | (a = b || c = d) : e | _ : f; }\n",
			data: map[string]any{},
			want: "nested or expression not allowed here: (a = b || c = d)",
			is:   errors.ErrExpand,
		},
		"array in condition": {
			src:  "@t | A[i] = B@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"A": nil}},
			want: "arrays are not allowed in text evaluation",
			is:   errors.ErrBadCond,
		},
		"ordering in condition": {
			src:  "@t | @0@ < b@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"A": nil}},
			want: "< operations are not allowed in text evaluation",
			is:   errors.ErrBadCond,
		},
		"arithmetic in condition": {
			src:  "@t | @0@ = b + c@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"A": nil}},
			want: "+/- operations are not allowed in text evaluation",
			is:   errors.ErrBadCond,
		},
		"forall in condition": {
			src:  "@t | forall_other j. a = b@ var v_@0@ : bool\ninit () { x = x }\n",
			data: map[string]any{"t": map[string]any{"A": nil}},
			want: "forall constructs are not allowed in text evaluation",
			is:   errors.ErrBadCond,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, err := parser.Parse([]byte(tc.src))
			if err != nil {
				t.Fatal(err)
			}

			_, err = template.Expand(m, tc.data)
			if err == nil {
				t.Fatal("expansion succeeded")
			}

			if !errors.Is(err, tc.is) {
				t.Errorf("error %v does not wrap %v", err, tc.is)
			}

			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestExpandErrorPosition(t *testing.T) {
	t.Parallel()

	src := "init () { x = x }\n\n@t@ var v_@0@ : bool\n"

	m, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	_, err = template.Expand(m, map[string]any{})
	if err == nil {
		t.Fatal("expansion succeeded")
	}

	if !strings.Contains(err.Error(), "line 3: in template t:") {
		t.Errorf("error %q does not name line 3", err.Error())
	}
}
