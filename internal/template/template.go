// Package template expands cubicle template trees into plain cubicle
// models. Template declarations replicate their statement once per data
// instance, iterators replicate expression and update fragments, and
// @...@ references splice data values into names. Statements whose
// iterators produce no instances are removed rather than left behind
// malformed.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cubicletools/ctc/internal/ast"
	"github.com/cubicletools/ctc/internal/printer"
	"github.com/cubicletools/ctc/pkg/errors"
	"github.com/cubicletools/ctc/polyfill"
)

// An instance is one point of the iteration space: the entries bound by
// the enclosing template declarations, in binding order. References of
// the form @N@ and @N.field@ index into it.
type instance []map[string]any

// instanceKey is the entry field holding the iteration key itself.
const instanceKey = "_key"

// instanceValue is the entry field holding a scalar mapping value.
const instanceValue = "value"

var nameFormat = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Expand compiles a template model to an expanded model using the given
// data document. A nil or non-map document fails as soon as a data
// argument is referenced, so data-free sources expand without any
// document at all.
func Expand(m *ast.Model, data any) (*ast.Model, error) {
	e := &engine{data: data}

	out := &ast.Model{SizeProc: m.SizeProc}

	for _, t := range m.Types {
		td, err := e.typeDef(t)
		if err != nil {
			return nil, err
		}

		out.Types = append(out.Types, td)
	}

	for _, d := range m.Decls {
		insts, err := e.instances(d.Template, instance{})
		if err != nil {
			return nil, err
		}

		for _, inst := range insts {
			nd, err := e.decl(d, inst)
			if err != nil {
				return nil, err
			}

			out.Decls = append(out.Decls, nd)
		}
	}

	if m.Init != nil {
		expr, err := e.orExpr(m.Init.Expr, instance{})
		if err != nil {
			return nil, err
		}

		if expr != nil {
			out.Init = &ast.ProcExpr{Pos: m.Init.Pos, Procs: m.Init.Procs, Expr: expr}
		}
	}

	var err error

	out.Invariants, err = e.procExprList(m.Invariants)
	if err != nil {
		return nil, err
	}

	out.Unsafes, err = e.procExprList(m.Unsafes)
	if err != nil {
		return nil, err
	}

	for _, t := range m.Transitions {
		insts, err := e.instances(t.Template, instance{})
		if err != nil {
			return nil, err
		}

		for _, inst := range insts {
			nt, err := e.transition(t, inst)
			if err != nil {
				return nil, err
			}

			if nt != nil {
				out.Transitions = append(out.Transitions, nt)
			}
		}
	}

	return out, nil
}

type engine struct {
	data any
}

// expandRef resolves one template reference in an instance. Errors name
// the source line and the reference.
func (e *engine) expandRef(t *ast.TemplateRef, ctx instance) (any, error) {
	v, err := e.lookupRef(t, ctx)
	if err != nil {
		return nil, fmt.Errorf("line %d: in template %s: %w", t.Pos.Line, printer.TemplateRef(t), err)
	}

	return v, nil
}

func (e *engine) lookupRef(t *ast.TemplateRef, ctx instance) (any, error) {
	if t.Arg != "" {
		doc, valid := e.data.(map[string]any)
		if !valid {
			return nil, fmt.Errorf("wrong data format (%w)", errors.ErrDataFormat)
		}

		v, found := doc[t.Arg]
		if !found {
			return nil, fmt.Errorf("name %s not found in input data (%w)", t.Arg, errors.ErrBadRef)
		}

		return v, nil
	}

	if t.Key < 0 || t.Key >= len(ctx) {
		return nil, fmt.Errorf("index %d undefined (defined = %s) (%w)", t.Key, definedIndexes(len(ctx)), errors.ErrBadRef)
	}

	field := t.Field
	if field == "" {
		field = instanceKey
	}

	v, found := ctx[t.Key][field]
	if !found {
		return nil, fmt.Errorf("field %s not found in context %s (%w)", field, formatEntry(ctx[t.Key]), errors.ErrBadRef)
	}

	return v, nil
}

func definedIndexes(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.Itoa(i)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func formatEntry(entry map[string]any) string {
	keys := polyfill.MapsKeys(entry)
	polyfill.SlicesSort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, formatValue(entry[k]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue renders a data value the way it is spliced into names.
// Booleans render in cubicle spelling and integral floats render without
// a fractional part, so JSON numbers behave as integers.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x

	case bool:
		if x {
			return "True"
		}

		return "False"

	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}

		return strconv.FormatFloat(x, 'g', -1, 64)

	case int:
		return strconv.Itoa(x)

	case int64:
		return strconv.FormatInt(x, 10)

	default:
		return fmt.Sprint(v)
	}
}

// name expands a template name and validates the spliced result.
func (e *engine) name(n *ast.Name, ctx instance) (*ast.Name, error) {
	v, err := e.nameValue(n, ctx)
	if err != nil {
		return nil, err
	}

	return ast.PlainName(n.Pos, v), nil
}

func (e *engine) nameValue(n *ast.Name, ctx instance) (string, error) {
	v, err := e.spliceName(n, ctx)
	if err != nil {
		return "", fmt.Errorf("in name %s: %w", printer.Name(n), err)
	}

	return v, nil
}

func (e *engine) spliceName(n *ast.Name, ctx instance) (string, error) {
	b := &strings.Builder{}

	for i, f := range n.Fragments {
		if i > 0 {
			v, err := e.expandRef(n.Refs[i-1], ctx)
			if err != nil {
				return "", err
			}

			b.WriteString(formatValue(v))
		}

		b.WriteString(f)
	}

	v := b.String()

	if !nameFormat.MatchString(v) {
		return "", fmt.Errorf("malformed: %s (%w)", v, errors.ErrBadName)
	}

	return v, nil
}

// Instance generation

// normalizeEntry shapes one element of an iterated value: mapping values
// keep their fields, scalar values land under "value", and plain list
// elements carry only the key itself.
func normalizeEntry(key, value any) map[string]any {
	entry := map[string]any{}

	if fields, isMap := value.(map[string]any); isMap {
		for k, v := range fields {
			entry[k] = v
		}
	} else if value != nil {
		entry[instanceValue] = value
	}

	entry[instanceKey] = key

	return entry
}

// instanceEntries expands a declaration argument to its normalized,
// ordered element list. Maps iterate over key/value pairs and lists over
// elements; both sort by key so the output is stable.
func (e *engine) instanceEntries(t *ast.TemplateRef, ctx instance) ([]map[string]any, error) {
	v, err := e.expandRef(t, ctx)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any

	switch x := v.(type) {
	case map[string]any:
		for k, d := range x {
			entries = append(entries, normalizeEntry(k, d))
		}

	case []any:
		for _, k := range x {
			entries = append(entries, normalizeEntry(k, nil))
		}

	default:
		return nil, fmt.Errorf("line %d: in template %s: expanded value is not iterable: %s (%w)",
			t.Pos.Line, printer.TemplateRef(t), formatValue(v), errors.ErrNotIterable)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return keyLess(entries[i][instanceKey], entries[j][instanceKey])
	})

	return entries, nil
}

// keyLess orders iteration keys: numbers numerically before strings,
// strings by their spliced form.
func keyLess(a, b any) bool {
	an, aNum := toNumber(a)
	bn, bNum := toNumber(b)

	switch {
	case aNum && bNum:
		return an < bn

	case aNum:
		return true

	case bNum:
		return false

	default:
		return formatValue(a) < formatValue(b)
	}
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true

	case int:
		return float64(x), true

	case int64:
		return float64(x), true

	default:
		return 0, false
	}
}

func extend(ctx instance, entry map[string]any) instance {
	next := make(instance, len(ctx)+1)
	copy(next, ctx)
	next[len(ctx)] = entry

	return next
}

// subInstances generates the entry tuples bound by a declaration's
// argument list. Each argument is expanded with the entries of the
// preceding ones already in scope, so later arguments can reference
// earlier ones.
func (e *engine) subInstances(args []*ast.TemplateRef, ctx instance) ([]instance, error) {
	if len(args) == 0 {
		return []instance{{}}, nil
	}

	entries, err := e.instanceEntries(args[0], ctx)
	if err != nil {
		return nil, err
	}

	out := []instance{}

	for _, entry := range entries {
		tails, err := e.subInstances(args[1:], extend(ctx, entry))
		if err != nil {
			return nil, err
		}

		for _, tail := range tails {
			sub := make(instance, 0, len(tail)+1)
			sub = append(sub, entry)
			sub = append(sub, tail...)

			out = append(out, sub)
		}
	}

	return out, nil
}

// instances generates the full instances of a template declaration,
// filtered by its condition. A nil declaration yields the current
// instance unchanged.
func (e *engine) instances(d *ast.TemplateDecl, ctx instance) ([]instance, error) {
	if d == nil {
		return []instance{ctx}, nil
	}

	subs, err := e.subInstances(d.Args, ctx)
	if err != nil {
		return nil, err
	}

	out := []instance{}

	for _, sub := range subs {
		full := make(instance, 0, len(ctx)+len(sub))
		full = append(full, ctx...)
		full = append(full, sub...)

		keep, err := e.evalCond(d.Cond, full)
		if err != nil {
			return nil, err
		}

		if keep {
			out = append(out, full)
		}
	}

	return out, nil
}

// evalCond expands a declaration condition in the candidate instance and
// evaluates it textually.
func (e *engine) evalCond(cond ast.OrExpr, ctx instance) (bool, error) {
	if cond == nil {
		return true, nil
	}

	expanded, err := e.orExpr(cond, ctx)
	if err != nil {
		return false, err
	}

	return textOrExpr(expanded)
}

// Text evaluation of expanded conditions. Only name and constant
// comparison is supported: names compare as text, never by value.

func textOrExpr(o ast.OrExpr) (bool, error) {
	for _, elem := range o {
		v, err := textAndExpr(elem.Expr)
		if err != nil {
			return false, err
		}

		if v {
			return true, nil
		}
	}

	return false, nil
}

func textAndExpr(a ast.AndExpr) (bool, error) {
	for _, elem := range a {
		v, err := textBoolExpr(elem.Expr)
		if err != nil {
			return false, err
		}

		if !v {
			return false, nil
		}
	}

	return true, nil
}

func textBoolExpr(b *ast.BoolExpr) (bool, error) {
	if b.Forall != nil {
		return false, textNotAllowed("forall constructs")
	}

	return textCompExpr(b.Comp)
}

func textCompExpr(c *ast.CompExpr) (bool, error) {
	lhs, err := textExpr(c.Lhs)
	if err != nil {
		return false, err
	}

	rhs, err := textExpr(c.Rhs)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case "=":
		return lhs == rhs, nil

	case "<>":
		return lhs != rhs, nil

	default:
		return false, textNotAllowed(fmt.Sprintf("%s operations", c.Op))
	}
}

func textExpr(e *ast.Expr) (string, error) {
	if e.Val == nil {
		return "", textNotAllowed("+/- operations")
	}

	return textRValue(e.Val)
}

func textRValue(v *ast.RValue) (string, error) {
	if v.Ref == nil {
		return v.Const, nil
	}

	if v.Ref.Array != nil {
		return "", textNotAllowed("arrays")
	}

	return v.Ref.Var.Name.Value(), nil
}

func textNotAllowed(what string) error {
	return fmt.Errorf("%s are not allowed in text evaluation (%w)", what, errors.ErrBadCond)
}

// Expression expansion

func (e *engine) ref(r *ast.Ref, ctx instance) (*ast.Ref, error) {
	if r.Array != nil {
		name, err := e.name(r.Array.Name, ctx)
		if err != nil {
			return nil, err
		}

		index := make([]*ast.Name, len(r.Array.Index))

		for i, n := range r.Array.Index {
			index[i], err = e.name(n, ctx)
			if err != nil {
				return nil, err
			}
		}

		return &ast.Ref{
			Pos:   r.Pos,
			Array: &ast.ArrayRef{Pos: r.Array.Pos, Name: name, Index: index},
		}, nil
	}

	name, err := e.name(r.Var.Name, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.Ref{Pos: r.Pos, Var: &ast.VarRef{Pos: r.Var.Pos, Name: name}}, nil
}

func (e *engine) rvalue(v *ast.RValue, ctx instance) (*ast.RValue, error) {
	if v.Ref == nil {
		return &ast.RValue{Pos: v.Pos, Const: v.Const}, nil
	}

	ref, err := e.ref(v.Ref, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.RValue{Pos: v.Pos, Ref: ref}, nil
}

func (e *engine) expr(x *ast.Expr, ctx instance) (*ast.Expr, error) {
	if x.Val != nil {
		val, err := e.rvalue(x.Val, ctx)
		if err != nil {
			return nil, err
		}

		return &ast.Expr{Pos: x.Pos, Val: val}, nil
	}

	lhs, err := e.rvalue(x.Lhs, ctx)
	if err != nil {
		return nil, err
	}

	rhs, err := e.rvalue(x.Rhs, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.Expr{Pos: x.Pos, Op: x.Op, Lhs: lhs, Rhs: rhs}, nil
}

func (e *engine) compExpr(c *ast.CompExpr, ctx instance) (*ast.CompExpr, error) {
	lhs, err := e.expr(c.Lhs, ctx)
	if err != nil {
		return nil, err
	}

	rhs, err := e.expr(c.Rhs, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.CompExpr{Pos: c.Pos, Lhs: lhs, Op: c.Op, Rhs: rhs}, nil
}

// forallExpr expands a quantified expression. A disjunction body that
// expands to nothing removes the whole quantification.
func (e *engine) forallExpr(f *ast.ForallExpr, ctx instance) (*ast.ForallExpr, error) {
	if f.Comp != nil {
		comp, err := e.compExpr(f.Comp, ctx)
		if err != nil {
			return nil, err
		}

		return &ast.ForallExpr{Pos: f.Pos, Proc: f.Proc, Comp: comp}, nil
	}

	expr, err := e.orExpr(f.Expr, ctx)
	if err != nil {
		return nil, err
	}

	if expr == nil {
		return nil, nil
	}

	return &ast.ForallExpr{Pos: f.Pos, Proc: f.Proc, Expr: expr}, nil
}

func (e *engine) boolExpr(b *ast.BoolExpr, ctx instance) (*ast.BoolExpr, error) {
	if b.Forall != nil {
		forall, err := e.forallExpr(b.Forall, ctx)
		if err != nil || forall == nil {
			return nil, err
		}

		return &ast.BoolExpr{Pos: b.Pos, Forall: forall}, nil
	}

	comp, err := e.compExpr(b.Comp, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.BoolExpr{Pos: b.Pos, Comp: comp}, nil
}

// andExpr expands a conjunction outside any disjunction, flattening AND
// iterators. Nested disjunctions cannot be rewritten in this position
// and fail. Returns nil when every element expands to nothing.
func (e *engine) andExpr(a ast.AndExpr, ctx instance) (ast.AndExpr, error) {
	out := ast.AndExpr{}

	for _, elem := range a {
		switch {
		case elem.Expr != nil:
			b, err := e.boolExpr(elem.Expr, ctx)
			if err != nil {
				return nil, err
			}

			if b != nil {
				out = append(out, &ast.AndElem{Pos: elem.Pos, Expr: b})
			}

		case elem.Template != nil:
			insts, err := e.instances(elem.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				sub, err := e.andExpr(elem.Template.Expr, inst)
				if err != nil {
					return nil, err
				}

				out = append(out, sub...)
			}

		default:
			return nil, fmt.Errorf("line %d: nested or expression not allowed here: %s (%w)",
				elem.Pos.Line, printer.AndExpr(a), errors.ErrExpand)
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out, nil
}

// andExprNestedOr expands a conjunction inside a disjunction. Nested
// disjunctions and iterator instances each offer alternatives, so the
// result is a list of conjunctions: one per combination of alternatives,
// each carrying the plain boolean part.
func (e *engine) andExprNestedOr(a ast.AndExpr, ctx instance) ([]ast.AndExpr, error) {
	bools := ast.AndExpr{}
	nested := [][]ast.AndExpr{}

	for _, elem := range a {
		switch {
		case elem.Expr != nil:
			b, err := e.boolExpr(elem.Expr, ctx)
			if err != nil {
				return nil, err
			}

			if b != nil {
				bools = append(bools, &ast.AndElem{Pos: elem.Pos, Expr: b})
			}

		case elem.Template != nil:
			insts, err := e.instances(elem.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				ors, err := e.andExprNestedOr(elem.Template.Expr, inst)
				if err != nil {
					return nil, err
				}

				nested = append(nested, ors)
			}

		default:
			or, err := e.orExpr(elem.Or, ctx)
			if err != nil {
				return nil, err
			}

			if or != nil {
				nested = append(nested, andLists(or))
			}
		}
	}

	combos := []ast.AndExpr{bools}

	for _, choices := range nested {
		next := []ast.AndExpr{}

		for _, combo := range combos {
			for _, choice := range choices {
				merged := make(ast.AndExpr, 0, len(combo)+len(choice))
				merged = append(merged, combo...)
				merged = append(merged, choice...)

				next = append(next, merged)
			}
		}

		combos = next
	}

	return combos, nil
}

func andLists(o ast.OrExpr) []ast.AndExpr {
	lists := make([]ast.AndExpr, len(o))
	for i, elem := range o {
		lists[i] = elem.Expr
	}

	return lists
}

// orExpr expands a disjunction to its flattened form: a list of plain
// conjunctions. OR iterators contribute one alternative per instance.
// Returns nil when nothing remains.
func (e *engine) orExpr(o ast.OrExpr, ctx instance) (ast.OrExpr, error) {
	if o == nil {
		return nil, nil
	}

	ands := []ast.AndExpr{}

	for _, elem := range o {
		if elem.Template != nil {
			insts, err := e.instances(elem.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				more, err := e.andExprNestedOr(elem.Template.Expr, inst)
				if err != nil {
					return nil, err
				}

				ands = append(ands, more...)
			}

			continue
		}

		more, err := e.andExprNestedOr(elem.Expr, ctx)
		if err != nil {
			return nil, err
		}

		ands = append(ands, more...)
	}

	if len(ands) == 0 {
		return nil, nil
	}

	out := make(ast.OrExpr, len(ands))
	for i, a := range ands {
		out[i] = &ast.OrElem{Expr: a}
	}

	return out, nil
}

// Transitions

// caseArm expands one case arm. An arm whose condition expands to
// nothing is removed.
func (e *engine) caseArm(c *ast.Case, ctx instance) (*ast.Case, error) {
	arm := &ast.Case{Pos: c.Pos, Default: c.Default}

	if !c.Default {
		cond, err := e.andExpr(c.Cond, ctx)
		if err != nil {
			return nil, err
		}

		if cond == nil {
			return nil, nil
		}

		arm.Cond = cond
	}

	expr, err := e.expr(c.Expr, ctx)
	if err != nil {
		return nil, err
	}

	arm.Expr = expr

	return arm, nil
}

// switchArms expands a case list, flattening case iterators. Returns nil
// when every arm is removed.
func (e *engine) switchArms(s []*ast.SwitchElem, ctx instance) ([]*ast.SwitchElem, error) {
	out := []*ast.SwitchElem{}

	for _, elem := range s {
		if elem.Template != nil {
			insts, err := e.instances(elem.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				sub, err := e.switchArms(elem.Template.Cases, inst)
				if err != nil {
					return nil, err
				}

				out = append(out, sub...)
			}

			continue
		}

		c, err := e.caseArm(elem.Case, ctx)
		if err != nil {
			return nil, err
		}

		if c != nil {
			out = append(out, &ast.SwitchElem{Pos: elem.Pos, Case: c})
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out, nil
}

func (e *engine) assignValue(v *ast.AssignValue, ctx instance) (*ast.AssignValue, error) {
	switch {
	case v.Switch != nil:
		arms, err := e.switchArms(v.Switch, ctx)
		if err != nil || arms == nil {
			return nil, err
		}

		return &ast.AssignValue{Pos: v.Pos, Switch: arms}, nil

	case v.Expr != nil:
		expr, err := e.expr(v.Expr, ctx)
		if err != nil {
			return nil, err
		}

		return &ast.AssignValue{Pos: v.Pos, Expr: expr}, nil

	default:
		return &ast.AssignValue{Pos: v.Pos, Rand: true}, nil
	}
}

// assign expands one assignment. An assignment whose case list empties
// out is removed.
func (e *engine) assign(a *ast.Assign, ctx instance) (*ast.Assign, error) {
	lhs, err := e.ref(a.Lhs, ctx)
	if err != nil {
		return nil, err
	}

	rhs, err := e.assignValue(a.Rhs, ctx)
	if err != nil || rhs == nil {
		return nil, err
	}

	return &ast.Assign{Pos: a.Pos, Lhs: lhs, Rhs: rhs}, nil
}

// updates expands an update list, flattening update iterators. Returns
// nil when every update is removed.
func (e *engine) updates(l []*ast.Update, ctx instance) ([]*ast.Update, error) {
	out := []*ast.Update{}

	for _, u := range l {
		if u.Template != nil {
			insts, err := e.instances(u.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				sub, err := e.updates(u.Template.Updates, inst)
				if err != nil {
					return nil, err
				}

				out = append(out, sub...)
			}

			continue
		}

		a, err := e.assign(u.Assign, ctx)
		if err != nil {
			return nil, err
		}

		if a != nil {
			out = append(out, &ast.Update{Pos: u.Pos, Assign: a})
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out, nil
}

// transition expands one transition in one instance. A missing require
// clause stays missing, and a transition with no surviving updates is
// removed.
func (e *engine) transition(t *ast.Transition, ctx instance) (*ast.Transition, error) {
	require, err := e.orExpr(t.Require, ctx)
	if err != nil {
		return nil, err
	}

	name, err := e.name(t.Name, ctx)
	if err != nil {
		return nil, err
	}

	ups, err := e.updates(t.Updates, ctx)
	if err != nil || ups == nil {
		return nil, err
	}

	return &ast.Transition{
		Pos:     t.Pos,
		Name:    name,
		Procs:   t.Procs,
		Require: require,
		Updates: ups,
	}, nil
}

// Declarations and types

func (e *engine) decl(d *ast.Decl, ctx instance) (*ast.Decl, error) {
	name, err := e.ref(d.Name, ctx)
	if err != nil {
		return nil, err
	}

	return &ast.Decl{Pos: d.Pos, Kind: d.Kind, Name: name, TypeName: d.TypeName}, nil
}

func (e *engine) typeDef(t *ast.TypeDef) (*ast.TypeDef, error) {
	enum, err := e.enumList(t.Enum, instance{})
	if err != nil {
		return nil, err
	}

	return &ast.TypeDef{Pos: t.Pos, Name: t.Name, Enum: enum}, nil
}

// enumList expands enum constructors, flattening enum iterators. An
// empty result is kept: the type becomes abstract.
func (e *engine) enumList(l []*ast.EnumElem, ctx instance) ([]*ast.EnumElem, error) {
	out := []*ast.EnumElem{}

	for _, elem := range l {
		if elem.Template != nil {
			insts, err := e.instances(elem.Template.Decl, ctx)
			if err != nil {
				return nil, err
			}

			for _, inst := range insts {
				sub, err := e.enumList(elem.Template.Enum, inst)
				if err != nil {
					return nil, err
				}

				out = append(out, sub...)
			}

			continue
		}

		n, err := e.name(elem.Name, ctx)
		if err != nil {
			return nil, err
		}

		out = append(out, &ast.EnumElem{Pos: elem.Pos, Name: n})
	}

	return out, nil
}

// Init, invariant and unsafe

func (e *engine) procExprList(l []*ast.ProcExpr) ([]*ast.ProcExpr, error) {
	out := []*ast.ProcExpr{}

	for _, c := range l {
		insts, err := e.instances(c.Template, instance{})
		if err != nil {
			return nil, err
		}

		for _, inst := range insts {
			expr, err := e.orExpr(c.Expr, inst)
			if err != nil {
				return nil, err
			}

			if expr == nil {
				continue
			}

			out = append(out, &ast.ProcExpr{Pos: c.Pos, Procs: c.Procs, Expr: expr})
		}
	}

	return out, nil
}
