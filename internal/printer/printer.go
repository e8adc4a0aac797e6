// Package printer renders syntax trees back to cubicle source. Expanded
// models print as plain cubicle; template-form expressions render in
// their @...@ source notation, which the expansion engine uses for
// diagnostics.
package printer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cubicletools/ctc/internal/ast"
)

// TemplateRef renders a template reference: arg, index or index.field.
func TemplateRef(t *ast.TemplateRef) string {
	switch {
	case t.Arg != "":
		return t.Arg

	case t.Field != "":
		return fmt.Sprintf("%d.%s", t.Key, t.Field)

	default:
		return strconv.Itoa(t.Key)
	}
}

// TemplateDecl renders "@args@" or "@args | cond@".
func TemplateDecl(d *ast.TemplateDecl) string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = TemplateRef(a)
	}

	if d.Cond != nil {
		return fmt.Sprintf("@%s | %s@", strings.Join(args, ", "), OrExpr(d.Cond))
	}

	return fmt.Sprintf("@%s@", strings.Join(args, ", "))
}

// Name renders a name, interleaving fragments with @ref@ parts.
func Name(n *ast.Name) string {
	if n.Expanded() {
		return n.Fragments[0]
	}

	b := &strings.Builder{}

	for i, f := range n.Fragments {
		if i > 0 {
			b.WriteString("@")
			b.WriteString(TemplateRef(n.Refs[i-1]))
			b.WriteString("@")
		}

		b.WriteString(f)
	}

	return b.String()
}

func Ref(s *ast.Ref) string {
	if s.Array != nil {
		index := make([]string, len(s.Array.Index))
		for i, n := range s.Array.Index {
			index[i] = Name(n)
		}

		return fmt.Sprintf("%s[%s]", Name(s.Array.Name), strings.Join(index, ", "))
	}

	return Name(s.Var.Name)
}

func rvalue(v *ast.RValue) string {
	if v.Ref != nil {
		return Ref(v.Ref)
	}

	return v.Const
}

func Expr(e *ast.Expr) string {
	if e.Val != nil {
		return rvalue(e.Val)
	}

	return fmt.Sprintf("%s %s %s", rvalue(e.Lhs), e.Op, rvalue(e.Rhs))
}

func CompExpr(c *ast.CompExpr) string {
	return fmt.Sprintf("%s %s %s", Expr(c.Lhs), c.Op, Expr(c.Rhs))
}

func forallExpr(f *ast.ForallExpr) string {
	if f.Comp != nil {
		return fmt.Sprintf("forall_other %s. %s", f.Proc, CompExpr(f.Comp))
	}

	return fmt.Sprintf("forall_other %s. (%s)", f.Proc, OrExpr(f.Expr))
}

func BoolExpr(e *ast.BoolExpr) string {
	if e.Forall != nil {
		return forallExpr(e.Forall)
	}

	return CompExpr(e.Comp)
}

func andElem(e *ast.AndElem) string {
	switch {
	case e.Expr != nil:
		return BoolExpr(e.Expr)

	case e.Template != nil:
		return fmt.Sprintf("%s (&& %s)", TemplateDecl(e.Template.Decl), AndExpr(e.Template.Expr))

	default:
		return fmt.Sprintf("(%s)", OrExpr(e.Or))
	}
}

// AndExpr renders elements joined with && operators.
func AndExpr(a ast.AndExpr) string {
	elems := make([]string, len(a))
	for i, e := range a {
		elems[i] = andElem(e)
	}

	return strings.Join(elems, " && ")
}

func orElem(e *ast.OrElem) string {
	if e.Template != nil {
		return fmt.Sprintf("%s (|| %s)", TemplateDecl(e.Template.Decl), AndExpr(e.Template.Expr))
	}

	return AndExpr(e.Expr)
}

// OrExpr renders elements joined with || operators.
func OrExpr(o ast.OrExpr) string {
	elems := make([]string, len(o))
	for i, e := range o {
		elems[i] = orElem(e)
	}

	return strings.Join(elems, " || ")
}

// Source renders an expanded model as cubicle source.
func Source(m *ast.Model) []byte {
	b := &bytes.Buffer{}

	line := func(format string, args ...any) {
		fmt.Fprintf(b, format, args...)
		b.WriteByte('\n')
	}

	procExpr := func(keyword string, s *ast.ProcExpr) {
		line("%s (%s) { %s }", keyword, strings.Join(s.Procs, " "), OrExpr(s.Expr))
	}

	if m.SizeProc != "" {
		line("number_procs %s", m.SizeProc)
	}

	for _, t := range m.Types {
		if len(t.Enum) > 0 {
			names := make([]string, len(t.Enum))
			for i, e := range t.Enum {
				names[i] = Name(e.Name)
			}

			line("type %s = %s", t.Name, strings.Join(names, " | "))
		} else {
			line("type %s", t.Name)
		}
	}

	for _, d := range m.Decls {
		line("%s %s : %s", d.Kind, Ref(d.Name), d.TypeName)
	}

	if m.Init != nil {
		procExpr("init", m.Init)
	}

	for _, i := range m.Invariants {
		procExpr("invariant", i)
	}

	for _, u := range m.Unsafes {
		procExpr("unsafe", u)
	}

	for _, t := range m.Transitions {
		line("transition %s (%s)", Name(t.Name), strings.Join(t.Procs, " "))

		if t.Require != nil {
			line("\trequires { %s }", OrExpr(t.Require))
		}

		line("{")

		for _, u := range t.Updates {
			a := u.Assign

			switch {
			case a.Rhs.Switch != nil:
				line("\t%s := case", Ref(a.Lhs))

				for _, c := range a.Rhs.Switch {
					arm := c.Case
					if arm.Default {
						line("\t\t| _ : %s", Expr(arm.Expr))
					} else {
						line("\t\t| %s : %s", AndExpr(arm.Cond), Expr(arm.Expr))
					}
				}

				line("\t;")

			case a.Rhs.Expr != nil:
				line("\t%s := %s;", Ref(a.Lhs), Expr(a.Rhs.Expr))

			case a.Rhs.Rand:
				line("\t%s := ?;", Ref(a.Lhs))
			}
		}

		line("}")
	}

	return b.Bytes()
}
