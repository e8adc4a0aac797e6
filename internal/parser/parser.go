// Package parser builds cubicle template syntax trees. It consumes the
// span stream produced by the lexical classifier, so the tokenizer and
// the highlighter agree on the language by construction.
package parser

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cubicletools/ctc/internal/ast"
	"github.com/cubicletools/ctc/pkg/errors"
)

// Parse builds the template syntax tree for one cubicle source buffer.
// Errors carry a line:column prefix and wrap [errors.ErrParse].
func Parse(src []byte) (*ast.Model, error) {
	p := &parser{
		toks:  scan(src),
		lines: lineStarts(src),
	}

	return p.parseModel()
}

type parser struct {
	toks  []token
	i     int
	lines []int
}

func lineStarts(src []byte) []int {
	lines := []int{0}

	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}

	return lines
}

func (p *parser) pos(off int) ast.Pos {
	i := sort.Search(len(p.lines), func(i int) bool {
		return p.lines[i] > off
	}) - 1

	return ast.Pos{Line: i + 1, Col: off - p.lines[i] + 1}
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

// at returns the token k positions ahead without advancing.
func (p *parser) at(k int) token {
	if p.i+k >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i+k]
}

func (p *parser) next() token {
	t := p.toks[p.i]

	if t.kind != tokEOF {
		p.i++
	}

	return t
}

func (p *parser) isWord(text string) bool {
	t := p.peek()
	return t.kind == tokWord && t.text == text
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) isPunct(text string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == text
}

func (p *parser) failf(t token, format string, args ...any) error {
	return fmt.Errorf("%s: %s (%w)", p.pos(t.off), fmt.Sprintf(format, args...), errors.ErrParse)
}

func (p *parser) expectOp(text string) (token, error) {
	t := p.peek()

	if t.kind != tokOp || t.text != text {
		return token{}, p.failf(t, "expected %q, found %s", text, t)
	}

	return p.next(), nil
}

func (p *parser) expectPunct(text string) (token, error) {
	t := p.peek()

	if t.kind != tokPunct || t.text != text {
		return token{}, p.failf(t, "expected %q, found %s", text, t)
	}

	return p.next(), nil
}

// expectIdent consumes a letter-led word, described as what in errors.
func (p *parser) expectIdent(what string) (token, error) {
	t := p.peek()

	if t.kind != tokWord || !letterLed(t.text) {
		return token{}, p.failf(t, "expected %s, found %s", what, t)
	}

	return p.next(), nil
}

func letterLed(s string) bool {
	b := s[0]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func wordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// wordFragment reports whether s can serve as a literal piece of a
// template name. Signed numbers and floats fail here, which keeps them
// out of name assembly.
func wordFragment(s string) bool {
	for i := 0; i < len(s); i++ {
		if !wordChar(s[i]) {
			return false
		}
	}

	return true
}

// statementRank orders the top-level sections: number_procs, types,
// declarations, init, invariants, unsafes, transitions. Statements must
// appear in non-decreasing rank order.
var statementRank = map[string]int{
	"number_procs": 0,
	"type":         1,
	"var":          2,
	"const":        2,
	"array":        2,
	"init":         3,
	"invariant":    4,
	"unsafe":       5,
	"transition":   6,
}

func (p *parser) parseModel() (*ast.Model, error) {
	m := &ast.Model{}
	rank := 0

	for p.peek().kind != tokEOF {
		var tpl *ast.TemplateDecl

		tplTok := p.peek()

		if p.isPunct("@") {
			var err error

			tpl, err = p.parseTemplateDecl()
			if err != nil {
				return nil, err
			}
		}

		kw := p.peek()

		r, found := statementRank[kw.text]
		if kw.kind != tokWord || !found {
			return nil, p.failf(kw, "expected statement keyword, found %s", kw)
		}

		if r < rank {
			return nil, p.failf(kw, "%s out of order", kw.text)
		}

		if tpl != nil && (kw.text == "number_procs" || kw.text == "type" || kw.text == "init") {
			return nil, p.failf(tplTok, "template declaration not allowed before %s", kw.text)
		}

		switch kw.text {
		case "number_procs":
			p.next()

			t := p.peek()
			if _, err := strconv.Atoi(t.text); t.kind != tokWord || err != nil || t.text[0] == '+' || t.text[0] == '-' {
				return nil, p.failf(t, "expected process count, found %s", t)
			}

			p.next()
			m.SizeProc = t.text
			rank = 1

		case "type":
			td, err := p.parseTypeDef()
			if err != nil {
				return nil, err
			}

			m.Types = append(m.Types, td)
			rank = 1

		case "var", "const":
			d, err := p.parseVarDecl(tpl)
			if err != nil {
				return nil, err
			}

			m.Decls = append(m.Decls, d)
			rank = 2

		case "array":
			d, err := p.parseArrayDecl(tpl)
			if err != nil {
				return nil, err
			}

			m.Decls = append(m.Decls, d)
			rank = 2

		case "init":
			pe, err := p.parseProcExpr(nil)
			if err != nil {
				return nil, err
			}

			m.Init = pe
			rank = 4

		case "invariant":
			pe, err := p.parseProcExpr(tpl)
			if err != nil {
				return nil, err
			}

			m.Invariants = append(m.Invariants, pe)
			rank = 4

		case "unsafe":
			pe, err := p.parseProcExpr(tpl)
			if err != nil {
				return nil, err
			}

			m.Unsafes = append(m.Unsafes, pe)
			rank = 5

		case "transition":
			t, err := p.parseTransition(tpl)
			if err != nil {
				return nil, err
			}

			m.Transitions = append(m.Transitions, t)
			rank = 6
		}
	}

	if m.Init == nil {
		return nil, p.failf(p.peek(), "missing init construct")
	}

	return m, nil
}

// parseTypeDef parses "type name" or "type name = elem | elem".
func (p *parser) parseTypeDef() (*ast.TypeDef, error) {
	kw := p.next()

	name, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}

	td := &ast.TypeDef{Pos: p.pos(kw.off), Name: name.text}

	if !p.isOp("=") {
		return td, nil
	}

	p.next()

	for {
		e, err := p.parseEnumElem()
		if err != nil {
			return nil, err
		}

		td.Enum = append(td.Enum, e)

		if !p.isPunct("|") {
			break
		}

		p.next()
	}

	return td, nil
}

func (p *parser) parseEnumElem() (*ast.EnumElem, error) {
	start := p.peek()
	e := &ast.EnumElem{Pos: p.pos(start.off)}

	if p.isPunct("@") {
		it, ok, err := p.tryEnumIter()
		if err != nil {
			return nil, err
		}

		if ok {
			e.Template = it
			return e, nil
		}
	}

	n, err := p.parseName("enum constructor")
	if err != nil {
		return nil, err
	}

	e.Name = n

	return e, nil
}

func (p *parser) tryEnumIter() (*ast.EnumIter, bool, error) {
	save := p.i

	d, err := p.parseTemplateDecl()
	if err != nil || !p.isPunct("(") {
		p.i = save
		return nil, false, nil
	}

	p.next()

	it := &ast.EnumIter{Decl: d}

	for {
		e, err := p.parseEnumElem()
		if err != nil {
			return nil, false, err
		}

		it.Enum = append(it.Enum, e)

		if !p.isPunct("|") {
			break
		}

		p.next()
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, false, err
	}

	return it, true, nil
}

// parseVarDecl parses "var name : type" or "const name : type".
func (p *parser) parseVarDecl(tpl *ast.TemplateDecl) (*ast.Decl, error) {
	kw := p.next()

	name, err := p.parseName("variable name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}

	tn, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}

	return &ast.Decl{
		Pos:      p.pos(kw.off),
		Template: tpl,
		Kind:     kw.text,
		Name: &ast.Ref{
			Pos: name.Pos,
			Var: &ast.VarRef{Pos: name.Pos, Name: name},
		},
		TypeName: tn.text,
	}, nil
}

// parseArrayDecl parses "array name[index, ...] : type".
func (p *parser) parseArrayDecl(tpl *ast.TemplateDecl) (*ast.Decl, error) {
	kw := p.next()

	name, err := p.parseName("array name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct("["); err != nil {
		return nil, err
	}

	a := &ast.ArrayRef{Pos: name.Pos, Name: name}

	for {
		n, err := p.parseName("index type")
		if err != nil {
			return nil, err
		}

		a.Index = append(a.Index, n)

		if !p.isPunct(",") {
			break
		}

		p.next()
	}

	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}

	tn, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}

	return &ast.Decl{
		Pos:      p.pos(kw.off),
		Template: tpl,
		Kind:     kw.text,
		Name:     &ast.Ref{Pos: name.Pos, Array: a},
		TypeName: tn.text,
	}, nil
}

// parseProcExpr parses "init (procs) { expr }" and the same shape for
// invariant and unsafe.
func (p *parser) parseProcExpr(tpl *ast.TemplateDecl) (*ast.ProcExpr, error) {
	kw := p.next()
	pe := &ast.ProcExpr{Pos: p.pos(kw.off), Template: tpl}

	procs, err := p.parseProcList()
	if err != nil {
		return nil, err
	}

	pe.Procs = procs

	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	pe.Expr, err = p.parseOrExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}

	return pe, nil
}

// parseProcList parses "(p q r)", a space-separated quantified process
// list. Empty lists are allowed.
func (p *parser) parseProcList() ([]string, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	procs := []string{}

	for p.peek().kind == tokWord {
		t, err := p.expectIdent("process name")
		if err != nil {
			return nil, err
		}

		procs = append(procs, t.text)
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	return procs, nil
}

func (p *parser) parseTransition(tpl *ast.TemplateDecl) (*ast.Transition, error) {
	kw := p.next()
	t := &ast.Transition{Pos: p.pos(kw.off), Template: tpl}

	name, err := p.parseName("transition name")
	if err != nil {
		return nil, err
	}

	t.Name = name

	t.Procs, err = p.parseProcList()
	if err != nil {
		return nil, err
	}

	if p.isWord("requires") {
		p.next()

		if _, err := p.expectPunct("{"); err != nil {
			return nil, err
		}

		t.Require, err = p.parseOrExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct("}"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	for !p.isPunct("}") {
		u, err := p.parseUpdate()
		if err != nil {
			return nil, err
		}

		t.Updates = append(t.Updates, u)
	}

	p.next()

	return t, nil
}

// parseUpdate parses one assignment or one update iterator
// "@decl@ (assign; assign; ...)".
func (p *parser) parseUpdate() (*ast.Update, error) {
	start := p.peek()
	u := &ast.Update{Pos: p.pos(start.off)}

	if p.isPunct("@") {
		save := p.i

		d, err := p.parseTemplateDecl()
		if err == nil && p.isPunct("(") {
			p.next()

			it := &ast.UpdateIter{Decl: d}

			for !p.isPunct(")") {
				sub, err := p.parseUpdate()
				if err != nil {
					return nil, err
				}

				it.Updates = append(it.Updates, sub)
			}

			p.next()
			u.Template = it

			return u, nil
		}

		p.i = save
	}

	a, err := p.parseAssign()
	if err != nil {
		return nil, err
	}

	u.Assign = a

	return u, nil
}

func (p *parser) parseAssign() (*ast.Assign, error) {
	start := p.peek()

	lhs, err := p.parseRef()
	if err != nil {
		return nil, err
	}

	a := &ast.Assign{Pos: p.pos(start.off), Lhs: lhs}

	if _, err := p.expectOp(":="); err != nil {
		return nil, err
	}

	rhs := &ast.AssignValue{Pos: p.pos(p.peek().off)}

	switch {
	case p.isPunct("?"):
		p.next()
		rhs.Rand = true

	case p.isWord("case"):
		p.next()

		for p.isPunct("|") || p.isPunct("@") {
			e, err := p.parseSwitchElem()
			if err != nil {
				return nil, err
			}

			rhs.Switch = append(rhs.Switch, e)
		}

		if len(rhs.Switch) == 0 {
			return nil, p.failf(p.peek(), "expected case arm, found %s", p.peek())
		}

	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		rhs.Expr = e
	}

	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	a.Rhs = rhs

	return a, nil
}

// parseSwitchElem parses one case arm or a case iterator
// "@decl@ (| cond : expr | cond : expr)".
func (p *parser) parseSwitchElem() (*ast.SwitchElem, error) {
	start := p.peek()
	e := &ast.SwitchElem{Pos: p.pos(start.off)}

	if p.isPunct("@") {
		d, err := p.parseTemplateDecl()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct("("); err != nil {
			return nil, err
		}

		it := &ast.SwitchIter{Decl: d}

		for p.isPunct("|") || p.isPunct("@") {
			sub, err := p.parseSwitchElem()
			if err != nil {
				return nil, err
			}

			it.Cases = append(it.Cases, sub)
		}

		if len(it.Cases) == 0 {
			return nil, p.failf(p.peek(), "expected case arm, found %s", p.peek())
		}

		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}

		e.Template = it

		return e, nil
	}

	c, err := p.parseCase()
	if err != nil {
		return nil, err
	}

	e.Case = c

	return e, nil
}

// parseCase parses "| cond : expr" or the default arm "| _ : expr".
func (p *parser) parseCase() (*ast.Case, error) {
	bar, err := p.expectPunct("|")
	if err != nil {
		return nil, err
	}

	c := &ast.Case{Pos: p.pos(bar.off)}

	if p.isPunct("_") {
		p.next()
		c.Default = true
	} else {
		c.Cond, err = p.parseAndExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}

	c.Expr, err = p.parseExpr()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (p *parser) parseOrExpr() (ast.OrExpr, error) {
	o := ast.OrExpr{}

	for {
		e, err := p.parseOrElem()
		if err != nil {
			return nil, err
		}

		o = append(o, e)

		if !p.isOp("||") {
			break
		}

		p.next()
	}

	return o, nil
}

// parseOrElem parses a conjunction or an OR iterator "@decl@ (|| and)".
func (p *parser) parseOrElem() (*ast.OrElem, error) {
	start := p.peek()
	e := &ast.OrElem{Pos: p.pos(start.off)}

	if p.isPunct("@") {
		save := p.i

		d, err := p.parseTemplateDecl()
		if err == nil && p.isPunct("(") && p.at(1).kind == tokOp && p.at(1).text == "||" {
			p.next()
			p.next()

			body, err := p.parseAndExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}

			e.Template = &ast.ExprIter{Decl: d, Expr: body}

			return e, nil
		}

		p.i = save
	}

	and, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}

	e.Expr = and

	return e, nil
}

func (p *parser) parseAndExpr() (ast.AndExpr, error) {
	a := ast.AndExpr{}

	for {
		e, err := p.parseAndElem()
		if err != nil {
			return nil, err
		}

		a = append(a, e)

		if !p.isOp("&&") {
			break
		}

		p.next()
	}

	return a, nil
}

// parseAndElem parses a boolean expression, an AND iterator
// "@decl@ (&& and)", or a parenthesized nested disjunction.
func (p *parser) parseAndElem() (*ast.AndElem, error) {
	start := p.peek()
	e := &ast.AndElem{Pos: p.pos(start.off)}

	if p.isPunct("(") {
		p.next()

		or, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}

		e.Or = or

		return e, nil
	}

	if p.isPunct("@") {
		save := p.i

		d, err := p.parseTemplateDecl()
		if err == nil && p.isPunct("(") && p.at(1).kind == tokOp && p.at(1).text == "&&" {
			p.next()
			p.next()

			body, err := p.parseAndExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}

			e.Template = &ast.ExprIter{Decl: d, Expr: body}

			return e, nil
		}

		p.i = save
	}

	b, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}

	e.Expr = b

	return e, nil
}

func (p *parser) parseBoolExpr() (*ast.BoolExpr, error) {
	start := p.peek()
	b := &ast.BoolExpr{Pos: p.pos(start.off)}

	if p.isWord("forall_other") {
		p.next()

		proc, err := p.expectIdent("process name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct("."); err != nil {
			return nil, err
		}

		f := &ast.ForallExpr{Pos: b.Pos, Proc: proc.text}

		if p.isPunct("(") {
			p.next()

			f.Expr, err = p.parseOrExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		} else {
			f.Comp, err = p.parseCompExpr()
			if err != nil {
				return nil, err
			}
		}

		b.Forall = f

		return b, nil
	}

	c, err := p.parseCompExpr()
	if err != nil {
		return nil, err
	}

	b.Comp = c

	return b, nil
}

var compOps = map[string]bool{
	"=":  true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

func (p *parser) parseCompExpr() (*ast.CompExpr, error) {
	start := p.peek()

	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	op := p.peek()
	if op.kind != tokOp || !compOps[op.text] {
		return nil, p.failf(op, "expected comparison operator, found %s", op)
	}

	p.next()

	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.CompExpr{Pos: p.pos(start.off), Lhs: lhs, Op: op.text, Rhs: rhs}, nil
}

// parseExpr parses an rvalue with an optional + or - term. A signed
// number directly after a complete rvalue splits into operator and
// constant, so "x -1" reads as "x - 1".
func (p *parser) parseExpr() (*ast.Expr, error) {
	start := p.peek()

	lhs, err := p.parseRValue()
	if err != nil {
		return nil, err
	}

	e := &ast.Expr{Pos: p.pos(start.off)}
	t := p.peek()

	switch {
	case t.kind == tokOp && (t.text == "+" || t.text == "-"):
		p.next()

		rhs, err := p.parseRValue()
		if err != nil {
			return nil, err
		}

		e.Lhs, e.Op, e.Rhs = lhs, t.text, rhs

	case t.kind == tokWord && signedNumber(t.text):
		p.next()

		e.Lhs = lhs
		e.Op = string(t.text[0])
		e.Rhs = &ast.RValue{Pos: p.pos(t.off + 1), Const: t.text[1:]}

	default:
		e.Val = lhs
	}

	return e, nil
}

func signedNumber(s string) bool {
	return len(s) > 1 && (s[0] == '+' || s[0] == '-')
}

func (p *parser) parseRValue() (*ast.RValue, error) {
	t := p.peek()
	v := &ast.RValue{Pos: p.pos(t.off)}

	if t.kind == tokWord && constWord(t.text) {
		p.next()
		v.Const = t.text

		return v, nil
	}

	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}

	v.Ref = ref

	return v, nil
}

// constWord reports whether a word token is a literal constant: a
// boolean or a numeric literal.
func constWord(s string) bool {
	if s == "True" || s == "False" {
		return true
	}

	b := s[0]

	return (b >= '0' && b <= '9') || b == '+' || b == '-'
}

// parseRef parses a variable reference or an array access
// "name[index, ...]".
func (p *parser) parseRef() (*ast.Ref, error) {
	start := p.peek()

	name, err := p.parseName("variable reference")
	if err != nil {
		return nil, err
	}

	r := &ast.Ref{Pos: p.pos(start.off)}

	if !p.isPunct("[") {
		r.Var = &ast.VarRef{Pos: r.Pos, Name: name}
		return r, nil
	}

	p.next()

	a := &ast.ArrayRef{Pos: r.Pos, Name: name}

	for {
		n, err := p.parseName("index")
		if err != nil {
			return nil, err
		}

		a.Index = append(a.Index, n)

		if !p.isPunct(",") {
			break
		}

		p.next()
	}

	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}

	r.Array = a

	return r, nil
}

// parseName assembles a template name from a run of adjacent tokens:
// literal fragments interleaved with @...@ references. Names never span
// whitespace. A trailing @ that does not open a well-formed reference is
// left unconsumed; it usually closes an enclosing template declaration.
func (p *parser) parseName(what string) (*ast.Name, error) {
	start := p.peek()
	n := &ast.Name{Pos: p.pos(start.off)}

	var last token

	haveLast := false

	switch {
	case start.kind == tokWord && wordFragment(start.text):
		p.next()

		n.Fragments = append(n.Fragments, start.text)
		last, haveLast = start, true

	case start.kind == tokPunct && start.text == "@":
		n.Fragments = append(n.Fragments, "")

	default:
		return nil, p.failf(start, "expected %s, found %s", what, start)
	}

	for {
		at := p.peek()
		if at.kind != tokPunct || at.text != "@" {
			break
		}

		if haveLast && !adjacent(last, at) {
			break
		}

		ref, closing, ok := p.tryNameRef()
		if !ok {
			break
		}

		n.Refs = append(n.Refs, ref)
		last, haveLast = closing, true

		frag := ""

		if w := p.peek(); w.kind == tokWord && adjacent(last, w) && wordFragment(w.text) {
			p.next()

			frag = w.text
			last = w
		}

		n.Fragments = append(n.Fragments, frag)
	}

	if !haveLast {
		return nil, p.failf(start, "expected %s, found %s", what, start)
	}

	return n, nil
}

// tryNameRef attempts to read "@arg@", "@N@" or "@N.field@" with every
// token adjacent. On failure the cursor is restored and the caller ends
// the name before the @.
func (p *parser) tryNameRef() (*ast.TemplateRef, token, bool) {
	save := p.i

	at := p.next()
	ref := &ast.TemplateRef{Pos: p.pos(at.off)}

	w := p.peek()
	if w.kind != tokWord || !adjacent(at, w) {
		p.i = save
		return nil, token{}, false
	}

	p.next()

	last := w

	if key, err := strconv.Atoi(w.text); err == nil {
		ref.Key = key

		if d := p.peek(); d.kind == tokPunct && d.text == "." && adjacent(w, d) {
			f := p.at(1)
			if f.kind != tokWord || !adjacent(d, f) || !letterLed(f.text) {
				p.i = save
				return nil, token{}, false
			}

			p.next()
			p.next()

			ref.Field = f.text
			last = f
		}
	} else if letterLed(w.text) {
		ref.Arg = w.text
	} else {
		p.i = save
		return nil, token{}, false
	}

	closing := p.peek()
	if closing.kind != tokPunct || closing.text != "@" || !adjacent(last, closing) {
		p.i = save
		return nil, token{}, false
	}

	p.next()

	return ref, closing, true
}

// parseTemplateDecl parses "@args@" or "@args | cond@" in statement or
// iterator position. Unlike names, declarations tolerate whitespace
// between their tokens.
func (p *parser) parseTemplateDecl() (*ast.TemplateDecl, error) {
	at, err := p.expectPunct("@")
	if err != nil {
		return nil, err
	}

	d := &ast.TemplateDecl{Pos: p.pos(at.off)}

	for {
		ref, err := p.parseDeclRef()
		if err != nil {
			return nil, err
		}

		d.Args = append(d.Args, ref)

		if !p.isPunct(",") {
			break
		}

		p.next()
	}

	if p.isPunct("|") {
		p.next()

		d.Cond, err = p.parseOrExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct("@"); err != nil {
		return nil, err
	}

	return d, nil
}

func (p *parser) parseDeclRef() (*ast.TemplateRef, error) {
	t := p.peek()

	if t.kind != tokWord {
		return nil, p.failf(t, "expected template argument, found %s", t)
	}

	p.next()

	ref := &ast.TemplateRef{Pos: p.pos(t.off)}

	if key, err := strconv.Atoi(t.text); err == nil {
		ref.Key = key

		if p.isPunct(".") {
			p.next()

			f, err := p.expectIdent("field name")
			if err != nil {
				return nil, err
			}

			ref.Field = f.text
		}

		return ref, nil
	}

	if !letterLed(t.text) {
		return nil, p.failf(t, "expected template argument, found %s", t)
	}

	ref.Arg = t.text

	return ref, nil
}
