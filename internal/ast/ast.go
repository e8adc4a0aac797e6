// Package ast defines the syntax tree for cubicle models, both in
// template form (with @...@ declarations, iterators and references) and
// in expanded form. Expanded trees are the subset where every Name has a
// single fragment and no node carries template parts.
package ast

import "fmt"

// Pos locates a node in the source, 1-based.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Model is a whole cubicle source file.
type Model struct {
	SizeProc    string // number_procs argument, "" if absent
	Types       []*TypeDef
	Decls       []*Decl
	Init        *ProcExpr
	Invariants  []*ProcExpr
	Unsafes     []*ProcExpr
	Transitions []*Transition
}

// TypeDef declares an enumerated or abstract type. An abstract type has
// a nil Enum.
type TypeDef struct {
	Pos  Pos
	Name string
	Enum []*EnumElem
}

// EnumElem is one constructor of an enumerated type, or an iterator
// expanding to several.
type EnumElem struct {
	Pos      Pos
	Name     *Name
	Template *EnumIter
}

// EnumIter replicates enum constructors per template instance.
type EnumIter struct {
	Decl *TemplateDecl
	Enum []*EnumElem
}

// Decl declares a variable, array or constant.
type Decl struct {
	Pos      Pos
	Template *TemplateDecl // optional replication
	Kind     string        // var, array or const
	Name     *Ref
	TypeName string
}

// ProcExpr is an init, invariant or unsafe construct: quantified process
// names plus a condition.
type ProcExpr struct {
	Pos      Pos
	Template *TemplateDecl // optional replication; always nil for init
	Procs    []string
	Expr     OrExpr
}

// Transition is a guarded transition block.
type Transition struct {
	Pos      Pos
	Template *TemplateDecl // optional replication
	Name     *Name
	Procs    []string
	Require  OrExpr // nil when there is no requires clause
	Updates  []*Update
}

// Update is one assignment in a transition body, or an iterator
// expanding to several.
type Update struct {
	Pos      Pos
	Assign   *Assign
	Template *UpdateIter
}

// UpdateIter replicates updates per template instance.
type UpdateIter struct {
	Decl    *TemplateDecl
	Updates []*Update
}

// Assign is "ref := value".
type Assign struct {
	Pos Pos
	Lhs *Ref
	Rhs *AssignValue
}

// AssignValue is the right side of an assignment: a case switch, an
// expression, or the nondeterministic ?.
type AssignValue struct {
	Pos    Pos
	Switch []*SwitchElem
	Expr   *Expr
	Rand   bool
}

// SwitchElem is one case arm, or an iterator expanding to several.
type SwitchElem struct {
	Pos      Pos
	Case     *Case
	Template *SwitchIter
}

// SwitchIter replicates case arms per template instance.
type SwitchIter struct {
	Decl  *TemplateDecl
	Cases []*SwitchElem
}

// Case is one arm of a case switch. The default arm has Default set and
// a nil Cond.
type Case struct {
	Pos     Pos
	Default bool
	Cond    AndExpr
	Expr    *Expr
}

// OrExpr is a disjunction of OrElems.
type OrExpr []*OrElem

// OrElem is a conjunction, or an iterator joining instances with ||.
type OrElem struct {
	Pos      Pos
	Expr     AndExpr
	Template *ExprIter
}

// AndExpr is a conjunction of AndElems.
type AndExpr []*AndElem

// AndElem is a boolean expression, an iterator joining instances with
// &&, or a parenthesized nested disjunction.
type AndElem struct {
	Pos      Pos
	Expr     *BoolExpr
	Template *ExprIter
	Or       OrExpr
}

// ExprIter replicates a conjunction per template instance. The
// enclosing element decides whether instances join with && or ||.
type ExprIter struct {
	Decl *TemplateDecl
	Expr AndExpr
}

// BoolExpr is a comparison or a forall_other quantification.
type BoolExpr struct {
	Pos    Pos
	Forall *ForallExpr
	Comp   *CompExpr
}

// ForallExpr is "forall_other p. comp" or "forall_other p. (or)".
type ForallExpr struct {
	Pos  Pos
	Proc string
	Comp *CompExpr
	Expr OrExpr
}

// CompExpr is "lhs op rhs" with op one of = <> < > <= >=.
type CompExpr struct {
	Pos Pos
	Lhs *Expr
	Op  string
	Rhs *Expr
}

// Expr is a single rvalue, or "lhs op rhs" with op + or -.
type Expr struct {
	Pos Pos
	Val *RValue
	Op  string
	Lhs *RValue
	Rhs *RValue
}

// RValue is a variable or array reference, or a literal constant kept as
// its source text.
type RValue struct {
	Pos   Pos
	Ref   *Ref
	Const string
}

// Ref is a variable or array reference.
type Ref struct {
	Pos   Pos
	Array *ArrayRef
	Var   *VarRef
}

// ArrayRef is "name[i, j]".
type ArrayRef struct {
	Pos   Pos
	Name  *Name
	Index []*Name
}

// VarRef is a bare name.
type VarRef struct {
	Pos  Pos
	Name *Name
}

// Name is an identifier interleaving literal fragments with template
// references: Fragments[0] Refs[0] Fragments[1] ... Fragments may be
// empty strings; len(Fragments) is always len(Refs)+1. An expanded name
// is a single fragment with no refs.
type Name struct {
	Pos       Pos
	Fragments []string
	Refs      []*TemplateRef
}

// Expanded reports whether the name holds no template references.
func (n *Name) Expanded() bool {
	return len(n.Refs) == 0
}

// Value returns the text of an expanded name.
func (n *Name) Value() string {
	return n.Fragments[0]
}

// PlainName makes an expanded single-fragment name.
func PlainName(pos Pos, value string) *Name {
	return &Name{Pos: pos, Fragments: []string{value}}
}

// TemplateRef is one @...@ reference: a named data argument, a context
// index, or a context index with a field selector.
type TemplateRef struct {
	Pos   Pos
	Arg   string // data argument name; "" for index forms
	Key   int    // context index when Arg is ""
	Field string // field selector, "" for the bare index form
}

// TemplateDecl introduces template arguments with an optional filter
// condition, as in "@x, y | cond@".
type TemplateDecl struct {
	Pos  Pos
	Args []*TemplateRef
	Cond OrExpr
}
