// Package syntax classifies Cubicle template source into lexical spans.
//
// Classification is a pure function of the buffer contents: an ordered rule
// table is evaluated with a first-match-wins policy at each position, and
// delimited regions are tracked with a push/pop scope stack rather than
// recursive descent, so arbitrary sub-ranges can be reclassified cheaply
// (see [Session]).
package syntax

// Category is the lexical tag assigned to a span of source text.
type Category int

const (
	// None marks text with no lexical classification (whitespace,
	// unrecognized characters). The host renders it as plain text.
	None Category = iota

	// Shebang is a #! header line. Presented as a comment.
	Shebang

	// Comment covers (* ... *) regions, including the delimiters and any
	// nested comments.
	Comment

	// CommentMarker is a flagged word (TODO, FIXME, XXX, NOTE) inside a
	// comment region.
	CommentMarker

	// Keyword is a structural keyword (type, var, transition, ...).
	Keyword

	// Type is a builtin type name (bool, real, int, proc).
	Type

	// Boolean is a True or False literal.
	Boolean

	// Ident is a lowercase-leading identifier; may embed @ and . characters
	// in template names. Presented as plain text.
	Ident

	// StateVar is an uppercase-leading identifier naming a state variable.
	StateVar

	// Operator is one of := && || < > =.
	Operator

	// Symbol is a reserved symbol: standalone _ or ?.
	Symbol

	// KeyChar is structural punctuation: | ; : . @.
	KeyChar

	// Number is an integer literal, optionally signed, with optional _
	// group separators and an optional size suffix.
	Number

	// Float is a decimal literal with a fractional part or an exponent.
	Float

	// Enclosure is a matched ( ) { } [ ] delimiter.
	Enclosure

	// Error is an unbalanced closing delimiter or stray comment close.
	Error
)

var categoryNames = map[Category]string{
	None:          "none",
	Shebang:       "shebang",
	Comment:       "comment",
	CommentMarker: "comment-marker",
	Keyword:       "keyword",
	Type:          "type",
	Boolean:       "boolean",
	Ident:         "identifier",
	StateVar:      "state-variable",
	Operator:      "operator",
	Symbol:        "symbol",
	KeyChar:       "key-character",
	Number:        "number",
	Float:         "float",
	Enclosure:     "enclosure",
	Error:         "error",
}

func (c Category) String() string {
	name, found := categoryNames[c]
	if !found {
		return "invalid"
	}

	return name
}

// Group is the presentation group a category maps to. Group names follow
// the classic highlight-group vocabulary so hosts can map them onto styles
// directly.
type Group string

const (
	GroupNone        Group = ""
	GroupComment     Group = "Comment"
	GroupStatement   Group = "Statement"
	GroupDelimiter   Group = "Delimiter"
	GroupSpecialChar Group = "SpecialChar"
	GroupOperator    Group = "Operator"
	GroupIdentifier  Group = "Identifier"
	GroupBoolean     Group = "Boolean"
	GroupNumber      Group = "Number"
	GroupFloat       Group = "Float"
	GroupType        Group = "Type"
	GroupTodo        Group = "Todo"
	GroupError       Group = "Error"
)

var categoryGroups = map[Category]Group{
	None:          GroupNone,
	Shebang:       GroupComment,
	Comment:       GroupComment,
	CommentMarker: GroupTodo,
	Keyword:       GroupStatement,
	Type:          GroupType,
	Boolean:       GroupBoolean,
	Ident:         GroupNone,
	StateVar:      GroupIdentifier,
	Operator:      GroupOperator,
	Symbol:        GroupSpecialChar,
	KeyChar:       GroupDelimiter,
	Number:        GroupNumber,
	Float:         GroupFloat,
	Enclosure:     GroupStatement,
	Error:         GroupError,
}

// Group returns the presentation group for the category.
func (c Category) Group() Group {
	return categoryGroups[c]
}

// Spellable reports whether text with this category is free text that the
// host may spell-check. Only comment body text qualifies.
func (c Category) Spellable() bool {
	return c == Comment
}
