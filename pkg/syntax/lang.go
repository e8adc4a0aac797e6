package syntax

// Word sets for the language. Membership is only tested on maximal word
// runs, so "type" inside "subtype" never matches.
var (
	keywords = map[string]bool{
		"type":         true,
		"array":        true,
		"var":          true,
		"const":        true,
		"init":         true,
		"unsafe":       true,
		"invariant":    true,
		"number_procs": true,
		"transition":   true,
		"requires":     true,
		"forall_other": true,
		"case":         true,
	}

	typeWords = map[string]bool{
		"bool": true,
		"real": true,
		"int":  true,
		"proc": true,
	}

	booleanWords = map[string]bool{
		"True":  true,
		"False": true,
	}

	markerWords = map[string]bool{
		"TODO":  true,
		"FIXME": true,
		"XXX":   true,
		"NOTE":  true,
	}
)

// operators in match order; multi-character operators come first so := is
// never read as : followed by =.
var operators = []string{":=", "&&", "||", "<", ">", "="}

const keyChars = "|;:.@"

// scope identifies an active delimited region. Comment scopes nest;
// enclosure scopes restrict which closing delimiters are legal.
type scope int

const (
	scopeParen scope = iota
	scopeBracket
	scopeBrace
	scopeComment
)

// closerFor maps each closing delimiter to the scope it terminates.
var closerFor = map[byte]scope{
	')': scopeParen,
	']': scopeBracket,
	'}': scopeBrace,
}

// openerFor maps each opening delimiter to the scope it starts.
var openerFor = map[byte]scope{
	'(': scopeParen,
	'[': scopeBracket,
	'{': scopeBrace,
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isWordChar(b byte) bool {
	return isLower(b) || isUpper(b) || isDigit(b) || b == '_'
}

// isIdentChar reports whether b may appear after the first character of a
// lowercase identifier. Template splices embed @ and . in names, so both
// count as identifier characters.
func isIdentChar(b byte) bool {
	return isWordChar(b) || b == '@' || b == '.'
}
