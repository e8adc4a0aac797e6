package syntax

import "strings"

// cursor is the complete state of an in-progress scan. Classification at
// any position depends only on the buffer, the position, and the scope
// stack, which is what makes resume points possible.
type cursor struct {
	src   []byte
	pos   int
	stack []scope
}

func (c *cursor) peek(ahead int) byte {
	i := c.pos + ahead

	if i >= len(c.src) {
		return 0
	}

	return c.src[i]
}

func (c *cursor) atLineStart() bool {
	return c.pos == 0 || c.src[c.pos-1] == '\n'
}

// boundaryBefore reports whether a word may start at the cursor position.
func (c *cursor) boundaryBefore() bool {
	return c.pos == 0 || !isWordChar(c.src[c.pos-1])
}

func (c *cursor) boundaryAt(i int) bool {
	return i >= len(c.src) || !isWordChar(c.src[i])
}

// wordEnd returns the end of the maximal word-character run at the cursor.
func (c *cursor) wordEnd() int {
	i := c.pos

	for i < len(c.src) && isWordChar(c.src[i]) {
		i++
	}

	return i
}

func (c *cursor) hasPrefix(s string) bool {
	if c.pos+len(s) > len(c.src) {
		return false
	}

	return string(c.src[c.pos:c.pos+len(s)]) == s
}

func (c *cursor) push(sc scope) {
	c.stack = append(c.stack, sc)
}

func (c *cursor) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *cursor) top() (scope, bool) {
	if len(c.stack) == 0 {
		return 0, false
	}

	return c.stack[len(c.stack)-1], true
}

func (c *cursor) inComment() bool {
	top, found := c.top()

	return found && top == scopeComment
}

// step classifies the token at the cursor position and advances past it.
// Anything no rule claims advances one byte as None.
func (c *cursor) step() Span {
	start := c.pos

	if c.inComment() {
		end, cat := c.commentStep()
		c.pos = end

		return Span{Start: start, End: end, Category: cat}
	}

	for _, match := range codeRules {
		end, cat, found := match(c)
		if !found {
			continue
		}

		c.pos = end

		return Span{Start: start, End: end, Category: cat}
	}

	c.pos++

	return Span{Start: start, End: c.pos, Category: None}
}

// commentStep classifies one token inside a comment region. Comments nest,
// and only flagged marker words interrupt the comment category; every code
// rule is suspended until the region closes.
func (c *cursor) commentStep() (int, Category) {
	switch {
	case c.peek(0) == '(' && c.peek(1) == '*':
		c.push(scopeComment)
		return c.pos + 2, Comment

	case c.peek(0) == '*' && c.peek(1) == ')':
		c.pop()
		return c.pos + 2, Comment

	case isUpper(c.peek(0)) && c.boundaryBefore():
		end := c.wordEnd()
		if markerWords[string(c.src[c.pos:end])] {
			return end, CommentMarker
		}

		return end, Comment
	}

	return c.pos + 1, Comment
}

// A matchFunc inspects the cursor and, on success, returns the token end
// and category. Matchers for delimiters also adjust the scope stack.
type matchFunc func(c *cursor) (int, Category, bool)

// codeRules is the rule table outside comment regions, evaluated in order
// with a first-match-wins policy. Order is load-bearing in three places:
// comment opens are tried before enclosure opens so (* is never a bare
// parenthesis, word classes are tried before the identifier rule, and
// floats are tried before integers so the fractional part is not split.
var codeRules = []matchFunc{
	matchShebang,
	matchCloser,
	matchStrayCommentClose,
	matchCommentOpen,
	matchOpener,
	matchKeyword,
	matchTypeWord,
	matchBoolean,
	matchStateVar,
	matchIdent,
	matchOperator,
	matchSymbol,
	matchKeyChar,
	matchFloat,
	matchNumber,
}

func matchShebang(c *cursor) (int, Category, bool) {
	if !c.atLineStart() || c.peek(0) != '#' || c.peek(1) != '!' {
		return 0, None, false
	}

	end := c.pos
	for end < len(c.src) && c.src[end] != '\n' {
		end++
	}

	return end, Shebang, true
}

// matchCloser classifies a closing delimiter. The scope stack decides its
// fate: closing the innermost open region is an enclosure, anything else
// is an error, including a closer for an outer region while an inner one
// is still open.
func matchCloser(c *cursor) (int, Category, bool) {
	want, found := closerFor[c.peek(0)]
	if !found {
		return 0, None, false
	}

	if top, open := c.top(); open && top == want {
		c.pop()
		return c.pos + 1, Enclosure, true
	}

	return c.pos + 1, Error, true
}

func matchStrayCommentClose(c *cursor) (int, Category, bool) {
	if c.peek(0) != '*' || c.peek(1) != ')' {
		return 0, None, false
	}

	return c.pos + 2, Error, true
}

func matchCommentOpen(c *cursor) (int, Category, bool) {
	if c.peek(0) != '(' || c.peek(1) != '*' {
		return 0, None, false
	}

	c.push(scopeComment)

	return c.pos + 2, Comment, true
}

func matchOpener(c *cursor) (int, Category, bool) {
	sc, found := openerFor[c.peek(0)]
	if !found {
		return 0, None, false
	}

	c.push(sc)

	return c.pos + 1, Enclosure, true
}

func matchKeyword(c *cursor) (int, Category, bool) {
	if !isLower(c.peek(0)) || !c.boundaryBefore() {
		return 0, None, false
	}

	end := c.wordEnd()
	if !keywords[string(c.src[c.pos:end])] {
		return 0, None, false
	}

	return end, Keyword, true
}

func matchTypeWord(c *cursor) (int, Category, bool) {
	if !isLower(c.peek(0)) || !c.boundaryBefore() {
		return 0, None, false
	}

	end := c.wordEnd()
	if !typeWords[string(c.src[c.pos:end])] {
		return 0, None, false
	}

	return end, Type, true
}

func matchBoolean(c *cursor) (int, Category, bool) {
	if !isUpper(c.peek(0)) || !c.boundaryBefore() {
		return 0, None, false
	}

	end := c.wordEnd()
	if !booleanWords[string(c.src[c.pos:end])] {
		return 0, None, false
	}

	return end, Boolean, true
}

func matchStateVar(c *cursor) (int, Category, bool) {
	if !isUpper(c.peek(0)) || !c.boundaryBefore() {
		return 0, None, false
	}

	return c.wordEnd(), StateVar, true
}

func matchIdent(c *cursor) (int, Category, bool) {
	if !isLower(c.peek(0)) || !c.boundaryBefore() {
		return 0, None, false
	}

	end := c.pos + 1
	for end < len(c.src) && isIdentChar(c.src[end]) {
		end++
	}

	return end, Ident, true
}

func matchOperator(c *cursor) (int, Category, bool) {
	for _, op := range operators {
		if c.hasPrefix(op) {
			return c.pos + len(op), Operator, true
		}
	}

	return 0, None, false
}

func matchSymbol(c *cursor) (int, Category, bool) {
	switch c.peek(0) {
	case '?':
		return c.pos + 1, Symbol, true

	case '_':
		if c.boundaryBefore() && c.boundaryAt(c.pos+1) {
			return c.pos + 1, Symbol, true
		}
	}

	return 0, None, false
}

func matchKeyChar(c *cursor) (int, Category, bool) {
	if strings.IndexByte(keyChars, c.peek(0)) < 0 {
		return 0, None, false
	}

	return c.pos + 1, KeyChar, true
}

// matchFloat matches a signed decimal with a fractional part or an
// exponent. A bare integer fails here and falls through to matchNumber.
func matchFloat(c *cursor) (int, Category, bool) {
	i := c.pos

	if b := c.peek(0); b == '-' || b == '+' {
		i++
	}

	if i >= len(c.src) || !isDigit(c.src[i]) {
		return 0, None, false
	}

	if i == c.pos && !c.boundaryBefore() {
		return 0, None, false
	}

	for i < len(c.src) && isDigit(c.src[i]) {
		i++
	}

	sawPart := false

	if i < len(c.src) && c.src[i] == '.' {
		sawPart = true
		i++

		for i < len(c.src) && isDigit(c.src[i]) {
			i++
		}
	}

	if i < len(c.src) && (c.src[i] == 'e' || c.src[i] == 'E') {
		j := i + 1

		if j < len(c.src) && (c.src[j] == '-' || c.src[j] == '+') {
			j++
		}

		if j < len(c.src) && isDigit(c.src[j]) {
			sawPart = true

			for j < len(c.src) && isDigit(c.src[j]) {
				j++
			}

			i = j
		}
	}

	if !sawPart || !c.boundaryAt(i) {
		return 0, None, false
	}

	return i, Float, true
}

// matchNumber matches a signed integer with optional _ group separators
// and an optional l/L size suffix.
func matchNumber(c *cursor) (int, Category, bool) {
	i := c.pos

	if b := c.peek(0); b == '-' || b == '+' {
		i++
	}

	if i >= len(c.src) || !isDigit(c.src[i]) {
		return 0, None, false
	}

	if i == c.pos && !c.boundaryBefore() {
		return 0, None, false
	}

	for i < len(c.src) && isDigit(c.src[i]) {
		i++
	}

	for i+1 < len(c.src) && c.src[i] == '_' && isDigit(c.src[i+1]) {
		i += 2

		for i < len(c.src) && isDigit(c.src[i]) {
			i++
		}
	}

	if i < len(c.src) && (c.src[i] == 'l' || c.src[i] == 'L') {
		i++
	}

	if !c.boundaryAt(i) {
		return 0, None, false
	}

	return i, Number, true
}
