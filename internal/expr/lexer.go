package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokLParen
	tokRParen
	tokComma
	tokOp
	tokWord
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokName:
		return "tag name"
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokComma:
		return `","`
	case tokOp:
		return "operator"
	case tokWord:
		return "word"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the input
}

// twoCharOps must be tried before oneCharOps.
var (
	twoCharOps = []string{"!=", "<=", ">=", "^=", "$=", "*="}
	oneCharOps = []string{"=", "<", ">"}
)

// lexer splits an expression into tokens. Outside parentheses it yields tag
// names and punctuation; inside them, operators and free-form words.
type lexer struct {
	input string
	pos   int
	depth int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	switch c := l.input[l.pos]; c {
	case '(':
		if l.depth > 0 {
			return token{}, l.errorf(start, `unexpected "("`)
		}
		l.pos++
		l.depth++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		if l.depth == 0 {
			return token{}, l.errorf(start, `unexpected ")"`)
		}
		l.pos++
		l.depth--
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	}

	if l.depth == 0 {
		return l.name()
	}
	if op, ok := l.operator(); ok {
		l.pos += len(op)
		return token{kind: tokOp, text: op, pos: start}, nil
	}
	return l.word(), nil
}

func (l *lexer) operator() (string, bool) {
	rest := l.input[l.pos:]
	for _, op := range twoCharOps {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	for _, op := range oneCharOps {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	return "", false
}

func (l *lexer) name() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isNameByte(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return token{}, l.errorf(start, "unexpected %q", l.input[start:start+1])
	}
	return token{kind: tokName, text: l.input[start:l.pos], pos: start}, nil
}

// word reads up to the next space, parenthesis or comma.
func (l *lexer) word() token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == '(' || r == ')' || r == ',' || unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tokWord, text: l.input[start:l.pos], pos: start}
}

func (l *lexer) errorf(pos int, format string, args ...any) *SyntaxError {
	return newSyntaxError(l.input, pos, format, args...)
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
