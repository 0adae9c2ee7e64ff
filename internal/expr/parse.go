// Package expr implements the filter and sort expression languages used to
// select and order items by their tags.
//
// A filter is a comma-separated list of tag(operator reference) clauses,
// e.g. "checked(=false),due(<=20240301),owner(is null)". A sort is a
// comma-separated list of tag(asc|desc) clauses.
package expr

import (
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEq     Op = "="
	OpNe     Op = "!="
	OpLt     Op = "<"
	OpGt     Op = ">"
	OpLe     Op = "<="
	OpGe     Op = ">="
	OpPrefix Op = "^="
	OpSuffix Op = "$="
	OpGlob   Op = "*="
	OpIs     Op = "is"
	OpNot    Op = "not"
)

// NullSymbol is the only reference accepted by is and not.
const NullSymbol = "null"

// Filter is one parsed filter clause.
type Filter struct {
	Tag       string
	Op        Op
	Reference string
}

func (f Filter) String() string {
	if f.Op == OpIs || f.Op == OpNot {
		return f.Tag + "(" + string(f.Op) + " " + f.Reference + ")"
	}
	return f.Tag + "(" + string(f.Op) + f.Reference + ")"
}

// Sort is one parsed sort clause.
type Sort struct {
	Tag  string
	Desc bool
}

func (s Sort) String() string {
	if s.Desc {
		return s.Tag + "(desc)"
	}
	return s.Tag + "(asc)"
}

type parser struct {
	lex *lexer
	tok token
}

func newParser(input string) (*parser, error) {
	p := &parser{lex: newLexer(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.tok
	if tok.kind != kind {
		return tok, p.unexpected(kind.String())
	}
	return tok, p.advance()
}

func (p *parser) unexpected(want string) *SyntaxError {
	got := p.tok.kind.String()
	if p.tok.text != "" {
		got = `"` + p.tok.text + `"`
	}
	return newSyntaxError(p.lex.input, p.tok.pos, "expected %s, got %s", want, got)
}

// clauses parses name(...) clauses separated by commas, calling body for the
// content between the parentheses.
func (p *parser) clauses(body func(name token) error) error {
	if p.tok.kind == tokEOF {
		return nil
	}
	for {
		name, err := p.expect(tokName)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokLParen); err != nil {
			return err
		}
		if err := body(name); err != nil {
			return err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return err
		}
		switch p.tok.kind {
		case tokEOF:
			return nil
		case tokComma:
			if err := p.advance(); err != nil {
				return err
			}
		default:
			return p.unexpected(`"," or end of input`)
		}
	}
}

// ParseFilters parses a filter expression. An empty or blank expression
// yields no clauses.
func ParseFilters(input string) ([]Filter, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	var out []Filter
	err = p.clauses(func(name token) error {
		f := Filter{Tag: name.text}
		switch {
		case p.tok.kind == tokOp:
			f.Op = Op(p.tok.text)
		case p.tok.kind == tokWord && strings.EqualFold(p.tok.text, string(OpIs)):
			f.Op = OpIs
		case p.tok.kind == tokWord && strings.EqualFold(p.tok.text, string(OpNot)):
			f.Op = OpNot
		default:
			return p.unexpected("operator")
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.kind != tokWord {
			return p.unexpected("reference")
		}
		f.Reference = p.tok.text
		out = append(out, f)
		return p.advance()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSorts parses a sort expression. Directions are case-insensitive.
func ParseSorts(input string) ([]Sort, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	var out []Sort
	err = p.clauses(func(name token) error {
		if p.tok.kind != tokWord {
			return p.unexpected("asc or desc")
		}
		s := Sort{Tag: name.text}
		switch strings.ToLower(p.tok.text) {
		case "asc":
		case "desc":
			s.Desc = true
		default:
			return p.unexpected("asc or desc")
		}
		out = append(out, s)
		return p.advance()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
