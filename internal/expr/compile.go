package expr

import (
	"regexp"
	"strings"

	"github.com/starford/taskparser/internal/tags"
)

// Predicate reports whether a tag map passes a filter. Predicates are pure
// and safe for concurrent use.
type Predicate func(tags.Map) bool

// Comparator orders two tag maps, returning a negative number, zero or a
// positive number. Zero means the maps tie on every clause.
type Comparator func(a, b tags.Map) int

// MatchAll accepts every tag map.
func MatchAll(tags.Map) bool { return true }

// KeepOrder reports every pair as equal, so a stable sort keeps input order.
func KeepOrder(a, b tags.Map) int { return 0 }

type matcher func(value string) bool

// CompileFilters combines clauses into one predicate. Clauses are ANDed and
// evaluated in order.
func CompileFilters(filters []Filter) (Predicate, error) {
	if len(filters) == 0 {
		return MatchAll, nil
	}

	type clause struct {
		tag   string
		null  bool // is/not clause
		want  bool // for null clauses: whether the tag must be null
		match matcher
	}
	compiled := make([]clause, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case OpIs, OpNot:
			if f.Reference != NullSymbol {
				return nil, &NullOperatorError{Tag: f.Tag, Op: f.Op, Reference: f.Reference}
			}
			compiled = append(compiled, clause{tag: f.Tag, null: true, want: f.Op == OpIs})
		default:
			m, err := compileMatcher(f)
			if err != nil {
				return nil, err
			}
			compiled = append(compiled, clause{tag: f.Tag, match: m})
		}
	}

	return func(m tags.Map) bool {
		for _, c := range compiled {
			value, ok := m.Get(c.tag)
			if c.null {
				if ok == c.want {
					return false
				}
				continue
			}
			if !ok || !c.match(value) {
				return false
			}
		}
		return true
	}, nil
}

func compileMatcher(f Filter) (matcher, error) {
	ref := f.Reference
	switch f.Op {
	case OpEq:
		return func(v string) bool { return v == ref }, nil
	case OpNe:
		return func(v string) bool { return v != ref }, nil
	case OpLt:
		return func(v string) bool { return v < ref }, nil
	case OpGt:
		return func(v string) bool { return v > ref }, nil
	case OpLe:
		return func(v string) bool { return v <= ref }, nil
	case OpGe:
		return func(v string) bool { return v >= ref }, nil
	case OpPrefix:
		return func(v string) bool { return strings.HasPrefix(v, ref) }, nil
	case OpSuffix:
		return func(v string) bool { return strings.HasSuffix(v, ref) }, nil
	case OpGlob:
		re := globRegexp(ref)
		return re.MatchString, nil
	}
	return nil, newSyntaxError(f.String(), 0, "unknown operator %q", f.Op)
}

// globRegexp translates a wildcard pattern where * matches any run of
// characters and ? matches one character. Matching is case-insensitive.
func globRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// CompileSorts combines clauses into one comparator. The first clause is the
// primary key. Null values sort last whatever the direction.
func CompileSorts(sorts []Sort) Comparator {
	if len(sorts) == 0 {
		return KeepOrder
	}
	clauses := append([]Sort(nil), sorts...)
	return func(a, b tags.Map) int {
		for _, s := range clauses {
			av, aok := a.Get(s.Tag)
			bv, bok := b.Get(s.Tag)
			switch {
			case !aok && !bok:
				continue
			case !aok:
				return 1
			case !bok:
				return -1
			}
			if c := strings.Compare(av, bv); c != 0 {
				if s.Desc {
					return -c
				}
				return c
			}
		}
		return 0
	}
}

// CompileFilter parses and compiles a filter expression.
func CompileFilter(input string) (Predicate, error) {
	filters, err := ParseFilters(input)
	if err != nil {
		return nil, err
	}
	return CompileFilters(filters)
}

// CompileSort parses and compiles a sort expression.
func CompileSort(input string) (Comparator, error) {
	sorts, err := ParseSorts(input)
	if err != nil {
		return nil, err
	}
	return CompileSorts(sorts), nil
}
