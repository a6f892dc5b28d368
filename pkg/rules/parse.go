package rules

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseRule parses `Head(...) :- A(...), B(...)`. `<=` is accepted in place
// of `:-`.
func ParseRule(src string) (Rule, error) {
	src = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(src), "."))
	sep := ":-"
	idx := strings.Index(src, sep)
	if idx < 0 {
		sep = "<="
		idx = strings.Index(src, sep)
	}
	if idx < 0 {
		return Rule{}, fmt.Errorf("%w: missing ':-' in %q", ErrSyntax, src)
	}

	head, err := ParseAtom(src[:idx])
	if err != nil {
		return Rule{}, err
	}
	body, err := parseBody(src[idx+len(sep):])
	if err != nil {
		return Rule{}, err
	}
	if len(body) == 0 {
		return Rule{}, fmt.Errorf("%w: empty body in %q", ErrSyntax, src)
	}
	return Rule{Head: head, Body: body}, nil
}

func parseBody(src string) ([]Atom, error) {
	var atoms []Atom
	depth, start := 0, 0
	inQuote := false
	for i, r := range src {
		switch {
		case r == '"' && (i == 0 || src[i-1] != '\\'):
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ',' || r == '&') && depth == 0:
			a, err := ParseAtom(src[start:i])
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a)
			start = i + 1
		}
	}
	if strings.TrimSpace(src[start:]) != "" {
		a, err := ParseAtom(src[start:])
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	return atoms, nil
}

// ParseAtom parses `Pred(T1, T2, ...)`.
func ParseAtom(src string) (Atom, error) {
	src = strings.TrimSpace(src)
	open := strings.IndexByte(src, '(')
	if open <= 0 || !strings.HasSuffix(src, ")") {
		return Atom{}, fmt.Errorf("%w: malformed atom %q", ErrSyntax, src)
	}
	pred := strings.TrimSpace(src[:open])
	if !isIdent(pred) {
		return Atom{}, fmt.Errorf("%w: bad predicate name %q", ErrSyntax, pred)
	}

	inner := strings.TrimSpace(src[open+1 : len(src)-1])
	atom := Atom{Predicate: pred}
	if inner == "" {
		return atom, nil
	}
	for _, raw := range splitArgs(inner) {
		t, err := parseTerm(raw)
		if err != nil {
			return Atom{}, err
		}
		atom.Terms = append(atom.Terms, t)
	}
	return atom, nil
}

func splitArgs(src string) []string {
	var out []string
	start := 0
	inQuote := false
	for i, r := range src {
		switch {
		case r == '"' && (i == 0 || src[i-1] != '\\'):
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, src[start:i])
			start = i + 1
		}
	}
	return append(out, src[start:])
}

func parseTerm(raw string) (Term, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Term{}, fmt.Errorf("%w: empty argument", ErrSyntax)
	}
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return Term{}, fmt.Errorf("%w: bad string %s", ErrSyntax, raw)
		}
		return Const(s), nil
	}
	first := []rune(raw)[0]
	if (unicode.IsUpper(first) || first == '_') && isIdent(raw) {
		return Var(raw), nil
	}
	return Const(raw), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func splitStatements(src string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(src, func(r rune) bool { return r == '\n' || r == ';' }) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		out = append(out, line)
	}
	return out
}
