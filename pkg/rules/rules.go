// Package rules is a small fact table with Horn-clause rules evaluated to a
// fixed point by repeated relational joins.
//
// Rules use the usual notation:
//
//	RecommendToSkip(V, S) :- WatchedSegment(U, V, S), HighSkipRate(V, S)
//
// Identifiers starting with an upper-case letter or '_' are variables;
// anything else, or a double-quoted string, is a constant.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSyntax is returned for rules or queries that cannot be parsed.
	ErrSyntax = errors.New("rule syntax error")
	// ErrArity is returned when a predicate is used with inconsistent arity.
	ErrArity = errors.New("predicate arity mismatch")
	// ErrUnsafeRule is returned when a head variable does not occur in the body.
	ErrUnsafeRule = errors.New("unsafe rule")
)

// Term is a variable or a constant argument of an atom.
type Term struct {
	Value string
	IsVar bool
}

// Var builds a variable term.
func Var(name string) Term { return Term{Value: name, IsVar: true} }

// Const builds a constant term.
func Const(value string) Term { return Term{Value: value} }

func (t Term) String() string {
	if t.IsVar {
		return t.Value
	}
	return fmt.Sprintf("%q", t.Value)
}

// Atom is a predicate applied to terms.
type Atom struct {
	Predicate string
	Terms     []Term
}

func (a Atom) String() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return a.Predicate + "(" + strings.Join(parts, ", ") + ")"
}

// Rule derives Head whenever every Body atom matches.
type Rule struct {
	Head Atom
	Body []Atom
}

func (r Rule) String() string {
	body := make([]string, len(r.Body))
	for i, a := range r.Body {
		body[i] = a.String()
	}
	return r.Head.String() + " :- " + strings.Join(body, ", ")
}

// Fact is a ground atom.
type Fact struct {
	Predicate string
	Args      []string
}

type relation struct {
	arity  int
	tuples [][]string
	index  map[string]struct{}
}

func tupleKey(args []string) string {
	return strings.Join(args, "\x00")
}

func (r *relation) add(args []string) bool {
	k := tupleKey(args)
	if _, ok := r.index[k]; ok {
		return false
	}
	r.index[k] = struct{}{}
	r.tuples = append(r.tuples, append([]string(nil), args...))
	return true
}

// Program holds base facts, rules and everything derived from them.
type Program struct {
	relations map[string]*relation
	rules     []Rule
	dirty     bool
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{relations: make(map[string]*relation)}
}

func (p *Program) relation(pred string, arity int) (*relation, error) {
	rel, ok := p.relations[pred]
	if !ok {
		rel = &relation{arity: arity, index: make(map[string]struct{})}
		p.relations[pred] = rel
		return rel, nil
	}
	if rel.arity != arity {
		return nil, fmt.Errorf("%w: %s has arity %d, got %d", ErrArity, pred, rel.arity, arity)
	}
	return rel, nil
}

// Assert adds a base fact. Asserting an existing fact is a no-op.
func (p *Program) Assert(pred string, args ...string) error {
	rel, err := p.relation(pred, len(args))
	if err != nil {
		return err
	}
	if rel.add(args) {
		p.dirty = true
	}
	return nil
}

// AddRule registers a rule after checking that it is range restricted.
func (p *Program) AddRule(r Rule) error {
	bound := make(map[string]bool)
	for _, a := range r.Body {
		if _, err := p.relation(a.Predicate, len(a.Terms)); err != nil {
			return err
		}
		for _, t := range a.Terms {
			if t.IsVar {
				bound[t.Value] = true
			}
		}
	}
	for _, t := range r.Head.Terms {
		if t.IsVar && !bound[t.Value] {
			return fmt.Errorf("%w: variable %s of %s not bound in body", ErrUnsafeRule, t.Value, r.Head.Predicate)
		}
	}
	if _, err := p.relation(r.Head.Predicate, len(r.Head.Terms)); err != nil {
		return err
	}
	p.rules = append(p.rules, r)
	p.dirty = true
	return nil
}

// Load parses and registers rules, one per line or separated by ';'.
func (p *Program) Load(src string) error {
	for _, stmt := range splitStatements(src) {
		r, err := ParseRule(stmt)
		if err != nil {
			return err
		}
		if err := p.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate applies every rule until no new fact is derived.
func (p *Program) Evaluate() {
	if !p.dirty {
		return
	}
	for {
		added := false
		for _, r := range p.rules {
			head := p.relations[r.Head.Predicate]
			for _, b := range p.solve(r.Body, 0, map[string]string{}) {
				if head.add(ground(r.Head, b)) {
					added = true
				}
			}
		}
		if !added {
			break
		}
	}
	p.dirty = false
}

// solve returns every binding satisfying body[i:] under the given binding.
func (p *Program) solve(body []Atom, i int, binding map[string]string) []map[string]string {
	if i == len(body) {
		out := make(map[string]string, len(binding))
		for k, v := range binding {
			out[k] = v
		}
		return []map[string]string{out}
	}

	atom := body[i]
	rel, ok := p.relations[atom.Predicate]
	if !ok {
		return nil
	}

	var out []map[string]string
	for _, tuple := range rel.tuples {
		next, ok := unify(atom, tuple, binding)
		if !ok {
			continue
		}
		out = append(out, p.solve(body, i+1, next)...)
	}
	return out
}

func unify(atom Atom, tuple []string, binding map[string]string) (map[string]string, bool) {
	var next map[string]string
	lookup := func(name string) (string, bool) {
		if next != nil {
			if v, ok := next[name]; ok {
				return v, true
			}
		}
		v, ok := binding[name]
		return v, ok
	}
	for j, t := range atom.Terms {
		if !t.IsVar {
			if tuple[j] != t.Value {
				return nil, false
			}
			continue
		}
		if t.Value == "_" {
			continue
		}
		if v, ok := lookup(t.Value); ok {
			if v != tuple[j] {
				return nil, false
			}
			continue
		}
		if next == nil {
			next = make(map[string]string, len(binding)+len(atom.Terms))
			for k, v := range binding {
				next[k] = v
			}
		}
		next[t.Value] = tuple[j]
	}
	if next == nil {
		return binding, true
	}
	return next, true
}

func ground(a Atom, b map[string]string) []string {
	out := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		if t.IsVar {
			out[i] = b[t.Value]
		} else {
			out[i] = t.Value
		}
	}
	return out
}

// Query returns the argument tuples of every fact matching pattern, sorted.
// A predicate with no facts yields an empty result.
func (p *Program) Query(pattern Atom) [][]string {
	p.Evaluate()

	rel, ok := p.relations[pattern.Predicate]
	if !ok || rel.arity != len(pattern.Terms) {
		return nil
	}
	var out [][]string
	for _, tuple := range rel.tuples {
		if _, ok := unify(pattern, tuple, map[string]string{}); ok {
			out = append(out, append([]string(nil), tuple...))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return tupleKey(out[i]) < tupleKey(out[j])
	})
	return out
}

// Ask parses a query atom such as `RecommendToSkip(V, S)` and runs it.
func (p *Program) Ask(query string) ([][]string, error) {
	atom, err := ParseAtom(query)
	if err != nil {
		return nil, err
	}
	return p.Query(atom), nil
}

// Facts returns every fact of a predicate, sorted.
func (p *Program) Facts(pred string) []Fact {
	p.Evaluate()
	rel, ok := p.relations[pred]
	if !ok {
		return nil
	}
	terms := make([]Term, rel.arity)
	for i := range terms {
		terms[i] = Var("_")
	}
	tuples := p.Query(Atom{Predicate: pred, Terms: terms})
	out := make([]Fact, len(tuples))
	for i, t := range tuples {
		out[i] = Fact{Predicate: pred, Args: t}
	}
	return out
}
