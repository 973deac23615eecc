// Package selections implements the textual selection query language: a
// tokenizer, a recursive-descent parser, and an AST evaluator that turns a
// compiled query into the sorted, deduplicated list of atom indices (or
// atom n-tuples, for arity >= 2) it matches against a Frame.
package selections

import (
	"sort"
	"strings"

	chem "github.com/AspirinCode/chemfiles"
)

// Selection is a compiled query, ready to be evaluated against any Frame
// with a compatible topology. Compiling once and evaluating many times
// avoids re-tokenizing and re-parsing on every frame of a trajectory.
type Selection struct {
	ast   boolExpr
	arity int
	query string
}

// Arity reports how many atom indices one match of this selection binds:
// 1 for a plain atom selection, up to 4 for quads.
func (s *Selection) Arity() int { return s.arity }

// String returns the original query text the selection was compiled from.
func (s *Selection) String() string { return s.query }

// Compile parses query into a Selection. A leading "pairs:", "triples:" or
// "quads:" clause declares an arity greater than the default of 1 (plain
// atoms); the declared arity bounds which #N variables the query may use.
//
// Lexical and syntax errors, and references to unknown identifiers, are
// reported as a SelectionError carrying the byte offset of the offending
// token within query.
func Compile(query string) (*Selection, error) {
	arity := 1
	body := query
	switch {
	case strings.HasPrefix(query, "pairs:"):
		arity, body = 2, query[len("pairs:"):]
	case strings.HasPrefix(query, "triples:"):
		arity, body = 3, query[len("triples:"):]
	case strings.HasPrefix(query, "quads:"):
		arity, body = 4, query[len("quads:"):]
	case strings.HasPrefix(query, "atoms:"):
		arity, body = 1, query[len("atoms:"):]
	}

	toks, err := tokenize(body)
	if err != nil {
		return nil, err
	}
	p := newParser(toks, arity)
	ast, err := p.parseSelection()
	if err != nil {
		return nil, err
	}
	return &Selection{ast: ast, arity: arity, query: query}, nil
}

// Select evaluates the compiled selection against frame, returning every
// matching tuple as a sorted, deduplicated slice of arity-length index
// slices. For an arity-1 selection, each tuple has length 1.
//
// Evaluation visits the Cartesian product of atom indices for the
// selection's arity (O(N^arity) in the worst case), applying the predicate
// to each candidate tuple.
func (s *Selection) Select(frame *chem.Frame) [][]int {
	n := frame.AtomCount()
	var matches [][]int
	tuple := make([]int, s.arity)

	var recurse func(depth int)
	recurse = func(depth int) {
		if depth == s.arity {
			if s.ast.evaluate(frame, tuple) {
				out := make([]int, s.arity)
				copy(out, tuple)
				matches = append(matches, out)
			}
			return
		}
		for i := 0; i < n; i++ {
			tuple[depth] = i
			recurse(depth + 1)
		}
	}
	recurse(0)

	sort.Slice(matches, func(a, b int) bool {
		for k := 0; k < s.arity; k++ {
			if matches[a][k] != matches[b][k] {
				return matches[a][k] < matches[b][k]
			}
		}
		return false
	})
	return dedupTuples(matches)
}

func dedupTuples(sorted [][]int) [][]int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, t := range sorted[1:] {
		last := out[len(out)-1]
		same := true
		for k := range t {
			if t[k] != last[k] {
				same = false
				break
			}
		}
		if !same {
			out = append(out, t)
		}
	}
	return out
}

// SelectAtoms is a convenience for arity-1 selections: it compiles query
// and evaluates it against frame, returning plain atom indices rather than
// length-1 tuples. It returns a SelectionError if query declares an arity
// other than 1.
func SelectAtoms(query string, frame *chem.Frame) ([]int, error) {
	sel, err := Compile(query)
	if err != nil {
		return nil, err
	}
	if sel.arity != 1 {
		return nil, chem.SelectionError("SelectAtoms requires an arity-1 selection, got arity %d", sel.arity)
	}
	tuples := sel.Select(frame)
	out := make([]int, len(tuples))
	for i, t := range tuples {
		out[i] = t[0]
	}
	return out, nil
}
