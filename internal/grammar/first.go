package grammar

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FirstSet is FIRST(X) for some grammar symbol X. Epsilon membership is kept
// apart from the terminals so that it can never be confused with a terminal
// whose text happens to be empty.
type FirstSet struct {
	// Terminals holds the terminals of the set in sorted order.
	Terminals []string

	// Epsilon is whether X can derive the empty string.
	Epsilon bool
}

// Has returns whether terminal t is in the set.
func (fs FirstSet) Has(t string) bool {
	_, found := slices.BinarySearch(fs.Terminals, t)
	return found
}

func (fs FirstSet) String() string {
	elems := copyStrings(fs.Terminals)
	if fs.Epsilon {
		elems = append(elems, EpsilonMarker)
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

// Analysis holds the nullable and FIRST sets of a grammar. Both are computed
// once by Analyze as fixed points and are read-only afterward.
type Analysis struct {
	nullable map[string]bool
	first    map[string]map[string]bool
	epsilon  map[string]bool
}

// Analyze computes nullable and FIRST for every symbol of g.
func Analyze(g Grammar) Analysis {
	an := Analysis{
		nullable: map[string]bool{},
		first:    map[string]map[string]bool{},
		epsilon:  map[string]bool{},
	}

	for nt := range g.byLHS {
		an.nullable[nt] = false
		an.first[nt] = map[string]bool{}
	}
	for _, t := range g.terms {
		an.first[t] = map[string]bool{t: true}
	}

	for changed := true; changed; {
		changed = an.nullablePass(g)
	}
	for changed := true; changed; {
		changed = an.firstPass(g)
	}

	return an
}

// nullablePass makes one full pass over the productions of g, marking heads
// nullable when their body is empty or consists only of nullable
// non-terminals. It returns whether anything changed.
func (an Analysis) nullablePass(g Grammar) bool {
	var changed bool
	for _, p := range g.prods {
		if an.nullable[p.LHS] {
			continue
		}

		allNullable := true
		for _, sym := range p.RHS {
			if !g.IsNonTerminal(sym) || !an.nullable[sym] {
				allNullable = false
				break
			}
		}

		if allNullable {
			an.nullable[p.LHS] = true
			changed = true
		}
	}
	return changed
}

// firstPass makes one full pass over the productions of g, growing FIRST of
// each head. It returns whether any set grew.
func (an Analysis) firstPass(g Grammar) bool {
	var changed bool
	for _, p := range g.prods {
		A := p.LHS
		firstA := an.first[A]

		allNullable := true
		for _, X := range p.RHS {
			for t := range an.first[X] {
				if !firstA[t] {
					firstA[t] = true
					changed = true
				}
			}
			if !an.Nullable(X) {
				allNullable = false
				break
			}
		}

		if allNullable && !an.epsilon[A] {
			an.epsilon[A] = true
			changed = true
		}
	}
	return changed
}

// Nullable returns whether sym can derive the empty string. Terminals and
// symbols not in the grammar are never nullable.
func (an Analysis) Nullable(sym string) bool {
	return an.nullable[sym]
}

// First returns FIRST(sym). For a symbol not in the grammar, the returned set
// is empty.
func (an Analysis) First(sym string) FirstSet {
	terms := maps.Keys(an.first[sym])
	slices.Sort(terms)
	return FirstSet{Terminals: terms, Epsilon: an.epsilon[sym]}
}

// FirstOfSequence returns the set of terminals that can begin a string derived
// from beta followed by lookahead. Symbols of beta are scanned left to right
// and FIRST of each is added until one is found that is not nullable; if every
// symbol of beta is nullable, including when beta is empty, lookahead itself
// is added. The result is sorted.
func (an Analysis) FirstOfSequence(beta []string, lookahead string) []string {
	result := map[string]bool{}

	allNullable := true
	for _, X := range beta {
		for t := range an.first[X] {
			result[t] = true
		}
		if !an.Nullable(X) {
			allNullable = false
			break
		}
	}
	if allNullable {
		result[lookahead] = true
	}

	terms := maps.Keys(result)
	slices.Sort(terms)
	return terms
}

// Describe gives a listing of nullable and FIRST for every non-terminal of g, in
// the order g lists them.
func (an Analysis) Describe(g Grammar) string {
	var sb strings.Builder
	nts := append([]string{g.StartSymbol()}, g.NonTerminals()...)
	for i, nt := range nts {
		sb.WriteString(fmt.Sprintf("FIRST(%s) = %s", nt, an.First(nt).String()))
		if an.Nullable(nt) {
			sb.WriteString(" (nullable)")
		}
		if i+1 < len(nts) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
