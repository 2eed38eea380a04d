// Package grammar holds the context-free grammar model used to build canonical
// LR(1) tables. It loads textual rules, augments them with a synthetic start
// production, and computes the nullable and FIRST sets the item engine needs
// for lookahead generation.
package grammar

import (
	"fmt"
	"strings"
)

const (
	// EndMarker is the terminal appended to every input and used as the
	// lookahead of the initial item.
	EndMarker = "$"

	// Arrow separates the head of a rule from its body.
	Arrow = "->"

	// EpsilonMarker may be given as the sole body symbol of a rule to make
	// the empty production explicit. It is equivalent to an empty body.
	EpsilonMarker = "ε"

	// AugmentedStart is the preferred name of the synthetic start symbol. If a
	// grammar already uses it, primes are added until it is unique.
	AugmentedStart = "S'"
)

// Production is a single rule of a grammar, A -> X1 X2 ... Xn. Its Index is its
// position within the augmented grammar; index 0 is always the synthetic start
// production.
type Production struct {
	Index int
	LHS   string
	RHS   []string
}

// IsEpsilon returns whether the production derives the empty string directly.
func (p Production) IsEpsilon() bool {
	return len(p.RHS) == 0
}

// String shows the production as "A -> X Y Z", or "A -> ε" for an epsilon
// production.
func (p Production) String() string {
	if len(p.RHS) == 0 {
		return p.LHS + " " + Arrow + " " + EpsilonMarker
	}
	return p.LHS + " " + Arrow + " " + strings.Join(p.RHS, " ")
}

// Equal returns whether two productions have the same index, head and body.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if p.Index != other.Index || p.LHS != other.LHS || len(p.RHS) != len(other.RHS) {
		return false
	}
	for i := range p.RHS {
		if p.RHS[i] != other.RHS[i] {
			return false
		}
	}
	return true
}

// Grammar is an augmented context-free grammar. It is immutable once created;
// accessor methods that return slices return copies.
//
// The zero value is not a usable Grammar; create one with Parse or
// FromProductions.
type Grammar struct {
	prods    []Production
	start    string
	nonTerms []string
	terms    []string
	symbols  []string

	ntSet   map[string]bool
	termSet map[string]bool
	byLHS   map[string][]int
}

// Parse loads a grammar from an ordered list of rules of the form
// "LHS -> s1 s2 ...". The head of the first rule becomes the start symbol.
//
// A rule without the arrow, or whose head is empty or more than one symbol,
// results in a *FormatError. An empty list of rules results in an
// *UndefinedStartSymbolError.
func Parse(rules []string) (Grammar, error) {
	if len(rules) == 0 {
		return Grammar{}, &UndefinedStartSymbolError{}
	}

	var userProds []Production
	for i, r := range rules {
		head, body, found := strings.Cut(r, Arrow)
		if !found {
			return Grammar{}, &FormatError{Rule: r, Index: i, Reason: fmt.Sprintf("missing %q separator", Arrow)}
		}

		lhsFields := strings.Fields(head)
		if len(lhsFields) == 0 {
			return Grammar{}, &FormatError{Rule: r, Index: i, Reason: "empty left-hand side"}
		}
		if len(lhsFields) > 1 {
			return Grammar{}, &FormatError{Rule: r, Index: i, Reason: fmt.Sprintf("left-hand side must be a single symbol but got %d", len(lhsFields))}
		}

		rhs := strings.Fields(body)
		if len(rhs) == 1 && rhs[0] == EpsilonMarker {
			rhs = nil
		}

		userProds = append(userProds, Production{LHS: lhsFields[0], RHS: rhs})
	}

	return augment(userProds), nil
}

// MustParse is like Parse but panics if the rules cannot be loaded. It is
// intended for fixed grammars in tests and examples.
func MustParse(rules ...string) Grammar {
	g, err := Parse(rules)
	if err != nil {
		panic(err.Error())
	}
	return g
}

// FromProductions rebuilds an augmented grammar from a previously produced
// production list, such as one that was persisted. prods[0] must be the
// augmented start production.
func FromProductions(prods []Production) (Grammar, error) {
	if len(prods) == 0 {
		return Grammar{}, &UndefinedStartSymbolError{}
	}
	if len(prods[0].RHS) != 1 {
		return Grammar{}, fmt.Errorf("production 0 must have exactly one body symbol but has %d", len(prods[0].RHS))
	}

	copied := make([]Production, len(prods))
	for i := range prods {
		copied[i] = Production{Index: i, LHS: prods[i].LHS, RHS: copyStrings(prods[i].RHS)}
	}

	return index(copied), nil
}

func augment(userProds []Production) Grammar {
	used := map[string]bool{}
	for _, p := range userProds {
		used[p.LHS] = true
		for _, sym := range p.RHS {
			used[sym] = true
		}
	}

	startName := AugmentedStart
	for used[startName] {
		startName += "'"
	}

	prods := make([]Production, 0, len(userProds)+1)
	prods = append(prods, Production{LHS: startName, RHS: []string{userProds[0].LHS}})
	prods = append(prods, userProds...)
	for i := range prods {
		prods[i].Index = i
	}

	return index(prods)
}

// index fills in every derived lookup for an augmented production list.
func index(prods []Production) Grammar {
	g := Grammar{
		prods:   prods,
		start:   prods[0].LHS,
		ntSet:   map[string]bool{},
		termSet: map[string]bool{},
		byLHS:   map[string][]int{},
	}

	for _, p := range prods {
		g.byLHS[p.LHS] = append(g.byLHS[p.LHS], p.Index)
		if p.Index == 0 {
			continue
		}
		if !g.ntSet[p.LHS] {
			g.ntSet[p.LHS] = true
			g.nonTerms = append(g.nonTerms, p.LHS)
		}
	}

	seen := map[string]bool{}
	for _, p := range prods {
		for _, sym := range p.RHS {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			if sym != EndMarker {
				g.symbols = append(g.symbols, sym)
			}
			if !g.ntSet[sym] && sym != EndMarker {
				g.termSet[sym] = true
				g.terms = append(g.terms, sym)
			}
		}
	}
	g.termSet[EndMarker] = true
	g.terms = append(g.terms, EndMarker)

	return g
}

// StartSymbol returns the synthetic start symbol S'.
func (g Grammar) StartSymbol() string {
	return g.start
}

// OriginalStart returns the start symbol of the grammar before augmentation,
// which is the head of the first rule.
func (g Grammar) OriginalStart() string {
	return g.prods[0].RHS[0]
}

// Productions returns every production of the augmented grammar in index
// order.
func (g Grammar) Productions() []Production {
	out := make([]Production, len(g.prods))
	for i := range g.prods {
		out[i] = Production{Index: g.prods[i].Index, LHS: g.prods[i].LHS, RHS: copyStrings(g.prods[i].RHS)}
	}
	return out
}

// Production returns the production with the given index. It panics if idx is
// out of range.
func (g Grammar) Production(idx int) Production {
	p := g.prods[idx]
	return Production{Index: p.Index, LHS: p.LHS, RHS: copyStrings(p.RHS)}
}

// NumProductions is the number of productions including production 0.
func (g Grammar) NumProductions() int {
	return len(g.prods)
}

// ProductionsFor returns the indexes of all productions with the given head,
// in ascending order.
func (g Grammar) ProductionsFor(nt string) []int {
	return append([]int(nil), g.byLHS[nt]...)
}

// rhs gives direct read access to a production body for the hot paths in this
// package and the item engine.
func (g Grammar) rhs(idx int) []string {
	return g.prods[idx].RHS
}

// RHSLen returns the length of the body of production idx.
func (g Grammar) RHSLen(idx int) int {
	return len(g.prods[idx].RHS)
}

// SymbolAt returns the symbol at position pos of the body of production idx,
// and whether there is one there.
func (g Grammar) SymbolAt(idx, pos int) (string, bool) {
	body := g.prods[idx].RHS
	if pos < 0 || pos >= len(body) {
		return "", false
	}
	return body[pos], true
}

// NonTerminals returns every head symbol of the user's rules in order of first
// appearance. The synthetic start symbol is not included.
func (g Grammar) NonTerminals() []string {
	return copyStrings(g.nonTerms)
}

// Terminals returns every terminal in order of first appearance, with the end
// marker last.
func (g Grammar) Terminals() []string {
	return copyStrings(g.terms)
}

// Symbols returns the edge-label order for automaton construction: every
// symbol that occurs in some production body, in order of first occurrence,
// excluding the end marker.
func (g Grammar) Symbols() []string {
	return copyStrings(g.symbols)
}

// IsNonTerminal returns whether sym is a non-terminal, including the
// synthetic start symbol.
func (g Grammar) IsNonTerminal(sym string) bool {
	return sym == g.start || g.ntSet[sym]
}

// IsTerminal returns whether sym is a terminal of the grammar. The end marker
// is a terminal.
func (g Grammar) IsTerminal(sym string) bool {
	return g.termSet[sym]
}

// Rules gives the user rules of the grammar (all productions except 0) in the
// textual form accepted by Parse.
func (g Grammar) Rules() []string {
	rules := make([]string, 0, len(g.prods)-1)
	for _, p := range g.prods[1:] {
		rules = append(rules, strings.TrimRight(p.LHS+" "+Arrow+" "+strings.Join(p.RHS, " "), " "))
	}
	return rules
}

// String shows every production with its index, one per line.
func (g Grammar) String() string {
	var sb strings.Builder
	for i, p := range g.prods {
		sb.WriteString(fmt.Sprintf("%d: %s", p.Index, p.String()))
		if i+1 < len(g.prods) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func copyStrings(sl []string) []string {
	if sl == nil {
		return nil
	}
	out := make([]string, len(sl))
	copy(out, sl)
	return out
}
