package automaton

import (
	"github.com/dekarrin/clrviz/internal/grammar"
)

// ItemEngine applies the LR(1) closure and goto operators for a single
// grammar. It only reads the grammar and its analysis, so one ItemEngine can
// be used from multiple goroutines.
type ItemEngine struct {
	g  grammar.Grammar
	an grammar.Analysis
}

// NewItemEngine creates an ItemEngine for g, whose nullable and FIRST sets
// have already been computed into an.
func NewItemEngine(g grammar.Grammar, an grammar.Analysis) ItemEngine {
	return ItemEngine{g: g, an: an}
}

// Grammar returns the grammar the engine operates on.
func (e ItemEngine) Grammar() grammar.Grammar {
	return e.g
}

// Analysis returns the nullable and FIRST sets the engine uses for lookahead.
func (e ItemEngine) Analysis() grammar.Analysis {
	return e.an
}

// Closure returns CLOSURE(I). I itself is not modified.
//
// For every item [A -> α . B β, a] with non-terminal B, and every production
// B -> γ, the item [B -> . γ, b] is added for each b in FIRST(β a). Full passes
// are made over the set until one adds nothing.
func (e ItemEngine) Closure(I ItemSet) ItemSet {
	J := I.Copy()

	for changed := true; changed; {
		changed = false

		for _, item := range J.Items() {
			B, ok := e.g.NextSymbol(item)
			if !ok || !e.g.IsNonTerminal(B) {
				continue
			}

			lookaheads := e.an.FirstOfSequence(e.g.Beta(item), item.Lookahead)
			for _, p := range e.g.ProductionsFor(B) {
				for _, b := range lookaheads {
					if J.Add(grammar.Item{Production: p, Dot: 0, Lookahead: b}) {
						changed = true
					}
				}
			}
		}
	}

	return J
}

// Goto returns GOTO(I, X): the closure of every item of I with the dot moved
// past X. If no item of I has X after its dot the result is empty, and there
// is no transition from I on X.
func (e ItemEngine) Goto(I ItemSet, X string) ItemSet {
	kernel := NewItemSet()
	for _, item := range I.Items() {
		if next, ok := e.g.NextSymbol(item); ok && next == X {
			kernel.Add(item.Advance())
		}
	}

	if kernel.Empty() {
		return kernel
	}
	return e.Closure(kernel)
}
