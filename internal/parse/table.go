// Package parse derives canonical LR(1) ACTION and GOTO tables from the
// automaton of a grammar and drives a table-driven stepper over token
// sequences, recording every step it takes.
package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/clrviz/internal/automaton"
	"github.com/dekarrin/clrviz/internal/grammar"
)

// ConflictPolicy decides what Build does when the table has conflicts.
type ConflictPolicy int

const (
	// PolicyResolve keeps every conflict in the table and lets the stepper
	// pick: shift over reduce, accept over reduce, and otherwise the lowest
	// production index.
	PolicyResolve ConflictPolicy = iota

	// PolicyRejectReduceReduce refuses tables with a cell holding more than
	// one reduce (or a reduce and accept). Shift/reduce conflicts are kept and
	// resolved as with PolicyResolve.
	PolicyRejectReduceReduce

	// PolicyRejectAll refuses tables with any conflict.
	PolicyRejectAll
)

func (p ConflictPolicy) String() string {
	switch p {
	case PolicyResolve:
		return "resolve"
	case PolicyRejectReduceReduce:
		return "reject-rr"
	case PolicyRejectAll:
		return "reject-all"
	default:
		return fmt.Sprintf("ConflictPolicy(%d)", int(p))
	}
}

// ParseConflictPolicy parses the name of a policy as given by its String
// method. The empty string is PolicyResolve.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resolve":
		return PolicyResolve, nil
	case "reject-rr":
		return PolicyRejectReduceReduce, nil
	case "reject-all":
		return PolicyRejectAll, nil
	default:
		return PolicyResolve, fmt.Errorf("unknown conflict policy %q; must be one of resolve, reject-rr, or reject-all", s)
	}
}

// Options controls table construction.
type Options struct {
	Policy ConflictPolicy
}

// Tables holds the canonical LR(1) ACTION and GOTO tables of a grammar along
// with the automaton they were derived from. Tables are not modified after
// Build returns, so a single *Tables can be read by any number of steppers
// at once.
type Tables struct {
	g         grammar.Grammar
	an        grammar.Analysis
	lr1       *automaton.Collection
	policy    ConflictPolicy
	action    []map[string][]Action
	gotos     []map[string]int
	conflicts []Conflict
}

// Build computes the canonical LR(1) tables for g.
//
// This is an implementation of Algorithm 4.56, "Construction of canonical-LR
// parsing tables", from the purple dragon book, except that every action that
// applies to a cell is kept rather than failing on the first clash. Whether a
// table with conflicts is returned or refused depends on opts.Policy; a
// refusal is a *ConflictError.
func Build(g grammar.Grammar, opts Options) (*Tables, error) {
	an := grammar.Analyze(g)
	lr1 := automaton.Build(g, an)
	return derive(lr1, an, opts.Policy)
}

// derive fills in ACTION and GOTO from an already built automaton.
func derive(lr1 *automaton.Collection, an grammar.Analysis, policy ConflictPolicy) (*Tables, error) {
	g := lr1.Grammar()

	t := &Tables{
		g:      g,
		an:     an,
		lr1:    lr1,
		policy: policy,
		action: make([]map[string][]Action, lr1.Len()),
		gotos:  make([]map[string]int, lr1.Len()),
	}

	for _, st := range lr1.States() {
		i := st.ID
		t.action[i] = map[string][]Action{}
		t.gotos[i] = map[string]int{}

		// (a) If [A -> α.aβ, b] is in Iᵢ and GOTO(Iᵢ, a) = Iⱼ, then set
		// ACTION[i, a] to "shift j." Non-terminal edges are GOTO[i, A] = j.
		for _, tr := range lr1.Transitions(i) {
			if g.IsTerminal(tr.Symbol) {
				t.action[i][tr.Symbol] = insertAction(t.action[i][tr.Symbol], Shift(tr.To))
			} else {
				t.gotos[i][tr.Symbol] = tr.To
			}
		}

		// (b) If [A -> α., a] is in Iᵢ, A != S', then set ACTION[i, a] to
		// "reduce A -> α".
		// (c) If [S' -> S., $] is in Iᵢ, then set ACTION[i, $] to "accept".
		for _, item := range st.Items.Items() {
			if !g.IsComplete(item) {
				continue
			}
			la := item.Lookahead
			if item.Production == 0 {
				if la == grammar.EndMarker {
					t.action[i][la] = insertAction(t.action[i][la], Accept())
				}
				continue
			}
			t.action[i][la] = insertAction(t.action[i][la], Reduce(item.Production))
		}
	}

	terms := g.Terminals()
	for i := range t.action {
		for _, a := range terms {
			if cell := t.action[i][a]; len(cell) > 1 {
				entries := make([]Action, len(cell))
				copy(entries, cell)
				t.conflicts = append(t.conflicts, newConflict(i, a, entries))
			}
		}
	}

	if err := t.checkPolicy(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Tables) checkPolicy() error {
	var refused []Conflict

	for _, c := range t.conflicts {
		switch t.policy {
		case PolicyRejectAll:
			refused = append(refused, c)
		case PolicyRejectReduceReduce:
			if c.hasCompetingReduces() {
				refused = append(refused, c)
			}
		}
	}

	if len(refused) > 0 {
		return &ConflictError{Policy: t.policy, Conflicts: refused}
	}
	return nil
}

// Grammar returns the augmented grammar the tables were built from.
func (t *Tables) Grammar() grammar.Grammar {
	return t.g
}

// Analysis returns the nullable and FIRST sets of the grammar.
func (t *Tables) Analysis() grammar.Analysis {
	return t.an
}

// Automaton returns the canonical collection the tables were derived from.
func (t *Tables) Automaton() *automaton.Collection {
	return t.lr1
}

// Policy returns the conflict policy the tables were built under.
func (t *Tables) Policy() ConflictPolicy {
	return t.policy
}

// Initial returns the state a parse starts in.
func (t *Tables) Initial() int {
	return t.lr1.Initial()
}

// NumStates returns the number of rows in the tables.
func (t *Tables) NumStates() int {
	return len(t.action)
}

// Action returns every action in ACTION[state, terminal] in order of
// preference. An empty result is an error entry.
func (t *Tables) Action(state int, terminal string) []Action {
	if state < 0 || state >= len(t.action) {
		return nil
	}
	cell := t.action[state][terminal]
	if len(cell) == 0 {
		return nil
	}
	out := make([]Action, len(cell))
	copy(out, cell)
	return out
}

// Goto returns GOTO[state, nt] and whether that entry is defined.
func (t *Tables) Goto(state int, nt string) (int, bool) {
	if state < 0 || state >= len(t.gotos) {
		return 0, false
	}
	to, ok := t.gotos[state][nt]
	return to, ok
}

// Conflicts returns every conflicting cell ordered by state and then by
// terminal order.
func (t *Tables) Conflicts() []Conflict {
	out := make([]Conflict, len(t.conflicts))
	copy(out, t.conflicts)
	return out
}

// Expected returns the terminals that have an action in state, in terminal
// order.
func (t *Tables) Expected(state int) []string {
	var expected []string
	for _, a := range t.g.Terminals() {
		if len(t.Action(state, a)) > 0 {
			expected = append(expected, a)
		}
	}
	return expected
}
