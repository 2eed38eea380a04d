package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/clrviz/internal/grammar"
)

// State is one state of the canonical LR(1) automaton: a closed set of items
// identified by the order in which it was discovered.
type State struct {
	ID    int
	Items ItemSet
}

// Transition is an edge of the automaton, from one state to another on a
// grammar symbol.
type Transition struct {
	From   int
	Symbol string
	To     int
}

func (t Transition) String() string {
	return fmt.Sprintf("%d =(%s)=> %d", t.From, t.Symbol, t.To)
}

// Collection is the canonical collection of sets of LR(1) items for a grammar
// along with the goto transitions between them. State 0 is always the initial
// state. A Collection is not modified after it is built.
type Collection struct {
	g       grammar.Grammar
	states  []State
	byKey   map[string]int
	trans   []map[string]int
	symbols []string
}

// Build constructs the canonical collection of LR(1) item sets for g.
//
// The initial state is CLOSURE({[S' -> . S, $]}). States are expanded in the
// order they are discovered; for each, GOTO is taken on every symbol in the
// order given by g.Symbols(). A non-empty result that has the same content as
// an existing state is that state; otherwise it becomes a new state and is
// queued for expansion. The transition is recorded in either case.
func Build(g grammar.Grammar, an grammar.Analysis) *Collection {
	e := NewItemEngine(g, an)

	c := &Collection{
		g:       g,
		byKey:   map[string]int{},
		symbols: g.Symbols(),
	}

	initial := e.Closure(NewItemSet(grammar.InitialItem()))
	c.addState(initial)

	for queue := []int{0}; len(queue) > 0; {
		cur := queue[0]
		queue = queue[1:]

		I := c.states[cur].Items
		for _, X := range c.symbols {
			J := e.Goto(I, X)
			if J.Empty() {
				continue
			}

			target, exists := c.byKey[J.Key()]
			if !exists {
				target = c.addState(J)
				queue = append(queue, target)
			}
			c.trans[cur][X] = target
		}
	}

	return c
}

// FromParts rebuilds a Collection from its states and transitions, such as
// ones that were persisted. states[i] becomes state i. It returns an error if
// two states have the same content or a transition refers to a state or
// symbol that does not exist.
func FromParts(g grammar.Grammar, states []ItemSet, transitions []Transition) (*Collection, error) {
	c := &Collection{
		g:       g,
		byKey:   map[string]int{},
		symbols: g.Symbols(),
	}

	for i := range states {
		if _, dup := c.byKey[states[i].Key()]; dup {
			return nil, fmt.Errorf("state %d duplicates an earlier state", i)
		}
		c.addState(states[i])
	}

	knownSymbols := map[string]bool{}
	for _, sym := range c.symbols {
		knownSymbols[sym] = true
	}

	for _, t := range transitions {
		if t.From < 0 || t.From >= len(c.states) || t.To < 0 || t.To >= len(c.states) {
			return nil, fmt.Errorf("transition %s refers to non-existent state", t)
		}
		if !knownSymbols[t.Symbol] {
			return nil, fmt.Errorf("transition %s is on unknown symbol %q", t, t.Symbol)
		}
		c.trans[t.From][t.Symbol] = t.To
	}

	return c, nil
}

func (c *Collection) addState(items ItemSet) int {
	id := len(c.states)
	c.states = append(c.states, State{ID: id, Items: items})
	c.byKey[items.Key()] = id
	c.trans = append(c.trans, map[string]int{})
	return id
}

// Grammar returns the augmented grammar the collection was built for.
func (c *Collection) Grammar() grammar.Grammar {
	return c.g
}

// Initial returns the ID of the initial state, which is always 0.
func (c *Collection) Initial() int {
	return 0
}

// Len returns the number of states.
func (c *Collection) Len() int {
	return len(c.states)
}

// States returns every state in ID order.
func (c *Collection) States() []State {
	out := make([]State, len(c.states))
	copy(out, c.states)
	return out
}

// State returns the state with the given ID. It panics if there is no such
// state.
func (c *Collection) State(id int) State {
	return c.states[id]
}

// Next returns the state reached from state from on symbol sym, and whether
// there is such a transition.
func (c *Collection) Next(from int, sym string) (int, bool) {
	if from < 0 || from >= len(c.trans) {
		return 0, false
	}
	to, ok := c.trans[from][sym]
	return to, ok
}

// Transitions returns every transition out of state from, in symbol order.
func (c *Collection) Transitions(from int) []Transition {
	var out []Transition
	for _, sym := range c.symbols {
		if to, ok := c.trans[from][sym]; ok {
			out = append(out, Transition{From: from, Symbol: sym, To: to})
		}
	}
	return out
}

// AllTransitions returns every transition of the automaton ordered by source
// state and then by symbol order.
func (c *Collection) AllTransitions() []Transition {
	var out []Transition
	for i := range c.states {
		out = append(out, c.Transitions(i)...)
	}
	return out
}

// Find returns the ID of the state whose items are exactly those of items,
// and whether there is one.
func (c *Collection) Find(items ItemSet) (int, bool) {
	id, ok := c.byKey[items.Key()]
	return id, ok
}

// Keys returns the content key of every state, sorted. Two collections hold
// the same states, regardless of the IDs assigned to them, if and only if
// their Keys are equal.
func (c *Collection) Keys() []string {
	keys := make([]string, len(c.states))
	for i := range c.states {
		keys[i] = c.states[i].Items.Key()
	}
	sort.Strings(keys)
	return keys
}

// IsAccepting returns whether state id contains [S' -> S ., $].
func (c *Collection) IsAccepting(id int) bool {
	return c.states[id].Items.Has(grammar.InitialItem().Advance())
}

// String shows every state with its items and its outgoing transitions.
func (c *Collection) String() string {
	var sb strings.Builder

	for i, st := range c.states {
		sb.WriteString(fmt.Sprintf("I%d:", st.ID))
		for _, it := range st.Items.Items() {
			sb.WriteString("\n\t")
			sb.WriteString(c.g.ItemString(it))
		}
		for _, t := range c.Transitions(st.ID) {
			sb.WriteString("\n\t")
			sb.WriteString(fmt.Sprintf("=(%s)=> I%d", t.Symbol, t.To))
		}
		if i+1 < len(c.states) {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}
