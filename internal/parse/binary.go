package parse

import (
	"fmt"

	"github.com/dekarrin/clrviz/internal/automaton"
	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/rezi"
)

// MarshalBinary encodes the tables into bytes. Only the grammar, the conflict
// policy and the automaton are stored; ACTION and GOTO are derived from them
// again on decode.
func (t *Tables) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncInt(int(t.policy))...)

	prods := t.g.Productions()
	data = append(data, rezi.EncInt(len(prods))...)
	for _, p := range prods {
		data = append(data, rezi.EncString(p.LHS)...)
		data = append(data, rezi.EncInt(len(p.RHS))...)
		for _, sym := range p.RHS {
			data = append(data, rezi.EncString(sym)...)
		}
	}

	states := t.lr1.States()
	data = append(data, rezi.EncInt(len(states))...)
	for _, st := range states {
		items := st.Items.Items()
		data = append(data, rezi.EncInt(len(items))...)
		for _, it := range items {
			data = append(data, rezi.EncInt(it.Production)...)
			data = append(data, rezi.EncInt(it.Dot)...)
			data = append(data, rezi.EncString(it.Lookahead)...)
		}
	}

	trans := t.lr1.AllTransitions()
	data = append(data, rezi.EncInt(len(trans))...)
	for _, tr := range trans {
		data = append(data, rezi.EncInt(tr.From)...)
		data = append(data, rezi.EncString(tr.Symbol)...)
		data = append(data, rezi.EncInt(tr.To)...)
	}

	return data, nil
}

// UnmarshalBinary decodes tables from bytes produced by MarshalBinary. The
// stored conflict policy is applied again, so decoding fails with a
// *ConflictError in the same cases Build would.
func (t *Tables) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	var policy int
	if policy, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	data = data[n:]

	var prodCount int
	if prodCount, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("production count: %w", err)
	}
	data = data[n:]
	if err := checkCount(prodCount, data); err != nil {
		return fmt.Errorf("production count: %w", err)
	}

	prods := make([]grammar.Production, prodCount)
	for i := range prods {
		prods[i].Index = i
		if prods[i].LHS, n, err = rezi.DecString(data); err != nil {
			return fmt.Errorf("production %d: head: %w", i, err)
		}
		data = data[n:]

		var rhsLen int
		if rhsLen, n, err = rezi.DecInt(data); err != nil {
			return fmt.Errorf("production %d: body length: %w", i, err)
		}
		data = data[n:]
		if err := checkCount(rhsLen, data); err != nil {
			return fmt.Errorf("production %d: body length: %w", i, err)
		}

		for j := 0; j < rhsLen; j++ {
			var sym string
			if sym, n, err = rezi.DecString(data); err != nil {
				return fmt.Errorf("production %d: body symbol %d: %w", i, j, err)
			}
			data = data[n:]
			prods[i].RHS = append(prods[i].RHS, sym)
		}
	}

	g, err := grammar.FromProductions(prods)
	if err != nil {
		return fmt.Errorf("grammar: %w", err)
	}

	var stateCount int
	if stateCount, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("state count: %w", err)
	}
	data = data[n:]
	if err := checkCount(stateCount, data); err != nil {
		return fmt.Errorf("state count: %w", err)
	}

	states := make([]automaton.ItemSet, stateCount)
	for i := range states {
		var itemCount int
		if itemCount, n, err = rezi.DecInt(data); err != nil {
			return fmt.Errorf("state %d: item count: %w", i, err)
		}
		data = data[n:]
		if err := checkCount(itemCount, data); err != nil {
			return fmt.Errorf("state %d: item count: %w", i, err)
		}

		states[i] = automaton.NewItemSet()
		for j := 0; j < itemCount; j++ {
			var it grammar.Item
			if it.Production, n, err = rezi.DecInt(data); err != nil {
				return fmt.Errorf("state %d: item %d: production: %w", i, j, err)
			}
			data = data[n:]
			if it.Dot, n, err = rezi.DecInt(data); err != nil {
				return fmt.Errorf("state %d: item %d: dot: %w", i, j, err)
			}
			data = data[n:]
			if it.Lookahead, n, err = rezi.DecString(data); err != nil {
				return fmt.Errorf("state %d: item %d: lookahead: %w", i, j, err)
			}
			data = data[n:]

			if it.Production < 0 || it.Production >= g.NumProductions() || it.Dot < 0 || it.Dot > g.RHSLen(it.Production) {
				return fmt.Errorf("state %d: item %d: %s does not fit the grammar", i, j, it)
			}
			states[i].Add(it)
		}
	}

	var transCount int
	if transCount, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("transition count: %w", err)
	}
	data = data[n:]
	if err := checkCount(transCount, data); err != nil {
		return fmt.Errorf("transition count: %w", err)
	}

	trans := make([]automaton.Transition, transCount)
	for i := range trans {
		if trans[i].From, n, err = rezi.DecInt(data); err != nil {
			return fmt.Errorf("transition %d: source: %w", i, err)
		}
		data = data[n:]
		if trans[i].Symbol, n, err = rezi.DecString(data); err != nil {
			return fmt.Errorf("transition %d: symbol: %w", i, err)
		}
		data = data[n:]
		if trans[i].To, n, err = rezi.DecInt(data); err != nil {
			return fmt.Errorf("transition %d: target: %w", i, err)
		}
		data = data[n:]
	}

	lr1, err := automaton.FromParts(g, states, trans)
	if err != nil {
		return fmt.Errorf("automaton: %w", err)
	}

	decoded, err := derive(lr1, grammar.Analyze(g), ConflictPolicy(policy))
	if err != nil {
		return err
	}

	*t = *decoded
	return nil
}

// checkCount makes sure a decoded element count is not negative and could
// fit in what is left of the data. Every element takes at least one byte.
func checkCount(count int, rest []byte) error {
	if count < 0 {
		return fmt.Errorf("must be non-negative but was %d", count)
	}
	if count > len(rest) {
		return fmt.Errorf("%d elements cannot fit in %d remaining bytes", count, len(rest))
	}
	return nil
}
