package api

import (
	"time"

	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type InfoModel struct {
	Version struct {
		Server string `json:"server"`
		Clrviz string `json:"clrviz"`
	} `json:"version"`
	DefaultPolicy string `json:"default_policy"`
	Admin         bool   `json:"admin"`
}

type ParseRequest struct {
	Grammar string  `json:"grammar"`
	Input   *string `json:"input,omitempty"`
	Policy  string  `json:"policy,omitempty"`
}

type ParseResponse struct {
	Tables TablesModel `json:"tables"`
	Trace  *TraceModel `json:"trace,omitempty"`
}

type GrammarRequest struct {
	Grammar string `json:"grammar"`
	Policy  string `json:"policy,omitempty"`
}

type TraceRequest struct {
	Input string `json:"input"`
}

type TraceResponse struct {
	Grammar string     `json:"grammar"`
	Trace   TraceModel `json:"trace"`
}

type GrammarModel struct {
	URI       string       `json:"uri"`
	ID        string       `json:"id"`
	Rules     []string     `json:"rules"`
	Policy    string       `json:"policy"`
	States    int          `json:"states"`
	Conflicts int          `json:"conflicts"`
	Created   string       `json:"created"`
	LastUsed  string       `json:"last_used"`
	Tables    *TablesModel `json:"tables,omitempty"`
}

type ProductionModel struct {
	Index int      `json:"index"`
	LHS   string   `json:"lhs"`
	RHS   []string `json:"rhs"`
	Text  string   `json:"text"`
}

type StateModel struct {
	ID          int            `json:"id"`
	Items       []string       `json:"items"`
	Transitions map[string]int `json:"transitions,omitempty"`
}

// ActionModel is one table action. State is set only for shifts and
// Production only for reductions.
type ActionModel struct {
	Type       string `json:"type"`
	State      int    `json:"state,omitempty"`
	Production int    `json:"production,omitempty"`
}

type ConflictModel struct {
	State    int           `json:"state"`
	Terminal string        `json:"terminal"`
	Kind     string        `json:"kind"`
	Entries  []ActionModel `json:"entries"`
	Text     string        `json:"text"`
}

type TablesModel struct {
	Start        string            `json:"start"`
	Productions  []ProductionModel `json:"productions"`
	Terminals    []string          `json:"terminals"`
	NonTerminals []string          `json:"non_terminals"`
	States       []StateModel      `json:"states"`

	// Action and Goto are indexed by state. A cell with more than one action
	// is a conflict, and its first action is the one the parser takes.
	Action []map[string][]ActionModel `json:"action"`
	Goto   []map[string]int           `json:"goto"`

	Conflicts []ConflictModel `json:"conflicts"`
}

type StepModel struct {
	Number   int      `json:"number"`
	Stack    []int    `json:"stack"`
	Input    []string `json:"input"`
	Action   string   `json:"action"`
	Type     string   `json:"type"`
	Expected []string `json:"expected,omitempty"`
	Resolved string   `json:"resolved,omitempty"`
}

type TraceModel struct {
	Accepted   bool        `json:"accepted"`
	Steps      []StepModel `json:"steps"`
	Reductions []int       `json:"reductions"`
}

func actionModel(act parse.Action) ActionModel {
	m := ActionModel{Type: act.Type.String()}
	switch act.Type {
	case parse.ActionShift:
		m.State = act.State
	case parse.ActionReduce:
		m.Production = act.Production
	}
	return m
}

func actionModels(acts []parse.Action) []ActionModel {
	models := make([]ActionModel, len(acts))
	for i := range acts {
		models[i] = actionModel(acts[i])
	}
	return models
}

func tablesModel(t *parse.Tables) TablesModel {
	g := t.Grammar()
	lr1 := t.Automaton()

	m := TablesModel{
		Start:        g.StartSymbol(),
		Terminals:    g.Terminals(),
		NonTerminals: g.NonTerminals(),
		Conflicts:    []ConflictModel{},
	}

	for _, p := range g.Productions() {
		rhs := p.RHS
		if rhs == nil {
			rhs = []string{}
		}
		m.Productions = append(m.Productions, ProductionModel{
			Index: p.Index,
			LHS:   p.LHS,
			RHS:   rhs,
			Text:  p.String(),
		})
	}

	for _, st := range lr1.States() {
		sm := StateModel{ID: st.ID}
		for _, it := range st.Items.Items() {
			sm.Items = append(sm.Items, g.ItemString(it))
		}
		for _, tr := range lr1.Transitions(st.ID) {
			if sm.Transitions == nil {
				sm.Transitions = map[string]int{}
			}
			sm.Transitions[tr.Symbol] = tr.To
		}
		m.States = append(m.States, sm)

		actions := map[string][]ActionModel{}
		for _, term := range g.Terminals() {
			if cell := t.Action(st.ID, term); len(cell) > 0 {
				actions[term] = actionModels(cell)
			}
		}
		m.Action = append(m.Action, actions)

		gotos := map[string]int{}
		for _, nt := range g.NonTerminals() {
			if to, ok := t.Goto(st.ID, nt); ok {
				gotos[nt] = to
			}
		}
		m.Goto = append(m.Goto, gotos)
	}

	for _, c := range t.Conflicts() {
		m.Conflicts = append(m.Conflicts, ConflictModel{
			State:    c.State,
			Terminal: c.Terminal,
			Kind:     c.Kind.String(),
			Entries:  actionModels(c.Entries),
			Text:     c.String(),
		})
	}

	return m
}

func traceModel(tr parse.Trace) TraceModel {
	m := TraceModel{
		Accepted:   tr.Accepted,
		Steps:      make([]StepModel, len(tr.Steps)),
		Reductions: tr.Reductions(),
	}
	if m.Reductions == nil {
		m.Reductions = []int{}
	}

	for i, st := range tr.Steps {
		m.Steps[i] = StepModel{
			Number:   st.Number,
			Stack:    st.Stack,
			Input:    st.Input,
			Action:   st.Action.String(),
			Type:     st.Action.Type.String(),
			Expected: st.Action.Expected,
		}
		if st.Resolved != nil {
			m.Steps[i].Resolved = st.Resolved.String()
		}
	}

	return m
}

func grammarModel(g dao.Grammar) GrammarModel {
	return GrammarModel{
		URI:       PathPrefix + "/grammars/" + g.ID.String(),
		ID:        g.ID.String(),
		Rules:     g.Rules,
		Policy:    g.Policy,
		States:    g.States,
		Conflicts: g.Conflicts,
		Created:   g.Created.Format(time.RFC3339),
		LastUsed:  g.LastUsed.Format(time.RFC3339),
	}
}
