package parse

import (
	"errors"
	"fmt"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/clrviz/internal/util"
)

var (
	// ErrInternalTableInconsistency is returned when a reduce finds no GOTO
	// entry for the state it uncovers. A table built by Build never causes
	// it.
	ErrInternalTableInconsistency = errors.New("internal table inconsistency")

	// ErrParseComplete is returned by Step once the parse has accepted, been
	// rejected, or stopped on an inconsistency.
	ErrParseComplete = errors.New("parse is already complete")
)

// Stepper runs the LR parsing algorithm over a token sequence one action at a
// time. It only reads its Tables; the state stack, input cursor and trace all
// belong to the Stepper. A Stepper must not be used from more than one
// goroutine at a time, but any number of Steppers may share one *Tables.
type Stepper struct {
	t     *Tables
	stack util.Stack[int]
	input []string
	pos   int
	trace Trace
	done  bool
	fatal error

	// stacks reduced from since the last shift
	reducedFrom map[string]bool

	listener func(s string)
}

// NewStepper creates a Stepper that parses tokens against t. The end marker
// is appended to tokens.
func NewStepper(t *Tables, tokens []string) *Stepper {
	input := make([]string, len(tokens), len(tokens)+1)
	copy(input, tokens)
	input = append(input, grammar.EndMarker)

	return &Stepper{
		t:     t,
		stack: util.Stack[int]{Of: []int{t.Initial()}},
		input: input,

		reducedFrom: map[string]bool{},
	}
}

// RegisterTraceListener sets a function to be called with a description of
// every stack operation and action the stepper performs. Pass nil to remove
// it.
func (sp *Stepper) RegisterTraceListener(listener func(s string)) {
	sp.listener = listener
}

// Done returns whether the parse has finished.
func (sp *Stepper) Done() bool {
	return sp.done
}

// Trace returns the steps taken so far.
func (sp *Stepper) Trace() Trace {
	tr := Trace{Accepted: sp.trace.Accepted, Steps: make([]TraceStep, len(sp.trace.Steps))}
	for i := range sp.trace.Steps {
		tr.Steps[i] = sp.trace.Steps[i].clone()
	}
	return tr
}

// Step performs one action of the parse and returns its record.
//
// This is one iteration of Algorithm 4.44, "LR-parsing algorithm", from the
// purple dragon book. A missing ACTION entry is recorded as an error step and
// ends the parse without returning an error, as does a reduce from a stack
// that was already reduced from since the last shift, since that parse would
// never consume another token. A reduce that finds no GOTO entry returns an
// error matching ErrInternalTableInconsistency and ends the parse.
func (sp *Stepper) Step() (TraceStep, error) {
	if sp.done {
		return TraceStep{}, ErrParseComplete
	}

	// let s be the state on top of the stack
	s := sp.stack.Peek()
	sp.notifyStatePeek(s)

	// let a be the current input symbol
	a := sp.input[sp.pos]
	sp.notifyTrace("Next token: %s", a)

	step := TraceStep{
		Number: len(sp.trace.Steps) + 1,
		Stack:  sp.stack.Snapshot(),
		Input:  append([]string(nil), sp.input[sp.pos:]...),
	}

	candidates := sp.t.Action(s, a)
	if len(candidates) == 0 {
		step.Action = StepAction{
			Type:     ActionError,
			Message:  fmt.Sprintf("no action for state %d and token %s", s, a),
			Expected: sp.t.Expected(s),
		}
		sp.notifyTrace("Action: %s", step.Action.Type)
		sp.finish(step, false)
		return step.clone(), nil
	}

	// cells are kept in order of preference
	act := candidates[0]
	if len(candidates) > 1 {
		step.Resolved = &Resolution{Candidates: candidates, Chosen: act}
		sp.notifyTrace("Resolved conflict: %s", step.Resolved)
	}

	if act.Type == ActionReduce {
		key := fmt.Sprint(sp.stack.Of)
		if sp.reducedFrom[key] {
			step.Action = StepAction{
				Type:    ActionError,
				Message: fmt.Sprintf("reduce cycle in state %d on token %s", s, a),
			}
			sp.notifyTrace("Action: %s", step.Action.Type)
			sp.finish(step, false)
			return step.clone(), nil
		}
		sp.reducedFrom[key] = true
	}
	sp.notifyTrace("Action: %s", act.Type)

	switch act.Type {
	case ActionShift:
		sp.stack.Push(act.State)
		sp.notifyStatePush(act.State)
		sp.pos++
		sp.reducedFrom = map[string]bool{}
		step.Action = StepAction{Type: ActionShift, State: act.State}
	case ActionReduce:
		p := sp.t.g.Production(act.Production)
		step.Action = StepAction{Type: ActionReduce, Production: p.Index, Rule: p.String()}

		// pop |β| symbols off the stack
		if sp.stack.Len() <= len(p.RHS) {
			return TraceStep{}, sp.fail(fmt.Errorf("%w: reducing by %s would empty the state stack", ErrInternalTableInconsistency, p))
		}
		for range p.RHS {
			sp.stack.Pop()
			sp.notifyStatePop()
		}

		// let state t now be on top of the stack; push GOTO[t, A]
		top := sp.stack.Peek()
		sp.notifyStatePeek(top)
		to, ok := sp.t.Goto(top, p.LHS)
		if !ok {
			return TraceStep{}, sp.fail(fmt.Errorf("%w: no GOTO entry for state %d on %s after reducing by %s", ErrInternalTableInconsistency, top, p.LHS, p))
		}
		sp.stack.Push(to)
		sp.notifyStatePush(to)
	case ActionAccept:
		step.Action = StepAction{Type: ActionAccept}
		sp.finish(step, true)
		return step.clone(), nil
	}

	sp.trace.Steps = append(sp.trace.Steps, step)
	return step.clone(), nil
}

func (sp *Stepper) finish(step TraceStep, accepted bool) {
	sp.trace.Steps = append(sp.trace.Steps, step)
	sp.trace.Accepted = accepted
	sp.done = true
}

func (sp *Stepper) fail(err error) error {
	sp.done = true
	sp.fatal = err
	return err
}

// Run steps until the parse is done and returns the complete trace. If the
// stepper already stopped on an inconsistency, that error is returned again.
func (sp *Stepper) Run() (Trace, error) {
	for !sp.done {
		if _, err := sp.Step(); err != nil {
			return sp.Trace(), err
		}
	}
	return sp.Trace(), sp.fatal
}

// Parse runs a new Stepper over tokens to completion. The returned error is
// non-nil only if the tables are inconsistent; a rejected input is a Trace
// whose last step is an error.
func Parse(t *Tables, tokens []string) (Trace, error) {
	return NewStepper(t, tokens).Run()
}

func (sp *Stepper) notifyTrace(fmtStr string, args ...interface{}) {
	if sp.listener != nil {
		sp.listener(fmt.Sprintf(fmtStr, args...))
	}
}

func (sp *Stepper) notifyStatePeek(s int) {
	sp.notifyTrace("states.peek(): %d", s)
}

func (sp *Stepper) notifyStatePush(s int) {
	sp.notifyTrace("states.push(): %d", s)
}

func (sp *Stepper) notifyStatePop() {
	sp.notifyTrace("states.pop()")
}
