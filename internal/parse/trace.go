package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/clrviz/internal/util"
	"github.com/dekarrin/rosed"
)

// StepAction is the action a stepper took in a single step.
type StepAction struct {
	Type ActionType

	// State is the state shifted to. Used only for ActionShift.
	State int

	// Production is the index of the production reduced by, and Rule is its
	// text. Used only for ActionReduce.
	Production int
	Rule       string

	// Message describes why the parse was rejected, and Expected lists the
	// tokens that would have had an action. Used only for ActionError.
	Message  string
	Expected []string
}

func (sa StepAction) String() string {
	switch sa.Type {
	case ActionShift:
		return fmt.Sprintf("shift %d", sa.State)
	case ActionReduce:
		return fmt.Sprintf("reduce %s", sa.Rule)
	case ActionAccept:
		return "accept"
	case ActionError:
		if len(sa.Expected) > 0 {
			return fmt.Sprintf("error: %s; expected %s", sa.Message, util.MakeTextList(sa.Expected, "or", true))
		}
		return "error: " + sa.Message
	default:
		return "unknown"
	}
}

// Resolution records how a conflicting cell was settled during a step.
type Resolution struct {
	Candidates []Action
	Chosen     Action
}

func (r Resolution) String() string {
	return fmt.Sprintf("conflict %s resolved as %s", cellString(r.Candidates), r.Chosen.Short())
}

// TraceStep is one step of a parse. Stack and Input are copies of the state
// stack and the unread input (including the end marker) as they were before
// Action was applied.
type TraceStep struct {
	Number   int
	Stack    []int
	Input    []string
	Action   StepAction
	Resolved *Resolution
}

func (ts TraceStep) clone() TraceStep {
	c := ts
	c.Stack = append([]int(nil), ts.Stack...)
	c.Input = append([]string(nil), ts.Input...)
	c.Action.Expected = append([]string(nil), ts.Action.Expected...)
	if ts.Resolved != nil {
		c.Resolved = &Resolution{
			Candidates: append([]Action(nil), ts.Resolved.Candidates...),
			Chosen:     ts.Resolved.Chosen,
		}
	}
	return c
}

// Trace is the ordered record of every step of a parse.
type Trace struct {
	Steps    []TraceStep
	Accepted bool
}

// Rejected returns whether the parse ended on an error entry.
func (tr Trace) Rejected() bool {
	return len(tr.Steps) > 0 && tr.Steps[len(tr.Steps)-1].Action.Type == ActionError
}

// Reductions returns the index of every production reduced by, in the order
// the reductions happened. For an accepted input this is the reverse of a
// rightmost derivation.
func (tr Trace) Reductions() []int {
	var prods []int
	for _, st := range tr.Steps {
		if st.Action.Type == ActionReduce {
			prods = append(prods, st.Action.Production)
		}
	}
	return prods
}

// String renders the trace as a table of steps.
func (tr Trace) String() string {
	data := [][]string{{"Step", "Stack", "Input", "Action"}}

	for _, st := range tr.Steps {
		stackStrs := make([]string, len(st.Stack))
		for i := range st.Stack {
			stackStrs[i] = fmt.Sprintf("%d", st.Stack[i])
		}

		action := st.Action.String()
		if st.Resolved != nil {
			action += " (" + st.Resolved.String() + ")"
		}

		data = append(data, []string{
			fmt.Sprintf("%d", st.Number),
			strings.Join(stackStrs, " "),
			strings.Join(st.Input, " "),
			action,
		})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, tableWidth, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
