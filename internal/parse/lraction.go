package parse

import (
	"fmt"
)

// ActionType is the kind of an entry in the ACTION table.
type ActionType int

const (
	ActionShift ActionType = iota
	ActionReduce
	ActionAccept
	ActionError
)

func (at ActionType) String() string {
	switch at {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	case ActionError:
		return "error"
	default:
		return fmt.Sprintf("ActionType(%d)", int(at))
	}
}

// Action is a single entry of an ACTION table cell.
type Action struct {
	Type ActionType

	// State is the state to shift to. It is used only when Type is
	// ActionShift.
	State int

	// Production is the index of the production to reduce by. It is used only
	// when Type is ActionReduce.
	Production int
}

// Shift returns the action that shifts to state.
func Shift(state int) Action {
	return Action{Type: ActionShift, State: state}
}

// Reduce returns the action that reduces by the production with index prod.
func Reduce(prod int) Action {
	return Action{Type: ActionReduce, Production: prod}
}

// Accept returns the accept action.
func Accept() Action {
	return Action{Type: ActionAccept}
}

// Short gives the compact form used in table cells: "s3", "r2" or "acc".
func (act Action) Short() string {
	switch act.Type {
	case ActionShift:
		return fmt.Sprintf("s%d", act.State)
	case ActionReduce:
		return fmt.Sprintf("r%d", act.Production)
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

func (act Action) String() string {
	switch act.Type {
	case ActionAccept:
		return "ACTION<accept>"
	case ActionError:
		return "ACTION<error>"
	case ActionReduce:
		return fmt.Sprintf("ACTION<reduce %d>", act.Production)
	case ActionShift:
		return fmt.Sprintf("ACTION<shift %d>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

// Equal returns whether o is an Action (or pointer to one) of the same type
// and target.
func (act Action) Equal(o any) bool {
	other, ok := o.(Action)
	if !ok {
		otherPtr, ok := o.(*Action)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return compareActions(act, other) == 0
}

// precedence gives the order in which competing actions are preferred; lower
// wins.
func (act Action) precedence() int {
	switch act.Type {
	case ActionShift:
		return 0
	case ActionAccept:
		return 1
	case ActionReduce:
		return 2
	default:
		return 3
	}
}

// compareActions orders actions by preference: shifts first, then accept,
// then reduces by ascending production index.
func compareActions(a, b Action) int {
	if a.precedence() != b.precedence() {
		return a.precedence() - b.precedence()
	}
	switch a.Type {
	case ActionShift:
		return a.State - b.State
	case ActionReduce:
		return a.Production - b.Production
	default:
		return 0
	}
}

// insertAction adds act to the sorted cell if it is not already present and
// returns the updated cell.
func insertAction(cell []Action, act Action) []Action {
	for i := range cell {
		cmp := compareActions(act, cell[i])
		if cmp == 0 {
			return cell
		}
		if cmp < 0 {
			cell = append(cell, Action{})
			copy(cell[i+1:], cell[i:])
			cell[i] = act
			return cell
		}
	}
	return append(cell, act)
}
