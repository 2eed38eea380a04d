package parse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTableConflict is matched by errors.Is for every build that was refused
// because of table conflicts.
var ErrTableConflict = errors.New("grammar is not LR(1)")

// ConflictKind classifies a conflicting ACTION cell.
type ConflictKind int

const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
	AcceptReduce
)

func (ck ConflictKind) String() string {
	switch ck {
	case ShiftReduce:
		return "shift/reduce"
	case ReduceReduce:
		return "reduce/reduce"
	case AcceptReduce:
		return "accept/reduce"
	default:
		return fmt.Sprintf("ConflictKind(%d)", int(ck))
	}
}

// Conflict is an ACTION cell that holds more than one action. Entries holds
// every competing action in order of preference.
type Conflict struct {
	State    int
	Terminal string
	Kind     ConflictKind
	Entries  []Action
}

func newConflict(state int, term string, entries []Action) Conflict {
	c := Conflict{State: state, Terminal: term, Entries: entries, Kind: ReduceReduce}

	for _, e := range entries {
		if e.Type == ActionShift {
			c.Kind = ShiftReduce
			break
		}
		if e.Type == ActionAccept {
			c.Kind = AcceptReduce
		}
	}

	return c
}

// hasCompetingReduces returns whether more than one of the entries completes
// a production, which is what separates a reduce/reduce style conflict from
// one that shift preference alone settles.
func (c Conflict) hasCompetingReduces() bool {
	count := 0
	for _, e := range c.Entries {
		if e.Type == ActionReduce || e.Type == ActionAccept {
			count++
		}
	}
	return count > 1
}

// Cell gives the entries in table-cell form, such as "s4/r1".
func (c Conflict) Cell() string {
	return cellString(c.Entries)
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s conflict in state %d on %q: %s", c.Kind, c.State, c.Terminal, c.Cell())
}

// ConflictError is returned by Build when the conflict policy refuses a
// grammar whose table has conflicts.
type ConflictError struct {
	Policy    ConflictPolicy
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrTableConflict.Error())
	sb.WriteString(fmt.Sprintf(" under policy %q: ", e.Policy.String()))

	if len(e.Conflicts) == 1 {
		sb.WriteString(e.Conflicts[0].String())
	} else {
		sb.WriteString(fmt.Sprintf("%d conflicts, first is %s", len(e.Conflicts), e.Conflicts[0].String()))
	}

	return sb.String()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrTableConflict
}

func cellString(entries []Action) string {
	strs := make([]string, len(entries))
	for i := range entries {
		strs[i] = entries[i].Short()
	}
	return strings.Join(strs, "/")
}
