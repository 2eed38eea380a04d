package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// tableWidth is the width hint given to rosed for table layout. Tables grow
// past it as needed.
const tableWidth = 10

// String renders the ACTION and GOTO tables as a grid. Each row is a state;
// ACTION columns are headed "A:t" and GOTO columns "G:A". Cells hold "sN",
// "rN" or "acc", with every entry of a conflicting cell joined by "/". If two
// Tables produce the same String they have the same entries.
func (t *Tables) String() string {
	terms := t.g.Terminals()
	nonTerms := t.g.NonTerminals()

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, a := range terms {
		headers = append(headers, fmt.Sprintf("A:%s", a))
	}
	headers = append(headers, "|")
	for _, nt := range nonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for i := 0; i < t.NumStates(); i++ {
		row := []string{fmt.Sprintf("%d", i), "|"}

		for _, a := range terms {
			row = append(row, cellString(t.Action(i, a)))
		}

		row = append(row, "|")

		for _, nt := range nonTerms {
			cell := ""
			if to, ok := t.Goto(i, nt); ok {
				cell = fmt.Sprintf("%d", to)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, tableWidth, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// ProductionsString lists the productions of the augmented grammar with the
// index that "rN" cells refer to.
func (t *Tables) ProductionsString() string {
	return t.g.String()
}

// StatesString lists the items of every state along with its transitions.
func (t *Tables) StatesString() string {
	return t.lr1.String()
}

// ConflictsString lists every conflict one per line, or "(none)" if the table
// has none.
func (t *Tables) ConflictsString() string {
	if len(t.conflicts) == 0 {
		return "(none)"
	}

	lines := make([]string, len(t.conflicts))
	for i := range t.conflicts {
		lines[i] = t.describeConflict(t.conflicts[i])
	}
	return strings.Join(lines, "\n")
}

func (t *Tables) describeConflict(c Conflict) string {
	var sb strings.Builder
	sb.WriteString(c.String())
	for _, e := range c.Entries {
		sb.WriteString("\n\t")
		switch e.Type {
		case ActionShift:
			sb.WriteString(fmt.Sprintf("shift %q and go to state %d", c.Terminal, e.State))
		case ActionReduce:
			sb.WriteString(fmt.Sprintf("reduce by %d: %s", e.Production, t.g.Production(e.Production).String()))
		case ActionAccept:
			sb.WriteString("accept")
		}
	}
	return sb.String()
}
