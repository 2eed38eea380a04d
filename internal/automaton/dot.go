package automaton

import (
	"fmt"
	"io"
	"strings"
)

const dotHeader = `digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`

// WriteDOT writes the automaton to w in Graphviz DOT format. Each state is a
// record node listing its items; the accepting state is shaded.
func (c *Collection) WriteDOT(w io.Writer) error {
	if _, err := io.WriteString(w, dotHeader); err != nil {
		return err
	}

	for _, st := range c.states {
		color := "white"
		if c.IsAccepting(st.ID) {
			color = "lightgray"
		}

		// symbols never hold whitespace, so a newline safely splits the items
		lines := strings.Split(st.Items.Format(c.g, "\n"), "\n")
		for i := range lines {
			lines[i] = escapeRecord(lines[i]) + `\l`
		}
		line := fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n", st.ID, color, st.ID, strings.Join(lines, ""))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	for _, t := range c.AllTransitions() {
		line := fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n", t.From, t.To, escapeRecord(t.Symbol))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "}\n")
	return err
}

// DOT returns the Graphviz DOT rendering of the automaton.
func (c *Collection) DOT() string {
	var sb strings.Builder
	// strings.Builder never fails a write
	_ = c.WriteDOT(&sb)
	return sb.String()
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeRecord escapes the characters that have meaning inside a record label.
// It must be applied before any `\l` line separators are added.
func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}
