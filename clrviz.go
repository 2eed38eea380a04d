// Package clrviz builds canonical LR(1) parsing tables from a context-free
// grammar and runs a table-driven parser over token input, recording every
// step so that the parse can be shown one action at a time.
//
// Build loads and analyzes a grammar and returns its tables; Parse steps a
// token sequence through them. Tables are immutable once built and may be
// shared by any number of concurrent calls to Parse.
//
// This package also contains an Engine that runs an interactive shell over
// the same operations.
package clrviz

import (
	"strings"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/clrviz/internal/parse"
)

// Option configures a call to Build.
type Option func(*parse.Options)

// WithPolicy sets what Build does when the tables have conflicts. The default
// is parse.PolicyResolve.
func WithPolicy(p parse.ConflictPolicy) Option {
	return func(o *parse.Options) {
		o.Policy = p
	}
}

// Build loads rules of the form "LHS -> s1 s2 ..." and computes their
// canonical LR(1) tables. The head of the first rule is the start symbol.
//
// A malformed rule gives an error matching grammar.ErrFormat and an empty list
// of rules one matching grammar.ErrUndefinedStart. Conflicts are recorded in
// the returned tables, unless the chosen policy refuses them, in which case
// the error matches parse.ErrTableConflict.
func Build(rules []string, opts ...Option) (*parse.Tables, error) {
	var o parse.Options
	for _, opt := range opts {
		opt(&o)
	}

	g, err := grammar.Parse(rules)
	if err != nil {
		return nil, err
	}

	return parse.Build(g, o)
}

// Parse runs the tables over tokens and returns the trace of every step. A
// rejected input is not an error; it is a trace whose last step is an error
// entry. The error is non-nil only if the tables are internally inconsistent.
func Parse(t *parse.Tables, tokens []string) (parse.Trace, error) {
	return parse.Parse(t, tokens)
}

// SplitRules splits newline-delimited grammar text into rules, trimming each
// and dropping blank lines.
func SplitRules(text string) []string {
	var rules []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rules = append(rules, line)
		}
	}
	return rules
}

// Tokenize splits input text into tokens on whitespace.
func Tokenize(input string) []string {
	return strings.Fields(input)
}
