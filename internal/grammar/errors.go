package grammar

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by errors.Is for every *FormatError.
	ErrFormat = errors.New("malformed grammar rule")

	// ErrUndefinedStart is matched by errors.Is for every
	// *UndefinedStartSymbolError.
	ErrUndefinedStart = errors.New("grammar has no start symbol")
)

// FormatError is returned when a rule cannot be split into a single head
// symbol and a body.
type FormatError struct {
	// Rule is the text of the offending rule.
	Rule string

	// Index is the 0-based position of the rule in the list that was loaded.
	Index int

	// Reason describes what is wrong with the rule.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rule %d %q: %s", e.Index+1, e.Rule, e.Reason)
}

// Is returns whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// UndefinedStartSymbolError is returned when a grammar is loaded from an empty
// list of rules.
type UndefinedStartSymbolError struct{}

func (e *UndefinedStartSymbolError) Error() string {
	return "no rules given; cannot determine start symbol"
}

// Is returns whether target is ErrUndefinedStart.
func (e *UndefinedStartSymbolError) Is(target error) bool {
	return target == ErrUndefinedStart
}
