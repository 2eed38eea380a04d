// Package automaton builds the canonical collection of LR(1) item sets for a
// grammar. It provides the closure and goto operators over item sets and
// explores them breadth-first to produce deduplicated states and the
// transitions between them.
package automaton

import (
	"strconv"
	"strings"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/emirpasic/gods/sets/treeset"
)

// ItemSet is a set of LR(1) items kept in sorted order. Two ItemSets holding
// the same items are equal no matter the order the items were added in, and
// they produce the same Key.
//
// The zero value is an empty set that can be read from but not added to; use
// NewItemSet to get a set ready for use.
type ItemSet struct {
	set *treeset.Set
}

func itemComparator(a, b interface{}) int {
	return grammar.CompareItems(a.(grammar.Item), b.(grammar.Item))
}

// NewItemSet creates an ItemSet holding the given items.
func NewItemSet(items ...grammar.Item) ItemSet {
	s := ItemSet{set: treeset.NewWith(itemComparator)}
	for i := range items {
		s.set.Add(items[i])
	}
	return s
}

// Add puts the item into the set. It returns whether the item was not already
// present.
func (s ItemSet) Add(it grammar.Item) bool {
	if s.set.Contains(it) {
		return false
	}
	s.set.Add(it)
	return true
}

// Has returns whether the item is in the set.
func (s ItemSet) Has(it grammar.Item) bool {
	if s.set == nil {
		return false
	}
	return s.set.Contains(it)
}

// Len returns the number of items in the set.
func (s ItemSet) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Size()
}

// Empty returns whether the set has no items.
func (s ItemSet) Empty() bool {
	return s.Len() == 0
}

// Items returns the items of the set in sorted order.
func (s ItemSet) Items() []grammar.Item {
	if s.set == nil {
		return nil
	}
	vals := s.set.Values()
	items := make([]grammar.Item, len(vals))
	for i := range vals {
		items[i] = vals[i].(grammar.Item)
	}
	return items
}

// Copy returns a new ItemSet with the same items.
func (s ItemSet) Copy() ItemSet {
	return NewItemSet(s.Items()...)
}

// Key returns a string that uniquely identifies the content of the set. Two
// sets have the same Key if and only if they hold the same items.
func (s ItemSet) Key() string {
	var sb strings.Builder
	for _, it := range s.Items() {
		sb.WriteString(strconv.Itoa(it.Production))
		sb.WriteRune('.')
		sb.WriteString(strconv.Itoa(it.Dot))
		sb.WriteRune('.')
		sb.WriteString(strconv.Quote(it.Lookahead))
		sb.WriteRune(';')
	}
	return sb.String()
}

// Equal returns whether o is an ItemSet (or pointer to one) with the same
// items as s.
func (s ItemSet) Equal(o any) bool {
	other, ok := o.(ItemSet)
	if !ok {
		otherPtr, ok := o.(*ItemSet)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if s.Len() != other.Len() {
		return false
	}
	return s.Key() == other.Key()
}

// String shows the raw items of the set. Use Format to show them against
// their productions.
func (s ItemSet) String() string {
	items := s.Items()
	strs := make([]string, len(items))
	for i := range items {
		strs[i] = items[i].String()
	}
	return "{" + strings.Join(strs, ", ") + "}"
}

// Format shows every item of the set against the productions of g, separated
// by sep.
func (s ItemSet) Format(g grammar.Grammar, sep string) string {
	items := s.Items()
	strs := make([]string, len(items))
	for i := range items {
		strs[i] = g.ItemString(items[i])
	}
	return strings.Join(strs, sep)
}
