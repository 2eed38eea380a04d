package grammar

import (
	"fmt"
	"strings"
)

// Item is an LR(1) item: a production with a dot marking how much of its body
// has been seen, and a single lookahead terminal. It is a small comparable
// value so it can be used directly as a map key or set element.
type Item struct {
	Production int
	Dot        int
	Lookahead  string
}

// InitialItem returns the item [S' -> . S, $] that the canonical collection
// starts from.
func InitialItem() Item {
	return Item{Production: 0, Dot: 0, Lookahead: EndMarker}
}

// Advance returns the item with the dot moved one symbol to the right. It does
// not check whether that is past the end of the body.
func (it Item) Advance() Item {
	return Item{Production: it.Production, Dot: it.Dot + 1, Lookahead: it.Lookahead}
}

// String shows the raw item as "(prod, dot, lookahead)". Use
// Grammar.ItemString to show it against its production.
func (it Item) String() string {
	return fmt.Sprintf("(%d, %d, %s)", it.Production, it.Dot, it.Lookahead)
}

// CompareItems is a total order over items: by production index, then dot
// position, then lookahead. It returns a negative number if a < b, 0 if they
// are equal, and a positive number if a > b.
func CompareItems(a, b Item) int {
	if a.Production != b.Production {
		return a.Production - b.Production
	}
	if a.Dot != b.Dot {
		return a.Dot - b.Dot
	}
	return strings.Compare(a.Lookahead, b.Lookahead)
}

// NextSymbol returns the symbol immediately after the dot of it, and whether
// there is one.
func (g Grammar) NextSymbol(it Item) (string, bool) {
	return g.SymbolAt(it.Production, it.Dot)
}

// IsComplete returns whether the dot of it is at the end of its production.
func (g Grammar) IsComplete(it Item) bool {
	return it.Dot >= len(g.prods[it.Production].RHS)
}

// Beta returns the part of the body of it's production after the symbol that
// follows the dot; for [A -> α . B β, a] it is β.
func (g Grammar) Beta(it Item) []string {
	body := g.rhs(it.Production)
	if it.Dot+1 >= len(body) {
		return nil
	}
	return body[it.Dot+1:]
}

// ItemString shows it against its production in the form
// "[A -> α . β, a]".
func (g Grammar) ItemString(it Item) string {
	p := g.prods[it.Production]

	left := strings.Join(p.RHS[:it.Dot], " ")
	right := strings.Join(p.RHS[it.Dot:], " ")
	if len(left) > 0 {
		left = left + " "
	}
	if len(right) > 0 {
		right = " " + right
	}

	return fmt.Sprintf("[%s %s %s.%s, %s]", p.LHS, Arrow, left, right, it.Lookahead)
}

// ParseItem reads an item in the form shown by ItemString, with or without the
// enclosing brackets, and finds the production of g it refers to.
func (g Grammar) ParseItem(s string) (Item, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	sep := strings.LastIndex(s, ",")
	if sep == -1 {
		return Item{}, fmt.Errorf("not an item of form 'A -> α . β, a': %q", s)
	}
	body := s[:sep]
	la := strings.TrimSpace(s[sep+1:])
	if la == "" {
		return Item{}, fmt.Errorf("item has empty lookahead")
	}

	head, rest, found := strings.Cut(body, Arrow)
	if !found {
		return Item{}, fmt.Errorf("not an item of form 'A -> α . β, a': %q", s)
	}
	head = strings.TrimSpace(head)

	var rhs []string
	dot := -1
	for _, f := range strings.Fields(rest) {
		if f == "." {
			if dot != -1 {
				return Item{}, fmt.Errorf("item must have exactly one dot")
			}
			dot = len(rhs)
			continue
		}
		rhs = append(rhs, f)
	}
	if dot == -1 {
		return Item{}, fmt.Errorf("item must have exactly one dot")
	}

	for _, idx := range g.byLHS[head] {
		p := g.prods[idx]
		if len(p.RHS) != len(rhs) {
			continue
		}
		match := true
		for i := range rhs {
			if p.RHS[i] != rhs[i] {
				match = false
				break
			}
		}
		if match {
			return Item{Production: idx, Dot: dot, Lookahead: la}, nil
		}
	}

	return Item{}, fmt.Errorf("no production %s %s %s in grammar", head, Arrow, strings.Join(rhs, " "))
}

// MustParseItem is like ParseItem but panics on error.
func (g Grammar) MustParseItem(s string) Item {
	it, err := g.ParseItem(s)
	if err != nil {
		panic(err.Error())
	}
	return it
}
