package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name          string
		rules         []string
		expectProds   []string
		expectTerms   []string
		expectNTs     []string
		expectSymbols []string
		expectErr     error
	}{
		{
			name:      "no rules",
			rules:     nil,
			expectErr: ErrUndefinedStart,
		},
		{
			name:      "missing arrow",
			rules:     []string{"S -> a", "A b"},
			expectErr: ErrFormat,
		},
		{
			name:      "empty head",
			rules:     []string{" -> a"},
			expectErr: ErrFormat,
		},
		{
			name:      "multi-symbol head",
			rules:     []string{"S T -> a"},
			expectErr: ErrFormat,
		},
		{
			name:  "purple dragon example 4.45",
			rules: []string{"S -> C C", "C -> c C", "C -> d"},
			expectProds: []string{
				"0: S' -> S",
				"1: S -> C C",
				"2: C -> c C",
				"3: C -> d",
			},
			expectTerms:   []string{"c", "d", "$"},
			expectNTs:     []string{"S", "C"},
			expectSymbols: []string{"S", "C", "c", "d"},
		},
		{
			name:  "epsilon by empty body and by marker",
			rules: []string{"S -> A b", "A ->", "A -> ε", "A -> a"},
			expectProds: []string{
				"0: S' -> S",
				"1: S -> A b",
				"2: A -> ε",
				"3: A -> ε",
				"4: A -> a",
			},
			expectTerms:   []string{"b", "a", "$"},
			expectNTs:     []string{"S", "A"},
			expectSymbols: []string{"S", "A", "b", "a"},
		},
		{
			name:  "start symbol name collision",
			rules: []string{"S' -> a S'", "S' -> b"},
			expectProds: []string{
				"0: S'' -> S'",
				"1: S' -> a S'",
				"2: S' -> b",
			},
			expectTerms:   []string{"a", "b", "$"},
			expectNTs:     []string{"S'"},
			expectSymbols: []string{"S'", "a", "b"},
		},
		{
			name:  "extra whitespace is ignored",
			rules: []string{"  E   ->  E +   T  ", "E->T", "T -> id"},
			expectProds: []string{
				"0: S' -> E",
				"1: E -> E + T",
				"2: E -> T",
				"3: T -> id",
			},
			expectTerms:   []string{"+", "id", "$"},
			expectNTs:     []string{"E", "T"},
			expectSymbols: []string{"E", "+", "T", "id"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)

			// execute
			g, err := Parse(tc.rules)

			// assert
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(joinLines(tc.expectProds), g.String())
			assert.Equal(tc.expectTerms, g.Terminals())
			assert.Equal(tc.expectNTs, g.NonTerminals())
			assert.Equal(tc.expectSymbols, g.Symbols())
		})
	}
}

func Test_Parse_FormatErrorDetail(t *testing.T) {
	// setup
	assert := assert.New(t)

	// execute
	_, err := Parse([]string{"S -> a", "S = b"})

	// assert
	var fmtErr *FormatError
	if assert.True(errors.As(err, &fmtErr)) {
		assert.Equal("S = b", fmtErr.Rule)
		assert.Equal(1, fmtErr.Index)
	}
	assert.False(errors.Is(err, ErrUndefinedStart))
}

func Test_Grammar_AugmentedStart(t *testing.T) {
	testCases := []struct {
		name  string
		rules []string
		start string
	}{
		{name: "single rule", rules: []string{"A -> a"}, start: "A"},
		{name: "start is first head, not first non-terminal used", rules: []string{"X -> Y", "Y -> y"}, start: "X"},
		{name: "later heads do not change start", rules: []string{"B -> b", "A -> B", "A -> a"}, start: "B"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)

			// execute
			g := MustParse(tc.rules...)

			// assert
			p0 := g.Production(0)
			assert.Equal(g.StartSymbol(), p0.LHS)
			assert.Equal([]string{tc.start}, p0.RHS)
			assert.Equal(tc.start, g.OriginalStart())
			assert.True(g.IsNonTerminal(g.StartSymbol()))
			assert.NotContains(g.NonTerminals(), g.StartSymbol())
		})
	}
}

func Test_FromProductions(t *testing.T) {
	// setup
	assert := assert.New(t)
	orig := MustParse("E -> E + T", "E -> T", "T -> id", "T ->")

	// execute
	rebuilt, err := FromProductions(orig.Productions())

	// assert
	assert.NoError(err)
	assert.Equal(orig.String(), rebuilt.String())
	assert.Equal(orig.Terminals(), rebuilt.Terminals())
	assert.Equal(orig.NonTerminals(), rebuilt.NonTerminals())
	assert.Equal(orig.Symbols(), rebuilt.Symbols())
	assert.Equal(orig.Rules(), rebuilt.Rules())
}

func Test_Grammar_Rules_RoundTrip(t *testing.T) {
	// setup
	assert := assert.New(t)
	g := MustParse("S -> A b", "A ->", "A -> a")

	// execute
	again, err := Parse(g.Rules())

	// assert
	assert.NoError(err)
	assert.Equal(g.String(), again.String())
}

func joinLines(lines []string) string {
	out := ""
	for i := range lines {
		out += lines[i]
		if i+1 < len(lines) {
			out += "\n"
		}
	}
	return out
}
