package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
)

var (
	ccRules            = []string{"S -> C C", "C -> c C", "C -> d"}
	ambiguousExprRules = []string{"E -> E + E", "E -> id"}
	reduceReduceRules  = []string{"S -> A", "S -> B", "A -> x", "B -> x"}
	acceptReduceRules  = []string{"S -> S", "S -> a"}
	exprRules          = []string{"E -> E + T", "E -> T", "T -> T * F", "T -> F", "F -> ( E )", "F -> id"}
)

func mustBuild(policy ConflictPolicy, rules ...string) *Tables {
	t, err := Build(grammar.MustParse(rules...), Options{Policy: policy})
	if err != nil {
		panic(err.Error())
	}
	return t
}

func Test_Build_CC(t *testing.T) {
	// setup
	assert := assert.New(t)
	g := grammar.MustParse(ccRules...)

	// execute
	tables, err := Build(g, Options{})

	// assert
	if !assert.NoError(err) {
		return
	}
	assert.Equal(10, tables.NumStates())
	assert.Empty(tables.Conflicts())
	assert.Equal(PolicyResolve, tables.Policy())

	assert.Equal([]Action{Shift(3)}, tables.Action(0, "c"))
	assert.Equal([]Action{Shift(4)}, tables.Action(0, "d"))
	assert.Nil(tables.Action(0, "$"))
	assert.Equal([]Action{Accept()}, tables.Action(1, "$"))
	assert.Equal([]Action{Reduce(3)}, tables.Action(4, "c"))
	assert.Equal([]Action{Reduce(1)}, tables.Action(5, "$"))
	assert.Equal([]Action{Reduce(2)}, tables.Action(9, "$"))
	assert.Nil(tables.Action(99, "c"))

	to, ok := tables.Goto(0, "S")
	assert.True(ok)
	assert.Equal(1, to)
	to, ok = tables.Goto(6, "C")
	assert.True(ok)
	assert.Equal(9, to)
	_, ok = tables.Goto(1, "C")
	assert.False(ok)

	assert.Equal([]string{"c", "d"}, tables.Expected(0))
}

func Test_Build_AcceptOnlyInAcceptingState(t *testing.T) {
	grammars := map[string][]string{
		"CC":         ccRules,
		"expression": exprRules,
		"ambiguous":  ambiguousExprRules,
	}

	for name, rules := range grammars {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			tables := mustBuild(PolicyResolve, rules...)

			for i := 0; i < tables.NumStates(); i++ {
				hasAccept := false
				for _, act := range tables.Action(i, grammar.EndMarker) {
					if act.Type == ActionAccept {
						hasAccept = true
					}
				}
				assert.Equal(tables.Automaton().IsAccepting(i), hasAccept, "state %d", i)
			}
		})
	}
}

func Test_Build_Conflicts(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		expect []Conflict
	}{
		{
			name:   "unambiguous grammar has none",
			rules:  exprRules,
			expect: []Conflict{},
		},
		{
			name:  "ambiguous addition",
			rules: ambiguousExprRules,
			expect: []Conflict{
				{State: 4, Terminal: "+", Kind: ShiftReduce, Entries: []Action{Shift(3), Reduce(1)}},
			},
		},
		{
			name:  "two reductions of the same token",
			rules: reduceReduceRules,
			expect: []Conflict{
				{State: 4, Terminal: "$", Kind: ReduceReduce, Entries: []Action{Reduce(3), Reduce(4)}},
			},
		},
		{
			name:  "start symbol derives itself",
			rules: acceptReduceRules,
			expect: []Conflict{
				{State: 1, Terminal: "$", Kind: AcceptReduce, Entries: []Action{Accept(), Reduce(1)}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)

			// execute
			tables, err := Build(grammar.MustParse(tc.rules...), Options{Policy: PolicyResolve})

			// assert
			if !assert.NoError(err) {
				return
			}
			actual := tables.Conflicts()
			if len(tc.expect) == 0 {
				assert.Empty(actual)
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Build_ConflictInStateWithCompletedItem(t *testing.T) {
	// setup
	assert := assert.New(t)
	g := grammar.MustParse(ambiguousExprRules...)

	// execute
	tables, err := Build(g, Options{})

	// assert
	if !assert.NoError(err) {
		return
	}
	conflicts := tables.Conflicts()
	if !assert.NotEmpty(conflicts) {
		return
	}
	c := conflicts[0]
	assert.Equal(ShiftReduce, c.Kind)
	assert.Equal("+", c.Terminal)
	assert.True(tables.Automaton().State(c.State).Items.Has(g.MustParseItem("[E -> E + E ., +]")))
}

func Test_Build_Policy(t *testing.T) {
	testCases := []struct {
		name      string
		rules     []string
		policy    ConflictPolicy
		expectErr bool
	}{
		{name: "resolve keeps shift/reduce", rules: ambiguousExprRules, policy: PolicyResolve},
		{name: "resolve keeps reduce/reduce", rules: reduceReduceRules, policy: PolicyResolve},
		{name: "reject-rr keeps shift/reduce", rules: ambiguousExprRules, policy: PolicyRejectReduceReduce},
		{name: "reject-rr refuses reduce/reduce", rules: reduceReduceRules, policy: PolicyRejectReduceReduce, expectErr: true},
		{name: "reject-rr refuses accept/reduce", rules: acceptReduceRules, policy: PolicyRejectReduceReduce, expectErr: true},
		{name: "reject-all refuses shift/reduce", rules: ambiguousExprRules, policy: PolicyRejectAll, expectErr: true},
		{name: "reject-all allows conflict-free", rules: ccRules, policy: PolicyRejectAll},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)

			// execute
			tables, err := Build(grammar.MustParse(tc.rules...), Options{Policy: tc.policy})

			// assert
			if tc.expectErr {
				assert.ErrorIs(err, ErrTableConflict)
				var confErr *ConflictError
				if assert.True(errors.As(err, &confErr)) {
					assert.NotEmpty(confErr.Conflicts)
					assert.Equal(tc.policy, confErr.Policy)
				}
				return
			}
			assert.NoError(err)
			assert.NotNil(tables)
		})
	}
}

func Test_ParseConflictPolicy(t *testing.T) {
	testCases := []struct {
		input     string
		expect    ConflictPolicy
		expectErr bool
	}{
		{input: "", expect: PolicyResolve},
		{input: "resolve", expect: PolicyResolve},
		{input: "REJECT-RR", expect: PolicyRejectReduceReduce},
		{input: " reject-all ", expect: PolicyRejectAll},
		{input: "strict", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseConflictPolicy(tc.input)

			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)

			roundTrip, err := ParseConflictPolicy(actual.String())
			assert.NoError(err)
			assert.Equal(actual, roundTrip)
		})
	}
}

func Test_Tables_String(t *testing.T) {
	// setup
	assert := assert.New(t)
	tables := mustBuild(PolicyResolve, ccRules...)

	// execute
	actual := tables.String()

	// assert
	lines := strings.Split(actual, "\n")
	if !assert.Len(lines, 12) {
		return
	}
	assert.Equal([]string{"S", "|", "A:c", "A:d", "A:$", "|", "G:S", "G:C"}, strings.Fields(lines[0]))
	assert.Equal([]string{"0", "|", "s3", "s4", "|", "1", "2"}, strings.Fields(lines[2]))
	assert.Equal([]string{"1", "|", "acc", "|"}, strings.Fields(lines[3]))
	assert.Equal([]string{"4", "|", "r3", "r3", "|"}, strings.Fields(lines[6]))
	assert.Equal([]string{"6", "|", "s6", "s7", "|", "9"}, strings.Fields(lines[8]))
}

func Test_Tables_String_ShowsConflicts(t *testing.T) {
	assert := assert.New(t)
	tables := mustBuild(PolicyResolve, ambiguousExprRules...)

	actual := tables.String()

	assert.Contains(actual, "s3/r1")
	assert.Contains(tables.ConflictsString(), `shift/reduce conflict in state 4 on "+": s3/r1`)
	assert.Contains(tables.ConflictsString(), "reduce by 1: E -> E + E")
	assert.Equal("(none)", mustBuild(PolicyResolve, ccRules...).ConflictsString())
}

func Test_Tables_Binary_RoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		policy ConflictPolicy
	}{
		{name: "CC", rules: ccRules},
		{name: "with conflicts", rules: ambiguousExprRules},
		{name: "epsilon", rules: []string{"S -> A b", "A -> a A", "A ->"}, policy: PolicyRejectAll},
		{name: "expression", rules: exprRules, policy: PolicyRejectReduceReduce},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			original := mustBuild(tc.policy, tc.rules...)

			// execute
			data, err := original.MarshalBinary()
			if !assert.NoError(err) {
				return
			}
			decoded := &Tables{}
			err = decoded.UnmarshalBinary(data)

			// assert
			if !assert.NoError(err) {
				return
			}
			assert.Equal(original.String(), decoded.String())
			assert.Equal(original.StatesString(), decoded.StatesString())
			assert.Equal(original.ProductionsString(), decoded.ProductionsString())
			assert.Equal(original.Conflicts(), decoded.Conflicts())
			assert.Equal(original.Policy(), decoded.Policy())
		})
	}
}

func Test_Tables_UnmarshalBinary_Truncated(t *testing.T) {
	assert := assert.New(t)
	data, err := mustBuild(PolicyResolve, ccRules...).MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	decoded := &Tables{}
	err = decoded.UnmarshalBinary(data[:len(data)/2])

	assert.Error(err)
}

func Test_Tables_UnmarshalBinary_CountTooLarge(t *testing.T) {
	oneProduction := func(after []byte) []byte {
		data := rezi.EncInt(int(PolicyResolve))
		data = append(data, rezi.EncInt(1)...)
		data = append(data, rezi.EncString("S")...)
		return append(data, after...)
	}

	testCases := []struct {
		name        string
		data        []byte
		expectError string
	}{
		{
			name:        "production count",
			data:        append(append(rezi.EncInt(int(PolicyResolve)), rezi.EncInt(1<<40)...), 0x00, 0x00),
			expectError: "production count",
		},
		{
			name:        "body length",
			data:        oneProduction(append(rezi.EncInt(1<<40), 0x00)),
			expectError: "production 0: body length",
		},
		{
			name:        "negative count",
			data:        append(rezi.EncInt(int(PolicyResolve)), rezi.EncInt(-3)...),
			expectError: "must be non-negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			decoded := &Tables{}

			// execute
			err := decoded.UnmarshalBinary(tc.data)

			// assert
			if !assert.Error(err) {
				return
			}
			assert.Contains(err.Error(), tc.expectError)
		})
	}
}
