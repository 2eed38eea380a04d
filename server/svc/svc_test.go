package svc

import (
	"context"
	"testing"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/server/dao/inmem"
	"github.com/dekarrin/clrviz/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const ccGrammar = "S -> C C\nC -> c C\nC -> d\n"

func Test_CanonicalRules(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "already canonical",
			text:   "S -> C C\nC -> d",
			expect: []string{"S -> C C", "C -> d"},
		},
		{
			name:   "whitespace collapsed and blank lines dropped",
			text:   "  S  ->\tC C \r\n\n   \nC -> d\n",
			expect: []string{"S -> C C", "C -> d"},
		},
		{
			name:   "decomposed characters are composed",
			text:   "S -> e\u0301",
			expect: []string{"S -> \u00e9"},
		},
		{
			name:   "nothing but blanks",
			text:   " \n\t\n",
			expect: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := CanonicalRules(tc.text)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_GrammarKey(t *testing.T) {
	assert := assert.New(t)
	rules := []string{"S -> C C", "C -> d"}

	key := GrammarKey(rules, "resolve")

	assert.Len(key, 64)
	assert.Equal(key, GrammarKey([]string{"S -> C C", "C -> d"}, "resolve"))
	assert.NotEqual(key, GrammarKey(rules, "reject-all"))
	assert.NotEqual(key, GrammarKey([]string{"S -> C C C -> d"}, "resolve"))
}

func Test_Service_BuildGrammar(t *testing.T) {
	testCases := []struct {
		name         string
		text         string
		policy       parse.ConflictPolicy
		expectErr    []error
		expectStates int
	}{
		{
			name:         "CC grammar",
			text:         ccGrammar,
			expectStates: 10,
		},
		{
			name:      "no rules",
			text:      "\n \n",
			expectErr: []error{serr.ErrBadArgument},
		},
		{
			name:      "malformed rule",
			text:      "S C C",
			expectErr: []error{serr.ErrGrammar, grammar.ErrFormat},
		},
		{
			name:      "conflict refused by policy",
			text:      "E -> E + E\nE -> id",
			policy:    parse.PolicyRejectAll,
			expectErr: []error{serr.ErrGrammar, parse.ErrTableConflict},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			svc := New(inmem.NewDatastore(), nil, 0)

			// execute
			g, tables, err := svc.BuildGrammar(context.Background(), tc.text, tc.policy)

			// assert
			if tc.expectErr != nil {
				for _, e := range tc.expectErr {
					assert.ErrorIs(err, e)
				}
				all, _ := svc.GetAllGrammars(context.Background())
				assert.Empty(all)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expectStates, tables.NumStates())
			assert.Equal(tc.expectStates, g.States)
			assert.Equal(tc.policy.String(), g.Policy)
			assert.NotEmpty(g.Tables)
		})
	}
}

func Test_Service_BuildGrammar_Deduplicates(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := New(inmem.NewDatastore(), nil, 0)

	first, firstTables, err := svc.BuildGrammar(ctx, ccGrammar, parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}
	second, secondTables, err := svc.BuildGrammar(ctx, "  S ->  C C\n\nC -> c   C\nC -> d  ", parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}
	other, _, err := svc.BuildGrammar(ctx, ccGrammar, parse.PolicyRejectAll)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(first.ID, second.ID)
	assert.Same(firstTables, secondTables)
	assert.NotEqual(first.ID, other.ID)

	all, err := svc.GetAllGrammars(ctx)
	assert.NoError(err)
	assert.Len(all, 2)
}

func Test_Service_CompileGrammar(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := New(inmem.NewDatastore(), nil, 0)

	first, err := svc.CompileGrammar(ctx, ccGrammar, parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}
	second, err := svc.CompileGrammar(ctx, "S -> C C\nC -> c C\n\nC -> d", parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}

	assert.Same(first, second)
	all, err := svc.GetAllGrammars(ctx)
	assert.NoError(err)
	assert.Empty(all, "compiling must not store anything")

	_, err = svc.CompileGrammar(ctx, "-> a", parse.PolicyResolve)
	assert.ErrorIs(err, serr.ErrGrammar)
}

func Test_Service_GetGrammar(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := inmem.NewDatastore()
	builder := New(store, nil, 0)

	created, _, err := builder.BuildGrammar(ctx, ccGrammar, parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}

	// a fresh service has nothing cached and must decode the stored tables
	svc := New(store, nil, 0)
	g, tables, err := svc.GetGrammar(ctx, created.ID.String())

	assert.NoError(err)
	assert.Equal(created.ID, g.ID)
	if assert.NotNil(tables) {
		assert.Equal(10, tables.NumStates())
		assert.Equal([]parse.Action{parse.Shift(3)}, tables.Action(0, "c"))
	}

	_, _, err = svc.GetGrammar(ctx, "not-a-uuid")
	assert.ErrorIs(err, serr.ErrBadArgument)

	_, _, err = svc.GetGrammar(ctx, uuid.New().String())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_ParseWith(t *testing.T) {
	testCases := []struct {
		name         string
		tokens       []string
		expectAccept bool
		expectSteps  int
	}{
		{name: "accepted", tokens: []string{"c", "d", "d"}, expectAccept: true, expectSteps: 8},
		{name: "rejected", tokens: []string{"d"}, expectAccept: false, expectSteps: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			ctx := context.Background()
			svc := New(inmem.NewDatastore(), nil, 0)
			created, _, err := svc.BuildGrammar(ctx, ccGrammar, parse.PolicyResolve)
			if !assert.NoError(err) {
				return
			}

			// execute
			g, trace, err := svc.ParseWith(ctx, created.ID.String(), tc.tokens)

			// assert
			if !assert.NoError(err) {
				return
			}
			assert.Equal(created.ID, g.ID)
			assert.False(g.LastUsed.Before(created.LastUsed))
			assert.Equal(tc.expectAccept, trace.Accepted)
			assert.Len(trace.Steps, tc.expectSteps)
		})
	}
}

func Test_Service_DeleteGrammar(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := New(inmem.NewDatastore(), nil, 0)

	created, _, err := svc.BuildGrammar(ctx, ccGrammar, parse.PolicyResolve)
	if !assert.NoError(err) {
		return
	}

	deleted, err := svc.DeleteGrammar(ctx, created.ID.String())
	assert.NoError(err)
	assert.Equal(created.ID, deleted.ID)
	assert.Equal(0, svc.cache.len())

	_, _, err = svc.GetGrammar(ctx, created.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteGrammar(ctx, created.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if !assert.NoError(t, err) {
		return
	}

	testCases := []struct {
		name      string
		hash      []byte
		password  string
		expectErr error
	}{
		{name: "correct password", hash: hash, password: "hunter2"},
		{name: "wrong password", hash: hash, password: "hunter3", expectErr: serr.ErrBadCredentials},
		{name: "login disabled", hash: nil, password: "", expectErr: serr.ErrBadCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc := New(inmem.NewDatastore(), tc.hash, 0)

			err := svc.Login(context.Background(), tc.password)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_tableCache_Evicts(t *testing.T) {
	assert := assert.New(t)
	cache := newTableCache(2)
	a, b, c := &parse.Tables{}, &parse.Tables{}, &parse.Tables{}

	cache.put("a", a)
	cache.put("b", b)
	_, _ = cache.get("a")
	cache.put("c", c)

	_, hasA := cache.get("a")
	_, hasB := cache.get("b")
	_, hasC := cache.get("c")
	assert.True(hasA)
	assert.False(hasB, "least recently used entry should be evicted")
	assert.True(hasC)
	assert.Equal(2, cache.len())
}
