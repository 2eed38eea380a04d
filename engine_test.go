package clrviz

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/stretchr/testify/assert"
)

func Test_Engine_RunUntilQuit(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectContain []string
		expectAbsent  []string
	}{
		{
			name:  "build and parse",
			input: "S -> C C\nC -> c C\nC -> d\n\nc d d\nd x\n:conflicts\n:quit\n",
			expectContain: []string{
				"0: S' -> S",
				"Built 10 states with no conflicts",
				"Accepted",
				"no action for state 4 and token x",
				"(none)",
				"Goodbye",
			},
		},
		{
			name:  "malformed grammar is asked for again",
			input: "S C C\n\nS -> a\n\na\n",
			expectContain: []string{
				`rule 1 "S C C"`,
				"Enter the grammar again",
				"Built 3 states",
				"Accepted",
				"Goodbye",
			},
		},
		{
			name:  "conflicts are reported",
			input: "E -> E + E\nE -> id\n\nid + id + id\n",
			expectContain: []string{
				"1 conflict(s)",
				`shift/reduce conflict in state 4 on "+": s3/r1`,
				"conflict s3/r1 resolved as s3",
				"Accepted",
			},
		},
		{
			name:  "policy change rebuilds",
			input: "E -> E + E\nE -> id\n\n:policy reject-all\nid\n:policy\n",
			expectContain: []string{
				"Conflict policy is now reject-all",
				"grammar is not LR(1)",
				"Grammar is unloaded",
				"No grammar is loaded",
				"Conflict policy is reject-all",
			},
		},
		{
			name:          "unknown command",
			input:         "S -> a\n\n:frobnicate\n:quit\nnever parsed\n",
			expectContain: []string{`Unknown command ":frobnicate"`, "Goodbye"},
			expectAbsent:  []string{"never parsed"},
		},
		{
			name:          "input ends before grammar",
			input:         "",
			expectContain: []string{"Enter grammar rules", "Goodbye"},
		},
		{
			name:          "automaton views",
			input:         "S -> a\n\n:states\n:dot\n:first\n:table\n",
			expectContain: []string{"I0:", "[S' -> . S, $]", "digraph {", "FIRST(S)", "A:a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			var out bytes.Buffer
			eng, err := New(strings.NewReader(tc.input), &out, "", parse.PolicyResolve, true)
			if !assert.NoError(err) {
				return
			}

			// execute
			err = eng.RunUntilQuit()

			// assert
			assert.NoError(err)
			assert.NoError(eng.Close())
			actual := out.String()
			for _, s := range tc.expectContain {
				assert.Contains(actual, s)
			}
			for _, s := range tc.expectAbsent {
				assert.NotContains(actual, s)
			}
		})
	}
}

func Test_New_GrammarFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		assert := assert.New(t)
		path := filepath.Join(t.TempDir(), "cc.grammar")
		err := os.WriteFile(path, []byte("S -> C C\nC -> c C\nC -> d\n"), 0644)
		if !assert.NoError(err) {
			return
		}
		var out bytes.Buffer

		eng, err := New(strings.NewReader("d d\n"), &out, path, parse.PolicyResolve, true)
		if !assert.NoError(err) {
			return
		}
		err = eng.RunUntilQuit()

		assert.NoError(err)
		assert.Equal(10, eng.Tables().NumStates())
		assert.Contains(out.String(), "Accepted")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(strings.NewReader(""), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope"), parse.PolicyResolve, true)
		assert.Error(t, err)
	})

	t.Run("refused by policy", func(t *testing.T) {
		assert := assert.New(t)
		path := filepath.Join(t.TempDir(), "amb.grammar")
		err := os.WriteFile(path, []byte("E -> E + E\nE -> id\n"), 0644)
		if !assert.NoError(err) {
			return
		}

		_, err = New(strings.NewReader(""), &bytes.Buffer{}, path, parse.PolicyRejectAll, true)

		assert.ErrorIs(err, parse.ErrTableConflict)
	})
}
