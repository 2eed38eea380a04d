package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DirectLineReader_ReadLine(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		allowBlank bool
		expect     []string
	}{
		{
			name:   "skips blank lines by default",
			input:  "S -> C C\n\n   \nC -> d\n",
			expect: []string{"S -> C C", "C -> d"},
		},
		{
			name:       "returns blank lines when allowed",
			input:      "S -> C C\n\nc d d\n",
			allowBlank: true,
			expect:     []string{"S -> C C", "", "c d d"},
		},
		{
			name:   "final line without newline",
			input:  "  d d  ",
			expect: []string{"d d"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			r := NewDirectReader(strings.NewReader(tc.input))
			r.AllowBlank(tc.allowBlank)

			// execute
			var actual []string
			for {
				line, err := r.ReadLine()
				if err == io.EOF {
					break
				}
				if !assert.NoError(err) {
					return
				}
				actual = append(actual, line)
			}

			// assert
			assert.Equal(tc.expect, actual)
			assert.NoError(r.Close())
		})
	}
}
