package serr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Error(t *testing.T) {
	testCases := []struct {
		name   string
		err    Error
		expect string
	}{
		{name: "message only", err: New("grammar is empty"), expect: "grammar is empty"},
		{name: "cause only", err: New("", ErrNotFound), expect: ErrNotFound.Error()},
		{name: "message and causes", err: New("lookup", ErrNotFound, ErrDB), expect: "lookup: " + ErrNotFound.Error()},
		{name: "db wrap", err: WrapDB("", errors.New("disk full")), expect: "disk full"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.err.Error())
		})
	}
}

func Test_Error_Is(t *testing.T) {
	assert := assert.New(t)
	inner := errors.New("constraint violation")

	err := fmt.Errorf("create grammar: %w", WrapDB("insert", inner))

	assert.ErrorIs(err, inner)
	assert.ErrorIs(err, ErrDB)
	assert.NotErrorIs(err, ErrNotFound)
	assert.ErrorIs(New("x", ErrGrammar), New("x", ErrGrammar))
}
