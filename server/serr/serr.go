// Package serr holds the errors used across the clrviz server. Its Error type
// carries a message plus any number of causes, and errors.Is matches an Error
// against each of its causes, so callers can check for a sentinel such as
// ErrNotFound without caring which layer produced the failure.
package serr

import "errors"

var (
	ErrBadCredentials = errors.New("the supplied password is incorrect")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrDB             = errors.New("an error occured with the DB")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal  = errors.New("malformed data in request")
	ErrGrammar        = errors.New("the grammar could not be built")
)

// Error is an error with a message and zero or more causes. Its text is the
// message followed by the text of the first cause; if the message is empty,
// only the first cause is shown.
//
// Use New or WrapDB to create one.
type Error struct {
	msg   string
	cause []error
}

func (e Error) Error() string {
	switch {
	case len(e.cause) == 0:
		return e.msg
	case e.msg == "":
		return e.cause[0].Error()
	default:
		return e.msg + ": " + e.cause[0].Error()
	}
}

// Unwrap gives every cause of e, for errors.Is and errors.As.
func (e Error) Unwrap() []error {
	if len(e.cause) == 0 {
		return nil
	}
	return e.cause
}

// Is reports whether target is one of the direct causes of e, or is an Error
// with the same message and the same causes.
func (e Error) Is(target error) bool {
	if other, ok := target.(Error); ok && e.sameAs(other) {
		return true
	}

	for _, c := range e.cause {
		if c == target {
			return true
		}
	}
	return false
}

func (e Error) sameAs(o Error) bool {
	if e.msg != o.msg || len(e.cause) != len(o.cause) {
		return false
	}
	for i := range e.cause {
		if e.cause[i] != o.cause[i] {
			return false
		}
	}
	return true
}

// WrapDB gives an Error caused by err and ErrDB. msg may be empty.
func WrapDB(msg string, err error) Error {
	return New(msg, err, ErrDB)
}

// New gives an Error with the given message and causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
