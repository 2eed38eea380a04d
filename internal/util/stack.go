package util

// Stack is a LIFO stack backed by a slice. The bottom of the stack is Of[0].
// The zero value is an empty stack ready for use.
type Stack[E any] struct {
	Of []E
}

// Push puts v on top of the stack.
func (s *Stack[E]) Push(v E) {
	s.Of = append(s.Of, v)
}

// Pop removes and returns the top of the stack. It panics if the stack is
// empty.
func (s *Stack[E]) Pop() E {
	if len(s.Of) == 0 {
		panic("Pop() called on empty stack")
	}
	v := s.Of[len(s.Of)-1]
	s.Of = s.Of[:len(s.Of)-1]
	return v
}

// Peek returns the top of the stack without removing it. It panics if the
// stack is empty.
func (s Stack[E]) Peek() E {
	if len(s.Of) == 0 {
		panic("Peek() called on empty stack")
	}
	return s.Of[len(s.Of)-1]
}

// Len returns the number of elements on the stack.
func (s Stack[E]) Len() int {
	return len(s.Of)
}

// Empty returns whether the stack has no elements.
func (s Stack[E]) Empty() bool {
	return len(s.Of) == 0
}

// Snapshot returns a copy of the stack contents from bottom to top.
func (s Stack[E]) Snapshot() []E {
	out := make([]E, len(s.Of))
	copy(out, s.Of)
	return out
}
