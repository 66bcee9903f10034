// stack.go
package stack

import (
	"errors"
	"fmt"
)

// Empty is returned by Pop and Top when there is nothing on the stack.
const Empty = -1

// DefaultSize matches the block depth the compiler allows unless configured otherwise.
const DefaultSize = 100

// ErrOverflow is returned by Push when the stack is full.
var ErrOverflow = errors.New("stack overflow")

// Stack is a bounded LIFO of small integers.
type Stack struct {
	values []int
	size   int
}

// New returns a stack holding at most size values. A non-positive size falls back to DefaultSize.
func New(size int) *Stack {
	if size <= 0 {
		size = DefaultSize
	}
	return &Stack{values: make([]int, 0, size), size: size}
}

// Push adds value to the top of the stack.
func (s *Stack) Push(value int) error {
	if len(s.values) >= s.size {
		return fmt.Errorf("%w: capacity %d", ErrOverflow, s.size)
	}
	s.values = append(s.values, value)
	return nil
}

// Pop removes and returns the top value, or Empty.
func (s *Stack) Pop() int {
	if len(s.values) == 0 {
		return Empty
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v
}

// Top returns the top value without removing it, or Empty.
func (s *Stack) Top() int {
	if len(s.values) == 0 {
		return Empty
	}
	return s.values[len(s.values)-1]
}

func (s *Stack) Len() int { return len(s.values) }

func (s *Stack) Cap() int { return s.size }
