package cpu

import (
	"slices"
)

// Stack is the operand stack. The zero value is an empty stack.
//
// The stack pointer is a 16-bit register holding the index of the top
// entry, with STACK_EMPTY (0xffff) for an empty stack. Pushing past
// STACK_SIZE entries, or popping an empty stack, fails without changing
// the stack.
type Stack struct {
	Data  [STACK_SIZE]uint16
	depth int
}

// Pointer returns the stack pointer register.
func (s *Stack) Pointer() uint16 {
	return uint16(s.depth - 1)
}

// Depth returns the number of entries on the stack.
func (s *Stack) Depth() int {
	return s.depth
}

func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.depth] = value
	s.depth++
	return true
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek(0)
	if ok {
		s.depth--
	}
	return
}

// Peek returns the entry n places below the top.
func (s *Stack) Peek(n int) (value uint16, ok bool) {
	if n < 0 || n >= s.depth {
		return
	}

	return s.Data[s.depth-1-n], true
}

// Poke replaces the entry n places below the top.
func (s *Stack) Poke(n int, value uint16) (ok bool) {
	if n < 0 || n >= s.depth {
		return
	}

	s.Data[s.depth-1-n] = value
	return true
}

func (s *Stack) Empty() bool {
	return s.depth == 0
}

func (s *Stack) Full() bool {
	return s.depth == STACK_SIZE
}

// Values returns a copy of the live entries, bottom first.
func (s *Stack) Values() []uint16 {
	return slices.Clone(s.Data[:s.depth])
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.depth = 0
}
