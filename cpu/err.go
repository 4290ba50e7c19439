package cpu

import (
	"errors"

	"github.com/ezrec/stackvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrStackEmpty     = errors.New(f("stack empty"))
	ErrStackFull      = errors.New(f("stack full"))
	ErrAddressInvalid = errors.New(f("address invalid"))
	ErrStepLimit      = errors.New(f("step limit reached"))

	// Instruction decode errors
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrNoProgramStart  = errors.New(f("START directive not found"))
	ErrDataOverflow    = errors.New(f("data block exceeds memory"))
	ErrMnemonicInvalid = errors.New(f("mnemonic invalid"))
	ErrLabelReserved   = errors.New(f("label is a mnemonic"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrValueRange      = errors.New(f("value out of range"))
	ErrProgramOverlap  = errors.New(f("program overlaps data"))
	ErrProgramOverflow = errors.New(f("program exceeds memory"))
)

// ErrorKind classifies the errors reported to a session observer.
type ErrorKind int

//go:generate go tool stringer -linecomment -type=ErrorKind
const (
	ERROR_NONE             = ErrorKind(0) // none
	ERROR_NO_PROGRAM_START = ErrorKind(1) // NoProgramStart
	ERROR_DATA             = ErrorKind(2) // DataError
	ERROR_LINE             = ErrorKind(3) // LineError
	ERROR_WRONG_LABEL_NAME = ErrorKind(4) // WrongLabelName
	ERROR_RUNTIME          = ErrorKind(5) // RuntimeError
)

// ErrOpcode identifies the instruction word that raised a fault.
type ErrOpcode uint16

func (eo ErrOpcode) Error() string {
	return f("opcode 0x%04x %v", uint16(eo), Opcode(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrParseNumber is a token that is not a decimal word.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression is a $(...) expression that did not evaluate to an integer.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrCompile is an assembler failure. LineNo is the zero-based index of
// the offending source line, or NO_LINE.
type ErrCompile struct {
	Kind   ErrorKind
	LineNo int
	Line   string
	Label  string
	Err    error
}

func (err *ErrCompile) Error() string {
	switch {
	case err.Kind == ERROR_WRONG_LABEL_NAME:
		return f("line %d: label cannot be named %v", err.LineNo+1, err.Label)
	case err.LineNo != NO_LINE:
		return f("line %d '%v' %v", err.LineNo+1, err.Line, err.Err)
	}
	return err.Err.Error()
}

func (err *ErrCompile) Unwrap() error {
	return err.Err
}
