package cpu

import (
	"errors"
	"iter"
)

// Opcode is a machine instruction code.
type Opcode uint16

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_NULL  = Opcode(0x00) // NULL
	OP_PUSH  = Opcode(0x01) // PUSH
	OP_READ  = Opcode(0x02) // READ
	OP_WRITE = Opcode(0x03) // WRITE
	OP_DUP   = Opcode(0x04) // DUP
	OP_DROP  = Opcode(0x05) // DROP
	OP_LDC   = Opcode(0x06) // LDC
	OP_STC   = Opcode(0x07) // STC
	OP_CMP   = Opcode(0x08) // CMP
	OP_INC   = Opcode(0x09) // INC
	OP_DEC   = Opcode(0x0a) // DEC
	OP_INCC  = Opcode(0x0b) // INCC
	OP_DECC  = Opcode(0x0c) // DECC
	OP_CMPC  = Opcode(0x0d) // CMPC
	OP_ADD   = Opcode(0x0e) // ADD
	OP_ADDC  = Opcode(0x0f) // ADDC
	OP_MUL   = Opcode(0x10) // MUL
	OP_SWAP  = Opcode(0x11) // SWAP
	OP_ROR   = Opcode(0x12) // ROR
	OP_ROL   = Opcode(0x13) // ROL
	OP_JE    = Opcode(0x14) // JE
	OP_JNE   = Opcode(0x15) // JNE
	OP_JL    = Opcode(0x16) // JL
	OP_JG    = Opcode(0x17) // JG
	OP_JGE   = Opcode(0x18) // JGE
	OP_JLE   = Opcode(0x19) // JLE
	OP_JMP   = Opcode(0x1a) // JMP

	opcodeCount = int(OP_JMP) + 1
)

// mnemonicMap maps mnemonic names to opcodes.
var mnemonicMap = make(map[string]Opcode, opcodeCount)

func init() {
	for op := range Opcodes() {
		mnemonicMap[op.String()] = op
	}
}

// Opcodes returns an iterator over the instruction set, in encoding order.
func Opcodes() iter.Seq[Opcode] {
	return func(yield func(op Opcode) bool) {
		for code := range opcodeCount {
			if !yield(Opcode(code)) {
				return
			}
		}
	}
}

// ParseMnemonic encodes an upper case mnemonic.
func ParseMnemonic(name string) (op Opcode, err error) {
	op, ok := mnemonicMap[name]
	if !ok {
		err = ErrMnemonicInvalid
	}
	return
}

// Decode decodes a memory word as an opcode.
func Decode(word uint16) (op Opcode, err error) {
	op = Opcode(word)
	if !op.Valid() {
		err = errors.Join(ErrOpcode(word), ErrOpcodeInvalid)
	}
	return
}

// Valid returns true if the opcode is a member of the instruction set.
func (op Opcode) Valid() bool {
	return int(op) < opcodeCount
}

// Jump returns true for the jump family, which takes a target operand.
func (op Opcode) Jump() bool {
	return op >= OP_JE && op <= OP_JMP
}

// Size returns the number of memory words used by the instruction,
// including its inline operand.
func (op Opcode) Size() int {
	if op == OP_PUSH || op.Jump() {
		return 2
	}
	return 1
}

// Taken reports whether a jump opcode transfers control for the given flags.
func (op Opcode) Taken(flags Flags) bool {
	switch op {
	case OP_JMP:
		return true
	case OP_JE:
		return flags.Equal
	case OP_JNE:
		return !flags.Equal
	case OP_JL:
		return flags.Less
	case OP_JG:
		return flags.Greater
	case OP_JGE:
		return flags.Greater || flags.Equal
	case OP_JLE:
		return flags.Less || flags.Equal
	}
	return false
}
