package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	count := 0
	for op := range Opcodes() {
		count++

		name := op.String()
		code, err := ParseMnemonic(name)
		assert.NoError(err, name)
		assert.Equal(op, code, name)

		decoded, err := Decode(uint16(code))
		assert.NoError(err, name)
		assert.Equal(name, decoded.String())
	}

	assert.Equal(27, count)
}

func TestOpcode_Codes(t *testing.T) {
	assert := assert.New(t)

	table := map[string]uint16{
		"NULL": 0x00, "PUSH": 0x01, "READ": 0x02, "WRITE": 0x03,
		"DUP": 0x04, "DROP": 0x05, "LDC": 0x06, "STC": 0x07,
		"CMP": 0x08, "INC": 0x09, "DEC": 0x0a, "INCC": 0x0b,
		"DECC": 0x0c, "CMPC": 0x0d, "ADD": 0x0e, "ADDC": 0x0f,
		"MUL": 0x10, "SWAP": 0x11, "ROR": 0x12, "ROL": 0x13,
		"JE": 0x14, "JNE": 0x15, "JL": 0x16, "JG": 0x17,
		"JGE": 0x18, "JLE": 0x19, "JMP": 0x1a,
	}

	for name, code := range table {
		op, err := ParseMnemonic(name)
		assert.NoError(err, name)
		assert.Equal(code, uint16(op), name)
	}
}

func TestOpcode_Invalid(t *testing.T) {
	assert := assert.New(t)

	for _, word := range []uint16{0x1b, 0x20, 0x100, 0xffff} {
		_, err := Decode(word)
		assert.True(errors.Is(err, ErrOpcodeInvalid), "%#x", word)
		assert.True(errors.Is(err, ErrOpcode(word)), "%#x", word)
	}

	for _, name := range []string{"", "push", "HALT", "JMP2"} {
		_, err := ParseMnemonic(name)
		assert.ErrorIs(err, ErrMnemonicInvalid, name)
	}
}

func TestOpcode_Size(t *testing.T) {
	assert := assert.New(t)

	for op := range Opcodes() {
		switch op {
		case OP_PUSH, OP_JE, OP_JNE, OP_JL, OP_JG, OP_JGE, OP_JLE, OP_JMP:
			assert.Equal(2, op.Size(), op.String())
		default:
			assert.Equal(1, op.Size(), op.String())
		}
	}
}

func TestOpcode_Taken(t *testing.T) {
	assert := assert.New(t)

	equal := Flags{Equal: true}
	less := Flags{Less: true}
	greater := Flags{Greater: true}

	table := [](struct {
		op       Opcode
		expected [3]bool // equal, less, greater
	}){
		{OP_JE, [3]bool{true, false, false}},
		{OP_JNE, [3]bool{false, true, true}},
		{OP_JL, [3]bool{false, true, false}},
		{OP_JG, [3]bool{false, false, true}},
		{OP_JGE, [3]bool{true, false, true}},
		{OP_JLE, [3]bool{true, true, false}},
		{OP_JMP, [3]bool{true, true, true}},
		{OP_ADD, [3]bool{false, false, false}},
	}

	for _, entry := range table {
		name := entry.op.String()
		assert.Equal(entry.expected[0], entry.op.Taken(equal), name)
		assert.Equal(entry.expected[1], entry.op.Taken(less), name)
		assert.Equal(entry.expected[2], entry.op.Taken(greater), name)
	}
}
