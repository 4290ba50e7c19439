package cpu

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/stackvm/translate"
)

func assemble(asm *Assembler, lines ...string) (*Program, error) {
	return asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func words(prog *Program) (list []uint16) {
	if prog == nil {
		return
	}
	return prog.Binary()
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm, "START")
	assert.NoError(err)
	assert.Equal(0, prog.Start)
	assert.Empty(prog.Statements)
	assert.Empty(prog.Data)

	prog, err = assemble(asm,
		"DATA",
		"1,2, 3",
		"START",
		"PUSH",
		"5",
		"ADD",
	)
	assert.NoError(err)
	assert.Equal(2, prog.Start)
	assert.Equal([]uint16{1, 2, 3}, prog.Data)
	assert.Equal(code(OP_PUSH, 5, OP_ADD), words(prog))
	assert.Equal(3, prog.Statements[0].LineNo)
	assert.Equal(5, prog.Statements[2].LineNo)
}

func TestAssembler_NoProgramStart(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	for _, source := range [][]string{
		{},
		{"PUSH", "1"},
		{"DATA", "1,2", "STARTS"},
		{"; START"},
	} {
		prog, err := assemble(asm, source...)
		assert.Nil(prog)
		assert.ErrorIs(err, ErrNoProgramStart)

		var err_compile *ErrCompile
		if assert.True(errors.As(err, &err_compile)) {
			assert.Equal(ERROR_NO_PROGRAM_START, err_compile.Kind)
			assert.Equal(NO_LINE, err_compile.LineNo)
		}
	}
}

func TestAssembler_Directives(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := [](struct {
		name   string
		source []string
		start  int
		data   []uint16
		code   []uint16
	}){
		{"no_data", []string{"5,6", "START", "PUSH", "DATALOC"},
			1, []uint16{5, 6}, code(OP_PUSH, DATA_LOC)},
		{"data_after_start", []string{"START", "PUSH", "1", "DATA", "7,8"},
			0, []uint16{7, 8}, code(OP_PUSH, 1)},
		{"comment_directives", []string{" DATA ; table", "9", "START\t; code", "DUP"},
			2, []uint16{9}, code(OP_DUP)},
	}

	for _, entry := range table {
		prog, err := assemble(asm, entry.source...)
		if !assert.NoError(err, entry.name) {
			continue
		}
		assert.Equal(entry.start, prog.Start, entry.name)
		assert.Equal(entry.data, prog.Data, entry.name)
		assert.Equal(entry.code, words(prog), entry.name)
	}
}

func TestAssembler_Data(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		"DATA",
		"1, x ,3",
		"65535,65536,-1",
		"",
		"4 ; trailing",
		"START",
	}

	asm := &Assembler{}
	prog, err := assemble(asm, source...)
	assert.NoError(err)
	assert.Equal([]uint16{1, 3, 65535, 4}, prog.Data)

	asm.Strict = true
	prog, err = assemble(asm, source...)
	assert.Nil(prog)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_DATA, err_compile.Kind)
		assert.Equal(1, err_compile.LineNo)
	}
	assert.ErrorIs(err, ErrParseNumber("x"))
}

func TestAssembler_DataOverflow(t *testing.T) {
	assert := assert.New(t)

	fits := strings.TrimSuffix(strings.Repeat("1,", MEMORY_SIZE-DATA_LOC), ",")

	asm := &Assembler{}
	prog, err := assemble(asm, "DATA", fits, "START")
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE-DATA_LOC, len(prog.Data))

	prog, err = assemble(asm, "DATA", fits+",2", "START")
	assert.Nil(prog)
	assert.ErrorIs(err, ErrDataOverflow)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_DATA, err_compile.Kind)
	}
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm,
		"START",
		"JMP",
		"END",
		"PUSH",
		"1",
		"END:DROP",
		"BACK: DUP",
		"JNE",
		"BACK",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(code(OP_JMP, 4, OP_PUSH, 1, OP_DROP, OP_DUP, OP_JNE, 5), words(prog))
	assert.Equal(map[string]int{"END": 4, "BACK": 5}, prog.Labels)
	assert.Equal(map[string]int{"END": 4, "BACK": 5}, asm.Label)
	assert.Equal("END", prog.Statements[4].Label)
	assert.Equal(5, prog.Statements[4].LineNo)
}

func TestAssembler_WrongLabelName(t *testing.T) {
	assert := assert.New(t)
	translate.Use("en-US")

	asm := &Assembler{}
	prog, err := assemble(asm, "START", "DUP", "PUSH:DROP")
	assert.Nil(prog)
	assert.ErrorIs(err, ErrLabelReserved)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_WRONG_LABEL_NAME, err_compile.Kind)
		assert.Equal(2, err_compile.LineNo)
		assert.Equal("PUSH", err_compile.Label)
	}
	assert.Equal("line 3: label cannot be named PUSH", err.Error())
}

func TestAssembler_DuplicateLabel(t *testing.T) {
	assert := assert.New(t)

	source := []string{"START", "A:DROP", "A:DUP", "JMP", "A"}

	asm := &Assembler{}
	prog, err := assemble(asm, source...)
	assert.NoError(err)
	assert.Equal(code(OP_DROP, OP_DUP, OP_JMP, 1), words(prog))

	asm.Strict = true
	prog, err = assemble(asm, source...)
	assert.Nil(prog)
	assert.ErrorIs(err, ErrLabelDuplicate)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_LINE, err_compile.Kind)
		assert.Equal(2, err_compile.LineNo)
	}
}

func TestAssembler_LineError(t *testing.T) {
	assert := assert.New(t)
	translate.Use("en-US")

	table := [](struct {
		name   string
		source []string
		lineno int
		err    error
	}){
		{"mnemonic", []string{"DATA", "1", "START", "PUSH", "FOO"}, 4, ErrMnemonicInvalid},
		{"lower_case", []string{"START", "push"}, 1, ErrMnemonicInvalid},
		{"empty_label", []string{"START", "DUP", "L:"}, 2, ErrMnemonicInvalid},
		{"label_operand", []string{"START", "L:PUSH", "5"}, NO_LINE, nil},
		{"too_large", []string{"START", "PUSH", "65536"}, 2, ErrValueRange},
		{"too_small", []string{"START", "PUSH", "-32769"}, 2, ErrValueRange},
		{"first_failure", []string{"START", "X", "Y"}, 1, ErrMnemonicInvalid},
		{"second_start", []string{"START", "INC", "START"}, 2, ErrMnemonicInvalid},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := assemble(asm, entry.source...)
		if entry.err == nil {
			assert.NoError(err, entry.name)
			continue
		}

		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var err_compile *ErrCompile
		if assert.True(errors.As(err, &err_compile), entry.name) {
			assert.Equal(ERROR_LINE, err_compile.Kind, entry.name)
			assert.Equal(entry.lineno, err_compile.LineNo, entry.name)
		}
	}

	_, err := assemble(&Assembler{}, "START", "PUSH", "FOO")
	assert.Equal("line 3 'FOO' mnemonic invalid", err.Error())
}

func TestAssembler_Literals(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm, "START", "65535", "-1", "-32768", "0", "DATALOC")
	assert.NoError(err)
	assert.Equal([]uint16{0xffff, 0xffff, 0x8000, 0, DATA_LOC}, words(prog))
}

func TestAssembler_Expressions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("N", 21)
	asm.Predefine("M", 1)
	asm.Predefine("M", 3)

	prog, err := assemble(asm,
		"START",
		"PUSH",
		"$(DATALOC + 2)",
		"PUSH",
		"$(N * 2)",
		"JMP",
		"$(END - M)",
		"END:DROP",
		"$(MEMORY_SIZE - STACK_SIZE)",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(code(OP_PUSH, 502, OP_PUSH, 42, OP_JMP, 3, OP_DROP, 3072), words(prog))

	for _, expr := range []string{"$(1 +)", `$("x")`, "$(UNDEFINED)", "$(0x10000)"} {
		prog, err = assemble(asm, "START", expr)
		assert.Nil(prog, expr)
		assert.Error(err, expr)

		var err_compile *ErrCompile
		if assert.True(errors.As(err, &err_compile), expr) {
			assert.Equal(ERROR_LINE, err_compile.Kind, expr)
			assert.Equal(1, err_compile.LineNo, expr)
		}
	}
}

func TestAssembler_Comments(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm,
		"START",
		"; setup",
		"",
		"PUSH ; push it",
		"  1  ",
		"END: DROP",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(code(OP_PUSH, 1, OP_DROP), words(prog))
	lines := []int{}
	for _, stmt := range prog.Statements {
		lines = append(lines, stmt.LineNo)
	}
	assert.Equal([]int{3, 4, 5}, lines)
	assert.Equal("PUSH", prog.Statements[0].Text)
	assert.Equal(2, prog.Labels["END"])
}

func TestAssembler_Overlap(t *testing.T) {
	assert := assert.New(t)

	source := []string{"DATA", "7", "START"}
	for range DATA_LOC + 1 {
		source = append(source, "INC")
	}

	asm := &Assembler{}
	prog, err := assemble(asm, source...)
	if !assert.NoError(err) {
		return
	}

	cpu := NewCpu()
	assert.NoError(cpu.Load(prog))
	assert.Equal(uint16(OP_INC), cpu.Memory[DATA_LOC])

	asm.Strict = true
	prog, err = assemble(asm, source...)
	assert.Nil(prog)
	assert.ErrorIs(err, ErrProgramOverlap)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_LINE, err_compile.Kind)
		assert.Equal(3+DATA_LOC, err_compile.LineNo)
	}

	// Without data there is nothing to overlap.
	prog, err = assemble(asm, source[2:]...)
	assert.NoError(err)
	assert.Equal(DATA_LOC+1, len(prog.Statements))
}

func TestAssembler_ProgramOverflow(t *testing.T) {
	assert := assert.New(t)

	source := []string{"START"}
	for range MEMORY_SIZE + 1 {
		source = append(source, "DUP")
	}

	asm := &Assembler{}
	prog, err := assemble(asm, source...)
	assert.Nil(prog)
	assert.ErrorIs(err, ErrProgramOverflow)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(MEMORY_SIZE+1, err_compile.LineNo)
	}
}

func TestAssembler_Idempotent(t *testing.T) {
	assert := assert.New(t)

	source, err := os.ReadFile("testdata/findmax.asm")
	if !assert.NoError(err) {
		return
	}

	image := func() []uint16 {
		asm := &Assembler{}
		prog, err := asm.Parse(bytes.NewReader(source))
		assert.NoError(err)

		cpu := NewCpu()
		assert.NoError(cpu.Load(prog))
		return slices.Clone(cpu.Memory[:])
	}

	assert.Equal(image(), image())

	asm := &Assembler{}
	first, err := asm.Parse(bytes.NewReader(source))
	assert.NoError(err)
	second, err := asm.Parse(bytes.NewReader(source))
	assert.NoError(err)
	assert.Equal(first, second)
}

func TestAssembler_Verbose(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	asm := &Assembler{Verbose: true}
	_, err := assemble(asm, "DATA", "1,y", "START", "PUSH", "2")
	assert.NoError(err)

	text := buf.String()
	assert.Contains(text, "data token 'y' dropped")
	assert.Contains(text, "asm: 0001: 0002 2")
}

func TestAssembler_LongLine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm, "DATA", "7,"+strings.Repeat("X", 70000), "START", "PUSH", "1")
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]uint16{7}, prog.Data)
	assert.Equal(code(OP_PUSH, 1), words(prog))
}

func TestAssembler_ReadError(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("disk on fire")
	input := io.MultiReader(strings.NewReader("START\nDUP\n"), iotest.ErrReader(failure))

	prog, err := (&Assembler{}).Parse(input)
	assert.Nil(prog)
	assert.ErrorIs(err, failure)

	var err_compile *ErrCompile
	if assert.True(errors.As(err, &err_compile)) {
		assert.Equal(ERROR_LINE, err_compile.Kind)
		assert.Equal(2, err_compile.LineNo)
	}
}
