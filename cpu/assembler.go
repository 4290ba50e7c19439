// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"log"
	"maps"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/stackvm/internal"
)

// Directives and reserved words of the source dialect.
const (
	DIRECTIVE_DATA  = "DATA"
	DIRECTIVE_START = "START"
	WORD_DATALOC    = "DATALOC"

	LINE_MAX = 16 << 20 // Longest source line accepted by Parse.
)

// Predefined symbols for $(...) expressions.
var sysEquate = map[string]int{
	WORD_DATALOC:  DATA_LOC,
	"MEMORY_SIZE": MEMORY_SIZE,
	"STACK_SIZE":  STACK_SIZE,
}

// Assembler is a two pass assembler for the stack machine.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Strict  bool // If set, rejects bad data tokens, duplicate labels and data overlap.

	Label map[string]int // Map of jump labels to instruction addresses.

	predefine map[string]int // Predefines
}

// Predefine defines a new expression symbol or redefines an existing one.
func (asm *Assembler) Predefine(name string, value int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// stripComment removes a trailing ';' comment and surrounding whitespace.
func stripComment(text string) string {
	text, _, _ = strings.Cut(text, ";")
	return strings.TrimSpace(text)
}

// indexOf finds the first line holding only the directive.
func indexOf(lines []string, directive string) int {
	for n, text := range lines {
		if stripComment(text) == directive {
			return n
		}
	}

	return NO_LINE
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var lines []string

	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, LINE_MAX)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		err = &ErrCompile{Kind: ERROR_LINE, LineNo: len(lines), Err: err}
		return
	}

	return asm.ParseLines(lines)
}

// ParseLines assembles source lines into a Program. Line numbers in
// errors and in the Program are zero-based indexes into lines.
func (asm *Assembler) ParseLines(lines []string) (prog *Program, err error) {
	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)

	start := indexOf(lines, DIRECTIVE_START)
	if start == NO_LINE {
		err = &ErrCompile{Kind: ERROR_NO_PROGRAM_START, LineNo: NO_LINE, Err: ErrNoProgramStart}
		return
	}

	// Without a DATA directive, everything before START is data.
	data_start := indexOf(lines, DIRECTIVE_DATA)
	code_end := len(lines)
	data_end := start
	if data_start > start {
		code_end = data_start
		data_end = len(lines)
	}

	if asm.Verbose {
		log.Printf("asm: START at %d, DATA at %d", start, data_start)
	}

	data, err := asm.parseData(lines[data_start+1:data_end], data_start+1)
	if err != nil {
		return
	}

	stmts, err := asm.findLabels(lines[start+1:code_end], start+1)
	if err != nil {
		return
	}

	err = asm.encode(stmts)
	if err != nil {
		return
	}

	err = asm.checkLayout(stmts, data)
	if err != nil {
		return
	}

	prog = &Program{
		Start:      start,
		Data:       data,
		Statements: stmts,
		Labels:     maps.Clone(asm.Label),
	}

	return
}

// parseData parses the comma separated unsigned decimal words of the data
// block. Unparsable tokens are dropped unless the assembler is strict.
func (asm *Assembler) parseData(lines []string, first int) (data []uint16, err error) {
	for n, text := range lines {
		line := stripComment(text)
		for _, token := range strings.Split(line, ",") {
			token = strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return -1
				}
				return r
			}, token)
			if len(token) == 0 {
				continue
			}

			value, perr := strconv.ParseUint(token, 10, 16)
			if perr != nil {
				if asm.Strict {
					err = &ErrCompile{Kind: ERROR_DATA, LineNo: first + n, Line: line, Err: ErrParseNumber(token)}
					return
				}
				if asm.Verbose {
					log.Printf("asm: %d: data token '%v' dropped", first+n, token)
				}
				continue
			}

			data = append(data, uint16(value))
		}
	}

	if DATA_LOC+len(data) > MEMORY_SIZE {
		err = &ErrCompile{Kind: ERROR_DATA, LineNo: NO_LINE, Err: ErrDataOverflow}
		data = nil
		return
	}

	return
}

// findLabels is the first pass. It assigns an address to every
// instruction line and records the labels defined on them.
func (asm *Assembler) findLabels(lines []string, first int) (stmts []Statement, err error) {
	for n, text := range lines {
		lineno := first + n
		line := stripComment(text)
		if len(line) == 0 {
			continue
		}

		stmt := Statement{LineNo: lineno, Ip: len(stmts), Text: line}

		label, _, found := strings.Cut(line, ":")
		if found {
			label = strings.TrimSpace(label)
			_, reserved := mnemonicMap[label]
			if reserved {
				err = &ErrCompile{Kind: ERROR_WRONG_LABEL_NAME, LineNo: lineno, Line: line, Label: label, Err: ErrLabelReserved}
				return
			}
			_, duplicate := asm.Label[label]
			if duplicate && asm.Strict {
				err = &ErrCompile{Kind: ERROR_LINE, LineNo: lineno, Line: line, Label: label, Err: ErrLabelDuplicate}
				return
			}
			asm.Label[label] = stmt.Ip
			stmt.Label = label
		}

		stmts = append(stmts, stmt)
	}

	if len(stmts) > MEMORY_SIZE {
		err = &ErrCompile{Kind: ERROR_LINE, LineNo: stmts[MEMORY_SIZE].LineNo, Line: stmts[MEMORY_SIZE].Text, Err: ErrProgramOverflow}
		return
	}

	return
}

// encode is the second pass. The first line that fails to resolve
// aborts the pass.
func (asm *Assembler) encode(stmts []Statement) (err error) {
	for n := range stmts {
		stmt := &stmts[n]

		var word uint16
		word, err = asm.resolve(stmt.Text)
		if err != nil {
			err = &ErrCompile{Kind: ERROR_LINE, LineNo: stmt.LineNo, Line: stmt.Text, Label: stmt.Label, Err: err}
			return
		}

		if asm.Verbose {
			log.Printf("asm: %04d: %04x %v", stmt.Ip, word, stmt.Text)
		}

		stmt.Word = word
	}

	return
}

// resolve translates a single instruction line into a memory word.
func (asm *Assembler) resolve(token string) (word uint16, err error) {
	if token == WORD_DATALOC {
		word = DATA_LOC
		return
	}

	_, mnemonic, found := strings.Cut(token, ":")
	if found {
		var op Opcode
		op, err = ParseMnemonic(strings.TrimSpace(mnemonic))
		word = uint16(op)
		return
	}

	ip, ok := asm.Label[token]
	if ok {
		word = uint16(ip)
		return
	}

	if strings.HasPrefix(token, "$(") && strings.HasSuffix(token, ")") {
		var value int64
		value, err = asm.parenEval(token[2 : len(token)-1])
		if err != nil {
			return
		}
		return valueWord(value)
	}

	value, perr := strconv.ParseInt(token, 10, 32)
	if perr == nil {
		return valueWord(value)
	}

	op, err := ParseMnemonic(token)
	word = uint16(op)

	return
}

// valueWord narrows a signed or unsigned 16-bit value to a word.
func valueWord(value int64) (word uint16, err error) {
	if value < -0x8000 || value > WORD_MASK {
		err = ErrValueRange
		return
	}

	word = uint16(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	symbols := internal.IterSeq2Concat(maps.All(sysEquate), maps.All(asm.predefine), maps.All(asm.Label))
	for key, value := range symbols {
		pred[key] = starlark.MakeInt(value)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// checkLayout looks for instruction words that land in the data segment.
// Overlap is only logged unless the assembler is strict.
func (asm *Assembler) checkLayout(stmts []Statement, data []uint16) (err error) {
	if len(data) == 0 || len(stmts) <= DATA_LOC {
		return
	}

	stmt := stmts[DATA_LOC]
	if asm.Strict {
		err = &ErrCompile{Kind: ERROR_LINE, LineNo: stmt.LineNo, Line: stmt.Text, Err: ErrProgramOverlap}
		return
	}

	if asm.Verbose {
		log.Printf("asm: %d: program overlaps data at %d", stmt.LineNo, DATA_LOC)
	}

	return
}
