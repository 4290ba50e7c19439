package cpu

import (
	"fmt"
	"io"
	"iter"
	"slices"
)

// Statement is one assembled instruction-region line. LineNo is the
// zero-based index of the line in the source text.
type Statement struct {
	LineNo int
	Ip     int
	Text   string
	Label  string
	Word   uint16
}

// Program is the output of the assembler.
type Program struct {
	Start      int            // Source line index of the START directive.
	Data       []uint16       // Data segment, loaded at DATA_LOC.
	Statements []Statement    // Instruction region, one word per statement.
	Labels     map[string]int // Map of labels to instruction addresses.
}

// Debug returns the statement assembled at ip, or nil.
func (prog *Program) Debug(ip uint16) (stmt *Statement) {
	n, ok := slices.BinarySearchFunc(prog.Statements, int(ip), func(stmt Statement, ip int) int {
		return stmt.Ip - ip
	})
	if ok {
		stmt = &prog.Statements[n]
	}

	return
}

// LineNo translates a machine address into a zero-based source line index.
// Addresses past the end of the program extrapolate from the last
// statement, so the halt location just after the code maps to the line
// after the last instruction.
func (prog *Program) LineNo(ip uint16) (lineno int) {
	stmt := prog.Debug(ip)
	if stmt != nil {
		return stmt.LineNo
	}

	if len(prog.Statements) == 0 {
		return prog.Start + 1 + int(ip)
	}

	last := prog.Statements[len(prog.Statements)-1]
	if int(ip) > last.Ip {
		return last.LineNo + int(ip) - last.Ip
	}

	return NO_LINE
}

// Codes returns an iterator over the instruction words and their addresses.
func (prog *Program) Codes() iter.Seq2[uint16, uint16] {
	return func(yield func(ip uint16, word uint16) bool) {
		for _, stmt := range prog.Statements {
			if !yield(uint16(stmt.Ip), stmt.Word) {
				return
			}
		}
	}
}

// Binary returns the instruction words, starting at address zero.
func (prog *Program) Binary() (words []uint16) {
	words = make([]uint16, 0, len(prog.Statements))
	for _, word := range prog.Codes() {
		words = append(words, word)
	}

	return
}

// Listing writes an annotated listing of the program. Words in opcode
// position are decoded; inline operands are shown as values.
func (prog *Program) Listing(out io.Writer) (err error) {
	operands := 0
	for _, stmt := range prog.Statements {
		var decoded string
		switch {
		case operands > 0:
			operands--
			decoded = fmt.Sprintf("%d", stmt.Word)
		default:
			op, derr := Decode(stmt.Word)
			if derr != nil {
				decoded = "??"
				break
			}
			decoded = op.String()
			operands = op.Size() - 1
		}

		label := ""
		if len(stmt.Label) != 0 {
			label = stmt.Label + ":"
		}

		_, err = fmt.Fprintf(out, "%04d: %04x  %-8s %-6s ; %4d %v\n",
			stmt.Ip, stmt.Word, label, decoded, stmt.LineNo+1, stmt.Text)
		if err != nil {
			return
		}
	}

	if len(prog.Data) != 0 {
		_, err = fmt.Fprintf(out, "%04d: DATA %v\n", DATA_LOC, prog.Data)
	}

	return
}
