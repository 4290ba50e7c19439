// Package cpu implements the stack machine and assembler for the stackvm system.
//
// The machine consists of a counter register (C), an instruction pointer (IP),
// a display-only instruction register (IR), a 1024 word operand stack addressed
// by a 16-bit stack pointer (SP), four condition flags, and 4096 words of memory.
// Execution halts when the word at IP is the NULL opcode.
//
// The assembler is a two pass compiler for a line oriented mnemonic dialect
// with a DATA block loaded at DATA_LOC and a START directive that begins the
// instruction region. Labels, decimal literals and compile-time $(...)
// expressions resolve to single memory words.
package cpu
