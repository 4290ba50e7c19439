package cpu

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Flags is the condition flags register.
type Flags struct {
	Equal   bool
	Less    bool
	Greater bool
	Carry   bool
}

// String returns the flags as a four letter mask, "ELGC" when all are set.
func (fl Flags) String() string {
	mask := []byte("----")
	for n, set := range []bool{fl.Equal, fl.Less, fl.Greater, fl.Carry} {
		if set {
			mask[n] = "ELGC"[n]
		}
	}
	return string(mask)
}

// Cpu is the simulation context for the stack machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Counter uint16              // Counter register (C).
	Ip      uint16              // Address of the next word to fetch.
	Ir      uint16              // Word at Ip. Display only.
	Flags   Flags               // Condition flags.
	Stack   Stack               // Operand stack.
	Memory  [MEMORY_SIZE]uint16 // Main memory.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Reset the CPU state.
// - Clears the registers, flags, stack and memory.
// - Zeros statistics counters.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Counter = 0
	cpu.Ip = 0
	cpu.Ir = 0
	cpu.Flags = Flags{}
	cpu.Stack.Reset()
	clear(cpu.Memory[:])
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"c", "ip", "ir", "sp", "flags", "top"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "c":
			strval = fmt.Sprintf("%04X (%d)", cpu.Counter, cpu.Counter)
		case "ip":
			strval = fmt.Sprintf("%04X (%d)", cpu.Ip, cpu.Ip)
		case "ir":
			strval = fmt.Sprintf("%04X %v", cpu.Ir, Opcode(cpu.Ir))
		case "sp":
			strval = fmt.Sprintf("%04X", cpu.Stack.Pointer())
		case "flags":
			strval = cpu.Flags.String()
		case "top":
			val, ok := cpu.Stack.Peek(0)
			if ok {
				strval = fmt.Sprintf("%04X (%d)", val, val)
			} else {
				strval = "----"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// SetMemory stores words into memory starting at addr.
func (cpu *Cpu) SetMemory(addr int, words ...uint16) (err error) {
	if addr < 0 || addr+len(words) > MEMORY_SIZE {
		err = ErrAddressInvalid
		return
	}

	copy(cpu.Memory[addr:], words)
	cpu.Ir = cpu.Memory[cpu.Ip%MEMORY_SIZE]

	return
}

// Load places an assembled program in memory: the data segment at
// DATA_LOC, then the instruction words at address zero. Instruction
// words win where the two regions overlap.
func (cpu *Cpu) Load(prog *Program) (err error) {
	err = cpu.SetMemory(DATA_LOC, prog.Data...)
	if err != nil {
		return
	}

	err = cpu.SetMemory(0, prog.Binary()...)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d words of code, %d words of data", len(prog.Statements), len(prog.Data))
	}

	return
}

// CanExecute returns true unless the word at IP is the NULL halt sentinel.
// An IP outside of memory is executable, and faults on fetch.
func (cpu *Cpu) CanExecute() bool {
	if int(cpu.Ip) >= MEMORY_SIZE {
		return true
	}

	return cpu.Memory[cpu.Ip] != uint16(OP_NULL)
}

// read fetches a memory word.
func (cpu *Cpu) read(addr uint16) (value uint16, err error) {
	if int(addr) >= MEMORY_SIZE {
		err = ErrAddressInvalid
		return
	}

	value = cpu.Memory[addr]
	return
}

// write stores a memory word.
func (cpu *Cpu) write(addr uint16, value uint16) (err error) {
	if int(addr) >= MEMORY_SIZE {
		err = ErrAddressInvalid
		return
	}

	cpu.Memory[addr] = value
	return
}

func (cpu *Cpu) push(value uint16) (err error) {
	if !cpu.Stack.Push(value) {
		err = ErrStackFull
	}
	return
}

func (cpu *Cpu) pop() (value uint16, err error) {
	value, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackEmpty
	}
	return
}

func (cpu *Cpu) peek(n int) (value uint16, err error) {
	value, ok := cpu.Stack.Peek(n)
	if !ok {
		err = ErrStackEmpty
	}
	return
}

// need checks that the stack holds at least n entries.
func (cpu *Cpu) need(n int) (err error) {
	if cpu.Stack.Depth() < n {
		err = ErrStackEmpty
	}
	return
}

// compare sets the equal, less and greater flags for a against b.
// The carry flag is preserved.
func (cpu *Cpu) compare(a, b uint16) {
	cpu.Flags.Equal = a == b
	cpu.Flags.Less = a < b
	cpu.Flags.Greater = a > b
}

// Fetch decodes the opcode at IP.
func (cpu *Cpu) Fetch() (op Opcode, err error) {
	word, err := cpu.read(cpu.Ip)
	if err != nil {
		return
	}

	op, err = Decode(word)
	return
}

// Step executes a single instruction, then loads IR with the word at the
// new IP. On error, IP is left at the faulting instruction.
func (cpu *Cpu) Step() (err error) {
	op, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(op)
	if err != nil {
		return
	}

	if int(cpu.Ip) < MEMORY_SIZE {
		cpu.Ir = cpu.Memory[cpu.Ip]
	}

	return
}

// Run executes until the word at IP is NULL, an instruction faults, the
// context is done, or limit instructions have executed. A limit of zero
// does not bound the run.
func (cpu *Cpu) Run(ctx context.Context, limit int) (err error) {
	for n := 0; cpu.CanExecute(); n++ {
		if limit > 0 && n >= limit {
			err = ErrStepLimit
			return
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		err = cpu.Step()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction located at IP.
func (cpu *Cpu) Execute(op Opcode) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(op), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%04d: %-5v c:%04x sp:%04x %v", cpu.Ip, op, cpu.Counter, cpu.Stack.Pointer(), cpu.Flags)
	}

	next_ip := cpu.Ip + 1

	switch op {
	case OP_NULL:
		// Halt sentinel. Does not advance.
		next_ip = cpu.Ip
	case OP_PUSH:
		var value uint16
		value, err = cpu.read(cpu.Ip + 1)
		if err != nil {
			return
		}
		err = cpu.push(value)
		next_ip = cpu.Ip + 2
	case OP_READ:
		var addr, value uint16
		addr, err = cpu.peek(0)
		if err != nil {
			return
		}
		value, err = cpu.read(addr)
		if err != nil {
			return
		}
		cpu.Stack.Poke(0, value)
	case OP_WRITE:
		err = cpu.need(2)
		if err != nil {
			return
		}
		addr, _ := cpu.Stack.Peek(0)
		value, _ := cpu.Stack.Peek(1)
		err = cpu.write(addr, value)
		if err != nil {
			return
		}
		cpu.Stack.Pop()
		cpu.Stack.Pop()
	case OP_DUP:
		var value uint16
		value, err = cpu.peek(0)
		if err != nil {
			return
		}
		err = cpu.push(value)
	case OP_DROP:
		_, err = cpu.pop()
	case OP_LDC:
		var value uint16
		value, err = cpu.pop()
		if err != nil {
			return
		}
		cpu.Counter = value
	case OP_STC:
		err = cpu.push(cpu.Counter)
	case OP_CMP:
		err = cpu.need(2)
		if err != nil {
			return
		}
		a, _ := cpu.Stack.Peek(0)
		b, _ := cpu.Stack.Peek(1)
		cpu.compare(a, b)
	case OP_INC, OP_DEC:
		var value uint16
		value, err = cpu.peek(0)
		if err != nil {
			return
		}
		if op == OP_INC {
			value++
		} else {
			value--
		}
		cpu.Stack.Poke(0, value)
	case OP_INCC:
		cpu.Counter++
	case OP_DECC:
		cpu.Counter--
	case OP_CMPC:
		var value uint16
		value, err = cpu.peek(0)
		if err != nil {
			return
		}
		cpu.compare(cpu.Counter, value)
	case OP_ADD, OP_ADDC:
		err = cpu.need(2)
		if err != nil {
			return
		}
		a, _ := cpu.Stack.Pop()
		b, _ := cpu.Stack.Pop()
		sum := uint32(a) + uint32(b)
		if op == OP_ADDC && cpu.Flags.Carry {
			sum++
		}
		cpu.Flags.Carry = sum > WORD_MASK
		err = cpu.push(uint16(sum))
	case OP_MUL:
		err = cpu.need(2)
		if err != nil {
			return
		}
		a, _ := cpu.Stack.Pop()
		b, _ := cpu.Stack.Pop()
		product := uint32(a) * uint32(b)
		high := uint16(product >> 16)
		cpu.Flags.Carry = high != 0
		cpu.Stack.Push(high)
		cpu.Stack.Push(uint16(product))
	case OP_SWAP:
		err = cpu.need(2)
		if err != nil {
			return
		}
		a, _ := cpu.Stack.Peek(0)
		b, _ := cpu.Stack.Peek(1)
		cpu.Stack.Poke(0, b)
		cpu.Stack.Poke(1, a)
	case OP_ROR, OP_ROL:
		err = cpu.need(3)
		if err != nil {
			return
		}
		a, _ := cpu.Stack.Pop()
		b, _ := cpu.Stack.Pop()
		c, _ := cpu.Stack.Pop()
		if op == OP_ROR {
			cpu.Stack.Push(b)
			cpu.Stack.Push(a)
			cpu.Stack.Push(c)
		} else {
			cpu.Stack.Push(a)
			cpu.Stack.Push(c)
			cpu.Stack.Push(b)
		}
	case OP_JE, OP_JNE, OP_JL, OP_JG, OP_JGE, OP_JLE, OP_JMP:
		if !op.Taken(cpu.Flags) {
			next_ip = cpu.Ip + 2
			break
		}
		next_ip, err = cpu.read(cpu.Ip + 1)
	default:
		err = ErrOpcodeInvalid
	}

	if err != nil {
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}
