package emulator

import (
	"fmt"
	"slices"

	"github.com/ezrec/stackvm/cpu"
)

// State is a point in time copy of the session, for observers.
type State struct {
	Counter uint16
	Sp      uint16
	Ip      uint16
	Ir      uint16
	Flags   cpu.Flags
	Stack   []uint16 // Live stack entries, bottom first.
	Memory  []uint16

	LineNo    int // Source line of the instruction at IP, or cpu.NO_LINE.
	Compiling bool
	Active    bool
	Report    Report
	Ticks     int
}

// Snapshot copies the session state.
func (emu *Emulator) Snapshot() (state State) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	machine := emu.machine
	state = State{
		Counter:   machine.Counter,
		Sp:        machine.Stack.Pointer(),
		Ip:        machine.Ip,
		Ir:        machine.Ir,
		Flags:     machine.Flags,
		Stack:     machine.Stack.Values(),
		Memory:    slices.Clone(machine.Memory[:]),
		LineNo:    emu.lineno,
		Compiling: emu.compiling,
		Active:    emu.active,
		Report:    emu.report,
		Ticks:     machine.Ticks,
	}

	return
}

// Top returns the top of stack entry.
func (state State) Top() (value uint16, ok bool) {
	if len(state.Stack) == 0 {
		return
	}

	return state.Stack[len(state.Stack)-1], true
}

// String returns the register dump and session status.
func (state State) String() (text string) {
	text += fmt.Sprintf("% 5s: %04X (%d)\n", "c", state.Counter, state.Counter)
	text += fmt.Sprintf("% 5s: %04X (%d)\n", "ip", state.Ip, state.Ip)
	text += fmt.Sprintf("% 5s: %04X %v\n", "ir", state.Ir, cpu.Opcode(state.Ir))
	text += fmt.Sprintf("% 5s: %04X\n", "sp", state.Sp)
	text += fmt.Sprintf("% 5s: %v\n", "flags", state.Flags)
	text += fmt.Sprintf("% 5s: %v\n", "stack", state.Stack)
	if state.LineNo != cpu.NO_LINE {
		text += fmt.Sprintf("% 5s: %d\n", "line", state.LineNo+1)
	}
	if state.Report.Failed() {
		text += fmt.Sprintf("% 5s: %v\n", "error", state.Report.Message())
	}

	return
}

// Dump formats memory words lo through hi-1, eight to a row.
func (state State) Dump(lo, hi int) (text string) {
	lo = max(lo, 0)
	hi = min(hi, len(state.Memory))
	for addr := lo; addr < hi; addr += 8 {
		text += fmt.Sprintf("%04d:", addr)
		for _, word := range state.Memory[addr:min(addr+8, hi)] {
			text += fmt.Sprintf(" %04x", word)
		}
		text += "\n"
	}

	return
}
