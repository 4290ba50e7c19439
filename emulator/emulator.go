// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ezrec/stackvm/cpu"
)

const (
	RUN_BURST = 256 // Instructions executed per state lock during a run.
)

// Emulator is a compile and execute session on a single CPU.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.
	Strict  bool // If set, the assembler runs in strict mode.
	Limit   int  // If non-zero, the maximum instructions for a single run.

	mutex     sync.Mutex
	machine   *cpu.Cpu     // CPU simulation.
	program   *cpu.Program // Currently loaded program listing.
	compiling bool
	active    bool // Session is resumable while the CPU can execute.
	lineno    int  // Source line of the instruction at IP.
	report    Report

	predefine map[string]int
	slot      *semaphore.Weighted
	changed   chan struct{}
	task      *Task
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		machine: cpu.NewCpu(),
		slot:    semaphore.NewWeighted(1),
		changed: make(chan struct{}, 1),
		lineno:  cpu.NO_LINE,
		report:  reportOf(nil),
	}

	return
}

// Predefine sets an assembler expression symbol for later compiles.
func (emu *Emulator) Predefine(name string, value int) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.predefine == nil {
		emu.predefine = make(map[string]int)
	}
	emu.predefine[name] = value
}

// Changed returns a channel signalled after every state change.
// Signals coalesce, so an observer should call Snapshot on receipt.
func (emu *Emulator) Changed() <-chan struct{} {
	return emu.changed
}

func (emu *Emulator) notify() {
	select {
	case emu.changed <- struct{}{}:
	default:
	}
}

// Program returns the loaded program listing, or nil.
func (emu *Emulator) Program() *cpu.Program {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.program
}

// LineNo returns the source line of the current instruction, or cpu.NO_LINE.
func (emu *Emulator) LineNo() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.lineno
}

// Report returns the last compile or runtime error report.
func (emu *Emulator) Report() Report {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.report
}

// Reset discards the CPU state, the program and the error state.
// A background task is cancelled and waited for first.
func (emu *Emulator) Reset() {
	for {
		emu.mutex.Lock()
		if emu.slot.TryAcquire(1) {
			break
		}
		task := emu.task
		emu.mutex.Unlock()

		if task != nil {
			task.Cancel()
			<-task.Done()
			continue
		}

		// A foreground Run or Step holds the slot.
		_ = emu.slot.Acquire(context.Background(), 1)
		emu.mutex.Lock()
		break
	}

	emu.reset()
	emu.mutex.Unlock()
	emu.slot.Release(1)

	emu.notify()
}

// reset must be called with the mutex held.
func (emu *Emulator) reset() {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	emu.machine.Verbose = emu.Verbose
	emu.machine.Reset()
	emu.program = nil
	emu.compiling = false
	emu.active = false
	emu.lineno = cpu.NO_LINE
	emu.report = reportOf(nil)
}

// resumable returns true if a paused session can continue.
func (emu *Emulator) resumable() bool {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.active && emu.machine.CanExecute()
}

// compile resets the session, then assembles and loads source.
func (emu *Emulator) compile(source string) (err error) {
	emu.mutex.Lock()
	emu.reset()
	emu.compiling = true
	asm := &cpu.Assembler{Verbose: emu.Verbose, Strict: emu.Strict}
	for name, value := range emu.predefine {
		asm.Predefine(name, value)
	}
	emu.mutex.Unlock()
	emu.notify()

	prog, err := asm.ParseLines(strings.Split(source, "\n"))

	emu.mutex.Lock()
	defer emu.notify()
	defer emu.mutex.Unlock()

	emu.compiling = false
	if err == nil {
		err = emu.machine.Load(prog)
		if err != nil {
			err = &cpu.ErrCompile{Kind: cpu.ERROR_DATA, LineNo: cpu.NO_LINE, Err: err}
		}
	}
	if err != nil {
		if emu.Verbose {
			log.Printf("emulator: compile: %v", err)
		}
		emu.report = reportOf(err)
		return
	}

	emu.program = prog
	emu.active = true
	emu.lineno = prog.LineNo(emu.machine.Ip)

	return
}

// Run resumes a paused session, or compiles source and runs it until it
// halts. The session is no longer resumable afterwards.
func (emu *Emulator) Run(ctx context.Context, source string) (err error) {
	err = emu.slot.Acquire(ctx, 1)
	if err != nil {
		return
	}
	defer emu.slot.Release(1)

	return emu.run(ctx, source)
}

func (emu *Emulator) run(ctx context.Context, source string) (err error) {
	if !emu.resumable() {
		err = emu.compile(source)
		if err != nil {
			return
		}
	}

	defer func() {
		emu.mutex.Lock()
		emu.active = false
		emu.lineno = cpu.NO_LINE
		emu.mutex.Unlock()
		emu.notify()
	}()

	steps := 0
	for {
		burst := RUN_BURST
		if emu.Limit > 0 {
			burst = min(burst, emu.Limit-steps)
		}

		emu.mutex.Lock()
		ticks := emu.machine.Ticks
		err = emu.machine.Run(ctx, burst)
		steps += emu.machine.Ticks - ticks
		if errors.Is(err, cpu.ErrStepLimit) && (emu.Limit == 0 || steps < emu.Limit) {
			err = nil
			emu.mutex.Unlock()
			emu.notify()
			continue
		}
		if err != nil {
			err = &ErrRuntime{LineNo: emu.program.LineNo(emu.machine.Ip), Err: err}
			emu.report = reportOf(err)
			if emu.Verbose {
				log.Printf("emulator: run: %v", err)
			}
		}
		emu.mutex.Unlock()

		return
	}
}

// Step compiles source when no session is resumable, and reports the
// first instruction's line without executing it. Otherwise it executes one
// instruction and reports the line of the next one.
func (emu *Emulator) Step(ctx context.Context, source string) (lineno int, err error) {
	err = emu.slot.Acquire(ctx, 1)
	if err != nil {
		lineno = cpu.NO_LINE
		return
	}
	defer emu.slot.Release(1)

	return emu.step(ctx, source)
}

func (emu *Emulator) step(ctx context.Context, source string) (lineno int, err error) {
	if !emu.resumable() {
		err = emu.compile(source)
		lineno = emu.LineNo()
		return
	}

	emu.mutex.Lock()
	defer emu.notify()
	defer emu.mutex.Unlock()

	err = ctx.Err()
	if err == nil {
		err = emu.machine.Step()
	}
	lineno = emu.program.LineNo(emu.machine.Ip)
	emu.lineno = lineno

	if err != nil {
		err = &ErrRuntime{LineNo: lineno, Err: err}
		emu.report = reportOf(err)
		emu.active = false
		if emu.Verbose {
			log.Printf("emulator: step: %v", err)
		}
	}

	return
}
