package emulator

import (
	"context"
	"log"

	"github.com/ezrec/stackvm/cpu"
)

// Mode selects the work done by a background task.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_RUN  = Mode(0) // run
	MODE_STEP = Mode(1) // step
)

// Task is a handle to run or step work executing in the background.
type Task struct {
	Mode Mode

	cancel context.CancelFunc
	done   chan struct{}
	lineno int
	err    error
}

// Cancel requests that the task stop before its next instruction.
func (task *Task) Cancel() {
	task.cancel()
}

// Done returns a channel that is closed when the task completes.
func (task *Task) Done() <-chan struct{} {
	return task.done
}

// Wait blocks until the task completes. For MODE_STEP, lineno is the
// reported source line.
func (task *Task) Wait() (lineno int, err error) {
	<-task.done

	return task.lineno, task.err
}

// Start dispatches run or step work to a background goroutine. Only one
// piece of work may be in flight, otherwise ErrBusy is returned.
func (emu *Emulator) Start(ctx context.Context, mode Mode, source string) (task *Task, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if !emu.slot.TryAcquire(1) {
		err = ErrBusy
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	task = &Task{
		Mode:   mode,
		cancel: cancel,
		done:   make(chan struct{}),
		lineno: emu.lineno,
	}
	emu.task = task

	if emu.Verbose {
		log.Printf("emulator: start %v", mode)
	}

	go func() {
		defer close(task.done)
		defer cancel()
		defer emu.finish(task)

		switch mode {
		case MODE_RUN:
			task.err = emu.run(ctx, source)
			task.lineno = cpu.NO_LINE
		case MODE_STEP:
			task.lineno, task.err = emu.step(ctx, source)
		}
	}()

	return
}

// finish detaches a completed task and frees the work slot.
func (emu *Emulator) finish(task *Task) {
	emu.mutex.Lock()
	if emu.task == task {
		emu.task = nil
	}
	emu.mutex.Unlock()

	emu.slot.Release(1)
}
