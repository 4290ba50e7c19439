package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/stackvm/cpu"
	"github.com/ezrec/stackvm/emulator"
)

const monitorHelp = `s, step          execute one instruction
r, run           run to halt
x, reset         reset the session
m, memory lo:hi  dump memory
l, list          print the assembled listing
q, quit          leave the monitor
`

// console is a line oriented user interface.
type console struct {
	io.Writer
	readLine func() (string, error)
	cooked   func() (resume func()) // Leaves raw mode until resume is called.
}

// newConsole uses a raw mode terminal editor when stdin is a terminal.
// The returned restore function must be called before exit.
func newConsole() (con *console, restore func(), err error) {
	restore = func() {}
	cooked := func() func() { return func() {} }

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		scanner := bufio.NewScanner(os.Stdin)
		con = &console{
			Writer: os.Stdout,
			readLine: func() (line string, err error) {
				if !scanner.Scan() {
					err = scanner.Err()
					if err == nil {
						err = io.EOF
					}
					return
				}
				line = scanner.Text()
				return
			},
			cooked: cooked,
		}
		return
	}

	old_state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	restore = func() {
		_ = term.Restore(fd, old_state)
	}

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	terminal := term.NewTerminal(screen, "stackvm> ")
	con = &console{
		Writer:   terminal,
		readLine: terminal.ReadLine,
		cooked: func() func() {
			_ = term.Restore(fd, old_state)
			return func() {
				_, _ = term.MakeRaw(fd)
			}
		},
	}

	return
}

// monitor is an interactive stepper on a single source file.
func monitor(ctx context.Context, opts *options, name string) (err error) {
	source, err := loadSource(name)
	if err != nil {
		return
	}
	lines := strings.Split(source, "\n")

	con, restore, err := newConsole()
	if err != nil {
		return
	}
	defer restore()

	emu := opts.newEmulator()

	show := func(lineno int) {
		if lineno >= 0 && lineno < len(lines) {
			fmt.Fprintf(con, "%4d: %v\n", lineno+1, strings.TrimSpace(lines[lineno]))
		}
		state := emu.Snapshot()
		if state.Report.Failed() {
			fmt.Fprintf(con, "%v: %v\n", f("Error"), state.Report.Message())
		}
		fmt.Fprint(con, state.String())
	}

	for {
		line, rerr := con.readLine()
		if rerr == io.EOF {
			return
		}
		if rerr != nil {
			err = rerr
			return
		}

		words := strings.Fields(line)
		command := ""
		if len(words) != 0 {
			command = words[0]
		}

		switch command {
		case "", "s", "step":
			lineno, _ := emu.Step(ctx, source)
			show(lineno)
		case "r", "run":
			resume := con.cooked()
			fmt.Fprintln(con, f("Ctrl-C stops the run"))
			lineno := runTask(ctx, opts, emu, source)
			resume()
			show(lineno)
		case "x", "reset":
			emu.Reset()
			show(cpu.NO_LINE)
		case "m", "memory":
			mr := &memoryRange{Lo: cpu.DATA_LOC, Hi: cpu.DATA_LOC + 16}
			if len(words) > 1 {
				merr := mr.Set(words[1])
				if merr != nil {
					fmt.Fprintf(con, "%v\n", merr)
					continue
				}
			}
			state := emu.Snapshot()
			fmt.Fprint(con, state.Dump(mr.Lo, mr.Hi))
		case "l", "list":
			prog := emu.Program()
			if prog != nil {
				prog.Listing(con)
			}
		case "q", "quit":
			return
		default:
			fmt.Fprint(con, monitorHelp)
		}
	}
}

// runTask runs in the background until it completes or is interrupted,
// and returns the line of a runtime fault.
func runTask(ctx context.Context, opts *options, emu *emulator.Emulator, source string) (lineno int) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return waitTask(ctx, opts, emu, source)
}

// waitTask starts a run and cancels it when ctx is done.
func waitTask(ctx context.Context, opts *options, emu *emulator.Emulator, source string) (lineno int) {
	ctx, cancel := opts.runContext(ctx)
	defer cancel()

	task, err := emu.Start(context.WithoutCancel(ctx), emulator.MODE_RUN, source)
	if err != nil {
		return cpu.NO_LINE
	}

	interrupt := ctx.Done()
	for {
		select {
		case <-task.Done():
			_, _ = task.Wait()
			lineno = emu.Report().LineNo
			return
		case <-interrupt:
			task.Cancel()
			interrupt = nil
		case <-emu.Changed():
			if opts.verbose {
				state := emu.Snapshot()
				fmt.Fprintf(os.Stderr, "ticks: %d\r", state.Ticks)
			}
		}
	}
}
