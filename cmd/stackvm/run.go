package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/stackvm/cpu"
	"github.com/ezrec/stackvm/emulator"
	"github.com/ezrec/stackvm/translate"
)

var f = translate.From

// result is the outcome of running one source file.
type result struct {
	name  string
	prog  *cpu.Program
	state emulator.State
	err   error
}

// runBatch runs every file on its own emulator, concurrently. Results are
// in argument order. Only unreadable files fail the batch.
func runBatch(ctx context.Context, opts *options, files []string) (results []result, err error) {
	results = make([]result, len(files))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for n, name := range files {
		group.Go(func() (err error) {
			source, err := loadSource(name)
			if err != nil {
				return
			}

			results[n] = runSource(ctx, opts, name, source)
			return
		})
	}

	err = group.Wait()
	return
}

// runSource compiles and runs a program to halt.
func runSource(ctx context.Context, opts *options, name string, source string) (res result) {
	ctx, cancel := opts.runContext(ctx)
	defer cancel()

	emu := opts.newEmulator()
	res.name = name
	res.err = emu.Run(ctx, source)
	res.prog = emu.Program()
	res.state = emu.Snapshot()

	return
}

// print writes the listing, error report and final state of a run.
func (res *result) print(out io.Writer, opts *options) (err error) {
	_, err = fmt.Fprintf(out, "%v:\n", res.name)
	if err != nil {
		return
	}

	if opts.listing && res.prog != nil {
		err = res.prog.Listing(out)
		if err != nil {
			return
		}
	}

	if res.state.Report.Failed() {
		_, err = fmt.Fprintf(out, "%v: %v\n", f("Error"), res.state.Report.Message())
		if err != nil {
			return
		}
		if opts.verbose && res.err != nil {
			_, err = fmt.Fprintf(out, "  %v\n", res.err)
			if err != nil {
				return
			}
		}
	}

	_, err = fmt.Fprint(out, res.state.String())
	if err != nil {
		return
	}

	if opts.memory.Valid {
		_, err = fmt.Fprint(out, res.state.Dump(opts.memory.Lo, opts.memory.Hi))
	}

	return
}
