// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ezrec/stackvm/emulator"
	"github.com/ezrec/stackvm/translate"
)

// options are the command line settings shared by all modes.
type options struct {
	verbose bool
	listing bool
	strict  bool
	steps   int
	timeout time.Duration
	memory  memoryRange
	defines defineFlag
}

// newEmulator creates an emulator configured from the options.
func (opts *options) newEmulator() (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	emu.Verbose = opts.verbose
	emu.Strict = opts.strict
	emu.Limit = opts.steps
	for name, value := range opts.defines {
		emu.Predefine(name, value)
	}

	return
}

// runContext bounds a run by the timeout option.
func (opts *options) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.timeout > 0 {
		return context.WithTimeout(ctx, opts.timeout)
	}
	return context.WithCancel(ctx)
}

func main() {
	var step bool
	var lang string

	opts := &options{defines: defineFlag{}}

	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.BoolVar(&opts.listing, "l", false, "Print the assembled listing")
	flag.BoolVar(&step, "s", false, "Interactive step monitor on a single file")
	flag.BoolVar(&opts.strict, "strict", false, "Reject bad data, duplicate labels and data overlap")
	flag.IntVar(&opts.steps, "n", 0, "Instruction limit per run, 0 for none")
	flag.DurationVar(&opts.timeout, "t", 0, "Time limit per run, 0 for none")
	flag.Var(&opts.memory, "m", "Memory range lo:hi to dump after a run")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47 tag)")
	flag.Var(opts.defines, "D", "Expression predefine NAME=VALUE (repeatable)")

	flag.Parse()

	if len(lang) != 0 {
		translate.Use(lang)
	}

	if flag.NArg() == 0 {
		log.Fatalf("%v: no source files", os.Args[0])
	}

	ctx := context.Background()

	if step {
		if flag.NArg() != 1 {
			log.Fatalf("%v: -s takes a single source file: %v", os.Args[0], flag.Args())
		}
		err := monitor(ctx, opts, flag.Arg(0))
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
		return
	}

	results, err := runBatch(ctx, opts, flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	failed := false
	for _, res := range results {
		err = res.print(os.Stdout, opts)
		if err != nil {
			log.Fatal(err)
		}
		failed = failed || res.state.Report.Failed()
	}

	if failed {
		os.Exit(1)
	}
}
