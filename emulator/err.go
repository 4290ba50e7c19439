package emulator

import (
	"errors"

	"github.com/ezrec/stackvm/cpu"
	"github.com/ezrec/stackvm/translate"
)

var f = translate.From

var (
	ErrBusy = errors.New(f("emulator busy"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == cpu.NO_LINE {
		return err.Err.Error()
	}
	return f("line %d %v", err.LineNo+1, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// Report is the error state shown to a session observer. LineNo is a
// zero-based source line index, or cpu.NO_LINE. Label is only set for
// label errors.
type Report struct {
	Kind   cpu.ErrorKind
	LineNo int
	Label  string
}

// reportOf classifies an error from a compile or run.
func reportOf(err error) (report Report) {
	report = Report{Kind: cpu.ERROR_NONE, LineNo: cpu.NO_LINE}
	if err == nil {
		return
	}

	var err_compile *cpu.ErrCompile
	var err_runtime *ErrRuntime
	switch {
	case errors.As(err, &err_compile):
		report.Kind = err_compile.Kind
		report.LineNo = err_compile.LineNo
		report.Label = err_compile.Label
	case errors.As(err, &err_runtime):
		report.Kind = cpu.ERROR_RUNTIME
		report.LineNo = err_runtime.LineNo
	default:
		report.Kind = cpu.ERROR_RUNTIME
	}

	return
}

// Failed returns true if the report holds an error.
func (report Report) Failed() bool {
	return report.Kind != cpu.ERROR_NONE
}

// Message returns the localized text shown for the report.
func (report Report) Message() (text string) {
	switch report.Kind {
	case cpu.ERROR_NO_PROGRAM_START:
		text = f("START directive not found")
	case cpu.ERROR_DATA:
		text = f("Error in DATA block")
	case cpu.ERROR_LINE:
		text = f("Error on line %d", report.LineNo+1)
	case cpu.ERROR_WRONG_LABEL_NAME:
		text = f("Error on line %d: LABEL cannot be named %v", report.LineNo+1, report.Label)
	case cpu.ERROR_RUNTIME:
		text = f("Error during program execution")
	}

	return
}
