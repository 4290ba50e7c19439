package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/stackvm/cpu"
)

// loadSource reads a source file, normalized to upper case.
func loadSource(name string) (source string, err error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return
	}

	source = strings.ToUpper(string(data))
	return
}

// memoryRange is a lo:hi memory dump range flag.
type memoryRange struct {
	Lo, Hi int
	Valid  bool
}

func (mr *memoryRange) String() string {
	if !mr.Valid {
		return ""
	}
	return fmt.Sprintf("%d:%d", mr.Lo, mr.Hi)
}

func (mr *memoryRange) Set(text string) (err error) {
	lo_text, hi_text, found := strings.Cut(text, ":")
	if !found {
		err = fmt.Errorf("%v: expected lo:hi", text)
		return
	}

	lo, err := strconv.Atoi(lo_text)
	if err != nil {
		return
	}
	hi, err := strconv.Atoi(hi_text)
	if err != nil {
		return
	}

	if lo < 0 || hi > cpu.MEMORY_SIZE || lo >= hi {
		err = fmt.Errorf("%v: range outside of 0:%d", text, cpu.MEMORY_SIZE)
		return
	}

	mr.Lo, mr.Hi, mr.Valid = lo, hi, true
	return
}

// defineFlag collects NAME=VALUE assembler predefines.
type defineFlag map[string]int

func (df defineFlag) String() string {
	var defs []string
	for name, value := range df {
		defs = append(defs, fmt.Sprintf("%v=%d", name, value))
	}
	return strings.Join(defs, ",")
}

func (df defineFlag) Set(text string) (err error) {
	name, value_text, found := strings.Cut(text, "=")
	if !found || len(name) == 0 {
		err = fmt.Errorf("%v: expected NAME=VALUE", text)
		return
	}

	value, err := strconv.Atoi(value_text)
	if err != nil {
		return
	}

	df[strings.ToUpper(name)] = value
	return
}
