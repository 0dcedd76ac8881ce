package emulator

import (
	"errors"

	"github.com/ezrec/rvmem/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program loaded"))
)

// ErrRuntime indicates the location of a runtime fault.
type ErrRuntime struct {
	LineNo int
	Pc     uint32
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %v pc 0x%08x %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrSegment indicates a data segment that could not be loaded.
type ErrSegment struct {
	LineNo  int
	Address uint32
	Err     error
}

func (err *ErrSegment) Error() string {
	return f("line %v segment 0x%08x %v", err.LineNo, err.Address, err.Err)
}

func (err *ErrSegment) Unwrap() error {
	return err.Err
}
