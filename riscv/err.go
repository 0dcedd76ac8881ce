package riscv

import (
	"errors"

	"github.com/ezrec/rvmem/translate"
)

var f = translate.From

var (
	ErrOpcodeDecode    = errors.New(f("decode"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrImmediateRange  = errors.New(f("immediate out of 12-bit range"))
)

// ErrEncoding is an instruction word with no memory-access decoding.
type ErrEncoding uint32

func (err ErrEncoding) Error() string {
	return f("bad encoding 0x%08x", uint32(err))
}

func (err ErrEncoding) Is(target error) bool {
	return target == ErrOpcodeDecode
}
