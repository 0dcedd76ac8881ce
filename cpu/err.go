package cpu

import (
	"errors"

	"github.com/ezrec/rvmem/riscv"
	"github.com/ezrec/rvmem/translate"
)

var f = translate.From

var (
	ErrStepOrder       = errors.New(f("pipeline step out of order"))
	ErrOpcodeInvalid   = riscv.ErrOpcodeInvalid
	ErrRegisterInvalid = riscv.ErrRegisterInvalid
)
