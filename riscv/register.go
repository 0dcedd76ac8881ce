package riscv

import (
	"fmt"
	"strconv"
	"strings"
)

// Register is a general-purpose register index, x0 through x31.
type Register uint8

const (
	X0 = Register(iota)
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	X31
)

const REGISTER_COUNT = 32

// abiName is the calling convention name of each register.
var abiName = [REGISTER_COUNT]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Valid returns true for x0 through x31.
func (reg Register) Valid() bool {
	return reg < REGISTER_COUNT
}

// Abi returns the calling convention name, ie 'sp' for x2.
func (reg Register) Abi() string {
	if !reg.Valid() {
		return reg.String()
	}
	return abiName[reg]
}

func (reg Register) String() string {
	return fmt.Sprintf("x%d", uint8(reg))
}

// ParseRegister accepts 'xN', an ABI name, or 'fp' as an alias of s0.
func ParseRegister(name string) (reg Register, err error) {
	name = strings.ToLower(name)

	if name == "fp" {
		reg = X8
		return
	}

	for n, abi := range abiName {
		if name == abi {
			reg = Register(n)
			return
		}
	}

	digits, ok := strings.CutPrefix(name, "x")
	index, perr := strconv.Atoi(digits)
	if !ok || perr != nil || index < 0 || index >= REGISTER_COUNT || strconv.Itoa(index) != digits {
		err = ErrRegisterInvalid
		return
	}

	reg = Register(index)
	return
}
