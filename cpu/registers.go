package cpu

import (
	"github.com/ezrec/rvmem/riscv"
)

// Registers is the general-purpose register file.
//
// x0 is hardwired to zero: Write is the only way to change a register,
// and it discards writes to x0.
type Registers struct {
	value [riscv.REGISTER_COUNT]uint32
}

// Read returns the value of a register. reg must be Valid().
func (regs *Registers) Read(reg riscv.Register) uint32 {
	return regs.value[reg]
}

// Write sets the value of a register. Writes to x0 have no effect.
func (regs *Registers) Write(reg riscv.Register, value uint32) {
	if reg == riscv.X0 {
		return
	}
	regs.value[reg] = value
}

// Snapshot returns a copy of all register values, x0 first.
func (regs *Registers) Snapshot() [riscv.REGISTER_COUNT]uint32 {
	return regs.value
}

// Reset zeros all registers.
func (regs *Registers) Reset() {
	clear(regs.value[:])
}
