package cpu

import (
	"fmt"

	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

// Load reads Width bytes at imm(rs1), extends them to 32 bits and writes
// the result to rd.
type Load struct {
	pipeline

	Width  memory.Width
	Signed bool
	Rd     riscv.Register
	Rs1    riscv.Register
	Base   uint32 // Value of rs1 at decode.
	Offset uint32 // Sign-extended immediate.

	value uint32 // Extended value, once read.
}

var _ Executor = (*Load)(nil)

// NewLoad resolves the operands of a load of the given width.
func NewLoad(inst riscv.Instruction, width memory.Width, signed bool, regs *Registers) *Load {
	return &Load{
		Width:  width,
		Signed: signed,
		Rd:     inst.Rd,
		Rs1:    inst.Rs1,
		Base:   regs.Read(inst.Rs1),
		Offset: inst.Immediate(),
	}
}

// MemoryRead computes the effective address, reads and extends the value.
// The returned access carries the extended value. On error the load
// remains decoded.
func (ld *Load) MemoryRead(mem memory.Memory) (acc memory.Access, err error) {
	if ld.state != STATE_DECODED {
		err = ErrStepOrder
		return
	}

	address, err := memory.EffectiveAddress(ld.Base, ld.Offset)
	if err != nil {
		return
	}

	acc, err = mem.Read(address, ld.Width)
	if err != nil {
		return
	}

	ld.value = ld.Width.Extend(acc.Value, ld.Signed)
	acc.Value = ld.value

	ld.state = STATE_MEMORY
	return
}

// WriteBack commits the loaded value to rd.
func (ld *Load) WriteBack(regs *Registers) (wb WriteBack, err error) {
	err = ld.advance(STATE_MEMORY, STATE_WRITTEN_BACK)
	if err != nil {
		return
	}

	regs.Write(ld.Rd, ld.value)
	if ld.Rd != riscv.X0 {
		wb = WriteBack{Register: ld.Rd, Value: ld.value}
	}
	return
}

func (ld *Load) String() string {
	suffix := ""
	if !ld.Signed {
		suffix = "u"
	}
	return fmt.Sprintf("load.%v%v %v, %d(%v)", ld.Width, suffix, ld.Rd, int32(ld.Offset), ld.Rs1)
}
