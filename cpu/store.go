package cpu

import (
	"fmt"

	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

// Store writes the low Width bytes of rs2 to imm(rs1).
type Store struct {
	pipeline

	Width  memory.Width
	Rs1    riscv.Register
	Rs2    riscv.Register
	Base   uint32 // Value of rs1 at decode.
	Value  uint32 // Value of rs2 at decode.
	Offset uint32 // Sign-extended immediate.
}

var _ Executor = (*Store)(nil)

// NewStore resolves the operands of a store of the given width.
func NewStore(inst riscv.Instruction, width memory.Width, regs *Registers) *Store {
	return &Store{
		Width:  width,
		Rs1:    inst.Rs1,
		Rs2:    inst.Rs2,
		Base:   regs.Read(inst.Rs1),
		Value:  regs.Read(inst.Rs2),
		Offset: inst.Immediate(),
	}
}

// MemoryWrite computes the effective address and writes the truncated
// value. On error the store remains decoded.
func (st *Store) MemoryWrite(mem memory.Memory) (acc memory.Access, err error) {
	if st.state != STATE_DECODED {
		err = ErrStepOrder
		return
	}

	address, err := memory.EffectiveAddress(st.Base, st.Offset)
	if err != nil {
		return
	}

	acc, err = mem.Write(address, st.Width, st.Width.Truncate(st.Value))
	if err != nil {
		return
	}

	st.state = STATE_MEMORY
	return
}

// WriteBack commits nothing; a store never updates a register.
func (st *Store) WriteBack(regs *Registers) (wb WriteBack, err error) {
	err = st.advance(STATE_MEMORY, STATE_WRITTEN_BACK)
	return
}

func (st *Store) String() string {
	return fmt.Sprintf("store.%v %v, %d(%v)", st.Width, st.Rs2, int32(st.Offset), st.Rs1)
}
