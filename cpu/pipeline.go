package cpu

import (
	"fmt"

	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

// State is the position of an instruction in its pipeline.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_DECODED      = State(0) // decoded
	STATE_MEMORY       = State(1) // memory
	STATE_WRITTEN_BACK = State(2) // written-back
)

// WriteBack reports the register committed by an instruction.
// A Register of x0 means no register was updated.
type WriteBack struct {
	Register riscv.Register
	Value    uint32
}

// NoWriteBack is the report of an instruction that updated no register.
var NoWriteBack = WriteBack{}

// Updated returns true if a register was changed.
func (wb WriteBack) Updated() bool {
	return wb.Register != riscv.X0
}

func (wb WriteBack) String() string {
	if !wb.Updated() {
		return "-"
	}
	return fmt.Sprintf("%v = 0x%08x", wb.Register, wb.Value)
}

// Executor is the pipeline of one decoded memory-access instruction.
//
// The memory step an instruction does not use is a no-op that always
// succeeds. Every instruction implements its own WriteBack.
type Executor interface {
	State() State
	MemoryRead(mem memory.Memory) (acc memory.Access, err error)
	MemoryWrite(mem memory.Memory) (acc memory.Access, err error)
	WriteBack(regs *Registers) (wb WriteBack, err error)
}

// pipeline provides the state and the no-op MemoryRead and MemoryWrite.
type pipeline struct {
	state State
}

func (pl *pipeline) State() State {
	return pl.state
}

func (pl *pipeline) MemoryRead(mem memory.Memory) (acc memory.Access, err error) {
	return
}

func (pl *pipeline) MemoryWrite(mem memory.Memory) (acc memory.Access, err error) {
	return
}

// advance moves from one state to the next, or fails with ErrStepOrder.
func (pl *pipeline) advance(from, to State) (err error) {
	if pl.state != from {
		err = ErrStepOrder
		return
	}
	pl.state = to
	return
}
