package cpu

import (
	"fmt"

	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

// AccessKind is the direction of an instruction's memory access.
type AccessKind int

//go:generate go tool stringer -linecomment -type=AccessKind
const (
	ACCESS_LOAD  = AccessKind(0) // load
	ACCESS_STORE = AccessKind(1) // store
)

// decoder builds the executor for one opcode.
type decoder func(inst riscv.Instruction, regs *Registers) Executor

func storeOf(width memory.Width) decoder {
	return func(inst riscv.Instruction, regs *Registers) Executor {
		return NewStore(inst, width, regs)
	}
}

func loadOf(width memory.Width, signed bool) decoder {
	return func(inst riscv.Instruction, regs *Registers) Executor {
		return NewLoad(inst, width, signed, regs)
	}
}

// dispatch is the closed set of memory-access instruction variants.
var dispatch = map[riscv.Opcode]decoder{
	riscv.OP_SB:  storeOf(memory.WIDTH_BYTE),
	riscv.OP_SH:  storeOf(memory.WIDTH_HALFWORD),
	riscv.OP_SW:  storeOf(memory.WIDTH_WORD),
	riscv.OP_LB:  loadOf(memory.WIDTH_BYTE, true),
	riscv.OP_LH:  loadOf(memory.WIDTH_HALFWORD, true),
	riscv.OP_LW:  loadOf(memory.WIDTH_WORD, true),
	riscv.OP_LBU: loadOf(memory.WIDTH_BYTE, false),
	riscv.OP_LHU: loadOf(memory.WIDTH_HALFWORD, false),
}

// Decode selects the variant for an instruction and resolves its operands
// against the register file.
func Decode(inst riscv.Instruction, regs *Registers) (exec Executor, err error) {
	err = inst.Validate()
	if err != nil {
		return
	}

	dec, ok := dispatch[inst.Opcode]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	exec = dec(inst, regs)
	return
}

// Result is the observable outcome of one executed instruction.
type Result struct {
	Kind      AccessKind
	Access    memory.Access
	WriteBack WriteBack
}

// Cpu is the emulated CPU state owned by one run.
type Cpu struct {
	Registers Registers // Register bank.
}

// NewCpu creates a CPU with all registers zeroed.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	return
}

// Reset zeros the register bank.
func (cpu *Cpu) Reset() {
	cpu.Registers.Reset()
}

// Execute runs one memory-access instruction to completion.
// A memory fault is returned unchanged, with no register modified.
func (cpu *Cpu) Execute(inst riscv.Instruction, mem memory.Memory) (res Result, err error) {
	exec, err := Decode(inst, &cpu.Registers)
	if err != nil {
		return
	}

	if inst.Opcode.IsStore() {
		res.Kind = ACCESS_STORE
		res.Access, err = exec.MemoryWrite(mem)
	} else {
		res.Kind = ACCESS_LOAD
		res.Access, err = exec.MemoryRead(mem)
	}
	if err != nil {
		res = Result{}
		return
	}

	res.WriteBack, err = exec.WriteBack(&cpu.Registers)
	return
}

// String returns the register bank, four registers per line.
func (cpu *Cpu) String() (text string) {
	values := cpu.Registers.Snapshot()
	for n, val := range values {
		reg := riscv.Register(n)
		text += fmt.Sprintf("%4s/%-4s %04X_%04X", reg, reg.Abi(), val>>16, val&0xffff)
		if n%4 == 3 {
			text += "\n"
		} else {
			text += "  "
		}
	}

	return
}
