package riscv

import (
	"fmt"
)

// Major opcodes (bits 6:0) of the memory-access instructions.
const (
	MAJOR_LOAD  = uint32(0b0000011)
	MAJOR_STORE = uint32(0b0100011)
)

// Opcode identifies one memory-access instruction.
type Opcode int

const (
	OP_LB  = Opcode(0) // lb
	OP_LH  = Opcode(1) // lh
	OP_LW  = Opcode(2) // lw
	OP_LBU = Opcode(3) // lbu
	OP_LHU = Opcode(4) // lhu
	OP_SB  = Opcode(5) // sb
	OP_SH  = Opcode(6) // sh
	OP_SW  = Opcode(7) // sw
)

type opcodeInfo struct {
	name   string
	major  uint32
	funct3 uint32
}

var opcodeTable = [...]opcodeInfo{
	OP_LB:  {"lb", MAJOR_LOAD, 0b000},
	OP_LH:  {"lh", MAJOR_LOAD, 0b001},
	OP_LW:  {"lw", MAJOR_LOAD, 0b010},
	OP_LBU: {"lbu", MAJOR_LOAD, 0b100},
	OP_LHU: {"lhu", MAJOR_LOAD, 0b101},
	OP_SB:  {"sb", MAJOR_STORE, 0b000},
	OP_SH:  {"sh", MAJOR_STORE, 0b001},
	OP_SW:  {"sw", MAJOR_STORE, 0b010},
}

// Opcodes lists every memory-access opcode in encoding order.
var Opcodes = []Opcode{OP_LB, OP_LH, OP_LW, OP_LBU, OP_LHU, OP_SB, OP_SH, OP_SW}

// Valid returns true if the opcode is a known memory-access instruction.
func (op Opcode) Valid() bool {
	return op >= 0 && int(op) < len(opcodeTable)
}

// IsLoad returns true for the load family.
func (op Opcode) IsLoad() bool {
	return op.Valid() && opcodeTable[op].major == MAJOR_LOAD
}

// IsStore returns true for the store family.
func (op Opcode) IsStore() bool {
	return op.Valid() && opcodeTable[op].major == MAJOR_STORE
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return opcodeTable[op].name
}

// ParseOpcode returns the opcode for a mnemonic.
func ParseOpcode(name string) (op Opcode, err error) {
	for n, info := range opcodeTable {
		if info.name == name {
			op = Opcode(n)
			return
		}
	}

	err = ErrOpcodeInvalid
	return
}

// lookupOpcode finds the opcode for the major and funct3 fields.
func lookupOpcode(major, funct3 uint32) (op Opcode, ok bool) {
	for n, info := range opcodeTable {
		if info.major == major && info.funct3 == funct3 {
			return Opcode(n), true
		}
	}
	return
}
