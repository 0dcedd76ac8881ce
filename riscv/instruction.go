package riscv

import (
	"fmt"
)

const IMM_MASK = uint32(0xfff) // Raw 12-bit immediate field.

// Instruction is the decoded operand set of one memory-access
// instruction. Stores use Rs1, Rs2 and Imm; loads use Rd, Rs1 and Imm.
type Instruction struct {
	Opcode Opcode
	Rd     Register
	Rs1    Register
	Rs2    Register
	Imm    uint32 // Raw 12-bit immediate field, not sign-extended.
}

// NewStore creates a store of rs2 to imm(rs1).
func NewStore(op Opcode, rs1, rs2 Register, imm uint32) Instruction {
	return Instruction{Opcode: op, Rs1: rs1, Rs2: rs2, Imm: imm & IMM_MASK}
}

// NewLoad creates a load of imm(rs1) into rd.
func NewLoad(op Opcode, rd, rs1 Register, imm uint32) Instruction {
	return Instruction{Opcode: op, Rd: rd, Rs1: rs1, Imm: imm & IMM_MASK}
}

// SignExtend replicates bit (bits-1) of value into the upper bits.
func SignExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// Immediate returns the 12-bit immediate sign-extended to 32 bits.
func (inst Instruction) Immediate() uint32 {
	return SignExtend(inst.Imm&IMM_MASK, 12)
}

// Imm12 converts a signed offset into the raw 12-bit immediate field.
func Imm12(offset int64) (imm uint32, err error) {
	if offset < -2048 || offset > 2047 {
		err = ErrImmediateRange
		return
	}

	imm = uint32(offset) & IMM_MASK
	return
}

// Validate checks the opcode, registers and immediate field.
func (inst Instruction) Validate() (err error) {
	switch {
	case !inst.Opcode.Valid():
		err = ErrOpcodeInvalid
	case !inst.Rd.Valid(), !inst.Rs1.Valid(), !inst.Rs2.Valid():
		err = ErrRegisterInvalid
	case inst.Imm&^IMM_MASK != 0:
		err = ErrImmediateRange
	}
	return
}

// Decode decodes a 32-bit I-type load or S-type store encoding.
func Decode(word uint32) (inst Instruction, err error) {
	major := word & 0x7f
	rd := (word >> 7) & 0x1f
	funct3 := (word >> 12) & 0x7
	rs1 := (word >> 15) & 0x1f
	rs2 := (word >> 20) & 0x1f

	op, ok := lookupOpcode(major, funct3)
	if !ok {
		err = ErrEncoding(word)
		return
	}

	switch major {
	case MAJOR_LOAD:
		inst = NewLoad(op, Register(rd), Register(rs1), word>>20)
	case MAJOR_STORE:
		imm := ((word >> 25) << 5) | rd
		inst = NewStore(op, Register(rs1), Register(rs2), imm)
	}

	return
}

// Encode returns the 32-bit encoding of the instruction.
func (inst Instruction) Encode() (word uint32) {
	if !inst.Opcode.Valid() {
		return
	}

	info := opcodeTable[inst.Opcode]
	imm := inst.Imm & IMM_MASK
	rs1 := uint32(inst.Rs1) & 0x1f

	word = info.major | (info.funct3 << 12) | (rs1 << 15)
	if info.major == MAJOR_LOAD {
		word |= (uint32(inst.Rd) & 0x1f) << 7
		word |= imm << 20
	} else {
		word |= (imm & 0x1f) << 7
		word |= (uint32(inst.Rs2) & 0x1f) << 20
		word |= (imm >> 5) << 25
	}

	return
}

// String returns the assembly form, ie 'sh x2, -4(x1)'.
func (inst Instruction) String() string {
	offset := int32(inst.Immediate())
	if inst.Opcode.IsLoad() {
		return fmt.Sprintf("%v %v, %d(%v)", inst.Opcode, inst.Rd, offset, inst.Rs1)
	}
	return fmt.Sprintf("%v %v, %d(%v)", inst.Opcode, inst.Rs2, offset, inst.Rs1)
}
