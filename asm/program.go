package asm

import (
	"iter"

	"github.com/ezrec/rvmem/riscv"
)

// Opcode is one assembled instruction and its source location.
type Opcode struct {
	LineNo      int
	Words       []string
	Instruction riscv.Instruction
}

// Preset is a register value applied before execution.
type Preset struct {
	LineNo   int
	Register riscv.Register
	Value    uint32
}

// Segment is initial memory content at an address.
type Segment struct {
	LineNo  int
	Address uint32
	Data    []byte
}

// Program is the output of the assembler.
type Program struct {
	Opcodes  []Opcode
	Presets  []Preset
	Segments []Segment
}

// Debug returns the opcode at a program counter, or nil. Instructions are
// four bytes apart starting at zero.
func (prog *Program) Debug(pc uint32) (op *Opcode) {
	if pc%4 != 0 {
		return
	}

	index := int(pc / 4)
	if index < len(prog.Opcodes) {
		op = &prog.Opcodes[index]
	}

	return
}

// Binary returns the encoded instruction words.
func (prog *Program) Binary() (words []uint32) {
	for _, inst := range prog.Instructions() {
		words = append(words, inst.Encode())
	}

	return
}

// Instructions iterates over the program counter and instruction of each
// opcode.
func (prog *Program) Instructions() iter.Seq2[uint32, riscv.Instruction] {
	return func(yield func(pc uint32, inst riscv.Instruction) bool) {
		for n, op := range prog.Opcodes {
			if !yield(uint32(n)*4, op.Instruction) {
				return
			}
		}
	}
}
