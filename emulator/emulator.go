// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/rvmem/asm"
	"github.com/ezrec/rvmem/cpu"
	"github.com/ezrec/rvmem/internal"
	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

const (
	INSTRUCTION_SIZE = 4 // Bytes per instruction.
)

var _emulator_defines = map[string]string{
	"INSTRUCTION_SIZE": fmt.Sprintf("%v", INSTRUCTION_SIZE),
}

// Step is the trace record of one executed instruction.
type Step struct {
	Pc          uint32
	LineNo      int
	Instruction riscv.Instruction
	Kind        cpu.AccessKind
	Access      memory.Access
	WriteBack   cpu.WriteBack
}

func (st Step) String() string {
	return fmt.Sprintf("%08x: %-24v %-5v %v  %v", st.Pc, st.Instruction, st.Kind, st.Access, st.WriteBack)
}

// Emulator state. CPU + memory + program.
type Emulator struct {
	Verbose bool           // If set, logs every step.
	Logger  *logrus.Logger // Destination of the verbose log.

	*cpu.Cpu                // Reference to the CPU simulation.
	Memory   memory.Memory  // Memory accessed by the program.
	Program  *asm.Program   // Currently loaded program.
	Pc       uint32         // Address of the next instruction.
	Trace    []Step         // Steps executed since Load().
}

// NewEmulator creates a new emulator around a memory.
func NewEmulator(mem memory.Memory) (emu *Emulator) {
	emu = &Emulator{
		Logger: logrus.StandardLogger(),
		Cpu:    cpu.NewCpu(),
		Memory: mem,
	}

	return
}

// Defines returns an iterator over the equates of the emulator and its
// memory, for the assembler.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{maps.All(_emulator_defines)}
	if definer, ok := emu.Memory.(memory.Definer); ok {
		seqs = append(seqs, definer.Defines())
	}
	return internal.IterSeq2Sorted(internal.IterSeq2Concat(seqs...))
}

// Assembler returns an assembler predefined with Defines().
func (emu *Emulator) Assembler() (as *asm.Assembler) {
	as = &asm.Assembler{Verbose: emu.Verbose, Logger: emu.Logger}
	for key, value := range emu.Defines() {
		as.Predefine(key, value)
	}
	return
}

// Load resets the CPU, applies the register presets and loads the data
// segments of a program. A segment that cannot be loaded is reported as
// an *ErrSegment.
func (emu *Emulator) Load(prog *asm.Program) (err error) {
	emu.Program = prog
	emu.Pc = 0
	emu.Trace = emu.Trace[:0]
	emu.Cpu.Reset()

	for _, preset := range prog.Presets {
		emu.Cpu.Registers.Write(preset.Register, preset.Value)
	}

	for _, seg := range prog.Segments {
		err = emu.loadSegment(seg)
		if err != nil {
			err = &ErrSegment{LineNo: seg.LineNo, Address: seg.Address, Err: err}
			return
		}
	}

	return
}

// loadSegment uses the memory Loader when available, otherwise byte writes.
func (emu *Emulator) loadSegment(seg asm.Segment) (err error) {
	if loader, ok := emu.Memory.(memory.Loader); ok {
		return loader.Load(seg.Address, seg.Data)
	}

	for n, b := range seg.Data {
		_, err = emu.Memory.Write(seg.Address+uint32(n), memory.WIDTH_BYTE, uint32(b))
		if err != nil {
			return
		}
	}

	return
}

// LineNo returns the source line of the next instruction.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	op := emu.Program.Debug(emu.Pc)
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick executes a single instruction. done is set once the program
// counter passes the last instruction. A fault leaves Pc on the faulting
// instruction.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	op := emu.Program.Debug(emu.Pc)
	if op == nil {
		done = true
		return
	}

	res, err := emu.Cpu.Execute(op.Instruction, emu.Memory)
	if err != nil {
		if emu.Verbose {
			emu.Logger.WithFields(logrus.Fields{
				"pc":   fmt.Sprintf("%08x", emu.Pc),
				"line": op.LineNo,
				"op":   op.Instruction.String(),
			}).Warn(err)
		}
		err = &ErrRuntime{LineNo: op.LineNo, Pc: emu.Pc, Err: err}
		return
	}

	step := Step{
		Pc:          emu.Pc,
		LineNo:      op.LineNo,
		Instruction: op.Instruction,
		Kind:        res.Kind,
		Access:      res.Access,
		WriteBack:   res.WriteBack,
	}
	emu.Trace = append(emu.Trace, step)

	if emu.Verbose {
		emu.Logger.WithFields(logrus.Fields{
			"pc":    fmt.Sprintf("%08x", step.Pc),
			"op":    step.Instruction.String(),
			"addr":  fmt.Sprintf("%08x", step.Access.Address),
			"value": fmt.Sprintf("%08x", step.Access.Value),
		}).Info(step.Kind)
	}

	emu.Pc += INSTRUCTION_SIZE
	return
}

// Run ticks until the program completes or faults.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
