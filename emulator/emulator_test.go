package emulator

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvmem/cpu"
	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

// plainMemory hides every optional interface of the wrapped memory.
type plainMemory struct {
	memory.Memory
}

func load(t *testing.T, emu *Emulator, script string) {
	t.Helper()

	prog, err := emu.Assembler().Parse(strings.NewReader(script))
	require.NoError(t, err)

	err = emu.Load(prog)
	require.NoError(t, err)
}

const halfwordScript = `
.reg x1 0x1000
.reg x2 0x7fff
.reg x3 0xffff8000
.reg x4 0xffff
sh x2, 0(x1)
sh x3, 2(x1)
sh x4, 4(x1)
lhu x5, 2(x1)
lh x6, 2(x1)
lw x7, 0(x1)
`

func TestEmulatorHalfword(t *testing.T) {
	assert := assert.New(t)

	memories := map[string]memory.Memory{
		"sparse": memory.NewSparse(),
		"fixed":  memory.NewFixed(0x1000, 0x100),
		"plain":  plainMemory{memory.NewSparse()},
	}

	for name, mem := range memories {
		emu := NewEmulator(mem)
		load(t, emu, halfwordScript)

		err := emu.Run()
		assert.NoError(err, name)
		assert.Equal(uint32(6*INSTRUCTION_SIZE), emu.Pc, name)
		if !assert.Len(emu.Trace, 6, name) {
			continue
		}

		stores := []memory.Access{
			{Width: memory.WIDTH_HALFWORD, Address: 0x1000, Value: 0x7fff},
			{Width: memory.WIDTH_HALFWORD, Address: 0x1002, Value: 0x8000},
			{Width: memory.WIDTH_HALFWORD, Address: 0x1004, Value: 0xffff},
		}
		for n, acc := range stores {
			step := emu.Trace[n]
			assert.Equal(cpu.ACCESS_STORE, step.Kind, name)
			assert.Equal(acc, step.Access, name)
			assert.False(step.WriteBack.Updated(), name)
			assert.Equal(uint32(n*INSTRUCTION_SIZE), step.Pc, name)
			assert.Equal(n+6, step.LineNo, name)
		}

		assert.Equal(cpu.ACCESS_LOAD, emu.Trace[3].Kind, name)
		assert.Equal(cpu.WriteBack{Register: riscv.X5, Value: 0x8000}, emu.Trace[3].WriteBack, name)
		assert.Equal(cpu.WriteBack{Register: riscv.X6, Value: 0xffff8000}, emu.Trace[4].WriteBack, name)
		assert.Equal(cpu.WriteBack{Register: riscv.X7, Value: 0x80007fff}, emu.Trace[5].WriteBack, name)

		assert.Equal(uint32(0x8000), emu.Cpu.Registers.Read(riscv.X5), name)
		assert.Equal(uint32(0xffff8000), emu.Cpu.Registers.Read(riscv.X6), name)
		assert.Equal(uint32(0x80007fff), emu.Cpu.Registers.Read(riscv.X7), name)

		acc, err := mem.Read(0x1004, memory.WIDTH_HALFWORD)
		assert.NoError(err, name)
		assert.Equal(uint32(0xffff), acc.Value, name)
	}
}

func TestEmulatorFaults(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		name   string
		script string
		lineno int
		pc     uint32
		trace  int
		err    error
	}{
		{"unaligned", ".reg x1 0x1001\nsh x2, 0(x1)", 2, 0, 0, memory.ErrUnaligned},
		{"overflow", ".reg x1 0xffffffff\nsh x2, 1(x1)", 2, 0, 0, memory.ErrAddressOverflow},
		{"overflow_negative", ".reg x1 0x1000\nlw x2, -4(x1)", 2, 0, 0, memory.ErrAddressOverflow},
		{"second", ".reg x1 0x1000\nsw x2, 0(x1)\nlw x3, 2(x1)", 3, 4, 1, memory.ErrUnaligned},
		{"bounds", ".reg x1 0x2000\nsb x2, 0(x1)", 2, 0, 0, memory.ErrBounds},
		{"bounds_low", "lb x2, 0(x0)", 1, 0, 0, memory.ErrBounds},
	}

	for _, entry := range table {
		mem := memory.NewFixed(0x1000, 0x1000)
		emu := NewEmulator(mem)
		load(t, emu, entry.script)
		before := mem.Bytes()

		err := emu.Run()
		assert.ErrorIs(err, entry.err, entry.name)

		var rerr *ErrRuntime
		if assert.ErrorAs(err, &rerr, entry.name) {
			assert.Equal(entry.lineno, rerr.LineNo, entry.name)
			assert.Equal(entry.pc, rerr.Pc, entry.name)
		}

		assert.Equal(entry.pc, emu.Pc, entry.name)
		assert.Len(emu.Trace, entry.trace, entry.name)
		if entry.trace == 0 {
			assert.Equal(before, mem.Bytes(), entry.name)
		}
	}
}

func TestEmulatorUnalignedAddress(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(memory.NewSparse())
	load(t, emu, ".reg x1 0x1001\nsh x2, 0(x1)")

	done, err := emu.Tick()
	assert.False(done)

	var uerr memory.ErrUnalignedWrite
	if assert.ErrorAs(err, &uerr) {
		assert.Equal(memory.ErrUnalignedWrite(0x1001), uerr)
	}

	// Pc stays on the faulting instruction.
	_, err = emu.Tick()
	assert.ErrorIs(err, memory.ErrUnaligned)
	assert.Equal(uint32(0), emu.Pc)
}

func TestEmulatorSegments(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewFixed(0x1000, 0x100)
	mem.Mode = memory.MODE_RO

	emu := NewEmulator(mem)
	load(t, emu, `
.reg a0 MEM_BASE
.org MEM_BASE
.word 0x12345678
.byte 0x80
lw a1, 0(a0)
lb a2, 4(a0)
sb a2, 5(a0)
`)

	err := emu.Run()
	assert.ErrorIs(err, memory.ErrUnpermitted)
	assert.Equal(uint32(0x12345678), emu.Cpu.Registers.Read(riscv.X11))
	assert.Equal(uint32(0xffffff80), emu.Cpu.Registers.Read(riscv.X12))
	assert.Len(emu.Trace, 2)
}

func TestEmulatorSegmentsFallback(t *testing.T) {
	assert := assert.New(t)

	sparse := memory.NewSparse()
	emu := NewEmulator(plainMemory{sparse})
	load(t, emu, ".org 0x10\n.half 0xbeef\n.reg x1 0x10\nlhu x2, 0(x1)")

	assert.NoError(emu.Run())
	assert.Equal(uint32(0xbeef), emu.Cpu.Registers.Read(riscv.X2))

	// A read-only memory refuses the byte writes of the fallback.
	sparse.Mode = memory.MODE_RO
	prog, err := emu.Assembler().Parse(strings.NewReader(".org 0x10\n.byte 1"))
	require.NoError(t, err)
	err = emu.Load(prog)
	assert.ErrorIs(err, memory.ErrUnpermitted)

	var serr *ErrSegment
	if assert.ErrorAs(err, &serr) {
		assert.Equal(2, serr.LineNo)
		assert.Equal(uint32(0x10), serr.Address)
	}
}

func TestEmulatorLoadPageLimit(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewSparse()
	mem.MaxPages = 1

	emu := NewEmulator(mem)
	prog, err := emu.Assembler().Parse(strings.NewReader(".byte 1\n.org 0x2000\n.byte 2"))
	require.NoError(t, err)

	err = emu.Load(prog)
	assert.ErrorIs(err, memory.ErrPageLimit)

	var serr *ErrSegment
	if assert.ErrorAs(err, &serr) {
		assert.Equal(3, serr.LineNo)
		assert.Equal(uint32(0x2000), serr.Address)
	}
	assert.False(errors.As(err, new(*ErrRuntime)))
	assert.Equal(1, mem.PageCount())
}

func TestEmulatorLoadReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(memory.NewSparse())
	load(t, emu, ".reg x1 0x100\n.reg x2 7\nsw x2, 0(x1)\nlw x3, 0(x1)")
	assert.NoError(emu.Run())
	assert.Equal(uint32(7), emu.Cpu.Registers.Read(riscv.X3))

	load(t, emu, ".reg x0 5\nlw x0, 0(x0)")
	assert.Equal(uint32(0), emu.Pc)
	assert.Empty(emu.Trace)
	assert.Equal(uint32(0), emu.Cpu.Registers.Read(riscv.X3))
	assert.Equal(uint32(0), emu.Cpu.Registers.Read(riscv.X0))

	assert.NoError(emu.Run())
	if assert.Len(emu.Trace, 1) {
		assert.False(emu.Trace[0].WriteBack.Updated())
	}
}

func TestEmulatorNoProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(memory.NewSparse())
	_, err := emu.Tick()
	assert.ErrorIs(err, ErrNoProgram)
	assert.ErrorIs(emu.Run(), ErrNoProgram)
	assert.Equal(0, emu.LineNo())
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		mem  memory.Memory
		keys []string
	}{
		{memory.NewSparse(), []string{"INSTRUCTION_SIZE", "MEM_PAGE_SIZE"}},
		{memory.NewFixed(0x2000, 0x100), []string{"INSTRUCTION_SIZE", "MEM_BASE", "MEM_SIZE"}},
		{plainMemory{memory.NewSparse()}, []string{"INSTRUCTION_SIZE"}},
	}

	for _, entry := range table {
		emu := NewEmulator(entry.mem)
		defines := maps.Collect(emu.Defines())
		assert.Equal(entry.keys, slices.Sorted(maps.Keys(defines)))
		assert.Equal("4", defines["INSTRUCTION_SIZE"])
	}

	emu := NewEmulator(memory.NewFixed(0x2000, 0x100))
	load(t, emu, ".reg x1 $(MEM_BASE + MEM_SIZE - INSTRUCTION_SIZE)")
	assert.Equal(uint32(0x20fc), emu.Cpu.Registers.Read(riscv.X1))
}

func TestEmulatorVerbose(t *testing.T) {
	assert := assert.New(t)

	logger, hook := test.NewNullLogger()

	emu := NewEmulator(memory.NewSparse())
	emu.Verbose = true
	emu.Logger = logger
	load(t, emu, ".reg x1 0x40\n.reg x2 0x1234\nsh x2, 2(x1)\nlw x3 1(x1)")

	// The assembler shares the emulator's logger.
	if assert.Len(hook.AllEntries(), 4) {
		assert.Equal(3, hook.AllEntries()[2].Data["line"])
	}
	hook.Reset()

	err := emu.Run()
	assert.ErrorIs(err, memory.ErrUnaligned)

	entries := hook.AllEntries()
	if assert.Len(entries, 2) {
		assert.Equal(logrus.InfoLevel, entries[0].Level)
		assert.Equal("store", entries[0].Message)
		assert.Equal("00000000", entries[0].Data["pc"])
		assert.Equal("00000042", entries[0].Data["addr"])
		assert.Equal("00001234", entries[0].Data["value"])
		assert.Equal("sh x2, 2(x1)", entries[0].Data["op"])

		assert.Equal(logrus.WarnLevel, entries[1].Level)
		assert.Equal("00000004", entries[1].Data["pc"])
		assert.Equal(4, entries[1].Data["line"])
	}
}

func TestErrRuntime(t *testing.T) {
	assert := assert.New(t)

	err := &ErrRuntime{LineNo: 3, Pc: 8, Err: memory.ErrOutOfBounds(0x10)}
	assert.True(errors.Is(err, memory.ErrBounds))
	assert.Contains(err.Error(), "0x00000008")
}
