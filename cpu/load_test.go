package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvmem/memory"
	"github.com/ezrec/rvmem/riscv"
)

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    riscv.Opcode
		imm   uint32
		value uint32
	}){
		{riscv.OP_LB, 0, 0xffffff80},
		{riscv.OP_LBU, 0, 0x00000080},
		{riscv.OP_LB, 1, 0x0000007f},
		{riscv.OP_LH, 0, 0x00007f80},
		{riscv.OP_LH, 2, 0xffff8001},
		{riscv.OP_LHU, 2, 0x00008001},
		{riscv.OP_LW, 0, 0x80017f80},
		{riscv.OP_LW, 4, 0xffffffff},
		{riscv.OP_LBU, 7, 0x000000ff},
	}

	for _, entry := range table {
		regs := &Registers{}
		mem := memory.NewSparse()
		require.NoError(t, mem.Load(0x1000, []byte{0x80, 0x7f, 0x01, 0x80, 0xff, 0xff, 0xff, 0xff}))

		regs.Write(riscv.X1, 0x1000)
		regs.Write(riscv.X3, 0xdeadbeef)

		exec, err := Decode(riscv.NewLoad(entry.op, riscv.X3, riscv.X1, entry.imm), regs)
		require.NoError(t, err)

		acc, err := exec.MemoryRead(mem)
		assert.NoError(err, "%v", entry.op)
		assert.Equal(0x1000+entry.imm, acc.Address, "%v", entry.op)
		assert.Equal(entry.value, acc.Value, "%v", entry.op)
		assert.Equal(uint32(0xdeadbeef), regs.Read(riscv.X3), "%v: not yet written back", entry.op)

		wb, err := exec.WriteBack(regs)
		assert.NoError(err)
		assert.Equal(WriteBack{riscv.X3, entry.value}, wb, "%v", entry.op)
		assert.True(wb.Updated())
		assert.Equal(entry.value, regs.Read(riscv.X3), "%v", entry.op)
	}
}

func TestLoad_Zero(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	mem := memory.NewSparse()
	_, _ = mem.Write(0x40, memory.WIDTH_WORD, 0x12345678)

	ld := NewLoad(riscv.NewLoad(riscv.OP_LW, riscv.X0, riscv.X0, 0x40), memory.WIDTH_WORD, true, regs)

	acc, err := ld.MemoryRead(mem)
	assert.NoError(err)
	assert.Equal(uint32(0x12345678), acc.Value)

	wb, err := ld.WriteBack(regs)
	assert.NoError(err)
	assert.Equal(NoWriteBack, wb)
	assert.Equal(uint32(0), regs.Read(riscv.X0))
}

func TestLoad_Faults(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		op    riscv.Opcode
		base  uint32
		imm   uint32
		fault error
	}){
		{"lh_odd", riscv.OP_LH, 0x1001, 0, memory.ErrUnalignedRead(0x1001)},
		{"lhu_odd", riscv.OP_LHU, 0x1000, 3, memory.ErrUnalignedRead(0x1003)},
		{"lw_half", riscv.OP_LW, 0x1002, 0, memory.ErrUnalignedRead(0x1002)},
		{"lb_overflow", riscv.OP_LB, 0xffffffff, 1, memory.ErrAddressOverflow},
		{"lw_negative", riscv.OP_LW, 0x1000, 0xffc, memory.ErrAddressOverflow},
		{"lbu_bounds", riscv.OP_LBU, 0x0fff, 0, memory.ErrOutOfBounds(0x0fff)},
		{"lw_bounds", riscv.OP_LW, 0x1100, 0, memory.ErrOutOfBounds(0x1100)},
	}

	for _, entry := range table {
		regs := &Registers{}
		mem := memory.NewFixed(0x1000, 0x100)

		regs.Write(riscv.X1, entry.base)
		regs.Write(riscv.X2, 0x55555555)
		before := regs.Snapshot()

		exec, err := Decode(riscv.NewLoad(entry.op, riscv.X2, riscv.X1, entry.imm), regs)
		require.NoError(t, err)

		_, err = exec.MemoryRead(mem)
		assert.ErrorIs(err, entry.fault, entry.name)
		assert.Equal(entry.fault, err, entry.name)
		assert.Equal(STATE_DECODED, exec.State(), entry.name)

		_, err = exec.WriteBack(regs)
		assert.ErrorIs(err, ErrStepOrder, entry.name)
		assert.Equal(before, regs.Snapshot(), entry.name)
	}
}

func TestLoad_StepOrder(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	mem := memory.NewSparse()

	ld := NewLoad(riscv.NewLoad(riscv.OP_LBU, riscv.X1, riscv.X0, 0), memory.WIDTH_BYTE, false, regs)

	// The write step is unused by loads.
	_, err := ld.MemoryWrite(mem)
	assert.NoError(err)
	assert.Equal(0, mem.PageCount())

	_, err = ld.MemoryRead(mem)
	assert.NoError(err)

	_, err = ld.MemoryRead(mem)
	assert.ErrorIs(err, ErrStepOrder)

	_, err = ld.WriteBack(regs)
	assert.NoError(err)
	assert.Equal(STATE_WRITTEN_BACK, ld.State())
}

func TestLoad_String(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	assert.Equal("load.byteu x5, 16(x2)",
		NewLoad(riscv.NewLoad(riscv.OP_LBU, riscv.X5, riscv.X2, 16), memory.WIDTH_BYTE, false, regs).String())
	assert.Equal("load.word x5, -1(x2)",
		NewLoad(riscv.NewLoad(riscv.OP_LW, riscv.X5, riscv.X2, 0xfff), memory.WIDTH_WORD, true, regs).String())
}

func TestLoad_UnusedWrite(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	regs.Write(riscv.X1, 0x40)
	mem := memory.NewSparse()

	ld := NewLoad(riscv.NewLoad(riscv.OP_LW, riscv.X2, riscv.X1, 0), memory.WIDTH_WORD, true, regs)

	// The write step is unused by loads, and never touches memory.
	acc, err := ld.MemoryWrite(mem)
	assert.NoError(err)
	assert.Equal(memory.Access{}, acc)
	assert.Equal(STATE_DECODED, ld.State())
	assert.Equal(0, mem.PageCount())

	_, err = ld.MemoryRead(mem)
	assert.NoError(err)
	_, err = ld.WriteBack(regs)
	assert.NoError(err)
	assert.Equal(STATE_WRITTEN_BACK, ld.State())
}
