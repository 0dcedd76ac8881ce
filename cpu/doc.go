// Package cpu implements the memory-access instruction core of an RV32 CPU.
//
// Each load or store is decoded against a snapshot of the register file
// into an Executor, a small pipeline of at most three states:
//
//	Decoded -> MemoryRead | MemoryWritten -> WrittenBack
//
// Only the memory step can fail. A fault leaves both memory and the
// register file unchanged and is returned exactly as the memory produced
// it. The caller decides what happens next.
package cpu
