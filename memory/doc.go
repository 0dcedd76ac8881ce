// Package memory implements the byte addressable store used by the RV32
// memory-access instructions.
//
// Every access is 1, 2 or 4 bytes wide, little-endian, and checked in a
// fixed order before a single byte moves: alignment, access mode, then
// bounds. A failed access never leaves a partial write behind. The
// effective address of an instruction is computed by EffectiveAddress,
// which faults on 32-bit overflow instead of wrapping.
package memory
