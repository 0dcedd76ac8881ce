package memory

import (
	"fmt"
	"iter"
)

// Access is the record of one successful memory access.
//
// Value is the width-truncated datum for a store, or the 32-bit extended
// datum for a load.
type Access struct {
	Width   Width
	Address uint32
	Value   uint32
}

func (acc Access) String() string {
	return fmt.Sprintf("%v [0x%08x] = 0x%08x", acc.Width, acc.Address, acc.Value)
}

// Memory is a byte addressable store with 1, 2 and 4 byte accesses.
//
// A value read back is zero-extended; sign extension belongs to the load
// instruction, not the memory.
type Memory interface {
	Read(address uint32, width Width) (acc Access, err error)
	Write(address uint32, width Width, value uint32) (acc Access, err error)
}

// Loader seeds memory contents without regard to the access mode.
type Loader interface {
	Load(address uint32, data []byte) (err error)
}

// Definer exposes assembler equates describing a memory.
type Definer interface {
	Defines() iter.Seq2[string, string]
}

// checkRead runs the checks that precede every read.
func checkRead(mode Mode, address uint32, width Width) (err error) {
	switch {
	case !width.Valid():
		err = ErrWidthInvalid
	case !width.Aligned(address):
		err = ErrUnalignedRead(address)
	case !mode.CanRead():
		err = ErrUnpermittedRead(address)
	}
	return
}

// checkWrite runs the checks that precede every write.
func checkWrite(mode Mode, address uint32, width Width) (err error) {
	switch {
	case !width.Valid():
		err = ErrWidthInvalid
	case !width.Aligned(address):
		err = ErrUnalignedWrite(address)
	case !mode.CanWrite():
		err = ErrUnpermittedWrite(address)
	}
	return
}

// getLE assembles width bytes, low byte first.
func getLE(data []byte, width Width) (value uint32) {
	for n := range int(width) {
		value |= uint32(data[n]) << (8 * n)
	}
	return
}

// putLE stores the low width bytes of value, low byte first.
func putLE(data []byte, width Width, value uint32) {
	for n := range int(width) {
		data[n] = byte(value >> (8 * n))
	}
}

// fits returns true if [address, address+size) stays inside the 32-bit space.
func fits(address uint32, size int) bool {
	return uint64(address)+uint64(size) <= 1<<32
}
