package memory

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Fixed is a contiguous memory of Size() bytes starting at Base.
//
// Any access whose byte range is not inside [Base, Base+Size()) fails
// with ErrOutOfBounds carrying the access address.
type Fixed struct {
	Mode Mode   // Access mode.
	Base uint32 // Lowest valid address.

	data []byte
}

var _ Memory = (*Fixed)(nil)
var _ Loader = (*Fixed)(nil)

// NewFixed creates a zeroed read-write memory. The extent is clipped to
// the top of the 32-bit address space.
func NewFixed(base uint32, size uint32) (fm *Fixed) {
	limit := uint64(1<<32) - uint64(base)
	if uint64(size) > limit {
		size = uint32(limit)
	}

	fm = &Fixed{
		Base: base,
		data: make([]byte, size),
	}
	return
}

// Defines returns the fixed memory equates.
func (fm *Fixed) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEM_BASE": fmt.Sprintf("%#x", fm.Base),
		"MEM_SIZE": fmt.Sprintf("%#x", fm.Size()),
	})
}

// Size returns the extent of the memory in bytes.
func (fm *Fixed) Size() uint32 {
	return uint32(len(fm.data))
}

// Bytes returns a copy of the memory contents.
func (fm *Fixed) Bytes() []byte {
	return slices.Clone(fm.data)
}

// offset maps [address, address+size) to a slice offset.
func (fm *Fixed) offset(address uint32, size int) (offset int, ok bool) {
	start := uint64(address)
	end := start + uint64(size)
	base := uint64(fm.Base)

	if start < base || end > base+uint64(len(fm.data)) {
		return
	}

	offset = int(start - base)
	ok = true
	return
}

// Read performs an aligned, bounds checked, little-endian read.
func (fm *Fixed) Read(address uint32, width Width) (acc Access, err error) {
	err = checkRead(fm.Mode, address, width)
	if err != nil {
		return
	}

	offset, ok := fm.offset(address, int(width))
	if !ok {
		err = ErrOutOfBounds(address)
		return
	}

	acc = Access{Width: width, Address: address, Value: getLE(fm.data[offset:], width)}
	return
}

// Write performs an aligned, bounds checked, little-endian write of the
// low width bytes of value.
func (fm *Fixed) Write(address uint32, width Width, value uint32) (acc Access, err error) {
	err = checkWrite(fm.Mode, address, width)
	if err != nil {
		return
	}

	offset, ok := fm.offset(address, int(width))
	if !ok {
		err = ErrOutOfBounds(address)
		return
	}

	value = width.Truncate(value)
	putLE(fm.data[offset:], width, value)

	acc = Access{Width: width, Address: address, Value: value}
	return
}

// Load copies data into memory at address, ignoring Mode.
func (fm *Fixed) Load(address uint32, data []byte) (err error) {
	offset, ok := fm.offset(address, len(data))
	if !ok {
		err = ErrOutOfBounds(address)
		return
	}

	copy(fm.data[offset:], data)
	return
}
