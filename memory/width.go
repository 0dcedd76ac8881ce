package memory

// Width is the number of contiguous bytes moved by one access.
type Width int

//go:generate go tool stringer -linecomment -type=Width
const (
	WIDTH_BYTE     = Width(1) // byte
	WIDTH_HALFWORD = Width(2) // half
	WIDTH_WORD     = Width(4) // word
)

// Valid returns true for the three supported widths.
func (w Width) Valid() bool {
	switch w {
	case WIDTH_BYTE, WIDTH_HALFWORD, WIDTH_WORD:
		return true
	}
	return false
}

// Bits returns the width in bits.
func (w Width) Bits() uint {
	return uint(w) * 8
}

// Mask returns the mask of the low Bits() bits.
func (w Width) Mask() uint32 {
	if w == WIDTH_WORD {
		return 0xffffffff
	}
	return (uint32(1) << w.Bits()) - 1
}

// Aligned returns true if address is an exact multiple of the width.
func (w Width) Aligned(address uint32) bool {
	return address%uint32(w) == 0
}

// Truncate discards the bits of value above the width.
func (w Width) Truncate(value uint32) uint32 {
	return value & w.Mask()
}

// SignExtend replicates the top bit of the narrow value into bits
// Bits() through 31.
func (w Width) SignExtend(value uint32) uint32 {
	shift := 32 - w.Bits()
	return uint32(int32(value<<shift) >> shift)
}

// Extend widens a narrow value to 32 bits, signed or unsigned.
func (w Width) Extend(value uint32, signed bool) uint32 {
	if signed {
		return w.SignExtend(value)
	}
	return w.Truncate(value)
}
