package memory

import (
	"math/bits"
)

// EffectiveAddress returns base + offset, both taken as unsigned 32-bit
// values. A carry out of bit 31 is ErrAddressOverflow rather than a
// wrapped address, so a sign-extended negative offset faults unless the
// base is zero.
func EffectiveAddress(base, offset uint32) (address uint32, err error) {
	sum, carry := bits.Add32(base, offset, 0)
	if carry != 0 {
		err = ErrAddressOverflow
		return
	}

	address = sum
	return
}
