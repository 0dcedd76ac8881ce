package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveAddress(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		base    uint32
		offset  uint32
		address uint32
		err     error
	}){
		{"zero", 0, 0, 0, nil},
		{"plain", 0x1000, 4, 0x1004, nil},
		{"top", 0xfffffffe, 1, 0xffffffff, nil},
		{"max_plus_one", 0xffffffff, 1, 0, ErrAddressOverflow},
		{"max_plus_max", 0xffffffff, 0xffffffff, 0, ErrAddressOverflow},
		{"negative_from_zero", 0, 0xfffffffc, 0xfffffffc, nil},
		{"negative_from_base", 0x1000, 0xfffffffc, 0, ErrAddressOverflow},
	}

	for _, entry := range table {
		address, err := EffectiveAddress(entry.base, entry.offset)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.name)
			continue
		}
		assert.NoError(err, entry.name)
		assert.Equal(entry.address, address, entry.name)
	}
}
