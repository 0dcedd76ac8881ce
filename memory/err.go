package memory

import (
	"errors"

	"github.com/ezrec/rvmem/translate"
)

var f = translate.From

var (
	ErrAddressOverflow = errors.New(f("address calculation overflow"))
	ErrWidthInvalid    = errors.New(f("access width invalid"))
	ErrPageLimit       = errors.New(f("page limit exceeded"))

	// Matched by errors.Is() against the address carrying faults below.
	ErrUnaligned   = errors.New(f("unaligned access"))
	ErrUnpermitted = errors.New(f("unpermitted access"))
	ErrBounds      = errors.New(f("out of bounds access"))
)

// ErrUnalignedRead is a read at an address that is not a multiple of the
// access width.
type ErrUnalignedRead uint32

func (err ErrUnalignedRead) Error() string {
	return f("unaligned read at 0x%08x", uint32(err))
}

func (err ErrUnalignedRead) Is(target error) bool {
	return target == ErrUnaligned
}

// ErrUnalignedWrite is a write at an address that is not a multiple of the
// access width.
type ErrUnalignedWrite uint32

func (err ErrUnalignedWrite) Error() string {
	return f("unaligned write at 0x%08x", uint32(err))
}

func (err ErrUnalignedWrite) Is(target error) bool {
	return target == ErrUnaligned
}

// ErrUnpermittedRead is a read of a write-only memory.
type ErrUnpermittedRead uint32

func (err ErrUnpermittedRead) Error() string {
	return f("read of write-only memory at 0x%08x", uint32(err))
}

func (err ErrUnpermittedRead) Is(target error) bool {
	return target == ErrUnpermitted
}

// ErrUnpermittedWrite is a write to a read-only memory.
type ErrUnpermittedWrite uint32

func (err ErrUnpermittedWrite) Error() string {
	return f("write to read-only memory at 0x%08x", uint32(err))
}

func (err ErrUnpermittedWrite) Is(target error) bool {
	return target == ErrUnpermitted
}

// ErrOutOfBounds is an access whose byte range leaves the addressable
// extent of the memory.
type ErrOutOfBounds uint32

func (err ErrOutOfBounds) Error() string {
	return f("out of bounds access at 0x%08x", uint32(err))
}

func (err ErrOutOfBounds) Is(target error) bool {
	return target == ErrBounds
}
