package memory

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

const (
	PAGE_SHIFT = 12              // log2 of the page size.
	PAGE_SIZE  = 1 << PAGE_SHIFT // Bytes per sparse page.
)

type page [PAGE_SIZE]byte

// Sparse is a memory spanning the whole 32-bit address space, backed by
// pages allocated on first write.
//
// Unallocated pages read as zero. An aligned access never straddles a
// page, and never runs past the top of the address space, so Sparse has
// no out-of-bounds condition of its own; MaxPages bounds the host memory
// it may consume instead.
type Sparse struct {
	Mode     Mode // Access mode.
	MaxPages int  // Page allocation budget, 0 for unlimited.

	pages map[uint32]*page
}

var _ Memory = (*Sparse)(nil)
var _ Loader = (*Sparse)(nil)

// NewSparse creates an empty read-write sparse memory.
func NewSparse() (sm *Sparse) {
	sm = &Sparse{
		pages: map[uint32]*page{},
	}
	return
}

// Defines returns the sparse memory equates.
func (sm *Sparse) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEM_PAGE_SIZE": fmt.Sprintf("%#x", PAGE_SIZE),
	})
}

// PageCount returns the number of allocated pages.
func (sm *Sparse) PageCount() int {
	return len(sm.pages)
}

// Pages iterates over the allocated pages in address order, yielding the
// page base address and its contents.
func (sm *Sparse) Pages() iter.Seq2[uint32, []byte] {
	return func(yield func(base uint32, data []byte) bool) {
		for _, index := range slices.Sorted(maps.Keys(sm.pages)) {
			if !yield(index<<PAGE_SHIFT, sm.pages[index][:]) {
				return
			}
		}
	}
}

// Reset drops every page.
func (sm *Sparse) Reset() {
	clear(sm.pages)
}

// allocate returns the page holding address, allocating if needed.
func (sm *Sparse) allocate(address uint32) (pg *page, err error) {
	if sm.pages == nil {
		sm.pages = map[uint32]*page{}
	}

	index := address >> PAGE_SHIFT
	pg, ok := sm.pages[index]
	if ok {
		return
	}

	if sm.MaxPages > 0 && len(sm.pages) >= sm.MaxPages {
		err = ErrPageLimit
		return
	}

	pg = &page{}
	sm.pages[index] = pg
	return
}

// Read performs an aligned little-endian read.
func (sm *Sparse) Read(address uint32, width Width) (acc Access, err error) {
	err = checkRead(sm.Mode, address, width)
	if err != nil {
		return
	}

	acc = Access{Width: width, Address: address}

	pg, ok := sm.pages[address>>PAGE_SHIFT]
	if ok {
		offset := address & (PAGE_SIZE - 1)
		acc.Value = getLE(pg[offset:], width)
	}

	return
}

// Write performs an aligned little-endian write of the low width bytes
// of value.
func (sm *Sparse) Write(address uint32, width Width, value uint32) (acc Access, err error) {
	err = checkWrite(sm.Mode, address, width)
	if err != nil {
		return
	}

	pg, err := sm.allocate(address)
	if err != nil {
		return
	}

	value = width.Truncate(value)
	offset := address & (PAGE_SIZE - 1)
	putLE(pg[offset:], width, value)

	acc = Access{Width: width, Address: address, Value: value}
	return
}

// Load copies data into memory at address, ignoring Mode.
// Either all of data is loaded, or none of it.
func (sm *Sparse) Load(address uint32, data []byte) (err error) {
	if !fits(address, len(data)) {
		err = ErrOutOfBounds(address)
		return
	}

	if len(data) == 0 {
		return
	}

	if sm.MaxPages > 0 {
		first := address >> PAGE_SHIFT
		last := uint32((uint64(address) + uint64(len(data)) - 1) >> PAGE_SHIFT)
		missing := 0
		for index := first; index <= last; index++ {
			if _, ok := sm.pages[index]; !ok {
				missing++
			}
		}
		if len(sm.pages)+missing > sm.MaxPages {
			err = ErrPageLimit
			return
		}
	}

	for n, b := range data {
		var pg *page
		at := address + uint32(n)
		pg, err = sm.allocate(at)
		if err != nil {
			return
		}
		pg[at&(PAGE_SIZE-1)] = b
	}

	return
}
