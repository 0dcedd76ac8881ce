package memory

// Mode restricts the direction of accesses permitted on a memory.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_RW = Mode(0) // rw
	MODE_RO = Mode(1) // ro
	MODE_WO = Mode(2) // wo
)

func (m Mode) CanRead() bool {
	return m != MODE_WO
}

func (m Mode) CanWrite() bool {
	return m != MODE_RO
}
