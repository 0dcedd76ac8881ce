// Code generated by "stringer -linecomment -type=Width"; DO NOT EDIT.

package memory

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[WIDTH_BYTE-1]
	_ = x[WIDTH_HALFWORD-2]
	_ = x[WIDTH_WORD-4]
}

const (
	_Width_name_0 = "bytehalf"
	_Width_name_1 = "word"
)

var (
	_Width_index_0 = [...]uint8{0, 4, 8}
)

func (i Width) String() string {
	switch {
	case 1 <= i && i <= 2:
		i -= 1
		return _Width_name_0[_Width_index_0[i]:_Width_index_0[i+1]]
	case i == 4:
		return _Width_name_1
	default:
		return "Width(" + strconv.FormatInt(int64(i), 10) + ")"
	}
}
