// Code generated by "stringer -linecomment -type=AccessKind"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[ACCESS_LOAD-0]
	_ = x[ACCESS_STORE-1]
}

const _AccessKind_name = "loadstore"

var _AccessKind_index = [...]uint8{0, 4, 9}

func (i AccessKind) String() string {
	if i < 0 || i >= AccessKind(len(_AccessKind_index)-1) {
		return "AccessKind(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _AccessKind_name[_AccessKind_index[i]:_AccessKind_index[i+1]]
}
