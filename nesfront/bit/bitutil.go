// Package bit holds the bit twiddling shared by the pattern decoders.
package bit

// IsSet reports whether the bit at index is 1.
func IsSet(index, value uint8) bool {
	return (value>>index)&1 == 1
}

// Pair combines the bits at index of two bit planes into a 2-bit value, the
// low plane giving bit 0 and the high plane bit 1.
func Pair(index, low, high uint8) uint8 {
	var v uint8
	if IsSet(index, low) {
		v |= 1
	}
	if IsSet(index, high) {
		v |= 2
	}
	return v
}
