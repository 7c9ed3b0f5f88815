package util

import "cmp"

// Clamp limits val to [lo, hi].
func Clamp[T cmp.Ordered](val T, lo T, hi T) T {
	return max(lo, min(hi, val))
}

// InRange reports whether lo <= val <= hi.
func InRange[T cmp.Ordered](val T, lo T, hi T) bool {
	return val >= lo && val <= hi
}
