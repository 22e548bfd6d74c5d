// Package tuple defines the unit of state of the partitioning engine.
//
// A Tuple carries an opaque 64-bit key (a k-mer or a generated edge id)
// together with two 32-bit partition labels: Pc, the current partition of the
// tuple, and Pn, the candidate partition learned in the most recent
// super-step. The top two values of the label domain are reserved as
// sentinels for the active-partition variants of the engine.
package tuple

import "math"

const (
	// Inactive marks a tuple that has been retired from the working set.
	// A retired tuple is never re-sorted or re-compared.
	Inactive uint32 = math.MaxUint32

	// AlmostInactive marks a tuple of a self-consistent bucket that must
	// act as a witness for one more super-step before retiring.
	AlmostInactive uint32 = math.MaxUint32 - 1
)

// Tuple is the fixed (key, Pn, Pc) triple the engine operates on.
type Tuple struct {
	Key uint64
	Pn  uint32
	Pc  uint32
}

// ByKey orders tuples by key.
func ByKey(a, b Tuple) bool {
	return a.Key < b.Key
}

// ByPcPn orders tuples lexicographically by (Pc, Pn) ascending. This is the
// ordering of the main loop: a maximal run of equal Pc forms a bucket, and
// the bucket's first element carries its minimum Pn.
func ByPcPn(a, b Tuple) bool {
	return a.Pc < b.Pc || (a.Pc == b.Pc && a.Pn < b.Pn)
}

// SamePc reports whether two tuples belong to the same bucket.
func SamePc(a, b Tuple) bool {
	return a.Pc == b.Pc
}

// LeftMin reduces toward the first element of the last bucket seen so far:
// of two tuples it keeps the one from the greater Pc bucket, and within the
// same bucket the one with the smaller Pn. Folding it over the ranks below
// this one yields the minimum-Pn element of their last bucket, which is
// exactly the boundary state a rank needs when its first bucket extends
// leftward.
func LeftMin(a, b Tuple) Tuple {
	if a.Pc < b.Pc || (a.Pc == b.Pc && a.Pn > b.Pn) {
		return b
	}
	return a
}

// RightMin is the mirror of LeftMin: it keeps the tuple from the smaller Pc
// bucket, and within the same bucket the one with the larger Pn. Folding it
// over the ranks above this one yields the maximum-Pn element of their first
// bucket.
func RightMin(a, b Tuple) Tuple {
	if a.Pc > b.Pc || (a.Pc == b.Pc && a.Pn < b.Pn) {
		return b
	}
	return a
}
