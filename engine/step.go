package engine

import (
	"sort"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// superstep runs one label-propagation round. It returns whether every rank
// observed a stable state and how many flip tuples this rank synthesized.
//
// The round sorts the working set by (Pc, Pn), resolves the bucket state at
// the rank boundaries through a subgroup of the non-empty ranks, rewrites
// each bucket locally, and finishes with a group-wide vote. A bucket whose
// minimum and maximum candidate agree is self-consistent; any other bucket
// keeps the round going and must leave one flipped tuple behind so that the
// partition stays represented in the next round.
func (e *Engine) superstep() (bool, int, error) {
	c := e.comm
	retire := e.method.retire()

	data, err := comm.Sort(c, e.active, tuple.ByPcPn)
	if err != nil {
		return false, 0, err
	}

	// Boundary state travels between the non-empty ranks only: an empty
	// rank has no buckets to resolve and would poison the scans.
	color := 0
	if len(data) == 0 {
		color = 1
	}
	sc, err := comm.Split(c, color)
	if err != nil {
		return false, 0, err
	}

	var prevMin, prevEl, nextMax tuple.Tuple
	var prevMinOK, prevElOK, nextMaxOK bool
	if len(data) > 0 {
		last := data[len(data)-1]
		i := sort.Search(len(data), func(i int) bool { return data[i].Pc >= last.Pc })
		prevMin, prevMinOK, err = comm.ExScan(sc, data[i], tuple.LeftMin)
		if err != nil {
			return false, 0, err
		}
		prevEl, prevElOK, err = comm.RightShift(sc, last)
		if err != nil {
			return false, 0, err
		}
		firstPc := data[0].Pc
		j := sort.Search(len(data), func(i int) bool { return data[i].Pc > firstPc })
		nextMax, nextMaxOK, err = comm.RevExScan(sc, data[j-1], tuple.RightMin)
		if err != nil {
			return false, 0, err
		}
	}

	done := true
	var newTuples []tuple.Tuple

	for begin := 0; begin < len(data); {
		bucketPc := data[begin].Pc
		end := begin + 1
		for end < len(data) && data[end].Pc == bucketPc {
			end++
		}

		// The scans deliver the global bucket extrema: the left part of a
		// boundary bucket sorts before the local part, the right part after
		// it, so a matching scan value replaces the local one outright.
		minPn := data[begin].Pn
		if prevMinOK && prevMin.Pc == bucketPc {
			minPn = prevMin.Pn
		}
		maxPn := data[end-1].Pn
		if nextMaxOK && nextMax.Pc == bucketPc {
			maxPn = nextMax.Pn
		}

		leftShared := prevElOK && prevEl.Pc == bucketPc

		// A lone tuple resolves immediately.
		if end-begin == 1 && !leftShared {
			if retire && data[begin].Pn == tuple.AlmostInactive {
				data[begin].Pn = tuple.Inactive
			} else {
				data[begin].Pc = data[begin].Pn
			}
			begin = end
			continue
		}

		// Self-consistent bucket: every tuple already agrees on the label.
		if minPn == maxPn {
			switch {
			case retire && maxPn == tuple.AlmostInactive:
				for i := begin; i < end; i++ {
					data[i].Pn = tuple.Inactive
				}
			case retire && bucketPc == maxPn:
				// Stable, but the partition must witness one more round.
				for i := begin; i < end; i++ {
					data[i].Pn = tuple.AlmostInactive
				}
			default:
				for i := begin; i < end; i++ {
					data[i].Pc = data[i].Pn
				}
			}
			begin = end
			continue
		}

		if retire && minPn > bucketPc {
			minPn = bucketPc
		}

		done = false

		foundFlip := false
		var prevPn uint32
		i := begin
		if !leftShared {
			if retire && data[begin].Pn > minPn {
				data[begin].Pn = minPn
			}
			// The first tuple carries the minimum already.
			prevPn = minPn
			i++
		} else {
			prevPn = prevEl.Pn
		}
		for ; i < end; i++ {
			if retire && data[i].Pn == tuple.AlmostInactive {
				data[i].Pn = data[i].Pc
			}
			nextPn := data[i].Pn
			if data[i].Pn == prevPn || data[i].Pn == data[i].Pc {
				if !foundFlip {
					foundFlip = true
					data[i].Pn = data[i].Pc
					data[i].Pc = minPn
				} else {
					// A duplicate carries no information; move it over.
					data[i].Pn = minPn
					data[i].Pc = minPn
				}
			} else {
				data[i].Pn, data[i].Pc = data[i].Pc, data[i].Pn
				data[i].Pn = minPn
			}
			prevPn = nextPn
		}

		if !foundFlip {
			t := data[begin]
			t.Pn, t.Pc = t.Pc, t.Pn
			newTuples = append(newTuples, t)
		}

		begin = end
	}

	data = append(data, newTuples...)

	if retire {
		kept := data[:0]
		retiredBefore := len(e.retired)
		for _, t := range data {
			if t.Pn == tuple.Inactive {
				e.retired = append(e.retired, t)
			} else {
				kept = append(kept, t)
			}
		}
		data = kept
		if n := len(e.retired) - retiredBefore; n > 0 {
			e.metrics.ObserveRetired(n)
		}
	}
	e.active = data

	if e.method.balance() {
		e.active, err = comm.BlockDecompose(c, e.active)
		if err != nil {
			return false, 0, err
		}
	}

	allDone, err := comm.TestAll(c, done)
	if err != nil {
		return false, 0, err
	}
	return allDone, len(newTuples), nil
}
