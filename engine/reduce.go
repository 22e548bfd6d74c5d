package engine

import (
	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// runAgg summarizes one side of a rank's tuple slice for the boundary scans
// of the reduction: the key of the outermost run, the minimum label observed
// in that run, and whether the slice holds more than one run. Empty ranks
// contribute ok == false and pass through the scan untouched.
type runAgg struct {
	key  uint64
	min  uint32
	more bool
	ok   bool
}

// combineRun folds the aggregate of the block accumulated so far (acc) into
// the aggregate of the rank joining the block (next). It keeps tracking the
// outermost run of the grown block: when next consists of a single run with
// the same key, the two runs are one and their minima merge, otherwise
// next's outermost run shields acc entirely. The same fold serves both scan
// directions.
func combineRun(acc, next runAgg) runAgg {
	if !next.ok {
		return acc
	}
	if !acc.ok {
		return next
	}
	out := next
	if !next.more && acc.key == next.key {
		if acc.min < out.min {
			out.min = acc.min
		}
		out.more = acc.more
	} else {
		out.more = true
	}
	return out
}

// reduce performs the k-mer reduction: after a global sort by key, every
// tuple's Pn becomes the minimum Pc among the tuples sharing its key. Runs
// spanning rank boundaries are resolved with a pair of exclusive scans, so a
// tuple alone under its key simply keeps Pn == Pc.
func (e *Engine) reduce() error {
	c := e.comm

	data, err := comm.Sort(c, e.active, tuple.ByKey)
	if err != nil {
		return err
	}
	e.active = data

	first, last := localRunAggs(data)
	prev, prevOK, err := comm.ExScan(c, last, combineRun)
	if err != nil {
		return err
	}
	next, nextOK, err := comm.RevExScan(c, first, combineRun)
	if err != nil {
		return err
	}
	if !prevOK || !prev.ok {
		prev = runAgg{}
	}
	if !nextOK || !next.ok {
		next = runAgg{}
	}

	for begin := 0; begin < len(data); {
		key := data[begin].Key
		end := begin + 1
		min := data[begin].Pc
		for end < len(data) && data[end].Key == key {
			if data[end].Pc < min {
				min = data[end].Pc
			}
			end++
		}
		if begin == 0 && prev.ok && prev.key == key && prev.min < min {
			min = prev.min
		}
		if end == len(data) && next.ok && next.key == key && next.min < min {
			min = next.min
		}
		for i := begin; i < end; i++ {
			data[i].Pn = min
		}
		begin = end
	}
	return nil
}

// localRunAggs computes the scan contributions of a sorted slice: the
// aggregates of its first and its last run.
func localRunAggs(data []tuple.Tuple) (first, last runAgg) {
	if len(data) == 0 {
		return runAgg{}, runAgg{}
	}

	first = runAgg{key: data[0].Key, min: data[0].Pc, ok: true}
	i := 1
	for i < len(data) && data[i].Key == first.key {
		if data[i].Pc < first.min {
			first.min = data[i].Pc
		}
		i++
	}
	first.more = i < len(data)

	n := len(data)
	last = runAgg{key: data[n-1].Key, min: data[n-1].Pc, ok: true}
	j := n - 2
	for j >= 0 && data[j].Key == last.key {
		if data[j].Pc < last.min {
			last.min = data[j].Pc
		}
		j--
	}
	last.more = j >= 0
	return first, last
}
