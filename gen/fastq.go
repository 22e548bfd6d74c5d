package gen

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/internal/mmap"
	"github.com/hupe1980/parconn/tuple"
)

// FASTQ derives tuples from the reads of a FASTQ file. Every k-mer of a
// read yields one tuple carrying the k-mer as key and the read's global
// number as both labels, so reads sharing a k-mer end up connected.
//
// The file is memory-mapped and split into one byte range per rank,
// aligned to record boundaries, so ranks parse disjoint read sets
// without coordination.
type FASTQ struct {
	Path string

	// K is the k-mer length. Zero selects DefaultKmerLen; the maximum
	// is 32.
	K int

	// FilterHighFreq drops reads that contain a globally over-represented
	// filter-phase k-mer before any tuples are emitted.
	FilterHighFreq bool
}

// NewFASTQ creates a FASTQ source with the default k-mer length.
func NewFASTQ(path string) *FASTQ {
	return &FASTQ{Path: path, K: DefaultKmerLen}
}

// Generate parses this rank's chunk of the file and emits one tuple per
// (read, k-mer) incidence. Read numbers are globally consecutive across
// ranks.
func (g *FASTQ) Generate(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error) {
	k := g.K
	if k == 0 {
		k = DefaultKmerLen
	}
	if k < 1 || k > 32 {
		return nil, fmt.Errorf("gen: k-mer length %d out of range [1, 32]", k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := mmap.Open(g.Path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	reads, err := chunkReads(m.Data, c.Size(), c.Rank())
	if err != nil {
		return nil, err
	}

	// Number reads globally: each rank's ids start where the previous
	// rank's end.
	base, ok, err := comm.ExScan(c, uint64(len(reads)), func(a, b uint64) uint64 { return a + b })
	if err != nil {
		return nil, err
	}
	if !ok {
		base = 0
	}

	var bad map[uint64]struct{}
	if g.FilterHighFreq {
		bad, err = highFreqKmers(c, reads)
		if err != nil {
			return nil, err
		}
	}

	var out []tuple.Tuple
	for ri, seq := range reads {
		if len(bad) > 0 && readIsRepetitive(seq, bad) {
			continue
		}
		rid := uint32(base + uint64(ri))
		eachKmer(seq, k, func(kmer uint64) {
			out = append(out, tuple.Tuple{Key: kmer, Pn: rid, Pc: rid})
		})
	}
	return out, nil
}

// chunkReads returns the sequence lines of the records owned by rank r.
// The raw byte range is the block decomposition of the file; each
// boundary is advanced to the next record start, so adjacent ranks agree
// on record ownership.
func chunkReads(data []byte, p, r int) ([][]byte, error) {
	rawLo, rawHi := blockSpan(uint64(len(data)), p, r)

	lo := int(rawLo)
	if r > 0 {
		lo = recordStart(data, lo)
	}
	hi := int(rawHi)
	if r < p-1 {
		hi = recordStart(data, hi)
	} else {
		hi = len(data)
	}

	var reads [][]byte
	i := lo
	for i < hi {
		if data[i] != '@' {
			return nil, fmt.Errorf("gen: malformed record header at offset %d", i)
		}
		i = nextLine(data, i)

		seqEnd := lineEnd(data, i)
		seq := data[i:seqEnd]
		if len(seq) > MaxReadSize {
			return nil, fmt.Errorf("gen: read of %d bases exceeds the %d base limit", len(seq), MaxReadSize)
		}
		i = nextLine(data, i)

		if i >= len(data) || data[i] != '+' {
			return nil, fmt.Errorf("gen: malformed separator at offset %d", i)
		}
		i = nextLine(data, i)
		i = nextLine(data, i)

		reads = append(reads, seq)
	}
	return reads, nil
}

// recordStart finds the first record header at or after pos. A header is
// a line starting with '@' whose line after next starts with '+', which
// rules out quality lines that happen to begin with '@'.
func recordStart(data []byte, pos int) int {
	i := pos
	if i > 0 {
		j := bytes.IndexByte(data[i-1:], '\n')
		if j < 0 {
			return len(data)
		}
		i += j
	}
	for i < len(data) {
		if data[i] == '@' {
			sep := nextLine(data, nextLine(data, i))
			if sep < len(data) && data[sep] == '+' {
				return i
			}
		}
		i = nextLine(data, i)
	}
	return len(data)
}

func lineEnd(data []byte, pos int) int {
	j := bytes.IndexByte(data[pos:], '\n')
	if j < 0 {
		return len(data)
	}
	return pos + j
}

func nextLine(data []byte, pos int) int {
	end := lineEnd(data, pos)
	if end == len(data) {
		return end
	}
	return end + 1
}

func readIsRepetitive(seq []byte, bad map[uint64]struct{}) bool {
	found := false
	eachKmer(seq, KmerLenPre, func(kmer uint64) {
		if _, ok := bad[kmer]; ok {
			found = true
		}
	})
	return found
}

// kmerRun aggregates the occurrence count of the run of equal k-mers at
// one end of a rank's sorted slice. more reports whether the rank holds
// other k-mers beyond the run; ok is false for empty ranks.
type kmerRun struct {
	key   uint64
	count int
	more  bool
	ok    bool
}

// combineCount merges scan contributions. A run only extends across a
// rank whose slice is a single k-mer value; otherwise the nearer rank's
// boundary run wins.
func combineCount(acc, next kmerRun) kmerRun {
	if !next.ok {
		return acc
	}
	if !acc.ok {
		return next
	}
	out := next
	if !next.more && acc.key == next.key {
		out.count += acc.count
		out.more = acc.more
	} else {
		out.more = true
	}
	return out
}

// highFreqKmers computes the global occurrence counts of the filter-phase
// k-mers and returns those above KmerFreqThreshold. The counts come from
// a distributed sort followed by boundary scans, so runs spanning ranks
// are counted exactly once.
func highFreqKmers(c *comm.Comm, reads [][]byte) (map[uint64]struct{}, error) {
	var pre []uint64
	for _, seq := range reads {
		eachKmer(seq, KmerLenPre, func(kmer uint64) {
			pre = append(pre, kmer)
		})
	}

	sorted, err := comm.Sort(c, pre, func(a, b uint64) bool { return a < b })
	if err != nil {
		return nil, err
	}

	var first, last kmerRun
	distinct := 0
	if len(sorted) > 0 {
		distinct = 1
		for i := 1; i < len(sorted); i++ {
			if sorted[i] != sorted[i-1] {
				distinct++
			}
		}
		firstLen := 0
		for firstLen < len(sorted) && sorted[firstLen] == sorted[0] {
			firstLen++
		}
		lastLen := 0
		for lastLen < len(sorted) && sorted[len(sorted)-1-lastLen] == sorted[len(sorted)-1] {
			lastLen++
		}
		first = kmerRun{key: sorted[0], count: firstLen, more: distinct > 1, ok: true}
		last = kmerRun{key: sorted[len(sorted)-1], count: lastLen, more: distinct > 1, ok: true}
	}

	prev, prevOK, err := comm.ExScan(c, last, combineCount)
	if err != nil {
		return nil, err
	}
	next, nextOK, err := comm.RevExScan(c, first, combineCount)
	if err != nil {
		return nil, err
	}

	var bad []uint64
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		total := j - i
		if i == 0 && prevOK && prev.ok && prev.key == sorted[i] {
			total += prev.count
		}
		if j == len(sorted) && nextOK && next.ok && next.key == sorted[i] {
			total += next.count
		}
		if total > KmerFreqThreshold {
			bad = append(bad, sorted[i])
		}
		i = j
	}

	all, err := comm.AllGatherv(c, bad)
	if err != nil {
		return nil, err
	}
	set := make(map[uint64]struct{}, len(all))
	for _, kmer := range all {
		set[kmer] = struct{}{}
	}
	return set, nil
}
