package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/parconn/comm"
)

func TestEachKmer(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		var kmers []uint64
		eachKmer([]byte("ACGT"), 2, func(k uint64) { kmers = append(kmers, k) })
		// AC=0b0001, CG=0b0110, GT=0b1011
		assert.Equal(t, []uint64{1, 6, 11}, kmers)
	})

	t.Run("invalid base resets", func(t *testing.T) {
		var kmers []uint64
		eachKmer([]byte("ACNGT"), 2, func(k uint64) { kmers = append(kmers, k) })
		assert.Equal(t, []uint64{1, 11}, kmers)
	})

	t.Run("lower case", func(t *testing.T) {
		var upper, lower []uint64
		eachKmer([]byte("ACGTACGT"), 3, func(k uint64) { upper = append(upper, k) })
		eachKmer([]byte("acgtacgt"), 3, func(k uint64) { lower = append(lower, k) })
		assert.Equal(t, upper, lower)
	})

	t.Run("short sequence", func(t *testing.T) {
		count := 0
		eachKmer([]byte("ACG"), 4, func(uint64) { count++ })
		assert.Zero(t, count)
	})
}

func writeFastq(t *testing.T, reads ...string) string {
	t.Helper()

	var sb strings.Builder
	for i, seq := range reads {
		sb.WriteString("@read")
		sb.WriteByte(byte('0' + i%10))
		sb.WriteString("\n")
		sb.WriteString(seq)
		sb.WriteString("\n+\n")
		// Quality lines starting with '@' must not be mistaken for
		// record headers.
		sb.WriteString("@")
		sb.WriteString(strings.Repeat("I", len(seq)-1))
		sb.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), "reads.fastq")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestFASTQGenerate(t *testing.T) {
	path := writeFastq(t, "ACGTACGT", "GGGGCCCC", "TTTTAAAA")

	src := &FASTQ{Path: path, K: 4}
	all := collect(t, 1, src.Generate)

	// Three reads of 8 bases emit 5 k-mers each.
	require.Len(t, all, 15)

	// Read numbering is consecutive and both labels agree.
	for i, tp := range all {
		assert.Equal(t, uint32(i/5), tp.Pc)
		assert.Equal(t, tp.Pc, tp.Pn)
	}
}

// Chunk boundaries must not change which reads are parsed or their
// global numbering.
func TestFASTQChunking(t *testing.T) {
	reads := []string{
		"ACGTACGTACGTACGT",
		"GGGGCCCCGGGGCCCC",
		"TTTTAAAATTTTAAAA",
		"ACACACACACACACAC",
		"GTGTGTGTGTGTGTGT",
	}
	path := writeFastq(t, reads...)

	src := &FASTQ{Path: path, K: 8}
	reference := collect(t, 1, src.Generate)

	for _, procs := range []int{2, 3, 4} {
		all := collect(t, procs, src.Generate)
		assert.Equal(t, reference, all, "P=%d", procs)
	}
}

func TestFASTQHighFreqFilter(t *testing.T) {
	// 60 copies of the same read push its filter k-mers over
	// KmerFreqThreshold; the distinct read survives.
	reads := make([]string, 0, 61)
	for i := 0; i < 60; i++ {
		reads = append(reads, "ACGTACGTACGTACGTACGTACGT")
	}
	distinct := "GGCCTTAAGGCCTTAAGGCCTTAA"
	reads = append(reads, distinct)
	path := writeFastq(t, reads...)

	src := &FASTQ{Path: path, K: 21, FilterHighFreq: true}
	for _, procs := range []int{1, 2} {
		all := collect(t, procs, src.Generate)
		require.Len(t, all, len(distinct)-21+1, "P=%d", procs)
		for _, tp := range all {
			assert.Equal(t, uint32(60), tp.Pc)
		}
	}
}

func TestFASTQErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		src := NewFASTQ(filepath.Join(t.TempDir(), "nope.fastq"))
		_, err := src.Generate(context.Background(), comm.NewGroup(1).Rank(0))
		assert.Error(t, err)
	})

	t.Run("bad k", func(t *testing.T) {
		src := &FASTQ{Path: "unused", K: 33}
		_, err := src.Generate(context.Background(), comm.NewGroup(1).Rank(0))
		assert.Error(t, err)
	})

	t.Run("malformed header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.fastq")
		require.NoError(t, os.WriteFile(path, []byte("not a record\n"), 0o644))

		src := NewFASTQ(path)
		_, err := src.Generate(context.Background(), comm.NewGroup(1).Rank(0))
		assert.Error(t, err)
	})

	t.Run("oversized read", func(t *testing.T) {
		path := writeFastq(t, strings.Repeat("A", MaxReadSize+1))
		src := NewFASTQ(path)
		_, err := src.Generate(context.Background(), comm.NewGroup(1).Rank(0))
		assert.Error(t, err)
	})
}
