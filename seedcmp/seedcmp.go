// Package seedcmp compares the seed files of two partitioning runs.
//
// A seed file lists one partition representative per line. Two runs over
// the same input are considered equivalent when they produce the same
// set of representatives, regardless of line order.
package seedcmp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/parconn/seedstore"
)

// Result summarizes the comparison of two seed files.
type Result struct {
	// PartitionsA and PartitionsB count the distinct partition
	// representatives in each file.
	PartitionsA uint64
	PartitionsB uint64

	// Equal reports whether both files contain the same set of
	// representatives.
	Equal bool
}

// Load reads a seed file into a bitmap of partition representatives.
// Duplicate lines collapse; blank lines are ignored.
func Load(r io.Reader) (*roaring.Bitmap, error) {
	rb := roaring.New()

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		seed, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("seedcmp: line %d: %w", line, err)
		}
		rb.Add(uint32(seed))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rb, nil
}

// Compare reports the partition counts of both bitmaps and whether they
// hold the same set.
func Compare(a, b *roaring.Bitmap) Result {
	return Result{
		PartitionsA: a.GetCardinality(),
		PartitionsB: b.GetCardinality(),
		Equal:       a.Equals(b),
	}
}

// CompareFiles loads two seed files from a store and compares them.
func CompareFiles(ctx context.Context, store seedstore.Store, nameA, nameB string) (Result, error) {
	a, err := loadFile(ctx, store, nameA)
	if err != nil {
		return Result{}, err
	}
	b, err := loadFile(ctx, store, nameB)
	if err != nil {
		return Result{}, err
	}
	return Compare(a, b), nil
}

func loadFile(ctx context.Context, store seedstore.Store, name string) (*roaring.Bitmap, error) {
	r, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("seedcmp: open %s: %w", name, err)
	}
	defer r.Close()

	rb, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("seedcmp: read %s: %w", name, err)
	}
	return rb, nil
}
